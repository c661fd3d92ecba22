package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/MrJJimenez/jobfeed/internal/config"
	"github.com/MrJJimenez/jobfeed/internal/export"
	"github.com/MrJJimenez/jobfeed/internal/extract"
	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/network"
	"github.com/MrJJimenez/jobfeed/internal/pipeline"
	"github.com/MrJJimenez/jobfeed/internal/scraper"
	"github.com/MrJJimenez/jobfeed/internal/ui"
)

type RunCmd struct {
	JSONOutput string `name:"json-output" help:"Path of the JSON document (default django_jobs_feed.json)."`
	RSSOutput  string `name:"rss-output" help:"Path of the RSS feed (default django_jobs_feed.xml)."`
	FeedURL    string `name:"feed-url" help:"python.org jobs RSS feed URL."`
	ListingURL string `name:"listing-url" help:"builtwithdjango.com jobs listing URL."`
	Keyword    string `help:"Keyword python.org entries must mention (default django)."`
	Workers    int    `help:"Concurrent detail page fetches per source."`
	Timeout    int    `help:"Per request timeout in seconds."`
	Strict     bool   `help:"Abort on the first failed detail page instead of skipping it."`
	Proxies    string `help:"Comma-separated proxy URLs."`
	List       bool   `help:"Print the merged postings before the counts."`
	Format     string `help:"Listing format: table, csv, md, tsv." enum:"table,csv,md,tsv" default:"table"`
	Links      string `help:"Table link style: short or full." enum:"short,full" default:"short"`
}

// outputFile is a rendered document waiting to be written.
type outputFile struct {
	path string
	data []byte
}

func (r *RunCmd) Run(ctx *Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources, err := r.buildSources(ctx)
	if err != nil {
		return err
	}

	stopIndicator := ctx.UI.StartIndicator("Fetching jobs...")
	result, err := pipeline.Run(runCtx, sources, ctx.Logger, ctx.Now)
	stopIndicator()
	if err != nil {
		return err
	}

	return r.emit(ctx, result)
}

func (r *RunCmd) settings(cfg config.Config) config.Config {
	cfg.JSONOutput = firstNonEmpty(r.JSONOutput, cfg.JSONOutput, config.DefaultJSONOutput)
	cfg.RSSOutput = firstNonEmpty(r.RSSOutput, cfg.RSSOutput, config.DefaultRSSOutput)
	cfg.FeedURL = firstNonEmpty(r.FeedURL, cfg.FeedURL, config.DefaultFeedURL)
	cfg.ListingURL = firstNonEmpty(r.ListingURL, cfg.ListingURL, config.DefaultListingURL)
	cfg.Keyword = firstNonEmpty(r.Keyword, cfg.Keyword, config.DefaultKeyword)
	cfg.Workers = defaultInt(r.Workers, defaultInt(cfg.Workers, config.DefaultWorkers))
	cfg.TimeoutSeconds = defaultInt(r.Timeout, defaultInt(cfg.TimeoutSeconds, config.DefaultTimeoutSeconds))
	return cfg
}

func (r *RunCmd) scraperOptions(ctx *Context, cfg config.Config) scraper.Options {
	return scraper.Options{
		Keyword:         cfg.Keyword,
		Skills:          skillVocabulary(cfg),
		FaviconTemplate: cfg.FaviconTemplate,
		Workers:         cfg.Workers,
		Strict:          r.Strict,
		Logger:          ctx.Logger,
	}
}

func (r *RunCmd) buildSources(ctx *Context) ([]scraper.Source, error) {
	cfg := r.settings(ctx.Config)

	proxies, err := config.LoadProxies(r.Proxies)
	if err != nil {
		return nil, fmt.Errorf("load proxies: %w", err)
	}
	if len(proxies) > 0 {
		ctx.Logger.Debug().Int("proxies", len(proxies)).Msg("proxy rotation enabled")
	}

	client, err := network.NewClient(models.FetchConfig{
		Proxies:   proxies,
		Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		UserAgent: cfg.UserAgent,
	}, nil)
	if err != nil {
		return nil, err
	}

	return scraper.Registry(client, cfg.FeedURL, cfg.ListingURL, r.scraperOptions(ctx, cfg)), nil
}

// emit renders both documents, writes them and reports the counts.
func (r *RunCmd) emit(ctx *Context, result pipeline.Result) error {
	cfg := r.settings(ctx.Config)

	var jsonBuf, rssBuf bytes.Buffer
	if err := export.WriteDocument(&jsonBuf, result); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	if err := export.WriteFeed(&rssBuf, result, export.DefaultFeedMeta()); err != nil {
		return fmt.Errorf("render rss: %w", err)
	}

	if err := writeFilesAtomically([]outputFile{
		{path: cfg.JSONOutput, data: jsonBuf.Bytes()},
		{path: cfg.RSSOutput, data: rssBuf.Bytes()},
	}); err != nil {
		return err
	}

	if r.List {
		if err := r.printListing(ctx, result.Postings); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Counts); err != nil {
		return err
	}

	ctx.UI.Successf("Wrote %d jobs to %s and %s", len(result.Postings), cfg.JSONOutput, cfg.RSSOutput)
	return nil
}

func (r *RunCmd) printListing(ctx *Context, postings []models.Posting) error {
	format, err := export.ParseFormat(r.Format)
	if err != nil {
		return err
	}
	hyperlinks := format == export.FormatTable && ui.IsTTY(ctx.Out)
	return export.WritePostings(ctx.Out, postings, format, export.WriteOptions{
		ColorEnabled: ctx.UI != nil && ctx.UI.ColorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    export.LinkStyle(r.Links),
	})
}

func skillVocabulary(cfg config.Config) extract.Vocabulary {
	if len(cfg.Skills) == 0 {
		return extract.DefaultVocabulary()
	}
	acronyms := cfg.SkillAcronyms
	if acronyms == nil {
		acronyms = extract.DefaultAcronyms()
	}
	return extract.NewVocabulary(cfg.Skills, acronyms)
}

// writeFilesAtomically stages every file next to its target and renames
// them only once all writes succeeded.
func writeFilesAtomically(files []outputFile) (err error) {
	staged := make([]string, 0, len(files))
	defer func() {
		if err == nil {
			return
		}
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()

	for _, file := range files {
		tmp, err := stageFile(file)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}

	return commitStaged(files, staged)
}

// renameFile is swapped in tests to simulate a failing rename.
var renameFile = os.Rename

type committedFile struct {
	path   string
	backup string
}

// commitStaged moves staged files onto their targets. Existing targets are
// kept as backups until every rename succeeded and are put back otherwise.
func commitStaged(files []outputFile, staged []string) error {
	var done []committedFile
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			if done[i].backup == "" {
				_ = os.Remove(done[i].path)
				continue
			}
			_ = renameFile(done[i].backup, done[i].path)
		}
	}

	for idx, file := range files {
		backup, err := backupExisting(file.path)
		if err != nil {
			rollback()
			return fmt.Errorf("write %s: %w", file.path, err)
		}
		if err := renameFile(staged[idx], file.path); err != nil {
			if backup != "" {
				_ = renameFile(backup, file.path)
			}
			rollback()
			return fmt.Errorf("write %s: %w", file.path, err)
		}
		done = append(done, committedFile{path: file.path, backup: backup})
	}

	for _, file := range done {
		if file.backup != "" {
			_ = os.Remove(file.backup)
		}
	}
	return nil
}

func backupExisting(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	backup := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".bak")
	if err := renameFile(path, backup); err != nil {
		return "", err
	}
	return backup, nil
}

func stageFile(file outputFile) (string, error) {
	if strings.TrimSpace(file.path) == "" {
		return "", errors.New("empty output path")
	}
	if info, err := os.Stat(file.path); err == nil && info.IsDir() {
		return "", fmt.Errorf("write %s: target is a directory", file.path)
	}
	dir := filepath.Dir(file.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", file.path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(file.path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", file.path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(file.data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write %s: %w", file.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("write %s: %w", file.path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("write %s: %w", file.path, err)
	}
	return name, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
