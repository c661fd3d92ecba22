package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrJJimenez/jobfeed/internal/dedupe"
	"github.com/MrJJimenez/jobfeed/internal/models"
	"github.com/MrJJimenez/jobfeed/internal/scraper"
)

// Counts summarizes a run: postings per source plus the merge stats.
type Counts struct {
	PythonOrg       int `json:"python_org"`
	BuiltWithDjango int `json:"builtwithdjango"`
	dedupe.Stats
}

// Result is the merged output of one run.
type Result struct {
	GeneratedAt time.Time
	Sources     []string
	Counts      Counts
	Postings    []models.Posting
}

// Run parses every source concurrently and merges their postings. Sources
// are merged in the order given, so the output does not depend on which
// source finishes first. The first source error cancels the others and
// aborts the run.
func Run(ctx context.Context, sources []scraper.Source, logger zerolog.Logger, now func() time.Time) (Result, error) {
	if now == nil {
		now = time.Now
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		results  = make([][]models.Posting, len(sources))
	)
	for idx, source := range sources {
		wg.Add(1)
		go func(idx int, source scraper.Source) {
			defer wg.Done()
			start := time.Now()
			postings, err := source.Parse(runCtx)
			logger.Debug().Str("site", source.Name()).Int("postings", len(postings)).Dur("took", time.Since(start)).Err(err).Msg("source finished")
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			results[idx] = postings
		}(idx, source)
	}
	wg.Wait()

	if firstErr != nil {
		return Result{}, firstErr
	}

	var (
		counts Counts
		all    []models.Posting
		urls   = make([]string, 0, len(sources))
	)
	for idx, source := range sources {
		postings := results[idx]
		switch source.Name() {
		case models.SourcePythonOrg:
			counts.PythonOrg = len(postings)
		case models.SourceBuiltWithDjango:
			counts.BuiltWithDjango = len(postings)
		}
		urls = append(urls, source.URL())
		all = append(all, postings...)
	}

	merged, stats := dedupe.Merge(all)
	counts.Stats = stats
	logger.Info().Int("input", stats.InputCount).Int("output", stats.OutputCount).Int("duplicates_removed", stats.DuplicatesRemoved).Msg("postings merged")

	return Result{
		GeneratedAt: now().UTC(),
		Sources:     urls,
		Counts:      counts,
		Postings:    merged,
	}, nil
}
