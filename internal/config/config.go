package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/MrJJimenez/jobfeed/internal/extract"
	"github.com/MrJJimenez/jobfeed/internal/network"
	"github.com/MrJJimenez/jobfeed/internal/scraper"
)

const (
	DirName         = "jobfeed"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
)

const (
	DefaultFeedURL         = scraper.DefaultFeedURL
	DefaultListingURL      = scraper.DefaultListingURL
	DefaultKeyword         = scraper.DefaultKeyword
	DefaultUserAgent       = network.DefaultUserAgent
	DefaultTimeoutSeconds  = int(network.DefaultTimeout / time.Second)
	DefaultWorkers         = scraper.DefaultWorkers
	DefaultJSONOutput      = "django_jobs_feed.json"
	DefaultRSSOutput       = "django_jobs_feed.xml"
	DefaultFaviconTemplate = extract.DefaultFaviconTemplate
)

// Config holds the run defaults. Command-line flags override these values.
type Config struct {
	FeedURL         string   `json:"feed_url"`
	ListingURL      string   `json:"listing_url"`
	Keyword         string   `json:"keyword"`
	UserAgent       string   `json:"user_agent"`
	TimeoutSeconds  int      `json:"timeout_seconds"`
	Workers         int      `json:"workers"`
	FaviconTemplate string   `json:"favicon_template"`
	Skills          []string `json:"skills,omitempty"`
	SkillAcronyms   []string `json:"skill_acronyms,omitempty"`
	JSONOutput      string   `json:"json_output"`
	RSSOutput       string   `json:"rss_output"`
}

func DefaultConfig() Config {
	return Config{
		FeedURL:         envString("JOBFEED_FEED_URL", DefaultFeedURL),
		ListingURL:      envString("JOBFEED_LISTING_URL", DefaultListingURL),
		Keyword:         envString("JOBFEED_KEYWORD", DefaultKeyword),
		UserAgent:       envString("JOBFEED_USER_AGENT", DefaultUserAgent),
		TimeoutSeconds:  envInt("JOBFEED_TIMEOUT_SECONDS", DefaultTimeoutSeconds),
		Workers:         envInt("JOBFEED_WORKERS", DefaultWorkers),
		FaviconTemplate: envString("JOBFEED_FAVICON_TEMPLATE", DefaultFaviconTemplate),
		JSONOutput:      envString("JOBFEED_JSON_OUTPUT", DefaultJSONOutput),
		RSSOutput:       envString("JOBFEED_RSS_OUTPUT", DefaultRSSOutput),
	}
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile reads a JSON5 config file over the defaults. A missing or empty
// file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg.normalized(), nil
}

// normalized restores defaults for values a config file blanked out.
func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.FeedURL) == "" {
		c.FeedURL = defaults.FeedURL
	}
	if strings.TrimSpace(c.ListingURL) == "" {
		c.ListingURL = defaults.ListingURL
	}
	if strings.TrimSpace(c.Keyword) == "" {
		c.Keyword = defaults.Keyword
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if strings.TrimSpace(c.FaviconTemplate) == "" {
		c.FaviconTemplate = defaults.FaviconTemplate
	}
	if strings.TrimSpace(c.JSONOutput) == "" {
		c.JSONOutput = defaults.JSONOutput
	}
	if strings.TrimSpace(c.RSSOutput) == "" {
		c.RSSOutput = defaults.RSSOutput
	}
	return c
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return InitDir(dir)
}

// InitDir is Init for an explicit directory.
func InitDir(dir string) ([]string, error) {
	var created []string

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("JOBFEED_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}
	return readProxiesFile(path)
}

func readProxiesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
