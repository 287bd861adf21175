package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Search struct {
		BaseURL   string `yaml:"base_url"`
		Query     string `yaml:"query"`
		GeoID     string `yaml:"geo_id"`
		EasyApply bool   `yaml:"easy_apply"`
	} `yaml:"search"`

	Browser struct {
		ControlURL         string `yaml:"control_url"` // empty = launch our own
		Headless           bool   `yaml:"headless"`
		PageTimeoutSeconds int    `yaml:"page_timeout_seconds"`
	} `yaml:"browser"`

	Crawl struct {
		CardDelayMS     int    `yaml:"card_delay_ms"`
		RenderTimeoutMS int    `yaml:"render_timeout_ms"`
		PollIntervalMS  int    `yaml:"poll_interval_ms"`
		Schedule        string `yaml:"schedule"` // cron expression, empty = manual only
	} `yaml:"crawl"`

	Analytics struct {
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"analytics"`

	Scoring Scoring `yaml:"scoring"`
}

// Scoring configures the relevance scorer: additive keyword rules over a
// job's title and description, plus negative-weight penalties.
type Scoring struct {
	TitleRules   []Rule `yaml:"title_rules"`
	KeywordRules []Rule `yaml:"keyword_rules"`
	Penalties    []Rule `yaml:"penalties"`
}

// Rule matches when any needle appears; its weight is applied at most once.
type Rule struct {
	Tag    string   `yaml:"tag,omitempty"`
	Any    []string `yaml:"any"`
	Weight int      `yaml:"weight"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 38471
	}
	if c.App.DataDir == "" {
		c.App.DataDir = "."
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://www.linkedin.com/jobs/search"
	}
	if c.Browser.PageTimeoutSeconds <= 0 {
		c.Browser.PageTimeoutSeconds = 30
	}
	if c.Crawl.CardDelayMS <= 0 {
		c.Crawl.CardDelayMS = 1500
	}
	if c.Crawl.RenderTimeoutMS <= 0 {
		c.Crawl.RenderTimeoutMS = 5000
	}
	if c.Crawl.PollIntervalMS <= 0 {
		c.Crawl.PollIntervalMS = 100
	}
	if c.Analytics.CacheTTLSeconds <= 0 {
		c.Analytics.CacheTTLSeconds = 60
	}
}

func (c Config) CardDelay() time.Duration {
	return time.Duration(c.Crawl.CardDelayMS) * time.Millisecond
}
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Crawl.RenderTimeoutMS) * time.Millisecond
}
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Crawl.PollIntervalMS) * time.Millisecond
}
func (c Config) PageTimeout() time.Duration {
	return time.Duration(c.Browser.PageTimeoutSeconds) * time.Second
}
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Analytics.CacheTTLSeconds) * time.Second
}
