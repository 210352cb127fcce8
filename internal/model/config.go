package model

import "time"

// DefaultSourceURL is the prefectural case table the tool was written for
const DefaultSourceURL = "http://www.pref.hokkaido.lg.jp/hf/kth/kak/hasseijoukyou.htm"

// Config is the complete runtime configuration
type Config struct {
	Source       SourceConfig      `yaml:"source" mapstructure:"source"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Normalize    NormalizeConfig   `yaml:"normalize" mapstructure:"normalize"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// SourceConfig describes where the case table lives
type SourceConfig struct {
	URL          string `yaml:"url" mapstructure:"url"`
	Encoding     string `yaml:"encoding" mapstructure:"encoding"`           // auto, utf-8, shift_jis, euc-jp
	BannerMarker string `yaml:"banner_marker" mapstructure:"banner_marker"` // Text preceding the last-updated date
}

// HTTPConfig controls the fetcher
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Referer       string        `yaml:"referer" mapstructure:"referer"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// CacheConfig controls the page snapshot cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig controls per-host request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// NormalizeConfig controls record normalization
type NormalizeConfig struct {
	BaseYear int `yaml:"base_year" mapstructure:"base_year"`
}

// OutputConfig controls JSON rendering
type OutputConfig struct {
	Indent  string `yaml:"indent" mapstructure:"indent"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:          DefaultSourceURL,
			Encoding:     "auto",
			BannerMarker: "最終更新日",
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/79.0.3945.117 Safari/537.36 Edg/79.0.309.65",
			Referer:       "http://localhost",
			MaxBodyBytes:  5_000_000,
			MaxAttempts:   3,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".casefeed-cache",
			MemoryTTL: 5 * time.Minute,
			DiskTTL:   1 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Normalize: NormalizeConfig{
			BaseYear: 2020,
		},
		Output: OutputConfig{
			Indent: "  ",
		},
	}
}

// Source is one page to scan
type Source struct {
	Name string `yaml:"name" mapstructure:"name"`
	URL  string `yaml:"url" mapstructure:"url"`
}
