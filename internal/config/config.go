package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RateLimitConfig struct {
	Backend       string        `yaml:"backend"` // memory|redis
	MaxRequests   int           `yaml:"max_requests"`
	Window        time.Duration `yaml:"window"`
	SweepInterval time.Duration `yaml:"sweep_interval"` // negative disables the sweeper
}

type RedisConfig struct {
	URL       string `yaml:"url"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type UpstreamConfig struct {
	Provider        string        `yaml:"provider"` // gateway|gemini
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	GeminiModel     string        `yaml:"gemini_model"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max in-flight upstream streams
	HeaderTimeout   time.Duration `yaml:"header_timeout"`
}

type ContentConfig struct {
	Pages             []string      `yaml:"pages"`
	ProxyURL          string        `yaml:"proxy_url"` // page URL is appended query-escaped; "off" disables
	TTL               time.Duration `yaml:"ttl"`
	RetryAfterFailure time.Duration `yaml:"retry_after_failure"`
	MaxCharsPerPage   int           `yaml:"max_chars_per_page"`
	Timeout           time.Duration `yaml:"timeout"`
	Concurrency       int           `yaml:"concurrency"`
	UserAgent         string        `yaml:"user_agent"`
	WarmInterval      time.Duration `yaml:"warm_interval"` // background refresh; negative disables
}

type CORSConfig struct {
	AllowedOrigins  []string `yaml:"allowed_origins"`
	AllowedSuffixes []string `yaml:"allowed_suffixes"`
}

type ContactConfig struct {
	ResendKey      string   `yaml:"resend_key"`
	ResendURL      string   `yaml:"resend_url"`
	From           string   `yaml:"from"`
	To             []string `yaml:"to"`
	TelegramToken  string   `yaml:"telegram_token"`
	TelegramChatID int64    `yaml:"telegram_chat_id"`
	PerMinute      float64  `yaml:"per_minute"` // global submission throttle
	Burst          int      `yaml:"burst"`
	AlertWorkers   int      `yaml:"alert_workers"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Content   ContentConfig   `yaml:"content"`
	CORS      CORSConfig      `yaml:"cors"`
	Contact   ContactConfig   `yaml:"contact"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads -config and -dev from the command line, then loads the file,
// the optional .env and the environment.
func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Load builds a Config from a YAML file (which may be absent) plus environment
// overrides, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}

	str("LOVABLE_API_KEY", &cfg.Upstream.APIKey)
	str("AI_GATEWAY_URL", &cfg.Upstream.BaseURL)
	str("AI_MODEL", &cfg.Upstream.Model)
	str("GEMINI_API_KEY", &cfg.Upstream.GeminiKey)
	str("RESEND_API_KEY", &cfg.Contact.ResendKey)
	str("TELEGRAM_BOT_TOKEN", &cfg.Contact.TelegramToken)
	str("REDIS_URL", &cfg.Redis.URL)
	str("SCRAPE_PROXY_URL", &cfg.Content.ProxyURL)
	list("CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)
	list("CORS_ALLOWED_SUFFIXES", &cfg.CORS.AllowedSuffixes)

	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Contact.TelegramChatID = id
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DefaultProxyURL is the fallback page fetcher used when a direct fetch fails.
const DefaultProxyURL = "https://api.allorigins.win/raw?url="

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "memory"
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = 5
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.SweepInterval == 0 {
		cfg.RateLimit.SweepInterval = 5 * time.Minute
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "smartrunai:rl:"
	}

	if cfg.Upstream.Provider == "" {
		cfg.Upstream.Provider = "gateway"
	}
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = "https://ai.gateway.lovable.dev/v1"
	}
	if cfg.Upstream.Model == "" {
		cfg.Upstream.Model = "google/gemini-2.5-flash"
	}
	if cfg.Upstream.GeminiModel == "" {
		cfg.Upstream.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.Upstream.ConcurrentLimit <= 0 {
		cfg.Upstream.ConcurrentLimit = 16
	}
	if cfg.Upstream.HeaderTimeout <= 0 {
		cfg.Upstream.HeaderTimeout = 30 * time.Second
	}

	if cfg.Content.Pages == nil {
		cfg.Content.Pages = []string{
			"https://www.smartrunai.com/",
			"https://www.smartrunai.com/services",
			"https://www.smartrunai.com/solutions",
			"https://www.smartrunai.com/about",
			"https://www.smartrunai.com/faqs",
		}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Content.ProxyURL)) {
	case "":
		cfg.Content.ProxyURL = DefaultProxyURL
	case "off", "none":
		cfg.Content.ProxyURL = ""
	}
	if cfg.Content.TTL <= 0 {
		cfg.Content.TTL = 30 * time.Minute
	}
	if cfg.Content.RetryAfterFailure <= 0 {
		cfg.Content.RetryAfterFailure = time.Minute
	}
	if cfg.Content.MaxCharsPerPage <= 0 {
		cfg.Content.MaxCharsPerPage = 4000
	}
	if cfg.Content.Timeout <= 0 {
		cfg.Content.Timeout = 8 * time.Second
	}
	if cfg.Content.Concurrency <= 0 {
		cfg.Content.Concurrency = 4
	}
	if cfg.Content.UserAgent == "" {
		cfg.Content.UserAgent = "SmartRunAI-Chatbot/1.0"
	}
	if cfg.Content.WarmInterval == 0 {
		cfg.Content.WarmInterval = cfg.Content.TTL * 5 / 6
	}

	if cfg.CORS.AllowedOrigins == nil {
		cfg.CORS.AllowedOrigins = []string{"https://smartrunai.com", "https://www.smartrunai.com"}
	}
	if cfg.CORS.AllowedSuffixes == nil {
		cfg.CORS.AllowedSuffixes = []string{".lovable.app", ".lovableproject.com"}
	}

	if cfg.Contact.ResendURL == "" {
		cfg.Contact.ResendURL = "https://api.resend.com"
	}
	if cfg.Contact.From == "" {
		cfg.Contact.From = "SmartRunAI <onboarding@resend.dev>"
	}
	if len(cfg.Contact.To) == 0 {
		cfg.Contact.To = []string{"info@smartrunai.com"}
	}
	if cfg.Contact.PerMinute <= 0 {
		cfg.Contact.PerMinute = 30
	}
	if cfg.Contact.Burst <= 0 {
		cfg.Contact.Burst = 10
	}
	if cfg.Contact.AlertWorkers <= 0 {
		cfg.Contact.AlertWorkers = 2
	}
}

// Validate checks structural sanity only. API keys are checked when a request
// needs them.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when rate_limit.backend is redis")
		}
	default:
		return fmt.Errorf("unknown rate_limit.backend %q", c.RateLimit.Backend)
	}
	switch c.Upstream.Provider {
	case "gateway", "gemini":
	default:
		return fmt.Errorf("unknown upstream.provider %q", c.Upstream.Provider)
	}
	if c.Content.ProxyURL != "" && !strings.HasPrefix(c.Content.ProxyURL, "http") {
		return fmt.Errorf("content.proxy_url must be an http(s) URL: %q", c.Content.ProxyURL)
	}
	return nil
}

// ActiveModel is the model name reported in synthesized replies.
func (u UpstreamConfig) ActiveModel() string {
	if u.Provider == "gemini" {
		return u.GeminiModel
	}
	return u.Model
}
