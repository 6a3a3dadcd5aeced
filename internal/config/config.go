// Package config loads the arcadia configuration: a YAML file overlaid with
// ARCADIA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/llm"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/scheduler"
)

const (
	AdvisorDependencyPull = "dependency_pull"
	AdvisorNone           = "none"

	AuthorTemplate = "template"
	AuthorLLM      = "llm"
)

type Config struct {
	Planner  scheduler.Config `yaml:"planner" json:"planner"`
	Advisor  AdvisorConfig    `yaml:"advisor" json:"advisor"`
	Brief    BriefConfig      `yaml:"brief" json:"brief"`
	Cache    CacheConfig      `yaml:"cache" json:"cache"`
	Server   ServerConfig     `yaml:"server" json:"server"`
	Database DatabaseConfig   `yaml:"database" json:"database"`
	Logging  logging.Config   `yaml:"logging" json:"logging"`
	LLM      llm.LLMConfig    `yaml:"llm" json:"llm"`
}

type AdvisorConfig struct {
	Kind string `yaml:"kind" json:"kind"`
}

type BriefConfig struct {
	Author  string        `yaml:"author" json:"author"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

type CacheConfig struct {
	// TTL of zero keeps an entry until the learner's revision changes.
	TTL               time.Duration `yaml:"ttl" json:"ttl"`
	RationalePageSize int           `yaml:"rationale_page_size" json:"rationale_page_size"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	Mode            string        `yaml:"mode" json:"mode"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}

func Default() Config {
	return Config{
		Planner: scheduler.DefaultConfig(),
		Advisor: AdvisorConfig{Kind: AdvisorDependencyPull},
		Brief:   BriefConfig{Author: AuthorTemplate, Timeout: 2 * time.Second},
		Cache:   CacheConfig{TTL: 15 * time.Minute, RationalePageSize: 10},
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Path: defaultDBPath()},
		Logging:  logging.DefaultConfig(),
		LLM:      llm.DefaultConfig(),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "arcadia.db"
	}
	return filepath.Join(home, ".arcadia", "arcadia.db")
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	p := c.Planner
	if p.DailyBudgetMinutes <= 0 {
		errs = append(errs, errors.New("planner.daily_budget_minutes must be positive"))
	}
	if p.HorizonDays <= 0 {
		errs = append(errs, errors.New("planner.horizon_days must be positive"))
	}
	if p.MaxHorizonDays < p.HorizonDays {
		errs = append(errs, errors.New("planner.max_horizon_days must be at least horizon_days"))
	}
	if p.StreakCap <= 0 {
		errs = append(errs, errors.New("planner.streak_cap must be positive"))
	}
	if p.AdvisorTimeout < 0 {
		errs = append(errs, errors.New("planner.advisor_timeout must not be negative"))
	}
	switch c.Advisor.Kind {
	case AdvisorDependencyPull, AdvisorNone:
	default:
		errs = append(errs, fmt.Errorf("advisor.kind %q is not one of %s, %s", c.Advisor.Kind, AdvisorDependencyPull, AdvisorNone))
	}
	switch c.Brief.Author {
	case AuthorTemplate:
	case AuthorLLM:
		if !c.LLM.Enabled {
			errs = append(errs, errors.New("brief.author llm requires llm.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("brief.author %q is not one of %s, %s", c.Brief.Author, AuthorTemplate, AuthorLLM))
	}
	if c.Brief.Timeout <= 0 {
		errs = append(errs, errors.New("brief.timeout must be positive"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	if c.Cache.RationalePageSize <= 0 {
		errs = append(errs, errors.New("cache.rationale_page_size must be positive"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) {
	if v, ok := lookup("ARCADIA_DB"); ok && v != "" {
		cfg.Database.Path = v
	}
	if v, ok := lookup("ARCADIA_ADDR"); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookup("ARCADIA_LOG_LEVEL"); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup("ARCADIA_LOG_MODE"); ok && v != "" {
		cfg.Logging.Mode = v
	}
	if v, ok := lookup("ARCADIA_ADVISOR"); ok && v != "" {
		cfg.Advisor.Kind = v
	}
	if v, ok := lookup("ARCADIA_BRIEF_AUTHOR"); ok && v != "" {
		cfg.Brief.Author = v
	}
	envDuration(lookup, "ARCADIA_BRIEF_TIMEOUT", &cfg.Brief.Timeout)
	envDuration(lookup, "ARCADIA_CACHE_TTL", &cfg.Cache.TTL)
	envInt(lookup, "ARCADIA_DAILY_BUDGET_MINUTES", &cfg.Planner.DailyBudgetMinutes)
	envInt(lookup, "ARCADIA_HORIZON_DAYS", &cfg.Planner.HorizonDays)

	if v, ok := lookup("ARCADIA_LLM_ENABLED"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LLM.Enabled = b
		}
	}
	if v, ok := lookup("ARCADIA_LLM_PROVIDER"); ok && v != "" {
		cfg.LLM.Provider = llm.Provider(v)
	}
	if v, ok := lookup("ARCADIA_LLM_ENDPOINT"); ok && v != "" {
		cfg.LLM.Endpoint = v
	}
	if v, ok := lookup("ARCADIA_LLM_MODEL"); ok && v != "" {
		cfg.LLM.Model = v
	}
	if v, ok := lookup("ANTHROPIC_API_KEY"); ok && v != "" {
		cfg.LLM.APIKey = v
	}
	envInt(lookup, "ARCADIA_LLM_TIMEOUT_MS", &cfg.LLM.TimeoutMs)
}

func envInt(lookup lookupFunc, name string, dst *int) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}

func envDuration(lookup lookupFunc, name string, dst *time.Duration) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		*dst = d
	}
}
