// Package config provides a reusable loader for provchain-reasoner
// configuration files and environment variables. It is versioned so that
// applications can depend on a stable API contract.
//
// Version: v0.2.0
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Version is the semantic version of this configuration package.
const Version = "v0.2.0"

// Config represents the unified configuration for a reasonctl process,
// adapted from the teacher's Network/Consensus/VM/Storage/Logging layout
// onto this repo's own subsystems (spec.md §4.1/§4.4/§4.5/§4.8).
type Config struct {
	Cache struct {
		MaxSize                 int     `mapstructure:"max_size" json:"max_size"`
		Strategy                string  `mapstructure:"strategy" json:"strategy"` // lru|lfu|fifo|random
		EnableStats             bool    `mapstructure:"enable_stats" json:"enable_stats"`
		EnableMemoryPressure    bool    `mapstructure:"enable_memory_pressure" json:"enable_memory_pressure"`
		MemoryPressureThreshold float64 `mapstructure:"memory_pressure_threshold" json:"memory_pressure_threshold"`
		CleanupIntervalSeconds  int     `mapstructure:"cleanup_interval_seconds" json:"cleanup_interval_seconds"`
	} `mapstructure:"cache" json:"cache"`

	Reasoner struct {
		MaxDepth         int    `mapstructure:"max_depth" json:"max_depth"`
		TimeoutSeconds   int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
		Blocking         string `mapstructure:"blocking" json:"blocking"` // subset|equality
		EnableParallel   bool   `mapstructure:"enable_parallel" json:"enable_parallel"`
		MaxConcurrency   int    `mapstructure:"max_concurrency" json:"max_concurrency"`
		DecisionCacheMax int    `mapstructure:"decision_cache_max" json:"decision_cache_max"`
	} `mapstructure:"reasoner" json:"reasoner"`

	Query struct {
		EnableReasoning bool `mapstructure:"enable_reasoning" json:"enable_reasoning"`
		EnableCaching   bool `mapstructure:"enable_caching" json:"enable_caching"`
		EnableParallel  bool `mapstructure:"enable_parallel" json:"enable_parallel"`
		MaxResults      int  `mapstructure:"max_results" json:"max_results"`
		CacheSize       int  `mapstructure:"cache_size" json:"cache_size"`
	} `mapstructure:"query" json:"query"`

	Ledger struct {
		ChainFile       string `mapstructure:"chain_file" json:"chain_file"`
		PoolCapacity    int    `mapstructure:"pool_capacity" json:"pool_capacity"`
		RequireSignedTx bool   `mapstructure:"require_signed_tx" json:"require_signed_tx"`
	} `mapstructure:"ledger" json:"ledger"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// ReasonerTimeout returns Reasoner.TimeoutSeconds as a time.Duration, the
// form reasoner.Config expects.
func (c *Config) ReasonerTimeout() time.Duration {
	return time.Duration(c.Reasoner.TimeoutSeconds) * time.Second
}

// CacheCleanupInterval returns Cache.CleanupIntervalSeconds as a
// time.Duration, the form cache.Config expects.
func (c *Config) CacheCleanupInterval() time.Duration {
	return time.Duration(c.Cache.CleanupIntervalSeconds) * time.Second
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Default populates a Config with the same defaults as each subsystem's
// own DefaultConfig, so a Load against a directory with no config files
// still produces a usable configuration.
func Default() Config {
	var c Config
	c.Cache.MaxSize = 10_000
	c.Cache.Strategy = "lru"
	c.Cache.EnableStats = false
	c.Cache.EnableMemoryPressure = false
	c.Cache.MemoryPressureThreshold = 0.8
	c.Cache.CleanupIntervalSeconds = 60

	c.Reasoner.MaxDepth = 1000
	c.Reasoner.TimeoutSeconds = 30
	c.Reasoner.Blocking = "subset"
	c.Reasoner.EnableParallel = false
	c.Reasoner.MaxConcurrency = 4
	c.Reasoner.DecisionCacheMax = 10_000

	c.Query.EnableReasoning = true
	c.Query.EnableCaching = true
	c.Query.EnableParallel = false
	c.Query.MaxResults = 0
	c.Query.CacheSize = 1000

	c.Ledger.ChainFile = "reasonctl.chain"
	c.Ledger.PoolCapacity = 1000
	c.Ledger.RequireSignedTx = true

	c.Logging.Level = "info"
	c.Logging.File = ""
	return c
}

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. The function uses the provided environment name to merge
// additional config files; if env is empty, only the default
// configuration is loaded. Missing config files are not an error — the
// built-in defaults from Default() apply instead.
func Load(env string) (*Config, error) {
	AppConfig = Default()

	v := viper.New()
	v.SetConfigName("default")
	v.AddConfigPath("cmd/config")
	v.AddConfigPath("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if env != "" {
		v.SetConfigName(env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("merge %s config: %w", env, err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("REASONCTL")

	if err := v.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the REASONCTL_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	env := os.Getenv("REASONCTL_ENV")
	return Load(env)
}
