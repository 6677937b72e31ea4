package shockwave

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/remix-astronautics/shockwave/spacedevs"
	"github.com/remix-astronautics/shockwave/syncer"
	"github.com/spf13/viper"
)

const (
	configName   = "config"
	databaseFile = "shockwave.db"
	envPrefix    = "SHOCKWAVE"
)

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	Token     string        `mapstructure:"token" yaml:"token"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PageSize  int           `mapstructure:"page_size" yaml:"page_size"`
}

type SyncConfig struct {
	UpcomingLimit int    `mapstructure:"upcoming_limit" yaml:"upcoming_limit"`
	PreviousLimit int    `mapstructure:"previous_limit" yaml:"previous_limit"`
	RangeMax      int    `mapstructure:"range_max" yaml:"range_max"`
	Schedule      string `mapstructure:"schedule" yaml:"schedule"` // cron spec for upcoming syncs, empty disables the timer
}

type ScopeRuleConfig struct {
	Pattern   string `mapstructure:"pattern" yaml:"pattern"`       // Regular expression
	MatchType string `mapstructure:"match_type" yaml:"match_type"` // site, rocket or mission
	Exclude   bool   `mapstructure:"exclude" yaml:"exclude"`
}

type ScopeConfig struct {
	DefaultAllow bool              `mapstructure:"default_allow" yaml:"default_allow"`
	Rules        []ScopeRuleConfig `mapstructure:"rules" yaml:"rules"`
}

type Config struct {
	viper     *viper.Viper
	ConfigDir string      `mapstructure:"-"`        // Directory holding config.yaml
	Database  string      `mapstructure:"database"` // Path of the SQLite database file
	API       APIConfig   `mapstructure:"api"`
	Sync      SyncConfig  `mapstructure:"sync"`
	Scope     ScopeConfig `mapstructure:"scope"`
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database", filepath.Join(configDir, databaseFile))
	v.SetDefault("api.base_url", spacedevs.DefaultBaseURL)
	v.SetDefault("api.user_agent", spacedevs.DefaultUserAgent)
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", spacedevs.DefaultTimeout.String())
	v.SetDefault("api.page_size", spacedevs.MaxPageSize)
	v.SetDefault("sync.upcoming_limit", syncer.DefaultUpcomingLimit)
	v.SetDefault("sync.previous_limit", syncer.DefaultPreviousLimit)
	v.SetDefault("sync.range_max", syncer.DefaultRangeMax)
	v.SetDefault("sync.schedule", "@every 6h")
	v.SetDefault("scope.default_allow", true)
	v.SetDefault("scope.rules", []ScopeRuleConfig{})
}

// AddScopeRule validates the rule and persists it.
func (cfg *Config) AddScopeRule(pattern, matchType string, exclude bool) error {
	rule, err := newRule(pattern, matchType)
	if err != nil {
		return err
	}
	entry := ScopeRuleConfig{Pattern: rule.Pattern.String(), MatchType: rule.MatchType, Exclude: exclude}
	if slices.Contains(cfg.Scope.Rules, entry) {
		return errors.New("rule already exists")
	}
	return cfg.saveScopeRules(append(cfg.Scope.Rules, entry))
}

// RemoveScopeRule removes a persisted rule.
func (cfg *Config) RemoveScopeRule(pattern, matchType string, exclude bool) error {
	entry := ScopeRuleConfig{Pattern: trimRulePattern(pattern), MatchType: normalizeMatchType(matchType), Exclude: exclude}
	if !slices.Contains(cfg.Scope.Rules, entry) {
		return errors.New("rule not found")
	}
	rules := slices.DeleteFunc(slices.Clone(cfg.Scope.Rules), func(r ScopeRuleConfig) bool {
		return r == entry
	})
	return cfg.saveScopeRules(rules)
}

// ClearScopeRules removes every persisted rule.
func (cfg *Config) ClearScopeRules() error {
	return cfg.saveScopeRules([]ScopeRuleConfig{})
}

// saveScopeRules writes the rules through a file-only viper so environment
// overrides such as SHOCKWAVE_API_TOKEN never reach config.yaml.
func (cfg *Config) saveScopeRules(rules []ScopeRuleConfig) error {
	file := newFileViper(cfg.ConfigDir)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file : %w", err)
	}
	file.Set("scope.rules", rules)
	if err := file.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if err := cfg.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file : %w", err)
	}
	var fresh Config
	if err := cfg.viper.Unmarshal(&fresh); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	cfg.Scope = fresh.Scope
	return nil
}

// newFileViper returns a viper bound to config.yaml and the defaults only.
func newFileViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)
	return v
}

// loadConfig reads config.yaml from configDir, writing the defaults on first run.
// Environment variables prefixed with SHOCKWAVE override file values, for example
// SHOCKWAVE_API_TOKEN for api.token. Overrides are never written back to the file.
func loadConfig(configDir string) (*Config, error) {
	file := newFileViper(configDir)
	if err := file.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
		if err := file.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing config file : %w", err)
		}
	}

	v := newFileViper(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file : %w", err)
	}

	cfg := &Config{viper: v, ConfigDir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return cfg, nil
}

// scope builds the Scope described by the configuration.
func (cfg *Config) scope() (*Scope, error) {
	scope := NewScope(cfg.Scope.DefaultAllow)
	for _, rule := range cfg.Scope.Rules {
		if err := scope.AddRule(rule.Pattern, rule.MatchType, rule.Exclude); err != nil {
			return nil, fmt.Errorf("adding rule %s|%s : %w", rule.Pattern, rule.MatchType, err)
		}
	}
	return scope, nil
}
