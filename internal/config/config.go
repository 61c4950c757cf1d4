// Package config loads the research agent's YAML configuration, in the
// teacher's Config/LoadConfig/DefaultConfig shape (evalaf/eval/config.go),
// with viper layered on top for RESEARCH_*-prefixed environment-variable
// overrides — the teacher's go.mod carries spf13/viper as a direct dependency but no
// teacher file actually imports it; this is where it gets wired in.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/antflydb/deepresearch/internal/evaluator"
	"github.com/antflydb/deepresearch/internal/logging"
	"github.com/antflydb/deepresearch/internal/tracker"
	"github.com/antflydb/deepresearch/internal/urlledger"
)

// HostnameLists holds the per-session hostname boost/bad/only lists (§6).
type HostnameLists struct {
	Boost []string `yaml:"boost" json:"boost"`
	Bad   []string `yaml:"bad" json:"bad"`
	Only  []string `yaml:"only" json:"only"`
}

// CollaboratorEndpoints configures the HTTP-backed collaborator adapters.
type CollaboratorEndpoints struct {
	LLMModel        string `yaml:"llm_model" json:"llm_model"`
	SearchEndpoint  string `yaml:"search_endpoint" json:"search_endpoint"`
	SearchAPIKey    string `yaml:"search_api_key" json:"search_api_key"`
	ClassifyEndpoint string `yaml:"classify_endpoint" json:"classify_endpoint"`
	ClassifyAPIKey  string `yaml:"classify_api_key" json:"classify_api_key"`
}

// Config is the research agent's full configuration (§1, §6).
type Config struct {
	Version int `yaml:"version" json:"version"`

	TokenBudget        float64 `yaml:"token_budget" json:"token_budget"`
	MaxBadAttempts     int     `yaml:"max_bad_attempts" json:"max_bad_attempts"`
	NoDirectAnswer     bool    `yaml:"no_direct_answer" json:"no_direct_answer"`
	RateLimitPerMinute int     `yaml:"rate_limit_per_minute" json:"rate_limit_per_minute"`

	Hostnames    HostnameLists         `yaml:"hostnames" json:"hostnames"`
	Endpoints    CollaboratorEndpoints `yaml:"endpoints" json:"endpoints"`
	Ranking      urlledger.Coefficients `yaml:"ranking" json:"ranking"`
	SimilarityThreshold float64         `yaml:"similarity_threshold" json:"similarity_threshold"`
	StepSleepMillis     int             `yaml:"step_sleep_millis" json:"step_sleep_millis"`

	Logging logging.Config `yaml:"logging" json:"logging"`
}

// LoadConfig loads configuration from a YAML file at path, applying
// environment-variable overrides via viper (prefix RESEARCH_, e.g.
// RESEARCH_TOKEN_BUDGET).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides layers RESEARCH_*-prefixed environment variables over
// the parsed config using viper's env-binding, without requiring every
// caller to hand-roll os.Getenv calls.
func applyEnvOverrides(config *Config) {
	v := viper.New()
	v.SetEnvPrefix("research")
	v.AutomaticEnv()

	if v.IsSet("token_budget") {
		config.TokenBudget = v.GetFloat64("token_budget")
	}
	if v.IsSet("max_bad_attempts") {
		config.MaxBadAttempts = v.GetInt("max_bad_attempts")
	}
	if v.IsSet("rate_limit_per_minute") {
		config.RateLimitPerMinute = v.GetInt("rate_limit_per_minute")
	}
	if v.IsSet("search_endpoint") {
		config.Endpoints.SearchEndpoint = v.GetString("search_endpoint")
	}
	if v.IsSet("search_api_key") {
		config.Endpoints.SearchAPIKey = v.GetString("search_api_key")
	}
}

// DefaultConfig returns the configuration used when no file is supplied,
// matching the defaults named in spec §6.
func DefaultConfig() *Config {
	return &Config{
		Version:             1,
		TokenBudget:         tracker.DefaultTotalBudget,
		MaxBadAttempts:      evaluator.DefaultMaxBadAttempts,
		RateLimitPerMinute:  0,
		Ranking:             urlledger.DefaultCoefficients(),
		SimilarityThreshold: 0.86,
		StepSleepMillis:     500,
		Logging: logging.Config{
			Style: logging.StyleTerminal,
			Level: "info",
		},
	}
}
