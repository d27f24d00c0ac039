// Package config loads the askframe command configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/askframe"
	"github.com/ZanzyTHEbar/askframe/pkg/llm"
)

// Backend providers.
const (
	ProviderEino   = "eino"
	ProviderGenkit = "genkit"
)

// Config is the top-level configuration file.
type Config struct {
	Backend BackendConfig   `yaml:"backend"`
	Ask     askframe.Config `yaml:"ask"`
	Log     LogConfig       `yaml:"log"`
}

// BackendConfig selects the completion backend. Eino providers are chosen by
// type; the genkit provider serves Gemini models through Google AI.
type BackendConfig struct {
	Provider        string `yaml:"provider"`
	llm.ModelConfig `yaml:",inline"`
}

type LogConfig struct {
	JSON  bool   `yaml:"json"`
	Level string `yaml:"level"`
}

// apiKeyEnv lists the environment variables consulted, in order, when the
// file carries no API key.
var apiKeyEnv = map[llm.ModelType][]string{
	llm.ModelTypeOpenAI:    {"OPENAI_API_KEY"},
	llm.ModelTypeDeepSeek:  {"DEEPSEEK_API_KEY"},
	llm.ModelTypeDashScope: {"DASHSCOPE_API_KEY"},
	llm.ModelTypeARK:       {"ARK_API_KEY"},
	llm.ModelTypeClaude:    {"ANTHROPIC_API_KEY"},
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	ask := askframe.DefaultConfig()
	ask.Model = ""
	return &Config{
		Backend: BackendConfig{
			Provider:    ProviderEino,
			ModelConfig: llm.ModelConfig{APIType: llm.ModelTypeOpenAI},
		},
		Ask: ask,
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve fills the fields that depend on each other or on the environment.
func (c *Config) resolve() {
	c.Backend.Provider = strings.ToLower(strings.TrimSpace(c.Backend.Provider))
	if c.Backend.Provider == "" {
		c.Backend.Provider = ProviderEino
	}
	if t := llm.NewModelType(string(c.Backend.APIType)); t != llm.ModelTypeUnknown {
		c.Backend.APIType = t
	}

	switch {
	case c.Ask.Model == "" && c.Backend.ModelName != "":
		c.Ask.Model = c.Backend.ModelName
	case c.Ask.Model == "" && c.Backend.Provider == ProviderGenkit:
		c.Ask.Model = llm.DefaultGenkitModel
	case c.Ask.Model == "":
		c.Ask.Model = askframe.DefaultModel
	}
	if c.Backend.ModelName == "" {
		c.Backend.ModelName = c.Ask.Model
	}

	if c.Backend.APIKey == "" {
		c.Backend.APIKey = LookupAPIKey(c.Backend.Provider, c.Backend.APIType)
	}
}

// LookupAPIKey returns the first API key set in the environment for the
// provider, falling back to ASKFRAME_API_KEY.
func LookupAPIKey(provider string, t llm.ModelType) string {
	var names []string
	if provider == ProviderGenkit {
		names = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	} else {
		names = apiKeyEnv[t]
	}
	for _, name := range append(names, "ASKFRAME_API_KEY") {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the provider and model type.
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case ProviderGenkit:
	case ProviderEino:
		if c.Backend.APIType == llm.ModelTypeUnknown {
			return fmt.Errorf("backend.type is required for the eino provider")
		}
		if llm.NewModelType(string(c.Backend.APIType)) == llm.ModelTypeUnknown {
			return fmt.Errorf("unsupported backend.type %q", c.Backend.APIType)
		}
	default:
		return fmt.Errorf("unsupported backend.provider %q", c.Backend.Provider)
	}
	return nil
}
