package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Model struct {
		VectorizerPath string `yaml:"vectorizer_path"`
		ClassifierPath string `yaml:"classifier_path"`
		PreloadOnStart bool   `yaml:"preload_on_start"`
	} `yaml:"model"`

	Validation struct {
		MaxTextLength int `yaml:"max_text_length"`
	} `yaml:"validation"`

	History struct {
		PageSize    int `yaml:"page_size"`
		SearchLimit int `yaml:"search_limit"`
	} `yaml:"history"`

	Insights struct {
		Limit    int `yaml:"limit"`
		MinCount int `yaml:"min_count"`
	} `yaml:"insights"`

	RateLimit struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// LoadConfig reads configuration from the specified YAML file and applies
// defaults for anything left unset.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	applyDefaults(config)
	return config, nil
}

// Default returns a configuration with every value defaulted, used when no
// config file is present.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8000"
	}
	if config.Model.VectorizerPath == "" {
		config.Model.VectorizerPath = "./data/vectorizer.bin"
	}
	if config.Model.ClassifierPath == "" {
		config.Model.ClassifierPath = "./data/classifier.bin"
	}
	if config.Validation.MaxTextLength == 0 {
		config.Validation.MaxTextLength = 1000
	}
	if config.History.PageSize == 0 {
		config.History.PageSize = 10
	}
	if config.History.SearchLimit == 0 {
		config.History.SearchLimit = 10
	}
	if config.Insights.Limit == 0 {
		config.Insights.Limit = 30
	}
	if config.Insights.MinCount == 0 {
		config.Insights.MinCount = 2
	}
	if config.RateLimit.RequestsPerSecond == 0 {
		config.RateLimit.RequestsPerSecond = 10
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = 20
	}
}
