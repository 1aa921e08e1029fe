package word2quiz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the word2quiz service configuration.
type Config struct {
	DBPath            string `yaml:"db_path"`
	ExpectedQuestions int    `yaml:"expected_questions"`
	NormalizeFontSize int    `yaml:"normalize_fontsize"`
	MaxFileSize       int64  `yaml:"max_file_size"`
	HTTPAddr          string `yaml:"http_addr"`

	// DocsRoot confines document paths to one directory. Empty allows any
	// path the process can read.
	DocsRoot string `yaml:"docs_root"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "word2quiz.db"
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8087"
	}
}

func (c *Config) check() error {
	if c.ExpectedQuestions < 0 {
		return fmt.Errorf("expected_questions must not be negative, got %d", c.ExpectedQuestions)
	}
	if c.NormalizeFontSize < 0 {
		return fmt.Errorf("normalize_fontsize must not be negative, got %d", c.NormalizeFontSize)
	}
	return nil
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
