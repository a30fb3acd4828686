package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Values come from defaults, then an
// optional YAML file, then environment overrides, in that order.
type Config struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"` // empty = serve from the JSON files only
	CardsPath   string `yaml:"cards_path"`
	SetsPath    string `yaml:"sets_path"`
	ResultLimit int    `yaml:"result_limit"`
	Workers     int    `yaml:"workers"` // 0 = GOMAXPROCS
}

func Default() Config {
	return Config{
		Addr:        ":8080",
		CardsPath:   "cards.json",
		SetsPath:    "sets.json",
		ResultLimit: 300,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv layers CARDSEARCH_* environment variables on top.
func (c Config) ApplyEnv() Config {
	if v := os.Getenv("CARDSEARCH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("CARDSEARCH_DB_DSN"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("CARDSEARCH_CARDS_PATH"); v != "" {
		c.CardsPath = v
	}
	if v := os.Getenv("CARDSEARCH_SETS_PATH"); v != "" {
		c.SetsPath = v
	}
	if v := os.Getenv("CARDSEARCH_RESULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ResultLimit = n
		}
	}
	if v := os.Getenv("CARDSEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
	return c
}
