package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Source selects the transport the user list is read from.
type Source string

const (
	SourceREST    Source = "rest"
	SourceGraphQL Source = "graphql"
)

// Config captures roster's runtime settings.
type Config struct {
	Source          Source
	BaseURL         string
	GraphQLEndpoint string
	PageSize        int
	PollInterval    time.Duration
	LogFile         string
}

const (
	defaultConfigPath = "~/.config/roster/config.toml"
	defaultLogFile    = "~/.local/state/roster/roster.log"
	defaultBaseURL    = "https://jsonplaceholder.typicode.com"
	defaultPageSize   = 3
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Source:   SourceREST,
		BaseURL:  defaultBaseURL,
		PageSize: defaultPageSize,
		LogFile:  mustExpand(defaultLogFile),
	}
}

// Load locates and parses the roster config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Source          string `toml:"source"`
		BaseURL         string `toml:"base_url"`
		GraphQLEndpoint string `toml:"graphql_endpoint"`
		PageSize        int    `toml:"page_size"`
		PollSeconds     int    `toml:"poll_seconds"`
		LogFile         string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	switch src := Source(strings.ToLower(strings.TrimSpace(raw.Source))); src {
	case "":
	case SourceREST, SourceGraphQL:
		cfg.Source = src
	default:
		return Config{}, fmt.Errorf("parse config: unknown source %q", raw.Source)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	cfg.GraphQLEndpoint = strings.TrimSpace(raw.GraphQLEndpoint)
	if cfg.Source == SourceGraphQL && cfg.GraphQLEndpoint == "" {
		return Config{}, fmt.Errorf("parse config: source %q requires graphql_endpoint", SourceGraphQL)
	}

	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if raw.PollSeconds < 0 {
		return Config{}, fmt.Errorf("parse config: poll_seconds must not be negative")
	}
	cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	return cfg, nil
}

// LogDir returns the directory holding the log file.
func (c Config) LogDir() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return filepath.Dir(mustExpand(defaultLogFile))
	}
	return filepath.Dir(c.LogFile)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
