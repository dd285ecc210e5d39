package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/roster/internal/config"
	"github.com/five82/roster/internal/observability"
	"github.com/five82/roster/internal/prefs"
	"github.com/five82/roster/internal/query"
	"github.com/five82/roster/internal/source"
	"github.com/five82/roster/internal/ui"
)

// Options configure the roster TUI.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/roster/prefs.toml
	PollEvery  int    // seconds; zero uses the config value
	// Observer names a registered observer for query events; empty uses "slog".
	Observer string
	Debug    bool
}

// Run boots the roster TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.PollEvery)
	if err != nil {
		return err
	}

	closeLog, err := SetupLogging(cfg.LogFile, opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	observer, err := observability.GetObserver(observerName(opts.Observer))
	if err != nil {
		return fmt.Errorf("resolve observer: %w", err)
	}

	q, err := BuildQuery(cfg, observer)
	if err != nil {
		return err
	}
	defer q.Close()

	if userPrefs.PollingPaused {
		q.StopPolling()
	}

	return ui.Run(ctx, ui.Options{
		Query:        q,
		Prefs:        userPrefs,
		PrefsPath:    opts.PrefsPath,
		PollInterval: cfg.PollInterval,
		SourceLabel:  sourceLabel(cfg),
	})
}

// BuildQuery wires the configured source into a user-list query.
func BuildQuery(cfg config.Config, observer observability.Observer) (*query.Query[source.UserPage], error) {
	qc := query.Config[source.UserPage]{
		Name:         "users",
		PollInterval: cfg.PollInterval,
		Observer:     observer,
	}

	switch cfg.Source {
	case config.SourceGraphQL:
		client, err := source.NewGraphQLClient(cfg.GraphQLEndpoint)
		if err != nil {
			return nil, fmt.Errorf("init graphql client: %w", err)
		}
		qc.Fetch = client.Fetcher(cfg.PageSize)
		qc.UpdateParams = source.CursorParams
	default:
		client, err := source.NewClient(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("init users client: %w", err)
		}
		qc.Fetch = client.Fetcher(cfg.PageSize)
	}

	q, err := query.New(qc)
	if err != nil {
		return nil, fmt.Errorf("create users query: %w", err)
	}
	return q, nil
}

func loadConfig(path string, pollEvery int) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load roster config: %w", err)
	}
	if pollEvery > 0 {
		cfg.PollInterval = time.Duration(pollEvery) * time.Second
	}
	return cfg, nil
}

func observerName(name string) string {
	if name == "" {
		return "slog"
	}
	return name
}

func sourceLabel(cfg config.Config) string {
	if cfg.Source == config.SourceGraphQL {
		return cfg.GraphQLEndpoint
	}
	return cfg.BaseURL
}
