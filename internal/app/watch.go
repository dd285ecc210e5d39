package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/five82/roster/internal/metrics"
	"github.com/five82/roster/internal/observability"
	"github.com/five82/roster/internal/query"
	"github.com/five82/roster/internal/source"
)

// Output formats for Watch.
const (
	FormatYAML    = "yaml"
	FormatSummary = "summary"
)

// WatchOptions configure the headless watcher.
type WatchOptions struct {
	ConfigPath string
	PollEvery  int // seconds; zero uses the config value
	// Pages is the number of fetch-more requests issued after the first page.
	Pages int
	// Once closes the query after the first page (and Pages) settle.
	Once bool
	// Format is FormatYAML (default) or FormatSummary.
	Format string
	// MetricsAddr serves Prometheus metrics when set, e.g. "127.0.0.1:9464".
	MetricsAddr string
	Observer    string
	Debug       bool
	Out         io.Writer
}

// Watch runs a user query without a UI and prints every published snapshot
// until ctx is cancelled or, with Once, until the requested pages settle.
func Watch(ctx context.Context, opts WatchOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.PollEvery)
	if err != nil {
		return err
	}

	closeLog, err := SetupLogging(cfg.LogFile, opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	base, err := observability.GetObserver(observerName(opts.Observer))
	if err != nil {
		return fmt.Errorf("resolve observer: %w", err)
	}
	registry := prometheus.NewRegistry()
	metricsObserver, err := metrics.NewObserver(registry)
	if err != nil {
		return err
	}

	q, err := BuildQuery(cfg, observability.NewMultiObserver(base, metricsObserver))
	if err != nil {
		return err
	}
	defer q.Close()

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	pr, err := newPrinter(out, opts.Format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	states, unsubscribe := q.Subscribe(64)
	defer unsubscribe()

	g.Go(func() error {
		defer cancel()
		return printStates(pr, q.Snapshot(), states)
	})
	g.Go(func() error {
		<-gctx.Done()
		q.Close()
		return nil
	})
	g.Go(func() error {
		return drive(gctx, q, opts.Pages, opts.Once)
	})

	if opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		srv := &http.Server{Addr: opts.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			slog.Info("serving metrics", "addr", opts.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve metrics: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// drive waits for the first page, issues the requested fetch-more calls and,
// with once, closes the query. A first page that fails is reported as an
// error in once mode.
func drive(ctx context.Context, q *query.Query[source.UserPage], pages int, once bool) error {
	st, ok := awaitSettled(ctx, q)
	if !ok {
		return nil
	}

	for i := 0; i < pages; i++ {
		if st.Status != query.StatusReady || !st.Result.HasMore {
			break
		}
		if err := q.FetchMore().Wait(ctx); err != nil {
			return nil
		}
		st = q.Snapshot()
	}

	if !once {
		return nil
	}
	q.Close()
	if st.Status == query.StatusError {
		return fmt.Errorf("fetch users: %w", st.Err)
	}
	return nil
}

// awaitSettled blocks until no attempt is in flight. The subscription only
// lives until then so it does not accumulate a backlog while polling.
func awaitSettled(ctx context.Context, q *query.Query[source.UserPage]) (query.State[source.UserPage], bool) {
	states, stop := q.Subscribe(0)
	defer stop()

	st := q.Snapshot()
	for st.Status.InFlight() {
		select {
		case <-ctx.Done():
			return st, false
		case next, ok := <-states:
			if !ok {
				return st, false
			}
			st = next
		}
	}
	return st, true
}

func printStates(p printer, first query.State[source.UserPage], states <-chan query.State[source.UserPage]) error {
	if err := p.print(first); err != nil {
		return err
	}
	last := first
	for st := range states {
		if !newer(st, last) {
			continue
		}
		if err := p.print(st); err != nil {
			return err
		}
		last = st
	}
	return nil
}

// newer reports whether st follows last. Subscription starts after the first
// snapshot is read, so the channel may replay transitions already covered.
func newer(st, last query.State[source.UserPage]) bool {
	switch {
	case st.Generation != last.Generation:
		return st.Generation > last.Generation
	case last.Status.InFlight():
		return !st.Status.InFlight()
	default:
		return !st.Status.InFlight() && st.PollActive != last.PollActive
	}
}

type printer interface {
	print(st query.State[source.UserPage]) error
}

func newPrinter(w io.Writer, format string) (printer, error) {
	switch format {
	case "", FormatYAML:
		return &yamlPrinter{enc: yaml.NewEncoder(w)}, nil
	case FormatSummary:
		return summaryPrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// snapshotDoc adds the error text, which State omits from serialized forms.
type snapshotDoc struct {
	State query.State[source.UserPage] `yaml:",inline"`
	Error string                       `yaml:"error,omitempty"`
}

type yamlPrinter struct {
	enc *yaml.Encoder
}

func (p *yamlPrinter) print(st query.State[source.UserPage]) error {
	doc := snapshotDoc{State: st}
	if st.Err != nil {
		doc.Error = st.Err.Error()
	}
	if err := p.enc.Encode(doc); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

type summaryPrinter struct {
	w io.Writer
}

func (p summaryPrinter) print(st query.State[source.UserPage]) error {
	line := fmt.Sprintf("%s gen=%d users=%d more=%t poll=%t",
		st.Status, st.Generation, st.Result.Len(), st.Result.HasMore, st.PollActive)
	if st.Err != nil {
		line += fmt.Sprintf(" error=%q", st.Err.Error())
	}
	if st.IsOffline() {
		line += " offline"
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}
