package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/five82/roster/internal/config"
	"github.com/five82/roster/internal/observability"
	"github.com/five82/roster/internal/query"
	"github.com/five82/roster/internal/source"
)

func usersAPI(t *testing.T, total int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			http.NotFound(w, r)
			return
		}
		start, _ := strconv.Atoi(r.URL.Query().Get("_start"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("_limit"))
		users := []source.User{}
		for i := start; i < total && i < start+limit; i++ {
			users = append(users, source.User{ID: i + 1, Name: "user-" + strconv.Itoa(i+1)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(users)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, baseURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "roster.log")
	body := "base_url = \"" + baseURL + "\"\npage_size = 3\nlog_file = \"" + logFile + "\"\n"
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, logFile
}

func runWatch(t *testing.T, opts WatchOptions) (string, error) {
	t.Helper()
	var out bytes.Buffer
	opts.Out = &out
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := Watch(ctx, opts)
	if ctx.Err() != nil {
		t.Fatalf("Watch did not finish before the deadline")
	}
	return out.String(), err
}

func TestWatch_OnceWithPagesPrintsSummaries(t *testing.T) {
	server := usersAPI(t, 5)
	cfgPath, logFile := writeConfig(t, server.URL)

	out, err := runWatch(t, WatchOptions{
		ConfigPath: cfgPath,
		Pages:      1,
		Once:       true,
		Format:     FormatSummary,
	})
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if got := lines[len(lines)-1]; got != "READY gen=2 users=5 more=false poll=false" {
		t.Fatalf("last line = %q, want merged READY summary\n%s", got, out)
	}
	if !strings.Contains(out, "FETCHING_MORE gen=2 users=3 more=true poll=false") {
		t.Fatalf("output missing FETCHING_MORE transition:\n%s", out)
	}
	if !strings.Contains(out, "READY gen=1 users=3 more=true") {
		t.Fatalf("output missing first page:\n%s", out)
	}

	logged, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile(log): %v", err)
	}
	if !strings.Contains(string(logged), `"msg":"query.fetch.success"`) {
		t.Fatalf("log file missing fetch events:\n%s", logged)
	}
}

func TestWatch_YAMLDocuments(t *testing.T) {
	server := usersAPI(t, 2)
	cfgPath, _ := writeConfig(t, server.URL)

	out, err := runWatch(t, WatchOptions{ConfigPath: cfgPath, Once: true})
	if err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}

	dec := yaml.NewDecoder(strings.NewReader(out))
	var last map[string]any
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("decode yaml: %v\n%s", err, out)
		}
		last = doc
	}
	if last["status"] != "READY" {
		t.Fatalf("last status = %v, want READY\n%s", last["status"], out)
	}
	result, _ := last["result"].(map[string]any)
	users, _ := result["users"].([]any)
	if len(users) != 2 || result["has_more"] != false {
		t.Fatalf("result = %v, want 2 users without more", result)
	}
}

func TestWatch_OnceReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	cfgPath, _ := writeConfig(t, server.URL)

	out, err := runWatch(t, WatchOptions{ConfigPath: cfgPath, Once: true, Pages: 2, Format: FormatSummary})
	if err == nil || !strings.Contains(err.Error(), "returned status 503") {
		t.Fatalf("Watch error = %v, want status 503", err)
	}
	var fe *query.FetchError
	if !errors.As(err, &fe) || fe.Kind != query.KindInitial {
		t.Fatalf("Watch error = %#v, want initial FetchError", err)
	}
	if !strings.Contains(out, "ERROR gen=1 users=0") {
		t.Fatalf("output missing ERROR summary:\n%s", out)
	}
}

func TestWatch_RejectsUnknownFormat(t *testing.T) {
	server := usersAPI(t, 1)
	cfgPath, _ := writeConfig(t, server.URL)

	_, err := runWatch(t, WatchOptions{ConfigPath: cfgPath, Format: "xml"})
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("Watch error = %v, want unknown output format", err)
	}
}

func TestWatch_UnknownObserver(t *testing.T) {
	server := usersAPI(t, 1)
	cfgPath, _ := writeConfig(t, server.URL)

	_, err := runWatch(t, WatchOptions{ConfigPath: cfgPath, Observer: "nope"})
	if err == nil || !strings.Contains(err.Error(), "resolve observer") {
		t.Fatalf("Watch error = %v, want resolve observer error", err)
	}
}

func TestNewer(t *testing.T) {
	type snap = query.State[source.UserPage]
	tests := []struct {
		name string
		st   snap
		last snap
		want bool
	}{
		{"higher generation", snap{Generation: 2, Status: query.StatusRefetching}, snap{Generation: 1, Status: query.StatusReady}, true},
		{"older generation", snap{Generation: 1, Status: query.StatusReady}, snap{Generation: 2, Status: query.StatusRefetching}, false},
		{"settles live attempt", snap{Generation: 1, Status: query.StatusReady}, snap{Generation: 1, Status: query.StatusFirstFetch}, true},
		{"replayed loading", snap{Generation: 1, Status: query.StatusFirstFetch}, snap{Generation: 1, Status: query.StatusReady}, false},
		{"duplicate", snap{Generation: 1, Status: query.StatusReady}, snap{Generation: 1, Status: query.StatusReady}, false},
		{"poll toggled", snap{Generation: 1, Status: query.StatusReady, PollActive: true}, snap{Generation: 1, Status: query.StatusReady}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newer(tt.st, tt.last); got != tt.want {
				t.Fatalf("newer = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildQuery_GraphQLRequiresEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Source = config.SourceGraphQL

	_, err := BuildQuery(cfg, observability.NoOpObserver{})
	if err == nil || !strings.Contains(err.Error(), "init graphql client") {
		t.Fatalf("BuildQuery error = %v, want graphql init error", err)
	}
}

func TestLoadConfig_PollOverride(t *testing.T) {
	server := usersAPI(t, 1)
	cfgPath, _ := writeConfig(t, server.URL)

	cfg, err := loadConfig(cfgPath, 7)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if cfg.PollInterval != 7*time.Second {
		t.Fatalf("PollInterval = %v, want 7s", cfg.PollInterval)
	}
}

func TestSetupLogging_RestoresDefaults(t *testing.T) {
	before := slog.Default()
	path := filepath.Join(t.TempDir(), "nested", "roster.log")

	closeLog, err := SetupLogging(path, true)
	if err != nil {
		t.Fatalf("SetupLogging returned error: %v", err)
	}
	slog.Debug("debug enabled", "k", "v")
	obs, err := observability.GetObserver("slog")
	if err != nil {
		t.Fatalf("GetObserver: %v", err)
	}
	obs.OnEvent(context.Background(), observability.Event{Type: "test.event", Level: observability.LevelInfo, Query: "t", QueryID: "q-1"})
	closeLog()

	if slog.Default() != before {
		t.Fatal("default logger not restored")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{`"msg":"debug enabled"`, `"msg":"test.event"`, `"query":"t"`, `"query_id":"q-1"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("log missing %s:\n%s", want, data)
		}
	}
}
