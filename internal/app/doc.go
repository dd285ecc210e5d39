// Package app provides the orchestration layer for the roster application.
//
// # Overview
//
// This package wires together configuration, logging, the user source and
// the query lifecycle to build the two roster front ends: the interactive
// TUI (Run) and the headless watcher (Watch). It is the composition root
// where every dependency is initialized and connected.
//
// # Architecture
//
//  1. Load roster configuration from ~/.config/roster/config.toml
//  2. Point slog at the JSON log file and register the file-backed
//     "slog" observer
//  3. Build the source client (REST or GraphQL) and a users query
//  4. Hand the query to the UI, or subscribe to it and print snapshots
//
// # Components
//
//   - app.go: Run, BuildQuery and config overrides
//   - logging.go: SetupLogging (slog JSON handler plus observer registry)
//   - watch.go: Watch, the snapshot printers and the fetch-more driver
//
// # Data Flow
//
//	┌──────────────┐
//	│ Run()/Watch()│
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()         Read roster config
//	       ├─────> SetupLogging()        JSON log file, "slog" observer
//	       ├─────> BuildQuery()          source client + query.New
//	       └─────> ui.Run()              TUI (blocks)
//	               or errgroup:
//	                 printStates()       every published snapshot
//	                 drive()             --pages fetch-more, --once close
//	                 metrics server      /metrics (optional)
//
// # Polling Behavior
//
// Polling belongs to the query. When poll_seconds (or --poll) is set the
// query starts its timer after the first successful fetch; the UI can stop
// and restart it, and a saved "polling paused" preference stops it before
// the first tick.
//
// # Error Handling
//
// Startup failures (bad config, unwritable log file, unknown observer,
// invalid source) are returned wrapped. Fetch failures are not errors here:
// they are published as ERROR snapshots and rendered. The one exception is
// Watch in once mode, which returns the failure of the first page so scripts
// see a non-zero exit code.
package app
