// Package config loads roster's TOML configuration file.
//
// # Overview
//
// The config decides which user source roster reads from, how large a page
// is, whether queries poll, and where the structured log goes. Every field is
// optional; roster works out of the box against the public jsonplaceholder
// REST API with no file present.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/roster/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # TOML Format
//
//	source = "rest"                 # or "graphql"
//	base_url = "https://jsonplaceholder.typicode.com"
//	graphql_endpoint = "http://localhost:4000/graphql"
//	page_size = 3
//	poll_seconds = 0                # 0 disables automatic polling
//	log_file = "~/.local/state/roster/roster.log"
//
// A graphql source requires graphql_endpoint. Tilde expansion is applied to
// log_file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors and invalid values (unknown source,
// negative poll_seconds). Missing config files are NOT an error.
package config
