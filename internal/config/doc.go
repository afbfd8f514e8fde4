// Package config loads formhist settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults (Default).
//  2. A TOML, YAML or JSON file chosen by extension.
//  3. FORMHIST_* environment variables, e.g. FORMHIST_MAX_HISTORY=100 or
//     FORMHIST_HISTORY_EXCLUDE_FIELDS="password,secret*".
//
// Example TOML:
//
//	[history]
//	maxHistory = 100
//	debounceMs = 300
//	excludeFields = ["password", "card.*"]
//	enableBranching = false
//
//	[logging]
//	level = "debug"
//	sink = "file"
//	file = "/var/log/formhist.log"
package config
