// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// # Configuration Precedence
//
// Configuration is resolved from (highest first):
//   - Command line flags (--api-url, --token), applied by main
//   - Environment variables (PWCHANGE_*)
//   - ~/.pwchange/config.toml
//   - Built-in defaults
//
// # Example
//
//	[auth]
//	base_url = "https://api.example.com"
//	change_password_path = "/auth/change-password"
//	timeout_secs = 30
//	min_interval_ms = 1000
//
//	[ui]
//	validate_on_change = false
//
//	[log]
//	level = "info"
//	format = "console"
//
// The token is best supplied through PWCHANGE_TOKEN rather than the file.
package config
