// SPDX-License-Identifier: MPL-2.0

// Package config handles hslink configuration using Viper with CUE as the file format.
//
// Files are looked up in order: the --config path, hslink.cue in the project
// directory, then config.cue in the user config directory
// ($XDG_CONFIG_HOME/hslink on Linux, ~/Library/Application Support/hslink on
// macOS, %APPDATA%\hslink on Windows). Files are validated against the
// embedded config_schema.cue. HSLINK_* environment variables override file
// values, and a project .env file supplies variables the environment lacks.
package config
