// SPDX-License-Identifier: MPL-2.0

// Package config handles ezn configuration using Viper with CUE as the file format.
//
// Values come from built-in defaults, then a CUE file, then EZN_* environment
// variables, each overriding the previous. The file is the one named by
// --config, else config.cue in the user config directory (XDG on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows), else ezn.cue
// in the working directory. Files are validated against config_schema.cue.
package config
