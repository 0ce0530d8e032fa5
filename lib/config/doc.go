// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads sshield's YAML configuration file.
//
// The file is located by:
//   - the SSHIELD_CONFIG environment variable, or
//   - $XDG_CONFIG_HOME/sshield/sshield.yaml (~/.config when XDG_CONFIG_HOME
//     is unset)
//
// A missing file at the default location is created with [Default]
// values on first use; a missing file named by SSHIELD_CONFIG is an
// error. ${VAR} and ${VAR:-default} patterns in path fields are
// expanded after loading. Environment variables never override values
// set in the file.
package config
