// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for sshield.
//
// The central type is [Command], a named subcommand with a
// [pflag.FlagSet] factory and a Run function. Commands are assembled
// into a tree by the commands package and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing,
// and help output with examples.
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]. Unknown subcommands and flags get a "did you
// mean" suggestion computed by Levenshtein distance (threshold: 3).
//
// Errors returned from Run are classified with [Classify] into a
// [ToolError] so the user sees a one-line message for expected
// failures (not found, duplicate) and the full chain for the rest.
package cli
