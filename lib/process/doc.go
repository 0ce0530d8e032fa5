// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint helper for sshield.
//
// Everything after startup logs through slog or prints through the CLI
// framework. The one legitimate raw write is the final error line in
// main(), when the command may have failed before any logger existed
// (bad flags, unreadable config, refused sandbox). [Exit] centralizes
// that write and the exit-code policy: errors carrying an ExitCode
// method exit with that code silently, everything else prints
// "error: ..." and exits 1.
package process
