// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the sshield command tree.
//
// Every command follows the same preamble: load the configuration,
// install the command's seccomp profile (Management for commands that
// only touch the key database, Serving for those that reach the agent
// socket), then obtain the master password and open the key store.
// The password is verified against the first stored key before any
// write, so a mistyped password cannot seal new keys under a second
// password.
//
// [App] carries the process environment (output streams, terminal,
// and the hooks tests replace: config loading, sandbox installation,
// password source, consent).
package commands
