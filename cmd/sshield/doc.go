// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Sshield is an SSH agent backed by an encrypted key database. The
// management commands (gen-key, show-key, update-key, delete-key,
// import-key, change-password) edit the database; serve runs the agent
// with a time-windowed consent prompt on signing; status and
// add-keys-to-server talk to a running agent. Every command confines
// itself with a seccomp profile before reading the master password.
package main
