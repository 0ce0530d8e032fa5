// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the sshield build. [Version], [Commit], and
// [BuildTime] may be injected with -ldflags -X; when Commit is not,
// the revision and time recorded by the go command's VCS stamping are
// used instead. [Info] appears in status output and [Full] in the
// version command.
package version
