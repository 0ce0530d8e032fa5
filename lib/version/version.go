// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/bureau-foundation/sshield/lib/version.Commit=...".
var (
	Version   = "0.1.0-dev"
	Commit    = ""
	BuildTime = ""
)

// build is what Info reports: the ldflags values, falling back to the
// VCS stamp the go command embeds.
type build struct {
	commit string
	dirty  bool
	time   string
}

func current() build {
	b := build{commit: Commit, time: BuildTime}
	if b.commit != "" {
		return b
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		b.commit = "unknown"
		return b
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.commit = setting.Value
			if len(b.commit) > 12 {
				b.commit = b.commit[:12]
			}
		case "vcs.modified":
			b.dirty = setting.Value == "true"
		case "vcs.time":
			if b.time == "" {
				b.time = setting.Value
			}
		}
	}
	if b.commit == "" {
		b.commit = "unknown"
	}
	return b
}

// Info returns "VERSION (COMMIT[-dirty][, TIME])".
func Info() string {
	b := current()
	commit := b.commit
	if b.dirty {
		commit += "-dirty"
	}
	if b.time == "" {
		return fmt.Sprintf("%s (%s)", Version, commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, b.time)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
