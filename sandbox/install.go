// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrAlreadyInstalled is returned by a second Install in one process.
var ErrAlreadyInstalled = errors.New("a seccomp profile is already installed")

var (
	installMu sync.Mutex
	installed *Profile
)

// Installed returns the profile in force, or nil.
func Installed() *Profile {
	installMu.Lock()
	defer installMu.Unlock()
	return installed
}

// Install loads profile into the kernel for every thread of the
// process. It is irreversible. Failure leaves the process unconfined;
// callers must treat it as fatal.
func Install(profile *Profile, logger *slog.Logger) error {
	if profile == nil {
		return errors.New("sandbox: nil profile")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	installMu.Lock()
	defer installMu.Unlock()
	if installed != nil {
		return ErrAlreadyInstalled
	}
	if err := load(profile); err != nil {
		return err
	}
	installed = profile
	logger.Debug("seccomp profile installed",
		"profile", profile.String(),
		"platform", profile.Platform(),
		"instructions", profile.Len(),
		"digest", profile.Digest(),
	)
	return nil
}
