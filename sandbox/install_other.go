// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux || !(amd64 || arm64)

package sandbox

import "fmt"

func load(profile *Profile) error {
	return fmt.Errorf("sandbox: installing %s profile: %w", profile, ErrUnsupported)
}
