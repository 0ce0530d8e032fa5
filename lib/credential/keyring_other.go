// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package credential

import (
	"errors"

	"github.com/bureau-foundation/sshield/lib/secret"
)

var errNoKeyring = errors.New("kernel keyring is only available on linux")

// Keyring is unavailable on this platform; every operation reports
// that nothing is cached.
type Keyring struct {
	description string
}

// NewKeyring returns a keyring entry named "sshield:<user>".
func NewKeyring(user string) *Keyring {
	return &Keyring{description: "sshield:" + user}
}

// Description returns the key description.
func (k *Keyring) Description() string { return k.description }

func (k *Keyring) Load() (*secret.Buffer, error) { return nil, ErrNotCached }

func (k *Keyring) Save(*secret.Buffer) error { return errNoKeyring }

func (k *Keyring) Delete() error { return nil }
