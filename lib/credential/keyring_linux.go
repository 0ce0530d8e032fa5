// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package credential

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/sshield/lib/secret"
)

// Keyring caches the password as a "user" key in the kernel user
// keyring. The key lives until logout or Delete and is readable only
// by processes of the same uid.
type Keyring struct {
	description string
}

// NewKeyring returns a keyring entry named "sshield:<user>".
func NewKeyring(user string) *Keyring {
	return &Keyring{description: "sshield:" + user}
}

// Description returns the kernel key description.
func (k *Keyring) Description() string {
	return k.description
}

func (k *Keyring) search() (int, error) {
	id, err := unix.KeyctlSearch(unix.KEY_SPEC_USER_KEYRING, "user", k.description, 0)
	if err != nil {
		if errors.Is(err, unix.ENOKEY) || errors.Is(err, unix.EKEYEXPIRED) || errors.Is(err, unix.EKEYREVOKED) {
			return 0, ErrNotCached
		}
		return 0, fmt.Errorf("searching keyring for %s: %w", k.description, err)
	}
	return id, nil
}

// Load reads the cached password.
func (k *Keyring) Load() (*secret.Buffer, error) {
	id, err := k.search()
	if err != nil {
		return nil, err
	}

	size, err := unix.KeyctlBuffer(unix.KEYCTL_READ, id, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("reading key %s: %w", k.description, err)
	}
	if size == 0 {
		return nil, ErrNotCached
	}

	buffer, err := secret.New(size)
	if err != nil {
		return nil, err
	}
	if _, err := unix.KeyctlBuffer(unix.KEYCTL_READ, id, buffer.Bytes(), 0); err != nil {
		buffer.Close()
		return nil, fmt.Errorf("reading key %s: %w", k.description, err)
	}
	return buffer, nil
}

// Save creates or replaces the cached password.
func (k *Keyring) Save(password *secret.Buffer) error {
	if _, err := unix.AddKey("user", k.description, password.Bytes(), unix.KEY_SPEC_USER_KEYRING); err != nil {
		return fmt.Errorf("adding key %s: %w", k.description, err)
	}
	return nil
}

// Delete unlinks the cached password. Deleting an absent entry
// succeeds.
func (k *Keyring) Delete() error {
	id, err := k.search()
	if errors.Is(err, ErrNotCached) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := unix.KeyctlInt(unix.KEYCTL_UNLINK, id, unix.KEY_SPEC_USER_KEYRING, 0, 0); err != nil {
		return fmt.Errorf("unlinking key %s: %w", k.description, err)
	}
	return nil
}
