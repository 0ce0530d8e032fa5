// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"fmt"

	"github.com/bureau-foundation/sshield/lib/keymaterial"
)

// DefaultPort is the SSH port assumed when a record does not name one.
const DefaultPort = 22

// Codec turns a stored blob back into key material.
type Codec interface {
	Decode(blob []byte) (keymaterial.Material, error)
}

// Record is one persisted row. EncodedKey is opaque to this package.
type Record struct {
	Nickname   string
	User       string
	Host       string
	Port       int
	EncodedKey []byte
	Cipher     string
}

func (r Record) validate() error {
	if r.Nickname == "" {
		return fmt.Errorf("nickname is required")
	}
	if r.Port < 1 || r.Port > 65535 {
		return fmt.Errorf("port %d out of range", r.Port)
	}
	if len(r.EncodedKey) == 0 {
		return fmt.Errorf("encoded key is empty")
	}
	return nil
}

// ProcessedKey is a record with its key decoded. It is built only by
// the Store and never written back.
type ProcessedKey struct {
	Nickname string
	User     string
	Host     string
	Port     int
	Cipher   string
	Material keymaterial.Material
}

// PublicBase64 returns the base64 wire form of the public key.
func (k ProcessedKey) PublicBase64() string {
	return k.Material.PublicBase64()
}

// AuthorizedKey returns the authorized_keys line for this key, with
// the nickname as comment.
func (k ProcessedKey) AuthorizedKey() string {
	return keymaterial.AuthorizedKey(k.Material, k.Nickname)
}

func (k ProcessedKey) String() string {
	return fmt.Sprintf("SSH key '%s' for %s@%s:%d using cipher '%s'\n%s",
		k.Nickname, k.User, k.Host, k.Port, k.Cipher, k.AuthorizedKey())
}

// Update names the fields to change. Nil fields keep their stored
// value.
type Update struct {
	User *string
	Host *string
	Port *int
}

// Empty reports whether no field is set.
func (u Update) Empty() bool {
	return u.User == nil && u.Host == nil && u.Port == nil
}
