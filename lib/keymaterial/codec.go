// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymaterial

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/sshield/lib/sealed"
	"github.com/bureau-foundation/sshield/lib/secret"
)

// ErrWrongPassword is returned when a blob cannot be unsealed with the
// codec's password.
var ErrWrongPassword = sealed.ErrWrongPassword

// SealedCodec seals PEM-encoded keys under a master password. It does
// not own Password; the caller closes it.
type SealedCodec struct {
	Password *secret.Buffer

	// WorkFactor is the scrypt log2(N) for new seals. Zero selects
	// sealed.DefaultWorkFactor.
	WorkFactor int
}

// Encode seals key and returns the blob with its cipher name.
func (c *SealedCodec) Encode(m Material, comment string) ([]byte, string, error) {
	encoded, err := EncodePEM(m.PrivateKey, comment)
	if err != nil {
		return nil, "", err
	}
	defer secret.Zero(encoded)

	blob, err := sealed.Seal(encoded, c.Password, c.WorkFactor)
	if err != nil {
		return nil, "", err
	}
	return blob, m.Cipher(), nil
}

// Decode unseals and parses a blob written by Encode.
func (c *SealedCodec) Decode(blob []byte) (Material, error) {
	plaintext, err := sealed.Open(blob, c.Password)
	if err != nil {
		return Material{}, err
	}
	defer plaintext.Close()
	return DecodePEM(plaintext.Bytes())
}

// Reseal decrypts blob with c and seals the same plaintext under next.
func (c *SealedCodec) Reseal(blob []byte, next *SealedCodec) ([]byte, error) {
	plaintext, err := sealed.Open(blob, c.Password)
	if err != nil {
		if errors.Is(err, sealed.ErrWrongPassword) {
			return nil, err
		}
		return nil, fmt.Errorf("unsealing: %w", err)
	}
	defer plaintext.Close()
	return sealed.Seal(plaintext.Bytes(), next.Password, next.WorkFactor)
}
