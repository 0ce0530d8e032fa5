// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts key material at rest under the master
// password. It wraps filippo.io/age with a single scrypt passphrase
// recipient: the output of [Seal] is a binary age v1 file, and [Open]
// reverses it.
//
// Decrypted plaintext is returned as a *secret.Buffer so it stays out
// of the Go heap for as long as the caller holds it.
package sealed

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/bureau-foundation/sshield/lib/secret"
)

// DefaultWorkFactor is the scrypt log2(N) used when the caller passes
// zero. It matches age's own default.
const DefaultWorkFactor = 18

// MaxWorkFactor bounds the log2(N) accepted on decryption. Files
// sealed with a larger factor are rejected rather than consuming
// unbounded memory.
const MaxWorkFactor = 22

// ErrWrongPassword is returned by Open when the passphrase does not
// unwrap the file key.
var ErrWrongPassword = errors.New("sealed: incorrect password or corrupt ciphertext")

// Seal encrypts plaintext to an scrypt recipient derived from
// passphrase. A workFactor of zero selects DefaultWorkFactor.
func Seal(plaintext []byte, passphrase *secret.Buffer, workFactor int) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("sealed: plaintext is empty")
	}
	if passphrase == nil || passphrase.Len() == 0 {
		return nil, fmt.Errorf("sealed: passphrase is empty")
	}
	if workFactor == 0 {
		workFactor = DefaultWorkFactor
	}
	if workFactor < 1 || workFactor > MaxWorkFactor {
		return nil, fmt.Errorf("sealed: work factor %d out of range [1, %d]", workFactor, MaxWorkFactor)
	}

	recipient, err := age.NewScryptRecipient(passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("sealed: creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(workFactor)

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return nil, fmt.Errorf("sealed: starting encryption: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("sealed: writing plaintext: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("sealed: finalizing encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Open decrypts a file produced by Seal. The caller must Close the
// returned buffer.
func Open(ciphertext []byte, passphrase *secret.Buffer) (*secret.Buffer, error) {
	if len(ciphertext) == 0 {
		return nil, fmt.Errorf("sealed: ciphertext is empty")
	}
	if passphrase == nil || passphrase.Len() == 0 {
		return nil, fmt.Errorf("sealed: passphrase is empty")
	}

	identity, err := age.NewScryptIdentity(passphrase.String())
	if err != nil {
		return nil, fmt.Errorf("sealed: creating scrypt identity: %w", err)
	}
	identity.SetMaxWorkFactor(MaxWorkFactor)

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("sealed: decrypting: %w", err)
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("sealed: reading plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("sealed: decrypted payload is empty")
	}
	return secret.NewFromBytes(plaintext)
}
