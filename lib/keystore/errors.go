// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped with the nickname) when no record
// matches.
var ErrNotFound = errors.New("no such key")

// StorageError reports a failure of the underlying database: opening
// the file, creating the schema, or executing a statement.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("key store %s (%s): %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DecodeError reports a stored blob that the codec could not turn back
// into a key.
type DecodeError struct {
	Nickname string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding key %q: %v", e.Nickname, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
