// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/sshield/keyagent"
	"github.com/bureau-foundation/sshield/lib/config"
	"github.com/bureau-foundation/sshield/lib/keymaterial"
	"github.com/bureau-foundation/sshield/lib/keystore"
)

// ErrorCategory classifies command errors.
type ErrorCategory string

const (
	// CategoryValidation indicates invalid input: wrong argument
	// count, unparseable values, a bad config file.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a named key does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates a wrong master password or a request
	// the policy refused.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict indicates the operation conflicts with existing
	// state: a duplicate nickname, a socket already in use.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryUnavailable indicates no daemon is listening.
	CategoryUnavailable ErrorCategory = "unavailable"

	// CategoryInternal indicates an unexpected failure: I/O errors,
	// a corrupt store.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error. It wraps an inner error,
// preserving the chain for errors.Is and errors.As.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced key does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Unavailable creates an error for a daemon that is not running.
func Unavailable(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryUnavailable, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Classify wraps err in a ToolError according to the domain error it
// carries. An existing ToolError is returned unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return err
	}

	var (
		configError *config.Error
		socketError *keyagent.SocketError
	)
	category := CategoryInternal
	switch {
	case errors.Is(err, keystore.ErrNotFound):
		category = CategoryNotFound
	case errors.Is(err, keymaterial.ErrWrongPassword), errors.Is(err, keyagent.ErrDenied):
		category = CategoryForbidden
	case errors.As(err, &configError):
		category = CategoryValidation
	case errors.As(err, &socketError):
		switch {
		case socketError.InUse():
			category = CategoryConflict
		case socketError.Refused():
			category = CategoryUnavailable
		}
	}
	return &ToolError{Category: category, Err: err}
}
