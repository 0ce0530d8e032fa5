// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"

	"golang.org/x/crypto/ssh"
)

// RequestKind classifies an agent protocol request.
type RequestKind int

const (
	// RequestSign asks for a signature with a held key.
	RequestSign RequestKind = iota + 1
	// RequestAddIdentity adds a key to the agent.
	RequestAddIdentity
	// RequestList enumerates held public keys.
	RequestList
	// RequestRemove removes one or all keys.
	RequestRemove
	// RequestOther covers lock, unlock, and extensions.
	RequestOther
)

func (k RequestKind) String() string {
	switch k {
	case RequestSign:
		return "sign"
	case RequestAddIdentity:
		return "add-identity"
	case RequestList:
		return "list"
	case RequestRemove:
		return "remove"
	case RequestOther:
		return "other"
	}
	return "unknown"
}

// Request describes one agent operation awaiting approval.
type Request struct {
	Kind RequestKind

	// Key is the key to sign with or remove. Nil for list, remove-all,
	// and other requests.
	Key ssh.PublicKey

	// Operation names the specific call within the kind, e.g. "lock"
	// or an extension type.
	Operation string
}

// Identity describes a key being added to the agent.
type Identity struct {
	PublicKey ssh.PublicKey
	Comment   string
}

// Authorizer decides whether agent operations may proceed. A nil
// error approves; any error denies and is reported to the client as a
// protocol failure.
type Authorizer interface {
	ConfirmIdentity(ctx context.Context, identity Identity) error
	ConfirmRequest(ctx context.Context, request Request) error
}

// AllowAll approves everything.
type AllowAll struct{}

func (AllowAll) ConfirmIdentity(context.Context, Identity) error { return nil }

func (AllowAll) ConfirmRequest(context.Context, Request) error { return nil }
