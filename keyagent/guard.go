// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"
	"fmt"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// guardedAgent puts an Authorizer in front of an ExtendedAgent. One is
// created per connection so the context can carry the connection's
// lifetime into consent prompts.
type guardedAgent struct {
	ctx        context.Context
	inner      agent.ExtendedAgent
	authorizer Authorizer
}

var _ agent.ExtendedAgent = (*guardedAgent)(nil)

func (g *guardedAgent) confirm(request Request) error {
	if err := g.authorizer.ConfirmRequest(g.ctx, request); err != nil {
		return fmt.Errorf("%s: %w", request.Kind, err)
	}
	return nil
}

func (g *guardedAgent) List() ([]*agent.Key, error) {
	if err := g.confirm(Request{Kind: RequestList, Operation: "list"}); err != nil {
		return nil, err
	}
	return g.inner.List()
}

func (g *guardedAgent) Sign(key ssh.PublicKey, data []byte) (*ssh.Signature, error) {
	if err := g.confirm(Request{Kind: RequestSign, Key: key, Operation: "sign"}); err != nil {
		return nil, err
	}
	return g.inner.Sign(key, data)
}

func (g *guardedAgent) SignWithFlags(key ssh.PublicKey, data []byte, flags agent.SignatureFlags) (*ssh.Signature, error) {
	if err := g.confirm(Request{Kind: RequestSign, Key: key, Operation: "sign"}); err != nil {
		return nil, err
	}
	return g.inner.SignWithFlags(key, data, flags)
}

func (g *guardedAgent) Add(key agent.AddedKey) error {
	signer, err := ssh.NewSignerFromKey(key.PrivateKey)
	if err != nil {
		return fmt.Errorf("add-identity: %w", err)
	}
	identity := Identity{PublicKey: signer.PublicKey(), Comment: key.Comment}
	if err := g.authorizer.ConfirmIdentity(g.ctx, identity); err != nil {
		return fmt.Errorf("add-identity: %w", err)
	}
	if err := g.confirm(Request{Kind: RequestAddIdentity, Key: identity.PublicKey, Operation: "add"}); err != nil {
		return err
	}
	return g.inner.Add(key)
}

func (g *guardedAgent) Remove(key ssh.PublicKey) error {
	if err := g.confirm(Request{Kind: RequestRemove, Key: key, Operation: "remove"}); err != nil {
		return err
	}
	return g.inner.Remove(key)
}

func (g *guardedAgent) RemoveAll() error {
	if err := g.confirm(Request{Kind: RequestRemove, Operation: "remove-all"}); err != nil {
		return err
	}
	return g.inner.RemoveAll()
}

func (g *guardedAgent) Lock(passphrase []byte) error {
	if err := g.confirm(Request{Kind: RequestOther, Operation: "lock"}); err != nil {
		return err
	}
	return g.inner.Lock(passphrase)
}

func (g *guardedAgent) Unlock(passphrase []byte) error {
	if err := g.confirm(Request{Kind: RequestOther, Operation: "unlock"}); err != nil {
		return err
	}
	return g.inner.Unlock(passphrase)
}

// Signers is never reachable over the wire. Handing out signers would
// bypass the policy, so it is refused.
func (g *guardedAgent) Signers() ([]ssh.Signer, error) {
	return nil, fmt.Errorf("signers: %w", ErrDenied)
}

func (g *guardedAgent) Extension(extensionType string, contents []byte) ([]byte, error) {
	if err := g.confirm(Request{Kind: RequestOther, Operation: extensionType}); err != nil {
		return nil, err
	}
	return g.inner.Extension(extensionType, contents)
}
