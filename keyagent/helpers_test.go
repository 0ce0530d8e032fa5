// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/bureau-foundation/sshield/lib/keymaterial"
	"github.com/bureau-foundation/sshield/lib/keystore"
	"github.com/bureau-foundation/sshield/lib/testutil"
)

func testKey(t *testing.T, nickname string) keystore.ProcessedKey {
	t.Helper()
	material, err := keymaterial.Generate(keymaterial.ED25519)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return keystore.ProcessedKey{
		Nickname: nickname,
		User:     "deploy",
		Host:     "build.example.com",
		Port:     keystore.DefaultPort,
		Cipher:   material.Cipher(),
		Material: material,
	}
}

func testPublicKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	return testKey(t, "scratch").Material.PublicKey
}

// scriptedAuthorizer denies requests of the listed kinds and identities
// with the listed comments.
type scriptedAuthorizer struct {
	mu             sync.Mutex
	denyKinds      map[RequestKind]bool
	denyComments   map[string]bool
	seenRequests   []RequestKind
	seenIdentities []string
}

func (a *scriptedAuthorizer) ConfirmIdentity(ctx context.Context, identity Identity) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seenIdentities = append(a.seenIdentities, identity.Comment)
	if a.denyComments[identity.Comment] {
		return ErrDenied
	}
	return nil
}

func (a *scriptedAuthorizer) ConfirmRequest(ctx context.Context, request Request) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seenRequests = append(a.seenRequests, request.Kind)
	if a.denyKinds[request.Kind] {
		return ErrDenied
	}
	return nil
}

func (a *scriptedAuthorizer) requests() []RequestKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]RequestKind(nil), a.seenRequests...)
}

// startAgent serves an agent in the background under a fresh socket
// directory. The returned stop function cancels it and waits for Serve
// to return; it is also registered as a cleanup.
func startAgent(t *testing.T, authorizer Authorizer) (server *Server, stop func()) {
	t.Helper()
	path := filepath.Join(testutil.SocketDir(t), "run", "agent.sock")
	server, err := NewServer(ServerConfig{SocketPath: path, Authorizer: authorizer})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "waiting for agent socket")

	var stopped bool
	stop = func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Serve"); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}
	t.Cleanup(stop)
	return server, stop
}
