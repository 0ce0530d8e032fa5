// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/crypto/ssh/agent"

	"github.com/bureau-foundation/sshield/lib/keystore"
)

const dialTimeout = 5 * time.Second

// KeySource supplies the keys a Loader adds. *keystore.Store
// implements it.
type KeySource interface {
	GetAll(ctx context.Context) ([]keystore.ProcessedKey, error)
}

// StaticKeys is a fixed KeySource, used to push a single freshly
// generated key into a running agent.
type StaticKeys []keystore.ProcessedKey

func (k StaticKeys) GetAll(context.Context) ([]keystore.ProcessedKey, error) {
	return k, nil
}

// Loader adds keys to a running agent through its socket, as any
// agent client would.
type Loader struct {
	SocketPath string
	Source     KeySource
	Logger     *slog.Logger
}

// Result counts the outcome of a Loader run.
type Result struct {
	Added  int
	Failed int
}

// Run waits for ready to close (a nil ready proceeds immediately),
// connects to the agent, and adds every key from Source with its
// nickname as comment. A connection failure aborts with a
// *SocketError. A key the agent rejects is logged and counted in
// Failed; the remaining keys are still added.
func (l *Loader) Run(ctx context.Context, ready <-chan struct{}) (Result, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if ready != nil {
		select {
		case <-ready:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", l.SocketPath)
	if err != nil {
		return Result{}, &SocketError{Op: "connect", Path: l.SocketPath, Err: err}
	}
	defer conn.Close()

	keys, err := l.Source.GetAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading keys: %w", err)
	}

	client := agent.NewClient(conn)
	var result Result
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		err := client.Add(agent.AddedKey{
			PrivateKey: key.Material.PrivateKey,
			Comment:    key.Nickname,
		})
		if err != nil {
			logger.Warn("agent rejected key", "nickname", key.Nickname, "error", err)
			result.Failed++
			continue
		}
		logger.Debug("key added to agent", "nickname", key.Nickname, "fingerprint", key.Material.Fingerprint())
		result.Added++
	}

	logger.Info("keys loaded into agent", "added", result.Added, "failed", result.Failed)
	return result, nil
}
