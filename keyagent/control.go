// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/bureau-foundation/sshield/lib/clock"
	"github.com/bureau-foundation/sshield/lib/service"
	"github.com/bureau-foundation/sshield/lib/version"
)

// ActionStatus is the control socket action answered with a Status.
const ActionStatus = "status"

// Status describes a running daemon.
type Status struct {
	PID           int              `json:"pid"`
	Version       string           `json:"version"`
	Socket        string           `json:"socket"`
	Policy        string           `json:"policy"`
	LastApproved  string           `json:"last_approved,omitempty"`
	StartedAt     string           `json:"started_at"`
	Sandbox       string           `json:"sandbox"`
	SandboxDigest string           `json:"sandbox_digest"`
	Identities    []IdentityStatus `json:"identities"`
}

// IdentityStatus describes one key held by the agent.
type IdentityStatus struct {
	Comment     string `json:"comment"`
	Type        string `json:"type"`
	Fingerprint string `json:"fingerprint"`
}

// ControlConfig holds the parameters for NewControlServer.
type ControlConfig struct {
	SocketPath string
	Server     *Server
	Policy     *Policy

	// Sandbox and SandboxDigest identify the installed syscall
	// profile.
	Sandbox       string
	SandboxDigest string

	Clock  clock.Clock
	Logger *slog.Logger
}

// NewControlServer returns a control socket server answering
// ActionStatus. The caller runs Listen and Serve.
func NewControlServer(cfg ControlConfig) *service.SocketServer {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	startedAt := clk.Now().UTC().Format(time.RFC3339)

	server := service.NewSocketServer(cfg.SocketPath, cfg.Logger)
	server.Handle(ActionStatus, func(ctx context.Context, raw []byte) (any, error) {
		status := Status{
			PID:           os.Getpid(),
			Version:       version.Info(),
			Socket:        cfg.Server.SocketPath(),
			Policy:        cfg.Policy.Prompt().String(),
			StartedAt:     startedAt,
			Sandbox:       cfg.Sandbox,
			SandboxDigest: cfg.SandboxDigest,
			Identities:    []IdentityStatus{},
		}
		if last := cfg.Policy.State().LastApproved(); !last.IsZero() {
			status.LastApproved = last.UTC().Format(time.RFC3339)
		}

		keys, err := cfg.Server.Keyring().List()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			status.Identities = append(status.Identities, IdentityStatus{
				Comment:     key.Comment,
				Type:        key.Type(),
				Fingerprint: ssh.FingerprintSHA256(key),
			})
		}
		return status, nil
	})
	return server
}

// QueryStatus asks the daemon at controlPath for its Status.
func QueryStatus(ctx context.Context, controlPath string) (Status, error) {
	var status Status
	err := service.NewClient(controlPath).Call(ctx, ActionStatus, nil, &status)
	return status, err
}
