// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/keyagent"
	"github.com/bureau-foundation/sshield/lib/consent"
	"github.com/bureau-foundation/sshield/sandbox"
)

func serveCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Summary: "Run the SSH agent",
		Description: `Unlock the key database, load every stored key into an in-memory
agent, and serve the SSH agent protocol on the configured socket until
interrupted. Point SSH_AUTH_SOCK at the socket to use it.

Signing requests are confirmed through the askpass program at most once
per prompt window (the "prompt" config setting, 0 to disable). The
process runs under the serving syscall profile: it may use Unix sockets
and run the askpass program, nothing else on the network.`,
		Usage: "sshield serve",
		Examples: []cli.Example{
			{Description: "Run the agent and use it from this shell", Command: "sshield serve &\nexport SSH_AUTH_SOCK=$XDG_RUNTIME_DIR/sshield/agent.sock"},
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs("serve", args, 0, 0, "no arguments"); err != nil {
				return err
			}
			return runServe(app)
		},
	}
}

func runServe(app *App) error {
	s, err := app.begin("serve", sandbox.Serving)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.unlock(); err != nil {
		return err
	}

	policy, err := s.newPolicy()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := keyagent.NewServer(keyagent.ServerConfig{
		SocketPath: s.config.Socket,
		Authorizer: policy,
		Logger:     s.logger,
	})
	if err != nil {
		return err
	}
	if err := server.Listen(); err != nil {
		return err
	}

	// The agent socket is ours, so any control socket left at the
	// neighbouring path belongs to a daemon that is gone.
	controlPath := s.config.ControlSocket()
	if err := os.Remove(controlPath); err == nil {
		s.logger.Info("removed stale control socket", "path", controlPath)
	}
	control := keyagent.NewControlServer(keyagent.ControlConfig{
		SocketPath:    controlPath,
		Server:        server,
		Policy:        policy,
		Sandbox:       s.profile.String(),
		SandboxDigest: s.profile.Digest(),
		Logger:        s.logger,
	})
	if err := control.Listen(); err != nil {
		server.Close()
		return &keyagent.SocketError{Op: "bind", Path: controlPath, Err: errors.Unwrap(err)}
	}

	var wait sync.WaitGroup
	serveErrors := make(chan error, 2)
	wait.Add(2)
	go func() {
		defer wait.Done()
		serveErrors <- server.Serve(ctx)
	}()
	go func() {
		defer wait.Done()
		serveErrors <- control.Serve(ctx)
	}()

	loader := &keyagent.Loader{
		SocketPath: server.SocketPath(),
		Source:     s.store,
		Logger:     s.logger,
	}
	result, loadErr := loader.Run(ctx, server.Ready())
	s.closeStore()
	if loadErr != nil && ctx.Err() == nil {
		s.logger.Error("loading keys into agent", "error", loadErr)
		stop()
		wait.Wait()
		return fmt.Errorf("loading keys into agent: %w", loadErr)
	}

	if ctx.Err() == nil {
		s.logger.Info("agent ready",
			"socket", server.SocketPath(),
			"control", controlPath,
			"keys", result.Added,
			"policy", policy.Prompt().String(),
			"sandbox", s.profile.String(),
		)
		fmt.Fprintf(app.stdout(), "SSH_AUTH_SOCK=%s; export SSH_AUTH_SOCK;\n", server.SocketPath())
		keyagent.NotifySystemd("READY=1")
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serveErrors:
		stop()
	}
	keyagent.NotifySystemd("STOPPING=1")
	wait.Wait()
	s.logger.Info("agent stopped", "socket", server.SocketPath())
	return serveErr
}

// newPolicy builds the consent policy from the prompt setting. The
// askpass program is only resolved when prompting is enabled.
func (s *session) newPolicy() (*keyagent.Policy, error) {
	prompt := keyagent.EveryNSeconds(s.config.Prompt)
	confirmer := s.app.Consent
	if prompt.Enabled() && confirmer == nil {
		program, err := consent.ResolveAskpass(s.config.Askpass)
		if err != nil {
			return nil, cli.Validation("%v", err)
		}
		confirmer = &consent.Askpass{Program: program, Logger: s.logger}
	}
	return keyagent.NewPolicy(keyagent.PolicyConfig{
		Prompt:  prompt,
		Consent: confirmer,
		Logger:  s.logger,
	})
}
