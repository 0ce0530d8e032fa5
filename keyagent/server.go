// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/ssh/agent"
)

// ServerConfig holds the parameters for NewServer.
type ServerConfig struct {
	// SocketPath is where the agent socket is bound. The parent
	// directory is created with mode 0700 if missing.
	SocketPath string

	// Authorizer gates every request. Nil approves everything.
	Authorizer Authorizer

	// Logger receives connection and lifecycle events.
	Logger *slog.Logger
}

// Server is the agent protocol listener.
type Server struct {
	socketPath string
	authorizer Authorizer
	keyring    agent.ExtendedAgent
	logger     *slog.Logger

	listener   net.Listener
	ready      chan struct{}
	readyOnce  sync.Once
	closeOnce  sync.Once
	connection sync.WaitGroup
}

// NewServer creates a Server with an empty in-memory keyring.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("keyagent: socket path is required")
	}
	authorizer := cfg.Authorizer
	if authorizer == nil {
		authorizer = AllowAll{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keyring, ok := agent.NewKeyring().(agent.ExtendedAgent)
	if !ok {
		return nil, fmt.Errorf("keyagent: keyring does not implement ExtendedAgent")
	}
	return &Server{
		socketPath: cfg.SocketPath,
		authorizer: authorizer,
		keyring:    keyring,
		logger:     logger,
		ready:      make(chan struct{}),
	}, nil
}

// SocketPath returns the agent socket path.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Ready is closed once Listen has bound the socket.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Keyring returns the unguarded in-memory keyring, for local status
// queries. It must not be exposed to clients.
func (s *Server) Keyring() agent.Agent {
	return s.keyring
}

// Listen binds the agent socket with mode 0600. A path that is already
// bound, live or stale, fails with a *SocketError; the file is never
// removed here.
func (s *Server) Listen() error {
	if s.listener != nil {
		return fmt.Errorf("keyagent: Listen called twice")
	}
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return &SocketError{Op: "bind", Path: s.socketPath, Err: err}
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return &SocketError{Op: "bind", Path: s.socketPath, Err: err}
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		os.Remove(s.socketPath)
		return &SocketError{Op: "bind", Path: s.socketPath, Err: err}
	}

	s.listener = listener
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("agent listening", "socket", s.socketPath)
	return nil
}

// Serve accepts connections until ctx is cancelled or Close is called.
// It calls Listen first if that has not happened. On return the
// listener is closed and the socket file removed.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	listener := s.listener

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-stopped:
		}
	}()

	var acceptErr error
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			var netError net.Error
			if errors.As(err, &netError) && netError.Timeout() {
				continue
			}
			acceptErr = &SocketError{Op: "accept", Path: s.socketPath, Err: err}
			break
		}

		s.connection.Add(1)
		go func() {
			defer s.connection.Done()
			s.serveConnection(ctx, conn)
		}()
	}

	s.Close()
	s.connection.Wait()
	return acceptErr
}

// Close closes the listener and removes the socket file. It is safe to
// call without Serve, more than once, and concurrently with Serve,
// which then returns. Before Listen it does nothing. Open connections
// are left to Serve's context.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	var err error
	s.closeOnce.Do(func() {
		if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = &SocketError{Op: "close", Path: s.socketPath, Err: closeErr}
		}
		if removeErr := os.Remove(s.socketPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			s.logger.Error("removing agent socket", "socket", s.socketPath, "error", removeErr)
			if err == nil {
				err = &SocketError{Op: "remove", Path: s.socketPath, Err: removeErr}
			}
			return
		}
		s.logger.Info("agent socket removed", "socket", s.socketPath)
	})
	return err
}

func (s *Server) serveConnection(ctx context.Context, conn net.Conn) {
	connectionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-connectionCtx.Done()
		conn.Close()
	}()

	guarded := &guardedAgent{ctx: connectionCtx, inner: s.keyring, authorizer: s.authorizer}
	if err := agent.ServeAgent(guarded, conn); err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		s.logger.Debug("agent connection ended", "error", err)
	}
}
