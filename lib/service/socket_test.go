// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/sshield/lib/codec"
	"github.com/bureau-foundation/sshield/lib/testutil"
)

type echoRequest struct {
	Action string `cbor:"action"`
	Text   string `cbor:"text"`
}

type echoResult struct {
	Text string `cbor:"text"`
}

// startServer listens and serves in the background. The returned stop
// function cancels the server and waits for Serve to return.
func startServer(t *testing.T, server *SocketServer) (stop func()) {
	t.Helper()
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

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
	return stop
}

func newEchoServer(t *testing.T) (*SocketServer, string) {
	t.Helper()
	path := filepath.Join(testutil.SocketDir(t), "control.sock")
	server := NewSocketServer(path, nil)
	server.Handle("echo", func(ctx context.Context, raw []byte) (any, error) {
		var request echoRequest
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, err
		}
		return echoResult{Text: request.Text}, nil
	})
	server.Handle("fail", func(ctx context.Context, raw []byte) (any, error) {
		return nil, fmt.Errorf("deliberate failure")
	})
	server.Handle("empty", func(ctx context.Context, raw []byte) (any, error) {
		return nil, nil
	})
	return server, path
}

func TestCallSuccess(t *testing.T) {
	server, path := newEchoServer(t)
	startServer(t, server)

	var result echoResult
	err := NewClient(path).Call(context.Background(), "echo", map[string]any{"text": "hello"}, &result)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.Text != "hello" {
		t.Errorf("Text = %q, want hello", result.Text)
	}

	if err := NewClient(path).Call(context.Background(), "empty", nil, &result); err != nil {
		t.Fatalf("Call empty: %v", err)
	}
}

func TestCallHandlerError(t *testing.T) {
	server, path := newEchoServer(t)
	startServer(t, server)

	err := NewClient(path).Call(context.Background(), "fail", nil, nil)
	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("Call fail: got %v, want *ServiceError", err)
	}
	if serviceError.Message != "deliberate failure" {
		t.Errorf("Message = %q", serviceError.Message)
	}
}

func TestCallUnknownAction(t *testing.T) {
	server, path := newEchoServer(t)
	startServer(t, server)

	err := NewClient(path).Call(context.Background(), "nope", nil, nil)
	var serviceError *ServiceError
	if !errors.As(err, &serviceError) {
		t.Fatalf("got %v, want *ServiceError", err)
	}
}

func TestSocketModeAndRemoval(t *testing.T) {
	server, path := newEchoServer(t)
	stop := startServer(t, server)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("socket mode = %o, want 600", mode)
	}

	stop()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("socket still present after Serve returned: %v", err)
	}
}

func TestListenRefusesExistingPath(t *testing.T) {
	server, path := newEchoServer(t)
	startServer(t, server)

	second := NewSocketServer(path, nil)
	if err := second.Listen(); err == nil {
		t.Fatal("second Listen on a live socket succeeded")
	}
}

func TestCallNoServer(t *testing.T) {
	path := filepath.Join(testutil.SocketDir(t), "absent.sock")
	if err := NewClient(path).Call(context.Background(), "echo", nil, nil); err == nil {
		t.Fatal("Call with no server succeeded")
	}
}

func TestDuplicateHandlePanics(t *testing.T) {
	server := NewSocketServer("/unused", nil)
	server.Handle("status", func(context.Context, []byte) (any, error) { return nil, nil })
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Handle did not panic")
		}
	}()
	server.Handle("status", func(context.Context, []byte) (any, error) { return nil, nil })
}
