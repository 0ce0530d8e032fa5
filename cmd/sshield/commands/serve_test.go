// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/keyagent"
	"github.com/bureau-foundation/sshield/lib/testutil"
)

// startServe runs serve in the background and waits until the control
// socket answers. The returned function stops it and returns its error.
func startServe(t *testing.T, env *testEnv) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serveApp := *env.app
	serveApp.Context = ctx
	serveApp.Stdout = &syncBuffer{}

	done := make(chan error, 1)
	go func() {
		done <- Root(&serveApp).Execute([]string{"serve"})
	}()

	controlPath := env.config().ControlSocket()
	deadline := time.Now().Add(10 * time.Second)
	for {
		queryCtx, queryCancel := context.WithTimeout(context.Background(), time.Second)
		_, err := keyagent.QueryStatus(queryCtx, controlPath)
		queryCancel()
		if err == nil {
			break
		}
		select {
		case err := <-done:
			cancel()
			t.Fatalf("serve exited early: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("serve did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	stopped := false
	var result error
	stop := func() error {
		if stopped {
			return result
		}
		stopped = true
		cancel()
		result = testutil.RequireReceive(t, done, 10*time.Second, "waiting for serve to stop")
		return result
	}
	t.Cleanup(func() { stop() })
	return stop
}

// waitForIdentities polls status until the agent holds count keys.
func waitForIdentities(t *testing.T, env *testEnv, count int) keyagent.Status {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		output, err := env.run("status", "--json")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		var status keyagent.Status
		if err := json.Unmarshal([]byte(output), &status); err != nil {
			t.Fatalf("decoding status %q: %v", output, err)
		}
		if len(status.Identities) == count {
			return status
		}
		if time.Now().After(deadline) {
			t.Fatalf("agent holds %d identities, want %d", len(status.Identities), count)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestServeLoadsKeysAndReportsStatus(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("gen-key", "alpha", "ua", "ha")
	env.mustRun("gen-key", "beta", "ub", "hb")

	stop := startServe(t, env)
	status := waitForIdentities(t, env, 2)

	if status.PID != os.Getpid() {
		t.Errorf("pid = %d, want %d", status.PID, os.Getpid())
	}
	if status.Policy != "no-prompt" {
		t.Errorf("policy = %q, want no-prompt", status.Policy)
	}
	if status.Sandbox != "serving/v1" {
		t.Errorf("sandbox = %q, want serving/v1", status.Sandbox)
	}
	if len(status.SandboxDigest) != 64 {
		t.Errorf("sandbox digest = %q", status.SandboxDigest)
	}
	comments := map[string]bool{}
	for _, identity := range status.Identities {
		comments[identity.Comment] = true
	}
	if !comments["alpha"] || !comments["beta"] {
		t.Errorf("identities = %+v", status.Identities)
	}

	output := env.mustRun("status")
	for _, want := range []string{"Policy:", "no-prompt", "Last approved:", "never", "alpha", "beta"} {
		if !strings.Contains(output, want) {
			t.Errorf("status text missing %q:\n%s", want, output)
		}
	}

	if err := stop(); err != nil {
		t.Fatalf("serve returned %v", err)
	}
	cfg := env.config()
	for _, path := range []string{cfg.Socket, cfg.ControlSocket()} {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still present after serve stopped (stat: %v)", path, err)
		}
	}
}

func TestGenKeyInjectsIntoRunningAgent(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("gen-key", "alpha", "ua", "ha")
	startServe(t, env)
	waitForIdentities(t, env, 1)

	output := env.mustRun("gen-key", "beta", "ub", "hb")
	if !strings.Contains(output, "Added 'beta' to the running agent") {
		t.Errorf("gen-key did not report injection:\n%s", output)
	}
	waitForIdentities(t, env, 2)
}

func TestGenKeyNoAgentUsesManagementProfile(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("gen-key", "alpha", "ua", "ha")
	startServe(t, env)
	waitForIdentities(t, env, 1)

	before := len(env.profiles())
	output := env.mustRun("gen-key", "beta", "ub", "hb", "--no-agent")
	if strings.Contains(output, "running agent") {
		t.Errorf("gen-key --no-agent touched the agent:\n%s", output)
	}
	if confined := env.profiles()[before:]; len(confined) != 1 || confined[0] != "management" {
		t.Errorf("gen-key --no-agent confined as %v, want [management]", confined)
	}
	waitForIdentities(t, env, 1)

	env.mustRun("add-keys-to-server")
	waitForIdentities(t, env, 2)
}

func TestAddKeysToServer(t *testing.T) {
	env := newTestEnv(t)
	startServe(t, env)
	waitForIdentities(t, env, 0)

	// Written while serve runs: the agent socket exists, so gen-key
	// injects it; add-keys-to-server re-adds it harmlessly.
	env.mustRun("gen-key", "alpha", "ua", "ha")
	output := env.mustRun("add-keys-to-server")
	if !strings.Contains(output, "Added 1 key(s)") {
		t.Errorf("add-keys-to-server output = %q", output)
	}
	status := waitForIdentities(t, env, 1)
	if status.Identities[0].Comment != "alpha" {
		t.Errorf("identity = %+v", status.Identities[0])
	}
}

func TestServeSocketInUse(t *testing.T) {
	env := newTestEnv(t)
	startServe(t, env)

	_, err := env.run("serve")
	requireCategory(t, err, cli.CategoryConflict)
}

func TestServeControlSocketBlockedReleasesAgent(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.config()
	// A non-empty directory survives the stale-socket cleanup and makes
	// the control bind fail.
	if err := os.MkdirAll(filepath.Join(cfg.ControlSocket(), "occupied"), 0o700); err != nil {
		t.Fatal(err)
	}

	_, err := env.run("serve")
	requireCategory(t, err, cli.CategoryConflict)

	if _, err := os.Stat(cfg.Socket); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("agent socket left behind: %v", err)
	}
	server, err := keyagent.NewServer(keyagent.ServerConfig{SocketPath: cfg.Socket})
	if err != nil {
		t.Fatal(err)
	}
	if err := server.Listen(); err != nil {
		t.Fatalf("agent socket still held: %v", err)
	}
	server.Close()
}

func TestStatusNotRunning(t *testing.T) {
	env := newTestEnv(t)
	output, err := env.run("status")
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.ExitCode() != exitNotRunning {
		t.Fatalf("status error = %v, want exit code %d", err, exitNotRunning)
	}
	if !strings.Contains(output, "not running") {
		t.Errorf("status output = %q", output)
	}
}

func TestAddKeysNoAgent(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("gen-key", "alpha", "ua", "ha")

	_, err := env.run("add-keys-to-server")
	requireCategory(t, err, cli.CategoryUnavailable)
}
