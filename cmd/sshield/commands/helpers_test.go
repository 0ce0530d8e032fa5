// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/lib/config"
	"github.com/bureau-foundation/sshield/lib/consent"
	"github.com/bureau-foundation/sshield/lib/credential"
	"github.com/bureau-foundation/sshield/lib/testutil"
	"github.com/bureau-foundation/sshield/sandbox"
)

// syncBuffer is a bytes.Buffer safe for a serving goroutine to write
// while the test reads.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer.Reset()
}

// testEnv is an App wired to temporary files: a config with a fresh
// database, a socket in a short directory, a password file, and a
// Confine that records profile names instead of installing them.
type testEnv struct {
	t            *testing.T
	app          *App
	stdout       *syncBuffer
	stderr       *syncBuffer
	dir          string
	configPath   string
	passwordFile string

	mu       sync.Mutex
	confined []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	socketDir := testutil.SocketDir(t)

	env := &testEnv{
		t:            t,
		stdout:       &syncBuffer{},
		stderr:       &syncBuffer{},
		dir:          dir,
		configPath:   filepath.Join(dir, "sshield.yaml"),
		passwordFile: filepath.Join(dir, "password"),
	}
	configText := fmt.Sprintf(`database: %s
prompt: 0
socket: %s
scrypt_work_factor: 10
log_level: error
`, filepath.Join(dir, "keys.db"), filepath.Join(socketDir, "agent.sock"))
	writeFile(t, env.configPath, configText)
	env.setPassword("correct horse")

	terminal := &consent.Terminal{Out: env.stderr}
	env.app = &App{
		Stdout:   env.stdout,
		Stderr:   env.stderr,
		Terminal: terminal,
		LoadConfig: func() (*config.Config, error) {
			return config.LoadFile(env.configPath)
		},
		Confine: func(profile *sandbox.Profile, logger *slog.Logger) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.confined = append(env.confined, profile.Name())
			return nil
		},
		Credentials: func(user string, prompter credential.Prompter, logger *slog.Logger) *credential.Provider {
			return &credential.Provider{PasswordFile: env.passwordFile, Logger: logger}
		},
	}
	return env
}

func (e *testEnv) config() *config.Config {
	e.t.Helper()
	cfg, err := config.LoadFile(e.configPath)
	if err != nil {
		e.t.Fatalf("loading test config: %v", err)
	}
	return cfg
}

func (e *testEnv) setPassword(password string) {
	e.t.Helper()
	writeFile(e.t, e.passwordFile, password+"\n")
}

// run executes args against a fresh command tree and returns stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	e.stdout.Reset()
	err := Root(e.app).Execute(args)
	return e.stdout.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	output, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("sshield %s: %v", strings.Join(args, " "), err)
	}
	return output
}

func (e *testEnv) profiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.confined...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// requireCategory fails unless err is a ToolError of category.
func requireCategory(t *testing.T, err error, category cli.ErrorCategory) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got nil", category)
	}
	var toolError *cli.ToolError
	if !errors.As(cli.Classify(err), &toolError) {
		t.Fatalf("error %v is not a ToolError", err)
	}
	if toolError.Category != category {
		t.Fatalf("category = %q, want %q (error: %v)", toolError.Category, category, err)
	}
}
