// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/sshield/lib/secret"
)

// EnvPasswordFile names the environment variable holding a password
// file path.
const EnvPasswordFile = "SSHIELD_PASSWORD_FILE"

// ErrNotCached is returned by Cache.Load when no password is stored.
var ErrNotCached = errors.New("password not cached")

// Cache stores the master password between commands.
type Cache interface {
	Load() (*secret.Buffer, error)
	Save(password *secret.Buffer) error
	Delete() error
}

// Prompter reads a password from the user.
type Prompter interface {
	ReadPassword(ctx context.Context, prompt string) (*secret.Buffer, error)
}

// Provider resolves the master password. Any field may be nil or empty
// to skip that source.
type Provider struct {
	Cache        Cache
	PasswordFile string
	Prompter     Prompter
	Logger       *slog.Logger
}

// NewProvider returns a Provider for user, backed by the kernel
// keyring and SSHIELD_PASSWORD_FILE.
func NewProvider(user string, prompter Prompter, logger *slog.Logger) *Provider {
	return &Provider{
		Cache:        NewKeyring(user),
		PasswordFile: os.Getenv(EnvPasswordFile),
		Prompter:     prompter,
		Logger:       logger,
	}
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// Password returns the master password. The caller must Close it.
func (p *Provider) Password(ctx context.Context) (*secret.Buffer, error) {
	if p.Cache != nil {
		password, err := p.Cache.Load()
		if err == nil {
			p.logger().Debug("master password loaded from cache")
			return password, nil
		}
		if !errors.Is(err, ErrNotCached) {
			p.logger().Warn("password cache unavailable", "error", err)
		}
	}

	if p.PasswordFile != "" {
		password, err := secret.ReadFromPath(p.PasswordFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", EnvPasswordFile, err)
		}
		return password, nil
	}

	if p.Prompter == nil {
		return nil, fmt.Errorf("no master password available: set %s or run interactively", EnvPasswordFile)
	}
	password, err := p.Prompter.ReadPassword(ctx, "Master password: ")
	if err != nil {
		return nil, err
	}
	p.Store(password)
	return password, nil
}

// Store saves password to the cache. Failure is logged, not returned:
// a missing cache only costs a later prompt.
func (p *Provider) Store(password *secret.Buffer) {
	if p.Cache == nil {
		return
	}
	if err := p.Cache.Save(password); err != nil {
		p.logger().Warn("could not cache master password", "error", err)
	}
}

// Forget removes any cached password.
func (p *Provider) Forget() error {
	if p.Cache == nil {
		return nil
	}
	return p.Cache.Delete()
}
