// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/lib/config"
	"github.com/bureau-foundation/sshield/lib/consent"
	"github.com/bureau-foundation/sshield/lib/credential"
	"github.com/bureau-foundation/sshield/lib/keymaterial"
	"github.com/bureau-foundation/sshield/lib/keystore"
	"github.com/bureau-foundation/sshield/lib/secret"
	"github.com/bureau-foundation/sshield/sandbox"
)

// session is the per-command state built by the common preamble.
type session struct {
	app     *App
	ctx     context.Context
	config  *config.Config
	logger  *slog.Logger
	profile *sandbox.Profile
	user    string

	provider *credential.Provider
	password *secret.Buffer
	codec    *keymaterial.SealedCodec
	store    *keystore.Store
}

// begin loads the configuration and confines the process with the
// profile from build. Nothing secret has been read yet.
func (a *App) begin(command string, build func() (*sandbox.Profile, error)) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.NewCommandLogger(a.stderr(), cfg.Level()).With("command", command)

	account := currentUser()

	profile, err := build()
	if err != nil {
		return nil, err
	}
	if err := a.confine(profile, logger); err != nil {
		return nil, fmt.Errorf("confining %s: %w", command, err)
	}

	return &session{
		app:     a,
		ctx:     a.context(),
		config:  cfg,
		logger:  logger,
		profile: profile,
		user:    account,
	}, nil
}

// newStorePrompter asks for a new password twice, used when no key
// database exists yet.
type newStorePrompter struct {
	terminal *consent.Terminal
}

func (p newStorePrompter) ReadPassword(ctx context.Context, prompt string) (*secret.Buffer, error) {
	return p.terminal.NewPassword(ctx)
}

// unlock obtains the master password, opens the store, and verifies
// the password against an existing key.
func (s *session) unlock() error {
	var prompter credential.Prompter = s.app.terminal()
	if _, err := os.Stat(s.config.Database); errors.Is(err, os.ErrNotExist) {
		s.logger.Info("creating key database", "path", s.config.Database)
		prompter = newStorePrompter{terminal: s.app.terminal()}
	}
	s.provider = s.app.credentials(s.user, prompter, s.logger)

	password, err := s.provider.Password(s.ctx)
	if err != nil {
		return fmt.Errorf("obtaining master password: %w", err)
	}
	s.password = password
	s.codec = &keymaterial.SealedCodec{Password: password, WorkFactor: s.config.ScryptWorkFactor}

	store, err := keystore.Open(s.ctx, keystore.Config{
		Path:   s.config.Database,
		Codec:  s.codec,
		Logger: s.logger,
	})
	if err != nil {
		return err
	}
	s.store = store

	return s.verifyPassword()
}

func (s *session) verifyPassword() error {
	records, err := s.store.Records(s.ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	_, err = s.codec.Decode(records[0].EncodedKey)
	if errors.Is(err, keymaterial.ErrWrongPassword) {
		if forgetErr := s.provider.Forget(); forgetErr != nil {
			s.logger.Warn("could not clear cached password", "error", forgetErr)
		}
		return cli.Forbidden("wrong master password for %s", s.config.Database)
	}
	if err != nil {
		return &keystore.DecodeError{Nickname: records[0].Nickname, Err: err}
	}
	return nil
}

// closeStore releases the database and the password. Safe to call
// more than once.
func (s *session) closeStore() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("closing key database", "error", err)
		}
		s.store = nil
	}
	if s.password != nil {
		s.password.Close()
		s.password = nil
	}
}

func (s *session) Close() {
	s.closeStore()
}
