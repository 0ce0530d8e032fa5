// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/lib/keymaterial"
	"github.com/bureau-foundation/sshield/lib/secret"
	"github.com/bureau-foundation/sshield/sandbox"
)

type changePasswordParams struct {
	NewPasswordFile string `flag:"new-password-file" desc:"read the new master password from this file (- for stdin)"`
}

func changePasswordCommand(app *App) *cli.Command {
	var params changePasswordParams
	return &cli.Command{
		Name:    "change-password",
		Summary: "Re-seal every stored key under a new master password",
		Description: `Ask for the current and a new master password, then re-seal every key
in one transaction. If any key fails, nothing is changed. The cached
password is replaced with the new one.`,
		Usage: "sshield change-password [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("change-password", &params)
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs("change-password", args, 0, 0, "no arguments"); err != nil {
				return err
			}
			s, err := app.begin("change-password", sandbox.Management)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.unlock(); err != nil {
				return err
			}

			var next *secret.Buffer
			if params.NewPasswordFile != "" {
				next, err = secret.ReadFromPath(params.NewPasswordFile)
			} else {
				next, err = app.terminal().NewPassword(s.ctx)
			}
			if err != nil {
				return fmt.Errorf("reading new master password: %w", err)
			}
			defer next.Close()

			nextCodec := &keymaterial.SealedCodec{Password: next, WorkFactor: s.config.ScryptWorkFactor}
			count, err := s.store.Reseal(s.ctx, func(nickname string, blob []byte) ([]byte, error) {
				return s.codec.Reseal(blob, nextCodec)
			})
			if err != nil {
				return err
			}

			if err := s.provider.Forget(); err != nil {
				s.logger.Warn("could not clear cached password", "error", err)
			}
			s.provider.Store(next)
			s.logger.Info("master password changed", "keys", count)
			fmt.Fprintf(app.stdout(), "Re-sealed %d key(s) under the new master password\n", count)
			return nil
		},
	}
}
