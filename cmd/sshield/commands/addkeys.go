// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/keyagent"
	"github.com/bureau-foundation/sshield/sandbox"
)

func addKeysCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "add-keys-to-server",
		Summary: "Load every stored key into a running agent",
		Description: `Connect to the agent socket and add every stored key. Keys the agent
already holds are added again harmlessly. Use this after importing keys
while serve is running, or against any agent speaking the SSH agent
protocol at the configured socket.`,
		Usage: "sshield add-keys-to-server",
		Run: func(args []string) error {
			if err := cli.RequireArgs("add-keys-to-server", args, 0, 0, "no arguments"); err != nil {
				return err
			}
			s, err := app.begin("add-keys-to-server", sandbox.Serving)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.unlock(); err != nil {
				return err
			}

			loader := &keyagent.Loader{
				SocketPath: s.config.Socket,
				Source:     s.store,
				Logger:     s.logger,
			}
			result, err := loader.Run(s.ctx, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout(), "Added %d key(s) to %s\n", result.Added, s.config.Socket)
			if result.Failed > 0 {
				return fmt.Errorf("agent rejected %d key(s)", result.Failed)
			}
			return nil
		},
	}
}
