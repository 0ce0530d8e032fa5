// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/keyagent"
	"github.com/bureau-foundation/sshield/sandbox"
)

const statusTimeout = 5 * time.Second

// exitNotRunning is the status exit code when no daemon answers, as
// systemctl uses for an inactive unit.
const exitNotRunning = 3

type statusParams struct {
	cli.JSONOutput
}

func statusCommand(app *App) *cli.Command {
	var params statusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Show the running agent's state",
		Description: `Query the agent's control socket for its prompt policy, last approval,
sandbox profile, and loaded identities. Exits with status 3 when no
agent is running.`,
		Usage: "sshield status [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Run: func(args []string) error {
			if err := cli.RequireArgs("status", args, 0, 0, "no arguments"); err != nil {
				return err
			}
			s, err := app.begin("status", sandbox.Serving)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := context.WithTimeout(s.ctx, statusTimeout)
			defer cancel()
			status, err := keyagent.QueryStatus(ctx, s.config.ControlSocket())
			if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) {
				fmt.Fprintf(app.stdout(), "sshield agent is not running (%s)\n", s.config.ControlSocket())
				return &cli.ExitError{Code: exitNotRunning}
			}
			if err != nil {
				return cli.Unavailable("querying agent: %v", err)
			}

			if done, err := params.EmitJSON(app.stdout(), status); done {
				return err
			}

			lastApproved := status.LastApproved
			if lastApproved == "" {
				lastApproved = "never"
			}
			w := tabwriter.NewWriter(app.stdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "PID:\t%d\n", status.PID)
			fmt.Fprintf(w, "Version:\t%s\n", status.Version)
			fmt.Fprintf(w, "Socket:\t%s\n", status.Socket)
			fmt.Fprintf(w, "Started:\t%s\n", status.StartedAt)
			fmt.Fprintf(w, "Policy:\t%s\n", status.Policy)
			fmt.Fprintf(w, "Last approved:\t%s\n", lastApproved)
			fmt.Fprintf(w, "Sandbox:\t%s (%s)\n", status.Sandbox, status.SandboxDigest)
			fmt.Fprintf(w, "Identities:\t%d\n", len(status.Identities))
			for _, identity := range status.Identities {
				fmt.Fprintf(w, "  %s\t%s %s\n", identity.Comment, identity.Type, identity.Fingerprint)
			}
			return w.Flush()
		},
	}
}
