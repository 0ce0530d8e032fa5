// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"

	"github.com/bureau-foundation/sshield/cmd/sshield/cli"
	"github.com/bureau-foundation/sshield/lib/config"
	"github.com/bureau-foundation/sshield/lib/consent"
	"github.com/bureau-foundation/sshield/lib/credential"
	"github.com/bureau-foundation/sshield/lib/version"
	"github.com/bureau-foundation/sshield/sandbox"
)

// App is the environment shared by every command. The zero value
// uses the process's standard streams and real collaborators.
type App struct {
	Context  context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Terminal *consent.Terminal

	// LoadConfig returns the configuration. Nil uses config.Load.
	LoadConfig func() (*config.Config, error)

	// Confine installs a seccomp profile. Nil uses sandbox.Install.
	Confine func(profile *sandbox.Profile, logger *slog.Logger) error

	// Credentials returns the master password source for user. Nil
	// uses credential.NewProvider.
	Credentials func(user string, prompter credential.Prompter, logger *slog.Logger) *credential.Provider

	// Consent confirms sign requests in serve. Nil runs the configured
	// askpass program.
	Consent consent.Confirmer
}

func (a *App) context() context.Context {
	if a.Context == nil {
		return context.Background()
	}
	return a.Context
}

func (a *App) stdout() io.Writer {
	if a.Stdout == nil {
		return os.Stdout
	}
	return a.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Stderr == nil {
		return os.Stderr
	}
	return a.Stderr
}

func (a *App) terminal() *consent.Terminal {
	if a.Terminal == nil {
		a.Terminal = &consent.Terminal{Out: a.stderr()}
	}
	return a.Terminal
}

func (a *App) loadConfig() (*config.Config, error) {
	if a.LoadConfig != nil {
		return a.LoadConfig()
	}
	return config.Load()
}

func (a *App) confine(profile *sandbox.Profile, logger *slog.Logger) error {
	if a.Confine != nil {
		return a.Confine(profile, logger)
	}
	return sandbox.Install(profile, logger)
}

func (a *App) credentials(user string, prompter credential.Prompter, logger *slog.Logger) *credential.Provider {
	if a.Credentials != nil {
		return a.Credentials(user, prompter, logger)
	}
	return credential.NewProvider(user, prompter, logger)
}

// currentUser names the local account for the keyring entry and the
// default SSH login.
func currentUser() string {
	if account, err := user.Current(); err == nil && account.Username != "" {
		return account.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "sshield"
}

// Root builds the sshield command tree.
func Root(app *App) *cli.Command {
	return &cli.Command{
		Name: "sshield",
		Description: `sshield: an SSH agent with an encrypted key store.

Keys are sealed under a master password in a local database and only
ever loaded into memory by the agent. Signing requests are confirmed
through an askpass prompt, at most once per configured window.`,
		HelpOutput: app.stderr(),
		Subcommands: []*cli.Command{
			genKeyCommand(app),
			showKeyCommand(app),
			deleteKeyCommand(app),
			updateKeyCommand(app),
			importKeyCommand(app),
			changePasswordCommand(app),
			serveCommand(app),
			addKeysCommand(app),
			statusCommand(app),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					if err := cli.RequireArgs("version", args, 0, 0, "no arguments"); err != nil {
						return err
					}
					fmt.Fprintf(app.stdout(), "sshield %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
