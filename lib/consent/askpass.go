// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Confirmer asks the user a yes/no question. A false result with a nil
// error is an explicit denial.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// Askpass confirms through an external askpass program.
type Askpass struct {
	Program string
	Logger  *slog.Logger
}

// ResolveAskpass picks the askpass program: configured if set, then
// $SSH_ASKPASS, then ssh-askpass on PATH.
func ResolveAskpass(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if fromEnv := os.Getenv("SSH_ASKPASS"); fromEnv != "" {
		return fromEnv, nil
	}
	path, err := exec.LookPath("ssh-askpass")
	if err != nil {
		return "", fmt.Errorf("no askpass program: set askpass in the config file or SSH_ASKPASS")
	}
	return path, nil
}

// Confirm runs the program with message as its argument. Exit status 0
// approves; any other exit status denies. Failure to start the program
// is an error.
func (a *Askpass) Confirm(ctx context.Context, message string) (bool, error) {
	command := exec.CommandContext(ctx, a.Program, message)
	command.Env = append(os.Environ(), "SSH_ASKPASS_PROMPT=confirm")
	command.Stdin = nil
	command.Stdout = nil
	command.Stderr = os.Stderr

	err := command.Run()
	if err == nil {
		return true, nil
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) && ctx.Err() == nil {
		if a.Logger != nil {
			a.Logger.Debug("askpass denied", "program", a.Program, "exit_code", exitError.ExitCode())
		}
		return false, nil
	}
	return false, fmt.Errorf("running askpass %s: %w", a.Program, err)
}
