// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// exitCoder is implemented by errors that carry their own exit code
// and have already written their output.
type exitCoder interface {
	ExitCode() int
}

// Exit terminates the process according to err. A nil error exits 0.
func Exit(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes the diagnostic for err to w and returns the exit code
// the process should use. Split out from Exit so the policy is
// testable without terminating the test binary.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return 1
}

// Fatal writes "error: err" to stderr and exits with code 1. Use it
// for errors raised before the command tree is running.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
