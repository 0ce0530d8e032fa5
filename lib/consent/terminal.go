// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consent

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/bureau-foundation/sshield/lib/secret"
)

// Terminal reads passwords from In, writing prompts to Out. Zero
// values mean os.Stdin and os.Stderr.
type Terminal struct {
	In  *os.File
	Out io.Writer

	once   sync.Once
	reader *bufio.Reader
}

func (t *Terminal) input() *os.File {
	if t.In == nil {
		return os.Stdin
	}
	return t.In
}

func (t *Terminal) output() io.Writer {
	if t.Out == nil {
		return os.Stderr
	}
	return t.Out
}

func (t *Terminal) interactive() bool {
	return term.IsTerminal(int(t.input().Fd()))
}

// ReadPassword shows prompt and reads one password.
func (t *Terminal) ReadPassword(ctx context.Context, prompt string) (*secret.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := t.readLine(prompt)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("password is empty")
	}
	buffer, err := secret.NewFromBytes(data)
	if err != nil {
		secret.Zero(data)
		return nil, err
	}
	return buffer, nil
}

// NewPassword asks for a new password twice and fails if the entries
// differ. Piped input is read once.
func (t *Terminal) NewPassword(ctx context.Context) (*secret.Buffer, error) {
	if !t.interactive() {
		return t.ReadPassword(ctx, "")
	}

	first, err := t.ReadPassword(ctx, "New master password: ")
	if err != nil {
		return nil, err
	}
	second, err := t.ReadPassword(ctx, "Confirm master password: ")
	if err != nil {
		first.Close()
		return nil, fmt.Errorf("reading password confirmation: %w", err)
	}
	defer second.Close()

	if !first.Equal(second) {
		first.Close()
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}

func (t *Terminal) readLine(prompt string) ([]byte, error) {
	if t.interactive() {
		fd := int(t.input().Fd())
		fmt.Fprint(t.output(), prompt)
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(t.output())
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		return data, nil
	}

	t.once.Do(func() { t.reader = bufio.NewReader(t.input()) })
	line, err := t.reader.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		secret.Zero(line)
		if err == io.EOF {
			return nil, fmt.Errorf("no password on input")
		}
		return nil, fmt.Errorf("reading password: %w", err)
	}
	trimmed := bytes.TrimRight(line, "\r\n")
	result := make([]byte, len(trimmed))
	copy(result, trimmed)
	secret.Zero(line)
	return result, nil
}
