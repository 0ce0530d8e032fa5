// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyagent

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrDenied is returned for agent requests the Authorizer refused.
var ErrDenied = errors.New("request denied by policy")

// SocketError reports a failure to bind or connect to an agent socket.
type SocketError struct {
	Op   string
	Path string
	Err  error
}

func (e *SocketError) Error() string {
	message := fmt.Sprintf("agent socket %s %s: %v", e.Op, e.Path, e.Err)
	if e.InUse() {
		message += " (if no sshield daemon is running, remove the stale socket file)"
	}
	return message
}

func (e *SocketError) Unwrap() error { return e.Err }

// InUse reports whether the socket path was already bound.
func (e *SocketError) InUse() bool {
	return errors.Is(e.Err, syscall.EADDRINUSE)
}

// Refused reports whether nothing was listening on the path.
func (e *SocketError) Refused() bool {
	return errors.Is(e.Err, syscall.ECONNREFUSED) || errors.Is(e.Err, syscall.ENOENT)
}
