// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/bureau-foundation/sshield/keyagent"
	"github.com/bureau-foundation/sshield/lib/config"
	"github.com/bureau-foundation/sshield/lib/keymaterial"
	"github.com/bureau-foundation/sshield/lib/keystore"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"not found", fmt.Errorf("get: %w", keystore.ErrNotFound), CategoryNotFound},
		{"wrong password", &keystore.DecodeError{Nickname: "a", Err: keymaterial.ErrWrongPassword}, CategoryForbidden},
		{"denied", keyagent.ErrDenied, CategoryForbidden},
		{"config", &config.Error{Path: "x.yaml", Err: errors.New("bad")}, CategoryValidation},
		{"socket in use", &keyagent.SocketError{Op: "bind", Path: "/s", Err: syscall.EADDRINUSE}, CategoryConflict},
		{"socket refused", &keyagent.SocketError{Op: "connect", Path: "/s", Err: syscall.ECONNREFUSED}, CategoryUnavailable},
		{"other", errors.New("disk on fire"), CategoryInternal},
		{"existing", Conflict("key %q exists", "a"), CategoryConflict},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var toolError *ToolError
			if !errors.As(Classify(test.err), &toolError) {
				t.Fatal("Classify did not return a ToolError")
			}
			if toolError.Category != test.want {
				t.Errorf("Category = %s, want %s", toolError.Category, test.want)
			}
			if !errors.Is(toolError, test.err) {
				t.Error("classified error does not wrap the original")
			}
		})
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) is not nil")
	}
}
