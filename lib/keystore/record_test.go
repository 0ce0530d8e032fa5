// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"strings"
	"testing"

	"github.com/bureau-foundation/sshield/lib/keymaterial"
)

func TestProcessedKeyString(t *testing.T) {
	material, err := keymaterial.Generate(keymaterial.ED25519)
	if err != nil {
		t.Fatal(err)
	}
	key := ProcessedKey{
		Nickname: "work",
		User:     "alice",
		Host:     "example.com",
		Port:     22,
		Cipher:   material.Cipher(),
		Material: material,
	}

	lines := strings.Split(key.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("String() has %d lines, want 2:\n%s", len(lines), key.String())
	}
	wantHeader := "SSH key 'work' for alice@example.com:22 using cipher 'ssh-ed25519'"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	wantLine := "ssh-ed25519 " + material.PublicBase64() + " work"
	if lines[1] != wantLine {
		t.Errorf("authorized key = %q, want %q", lines[1], wantLine)
	}
}

func TestUpdateEmpty(t *testing.T) {
	if !(Update{}).Empty() {
		t.Error("zero Update not Empty")
	}
	port := 22
	if (Update{Port: &port}).Empty() {
		t.Error("Update with Port reported Empty")
	}
}
