// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymaterial

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/bureau-foundation/sshield/lib/secret"
)

func testPassword(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromBytes([]byte(value))
	if err != nil {
		t.Fatalf("secret.NewFromBytes: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{"ed25519", ED25519, false},
		{"ECDSA", ECDSA, false},
		{"rsa", RSA, false},
		{"dsa", "", true},
		{"", "", true},
	}
	for _, test := range tests {
		got, err := ParseAlgorithm(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseAlgorithm(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("ParseAlgorithm(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestGenerateAndPEMRoundTrip(t *testing.T) {
	wantCipher := map[Algorithm]string{
		ED25519: ssh.KeyAlgoED25519,
		ECDSA:   ssh.KeyAlgoECDSA256,
		RSA:     ssh.KeyAlgoRSA,
	}
	for _, algorithm := range Algorithms() {
		t.Run(string(algorithm), func(t *testing.T) {
			material, err := Generate(algorithm)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if material.Cipher() != wantCipher[algorithm] {
				t.Errorf("Cipher() = %q, want %q", material.Cipher(), wantCipher[algorithm])
			}

			encoded, err := EncodePEM(material.PrivateKey, "test")
			if err != nil {
				t.Fatalf("EncodePEM: %v", err)
			}
			if !bytes.Contains(encoded, []byte("OPENSSH PRIVATE KEY")) {
				t.Errorf("encoded key missing OPENSSH header:\n%s", encoded)
			}

			decoded, err := DecodePEM(encoded)
			if err != nil {
				t.Fatalf("DecodePEM: %v", err)
			}
			if !bytes.Equal(decoded.PublicKey.Marshal(), material.PublicKey.Marshal()) {
				t.Error("decoded public key differs from generated")
			}

			back, err := AlgorithmForCipher(decoded.Cipher())
			if err != nil || back != algorithm {
				t.Errorf("AlgorithmForCipher(%q) = %q, %v", decoded.Cipher(), back, err)
			}
		})
	}
}

func TestDecodeNormalizesEd25519(t *testing.T) {
	material, err := Generate(ED25519)
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := EncodePEM(material.PrivateKey, "")
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodePEM(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded.PrivateKey.(ed25519.PrivateKey); !ok {
		t.Errorf("PrivateKey is %T, want ed25519.PrivateKey", decoded.PrivateKey)
	}
}

func TestAuthorizedKey(t *testing.T) {
	material, err := Generate(ED25519)
	if err != nil {
		t.Fatal(err)
	}
	line := AuthorizedKey(material, "work")
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "ssh-ed25519" || fields[2] != "work" {
		t.Fatalf("AuthorizedKey = %q", line)
	}

	parsed, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
	if err != nil {
		t.Fatalf("ParseAuthorizedKey: %v", err)
	}
	if comment != "work" {
		t.Errorf("comment = %q, want work", comment)
	}
	if !bytes.Equal(parsed.Marshal(), material.PublicKey.Marshal()) {
		t.Error("parsed key differs")
	}
}

func TestParseFileEncrypted(t *testing.T) {
	material, err := Generate(ED25519)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKeyWithPassphrase(material.PrivateKey, "", []byte("file-pass"))
	if err != nil {
		t.Fatal(err)
	}
	data := pemEncode(block)

	if _, err := ParseFile(data, nil); !errors.Is(err, ErrPassphraseRequired) {
		t.Fatalf("ParseFile without passphrase: got %v, want ErrPassphraseRequired", err)
	}

	parsed, err := ParseFile(data, testPassword(t, "file-pass"))
	if err != nil {
		t.Fatalf("ParseFile with passphrase: %v", err)
	}
	if !bytes.Equal(parsed.PublicKey.Marshal(), material.PublicKey.Marshal()) {
		t.Error("parsed key differs")
	}
}
