// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keymaterial

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/bureau-foundation/sshield/lib/secret"
)

// Algorithm names a key type accepted by Generate.
type Algorithm string

const (
	ED25519 Algorithm = "ed25519"
	ECDSA   Algorithm = "ecdsa"
	RSA     Algorithm = "rsa"
)

// DefaultAlgorithm is used when gen-key is not given --type.
const DefaultAlgorithm = ED25519

const rsaBits = 3072

// ErrPassphraseRequired is returned by ParseFile when the key file is
// encrypted and no passphrase was supplied.
var ErrPassphraseRequired = errors.New("key file is passphrase-protected")

// Algorithms lists the accepted algorithm names in display order.
func Algorithms() []Algorithm {
	return []Algorithm{ED25519, ECDSA, RSA}
}

// ParseAlgorithm validates a user-supplied algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(name)) {
	case ED25519:
		return ED25519, nil
	case ECDSA:
		return ECDSA, nil
	case RSA:
		return RSA, nil
	}
	return "", fmt.Errorf("unsupported key type %q (want ed25519, ecdsa, or rsa)", name)
}

// AlgorithmForCipher maps an SSH public key type such as "ssh-ed25519"
// back to the Algorithm that generates it.
func AlgorithmForCipher(cipher string) (Algorithm, error) {
	switch cipher {
	case ssh.KeyAlgoED25519:
		return ED25519, nil
	case ssh.KeyAlgoECDSA256:
		return ECDSA, nil
	case ssh.KeyAlgoRSA:
		return RSA, nil
	}
	return "", fmt.Errorf("no generator for cipher %q", cipher)
}

// Material is a decoded private key together with its public half.
type Material struct {
	PrivateKey crypto.PrivateKey
	PublicKey  ssh.PublicKey
}

// Cipher returns the SSH key type name, e.g. "ssh-ed25519".
func (m Material) Cipher() string {
	return m.PublicKey.Type()
}

// PublicBase64 returns the base64 wire encoding of the public key, the
// middle field of an authorized_keys line.
func (m Material) PublicBase64() string {
	return base64.StdEncoding.EncodeToString(m.PublicKey.Marshal())
}

// Fingerprint returns the SHA256 fingerprint in OpenSSH format.
func (m Material) Fingerprint() string {
	return ssh.FingerprintSHA256(m.PublicKey)
}

// Generate creates a fresh private key of the given algorithm.
func Generate(algorithm Algorithm) (Material, error) {
	var key crypto.PrivateKey
	var err error
	switch algorithm {
	case ED25519:
		_, key, err = ed25519.GenerateKey(rand.Reader)
	case ECDSA:
		key, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case RSA:
		key, err = rsa.GenerateKey(rand.Reader, rsaBits)
	default:
		return Material{}, fmt.Errorf("unsupported key type %q", algorithm)
	}
	if err != nil {
		return Material{}, fmt.Errorf("generating %s key: %w", algorithm, err)
	}
	return FromPrivateKey(key)
}

// FromPrivateKey derives the public half of key.
func FromPrivateKey(key crypto.PrivateKey) (Material, error) {
	key = normalize(key)
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return Material{}, fmt.Errorf("deriving public key: %w", err)
	}
	return Material{PrivateKey: key, PublicKey: signer.PublicKey()}, nil
}

// EncodePEM serializes key as a PEM "OPENSSH PRIVATE KEY" block.
func EncodePEM(key crypto.PrivateKey, comment string) ([]byte, error) {
	block, err := ssh.MarshalPrivateKey(key, comment)
	if err != nil {
		return nil, fmt.Errorf("encoding private key: %w", err)
	}
	return pem.EncodeToMemory(block), nil
}

// DecodePEM parses an unencrypted PEM private key.
func DecodePEM(data []byte) (Material, error) {
	key, err := ssh.ParseRawPrivateKey(data)
	if err != nil {
		return Material{}, fmt.Errorf("parsing private key: %w", err)
	}
	return FromPrivateKey(key)
}

// ParseFile parses an OpenSSH or PEM key file as found in ~/.ssh.
// passphrase may be nil for unencrypted files.
func ParseFile(data []byte, passphrase *secret.Buffer) (Material, error) {
	if passphrase == nil {
		key, err := ssh.ParseRawPrivateKey(data)
		if err != nil {
			var missing *ssh.PassphraseMissingError
			if errors.As(err, &missing) {
				return Material{}, ErrPassphraseRequired
			}
			return Material{}, fmt.Errorf("parsing key file: %w", err)
		}
		return FromPrivateKey(key)
	}

	key, err := ssh.ParseRawPrivateKeyWithPassphrase(data, passphrase.Bytes())
	if err != nil {
		return Material{}, fmt.Errorf("parsing key file: %w", err)
	}
	return FromPrivateKey(key)
}

// AuthorizedKey renders an authorized_keys line for m with comment.
func AuthorizedKey(m Material, comment string) string {
	line := fmt.Sprintf("%s %s", m.Cipher(), m.PublicBase64())
	if comment != "" {
		line += " " + comment
	}
	return line
}

// normalize converts *ed25519.PrivateKey, which ParseRawPrivateKey
// returns, to the value form the agent keyring expects.
func normalize(key crypto.PrivateKey) crypto.PrivateKey {
	if pointer, ok := key.(*ed25519.PrivateKey); ok && pointer != nil {
		return *pointer
	}
	return key
}
