// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keymaterial generates SSH private keys and converts them to
// and from their stored form.
//
// The stored form of a key is an age file (see lib/sealed) sealed under
// the master password, wrapping a PEM "OPENSSH PRIVATE KEY" block as
// produced by golang.org/x/crypto/ssh. [SealedCodec] performs both
// steps and is the codec the key store is opened with; the store itself
// never looks inside the blob.
//
// Supported algorithms are ed25519, ECDSA P-256, and RSA-3072.
package keymaterial
