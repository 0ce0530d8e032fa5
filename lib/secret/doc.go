// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the master password and decrypted key material
// outside the Go heap.
//
// [Buffer] allocates memory via mmap(MAP_ANONYMOUS), locks it into
// physical RAM with mlock so it never reaches swap, and marks it
// MADV_DONTDUMP so it is absent from core dumps. Close zeroes, unlocks
// and unmaps the region. The garbage collector never sees the memory.
//
// Constructors:
//
//   - [New] -- a zero-filled buffer of a given size
//   - [NewFromBytes] -- copies into protected memory and zeroes the source
//   - [ReadFromPath] -- reads a password file (or stdin for "-")
//
// Access via [Buffer.Bytes] (slice into the mmap region) or
// [Buffer.String] (heap copy for API boundaries such as age's scrypt
// recipient). [Buffer.Equal] compares in constant time. After Close,
// any access panics. Close is idempotent.
package secret
