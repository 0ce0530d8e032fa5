// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keystore persists named SSH key records in a single SQLite
// file.
//
// Each row carries the connection metadata for a key (user, host,
// port), its cipher name, and an opaque sealed blob. The store never
// interprets the blob: reads hand it to the [Codec] the store was
// opened with, and the decoded result is returned as a [ProcessedKey]
// that exists only in memory.
//
// Nicknames are unique. A duplicate [Store.Insert] reports false
// without touching the existing row. A blob the codec rejects is a
// [*DecodeError], which callers treat as fatal: it means the file was
// corrupted or the master password is wrong.
package keystore
