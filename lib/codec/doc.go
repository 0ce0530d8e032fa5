// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by the control
// socket server and its clients.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// The decoder maps any-typed targets to map[string]any so that decoded
// values interoperate with encoding/json for --json output.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// Types that only travel over the control socket carry `cbor` tags.
// Types that are also printed as JSON by the CLI carry `json` tags,
// which fxamacker/cbor reads when no `cbor` tag is present. A field
// never has both.
package codec
