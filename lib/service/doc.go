// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides a small CBOR request/response protocol over
// a Unix socket, used for the daemon's control socket.
//
// Each connection carries exactly one exchange: the client writes one
// CBOR map with an "action" field plus action-specific fields, the
// server answers with a [Response] envelope {ok, error, data} and
// closes the connection. CBOR is self-delimiting, so there is no
// framing.
//
// The socket is created with mode 0600. A path that is already in use
// is an error; the server never removes a socket it did not create.
package service
