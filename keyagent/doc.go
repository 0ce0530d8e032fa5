// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keyagent implements the sshield agent daemon: an SSH agent
// protocol server on a Unix socket whose keys are loaded from the
// encrypted key store and whose signing operations are gated by a
// consent policy.
//
// # Request flow
//
// [Server] accepts connections and runs golang.org/x/crypto/ssh/agent's
// protocol handler over each one. The handler talks to a guarded agent
// that classifies every call into a [RequestKind] and asks the
// [Authorizer] before delegating to an in-memory keyring. A refused
// request returns [ErrDenied], which the protocol handler reports to
// the client as SSH_AGENT_FAILURE; the daemon keeps running.
//
// [Policy] is the Authorizer the daemon uses. Only [RequestSign]
// carries trust consequence: under an EveryNSeconds prompt the first
// signature prompts through a consent.Confirmer, and signatures within
// the window after an approval are allowed silently. Listing, adding,
// and removing identities are always allowed.
//
// # Startup
//
// [Server.Listen] binds the socket (refusing a path already in use)
// and closes the [Server.Ready] channel. [Loader.Run] waits on that
// channel, connects to the socket as an ordinary agent client, and adds
// every stored key. On context cancellation [Server.Serve] closes the
// listener and removes the socket file before returning.
//
// The control socket ([NewControlServer]) sits beside the agent socket
// and answers a CBOR "status" action with a [Status].
package keyagent
