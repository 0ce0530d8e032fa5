// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential obtains the master password.
//
// [Provider.Password] tries, in order:
//
//  1. the [Cache] (on Linux, the kernel user keyring entry
//     "sshield:<user>", see [Keyring])
//  2. the file named by SSHIELD_PASSWORD_FILE ("-" reads stdin)
//  3. an interactive [Prompter]
//
// A password obtained interactively is saved to the cache so later
// commands in the same login session do not prompt again. The file
// source is never cached; the file already is the cache.
package credential
