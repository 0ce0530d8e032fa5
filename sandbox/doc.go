// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sandbox confines the sshield process with a seccomp-BPF
// syscall filter before it handles passwords, key material, or client
// connections.
//
// Two profiles exist. [Management] covers the synchronous CLI commands
// that only touch the key database and the terminal: it permits file
// I/O, the memory, signal, and scheduling syscalls the Go runtime
// needs, and the keyctl family for the session keyring, while refusing
// every socket syscall and every clone that would create a process
// rather than a thread. [Serving] is Management plus Unix-domain
// sockets (restricted by the socket family argument), full clone, and
// execve/wait4/pidfd so the daemon can run its askpass helper.
//
// Each profile is assembled once into a classic BPF program with
// golang.org/x/net/bpf. The program checks the audit architecture
// first (a foreign architecture kills the process), then matches the
// syscall number against the profile's rules. Anything not listed
// fails with EPERM; clone3 fails with ENOSYS so callers fall back to
// clone, whose flags the filter can inspect. [Profile.Digest] is a
// BLAKE3 hash of the assembled program, logged at install time and
// reported by the daemon's status endpoint, so the exact filter in
// force is auditable.
//
// [Install] sets PR_SET_NO_NEW_PRIVS and loads the program with
// SECCOMP_FILTER_FLAG_TSYNC, so every existing thread is covered. A
// filter cannot be removed: a process installs at most one profile,
// and child processes inherit it.
//
// Argument conditions compare only the low 32 bits of an argument.
// The flags and address families the profiles inspect fit in 32 bits.
package sandbox
