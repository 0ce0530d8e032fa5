// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux && (amd64 || arm64)

package sandbox

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Arguments to seccomp(2).
const (
	seccompSetModeFilter   = 1
	seccompFilterFlagTSync = 1
)

func load(profile *Profile) error {
	filter := make([]unix.SockFilter, len(profile.raw))
	for i, instruction := range profile.raw {
		filter[i] = unix.SockFilter{
			Code: instruction.Op,
			Jt:   instruction.Jt,
			Jf:   instruction.Jf,
			K:    instruction.K,
		}
	}
	program := unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("sandbox: setting no_new_privs: %w", err)
	}

	result, _, errno := unix.Syscall(unix.SYS_SECCOMP,
		seccompSetModeFilter,
		seccompFilterFlagTSync,
		uintptr(unsafe.Pointer(&program)))
	runtime.KeepAlive(filter)
	if errno != 0 {
		return fmt.Errorf("sandbox: installing %s profile: %w", profile, errno)
	}
	if result != 0 {
		return fmt.Errorf("sandbox: installing %s profile: thread %d could not be synchronized", profile, result)
	}
	return nil
}
