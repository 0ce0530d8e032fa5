// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"errors"
	"fmt"

	"golang.org/x/net/bpf"
)

// ErrUnsupported is returned on platforms without a syscall table.
var ErrUnsupported = errors.New("seccomp filtering is not supported on this platform")

// Offsets into struct seccomp_data.
const (
	offsetNumber = 0
	offsetArch   = 4
	offsetArgs   = 16
)

const maxArgs = 6

// platform describes the architecture a program is assembled for.
type platform struct {
	name      string
	auditArch uint32
	syscalls  map[string]uint32
}

// assemble lays out the program as a flat chain. Each rule occupies a
// compare on the syscall number followed by its handler; the compare
// skips the handler on mismatch, so every jump is short.
//
//	ld  arch
//	jeq auditArch, 1, 0
//	ret KILL_PROCESS
//	ld  nr
//	jeq nr_a, 0, 1      ; plain rule
//	ret action_a
//	jeq nr_b, 0, 4      ; rule with an argument condition
//	ld  arg[i]
//	jeq value, 0, 1
//	ret action_b
//	ret default
//	...
//	ret default
func assemble(target *platform, rules []Rule) ([]bpf.Instruction, error) {
	program := []bpf.Instruction{
		bpf.LoadAbsolute{Off: offsetArch, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: target.auditArch, SkipTrue: 1},
		bpf.RetConstant{Val: uint32(ActionKillProcess)},
		bpf.LoadAbsolute{Off: offsetNumber, Size: 4},
	}

	seen := make(map[string]bool, len(rules))
	for _, rule := range rules {
		number, ok := target.syscalls[rule.Syscall]
		if !ok {
			if legacySyscalls[rule.Syscall] {
				continue
			}
			return nil, fmt.Errorf("unknown syscall %q on %s", rule.Syscall, target.name)
		}
		if seen[rule.Syscall] {
			return nil, fmt.Errorf("syscall %q has more than one rule", rule.Syscall)
		}
		seen[rule.Syscall] = true

		handler, err := ruleHandler(rule)
		if err != nil {
			return nil, fmt.Errorf("rule for %q: %w", rule.Syscall, err)
		}
		program = append(program, bpf.JumpIf{
			Cond:      bpf.JumpEqual,
			Val:       number,
			SkipFalse: uint8(len(handler)),
		})
		program = append(program, handler...)
	}

	program = append(program, bpf.RetConstant{Val: uint32(DefaultAction)})
	return program, nil
}

// ruleHandler returns the instructions run once the syscall number has
// matched. Every path through a handler returns.
func ruleHandler(rule Rule) ([]bpf.Instruction, error) {
	if rule.Arg == nil {
		return []bpf.Instruction{bpf.RetConstant{Val: uint32(rule.Action)}}, nil
	}

	condition := rule.Arg
	if condition.Index < 0 || condition.Index >= maxArgs {
		return nil, fmt.Errorf("argument index %d out of range", condition.Index)
	}
	load := bpf.LoadAbsolute{Off: uint32(offsetArgs + 8*condition.Index), Size: 4}
	matched := bpf.RetConstant{Val: uint32(rule.Action)}
	unmatched := bpf.RetConstant{Val: uint32(DefaultAction)}

	switch condition.Op {
	case ArgEqual:
		return []bpf.Instruction{
			load,
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: condition.Value, SkipFalse: 1},
			matched,
			unmatched,
		}, nil
	case ArgHasBits:
		return []bpf.Instruction{
			load,
			bpf.ALUOpConstant{Op: bpf.ALUOpAnd, Val: condition.Value},
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: condition.Value, SkipFalse: 1},
			matched,
			unmatched,
		}, nil
	}
	return nil, fmt.Errorf("unknown argument operator %d", condition.Op)
}
