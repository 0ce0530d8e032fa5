// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/net/bpf"
)

// Action is a seccomp return value.
type Action uint32

const (
	ActionKillProcess Action = 0x80000000
	ActionAllow       Action = 0x7fff0000
	actionErrnoBase   Action = 0x00050000
)

// ActionErrno fails the syscall with the given errno.
func ActionErrno(errno uint16) Action {
	return actionErrnoBase | Action(errno)
}

func (a Action) String() string {
	switch {
	case a == ActionKillProcess:
		return "kill-process"
	case a == ActionAllow:
		return "allow"
	case a&0xffff0000 == actionErrnoBase:
		return fmt.Sprintf("errno(%d)", a&0xffff)
	}
	return fmt.Sprintf("action(%#x)", uint32(a))
}

// ArgOp is the comparison an ArgCondition performs.
type ArgOp int

const (
	// ArgEqual matches when the argument equals Value.
	ArgEqual ArgOp = iota
	// ArgHasBits matches when every bit of Value is set in the
	// argument.
	ArgHasBits
)

// ArgCondition restricts a rule to calls whose argument matches.
// Calls that do not match get the profile's default action.
type ArgCondition struct {
	Index int
	Op    ArgOp
	Value uint32
}

// Rule is one syscall decision.
type Rule struct {
	Syscall string
	Action  Action
	Arg     *ArgCondition
}

// DefaultAction is returned for syscalls no rule names.
var DefaultAction = ActionErrno(errnoEPERM)

// Profile is an immutable, assembled seccomp filter.
type Profile struct {
	name     string
	version  int
	platform string
	rules    []Rule
	program  []bpf.Instruction
	raw      []bpf.RawInstruction
	digest   string
}

// Profile versions. Bump on any change to the corresponding rules.
const (
	managementVersion = 1
	servingVersion    = 1
)

var (
	managementProfile = sync.OnceValues(func() (*Profile, error) {
		return build("management", managementVersion, managementRules())
	})
	servingProfile = sync.OnceValues(func() (*Profile, error) {
		return build("serving", servingVersion, servingRules())
	})
)

// Management returns the profile for commands that only touch the
// key database and the terminal. It fails on platforms without a
// syscall table.
func Management() (*Profile, error) {
	return managementProfile()
}

// Serving returns the profile for commands that talk to the agent
// socket or run the daemon.
func Serving() (*Profile, error) {
	return servingProfile()
}

func build(name string, version int, rules []Rule) (*Profile, error) {
	if currentPlatform == nil {
		return nil, fmt.Errorf("sandbox: %w", ErrUnsupported)
	}
	program, err := assemble(currentPlatform, rules)
	if err != nil {
		return nil, fmt.Errorf("sandbox: assembling %s profile: %w", name, err)
	}
	raw, err := bpf.Assemble(program)
	if err != nil {
		return nil, fmt.Errorf("sandbox: encoding %s profile: %w", name, err)
	}
	return &Profile{
		name:     name,
		version:  version,
		platform: currentPlatform.name,
		rules:    rules,
		program:  program,
		raw:      raw,
		digest:   digest(name, version, raw),
	}, nil
}

func digest(name string, version int, raw []bpf.RawInstruction) string {
	hasher := blake3.New()
	fmt.Fprintf(hasher, "%s/v%d\x00", name, version)
	var word [8]byte
	for _, instruction := range raw {
		binary.LittleEndian.PutUint16(word[0:2], instruction.Op)
		word[2] = instruction.Jt
		word[3] = instruction.Jf
		binary.LittleEndian.PutUint32(word[4:8], instruction.K)
		hasher.Write(word[:])
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Name returns the profile name, "management" or "serving".
func (p *Profile) Name() string { return p.name }

// Version returns the rule set version.
func (p *Profile) Version() int { return p.version }

// Platform returns the GOOS/GOARCH the program was assembled for.
func (p *Profile) Platform() string { return p.platform }

// Digest returns the hex BLAKE3 hash of the name, version, and
// assembled program.
func (p *Profile) Digest() string { return p.digest }

// Len returns the number of BPF instructions.
func (p *Profile) Len() int { return len(p.raw) }

// Rules returns a copy of the rule list.
func (p *Profile) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Program returns a copy of the assembled instructions.
func (p *Profile) Program() []bpf.Instruction {
	return append([]bpf.Instruction(nil), p.program...)
}

func (p *Profile) String() string {
	return fmt.Sprintf("%s/v%d", p.name, p.version)
}
