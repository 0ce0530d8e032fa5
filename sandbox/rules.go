// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

// Linux errno values returned by the filter. These are the Linux
// numbers regardless of the platform the profile is inspected on.
const (
	errnoEPERM  = 1
	errnoENOSYS = 38
)

// Clone flags and address families referenced by argument conditions.
const (
	cloneThread = 0x00010000
	familyUnix  = 1
)

// legacySyscalls exist on amd64 but not on arm64, which only has the
// *at variants. Rules naming them are skipped where the platform lacks
// them.
var legacySyscalls = map[string]bool{
	"open":         true,
	"stat":         true,
	"lstat":        true,
	"access":       true,
	"unlink":       true,
	"rename":       true,
	"mkdir":        true,
	"chmod":        true,
	"readlink":     true,
	"dup2":         true,
	"epoll_create": true,
	"epoll_wait":   true,
	"poll":         true,
	"select":       true,
	"arch_prctl":   true,
}

func allow(names ...string) []Rule {
	rules := make([]Rule, len(names))
	for i, name := range names {
		rules[i] = Rule{Syscall: name, Action: ActionAllow}
	}
	return rules
}

// runtimeRules are needed by any Go program: memory management,
// threads, signals, timers, and the netpoller.
func runtimeRules() []Rule {
	return allow(
		"mmap", "munmap", "mremap", "mprotect", "madvise", "mincore", "brk",
		"mlock", "munlock",
		"futex", "exit", "exit_group", "gettid", "getpid", "getppid",
		"getuid", "geteuid", "getgid", "getegid",
		"tgkill", "tkill",
		"rt_sigaction", "rt_sigprocmask", "rt_sigreturn", "sigaltstack",
		"sched_yield", "sched_getaffinity",
		"nanosleep", "clock_gettime", "clock_getres", "clock_nanosleep", "gettimeofday",
		"timer_create", "timer_settime", "timer_delete", "setitimer",
		"getrandom", "uname", "prctl", "arch_prctl",
		"set_robust_list", "set_tid_address", "rseq", "restart_syscall",
		"getrlimit", "setrlimit", "prlimit64", "getrusage",
		"epoll_create", "epoll_create1", "epoll_ctl", "epoll_wait", "epoll_pwait", "epoll_pwait2",
		"eventfd2", "pipe2", "poll", "ppoll", "select", "pselect6",
	)
}

// fileRules cover the key database, the configuration file, and the
// terminal. File access is not narrowed by path.
func fileRules() []Rule {
	return allow(
		"read", "write", "pread64", "pwrite64", "readv", "writev", "preadv", "pwritev",
		"open", "openat", "close", "close_range", "lseek",
		"stat", "lstat", "fstat", "newfstatat", "statx", "statfs", "fstatfs",
		"getdents64", "fcntl", "flock", "fsync", "fdatasync", "ftruncate", "fallocate",
		"unlink", "unlinkat", "rename", "renameat", "renameat2",
		"mkdir", "mkdirat", "chmod", "fchmod", "fchmodat", "fchown", "fchownat",
		"readlink", "readlinkat", "access", "faccessat", "faccessat2",
		"getcwd", "dup", "dup2", "dup3", "ioctl", "utimensat", "umask",
	)
}

func keyringRules() []Rule {
	return allow("keyctl", "add_key", "request_key")
}

// clone3 passes its flags through a struct the filter cannot read.
// ENOSYS makes the runtime and libc fall back to clone.
func clone3Rule() Rule {
	return Rule{Syscall: "clone3", Action: ActionErrno(errnoENOSYS)}
}

func managementRules() []Rule {
	var rules []Rule
	rules = append(rules, runtimeRules()...)
	rules = append(rules, fileRules()...)
	rules = append(rules, keyringRules()...)
	rules = append(rules,
		Rule{
			Syscall: "clone",
			Action:  ActionAllow,
			Arg:     &ArgCondition{Index: 0, Op: ArgHasBits, Value: cloneThread},
		},
		clone3Rule(),
	)
	return rules
}

func servingRules() []Rule {
	var rules []Rule
	rules = append(rules, runtimeRules()...)
	rules = append(rules, fileRules()...)
	rules = append(rules, keyringRules()...)
	rules = append(rules,
		Rule{
			Syscall: "socket",
			Action:  ActionAllow,
			Arg:     &ArgCondition{Index: 0, Op: ArgEqual, Value: familyUnix},
		},
		Rule{
			Syscall: "socketpair",
			Action:  ActionAllow,
			Arg:     &ArgCondition{Index: 0, Op: ArgEqual, Value: familyUnix},
		},
	)
	rules = append(rules, allow(
		"bind", "listen", "accept", "accept4", "connect",
		"sendto", "recvfrom", "sendmsg", "recvmsg",
		"setsockopt", "getsockopt", "getsockname", "getpeername", "shutdown",
		"clone", "execve", "wait4", "waitid", "kill",
		"pidfd_open", "pidfd_send_signal", "setpgid",
	)...)
	rules = append(rules, clone3Rule())
	return rules
}
