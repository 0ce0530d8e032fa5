// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import "golang.org/x/sys/unix"

var currentPlatform = &platform{
	name:      "linux/arm64",
	auditArch: unix.AUDIT_ARCH_AARCH64,
	syscalls: map[string]uint32{
		"read":              unix.SYS_READ,
		"write":             unix.SYS_WRITE,
		"pread64":           unix.SYS_PREAD64,
		"pwrite64":          unix.SYS_PWRITE64,
		"readv":             unix.SYS_READV,
		"writev":            unix.SYS_WRITEV,
		"preadv":            unix.SYS_PREADV,
		"pwritev":           unix.SYS_PWRITEV,
		"openat":            unix.SYS_OPENAT,
		"close":             unix.SYS_CLOSE,
		"close_range":       unix.SYS_CLOSE_RANGE,
		"lseek":             unix.SYS_LSEEK,
		"fstat":             unix.SYS_FSTAT,
		"statx":             unix.SYS_STATX,
		"statfs":            unix.SYS_STATFS,
		"fstatfs":           unix.SYS_FSTATFS,
		"getdents64":        unix.SYS_GETDENTS64,
		"fcntl":             unix.SYS_FCNTL,
		"flock":             unix.SYS_FLOCK,
		"fsync":             unix.SYS_FSYNC,
		"fdatasync":         unix.SYS_FDATASYNC,
		"ftruncate":         unix.SYS_FTRUNCATE,
		"fallocate":         unix.SYS_FALLOCATE,
		"unlinkat":          unix.SYS_UNLINKAT,
		"renameat":          unix.SYS_RENAMEAT,
		"renameat2":         unix.SYS_RENAMEAT2,
		"mkdirat":           unix.SYS_MKDIRAT,
		"fchmod":            unix.SYS_FCHMOD,
		"fchmodat":          unix.SYS_FCHMODAT,
		"fchown":            unix.SYS_FCHOWN,
		"fchownat":          unix.SYS_FCHOWNAT,
		"readlinkat":        unix.SYS_READLINKAT,
		"faccessat":         unix.SYS_FACCESSAT,
		"faccessat2":        unix.SYS_FACCESSAT2,
		"getcwd":            unix.SYS_GETCWD,
		"dup":               unix.SYS_DUP,
		"dup3":              unix.SYS_DUP3,
		"ioctl":             unix.SYS_IOCTL,
		"utimensat":         unix.SYS_UTIMENSAT,
		"umask":             unix.SYS_UMASK,
		"pipe2":             unix.SYS_PIPE2,
		"mmap":              unix.SYS_MMAP,
		"munmap":            unix.SYS_MUNMAP,
		"mremap":            unix.SYS_MREMAP,
		"mprotect":          unix.SYS_MPROTECT,
		"madvise":           unix.SYS_MADVISE,
		"mincore":           unix.SYS_MINCORE,
		"brk":               unix.SYS_BRK,
		"mlock":             unix.SYS_MLOCK,
		"munlock":           unix.SYS_MUNLOCK,
		"futex":             unix.SYS_FUTEX,
		"clone":             unix.SYS_CLONE,
		"clone3":            unix.SYS_CLONE3,
		"exit":              unix.SYS_EXIT,
		"exit_group":        unix.SYS_EXIT_GROUP,
		"gettid":            unix.SYS_GETTID,
		"getpid":            unix.SYS_GETPID,
		"getppid":           unix.SYS_GETPPID,
		"getuid":            unix.SYS_GETUID,
		"geteuid":           unix.SYS_GETEUID,
		"getgid":            unix.SYS_GETGID,
		"getegid":           unix.SYS_GETEGID,
		"tgkill":            unix.SYS_TGKILL,
		"tkill":             unix.SYS_TKILL,
		"kill":              unix.SYS_KILL,
		"rt_sigaction":      unix.SYS_RT_SIGACTION,
		"rt_sigprocmask":    unix.SYS_RT_SIGPROCMASK,
		"rt_sigreturn":      unix.SYS_RT_SIGRETURN,
		"sigaltstack":       unix.SYS_SIGALTSTACK,
		"sched_yield":       unix.SYS_SCHED_YIELD,
		"sched_getaffinity": unix.SYS_SCHED_GETAFFINITY,
		"nanosleep":         unix.SYS_NANOSLEEP,
		"clock_gettime":     unix.SYS_CLOCK_GETTIME,
		"clock_getres":      unix.SYS_CLOCK_GETRES,
		"clock_nanosleep":   unix.SYS_CLOCK_NANOSLEEP,
		"gettimeofday":      unix.SYS_GETTIMEOFDAY,
		"timer_create":      unix.SYS_TIMER_CREATE,
		"timer_settime":     unix.SYS_TIMER_SETTIME,
		"timer_delete":      unix.SYS_TIMER_DELETE,
		"setitimer":         unix.SYS_SETITIMER,
		"getrandom":         unix.SYS_GETRANDOM,
		"uname":             unix.SYS_UNAME,
		"prctl":             unix.SYS_PRCTL,
		"set_robust_list":   unix.SYS_SET_ROBUST_LIST,
		"set_tid_address":   unix.SYS_SET_TID_ADDRESS,
		"rseq":              unix.SYS_RSEQ,
		"restart_syscall":   unix.SYS_RESTART_SYSCALL,
		"getrlimit":         unix.SYS_GETRLIMIT,
		"setrlimit":         unix.SYS_SETRLIMIT,
		"prlimit64":         unix.SYS_PRLIMIT64,
		"getrusage":         unix.SYS_GETRUSAGE,
		"epoll_create1":     unix.SYS_EPOLL_CREATE1,
		"epoll_ctl":         unix.SYS_EPOLL_CTL,
		"epoll_pwait":       unix.SYS_EPOLL_PWAIT,
		"epoll_pwait2":      unix.SYS_EPOLL_PWAIT2,
		"eventfd2":          unix.SYS_EVENTFD2,
		"ppoll":             unix.SYS_PPOLL,
		"pselect6":          unix.SYS_PSELECT6,
		"keyctl":            unix.SYS_KEYCTL,
		"add_key":           unix.SYS_ADD_KEY,
		"request_key":       unix.SYS_REQUEST_KEY,
		"socket":            unix.SYS_SOCKET,
		"socketpair":        unix.SYS_SOCKETPAIR,
		"bind":              unix.SYS_BIND,
		"listen":            unix.SYS_LISTEN,
		"accept":            unix.SYS_ACCEPT,
		"accept4":           unix.SYS_ACCEPT4,
		"connect":           unix.SYS_CONNECT,
		"sendto":            unix.SYS_SENDTO,
		"recvfrom":          unix.SYS_RECVFROM,
		"sendmsg":           unix.SYS_SENDMSG,
		"recvmsg":           unix.SYS_RECVMSG,
		"setsockopt":        unix.SYS_SETSOCKOPT,
		"getsockopt":        unix.SYS_GETSOCKOPT,
		"getsockname":       unix.SYS_GETSOCKNAME,
		"getpeername":       unix.SYS_GETPEERNAME,
		"shutdown":          unix.SYS_SHUTDOWN,
		"execve":            unix.SYS_EXECVE,
		"wait4":             unix.SYS_WAIT4,
		"waitid":            unix.SYS_WAITID,
		"pidfd_open":        unix.SYS_PIDFD_OPEN,
		"pidfd_send_signal": unix.SYS_PIDFD_SEND_SIGNAL,
		"setpgid":           unix.SYS_SETPGID,
		"newfstatat":        unix.SYS_FSTATAT,
	},
}
