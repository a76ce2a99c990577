//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || plan9 || solaris || windows || zos)

package transport

import "syscall"

func dialResultCodeFromSyscallErrno(_ syscall.Errno) DialResultCode {
	return DialResultCodeErrOther
}
