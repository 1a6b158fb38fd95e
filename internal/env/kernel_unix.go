//go:build unix

package env

import (
	"strings"

	"golang.org/x/sys/unix"
)

// HostKernel describes the running kernel like "uname -srm" does.
func HostKernel() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return strings.Join([]string{
		unix.ByteSliceToString(u.Sysname[:]),
		unix.ByteSliceToString(u.Release[:]),
		unix.ByteSliceToString(u.Machine[:]),
	}, " ")
}
