//go:build !windows

// Package osutils holds small OS queries used to explain hook failures.
package osutils

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// IsAdmin reports whether the process runs as root.
func IsAdmin() bool {
	return unix.Geteuid() == 0
}

// PrivilegeHint describes what the hook needs on this platform.
func PrivilegeHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "grant Accessibility and Input Monitoring permission in System Settings"
	case "linux":
		return "run under an X11 session with the XRecord extension, or as root"
	}
	return "check that the process may observe global input"
}
