//go:build !windows

package launcher

import (
	"os/exec"
	"syscall"
)

// configureForCreation sets up a dedicated process group so the
// cancellation loop's forceful pass can terminate parent+children
// together. Windows has no equivalent of Setpgid, so this file only builds
// for the non-Windows development stand-in spec.md's Non-goals already
// disclaim as a portability target.
func configureForCreation(cmd *exec.Cmd, _ Flags) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateCommandOnCancel(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

// isElevationRequired never applies outside the Windows UAC model this
// stand-in does not implement.
func isElevationRequired(_ error) bool { return false }

// shellExecute approximates the shell-execute fallback by running argv[0]
// directly; the real ShellExecuteEx-based elevation and file-association
// dispatch is Windows-only (internal/launcher/launcher_windows.go).
func shellExecute(req Request) (*Handle, error) {
	return createProcess(req)
}

// captureEnvironmentOnExit is a documented no-op stand-in: the debug-events
// channel and PEB introspection spec.md §4.3 describes are Windows-only
// (internal/launcher/launcher_windows.go). Racing Ctrl-B backgrounding mid
// capture (spec.md §4.3 "Cancellation is racy with the pump") therefore has
// nothing to race here; the pump simply waits for process exit.
func captureEnvironmentOnExit(h *Handle) {
	_, _ = h.Wait()
}
