package launcher

import (
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/wyshell/wyshell/internal/redirect"
)

// osProcess wraps os/exec.Cmd so Handle.Wait has a single implementation
// shared by every platform; only process-group configuration, termination,
// elevation detection, and debug-pump environment capture vary by build tag
// (configureForCreation / terminateCommandOnCancel / isElevationRequired /
// captureEnvironmentOnExit), following the teacher's
// local_session_unix.go/local_session_windows.go split.
//
// A node with environment capture enabled has two goroutines interested in
// its exit: the debug pump (captureEnvironmentOnExit) and the cancellation
// & wait loop (internal/cancel.Loop.Run), both calling Handle.Wait(). Since
// *exec.Cmd.Wait() must not be called concurrently, wait() is a
// once-guarded call: whichever goroutine gets there first drives the real
// cmd.Wait(), and the other blocks on the same sync.Once and receives its
// cached result instead of racing it.
type osProcess struct {
	cmd  *exec.Cmd
	once sync.Once
	done int32 // atomic: 1 once the once-guarded Wait has returned

	exitCode int
	waitErr  error
}

func (p *osProcess) wait() (int, error) {
	p.once.Do(func() {
		defer atomic.StoreInt32(&p.done, 1)
		err := p.cmd.Wait()
		if err == nil {
			return
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			p.exitCode = exitErr.ExitCode()
			return
		}
		p.exitCode = -1
		p.waitErr = err
	})
	return p.exitCode, p.waitErr
}

// alive reports whether wait() has not yet observed this process's exit.
// It is a liveness approximation good enough for the cancellation sweep's
// "is this child still alive" check (spec.md §4.4): true until Wait
// returns, regardless of which goroutine called Wait.
func (p *osProcess) alive() bool {
	return atomic.LoadInt32(&p.done) == 0
}

// terminate force-kills the underlying process (spec.md §4.4's forceful
// pass), delegating to the platform-specific kill strategy.
func (p *osProcess) terminate() {
	terminateCommandOnCancel(p.cmd)
}

// createProcess is the direct process-creation path, spec.md §4.3 step 3.
// It runs after internal/redirect.Acquire has already overridden
// redirect.Current{Stdin,Stdout,Stderr} for this node, so it simply wires
// those into the child — the same process-wide handles a built-in run
// in-process would read through.
func createProcess(req Request) (*Handle, error) {
	cmd := exec.Command(req.Argv.First(), req.Argv.Strings()[1:]...)
	cmd.Dir = req.WorkDir
	cmd.Stdin = redirect.CurrentStdin
	cmd.Stdout = redirect.CurrentStdout
	cmd.Stderr = redirect.CurrentStderr
	configureForCreation(cmd, req.Flags)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	h := &Handle{Process: &osProcess{cmd: cmd}, Pid: cmd.Process.Pid}

	if req.Flags.CaptureEnvironmentOnExit && req.Flags.WaitForCompletion {
		h.pumpDone = make(chan struct{})
		go func() {
			defer close(h.pumpDone)
			captureEnvironmentOnExit(h)
		}()
	}

	return h, nil
}
