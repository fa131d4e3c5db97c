package cancel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeWaiter struct {
	delay    time.Duration
	exitCode int
}

func (f fakeWaiter) Wait() (int, error) {
	time.Sleep(f.delay)
	return f.exitCode, nil
}

func (f fakeWaiter) PumpDone() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestRunReturnsExitCodeOnCompletion(t *testing.T) {
	loop := &Loop{
		Handle:       fakeWaiter{delay: 10 * time.Millisecond, exitCode: 7},
		CancelEvent:  make(chan struct{}),
		Input:        NullInputPeeker{},
		PollInterval: 30 * time.Millisecond,
	}
	res, err := loop.Run()
	assert.NoError(t, err)
	assert.Equal(t, 7, res.ExitCode)
}

func TestRunReactsToCancelEventWithoutPid(t *testing.T) {
	cancelCh := make(chan struct{})
	loop := &Loop{
		Handle:       fakeWaiter{delay: 500 * time.Millisecond, exitCode: 0},
		Pid:          func() int { return 0 },
		CancelEvent:  cancelCh,
		Input:        NullInputPeeker{},
		PollInterval: 20 * time.Millisecond,
	}
	close(cancelCh)

	done := make(chan Result, 1)
	go func() {
		res, _ := loop.Run()
		done <- res
	}()

	select {
	case <-done:
		t.Fatal("expected the loop to keep waiting since no pid was recorded yet")
	case <-time.After(80 * time.Millisecond):
	}
}

type alwaysCtrlB struct{}

func (alwaysCtrlB) PeekCtrlB() bool     { return true }
func (alwaysCtrlB) PeekLoseFocus() bool { return false }

func TestRunDetectsSustainedCtrlBAsBackground(t *testing.T) {
	loop := &Loop{
		Handle:       fakeWaiter{delay: time.Second, exitCode: 0},
		CancelEvent:  make(chan struct{}),
		Input:        alwaysCtrlB{},
		PollInterval: 15 * time.Millisecond,
	}
	res, err := loop.Run()
	assert.NoError(t, err)
	assert.True(t, res.Backgrounded, "expected a sustained Ctrl-B to report Backgrounded")
}

type cancellableStub struct {
	pid          int
	alive        bool
	graceful     bool
	terminated   bool
}

func (c *cancellableStub) Pid() int               { return c.pid }
func (c *cancellableStub) Alive() bool             { return c.alive }
func (c *cancellableStub) TerminateGracefully() bool { return c.graceful }
func (c *cancellableStub) Terminate()              { c.terminated = true; c.alive = false }

func TestRunHonorsConfiguredBackgroundSustainPolls(t *testing.T) {
	loop := &Loop{
		Handle:                 fakeWaiter{delay: time.Second, exitCode: 0},
		CancelEvent:            make(chan struct{}),
		Input:                  alwaysCtrlB{},
		PollInterval:           15 * time.Millisecond,
		BackgroundSustainPolls: 1,
	}
	res, err := loop.Run()
	assert.NoError(t, err)
	assert.True(t, res.Backgrounded, "expected a single Ctrl-B poll to suffice when BackgroundSustainPolls is 1")
}

func TestPoliteThenForcefulTerminatesSurvivors(t *testing.T) {
	a := &cancellableStub{pid: 100, alive: true, graceful: true}
	b := &cancellableStub{pid: 200, alive: true, graceful: false}

	PoliteThenForceful([]CancellableNode{a, b}, 50*time.Millisecond)

	assert.True(t, a.terminated, "expected the politely-notified node to be forcefully terminated after the grace period")
	assert.True(t, b.terminated, "expected the non-graceful node to be forcefully terminated")
}
