// Package job implements the background job tracker, spec.md §2 row 8 and
// §4.4's background-detection transfer: "a background job owns its process
// handle; the execution engine transfers ownership to the job tracker and
// clears its own handle."
package job

import (
	"sync"

	"github.com/wyshell/wyshell/internal/plan"
)

// Job is one tracked background command.
type Job struct {
	ID      int
	Command string
	node    *plan.Node
}

// Pid returns the job's process id, or 0 if it has already exited.
func (j *Job) Pid() int { return j.node.Pid() }

// Alive reports whether the job's process has not yet been observed to exit.
func (j *Job) Alive() bool { return j.node.Alive() }

// ExitCode returns the job's exit status. Only meaningful once Alive is
// false.
func (j *Job) ExitCode() int { return j.node.ExitCode() }

// Terminate force-kills the job's process.
func (j *Job) Terminate() { j.node.Terminate() }

// Tracker owns every backgrounded job until it is waited on or removed.
// Mirrors internal/registry's refcounted-list shape: a mutex-guarded map
// keyed by a monotonically increasing id.
type Tracker struct {
	mu     sync.Mutex
	jobs   map[int]*Job
	nextID int
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{jobs: make(map[int]*Job)}
}

// Track takes ownership of n, the node the execution engine just
// determined is backgrounded (spec.md §4.4 step 10: a sustained Ctrl-B, or
// a trailing "&" from internal/plan.Build), assigning it the next job id.
func (t *Tracker) Track(n *plan.Node, command string) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	j := &Job{ID: t.nextID, Command: command, node: n}
	t.jobs[j.ID] = j
	return j
}

// List returns every tracked job, live or finished, in ascending id order.
func (t *Tracker) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*Job, 0, len(t.jobs))
	for id := 1; id <= t.nextID; id++ {
		if j, ok := t.jobs[id]; ok {
			out = append(out, j)
		}
	}
	return out
}

// Get returns the job with the given id, if still tracked.
func (t *Tracker) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	return j, ok
}

// Remove drops a job from the tracker — called once its exit status has
// been collected (e.g. by a "wait" built-in) or the user kills it.
func (t *Tracker) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// Reap removes every job that is no longer alive, returning them so a
// caller can report their final status before they are forgotten.
func (t *Tracker) Reap() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	var done []*Job
	for id, j := range t.jobs {
		if !j.Alive() {
			done = append(done, j)
			delete(t.jobs, id)
		}
	}
	return done
}
