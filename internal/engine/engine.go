// Package engine is the top-level orchestrator spec.md §2 describes: parse
// → back-quote expand → re-parse → build plan → walk plan, wiring every
// other internal package together the way the teacher's decorator.Session
// ties a run request to a concrete execution (core/decorator/session.go).
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/wyshell/wyshell/internal/backquote"
	"github.com/wyshell/wyshell/internal/builtin"
	"github.com/wyshell/wyshell/internal/cancel"
	"github.com/wyshell/wyshell/internal/collab"
	"github.com/wyshell/wyshell/internal/config"
	"github.com/wyshell/wyshell/internal/job"
	"github.com/wyshell/wyshell/internal/pipefabric"
	"github.com/wyshell/wyshell/internal/plan"
	"github.com/wyshell/wyshell/internal/redirect"
	"github.com/wyshell/wyshell/internal/registry"
	"github.com/wyshell/wyshell/internal/shlog"
)

// Collaborators bundles every external collaborator spec.md §6 requires a
// host to supply.
type Collaborators struct {
	Parser        collab.LineParser
	PathResolver  collab.PathResolver
	AliasExpander collab.AliasExpander
	EnvExpander   collab.EnvExpander

	// Input is the console-input heuristic source for the Ctrl-B
	// background-detection poll (spec.md §4.4). A host with no attached
	// console (or a test) can leave this nil; New fills in
	// cancel.NullInputPeeker{}.
	Input cancel.InputPeeker
}

// Engine ties a registry, job tracker, configuration, and collaborator set
// to one running shell instance.
type Engine struct {
	Config   config.Config
	Registry *registry.Registry
	Invoker  *builtin.Invoker
	Jobs     *job.Tracker
	Log      *shlog.Logger
	Collab   Collaborators

	errorLevel int32
	cancelled  int32

	mu           sync.Mutex
	cancelCh     chan struct{}
	cancelClosed bool
}

// New wires a fresh Engine. The caller is responsible for calling
// builtin.RegisterAll(reg) and registry.RegisterStatic for any
// host-specific built-ins before first use.
func New(cfg config.Config, reg *registry.Registry, collabs Collaborators, log *shlog.Logger) *Engine {
	if collabs.Input == nil {
		collabs.Input = cancel.NullInputPeeker{}
	}
	if cfg.NullDevicePath != "" {
		redirect.NullDevicePath = cfg.NullDevicePath
	}
	return &Engine{
		Config:   cfg,
		Registry: reg,
		Invoker:  builtin.NewInvoker(reg),
		Jobs:     job.New(),
		Log:      log,
		Collab:   collabs,
		cancelCh: make(chan struct{}),
	}
}

// ErrorLevel returns the exit status of the most recently completed node,
// spec.md §5's process-wide error-level location.
func (e *Engine) ErrorLevel() int { return int(atomic.LoadInt32(&e.errorLevel)) }

// RequestCancel marks the engine cancelled: any node currently blocked in
// the wait loop reacts immediately via CancelEvent (a polite break sent to
// its process), and the next node boundary the walker reaches stops the
// plan and runs the polite-then-forceful sweep over whatever remains
// (spec.md §4.4/§4.6 step 2).
func (e *Engine) RequestCancel() {
	atomic.StoreInt32(&e.cancelled, 1)
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cancelClosed {
		close(e.cancelCh)
		e.cancelClosed = true
	}
}

// ResetCancel clears a previously requested cancellation, for the next
// line of input.
func (e *Engine) ResetCancel() {
	atomic.StoreInt32(&e.cancelled, 0)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelCh = make(chan struct{})
	e.cancelClosed = false
}

func (e *Engine) cancelledFunc() bool { return atomic.LoadInt32(&e.cancelled) != 0 }

func (e *Engine) cancelEvent() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelCh
}

// Execute runs one line of shell input end to end: back-quote expansion,
// parse, alias/env expansion, plan build, and walk. captureRequested asks
// for the final buffer back (for a caller that is itself inside a
// back-quote capture); ordinary interactive execution passes false, and
// cmd/wyshell's `-c` path walks its plan with capture off as well.
func (e *Engine) Execute(line string, captureRequested bool) (*pipefabric.Buffer, error) {
	p, err := e.BuildPlan(line)
	if err != nil {
		return nil, err
	}
	return e.WalkPlan(p, captureRequested)
}

// BuildPlan runs spec.md §2's parse stages only — back-quote expansion,
// parse, env expansion, plan build — without walking the result. Exposed
// so a caller can snapshot the plan (`--dump-plan`) before running it, or
// replay a previously dumped plan via WalkPlan directly.
func (e *Engine) BuildPlan(line string) (*plan.Plan, error) {
	expanded, err := backquote.Expand(line, e.backquoteDeps())
	if err != nil {
		return nil, err
	}

	ctx, err := e.Collab.Parser.Parse(expanded, 0)
	if err != nil {
		return nil, err
	}
	if e.Collab.EnvExpander != nil {
		ctx = e.Collab.EnvExpander.Expand(ctx)
	}

	return plan.Build(ctx, true)
}

// WalkPlan runs an already-built plan (spec.md §4.6), publishing its final
// error level and transferring any still-alive concurrent node to the job
// tracker (spec.md §4.4's background-ownership transfer).
func (e *Engine) WalkPlan(p *plan.Plan, captureRequested bool) (*pipefabric.Buffer, error) {
	deps := e.walkDeps()
	buf, err := plan.Walk(p, deps, captureRequested)
	atomic.StoreInt32(&e.errorLevel, int32(*deps.ErrorLevel))
	if err != nil {
		return nil, err
	}

	for _, n := range p.Nodes() {
		if (n.NextTag == plan.Concurrent || n.Backgrounded()) && n.Alive() {
			e.Jobs.Track(n, n.Command.Vector.CommandLine())
		}
	}

	return buf, nil
}

func (e *Engine) backquoteDeps() backquote.Deps {
	return backquote.Deps{
		Parser:   e.Collab.Parser,
		Expander: e.Collab.EnvExpander,
		Walk:     e.walkDeps(),
	}
}

func (e *Engine) walkDeps() plan.Deps {
	errLevel := int(atomic.LoadInt32(&e.errorLevel))
	deps := plan.Deps{
		PathResolver:          e.Collab.PathResolver,
		AliasExpander:         e.Collab.AliasExpander,
		Registry:              e.Registry,
		Invoker:               e.Invoker,
		Cancelled:             e.cancelledFunc,
		CancelEvent:           e.cancelEvent(),
		Input:                 e.Collab.Input,
		Log:                   e.Log,
		PollInterval:          e.Config.PollInterval,
		TerminateGracePeriod:  e.Config.TerminateGracePeriod,
		BackgroundDetectPolls: e.Config.BackgroundDetectPolls,
		Subshell: func(commandLine string, singleStatement bool) error {
			_, err := e.Execute(commandLine, false)
			return err
		},
		ErrorLevel: &errLevel,
	}
	return deps
}
