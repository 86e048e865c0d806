// Package dispatch serializes state-mutating commands into atomic
// diff/patch/lifecycle cycles for one tree.
//
// A dispatcher is single-writer: all commands for a tree must come from
// the same goroutine. Mutual exclusion of the in-flight cycle is the mode
// flag, not a lock; commands dispatched from inside lifecycle hooks are
// queued and flushed in a deferred batch after the triggering cycle has
// fully completed.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/retree-dev/retree/internal/errors"
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/diff"
	"github.com/retree-dev/retree/pkg/host"
	"github.com/retree-dev/retree/pkg/lifecycle"
	"github.com/retree-dev/retree/pkg/patch"
	"github.com/retree-dev/retree/pkg/tree"
)

// Mode governs what happens to an incoming command.
type Mode uint8

const (
	// ModeExecute runs commands immediately and synchronously.
	ModeExecute Mode = iota
	// ModeQueue buffers commands for a deferred batch flush. Active while
	// lifecycle hooks run, so a hook cannot trigger a nested diff pass.
	ModeQueue
	// ModeIgnore drops commands. Active once a tree is being torn down.
	ModeIgnore
)

func (m Mode) String() string {
	switch m {
	case ModeExecute:
		return "execute"
	case ModeQueue:
		return "queue"
	case ModeIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// maxCascades bounds consecutive same-tick flushes triggered from within
// lifecycle hooks before the dispatcher gives up with E010.
const maxCascades = 3

// Command is a named state mutation bound to its arguments.
type Command struct {
	Name string
	Args []any
}

// Reducer computes the next state for one command name. Reducers must not
// mutate the previous state map.
type Reducer func(state map[string]any, args ...any) map[string]any

// CommandFunc is a custom per-tree command API that replaces the reducer
// map entirely.
type CommandFunc func(state map[string]any, name string, args []any) (map[string]any, error)

// CycleInfo describes one update cycle to interceptors. Patches is filled
// in by the innermost stage before interceptors unwind.
type CycleInfo struct {
	Command string
	First   bool
	Patches int
}

// Interceptor wraps an update cycle, e.g. for metrics or tracing. It must
// call next exactly once.
type Interceptor func(info *CycleInfo, next func() error) error

// Completion signals that a queued command's batch has been flushed.
type Completion struct {
	done chan struct{}
	err  error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Done is closed once the command's cycle has run.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Err reports the cycle outcome. Valid only after Done is closed.
func (c *Completion) Err() error { return c.err }

func (c *Completion) resolve(err error) {
	c.err = err
	close(c.done)
}

// Config wires a dispatcher.
type Config struct {
	Engine       *diff.Engine
	Adapter      host.Adapter
	Resolve      func(name string) (desc.Component, error)
	Reducers     map[string]Reducer
	Command      CommandFunc
	Scheduler    Scheduler
	Interceptors []Interceptor
	Logger       *slog.Logger
}

// Dispatcher owns the update loop for one tree.
type Dispatcher struct {
	cfg  Config
	node *tree.Node

	state   map[string]any
	mounted bool
	// hasState flips after the first successful cycle, before the deferred
	// flush can run. Mount sets mounted only once its whole cycle is done,
	// so a command dispatched from a hook during mount must not diff
	// against a nil previous state and re-materialize the tree.
	hasState bool
	mode     Mode
	cycles   int

	queued      []Command
	completions []*Completion

	// fatal carries a flush failure back across the scheduler boundary,
	// so an inline scheduler surfaces it to the originating Dispatch call.
	fatal error
}

// New creates a dispatcher for the given tree root.
func New(node *tree.Node, cfg Config) *Dispatcher {
	if cfg.Scheduler == nil {
		cfg.Scheduler = Immediate{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	d := &Dispatcher{cfg: cfg, node: node}
	node.Dispatcher = d
	return d
}

// Node returns the tree root this dispatcher owns.
func (d *Dispatcher) Node() *tree.Node { return d.node }

// State returns the current state map. Callers must treat it as read-only.
func (d *Dispatcher) State() map[string]any { return d.state }

// Mount runs the first update cycle against the given container. The
// context bounds a component's asynchronous initial-state computation,
// the only suspension point before the synchronous cycle starts.
func (d *Dispatcher) Mount(ctx context.Context, container host.Handle) error {
	if d.mounted {
		return errors.Newf(errors.CategoryContract, "tree already mounted")
	}
	d.node.Container = container

	if d.node.Comp == nil && d.cfg.Resolve != nil {
		comp, err := d.cfg.Resolve(d.node.Desc.Component)
		if err != nil {
			return err
		}
		d.node.Comp = comp
	}

	next := cloneState(d.node.Desc.Props)
	if ini, ok := d.node.Comp.(desc.Initializer); ok {
		initial, err := ini.InitialState(ctx)
		if err != nil {
			return err
		}
		for k, v := range initial {
			next[k] = v
		}
	}

	if err := d.cycle("mount", next); err != nil {
		return err
	}
	d.mounted = true
	return nil
}

// Adopt marks a tree boundary whose first render happened inline during a
// parent build as mounted with the given state. Subsequent updates diff
// against that state instead of re-initializing.
func (d *Dispatcher) Adopt(state map[string]any) {
	d.state = cloneState(state)
	d.hasState = true
	d.mounted = true
}

// Dispatch routes a command according to the current mode. In execute mode
// the returned completion is already resolved when Dispatch returns; in
// queue mode it resolves after the deferred batch flush; in ignore mode
// the command is dropped and the completion resolves immediately.
func (d *Dispatcher) Dispatch(name string, args ...any) (*Completion, error) {
	switch d.mode {
	case ModeIgnore:
		c := newCompletion()
		c.resolve(nil)
		return c, nil

	case ModeQueue:
		c := newCompletion()
		d.queued = append(d.queued, Command{Name: name, Args: args})
		d.completions = append(d.completions, c)
		return c, nil

	default:
		c := newCompletion()
		if !d.mounted {
			err := errors.Newf(errors.CategoryContract, "command %q dispatched before mount", name)
			c.resolve(err)
			return c, err
		}
		next, err := d.reduce(d.state, Command{Name: name, Args: args})
		if err != nil {
			c.resolve(err)
			return c, err
		}
		err = d.cycle(name, next)
		c.resolve(err)
		return c, err
	}
}

// Update implements tree.Dispatcher: a parent cycle propagates new props
// into this tree boundary.
func (d *Dispatcher) Update(next map[string]any) error {
	if d.mode == ModeIgnore {
		return nil
	}
	return d.cycle("update", next)
}

// TearDown drops into ignore mode, fires destruction hooks, removes the
// tree from its container and detaches every handle. Safe to call once.
func (d *Dispatcher) TearDown() {
	if d.mode == ModeIgnore {
		return
	}
	d.mode = ModeIgnore
	d.queued = nil
	for _, c := range d.completions {
		c.resolve(nil)
	}
	d.completions = nil

	lifecycle.Destroy(d.node)
	if h := d.node.TargetHandle(); h != nil && d.node.Container != nil {
		d.cfg.Adapter.RemoveChild(d.node.Container, h)
	}
	patch.Teardown(d.node)
	lifecycle.Detach(d.node)
}

// cycle runs one synchronous diff/before/apply/after pass and then, if
// hooks queued more commands, schedules exactly one deferred batch flush.
func (d *Dispatcher) cycle(command string, next map[string]any) error {
	info := &CycleInfo{Command: command, First: !d.hasState}
	run := func() error { return d.runCycle(info, next) }
	for i := len(d.cfg.Interceptors) - 1; i >= 0; i-- {
		inner, ic := run, d.cfg.Interceptors[i]
		run = func() error { return ic(info, inner) }
	}
	return run()
}

func (d *Dispatcher) runCycle(info *CycleInfo, next map[string]any) error {
	var prev map[string]any
	if d.hasState {
		prev = d.state
	}

	patches, err := d.cfg.Engine.ComputeDiff(d.node, prev, next)
	if err != nil {
		return err
	}
	d.state = next
	d.hasState = true
	info.Patches = len(patches)
	if len(patches) == 0 {
		d.cycles = 0
		return nil
	}

	// Hooks and application run under queue mode so a hook dispatching a
	// command cannot start a nested cycle.
	d.mode = ModeQueue
	lifecycle.Before(patches)
	applyErr := patch.ApplyAll(d.cfg.Adapter, patches)
	if applyErr == nil {
		lifecycle.After(patches)
	}
	d.mode = ModeExecute
	if applyErr != nil {
		return applyErr
	}

	if len(d.queued) == 0 {
		d.cycles = 0
		return nil
	}

	d.cycles++
	if d.cycles > maxCascades {
		d.cycles = 0
		err := errors.New("E010").
			WithDetail("%d cascaded update cycles for command %q", maxCascades+1, info.Command)
		d.failQueued(err)
		return err
	}

	d.cfg.Scheduler.Schedule(d.flushTask)
	if d.fatal != nil {
		err := d.fatal
		d.fatal = nil
		return err
	}
	return nil
}

func (d *Dispatcher) flushTask() {
	if err := d.flush(); err != nil {
		d.cfg.Logger.Error("batch flush failed", "error", err)
		d.fatal = err
	}
}

// Err reports a fatal error from a deferred flush that had no caller to
// return to. Reading it clears it.
func (d *Dispatcher) Err() error {
	err := d.fatal
	d.fatal = nil
	return err
}

// flush drains the queued batch into a single state transition and runs
// one cycle for it.
func (d *Dispatcher) flush() error {
	if d.mode != ModeExecute || len(d.queued) == 0 {
		return nil
	}
	batch := d.queued
	completions := d.completions
	d.queued = nil
	d.completions = nil

	next := d.state
	var err error
	for _, cmd := range batch {
		next, err = d.reduce(next, cmd)
		if err != nil {
			break
		}
	}
	if err == nil {
		err = d.cycle("flush", next)
	}
	for _, c := range completions {
		c.resolve(err)
	}
	return err
}

// reduce maps one command through the custom command API or the reducer
// table.
func (d *Dispatcher) reduce(state map[string]any, cmd Command) (map[string]any, error) {
	if d.cfg.Command != nil {
		return d.cfg.Command(state, cmd.Name, cmd.Args)
	}
	r, ok := d.cfg.Reducers[cmd.Name]
	if !ok {
		return nil, errors.Newf(errors.CategoryContract, "no reducer for command %q", cmd.Name)
	}
	return r(cloneState(state), cmd.Args...), nil
}

func (d *Dispatcher) failQueued(err error) {
	for _, c := range d.completions {
		c.resolve(err)
	}
	d.queued = nil
	d.completions = nil
}

func cloneState(state map[string]any) map[string]any {
	next := make(map[string]any, len(state))
	for k, v := range state {
		next[k] = v
	}
	return next
}
