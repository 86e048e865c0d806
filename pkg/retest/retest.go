// Package retest provides a test harness for mounting trees against an
// in-memory render target and asserting on the result.
package retest

import (
	"context"
	"strings"
	"testing"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/dispatch"
	"github.com/retree-dev/retree/pkg/engine"
	"github.com/retree-dev/retree/pkg/host/memhost"
)

// Harness owns an engine, an in-memory adapter and at most one mounted
// tree. Construction is fluent:
//
//	h := retest.NewHarness(t).
//	    Register("app", func() desc.Component { return &App{} }).
//	    Mount(el.C("app"))
type Harness struct {
	t       *testing.T
	Engine  *engine.Engine
	Adapter *memhost.Adapter
	Tree    *engine.Tree
}

// NewHarness creates a harness with debug mode on and inline scheduling,
// so every dispatch runs its full cycle before returning.
func NewHarness(t *testing.T, opts ...engine.Option) *Harness {
	t.Helper()
	opts = append([]engine.Option{engine.WithDebug(true)}, opts...)
	return &Harness{
		t:       t,
		Engine:  engine.New(opts...),
		Adapter: memhost.New(),
	}
}

// Register binds a component factory, failing the test on error.
func (h *Harness) Register(name string, factory func() desc.Component) *Harness {
	h.t.Helper()
	if err := h.Engine.Register(name, factory); err != nil {
		h.t.Fatalf("register %q: %v", name, err)
	}
	return h
}

// Mount mounts the description into the adapter's root container.
func (h *Harness) Mount(d *desc.Desc, opts ...engine.MountOption) *Harness {
	h.t.Helper()
	tree, err := h.Engine.Mount(context.Background(), d, h.Adapter, h.Adapter.Root(), opts...)
	if err != nil {
		h.t.Fatalf("mount: %v", err)
	}
	h.Tree = tree
	return h
}

// Dispatch issues a command and fails the test if the cycle errors.
func (h *Harness) Dispatch(name string, args ...any) *Harness {
	h.t.Helper()
	if _, err := h.Tree.Dispatch(name, args...); err != nil {
		h.t.Fatalf("dispatch %q: %v", name, err)
	}
	return h
}

// Update pushes a whole next state and fails the test on error.
func (h *Harness) Update(next map[string]any) *Harness {
	h.t.Helper()
	if err := h.Tree.Update(next); err != nil {
		h.t.Fatalf("update: %v", err)
	}
	return h
}

// HTML returns the adapter's current markup snapshot.
func (h *Harness) HTML() string {
	return h.Adapter.RootNode().HTML()
}

// Ops returns the adapter's operation log since the last ResetOps.
func (h *Harness) Ops() []string {
	return h.Adapter.Ops
}

// ResetOps clears the operation log, typically right after mount so a
// test can assert on one update in isolation.
func (h *Harness) ResetOps() *Harness {
	h.Adapter.Ops = nil
	return h
}

// ExpectHTML asserts the full markup snapshot.
func (h *Harness) ExpectHTML(want string) *Harness {
	h.t.Helper()
	if got := h.HTML(); got != want {
		h.t.Errorf("html mismatch:\ngot  %s\nwant %s", got, want)
	}
	return h
}

// ExpectContains asserts the markup contains the substring.
func (h *Harness) ExpectContains(want string) *Harness {
	h.t.Helper()
	if got := h.HTML(); !strings.Contains(got, want) {
		h.t.Errorf("expected output to contain %q, got:\n%s", want, truncate(got, 500))
	}
	return h
}

// ExpectNotContains asserts the markup does not contain the substring.
func (h *Harness) ExpectNotContains(unwanted string) *Harness {
	h.t.Helper()
	if got := h.HTML(); strings.Contains(got, unwanted) {
		h.t.Errorf("expected output not to contain %q, got:\n%s", unwanted, truncate(got, 500))
	}
	return h
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Recorder collects ordered notes from lifecycle hooks and reducers, for
// asserting call sequences.
type Recorder struct {
	Calls []string
}

// Note appends one entry.
func (r *Recorder) Note(call string) {
	r.Calls = append(r.Calls, call)
}

// Reset clears recorded entries.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Expect asserts the exact recorded sequence.
func (r *Recorder) Expect(t *testing.T, want ...string) {
	t.Helper()
	if len(r.Calls) != len(want) {
		t.Fatalf("recorded %d calls %v, want %d %v", len(r.Calls), r.Calls, len(want), want)
	}
	for i := range want {
		if r.Calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q (full: %v)", i, r.Calls[i], want[i], r.Calls)
		}
	}
}

// StateReducer returns a reducer that sets fixed keys, useful for tests
// that only need a state transition to happen.
func StateReducer(updates map[string]any) dispatch.Reducer {
	return func(state map[string]any, args ...any) map[string]any {
		for k, v := range updates {
			state[k] = v
		}
		return state
	}
}
