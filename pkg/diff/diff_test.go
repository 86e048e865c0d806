package diff

import (
	"strings"
	"testing"

	"github.com/retree-dev/retree/internal/errors"
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/el"
	"github.com/retree-dev/retree/pkg/host/memhost"
	"github.com/retree-dev/retree/pkg/patch"
	"github.com/retree-dev/retree/pkg/tree"
)

// testComp adapts a render function plus a render counter.
type testComp struct {
	renders int
	fn      func(rc desc.RenderContext) any
}

func (c *testComp) Render(rc desc.RenderContext) any {
	c.renders++
	return c.fn(rc)
}

// fixture wires one root component onto a fresh in-memory target.
type fixture struct {
	t       *testing.T
	engine  *Engine
	adapter *memhost.Adapter
	root    *tree.Node
	state   map[string]any
	comps   map[string]*testComp
}

func newFixture(t *testing.T, components map[string]func(rc desc.RenderContext) any) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		adapter: memhost.New(),
		comps:   make(map[string]*testComp),
	}
	for name, fn := range components {
		f.comps[name] = &testComp{fn: fn}
	}
	f.engine = New(Config{
		Debug:    true,
		Describe: el.Describe,
		Resolve: func(name string) (desc.Component, error) {
			c, ok := f.comps[name]
			if !ok {
				return nil, errors.New("E030").WithDetail("component %q", name)
			}
			return c, nil
		},
	})
	f.root = tree.New(&desc.Desc{Kind: desc.KindComponent, Component: "app", Root: true})
	f.root.Container = f.adapter.Root()
	return f
}

// cycle diffs against next and applies the result, mirroring a dispatcher
// cycle without hooks.
func (f *fixture) cycle(next map[string]any) ([]patch.Patch, error) {
	patches, err := f.engine.ComputeDiff(f.root, f.state, next)
	if err != nil {
		return nil, err
	}
	if err := patch.ApplyAll(f.adapter, patches); err != nil {
		return patches, err
	}
	f.state = next
	return patches, nil
}

func (f *fixture) mustCycle(next map[string]any) []patch.Patch {
	f.t.Helper()
	patches, err := f.cycle(next)
	if err != nil {
		f.t.Fatalf("cycle: %v", err)
	}
	return patches
}

func (f *fixture) html() string {
	return f.adapter.RootNode().HTML()
}

func TestComputeDiffFirstMount(t *testing.T) {
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{
		"app": func(rc desc.RenderContext) any {
			return el.Div(el.Class("box"), el.Text(rc.StringProp("msg")))
		},
	})

	patches := f.mustCycle(map[string]any{"msg": "hello"})
	if patches[0].Op != patch.OpInitRoot {
		t.Fatalf("first patch = %v, want InitRoot", patches[0].Op)
	}
	if got, want := f.html(), `<div class="box">hello</div>`; got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
}

func TestComputeDiffIdempotent(t *testing.T) {
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{
		"app": func(rc desc.RenderContext) any {
			return el.Div(el.Text(rc.StringProp("msg")))
		},
	})
	f.mustCycle(map[string]any{"msg": "hello"})

	// A deep-equal state object must circumvent the whole pass.
	patches := f.mustCycle(map[string]any{"msg": "hello"})
	if len(patches) != 0 {
		t.Errorf("expected no patches for deep-equal state, got %d", len(patches))
	}
}

func TestEndToEndAttributeAndText(t *testing.T) {
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{
		"app": func(rc desc.RenderContext) any {
			return el.Div(
				el.Attr("id", rc.StringProp("id")),
				el.Text(rc.StringProp("text")),
			)
		},
	})
	f.mustCycle(map[string]any{"id": "x", "text": "A"})

	patches := f.mustCycle(map[string]any{"id": "y", "text": "B"})

	var ops []patch.Op
	for _, p := range patches {
		ops = append(ops, p.Op)
	}
	want := []patch.Op{patch.OpSetAttribute, patch.OpReplaceChild, patch.OpUpdateNode, patch.OpUpdateNode}
	if len(ops) != len(want) {
		t.Fatalf("patch ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("patch ops = %v, want %v", ops, want)
		}
	}
	if patches[0].Key != "id" || patches[0].Value != "y" {
		t.Errorf("setAttribute patch = %q=%q, want id=y", patches[0].Key, patches[0].Value)
	}
	if got, want := f.html(), `<div id="y">B</div>`; got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
}

func TestMemoizationSkipsRender(t *testing.T) {
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{
		"app": func(rc desc.RenderContext) any {
			return el.Div(
				el.C("item", map[string]any{"label": "fixed"}),
				el.Text(rc.StringProp("msg")),
			)
		},
		"item": func(rc desc.RenderContext) any {
			return el.Span(el.Text(rc.StringProp("label")))
		},
	})
	f.mustCycle(map[string]any{"msg": "one"})
	itemRenders := f.comps["item"].renders

	f.mustCycle(map[string]any{"msg": "two"})
	if f.comps["item"].renders != itemRenders {
		t.Errorf("memoized child rendered again: %d -> %d renders", itemRenders, f.comps["item"].renders)
	}
	if got := f.html(); !strings.Contains(got, "two") {
		t.Errorf("parent update lost: %s", got)
	}
}

func TestRoundTripRestoresSets(t *testing.T) {
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{
		"app": func(rc desc.RenderContext) any {
			if rc.Props["alt"] == true {
				return el.Div(
					el.Class("alt"),
					el.Attr("role", "main"),
					el.Style("color", "red"),
				)
			}
			return el.Div(
				el.Class("base"),
				el.Attr("id", "x"),
				el.Attr("role", "side"),
				el.Style("margin", "0"),
			)
		},
	})
	f.mustCycle(map[string]any{"alt": false})
	original := f.html()

	f.mustCycle(map[string]any{"alt": true})
	f.mustCycle(map[string]any{"alt": false})

	if got := f.html(); got != original {
		t.Errorf("round trip diverged:\ngot  %s\nwant %s", got, original)
	}
}

func TestKeyedReorderMovesWithoutRebuild(t *testing.T) {
	render := func(rc desc.RenderContext) any {
		keys, _ := rc.Props["keys"].([]string)
		return el.Ul(el.Range(keys, func(k string, _ int) *desc.Desc {
			return el.Li(el.Key(k), el.Text(k))
		}))
	}
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{"app": render})
	f.mustCycle(map[string]any{"keys": []string{"a", "b", "c", "d"}})

	f.adapter.Ops = nil
	f.mustCycle(map[string]any{"keys": []string{"b", "a", "d", "c"}})

	for _, op := range f.adapter.Ops {
		if strings.HasPrefix(op, "createElement") || strings.HasPrefix(op, "createText") {
			t.Errorf("permutation rebuilt a node: %s", op)
		}
	}
	if got, want := f.html(), "<ul><li>b</li><li>a</li><li>d</li><li>c</li></ul>"; got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
}

func TestKeyedInsertRemove(t *testing.T) {
	render := func(rc desc.RenderContext) any {
		keys, _ := rc.Props["keys"].([]string)
		return el.Ul(el.Range(keys, func(k string, _ int) *desc.Desc {
			return el.Li(el.Key(k), el.Text(k))
		}))
	}
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{"app": render})
	f.mustCycle(map[string]any{"keys": []string{"a", "b", "c"}})
	f.mustCycle(map[string]any{"keys": []string{"c", "x", "a"}})

	if got, want := f.html(), "<ul><li>c</li><li>x</li><li>a</li></ul>"; got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
}

func TestDuplicateSiblingKeysFailInDebug(t *testing.T) {
	render := func(rc desc.RenderContext) any {
		if rc.Props["dup"] == true {
			return el.Ul(el.Li(el.Key("k")), el.Li(el.Key("k")))
		}
		return el.Ul(el.Li(el.Key("k")), el.Li(el.Key("j")))
	}
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{"app": render})
	f.mustCycle(map[string]any{"dup": false})

	_, err := f.cycle(map[string]any{"dup": true})
	if !errors.Is(err, errors.CategoryAssertion) {
		t.Fatalf("expected assertion error for duplicate keys, got %v", err)
	}
}

func TestContentTransitionsAreStructuralErrors(t *testing.T) {
	render := func(rc desc.RenderContext) any {
		if rc.Props["show"] == true {
			return el.Div()
		}
		return nil
	}

	t.Run("content to none", func(t *testing.T) {
		f := newFixture(t, map[string]func(rc desc.RenderContext) any{"app": render})
		f.mustCycle(map[string]any{"show": true})
		_, err := f.cycle(map[string]any{"show": false})
		if !errors.Is(err, errors.CategoryStructural) {
			t.Fatalf("expected structural error, got %v", err)
		}
	})

	t.Run("none to content", func(t *testing.T) {
		f := newFixture(t, map[string]func(rc desc.RenderContext) any{"app": render})
		f.mustCycle(map[string]any{"show": false})
		_, err := f.cycle(map[string]any{"show": true})
		if !errors.Is(err, errors.CategoryStructural) {
			t.Fatalf("expected structural error, got %v", err)
		}
	})
}

func TestIncompatibleContentIsReplaced(t *testing.T) {
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{
		"app": func(rc desc.RenderContext) any {
			return el.Div(el.C("inner", map[string]any{"span": rc.Props["span"]}))
		},
		"inner": func(rc desc.RenderContext) any {
			if rc.Props["span"] == true {
				return el.Span(el.Text("s"))
			}
			return el.P(el.Text("p"))
		},
	})
	f.mustCycle(map[string]any{"span": false})
	if got := f.html(); got != "<div><p>p</p></div>" {
		t.Fatalf("initial html = %s", got)
	}

	patches := f.mustCycle(map[string]any{"span": true})
	var sawSetContent bool
	for _, p := range patches {
		if p.Op == patch.OpSetContent {
			sawSetContent = true
		}
	}
	if !sawSetContent {
		t.Error("expected a setContent patch for an incompatible render result")
	}
	if got := f.html(); got != "<div><span>s</span></div>" {
		t.Errorf("html = %s", got)
	}
}

func TestListenerSourceIdentity(t *testing.T) {
	handler := func(event any) {}
	f := newFixture(t, map[string]func(rc desc.RenderContext) any{
		"app": func(rc desc.RenderContext) any {
			// A fresh wrapper every render, same source function.
			return el.Button(el.OnBound("click", handler, func(event any) { handler(event) }))
		},
	})
	f.mustCycle(map[string]any{"n": 1})

	patches := f.mustCycle(map[string]any{"n": 2})
	for _, p := range patches {
		if p.Op == patch.OpReplaceListener || p.Op == patch.OpAddListener || p.Op == patch.OpRemoveListener {
			t.Errorf("listener with stable source emitted %v", p.Op)
		}
	}
}
