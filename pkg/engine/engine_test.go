package engine_test

import (
	"context"
	"testing"

	"github.com/retree-dev/retree/internal/errors"
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/dispatch"
	"github.com/retree-dev/retree/pkg/el"
	"github.com/retree-dev/retree/pkg/engine"
	"github.com/retree-dev/retree/pkg/host/memhost"
	"github.com/retree-dev/retree/pkg/retest"
)

type greeter struct{}

func (greeter) Render(rc desc.RenderContext) any {
	return el.Div(el.Text("hello " + rc.StringProp("who")))
}

func TestMountAndDispatch(t *testing.T) {
	h := retest.NewHarness(t).
		Register("greeter", func() desc.Component { return greeter{} }).
		Mount(el.C("greeter", map[string]any{"who": "world"}),
			engine.WithReducers(map[string]dispatch.Reducer{
				"rename": func(state map[string]any, args ...any) map[string]any {
					state["who"] = args[0]
					return state
				},
			}))

	h.ExpectHTML("<div>hello world</div>")
	h.Dispatch("rename", "retree").ExpectHTML("<div>hello retree</div>")
}

func TestMountRequiresComponent(t *testing.T) {
	eng := engine.New()
	adapter := memhost.New()
	if _, err := eng.Mount(context.Background(), el.Div(), adapter, adapter.Root()); err == nil {
		t.Fatal("expected error for non-component mount target")
	}
}

func TestUnknownComponentFails(t *testing.T) {
	eng := engine.New()
	adapter := memhost.New()
	_, err := eng.Mount(context.Background(), el.C("ghost"), adapter, adapter.Root())
	if !errors.Is(err, errors.CategoryContract) {
		t.Fatalf("expected contract error, got %v", err)
	}
}

func TestUnmountClearsTarget(t *testing.T) {
	h := retest.NewHarness(t).
		Register("greeter", func() desc.Component { return greeter{} }).
		Mount(el.C("greeter", map[string]any{"who": "x"}))

	h.Tree.Unmount()
	if got := h.HTML(); got != "" {
		t.Errorf("expected empty target after unmount, got %s", got)
	}
}

func TestFuncRegistrationIsMemoized(t *testing.T) {
	eng := engine.New()
	render := func(rc desc.RenderContext) any { return el.Span(el.Text("f")) }

	name := eng.Func(render)
	if name == "" {
		t.Fatal("expected a generated type name")
	}
	if again := eng.Func(render); again != name {
		t.Errorf("same function produced two names: %q vs %q", name, again)
	}
	if _, err := eng.Resolve(name); err != nil {
		t.Errorf("resolve: %v", err)
	}
}

func TestResetClearsRegistry(t *testing.T) {
	eng := engine.New()
	if err := eng.Register("greeter", func() desc.Component { return greeter{} }); err != nil {
		t.Fatalf("register: %v", err)
	}
	eng.Reset()
	if _, err := eng.Resolve("greeter"); err == nil {
		t.Error("expected resolve to fail after reset")
	}
}

func TestRegisterValidation(t *testing.T) {
	eng := engine.New()
	if err := eng.Register("", func() desc.Component { return greeter{} }); err == nil {
		t.Error("empty name must be rejected")
	}
	if err := eng.Register("x", nil); err == nil {
		t.Error("nil factory must be rejected")
	}
}

type bundle struct{ comps map[string]func() desc.Component }

func (b bundle) Name() string                               { return "bundle" }
func (b bundle) Components() map[string]func() desc.Component { return b.comps }

func TestPluginUse(t *testing.T) {
	eng := engine.New()
	err := eng.Use(bundle{comps: map[string]func() desc.Component{
		"greeter": func() desc.Component { return greeter{} },
	}})
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if _, err := eng.Resolve("greeter"); err != nil {
		t.Errorf("resolve: %v", err)
	}

	err = eng.Use(bundle{comps: map[string]func() desc.Component{"bad": nil}})
	if !errors.Is(err, errors.CategoryContract) {
		t.Errorf("expected contract error for nil factory, got %v", err)
	}
}

// initing exercises asynchronous initial state at mount.
type initing struct{}

func (initing) Render(rc desc.RenderContext) any {
	return el.Div(el.Text(rc.StringProp("loaded")))
}

func (initing) InitialState(ctx context.Context) (map[string]any, error) {
	return map[string]any{"loaded": "yes"}, nil
}

func TestInitializerSeedsState(t *testing.T) {
	retest.NewHarness(t).
		Register("initing", func() desc.Component { return initing{} }).
		Mount(el.C("initing")).
		ExpectHTML("<div>yes</div>")
}
