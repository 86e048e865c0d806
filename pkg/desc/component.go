package desc

import "context"

// Component is the application-supplied render unit. Render returns a
// declarative template understood by the description layer, or nil/false
// to render nothing.
type Component interface {
	Render(rc RenderContext) any
}

// RenderContext is the explicit capability struct passed to render
// functions. It exposes only the component's props, its parent-supplied
// children, and a bound command dispatcher.
type RenderContext struct {
	Props    map[string]any
	Children []*Desc
	Dispatch func(name string, args ...any)
}

// Prop returns a prop value, or nil when absent.
func (rc RenderContext) Prop(name string) any {
	return rc.Props[name]
}

// StringProp returns a string prop, or "" when absent or not a string.
func (rc RenderContext) StringProp(name string) string {
	s, _ := rc.Props[name].(string)
	return s
}

// RenderFunc adapts a plain function to Component.
type RenderFunc func(rc RenderContext) any

// Render implements Component.
func (f RenderFunc) Render(rc RenderContext) any {
	return f(rc)
}

// Optional lifecycle hooks. A component implements only the ones it needs;
// hooks fire only on components, never on elements, comments, or text, and
// are skipped on tree-boundary roots (roots sequence their own hooks
// through their dispatcher).
type (
	// Created fires top-down before a fresh subtree's patches are applied.
	Created interface{ OnCreated() }

	// Attached fires bottom-up after a fresh subtree's patches are applied.
	Attached interface{ OnAttached() }

	// PropsReceiver fires with the incoming props before an update is applied.
	PropsReceiver interface{ OnPropsReceived(props map[string]any) }

	// Updated fires with the previous props after an update is applied.
	Updated interface{ OnUpdated(prev map[string]any) }

	// Detached fires bottom-up after a displaced subtree's replacement
	// has been attached.
	Detached interface{ OnDetached() }

	// Destroyed fires top-down before the patches that displace a subtree
	// are applied.
	Destroyed interface{ OnDestroyed() }
)

// Initializer computes a component's initial state asynchronously at first
// mount. Mount blocks on it; this is the only suspension point inside a
// diff/patch cycle besides the deferred batch flush.
type Initializer interface {
	InitialState(ctx context.Context) (map[string]any, error)
}
