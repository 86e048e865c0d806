// Package diff walks a live node tree against a freshly rendered
// description tree and emits the ordered patch list that reconciles them.
package diff

import (
	"log/slog"
	"reflect"

	"github.com/retree-dev/retree/internal/errors"
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/patch"
	"github.com/retree-dev/retree/pkg/tree"
)

// Config wires the engine's external collaborators.
type Config struct {
	// Debug enables sibling-key uniqueness checks and frozen-description
	// verification. Both are skipped in production for performance.
	Debug bool

	// Describe normalizes a render result into a description or nil.
	Describe func(template any) *desc.Desc

	// Resolve instantiates a component by its registered type name.
	Resolve func(name string) (desc.Component, error)

	// NewRootDispatcher creates the dispatcher owned by a child tree
	// boundary encountered during a build. Optional.
	NewRootDispatcher func(n *tree.Node) tree.Dispatcher

	// Dispatch is the command dispatcher bound into render contexts.
	Dispatch func(name string, args ...any)

	Logger *slog.Logger
}

// Engine computes diffs. It holds no tree state of its own; all mutable
// state lives on the nodes and in the owning dispatcher.
type Engine struct {
	cfg     Config
	favored string
}

// New creates a diff engine.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{cfg: cfg}
}

// SetFavored names the reconciliation key that alignment should keep
// stationary on ties, e.g. a node mid-drag. Cleared with "".
func (e *Engine) SetFavored(key string) {
	e.favored = key
}

// ComputeDiff diffs the root against the next state and returns the patch
// list. A nil previous state means first mount and prepends the
// initialize-root patch; a previous state deep-equal to the next yields no
// patches at all.
func (e *Engine) ComputeDiff(root *tree.Node, prev, next map[string]any) ([]patch.Patch, error) {
	first := prev == nil
	if !first && reflect.DeepEqual(prev, next) {
		return nil, nil
	}

	var patches []patch.Patch
	if first {
		patches = append(patches, patch.Patch{
			Op:        patch.OpInitRoot,
			Node:      root,
			Container: root.Container,
		})
	}

	nd := withProps(root.Desc, next)
	if err := e.diffComponent(root, nd, &patches); err != nil {
		return nil, err
	}

	e.cfg.Logger.Debug("diff complete",
		"patches", len(patches),
		"first", first,
	)
	return patches, nil
}

// withProps clones a component description with new props, keeping
// identity intact.
func withProps(d *desc.Desc, props map[string]any) *desc.Desc {
	nd := *d
	nd.Props = props
	return &nd
}

// diffNode dispatches on the node kind. Callers have already established
// compatibility; incompatible pairs are replaced wholesale at the child
// list level and never reach here.
func (e *Engine) diffNode(node *tree.Node, nd *desc.Desc, patches *[]patch.Patch) error {
	if e.cfg.Debug && !node.Desc.Verify() {
		return errors.New("E021").WithDetail("node %s", node)
	}

	switch node.Kind {
	case desc.KindComponent:
		if node.Root {
			return e.diffRoot(node, nd, patches)
		}
		return e.diffComponent(node, nd, patches)
	case desc.KindElement:
		return e.diffElement(node, nd, patches)
	case desc.KindComment, desc.KindText:
		// Compatible comments and texts are identical by identity key.
		return nil
	default:
		return errors.New("E001").WithDetail("node kind %d against description kind %d", node.Kind, nd.Kind)
	}
}

// diffComponent re-renders a component unless its stored description
// already deep-equals the new one, then reconciles its single content
// child and records the description swap.
func (e *Engine) diffComponent(node *tree.Node, nd *desc.Desc, patches *[]patch.Patch) error {
	if node.Initialized && node.Desc.Equal(nd) {
		// Memoized: render is not invoked again this pass.
		return nil
	}

	if node.Comp == nil {
		comp, err := e.cfg.Resolve(nd.Component)
		if err != nil {
			return err
		}
		node.Comp = comp
	}

	inner, err := e.render(node, nd)
	if err != nil {
		return err
	}

	switch {
	case !node.Initialized && node.Content == nil:
		// First render of this component; the subtree is materialized by
		// the patch that introduces it.
		if inner != nil {
			content, err := e.build(inner)
			if err != nil {
				return err
			}
			node.SetContent(content)
		}

	case node.Content == nil && inner != nil:
		return errors.New("E002").WithDetail("component %q", nd.Component)

	case node.Content != nil && inner == nil:
		return errors.New("E003").WithDetail("component %q", nd.Component)

	case node.Content == nil && inner == nil:
		// Stable contentless component.

	case node.Content.Desc.Compatible(inner):
		if err := e.diffNode(node.Content, inner, patches); err != nil {
			return err
		}

	default:
		repl, err := e.build(inner)
		if err != nil {
			return err
		}
		*patches = append(*patches, patch.Patch{
			Op:    patch.OpSetContent,
			Node:  node,
			Old:   node.Content,
			Child: repl,
		})
	}

	*patches = append(*patches, patch.Patch{
		Op:      patch.OpUpdateNode,
		Node:    node,
		OldDesc: node.Desc,
		Desc:    nd,
	})
	return nil
}

// diffRoot handles a child that is itself a tree boundary: its hosted
// children are diffed directly, bypassing component memoization, then
// state propagation is delegated to the root's own update entry point.
func (e *Engine) diffRoot(node *tree.Node, nd *desc.Desc, patches *[]patch.Patch) error {
	if len(node.Children) > 0 || len(nd.Children) > 0 {
		if err := e.diffChildren(node, nd, patches); err != nil {
			return err
		}
	}

	if node.Dispatcher != nil {
		if err := node.Dispatcher.Update(nd.Props); err != nil {
			return err
		}
	}

	*patches = append(*patches, patch.Patch{
		Op:      patch.OpUpdateNode,
		Node:    node,
		OldDesc: node.Desc,
		Desc:    nd,
	})
	return nil
}

// render invokes the component's render function with an explicit render
// context and normalizes the result.
func (e *Engine) render(node *tree.Node, nd *desc.Desc) (*desc.Desc, error) {
	rc := desc.RenderContext{
		Props:    nd.Props,
		Children: nd.Children,
		Dispatch: e.cfg.Dispatch,
	}
	out := node.Comp.Render(rc)
	inner := e.cfg.Describe(out)
	if e.cfg.Debug && inner != nil {
		inner.Freeze()
	}
	return inner, nil
}
