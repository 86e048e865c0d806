// Package lifecycle fires component hooks around patch application.
//
// The Before pass walks the patch list in order and notifies components
// top-down that they are about to be created, destroyed, or receive new
// props. The After pass walks the list in reverse and notifies bottom-up
// that nodes are attached, detached, or updated. Hooks fire only on
// component nodes that are not tree boundaries; boundary nodes are mounted
// and destroyed independently by their own dispatcher.
package lifecycle

import (
	"reflect"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/patch"
	"github.com/retree-dev/retree/pkg/tree"
)

// Before fires pre-application hooks for the patch list, in patch order.
func Before(patches []patch.Patch) {
	for i := range patches {
		p := &patches[i]
		switch p.Op {
		case patch.OpInitRoot:
			created(p.Node)
		case patch.OpInsertChild:
			created(p.Child)
		case patch.OpRemoveChild:
			destroyed(p.Old)
		case patch.OpReplaceChild, patch.OpSetContent:
			destroyed(p.Old)
			created(p.Child)
		case patch.OpUpdateNode:
			propsReceived(p)
		}
	}
}

// After fires post-application hooks in reverse patch order, so the
// deepest structural changes settle before their ancestors hear about it.
func After(patches []patch.Patch) {
	for i := len(patches) - 1; i >= 0; i-- {
		p := &patches[i]
		switch p.Op {
		case patch.OpInitRoot:
			attached(p.Node)
		case patch.OpInsertChild:
			attached(p.Child)
		case patch.OpRemoveChild:
			detached(p.Old)
		case patch.OpReplaceChild, patch.OpSetContent:
			// The replacement settles before the displaced subtree is told
			// it left the target.
			attached(p.Child)
			detached(p.Old)
		case patch.OpUpdateNode:
			updated(p)
		}
	}
}

// Destroy fires the destruction hooks for a whole subtree, top-down. Used
// when a tree is torn down outside a diff cycle.
func Destroy(n *tree.Node) {
	destroyed(n)
}

// Detach fires the detachment hooks for a whole subtree, bottom-up.
func Detach(n *tree.Node) {
	detached(n)
}

func propsReceived(p *patch.Patch) {
	n := p.Node
	if n.Kind != desc.KindComponent || n.Root || !n.Initialized {
		return
	}
	if p.OldDesc != nil && reflect.DeepEqual(p.OldDesc.Props, p.Desc.Props) {
		return
	}
	if h, ok := n.Comp.(desc.PropsReceiver); ok {
		h.OnPropsReceived(p.Desc.Props)
	}
}

func updated(p *patch.Patch) {
	n := p.Node
	if n.Kind != desc.KindComponent || n.Root || p.OldDesc == nil {
		return
	}
	if h, ok := n.Comp.(desc.Updated); ok {
		var prev map[string]any
		if p.OldDesc != nil {
			prev = p.OldDesc.Props
		}
		h.OnUpdated(prev)
	}
}

// created walks the subtree pre-order: the node first, then its content,
// then its children.
func created(n *tree.Node) {
	if n == nil {
		return
	}
	if n.Kind == desc.KindComponent && !n.Root {
		if h, ok := n.Comp.(desc.Created); ok {
			h.OnCreated()
		}
	}
	created(n.Content)
	for _, c := range n.Children {
		created(c)
	}
}

func destroyed(n *tree.Node) {
	if n == nil {
		return
	}
	if n.Kind == desc.KindComponent && !n.Root {
		if h, ok := n.Comp.(desc.Destroyed); ok {
			h.OnDestroyed()
		}
	}
	destroyed(n.Content)
	for _, c := range n.Children {
		destroyed(c)
	}
}

// attached mirrors created exactly: children in reverse, then content,
// then the node itself.
func attached(n *tree.Node) {
	if n == nil {
		return
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		attached(n.Children[i])
	}
	attached(n.Content)
	if n.Kind == desc.KindComponent && !n.Root {
		if h, ok := n.Comp.(desc.Attached); ok {
			h.OnAttached()
		}
	}
}

func detached(n *tree.Node) {
	if n == nil {
		return
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		detached(n.Children[i])
	}
	detached(n.Content)
	if n.Kind == desc.KindComponent && !n.Root {
		if h, ok := n.Comp.(desc.Detached); ok {
			h.OnDetached()
		}
	}
}
