// Package tree holds the live, mutable mirror of the description tree.
// Nodes own their render-target handle and their children; descriptions
// stay immutable and are swapped wholesale on update.
package tree

import (
	"fmt"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/host"
)

// Dispatcher is the update entry point of a tree-boundary root. A root
// owns one and sequences its own lifecycle through it, which is why
// parent trees never fire hooks on root nodes directly.
type Dispatcher interface {
	// Update re-renders the root against the given props/state.
	Update(next map[string]any) error

	// TearDown switches the root to ignore mode and destroys its tree.
	TearDown()
}

// Node is one live node. It owns exactly one current description, a handle
// into the render target, and its children; the parent link is a back
// reference only.
type Node struct {
	Kind desc.Kind
	Desc *desc.Desc

	// Comp is the instantiated component (KindComponent only).
	Comp desc.Component

	// Initialized is set once the component has rendered content.
	Initialized bool

	// Handle is the render-target handle, attached on creation and
	// detached before destruction. Component nodes are transparent: their
	// effective handle is their content's.
	Handle host.Handle

	Parent   *Node
	Children []*Node

	// Content is a component's single materialized render output,
	// distinct from an element's children.
	Content *Node

	// Root marks an independently mounted tree boundary.
	Root       bool
	Dispatcher Dispatcher

	// Container is the render-target handle a mounted root's content
	// lives in (root nodes only).
	Container host.Handle
}

// New creates a node mirroring the given description. The component
// instance, handle, and children are filled in by the diff engine and
// patch application.
func New(d *desc.Desc) *Node {
	if d == nil {
		return nil
	}
	return &Node{Kind: d.Kind, Desc: d, Root: d.IsRoot()}
}

// AttachHandle records the render-target handle. Attach and Detach are
// symmetric and must never be skipped.
func (n *Node) AttachHandle(h host.Handle) {
	n.Handle = h
}

// DetachHandle clears the render-target handle before destruction.
func (n *Node) DetachHandle() {
	n.Handle = nil
}

// TargetHandle resolves the effective render-target handle, looking
// through component content since components have no handle of their own.
func (n *Node) TargetHandle() host.Handle {
	cur := n
	for cur != nil {
		if cur.Handle != nil {
			return cur.Handle
		}
		cur = cur.Content
	}
	return nil
}

// TargetNode resolves the node actually holding the effective handle.
func (n *Node) TargetNode() *Node {
	cur := n
	for cur != nil {
		if cur.Handle != nil {
			return cur
		}
		cur = cur.Content
	}
	return nil
}

// IndexOf returns the position of child, or -1 when the parent/child
// linkage is broken.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// InsertChild links child at position at.
func (n *Node) InsertChild(child *Node, at int) {
	child.Parent = n
	if at >= len(n.Children) {
		n.Children = append(n.Children, child)
		return
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[at+1:], n.Children[at:])
	n.Children[at] = child
}

// RemoveChildAt unlinks and returns the child at position at.
func (n *Node) RemoveChildAt(at int) *Node {
	if at < 0 || at >= len(n.Children) {
		return nil
	}
	child := n.Children[at]
	n.Children = append(n.Children[:at], n.Children[at+1:]...)
	child.Parent = nil
	return child
}

// ReplaceChildAt swaps in repl at position at, returning the displaced
// child.
func (n *Node) ReplaceChildAt(repl *Node, at int) *Node {
	if at < 0 || at >= len(n.Children) {
		return nil
	}
	old := n.Children[at]
	old.Parent = nil
	repl.Parent = n
	n.Children[at] = repl
	return old
}

// MoveChild relocates the child at from to position to.
func (n *Node) MoveChild(from, to int) {
	if from < 0 || from >= len(n.Children) {
		return
	}
	child := n.Children[from]
	n.Children = append(n.Children[:from], n.Children[from+1:]...)
	if to >= len(n.Children) {
		n.Children = append(n.Children, child)
		return
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[to+1:], n.Children[to:])
	n.Children[to] = child
}

// SetContent swaps the component's content child, returning the displaced
// one.
func (n *Node) SetContent(c *Node) *Node {
	old := n.Content
	if old != nil {
		old.Parent = nil
	}
	if c != nil {
		c.Parent = n
	}
	n.Content = c
	return old
}

// String returns a compact debug form.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case desc.KindComponent:
		return fmt.Sprintf("Component(%s)", n.Desc.Component)
	case desc.KindElement:
		return fmt.Sprintf("Element(%s)", n.Desc.Tag)
	case desc.KindComment:
		return "Comment"
	case desc.KindText:
		return fmt.Sprintf("Text(%q)", n.Desc.Text)
	default:
		return "Unknown"
	}
}
