package patch

import (
	"github.com/retree-dev/retree/internal/errors"
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/host"
	"github.com/retree-dev/retree/pkg/tree"
)

// Op is the patch operation type.
type Op uint8

const (
	// Tree lifecycle
	OpInitRoot Op = iota
	OpUpdateNode
	OpInsertChild
	OpReplaceChild
	OpMoveChild
	OpRemoveChild
	OpSetContent

	// Attributes
	OpSetAttribute
	OpRemoveAttribute
	OpSetDataAttribute
	OpRemoveDataAttribute

	// Style
	OpSetStyleProperty
	OpRemoveStyleProperty
	OpSetClassName

	// Listeners
	OpAddListener
	OpReplaceListener
	OpRemoveListener

	// Direct properties
	OpSetProperty
	OpDeleteProperty
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpInitRoot:
		return "InitRoot"
	case OpUpdateNode:
		return "UpdateNode"
	case OpInsertChild:
		return "InsertChild"
	case OpReplaceChild:
		return "ReplaceChild"
	case OpMoveChild:
		return "MoveChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpSetContent:
		return "SetContent"
	case OpSetAttribute:
		return "SetAttribute"
	case OpRemoveAttribute:
		return "RemoveAttribute"
	case OpSetDataAttribute:
		return "SetDataAttribute"
	case OpRemoveDataAttribute:
		return "RemoveDataAttribute"
	case OpSetStyleProperty:
		return "SetStyleProperty"
	case OpRemoveStyleProperty:
		return "RemoveStyleProperty"
	case OpSetClassName:
		return "SetClassName"
	case OpAddListener:
		return "AddListener"
	case OpReplaceListener:
		return "ReplaceListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpSetProperty:
		return "SetProperty"
	case OpDeleteProperty:
		return "DeleteProperty"
	default:
		return "Unknown"
	}
}

// Patch is one atomic mutation derived from a diff pass. Patches reference
// nodes but do not own them; they are created during one pass, applied
// once in emission order, then discarded. Application is not idempotent.
type Patch struct {
	Op Op

	// Node is the patch target: the element for attribute/style/listener
	// ops, the component for UpdateNode/SetContent, the root for InitRoot.
	Node *tree.Node

	// Parent/Child/Old carry child-list ops. Child is the freshly built
	// subtree for InsertChild/ReplaceChild/SetContent; Old is the subtree
	// the patch displaces.
	Parent *tree.Node
	Child  *tree.Node
	Old    *tree.Node

	Index int // Insert/replace/remove position
	From  int // Move origin
	To    int // Move destination

	Key    string // Attribute/style/dataset/listener/property key
	Value  string // String value for attribute/style/dataset/class ops
	Custom bool   // Pass-through host attribute/listener

	PropValue any // Direct property value

	Listener    desc.Listener // New listener for Add/ReplaceListener
	OldListener desc.Listener // Previous listener for Replace/RemoveListener

	// Desc/OldDesc record the description swap for UpdateNode; the
	// lifecycle dispatcher reads them to fire props hooks.
	Desc    *desc.Desc
	OldDesc *desc.Desc

	// Container is the mount container for InitRoot.
	Container host.Handle
}

// Apply mutates exactly the nodes and render-target handles the patch
// names. Side effects on the render target are delegated to the adapter.
func (p *Patch) Apply(a host.Adapter) error {
	switch p.Op {
	case OpInitRoot:
		Materialize(a, p.Node)
		if h := p.Node.TargetHandle(); h != nil && p.Container != nil {
			a.InsertChild(p.Container, h, p.Index)
		}
		p.Node.Container = p.Container
		return nil

	case OpUpdateNode:
		p.Node.Desc = p.Desc
		if p.Node.Kind == desc.KindComponent {
			p.Node.Initialized = true
		}
		return nil

	case OpInsertChild:
		p.Parent.InsertChild(p.Child, p.Index)
		Materialize(a, p.Child)
		if h := p.Child.TargetHandle(); h != nil {
			a.InsertChild(p.Parent.TargetHandle(), h, targetIndexOf(p.Parent, p.Index))
		}
		return nil

	case OpReplaceChild:
		if p.Parent.IndexOf(p.Old) != p.Index {
			return errors.New("E004").WithDetail("replace-child at %d does not match the linked child", p.Index)
		}
		ph := p.Parent.TargetHandle()
		at := targetIndexOf(p.Parent, p.Index)
		if h := p.Old.TargetHandle(); h != nil {
			a.RemoveChild(ph, h)
		}
		Teardown(p.Old)
		p.Parent.ReplaceChildAt(p.Child, p.Index)
		Materialize(a, p.Child)
		if h := p.Child.TargetHandle(); h != nil {
			a.InsertChild(ph, h, at)
		}
		return nil

	case OpMoveChild:
		child := p.Old
		if p.Parent.IndexOf(child) != p.From {
			return errors.New("E004").WithDetail("move-child from %d does not match the linked child", p.From)
		}
		p.Parent.MoveChild(p.From, p.To)
		if h := child.TargetHandle(); h != nil {
			a.MoveChild(p.Parent.TargetHandle(), h, targetIndexOf(p.Parent, p.To))
		}
		return nil

	case OpRemoveChild:
		if p.Parent.IndexOf(p.Old) != p.Index {
			return errors.New("E004").WithDetail("remove-child at %d does not match the linked child", p.Index)
		}
		if h := p.Old.TargetHandle(); h != nil {
			a.RemoveChild(p.Parent.TargetHandle(), h)
		}
		Teardown(p.Old)
		p.Parent.RemoveChildAt(p.Index)
		return nil

	case OpSetContent:
		ph, at := hostPosition(p.Node)
		if old := p.Node.Content; old != nil {
			if h := old.TargetHandle(); h != nil && ph != nil {
				a.RemoveChild(ph, h)
			}
			Teardown(old)
		}
		p.Node.SetContent(p.Child)
		Materialize(a, p.Child)
		if h := p.Child.TargetHandle(); h != nil && ph != nil {
			a.InsertChild(ph, h, at)
		}
		return nil

	case OpSetAttribute:
		a.SetAttribute(p.Node.TargetHandle(), p.Key, p.Value)
		return nil
	case OpRemoveAttribute:
		a.RemoveAttribute(p.Node.TargetHandle(), p.Key)
		return nil
	case OpSetDataAttribute:
		a.SetDataAttribute(p.Node.TargetHandle(), p.Key, p.Value)
		return nil
	case OpRemoveDataAttribute:
		a.ClearDataAttribute(p.Node.TargetHandle(), p.Key)
		return nil
	case OpSetStyleProperty:
		a.SetStyleProperty(p.Node.TargetHandle(), p.Key, p.Value)
		return nil
	case OpRemoveStyleProperty:
		a.RemoveStyleProperty(p.Node.TargetHandle(), p.Key)
		return nil
	case OpSetClassName:
		a.SetClassName(p.Node.TargetHandle(), p.Value)
		return nil

	case OpAddListener:
		a.AddListener(p.Node.TargetHandle(), p.Key, p.Listener)
		return nil
	case OpReplaceListener:
		// The adapter contract has add/remove only; replace is the pair.
		a.RemoveListener(p.Node.TargetHandle(), p.Key, p.OldListener)
		a.AddListener(p.Node.TargetHandle(), p.Key, p.Listener)
		return nil
	case OpRemoveListener:
		a.RemoveListener(p.Node.TargetHandle(), p.Key, p.OldListener)
		return nil

	case OpSetProperty:
		a.SetProperty(p.Node.TargetHandle(), p.Key, p.PropValue)
		return nil
	case OpDeleteProperty:
		a.DeleteProperty(p.Node.TargetHandle(), p.Key)
		return nil

	default:
		return errors.New("E001").WithDetail("unknown patch op %d", p.Op)
	}
}

// ApplyAll applies patches strictly in emission order, stopping at the
// first error. Previously applied patches stay applied; there is no
// transactional rollback.
func ApplyAll(a host.Adapter, patches []Patch) error {
	for i := range patches {
		if err := patches[i].Apply(a); err != nil {
			return err
		}
	}
	return nil
}

// Materialize creates render-target handles for a freshly built subtree,
// attaching parent handles before children. Components are transparent:
// only their content materializes.
func Materialize(a host.Adapter, n *tree.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case desc.KindText:
		n.AttachHandle(a.CreateText(n.Desc.Text))

	case desc.KindComment:
		n.AttachHandle(a.CreateComment(n.Desc.Text))

	case desc.KindComponent:
		Materialize(a, n.Content)

	case desc.KindElement:
		h := a.CreateElement(n.Desc.Tag)
		n.AttachHandle(h)
		d := n.Desc
		if d.Class != "" {
			a.SetClassName(h, d.Class)
		}
		for _, k := range sortedStringKeys(d.Styles) {
			a.SetStyleProperty(h, k, d.Styles[k])
		}
		for _, k := range sortedStringKeys(d.Attrs) {
			a.SetAttribute(h, k, d.Attrs[k])
		}
		for _, k := range sortedStringKeys(d.CustomAttrs) {
			a.SetAttribute(h, k, d.CustomAttrs[k])
		}
		for _, k := range sortedStringKeys(d.Dataset) {
			a.SetDataAttribute(h, k, d.Dataset[k])
		}
		for _, k := range sortedAnyKeys(d.DirectProps) {
			a.SetProperty(h, k, d.DirectProps[k])
		}
		for _, k := range sortedListenerKeys(d.Listeners) {
			a.AddListener(h, k, d.Listeners[k])
		}
		for _, k := range sortedListenerKeys(d.CustomListeners) {
			a.AddListener(h, k, d.CustomListeners[k])
		}
		at := 0
		for _, c := range n.Children {
			Materialize(a, c)
			if ch := c.TargetHandle(); ch != nil {
				a.InsertChild(h, ch, at)
				at++
			}
		}
	}
}

// Teardown detaches render-target handles across a displaced subtree,
// children before parents, mirroring Materialize.
func Teardown(n *tree.Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		Teardown(c)
	}
	Teardown(n.Content)
	n.DetachHandle()
}

// contributes reports whether the node's subtree occupies a slot in its
// host parent. Components rendering nothing occupy none.
func contributes(n *tree.Node) bool {
	return n != nil && n.TargetHandle() != nil
}

// targetIndexOf translates a tree child index into a render-target child
// index by skipping contentless components before it.
func targetIndexOf(parent *tree.Node, at int) int {
	idx := 0
	for i := 0; i < at && i < len(parent.Children); i++ {
		if contributes(parent.Children[i]) {
			idx++
		}
	}
	return idx
}

// hostPosition resolves the handle and target index a component's content
// occupies, walking up through transparent component wrappers.
func hostPosition(n *tree.Node) (host.Handle, int) {
	cur := n
	for cur.Parent != nil && cur.Parent.Kind == desc.KindComponent {
		cur = cur.Parent
	}
	parent := cur.Parent
	if parent == nil {
		return cur.Container, 0
	}
	return parent.TargetHandle(), targetIndexOf(parent, parent.IndexOf(cur))
}
