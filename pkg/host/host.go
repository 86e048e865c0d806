package host

import "github.com/retree-dev/retree/pkg/desc"

// Handle is an opaque reference to one node in the render target.
type Handle any

// Adapter bridges patch application to a concrete render target. The core
// only supplies normalized keys and values; target-specific name
// translation (camelCase to kebab-case attributes, synthetic event name
// mapping) is the adapter's responsibility.
//
// Operations carry no return value and are applied in emission order; the
// core never re-applies an operation, so adapters may assume each call is
// consistent with the tree state produced by the calls before it.
type Adapter interface {
	CreateElement(tag string) Handle
	CreateText(text string) Handle
	CreateComment(text string) Handle

	// SetText rewrites a text or comment node in place. The diff never
	// emits it: text content is part of a node's identity, so content
	// changes are structural replacements. It exists for targets whose
	// protocol carries an in-place text write (see pkg/wire OpSetText)
	// and for direct adapter embeddings.
	SetText(h Handle, text string)

	InsertChild(parent, child Handle, at int)
	RemoveChild(parent, child Handle)
	MoveChild(parent, child Handle, to int)

	SetAttribute(h Handle, name, value string)
	RemoveAttribute(h Handle, name string)
	SetDataAttribute(h Handle, name, value string)
	ClearDataAttribute(h Handle, name string)
	SetStyleProperty(h Handle, name, value string)
	RemoveStyleProperty(h Handle, name string)
	SetClassName(h Handle, class string)
	AddListener(h Handle, event string, l desc.Listener)
	RemoveListener(h Handle, event string, l desc.Listener)
	SetProperty(h Handle, name string, value any)
	DeleteProperty(h Handle, name string)
}
