package desc

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind is the description type discriminator.
type Kind uint8

const (
	KindComponent Kind = iota // Application component
	KindElement               // Host element (<div>, <button>, ...)
	KindComment               // Comment node
	KindText                  // Plain text node
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "Component"
	case KindElement:
		return "Element"
	case KindComment:
		return "Comment"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Desc is the immutable, normalized description of one node to render.
// A Desc is produced once per render pass and never mutated afterward;
// in debug mode Freeze records a fingerprint so later mutation can be
// detected.
type Desc struct {
	Kind Kind
	Key  string // Explicit reconciliation key ("" for positional)

	// KindComponent
	Component string         // Registered component type name
	Props     map[string]any // Props passed to the render function
	Root      bool           // Component is an independent tree boundary

	// KindElement
	Tag             string
	Class           string
	Styles          map[string]string
	Attrs           map[string]string
	Dataset         map[string]string
	DirectProps     map[string]any      // Direct target properties
	Listeners       map[string]Listener // Event name -> listener
	CustomAttrs     map[string]string   // Pass-through host attributes
	CustomListeners map[string]Listener // Pass-through host listeners

	// KindComponent: parent-supplied children.
	// KindElement: child descriptions.
	Children []*Desc

	// KindComment / KindText
	Text string

	fingerprint uint64
	frozen      bool
}

// IdentityKey returns the identity under which a live node may be reused
// for this description. Same kind plus same identity key means compatible;
// payload differences are handled as in-place updates.
func (d *Desc) IdentityKey() string {
	switch d.Kind {
	case KindComponent:
		return "c:" + d.Component + "\x00" + d.Key
	case KindElement:
		return "e:" + d.Tag + "\x00" + d.Key
	case KindComment:
		return "#c:" + d.Text
	case KindText:
		return "#t:" + d.Text
	default:
		return "?"
	}
}

// Compatible reports whether a live node holding d can be updated in place
// to match o. This is the sole authority for node reuse.
func (d *Desc) Compatible(o *Desc) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Kind == o.Kind && d.IdentityKey() == o.IdentityKey()
}

// IsRoot reports whether d describes an independently mounted tree boundary.
func (d *Desc) IsRoot() bool {
	return d != nil && d.Kind == KindComponent && d.Root
}

// Template returns the declarative form of the description. Descriptions
// are their own normalized template, so composing parent-supplied children
// into a nested render passes them through unchanged.
func (d *Desc) Template() any {
	return d
}

// Equal reports deep payload equality. Listeners compare by their original
// source identity, never the bound wrapper.
func (d *Desc) Equal(o *Desc) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Kind != o.Kind || d.Key != o.Key {
		return false
	}
	switch d.Kind {
	case KindComponent:
		if d.Component != o.Component || d.Root != o.Root {
			return false
		}
		if !reflect.DeepEqual(d.Props, o.Props) {
			return false
		}
	case KindElement:
		if d.Tag != o.Tag || d.Class != o.Class {
			return false
		}
		if !stringMapsEqual(d.Styles, o.Styles) ||
			!stringMapsEqual(d.Attrs, o.Attrs) ||
			!stringMapsEqual(d.Dataset, o.Dataset) ||
			!stringMapsEqual(d.CustomAttrs, o.CustomAttrs) {
			return false
		}
		if !reflect.DeepEqual(d.DirectProps, o.DirectProps) {
			return false
		}
		if !listenerMapsEqual(d.Listeners, o.Listeners) ||
			!listenerMapsEqual(d.CustomListeners, o.CustomListeners) {
			return false
		}
	case KindComment, KindText:
		if d.Text != o.Text {
			return false
		}
	}
	if len(d.Children) != len(o.Children) {
		return false
	}
	for i := range d.Children {
		if !d.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

func stringMapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || av != bv {
			return false
		}
	}
	return true
}

func listenerMapsEqual(a, b map[string]Listener) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.SameSource(bv) {
			return false
		}
	}
	return true
}

// Freeze marks the description tree immutable and records a fingerprint.
// Debug builds call this after normalization; Verify detects mutation.
func (d *Desc) Freeze() {
	if d == nil || d.frozen {
		return
	}
	d.frozen = true
	for _, c := range d.Children {
		c.Freeze()
	}
	d.fingerprint = d.computeFingerprint()
}

// Frozen reports whether Freeze has been called on this description.
func (d *Desc) Frozen() bool {
	return d != nil && d.frozen
}

// Verify reports whether a frozen description still matches its recorded
// fingerprint. Unfrozen descriptions always verify.
func (d *Desc) Verify() bool {
	if d == nil || !d.frozen {
		return true
	}
	if d.fingerprint != d.computeFingerprint() {
		return false
	}
	for _, c := range d.Children {
		if !c.Verify() {
			return false
		}
	}
	return true
}

// computeFingerprint hashes the observable payload of this single node.
// Children are hashed separately by Verify so a mutation is reported on
// the node that actually changed.
func (d *Desc) computeFingerprint() uint64 {
	h := fnv.New64a()
	var sb strings.Builder
	sb.WriteString(d.IdentityKey())
	sb.WriteByte('|')
	sb.WriteString(d.Class)
	writeStringMap(&sb, d.Styles)
	writeStringMap(&sb, d.Attrs)
	writeStringMap(&sb, d.Dataset)
	writeStringMap(&sb, d.CustomAttrs)
	writeAnyMap(&sb, d.Props)
	writeAnyMap(&sb, d.DirectProps)
	writeListenerMap(&sb, d.Listeners)
	writeListenerMap(&sb, d.CustomListeners)
	sb.WriteString(strconv.Itoa(len(d.Children)))
	h.Write([]byte(sb.String()))
	return h.Sum64()
}

func writeStringMap(sb *strings.Builder, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(m[k])
		sb.WriteByte(';')
	}
	sb.WriteByte('|')
}

// writeListenerMap records event names with their source identities, so a
// post-freeze listener swap is caught even when the map size is unchanged.
func writeListenerMap(sb *strings.Builder, m map[string]Listener) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatUint(uint64(m[k].identity()), 16))
		sb.WriteByte(';')
	}
	sb.WriteByte('|')
}

func writeAnyMap(sb *strings.Builder, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		fmt.Fprintf(sb, "%v", m[k])
		sb.WriteByte(';')
	}
	sb.WriteByte('|')
}
