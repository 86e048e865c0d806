// Package memhost is an in-memory render target. It backs the test suite
// and any headless embedding that wants to inspect the rendered tree or
// snapshot it as HTML.
package memhost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/host"
)

// NodeKind discriminates target node types.
type NodeKind uint8

const (
	KindElement NodeKind = iota
	KindText
	KindComment
)

// Node is one node in the in-memory target tree.
type Node struct {
	Kind      NodeKind
	Tag       string
	Text      string
	Class     string
	Attrs     map[string]string
	Dataset   map[string]string
	Styles    map[string]string
	Props     map[string]any
	Listeners map[string][]desc.Listener
	Children  []*Node
	Parent    *Node
}

// Adapter implements host.Adapter against an in-memory tree.
type Adapter struct {
	root *Node

	// Op log in call order, for assertions on adapter traffic.
	Ops []string
}

// New creates an adapter with an empty container root.
func New() *Adapter {
	return &Adapter{root: &Node{Kind: KindElement, Tag: "#root"}}
}

// Root returns the container handle new trees are mounted into.
func (a *Adapter) Root() host.Handle {
	return a.root
}

// RootNode returns the container node for direct inspection.
func (a *Adapter) RootNode() *Node {
	return a.root
}

func (a *Adapter) log(format string, args ...any) {
	a.Ops = append(a.Ops, fmt.Sprintf(format, args...))
}

func asNode(h host.Handle) *Node {
	n, ok := h.(*Node)
	if !ok {
		panic(fmt.Sprintf("memhost: foreign handle %T", h))
	}
	return n
}

// CreateElement implements host.Adapter.
func (a *Adapter) CreateElement(tag string) host.Handle {
	a.log("createElement(%s)", tag)
	return &Node{Kind: KindElement, Tag: tag}
}

// CreateText implements host.Adapter.
func (a *Adapter) CreateText(text string) host.Handle {
	a.log("createText(%q)", text)
	return &Node{Kind: KindText, Text: text}
}

// CreateComment implements host.Adapter.
func (a *Adapter) CreateComment(text string) host.Handle {
	a.log("createComment(%q)", text)
	return &Node{Kind: KindComment, Text: text}
}

// SetText implements host.Adapter.
func (a *Adapter) SetText(h host.Handle, text string) {
	a.log("setText(%q)", text)
	asNode(h).Text = text
}

// InsertChild implements host.Adapter.
func (a *Adapter) InsertChild(parent, child host.Handle, at int) {
	p, c := asNode(parent), asNode(child)
	a.log("insertChild(%s@%d)", c.label(), at)
	c.Parent = p
	if at >= len(p.Children) {
		p.Children = append(p.Children, c)
		return
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[at+1:], p.Children[at:])
	p.Children[at] = c
}

// RemoveChild implements host.Adapter.
func (a *Adapter) RemoveChild(parent, child host.Handle) {
	p, c := asNode(parent), asNode(child)
	a.log("removeChild(%s)", c.label())
	for i, n := range p.Children {
		if n == c {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			c.Parent = nil
			return
		}
	}
}

// MoveChild implements host.Adapter.
func (a *Adapter) MoveChild(parent, child host.Handle, to int) {
	p, c := asNode(parent), asNode(child)
	a.log("moveChild(%s->%d)", c.label(), to)
	from := -1
	for i, n := range p.Children {
		if n == c {
			from = i
			break
		}
	}
	if from < 0 {
		return
	}
	p.Children = append(p.Children[:from], p.Children[from+1:]...)
	if to >= len(p.Children) {
		p.Children = append(p.Children, c)
		return
	}
	p.Children = append(p.Children, nil)
	copy(p.Children[to+1:], p.Children[to:])
	p.Children[to] = c
}

// SetAttribute implements host.Adapter.
func (a *Adapter) SetAttribute(h host.Handle, name, value string) {
	a.log("setAttribute(%s=%q)", name, value)
	n := asNode(h)
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// RemoveAttribute implements host.Adapter.
func (a *Adapter) RemoveAttribute(h host.Handle, name string) {
	a.log("removeAttribute(%s)", name)
	delete(asNode(h).Attrs, name)
}

// SetDataAttribute implements host.Adapter.
func (a *Adapter) SetDataAttribute(h host.Handle, name, value string) {
	a.log("setData(%s=%q)", name, value)
	n := asNode(h)
	if n.Dataset == nil {
		n.Dataset = make(map[string]string)
	}
	n.Dataset[name] = value
}

// ClearDataAttribute implements host.Adapter.
func (a *Adapter) ClearDataAttribute(h host.Handle, name string) {
	a.log("clearData(%s)", name)
	delete(asNode(h).Dataset, name)
}

// SetStyleProperty implements host.Adapter.
func (a *Adapter) SetStyleProperty(h host.Handle, name, value string) {
	a.log("setStyle(%s=%q)", name, value)
	n := asNode(h)
	if n.Styles == nil {
		n.Styles = make(map[string]string)
	}
	n.Styles[name] = value
}

// RemoveStyleProperty implements host.Adapter.
func (a *Adapter) RemoveStyleProperty(h host.Handle, name string) {
	a.log("removeStyle(%s)", name)
	delete(asNode(h).Styles, name)
}

// SetClassName implements host.Adapter.
func (a *Adapter) SetClassName(h host.Handle, class string) {
	a.log("setClassName(%q)", class)
	asNode(h).Class = class
}

// AddListener implements host.Adapter.
func (a *Adapter) AddListener(h host.Handle, event string, l desc.Listener) {
	a.log("addListener(%s)", event)
	n := asNode(h)
	if n.Listeners == nil {
		n.Listeners = make(map[string][]desc.Listener)
	}
	n.Listeners[event] = append(n.Listeners[event], l)
}

// RemoveListener implements host.Adapter.
func (a *Adapter) RemoveListener(h host.Handle, event string, l desc.Listener) {
	a.log("removeListener(%s)", event)
	n := asNode(h)
	ls := n.Listeners[event]
	for i := range ls {
		if ls[i].SameSource(l) {
			n.Listeners[event] = append(ls[:i], ls[i+1:]...)
			return
		}
	}
}

// SetProperty implements host.Adapter.
func (a *Adapter) SetProperty(h host.Handle, name string, value any) {
	a.log("setProperty(%s)", name)
	n := asNode(h)
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[name] = value
}

// DeleteProperty implements host.Adapter.
func (a *Adapter) DeleteProperty(h host.Handle, name string) {
	a.log("deleteProperty(%s)", name)
	delete(asNode(h).Props, name)
}

// Fire invokes all listeners registered for event on the handle.
func (a *Adapter) Fire(h host.Handle, event string, payload any) {
	for _, l := range asNode(h).Listeners[event] {
		if l.Handler != nil {
			l.Handler(payload)
		}
	}
}

func (n *Node) label() string {
	switch n.Kind {
	case KindText:
		return "#text"
	case KindComment:
		return "#comment"
	default:
		return n.Tag
	}
}

// HTML renders the subtree as an HTML-ish snapshot string. Attribute and
// style ordering is sorted so snapshots are stable.
func (n *Node) HTML() string {
	var sb strings.Builder
	n.writeHTML(&sb)
	return sb.String()
}

func (n *Node) writeHTML(sb *strings.Builder) {
	switch n.Kind {
	case KindText:
		sb.WriteString(n.Text)
		return
	case KindComment:
		sb.WriteString("<!--")
		sb.WriteString(n.Text)
		sb.WriteString("-->")
		return
	}

	if n.Tag == "#root" {
		for _, c := range n.Children {
			c.writeHTML(sb)
		}
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	if n.Class != "" {
		fmt.Fprintf(sb, ` class=%q`, n.Class)
	}
	writeSortedAttrs(sb, "", n.Attrs)
	writeSortedAttrs(sb, "data-", n.Dataset)
	if len(n.Styles) > 0 {
		keys := sortedKeys(n.Styles)
		sb.WriteString(` style="`)
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(k)
			sb.WriteByte(':')
			sb.WriteString(n.Styles[k])
			sb.WriteByte(';')
		}
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	for _, c := range n.Children {
		c.writeHTML(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

func writeSortedAttrs(sb *strings.Builder, prefix string, m map[string]string) {
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(sb, ` %s%s=%q`, prefix, k, m[k])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
