package el

import (
	"fmt"

	"github.com/retree-dev/retree/pkg/desc"
)

// option is an element modifier accepted by E and C.
type option interface {
	apply(*desc.Desc)
}

type classOption string

func (o classOption) apply(d *desc.Desc) { d.Class = string(o) }

// Class sets the element's class string.
func Class(class string) option { return classOption(class) }

type keyOption string

func (o keyOption) apply(d *desc.Desc) { d.Key = string(o) }

// Key sets the explicit reconciliation key.
func Key(key any) option { return keyOption(fmt.Sprintf("%v", key)) }

type styleOption struct{ name, value string }

func (o styleOption) apply(d *desc.Desc) {
	if d.Styles == nil {
		d.Styles = make(map[string]string)
	}
	d.Styles[o.name] = o.value
}

// Style sets one style property.
func Style(name, value string) option { return styleOption{name, value} }

type attrOption struct {
	name, value string
	custom      bool
}

func (o attrOption) apply(d *desc.Desc) {
	if o.custom {
		if d.CustomAttrs == nil {
			d.CustomAttrs = make(map[string]string)
		}
		d.CustomAttrs[o.name] = o.value
		return
	}
	if d.Attrs == nil {
		d.Attrs = make(map[string]string)
	}
	d.Attrs[o.name] = o.value
}

// Attr sets one attribute.
func Attr(name, value string) option { return attrOption{name: name, value: value} }

// CustomAttr sets one pass-through host attribute.
func CustomAttr(name, value string) option { return attrOption{name: name, value: value, custom: true} }

type dataOption struct{ name, value string }

func (o dataOption) apply(d *desc.Desc) {
	if d.Dataset == nil {
		d.Dataset = make(map[string]string)
	}
	d.Dataset[o.name] = o.value
}

// Data sets one data attribute.
func Data(name, value string) option { return dataOption{name, value} }

type propOption struct {
	name  string
	value any
}

func (o propOption) apply(d *desc.Desc) {
	if d.DirectProps == nil {
		d.DirectProps = make(map[string]any)
	}
	d.DirectProps[o.name] = o.value
}

// Prop sets one direct target property.
func Prop(name string, value any) option { return propOption{name, value} }

type listenerOption struct {
	event  string
	l      desc.Listener
	custom bool
}

func (o listenerOption) apply(d *desc.Desc) {
	if o.custom {
		if d.CustomListeners == nil {
			d.CustomListeners = make(map[string]desc.Listener)
		}
		d.CustomListeners[o.event] = o.l
		return
	}
	if d.Listeners == nil {
		d.Listeners = make(map[string]desc.Listener)
	}
	d.Listeners[o.event] = o.l
}

// On attaches an event listener.
func On(event string, fn func(event any)) option {
	return listenerOption{event: event, l: desc.On(fn)}
}

// OnBound attaches a listener whose identity is source but which invokes
// wrapper. Re-renders producing fresh wrappers around the same source
// compare as unchanged.
func OnBound(event string, source any, wrapper func(event any)) option {
	return listenerOption{event: event, l: desc.Bound(source, wrapper)}
}

// CustomOn attaches a pass-through host listener.
func CustomOn(event string, fn func(event any)) option {
	return listenerOption{event: event, l: desc.On(fn), custom: true}
}

// Common element shorthands.

func Div(args ...any) *desc.Desc    { return E("div", args...) }
func Span(args ...any) *desc.Desc   { return E("span", args...) }
func P(args ...any) *desc.Desc      { return E("p", args...) }
func Ul(args ...any) *desc.Desc     { return E("ul", args...) }
func Ol(args ...any) *desc.Desc     { return E("ol", args...) }
func Li(args ...any) *desc.Desc     { return E("li", args...) }
func Button(args ...any) *desc.Desc { return E("button", args...) }
func Input(args ...any) *desc.Desc  { return E("input", args...) }
func Label(args ...any) *desc.Desc  { return E("label", args...) }
func H1(args ...any) *desc.Desc     { return E("h1", args...) }
func H2(args ...any) *desc.Desc     { return E("h2", args...) }
func A(args ...any) *desc.Desc      { return E("a", args...) }
func Img(args ...any) *desc.Desc    { return E("img", args...) }
func Table(args ...any) *desc.Desc  { return E("table", args...) }
func Tr(args ...any) *desc.Desc     { return E("tr", args...) }
func Td(args ...any) *desc.Desc     { return E("td", args...) }
func Form(args ...any) *desc.Desc   { return E("form", args...) }
