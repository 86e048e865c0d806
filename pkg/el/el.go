// Package el provides the declarative template builders. Builders produce
// normalized, internally consistent descriptions directly, so Describe is
// the identity for anything built here; it additionally accepts nil, false,
// and plain strings the way component render functions return them.
package el

import (
	"fmt"

	"github.com/retree-dev/retree/pkg/desc"
)

// E creates an element description. Args may be child templates (*desc.Desc,
// string, []*desc.Desc), option values from this package, or nil (skipped).
func E(tag string, args ...any) *desc.Desc {
	d := &desc.Desc{Kind: desc.KindElement, Tag: tag}
	for _, arg := range args {
		applyArg(d, arg)
	}
	return d
}

func applyArg(d *desc.Desc, arg any) {
	switch v := arg.(type) {
	case nil:
		// Conditional rendering produces nil holes; skip them.
	case *desc.Desc:
		if v != nil {
			d.Children = append(d.Children, v)
		}
	case []*desc.Desc:
		for _, c := range v {
			if c != nil {
				d.Children = append(d.Children, c)
			}
		}
	case string:
		d.Children = append(d.Children, Text(v))
	case option:
		v.apply(d)
	default:
		panic(fmt.Sprintf("el: unsupported template argument %T", arg))
	}
}

// Text creates a text description.
func Text(content string) *desc.Desc {
	return &desc.Desc{Kind: desc.KindText, Text: content}
}

// Textf creates a formatted text description.
func Textf(format string, args ...any) *desc.Desc {
	return Text(fmt.Sprintf(format, args...))
}

// Comment creates a comment description.
func Comment(text string) *desc.Desc {
	return &desc.Desc{Kind: desc.KindComment, Text: text}
}

// C creates a component description by registered type name.
func C(component string, args ...any) *desc.Desc {
	d := &desc.Desc{Kind: desc.KindComponent, Component: component}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case map[string]any:
			d.Props = v
		case *desc.Desc:
			d.Children = append(d.Children, v)
		case []*desc.Desc:
			for _, c := range v {
				if c != nil {
					d.Children = append(d.Children, c)
				}
			}
		case option:
			v.apply(d)
		default:
			panic(fmt.Sprintf("el: unsupported component argument %T", arg))
		}
	}
	return d
}

// Root creates a component description that is an independent tree boundary.
func Root(component string, args ...any) *desc.Desc {
	d := C(component, args...)
	d.Root = true
	return d
}

// Describe normalizes a render result into a description, or nil for an
// explicit absence (nil or false).
func Describe(template any) *desc.Desc {
	switch v := template.(type) {
	case nil:
		return nil
	case bool:
		// Render functions return false for "render nothing".
		return nil
	case *desc.Desc:
		return v
	case string:
		return Text(v)
	default:
		panic(fmt.Sprintf("el: unsupported template %T", template))
	}
}

// If returns the template if condition is true, nil otherwise.
func If(condition bool, d *desc.Desc) *desc.Desc {
	if condition {
		return d
	}
	return nil
}

// Range maps a slice to child descriptions, dropping nils.
func Range[T any](items []T, fn func(item T, index int) *desc.Desc) []*desc.Desc {
	result := make([]*desc.Desc, 0, len(items))
	for i, item := range items {
		if d := fn(item, i); d != nil {
			result = append(result, d)
		}
	}
	return result
}
