package diff

import (
	"reflect"
	"sort"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/patch"
	"github.com/retree-dev/retree/pkg/tree"
)

// diffElement emits per-concern patches for an element node: class, style,
// attributes, listeners, dataset, direct properties and custom attributes,
// then its children, then the description swap.
func (e *Engine) diffElement(node *tree.Node, nd *desc.Desc, patches *[]patch.Patch) error {
	cur := node.Desc
	if cur.Equal(nd) {
		return nil
	}

	if cur.Class != nd.Class {
		*patches = append(*patches, patch.Patch{
			Op:    patch.OpSetClassName,
			Node:  node,
			Value: nd.Class,
		})
	}

	diffStringMap(cur.Styles, nd.Styles, node, patches,
		patch.OpSetStyleProperty, patch.OpRemoveStyleProperty, false)
	diffStringMap(cur.Attrs, nd.Attrs, node, patches,
		patch.OpSetAttribute, patch.OpRemoveAttribute, false)
	e.diffListeners(cur.Listeners, nd.Listeners, node, patches, false)
	diffStringMap(cur.Dataset, nd.Dataset, node, patches,
		patch.OpSetDataAttribute, patch.OpRemoveDataAttribute, false)
	e.diffProps(cur.DirectProps, nd.DirectProps, node, patches)
	diffStringMap(cur.CustomAttrs, nd.CustomAttrs, node, patches,
		patch.OpSetAttribute, patch.OpRemoveAttribute, true)
	e.diffListeners(cur.CustomListeners, nd.CustomListeners, node, patches, true)

	if len(cur.Children) > 0 || len(nd.Children) > 0 {
		if err := e.diffChildren(node, nd, patches); err != nil {
			return err
		}
	}

	*patches = append(*patches, patch.Patch{
		Op:      patch.OpUpdateNode,
		Node:    node,
		OldDesc: cur,
		Desc:    nd,
	})
	return nil
}

// diffStringMap emits additions, then removals, then changes, each in
// sorted key order so patch streams are deterministic.
func diffStringMap(cur, next map[string]string, node *tree.Node, patches *[]patch.Patch, set, remove patch.Op, custom bool) {
	added, removed, changed := splitStringMaps(cur, next)
	for _, k := range added {
		*patches = append(*patches, patch.Patch{
			Op: set, Node: node, Key: k, Value: next[k], Custom: custom,
		})
	}
	for _, k := range removed {
		*patches = append(*patches, patch.Patch{
			Op: remove, Node: node, Key: k, Custom: custom,
		})
	}
	for _, k := range changed {
		*patches = append(*patches, patch.Patch{
			Op: set, Node: node, Key: k, Value: next[k], Custom: custom,
		})
	}
}

func splitStringMaps(cur, next map[string]string) (added, removed, changed []string) {
	for k, v := range next {
		old, ok := cur[k]
		switch {
		case !ok:
			added = append(added, k)
		case old != v:
			changed = append(changed, k)
		}
	}
	for k := range cur {
		if _, ok := next[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)
	return added, removed, changed
}

// diffListeners compares listeners by source identity. A new wrapper around
// the same source function is not a change; a different source replaces the
// registration in one patch.
func (e *Engine) diffListeners(cur, next map[string]desc.Listener, node *tree.Node, patches *[]patch.Patch, custom bool) {
	var added, removed, changed []string
	for k, l := range next {
		old, ok := cur[k]
		switch {
		case !ok:
			added = append(added, k)
		case !old.SameSource(l):
			changed = append(changed, k)
		}
	}
	for k := range cur {
		if _, ok := next[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)

	for _, k := range added {
		*patches = append(*patches, patch.Patch{
			Op: patch.OpAddListener, Node: node, Key: k, Listener: next[k], Custom: custom,
		})
	}
	for _, k := range removed {
		*patches = append(*patches, patch.Patch{
			Op: patch.OpRemoveListener, Node: node, Key: k, OldListener: cur[k], Custom: custom,
		})
	}
	for _, k := range changed {
		*patches = append(*patches, patch.Patch{
			Op: patch.OpReplaceListener, Node: node, Key: k,
			Listener: next[k], OldListener: cur[k], Custom: custom,
		})
	}
}

// diffProps handles direct host properties, which carry arbitrary values
// and whose removal deletes the property rather than clearing it.
func (e *Engine) diffProps(cur, next map[string]any, node *tree.Node, patches *[]patch.Patch) {
	var added, removed, changed []string
	for k, v := range next {
		old, ok := cur[k]
		switch {
		case !ok:
			added = append(added, k)
		case !reflect.DeepEqual(old, v):
			changed = append(changed, k)
		}
	}
	for k := range cur {
		if _, ok := next[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)

	for _, k := range added {
		*patches = append(*patches, patch.Patch{
			Op: patch.OpSetProperty, Node: node, Key: k, PropValue: next[k],
		})
	}
	for _, k := range removed {
		*patches = append(*patches, patch.Patch{
			Op: patch.OpDeleteProperty, Node: node, Key: k,
		})
	}
	for _, k := range changed {
		*patches = append(*patches, patch.Patch{
			Op: patch.OpSetProperty, Node: node, Key: k, PropValue: next[k],
		})
	}
}
