package diff

import (
	"github.com/retree-dev/retree/internal/errors"
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/patch"
	"github.com/retree-dev/retree/pkg/reconcile"
	"github.com/retree-dev/retree/pkg/tree"
)

// simChild mirrors one slot of the child list as the emitted patches will
// leave it. Fresh entries were built this pass and need no further diff.
type simChild struct {
	node  *tree.Node
	fresh bool
}

// diffChildren aligns the live child list with the target descriptions.
// Keys drive the alignment; unkeyed children fall back to positional keys
// so plain lists pair index by index. After structural moves, surviving
// pairs are diffed in place or replaced when their identities diverge.
func (e *Engine) diffChildren(node *tree.Node, nd *desc.Desc, patches *[]patch.Patch) error {
	sourceKeys := childKeys(nodeDescs(node.Children))
	targetKeys := childKeys(nd.Children)

	if e.cfg.Debug {
		if dup := duplicateKey(sourceKeys); dup != "" {
			return errors.New("E020").WithDetail("key %q under %s", dup, node)
		}
		if dup := duplicateKey(targetKeys); dup != "" {
			return errors.New("E020").WithDetail("key %q under %s", dup, node)
		}
	}

	targetByKey := make(map[string]*desc.Desc, len(nd.Children))
	for i, child := range nd.Children {
		targetByKey[keyOf(child, i)] = child
	}

	sim := make([]simChild, len(node.Children))
	for i, child := range node.Children {
		sim[i] = simChild{node: child}
	}

	for _, mv := range reconcile.CalculateMoves(sourceKeys, targetKeys, e.favored) {
		switch mv.Op {
		case reconcile.OpRemove:
			*patches = append(*patches, patch.Patch{
				Op:     patch.OpRemoveChild,
				Parent: node,
				Old:    sim[mv.At].node,
				Index:  mv.At,
			})
			sim = append(sim[:mv.At], sim[mv.At+1:]...)

		case reconcile.OpInsert:
			child, err := e.build(targetByKey[mv.Key])
			if err != nil {
				return err
			}
			*patches = append(*patches, patch.Patch{
				Op:     patch.OpInsertChild,
				Parent: node,
				Child:  child,
				Index:  mv.At,
			})
			sim = append(sim, simChild{})
			copy(sim[mv.At+1:], sim[mv.At:])
			sim[mv.At] = simChild{node: child, fresh: true}

		case reconcile.OpMove:
			entry := sim[mv.From]
			*patches = append(*patches, patch.Patch{
				Op:     patch.OpMoveChild,
				Parent: node,
				Old:    entry.node,
				From:   mv.From,
				To:     mv.To,
			})
			sim = append(sim[:mv.From], sim[mv.From+1:]...)
			sim = append(sim, simChild{})
			copy(sim[mv.To+1:], sim[mv.To:])
			sim[mv.To] = entry
		}
	}

	// The lists are now key-aligned. Pair slots sharing a key may still
	// differ in identity, e.g. positional keys over different tags.
	for i, td := range nd.Children {
		entry := sim[i]
		if entry.fresh {
			continue
		}
		if entry.node.Desc.Compatible(td) {
			if err := e.diffNode(entry.node, td, patches); err != nil {
				return err
			}
			continue
		}
		repl, err := e.build(td)
		if err != nil {
			return err
		}
		*patches = append(*patches, patch.Patch{
			Op:     patch.OpReplaceChild,
			Parent: node,
			Old:    entry.node,
			Child:  repl,
			Index:  i,
		})
		sim[i] = simChild{node: repl, fresh: true}
	}

	return nil
}

func nodeDescs(children []*tree.Node) []*desc.Desc {
	ds := make([]*desc.Desc, len(children))
	for i, c := range children {
		ds[i] = c.Desc
	}
	return ds
}

func childKeys(children []*desc.Desc) []string {
	keys := make([]string, len(children))
	for i, c := range children {
		keys[i] = keyOf(c, i)
	}
	return keys
}

func keyOf(d *desc.Desc, index int) string {
	if d.Key != "" {
		return d.Key
	}
	return reconcile.PositionalKey(index)
}

func duplicateKey(keys []string) string {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return k
		}
		seen[k] = struct{}{}
	}
	return ""
}
