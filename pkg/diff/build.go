package diff

import (
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/tree"
)

// build constructs a fresh node subtree from a description. Handles are
// not created here; that happens when a patch materializes the subtree
// against the host during the apply phase.
func (e *Engine) build(d *desc.Desc) (*tree.Node, error) {
	n := tree.New(d)

	switch d.Kind {
	case desc.KindComponent:
		comp, err := e.cfg.Resolve(d.Component)
		if err != nil {
			return nil, err
		}
		n.Comp = comp

		if n.Root && e.cfg.NewRootDispatcher != nil {
			n.Dispatcher = e.cfg.NewRootDispatcher(n)
		}

		inner, err := e.render(n, d)
		if err != nil {
			return nil, err
		}
		if inner != nil {
			content, err := e.build(inner)
			if err != nil {
				return nil, err
			}
			n.SetContent(content)
		}
		n.Initialized = true

	case desc.KindElement:
		for _, cd := range d.Children {
			child, err := e.build(cd)
			if err != nil {
				return nil, err
			}
			n.InsertChild(child, len(n.Children))
		}
	}

	return n, nil
}
