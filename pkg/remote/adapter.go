// Package remote renders a tree onto a target on the far side of a
// connection. The adapter translates host operations into wire ops and
// buffers them; a session frames the buffer onto a websocket and routes
// target events back into the registered listeners.
package remote

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/host"
	"github.com/retree-dev/retree/pkg/wire"
)

// Node is the remote-side handle: just an id the target mirrors.
type Node struct {
	ID uint64
}

func (n *Node) String() string {
	return fmt.Sprintf("remote:%d", n.ID)
}

// Adapter implements host.Adapter by buffering wire ops. It is safe for
// use from one goroutine at a time; the session serializes event handling
// and flushing.
type Adapter struct {
	mu        sync.Mutex
	nextID    uint64
	ops       []wire.Op
	listeners map[uint64]map[string]desc.Listener
}

// New creates an adapter. Node id 0 is reserved for the target's mount
// container.
func New() *Adapter {
	return &Adapter{
		listeners: make(map[uint64]map[string]desc.Listener),
	}
}

// Container returns the handle of the target's mount container.
func (a *Adapter) Container() host.Handle {
	return &Node{ID: 0}
}

// Flush drains the buffered ops into a sequenced frame, or nil when
// nothing is pending.
func (a *Adapter) Flush(seq uint64) *wire.OpsFrame {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.ops) == 0 {
		return nil
	}
	ops := a.ops
	a.ops = nil
	return &wire.OpsFrame{Seq: seq, Ops: ops}
}

// HandleEvent routes a target event to the listener registered for the
// node and event name. Unknown nodes and names are dropped; the target
// may race a teardown.
func (a *Adapter) HandleEvent(f *wire.EventFrame) {
	a.mu.Lock()
	l, ok := a.listeners[f.Node][f.Name]
	a.mu.Unlock()
	if !ok || l.IsZero() {
		return
	}
	var payload any
	if len(f.Payload) > 0 {
		if err := json.Unmarshal(f.Payload, &payload); err != nil {
			payload = string(f.Payload)
		}
	}
	l.Handler(payload)
}

func (a *Adapter) push(op wire.Op) {
	a.mu.Lock()
	a.ops = append(a.ops, op)
	a.mu.Unlock()
}

func (a *Adapter) create(code wire.OpCode, value string) host.Handle {
	a.mu.Lock()
	a.nextID++
	n := &Node{ID: a.nextID}
	a.ops = append(a.ops, wire.Op{Op: code, Node: n.ID, Value: value})
	a.mu.Unlock()
	return n
}

func id(h host.Handle) uint64 {
	if h == nil {
		return 0
	}
	return h.(*Node).ID
}

func (a *Adapter) CreateElement(tag string) host.Handle {
	return a.create(wire.OpCreateElement, tag)
}

func (a *Adapter) CreateText(text string) host.Handle {
	return a.create(wire.OpCreateText, text)
}

func (a *Adapter) CreateComment(text string) host.Handle {
	return a.create(wire.OpCreateComment, text)
}

func (a *Adapter) SetText(h host.Handle, text string) {
	a.push(wire.Op{Op: wire.OpSetText, Node: id(h), Value: text})
}

func (a *Adapter) InsertChild(parent, child host.Handle, index int) {
	a.push(wire.Op{Op: wire.OpInsertChild, Node: id(child), Parent: id(parent), Index: index})
}

func (a *Adapter) RemoveChild(parent, child host.Handle) {
	a.push(wire.Op{Op: wire.OpRemoveChild, Node: id(child), Parent: id(parent)})
	a.mu.Lock()
	delete(a.listeners, id(child))
	a.mu.Unlock()
}

func (a *Adapter) MoveChild(parent, child host.Handle, to int) {
	a.push(wire.Op{Op: wire.OpMoveChild, Node: id(child), Parent: id(parent), To: to})
}

func (a *Adapter) SetAttribute(h host.Handle, name, value string) {
	a.push(wire.Op{Op: wire.OpSetAttribute, Node: id(h), Key: name, Value: value})
}

func (a *Adapter) RemoveAttribute(h host.Handle, name string) {
	a.push(wire.Op{Op: wire.OpRemoveAttr, Node: id(h), Key: name})
}

func (a *Adapter) SetDataAttribute(h host.Handle, name, value string) {
	a.push(wire.Op{Op: wire.OpSetData, Node: id(h), Key: name, Value: value})
}

func (a *Adapter) ClearDataAttribute(h host.Handle, name string) {
	a.push(wire.Op{Op: wire.OpClearData, Node: id(h), Key: name})
}

func (a *Adapter) SetStyleProperty(h host.Handle, name, value string) {
	a.push(wire.Op{Op: wire.OpSetStyle, Node: id(h), Key: name, Value: value})
}

func (a *Adapter) RemoveStyleProperty(h host.Handle, name string) {
	a.push(wire.Op{Op: wire.OpRemoveStyle, Node: id(h), Key: name})
}

func (a *Adapter) SetClassName(h host.Handle, class string) {
	a.push(wire.Op{Op: wire.OpSetClass, Node: id(h), Value: class})
}

func (a *Adapter) AddListener(h host.Handle, name string, l desc.Listener) {
	nid := id(h)
	a.mu.Lock()
	m := a.listeners[nid]
	if m == nil {
		m = make(map[string]desc.Listener)
		a.listeners[nid] = m
	}
	m[name] = l
	a.ops = append(a.ops, wire.Op{Op: wire.OpAddListener, Node: nid, Key: name})
	a.mu.Unlock()
}

func (a *Adapter) RemoveListener(h host.Handle, name string, l desc.Listener) {
	nid := id(h)
	a.mu.Lock()
	delete(a.listeners[nid], name)
	a.ops = append(a.ops, wire.Op{Op: wire.OpRemoveListen, Node: nid, Key: name})
	a.mu.Unlock()
}

func (a *Adapter) SetProperty(h host.Handle, name string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%q", fmt.Sprint(value)))
	}
	a.push(wire.Op{Op: wire.OpSetProperty, Node: id(h), Key: name, Value: string(encoded)})
}

func (a *Adapter) DeleteProperty(h host.Handle, name string) {
	a.push(wire.Op{Op: wire.OpDeleteProp, Node: id(h), Key: name})
}
