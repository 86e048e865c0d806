// Package engine ties the description, diff, patch, lifecycle and dispatch
// layers together behind one context object.
//
// All shared mutable state lives here: the component registry, the
// render-function memo cache, and the debug flag. Nothing in the engine is
// ambient or global; construct one, mount trees on it, reset or drop it.
package engine

import (
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"sync"

	"github.com/retree-dev/retree/internal/errors"
	"github.com/retree-dev/retree/pkg/desc"
	"github.com/retree-dev/retree/pkg/diff"
	"github.com/retree-dev/retree/pkg/dispatch"
	"github.com/retree-dev/retree/pkg/el"
	"github.com/retree-dev/retree/pkg/host"
	"github.com/retree-dev/retree/pkg/tree"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDebug enables sibling-key uniqueness checks and description
// freezing. Off by default.
func WithDebug(debug bool) Option {
	return func(e *Engine) { e.debug = debug }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithScheduler sets the deferred-flush scheduler for all trees mounted on
// this engine. Defaults to inline execution.
func WithScheduler(s dispatch.Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithInterceptors installs update-cycle interceptors, outermost first.
func WithInterceptors(ins ...dispatch.Interceptor) Option {
	return func(e *Engine) { e.interceptors = append(e.interceptors, ins...) }
}

// Engine is the top-level context for a set of trees.
type Engine struct {
	mu           sync.RWMutex
	debug        bool
	logger       *slog.Logger
	scheduler    dispatch.Scheduler
	interceptors []dispatch.Interceptor

	components map[string]func() desc.Component
	funcNames  map[uintptr]string
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:     slog.Default(),
		scheduler:  dispatch.Immediate{},
		components: make(map[string]func() desc.Component),
		funcNames:  make(map[uintptr]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register binds a component type name to a factory. Each node of that
// type gets its own instance.
func (e *Engine) Register(name string, factory func() desc.Component) error {
	if name == "" || factory == nil {
		return errors.New("E031").WithDetail("component %q", name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.components[name] = factory
	return nil
}

// Func registers a bare render function as a stateless component and
// returns its type name. Registering the same function again returns the
// same name, so its nodes keep their identity across renders.
func (e *Engine) Func(fn func(rc desc.RenderContext) any) string {
	ptr := reflect.ValueOf(fn).Pointer()

	e.mu.Lock()
	defer e.mu.Unlock()
	if name, ok := e.funcNames[ptr]; ok {
		return name
	}
	name := runtime.FuncForPC(ptr).Name()
	e.funcNames[ptr] = name
	e.components[name] = func() desc.Component { return desc.RenderFunc(fn) }
	return name
}

// Resolve instantiates a component by type name.
func (e *Engine) Resolve(name string) (desc.Component, error) {
	e.mu.RLock()
	factory, ok := e.components[name]
	e.mu.RUnlock()
	if !ok {
		return nil, errors.New("E030").WithDetail("component %q", name)
	}
	return factory(), nil
}

// Reset clears the component registry and the render-function cache.
// Mounted trees keep their resolved instances; new mounts start from a
// clean registry.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.components = make(map[string]func() desc.Component)
	e.funcNames = make(map[uintptr]string)
}

// Plugin contributes a named bundle of components to the registry.
type Plugin interface {
	Name() string
	Components() map[string]func() desc.Component
}

// Use installs a plugin's components.
func (e *Engine) Use(p Plugin) error {
	if p == nil || p.Name() == "" {
		return errors.New("E031").WithDetail("unnamed plugin")
	}
	for name, factory := range p.Components() {
		if factory == nil {
			return errors.New("E031").WithDetail("plugin %q component %q", p.Name(), name)
		}
		if err := e.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}

// MountOption configures one mounted tree.
type MountOption func(*mountConfig)

type mountConfig struct {
	reducers map[string]dispatch.Reducer
	command  dispatch.CommandFunc
}

// WithReducers installs the reducer table mapping command names to state
// transitions.
func WithReducers(reducers map[string]dispatch.Reducer) MountOption {
	return func(c *mountConfig) { c.reducers = reducers }
}

// WithCommand installs a custom command API instead of the reducer table.
func WithCommand(fn dispatch.CommandFunc) MountOption {
	return func(c *mountConfig) { c.command = fn }
}

// Mount builds a tree for the given root description inside the container
// and runs its first update cycle. The description must be a component.
func (e *Engine) Mount(ctx context.Context, d *desc.Desc, adapter host.Adapter, container host.Handle, opts ...MountOption) (*Tree, error) {
	if d == nil || d.Kind != desc.KindComponent {
		return nil, errors.Newf(errors.CategoryContract, "mount target must be a component description")
	}
	var mc mountConfig
	for _, opt := range opts {
		opt(&mc)
	}

	rd := *d
	rd.Root = true
	node := tree.New(&rd)

	t := &Tree{engine: e, node: node}
	t.disp, t.differ = e.wire(node, adapter, mc)

	if err := t.disp.Mount(ctx, container); err != nil {
		return nil, err
	}
	e.logger.Info("tree mounted", "component", d.Component)
	return t, nil
}

// wire builds the diff engine and dispatcher pair for one tree boundary.
// Child boundaries discovered during builds get their own pair, bound to
// the same adapter and command configuration.
func (e *Engine) wire(n *tree.Node, adapter host.Adapter, mc mountConfig) (*dispatch.Dispatcher, *diff.Engine) {
	var disp *dispatch.Dispatcher

	differ := diff.New(diff.Config{
		Debug:    e.debug,
		Describe: el.Describe,
		Resolve:  e.Resolve,
		Dispatch: func(name string, args ...any) {
			if disp != nil {
				disp.Dispatch(name, args...)
			}
		},
		NewRootDispatcher: func(child *tree.Node) tree.Dispatcher {
			dd, _ := e.wire(child, adapter, mc)
			dd.Adopt(child.Desc.Props)
			return dd
		},
		Logger: e.logger,
	})

	disp = dispatch.New(n, dispatch.Config{
		Engine:       differ,
		Adapter:      adapter,
		Resolve:      e.Resolve,
		Reducers:     mc.reducers,
		Command:      mc.command,
		Scheduler:    e.scheduler,
		Interceptors: e.interceptors,
		Logger:       e.logger,
	})
	return disp, differ
}

// Tree is a mounted tree boundary.
type Tree struct {
	engine *Engine
	node   *tree.Node
	disp   *dispatch.Dispatcher
	differ *diff.Engine
}

// Node returns the live root node.
func (t *Tree) Node() *tree.Node { return t.node }

// State returns the tree's current state map, read-only.
func (t *Tree) State() map[string]any { return t.disp.State() }

// Dispatch issues a named command against the tree.
func (t *Tree) Dispatch(name string, args ...any) (*dispatch.Completion, error) {
	return t.disp.Dispatch(name, args...)
}

// Update pushes a whole next state, bypassing the command layer.
func (t *Tree) Update(next map[string]any) error {
	return t.disp.Update(next)
}

// SetFavored pins a reconciliation key so alignment prefers moving its
// siblings around it. Cleared with "".
func (t *Tree) SetFavored(key string) {
	t.differ.SetFavored(key)
}

// Unmount tears the tree down and removes it from its container.
func (t *Tree) Unmount() {
	t.disp.TearDown()
	t.engine.logger.Info("tree unmounted", "component", t.node.Desc.Component)
}
