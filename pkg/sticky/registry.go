package sticky

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
	"stickyfill/pkg/layout"
	"stickyfill/pkg/scroll"
)

// Debouncer coalesces triggers into at most one call per frame.
type Debouncer interface {
	Debounce(fn func()) func()
}

// Deregister undoes one registration. Calling it again does nothing.
type Deregister func()

type Option func(*Registry)

func WithCapability(c *Capability) Option {
	return func(r *Registry) { r.capability = c }
}

func WithProbe(p Probe) Option {
	return func(r *Registry) { r.probe = p }
}

func WithScroll(m *scroll.Manager) Option {
	return func(r *Registry) { r.scrolls = m }
}

// WithFrames rate-limits scroll handling to the frames of d. Without it
// every scroll event is handled synchronously.
func WithFrames(d Debouncer) Option {
	return func(r *Registry) { r.frames = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithContainerResolver replaces the lookup of an element's scroll container.
func WithContainerResolver(fn func(*html.Node) *html.Node) Option {
	return func(r *Registry) { r.resolve = fn }
}

// Registry owns one Group per scroll container. It is not safe for
// concurrent use: registration, deregistration and frame callbacks are
// expected on one goroutine.
type Registry struct {
	capability *Capability
	probe      Probe
	scrolls    *scroll.Manager
	frames     Debouncer
	logger     *zap.Logger
	resolve    func(*html.Node) *html.Node

	groups   map[*html.Node]*Group
	elements map[*html.Node]*Element
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		groups:   make(map[*html.Node]*Group),
		elements: make(map[*html.Node]*Element),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.capability == nil {
		r.capability = NewCapability(css.Features{})
	}
	if r.scrolls == nil {
		r.scrolls = scroll.NewManager(nil)
	}
	if r.probe == nil {
		engine := layout.NewEngine(800, 600)
		engine.Scroll = r.scrolls
		r.probe = engine
	}
	if r.resolve == nil {
		if engine, ok := r.probe.(*layout.Engine); ok {
			r.resolve = engine.ScrollContainer
		} else {
			r.resolve = layout.NewEngine(0, 0).ScrollContainer
		}
	}
	return r
}

// Mode returns the capability mode, probing with a scratch element if no
// registration happened yet.
func (r *Registry) Mode() Mode {
	return r.capability.Mode(nil)
}

// Register wraps content in a slot element and adds it to the group of its
// scroll container.
func (r *Registry) Register(content *html.Node) (Deregister, error) {
	if !content.IsElement() {
		return nil, ErrInvalidElement
	}
	if _, ok := r.elements[content]; ok {
		return nil, fmt.Errorf("%s: %w", content.Describe(), ErrAlreadyRegistered)
	}
	container := r.resolve(content)
	if container == nil {
		return nil, &ConfigurationError{Element: content.Describe()}
	}

	wrapper := html.NewElement("div")
	wrapper.SetAttribute("class", WrapperClass)
	content.Wrap(wrapper)

	g, ok := r.groups[container]
	if !ok {
		g = newGroup(container)
		r.groups[container] = g
		r.logger.Debug("Sticky group created", zap.String("container", container.Describe()))
	}
	el := &Element{Content: content, Wrapper: wrapper, group: g}
	g.elements = append(g.elements, el)
	r.elements[content] = el

	mode := r.capability.Mode(wrapper)
	if mode.IsNative() {
		css.SetProperty(wrapper, "position", mode.Value())
		css.SetProperty(wrapper, "top", "0px")
	} else {
		if g.unsubscribe == nil {
			r.listen(g)
		}
		scan(g, r.probe)
	}
	r.logger.Debug("Sticky element registered",
		zap.String("element", content.Describe()),
		zap.Stringer("mode", mode),
		zap.Int("elements", len(g.elements)))

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := r.Unregister(content); err != nil {
				r.logger.Warn("Sticky deregistration failed", zap.Error(err))
			}
		})
	}, nil
}

func (r *Registry) listen(g *Group) {
	ctrl := r.scrolls.Controller(g.container)
	g.lastScroll = ctrl.Offset()
	container := g.container
	check := func() { r.Check(container) }
	if r.frames != nil {
		check = r.frames.Debounce(check)
	}
	g.unsubscribe = ctrl.AddListener(check)
}

// Unregister removes content from its group and restores it to where it was
// before registration.
func (r *Registry) Unregister(content *html.Node) error {
	el, ok := r.elements[content]
	if !ok {
		return fmt.Errorf("%s: %w", content.Describe(), ErrNotRegistered)
	}
	delete(r.elements, content)
	g := el.group
	if !g.remove(el) {
		return nil
	}
	if el.active {
		el.deactivate()
	}
	css.RemoveProperty(el.Wrapper, "position")
	css.RemoveProperty(el.Wrapper, "top")

	var err error
	if content.Parent != el.Wrapper || !content.Unwrap() {
		err = fmt.Errorf("%s: wrapper is no longer in the document", content.Describe())
	}

	if len(g.elements) > 0 {
		if !r.capability.Mode(nil).IsNative() {
			scan(g, r.probe)
		}
	} else {
		if g.unsubscribe != nil {
			g.unsubscribe()
			g.unsubscribe = nil
		}
		delete(r.groups, g.container)
		r.logger.Debug("Sticky group removed", zap.String("container", g.container.Describe()))
	}
	return err
}

// Check runs one positioning tick for the group of container. Checks for a
// container without elements do nothing.
func (r *Registry) Check(container *html.Node) {
	g, ok := r.groups[container]
	if !ok || len(g.elements) == 0 {
		r.logger.Debug("Stale sticky check ignored", zap.String("container", container.Describe()))
		return
	}
	from := g.index
	offset := r.scrolls.ScrollTop(container)
	switch a := tick(g, r.probe, offset); a {
	case actionHandoffDown, actionHandoffUp, actionRelease:
		r.logger.Debug("Sticky handoff",
			zap.Stringer("action", a),
			zap.Int("from", from),
			zap.Int("to", g.index),
			zap.Float64("scroll", offset))
	}
}

// Group returns a snapshot of the group of container.
func (r *Registry) Group(container *html.Node) (GroupState, bool) {
	g, ok := r.groups[container]
	if !ok {
		return GroupState{}, false
	}
	return g.state(), true
}

// Containers returns the containers that currently have a group, in
// document order.
func (r *Registry) Containers() []*html.Node {
	out := make([]*html.Node, 0, len(r.groups))
	seen := make(map[*html.Node]bool, len(r.groups))
	for c := range r.groups {
		if seen[c] {
			continue
		}
		c.Root().Walk(func(n *html.Node) bool {
			if _, ok := r.groups[n]; ok && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// Close deregisters every element.
func (r *Registry) Close() error {
	var err error
	for content := range r.elements {
		err = multierr.Append(err, r.Unregister(content))
	}
	return err
}
