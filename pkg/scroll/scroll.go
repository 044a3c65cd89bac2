package scroll

import (
	"sync"

	"stickyfill/pkg/html"
)

type listener struct {
	id int
	fn func()
}

// Controller holds the vertical scroll offset of one container and notifies
// its listeners whenever the offset changes.
type Controller struct {
	node      *html.Node
	offset    float64
	limit     func(*html.Node) float64
	listeners []listener
	nextID    int
}

// Node returns the container the controller scrolls.
func (c *Controller) Node() *html.Node {
	return c.node
}

// Offset returns the current scroll offset.
func (c *Controller) Offset() float64 {
	return c.offset
}

// AddListener registers a callback for scroll changes. The returned func
// removes it again and may be called more than once.
func (c *Controller) AddListener(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of registered callbacks.
func (c *Controller) Listeners() int {
	return len(c.listeners)
}

// ScrollTo moves to offset, clamped to [0, max]. Listeners run synchronously,
// in registration order, only when the offset actually changed.
func (c *Controller) ScrollTo(offset float64) {
	if c.limit != nil {
		if m := c.limit(c.node); offset > m {
			offset = m
		}
	}
	if offset < 0 {
		offset = 0
	}
	if offset == c.offset {
		return
	}
	c.offset = offset
	c.notifyListeners()
}

// ScrollBy moves the offset by delta.
func (c *Controller) ScrollBy(delta float64) {
	c.ScrollTo(c.offset + delta)
}

func (c *Controller) notifyListeners() {
	// listeners may remove themselves while running
	current := append([]listener(nil), c.listeners...)
	for _, l := range current {
		l.fn()
	}
}

// Manager owns the controllers of every scroll container of a document.
type Manager struct {
	mu          sync.Mutex
	controllers map[*html.Node]*Controller
	limit       func(*html.Node) float64
}

// NewManager creates a manager. limit, when not nil, returns the largest
// offset a container may scroll to.
func NewManager(limit func(*html.Node) float64) *Manager {
	return &Manager{
		controllers: make(map[*html.Node]*Controller),
		limit:       limit,
	}
}

// Controller returns the controller for node, creating it on first use.
func (m *Manager) Controller(node *html.Node) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[node]
	if !ok {
		c = &Controller{node: node, limit: m.limit}
		m.controllers[node] = c
	}
	return c
}

// ScrollTop returns the offset of node without creating a controller.
func (m *Manager) ScrollTop(node *html.Node) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[node]; ok {
		return c.offset
	}
	return 0
}

// Forget drops the controller of node.
func (m *Manager) Forget(node *html.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.controllers, node)
}
