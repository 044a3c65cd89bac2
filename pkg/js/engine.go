package js

import (
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"stickyfill/pkg/frame"
	"stickyfill/pkg/html"
	"stickyfill/pkg/layout"
	"stickyfill/pkg/scroll"
	"stickyfill/pkg/sticky"
)

// Geometry answers the layout queries element proxies expose.
type Geometry interface {
	BoundingRect(node *html.Node) layout.ClientRect
	ScrollHeight(container *html.Node) float64
	ViewportHeight(container *html.Node) float64
}

// Engine executes JavaScript against an HTML document's DOM.
type Engine struct {
	vm       *goja.Runtime
	logger   *zap.Logger
	registry *sticky.Registry
	scrolls  *scroll.Manager
	geometry Geometry
	frames   *frame.Scheduler
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSticky exposes reg to scripts as the global `sticky`.
func WithSticky(reg *sticky.Registry) Option {
	return func(e *Engine) { e.registry = reg }
}

// WithScroll backs element.scrollTop with m.
func WithScroll(m *scroll.Manager) Option {
	return func(e *Engine) { e.scrolls = m }
}

func WithGeometry(g Geometry) Option {
	return func(e *Engine) { e.geometry = g }
}

// WithFrames backs requestAnimationFrame with s.
func WithFrames(s *frame.Scheduler) Option {
	return func(e *Engine) { e.frames = s }
}

// New creates a new JS engine with a fresh goja runtime.
func New(opts ...Option) *Engine {
	e := &Engine{vm: goja.New()}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.scrolls == nil {
		e.scrolls = scroll.NewManager(nil)
	}
	if e.frames == nil {
		e.frames = frame.NewScheduler()
	}

	c := &consoleAPI{logger: e.logger.Named("console")}
	c.register(e.vm)
	e.registerAnimationFrames()
	return e
}

// Execute runs all scripts from the document against the DOM.
// Scripts are executed in order. Any JS errors are returned but
// callers may choose to log and continue rather than fail.
func (e *Engine) Execute(doc *html.Document) error {
	ctx := registerDocument(e, doc)
	if e.registry != nil {
		registerSticky(ctx, e.registry)
	}

	for i, script := range doc.Scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}

// throw raises err in the running script as a JS Error.
func (e *Engine) throw(err error) {
	obj, nerr := e.vm.New(e.vm.Get("Error"), e.vm.ToValue(err.Error()))
	if nerr != nil {
		panic(e.vm.NewGoError(err))
	}
	panic(obj)
}

func (e *Engine) registerAnimationFrames() {
	e.vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		cb, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(e.vm.NewTypeError("Failed to execute 'requestAnimationFrame': parameter 1 is not a function"))
		}
		id := e.frames.Request(func() {
			// 60 frames per second of virtual time
			ts := float64(e.frames.Frames()) * 1000 / 60
			if _, err := cb(goja.Undefined(), e.vm.ToValue(ts)); err != nil {
				e.logger.Warn("Animation frame callback failed", zap.Error(err))
			}
		})
		return e.vm.ToValue(id)
	})
	e.vm.Set("cancelAnimationFrame", func(call goja.FunctionCall) goja.Value {
		e.frames.Cancel(uint64(call.Argument(0).ToInteger()))
		return goja.Undefined()
	})
}
