package resource

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stickyfill/pkg/css"
	"stickyfill/pkg/frame"
	"stickyfill/pkg/html"
	"stickyfill/pkg/js"
	"stickyfill/pkg/layout"
	"stickyfill/pkg/render"
	"stickyfill/pkg/scroll"
	"stickyfill/pkg/sticky"
)

var ErrNoContainer = errors.New("document has no sticky container")

// Options describe the platform a page is opened on.
type Options struct {
	Width      float64
	Height     float64
	LineHeight float64
	Features   css.Features
	Logger     *zap.Logger
}

// Page is a loaded document with its sticky elements bound: layout, scroll
// state, frame clock, registry and script engine all share one document.
type Page struct {
	Doc      *html.Document
	Layout   *layout.Engine
	Scrolls  *scroll.Manager
	Frames   *frame.Scheduler
	Registry *sticky.Registry
	Script   *js.Engine

	logger *zap.Logger
	unbind func() error
}

// Load fetches uri and opens it as a page.
func Load(ctx context.Context, f Fetcher, uri string, opts Options) (*Page, error) {
	body, contentType, err := f.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := checkHTML(contentType); err != nil {
		return nil, err
	}
	return Open(string(body), opts)
}

// Open parses src, binds every element carrying the sticky attribute, runs
// the page scripts and flushes one frame so the page starts settled. Script
// errors are logged and do not fail the page.
func Open(src string, opts Options) (*Page, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := html.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	engine := layout.NewEngine(opts.Width, opts.Height)
	if opts.LineHeight > 0 {
		engine.LineHeight = opts.LineHeight
	}
	engine.Features = opts.Features
	engine.Attach(doc)

	scrolls := scroll.NewManager(engine.MaxScroll)
	engine.Scroll = scrolls
	frames := frame.NewScheduler()
	reg := sticky.NewRegistry(
		sticky.WithCapability(sticky.NewCapability(opts.Features)),
		sticky.WithProbe(engine),
		sticky.WithScroll(scrolls),
		sticky.WithFrames(frames),
		sticky.WithLogger(logger.Named("sticky")),
	)

	unbind, err := sticky.Bind(doc, reg)
	if err != nil {
		return nil, err
	}
	p := &Page{
		Doc:      doc,
		Layout:   engine,
		Scrolls:  scrolls,
		Frames:   frames,
		Registry: reg,
		logger:   logger,
		unbind:   unbind,
	}
	p.Script = js.New(
		js.WithLogger(logger.Named("js")),
		js.WithSticky(reg),
		js.WithScroll(scrolls),
		js.WithGeometry(engine),
		js.WithFrames(frames),
	)
	if len(doc.Scripts) > 0 {
		if err := p.Script.Execute(doc); err != nil {
			logger.Warn("Page script failed", zap.Error(err))
		}
	}
	frames.Flush()

	logger.Debug("Page opened",
		zap.Int("containers", len(reg.Containers())),
		zap.Stringer("mode", reg.Mode()))
	return p, nil
}

// Container returns the element with the given id, or the first container
// with sticky elements when id is empty.
func (p *Page) Container(id string) (*html.Node, error) {
	if id != "" {
		if node := p.Doc.Root.FindByID(id); node != nil {
			return node, nil
		}
		return nil, fmt.Errorf("no element with id %q", id)
	}
	containers := p.Registry.Containers()
	if len(containers) == 0 {
		return nil, ErrNoContainer
	}
	return containers[0], nil
}

// ScrollTo scrolls container and runs one frame. It returns the number of
// frame callbacks that ran.
func (p *Page) ScrollTo(container *html.Node, offset float64) int {
	p.Scrolls.Controller(container).ScrollTo(offset)
	return p.Frames.Flush()
}

func (p *Page) Offset(container *html.Node) float64 {
	return p.Scrolls.ScrollTop(container)
}

func (p *Page) MaxScroll(container *html.Node) float64 {
	return p.Layout.MaxScroll(container)
}

func (p *Page) State(container *html.Node) (sticky.GroupState, bool) {
	return p.Registry.Group(container)
}

// Render paints the current state of the page.
func (p *Page) Render(r *render.Renderer) {
	r.Render(p.Layout.Boxes(p.Doc))
}

// Close deregisters every sticky element, including those registered by
// scripts.
func (p *Page) Close() error {
	var err error
	if p.unbind != nil {
		err = multierr.Append(err, p.unbind())
		p.unbind = nil
	}
	return multierr.Append(err, p.Registry.Close())
}
