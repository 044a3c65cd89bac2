package sticky

import (
	"errors"
	"testing"

	"stickyfill/pkg/css"
	"stickyfill/pkg/frame"
	"stickyfill/pkg/html"
	"stickyfill/pkg/layout"
	"stickyfill/pkg/scroll"
)

const sections = `<div id="c" style="height: 100px; overflow-y: auto">
	<h2 id="a" style="height: 50px">A</h2>
	<h2 id="b" style="height: 50px">B</h2>
	<h2 id="d" style="height: 50px">C</h2>
	<div style="height: 400px"></div>
</div>
<h2 id="loose">outside</h2>`

// headers separated by their sections' content
const gapped = `<div id="c" style="height: 100px; overflow-y: auto">
	<h2 id="a" style="height: 50px">A</h2>
	<div style="height: 150px"></div>
	<h2 id="b" style="height: 50px">B</h2>
	<div style="height: 150px"></div>
	<h2 id="x" style="height: 50px">X</h2>
	<div style="height: 400px"></div>
</div>`

type harness struct {
	t         *testing.T
	doc       *html.Document
	engine    *layout.Engine
	scrolls   *scroll.Manager
	frames    *frame.Scheduler
	reg       *Registry
	container *html.Node
}

func newHarness(t *testing.T, features css.Features, opts ...Option) *harness {
	t.Helper()
	return newHarnessFor(t, sections, features, opts...)
}

func newHarnessFor(t *testing.T, src string, features css.Features, opts ...Option) *harness {
	t.Helper()
	doc, err := html.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	engine := layout.NewEngine(400, 300)
	engine.Features = features
	scrolls := scroll.NewManager(engine.MaxScroll)
	engine.Scroll = scrolls
	frames := frame.NewScheduler()

	opts = append([]Option{
		WithCapability(NewCapability(features)),
		WithProbe(engine),
		WithScroll(scrolls),
		WithFrames(frames),
	}, opts...)
	return &harness{
		t:         t,
		doc:       doc,
		engine:    engine,
		scrolls:   scrolls,
		frames:    frames,
		reg:       NewRegistry(opts...),
		container: doc.Root.FindByID("c"),
	}
}

func (h *harness) node(id string) *html.Node {
	h.t.Helper()
	n := h.doc.Root.FindByID(id)
	if n == nil {
		h.t.Fatalf("no element #%s", id)
	}
	return n
}

func (h *harness) register(ids ...string) []Deregister {
	h.t.Helper()
	var out []Deregister
	for _, id := range ids {
		dereg, err := h.reg.Register(h.node(id))
		if err != nil {
			h.t.Fatalf("Register(%s): %v", id, err)
		}
		out = append(out, dereg)
	}
	return out
}

// scrollTo scrolls the container and runs one frame.
func (h *harness) scrollTo(y float64) GroupState {
	h.t.Helper()
	h.scrolls.Controller(h.container).ScrollTo(y)
	h.frames.Flush()
	return h.state()
}

func (h *harness) state() GroupState {
	h.t.Helper()
	s, ok := h.reg.Group(h.container)
	if !ok {
		h.t.Fatal("group missing")
	}
	return s
}

func (h *harness) markers() int {
	return len(h.doc.Root.ElementsWithAttribute(ActiveAttribute))
}

func attr(n *html.Node, name string) string {
	v, _ := n.GetAttribute(name)
	return v
}

func TestScrollingDownHandsOffToNext(t *testing.T) {
	h := newHarness(t, css.Features{})
	h.register("a", "b", "d")

	s := h.scrollTo(10)
	if s.Index != 0 || !s.Elements[0].Active || s.Elements[0].Offset != 0 {
		t.Fatalf("at 10: %+v", s)
	}
	want := map[float64]float64{20: -20, 30: -30, 40: -40, 50: -50}
	for _, y := range []float64{20, 30, 40, 50} {
		s = h.scrollTo(y)
		if got := s.Elements[0].Offset; got != want[y] {
			t.Errorf("at %v: offset = %v, want %v", y, got, want[y])
		}
	}

	s = h.scrollTo(60)
	a, b := s.Elements[0], s.Elements[1]
	if a.Active || a.Reserved != 0 {
		t.Errorf("A still active: %+v", a)
	}
	if s.Index != 1 || !b.Active || b.Reserved != 50 || b.Offset != 0 {
		t.Errorf("B = %+v, index %d; want active, 50 reserved, offset 0", b, s.Index)
	}

	bNode, aNode := h.node("b"), h.node("a")
	if got := attr(bNode, "style"); got != "height: 50px; transform: translate3d(0, 0px, 0)" {
		t.Errorf("B style = %q", got)
	}
	if got := attr(bNode, ActiveAttribute); got != "true" {
		t.Errorf("B marker = %q", got)
	}
	if got := attr(bNode.Parent, "style"); got != "height: 50px" {
		t.Errorf("B wrapper style = %q", got)
	}
	if got := attr(aNode, "style"); got != "height: 50px" {
		t.Errorf("A style = %q", got)
	}
	if aNode.HasAttribute(ActiveAttribute) || aNode.Parent.HasAttribute("style") {
		t.Error("A marker or reserved height left behind")
	}
	if top := h.engine.BoundingRect(bNode).Top; top != 0 {
		t.Errorf("B painted at %v, want 0", top)
	}

	s = h.scrollTo(70)
	if got := s.Elements[1].Offset; got != -20 {
		t.Errorf("at 70: B offset = %v, want -20", got)
	}
}

func TestReversingPullsBackToRest(t *testing.T) {
	h := newHarness(t, css.Features{})
	h.register("a", "b", "d")
	for y := 10.0; y <= 80; y += 10 {
		h.scrollTo(y)
	}
	s := h.state()
	if s.Index != 1 || s.Elements[1].Offset != -30 {
		t.Fatalf("at 80: %+v", s)
	}

	prev := -30.0
	for _, y := range []float64{70, 60, 50} {
		s = h.scrollTo(y)
		got := s.Elements[1].Offset
		if got < prev || got > 0 {
			t.Errorf("at %v: offset %v after %v", y, got, prev)
		}
		prev = got
	}
	if prev != 0 {
		t.Errorf("offset at 50 = %v, want 0", prev)
	}

	s = h.scrollTo(40)
	if s.Index != 0 || s.Elements[1].Active {
		t.Fatalf("at 40: %+v", s)
	}
	if a := s.Elements[0]; !a.Active || a.Offset != -50 || a.Reserved != 50 {
		t.Errorf("A = %+v, want active, translated by -50", a)
	}
	if top := h.engine.BoundingRect(h.node("a")).Top; top != -50 {
		t.Errorf("A painted at %v", top)
	}

	s = h.scrollTo(30)
	if a := s.Elements[0]; a.Offset != -30 {
		t.Errorf("at 30: A offset = %v, want -30", a.Offset)
	}
}

func TestInvariantsHoldOverSweeps(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		ids    []string
		bottom float64
	}{
		{"adjacent", sections, []string{"a", "b", "d"}, 450},
		{"gapped", gapped, []string{"a", "b", "x"}, 750},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarnessFor(t, tt.src, css.Features{})
			h.register(tt.ids...)

			check := func(y float64, s GroupState, prevIndex int, down bool) {
				t.Helper()
				if n := h.markers(); n > 1 {
					t.Fatalf("at %v: %d elements carry the marker", y, n)
				}
				for i, e := range s.Elements {
					if e.Offset > 0 {
						t.Fatalf("at %v: element %d offset %v", y, i, e.Offset)
					}
				}
				step := s.Index - prevIndex
				if down && (step < 0 || step > 1) || !down && (step > 0 || step < -1) {
					t.Fatalf("at %v: index jumped %d -> %d", y, prevIndex, s.Index)
				}
			}

			prev := h.state().Index
			for y := 7.0; y <= tt.bottom; y += 7 {
				s := h.scrollTo(y)
				check(y, s, prev, true)
				prev = s.Index
			}
			if prev != 2 {
				t.Errorf("index at bottom = %d, want 2", prev)
			}
			for y := 440.0; y >= 0; y -= 11 {
				s := h.scrollTo(y)
				check(y, s, prev, false)
				prev = s.Index
			}
			if prev != 0 {
				t.Errorf("index at top = %d, want 0", prev)
			}
		})
	}
}

func TestPinnedHeaderStaysBetweenHandoffs(t *testing.T) {
	h := newHarnessFor(t, gapped, css.Features{})
	h.register("a", "b", "x")
	for y := 10.0; y <= 140; y += 10 {
		if s := h.scrollTo(y); s.Active() != 0 || s.Elements[0].Offset != 0 {
			t.Fatalf("at %v: %+v", y, s)
		}
	}
	// B reaches A's bottom edge at 150 and pushes from there
	h.scrollTo(150)
	if s := h.scrollTo(160); s.Elements[0].Offset != -10 {
		t.Errorf("at 160: A offset = %v, want -10", s.Elements[0].Offset)
	}
	for y := 170.0; y <= 210; y += 10 {
		h.scrollTo(y)
	}
	if s := h.state(); s.Index != 1 || s.Active() != 1 || s.Elements[1].Offset != 0 {
		t.Errorf("at 210: %+v", s)
	}
}

func TestRegisterKeepsPinnedHeader(t *testing.T) {
	h := newHarnessFor(t, gapped, css.Features{})
	h.register("a", "b")
	for y := 10.0; y <= 100; y += 10 {
		h.scrollTo(y)
	}
	if s := h.state(); s.Index != 0 || s.Active() != 0 {
		t.Fatalf("at 100: %+v", s)
	}

	h.register("x")
	s := h.state()
	if s.Index != 0 || s.Active() != 0 || s.Elements[0].Reserved != 50 {
		t.Fatalf("after registering #x: %+v", s)
	}
	if h.markers() != 1 {
		t.Errorf("markers = %d", h.markers())
	}
	for y := 110.0; y <= 140; y += 10 {
		if s := h.scrollTo(y); s.Active() != 0 {
			t.Errorf("at %v: active = %d, want 0", y, s.Active())
		}
	}
}

func TestUnregisterKeepsPinnedHeader(t *testing.T) {
	h := newHarnessFor(t, gapped, css.Features{})
	deregs := h.register("a", "b", "x")
	for y := 10.0; y <= 100; y += 10 {
		h.scrollTo(y)
	}

	deregs[2]()
	if s := h.state(); s.Index != 0 || s.Active() != 0 || len(s.Elements) != 2 {
		t.Fatalf("after removing #x: %+v", s)
	}
	deregs[1]()
	if s := h.state(); s.Index != 0 || s.Active() != 0 {
		t.Fatalf("after removing #b: %+v", s)
	}
	if top := h.engine.BoundingRect(h.node("a")).Top; top != 0 {
		t.Errorf("A painted at %v, want 0", top)
	}
}

func TestRegisterWhileScrolledTargetsHeaderAbove(t *testing.T) {
	tests := []struct {
		at   float64
		want int
	}{
		{0, 0},
		{100, 0},
		{200, 1},
		{250, 1},
		{700, 2},
	}
	for _, tt := range tests {
		h := newHarnessFor(t, gapped, css.Features{})
		h.scrolls.Controller(h.container).ScrollTo(tt.at)
		h.register("a", "b", "x")
		if s := h.state(); s.Index != tt.want || h.markers() != 0 {
			t.Errorf("at %v: index = %d, markers = %d; want %d, 0", tt.at, s.Index, h.markers(), tt.want)
		}
	}

	h := newHarnessFor(t, gapped, css.Features{})
	h.scrolls.Controller(h.container).ScrollTo(100)
	h.register("a", "b")
	for y := 110.0; y <= 140; y += 10 {
		h.scrollTo(y)
	}
	if s := h.state(); s.Index != 0 || s.Active() != 0 || s.Elements[0].Offset != 0 {
		t.Errorf("at 140: %+v", s)
	}
}

func TestScanOrdersBySlotAndIsIdempotent(t *testing.T) {
	h := newHarness(t, css.Features{})
	h.scrolls.Controller(h.container).ScrollTo(60)
	h.register("d", "a", "b")

	s := h.state()
	order := []string{"a", "b", "d"}
	for i, id := range order {
		if s.Elements[i].Content != h.node(id) {
			t.Fatalf("element %d is %s, want #%s", i, s.Elements[i].Content.Describe(), id)
		}
	}
	if s.Index != 1 {
		t.Errorf("index = %d, want 1", s.Index)
	}

	g := h.reg.groups[h.container]
	scan(g, h.engine)
	again := g.state()
	for i := range order {
		if again.Elements[i].Content != s.Elements[i].Content {
			t.Errorf("second scan reordered element %d", i)
		}
	}
	if again.Index != s.Index {
		t.Errorf("second scan index = %d, want %d", again.Index, s.Index)
	}
}

func TestScanPicksLastWhenAllPassed(t *testing.T) {
	h := newHarness(t, css.Features{})
	h.scrolls.Controller(h.container).ScrollTo(300)
	h.register("a", "b", "d")
	if idx := h.state().Index; idx != 2 {
		t.Errorf("index = %d, want 2", idx)
	}
}

func TestFramesCoalesceScrollEvents(t *testing.T) {
	h := newHarness(t, css.Features{})
	h.register("a", "b", "d")
	ctrl := h.scrolls.Controller(h.container)
	for _, y := range []float64{3, 6, 10} {
		ctrl.ScrollTo(y)
	}
	if n := h.frames.Flush(); n != 1 {
		t.Fatalf("flush ran %d checks, want 1", n)
	}
	if s := h.state(); s.LastScroll != 10 || !s.Elements[0].Active {
		t.Errorf("state after frame: %+v", s)
	}
}

func TestDeregisterLastElementTearsDown(t *testing.T) {
	h := newHarness(t, css.Features{})
	a := h.node("a")
	dereg := h.register("a")[0]
	h.scrollTo(10)
	ctrl := h.scrolls.Controller(h.container)
	if ctrl.Listeners() != 1 || !h.state().Listening {
		t.Fatalf("listeners = %d, want 1", ctrl.Listeners())
	}

	// a check is still queued when the element goes away
	ctrl.ScrollTo(20)
	dereg()
	dereg()

	if _, ok := h.reg.Group(h.container); ok {
		t.Error("group should be removed")
	}
	if ctrl.Listeners() != 0 {
		t.Errorf("listeners = %d after teardown", ctrl.Listeners())
	}
	if a.Parent != h.container || a.IndexInParent() != 0 {
		t.Errorf("content not restored, parent = %s", a.Parent.Describe())
	}
	if a.HasAttribute(ActiveAttribute) || attr(a, "style") != "height: 50px" {
		t.Errorf("content keeps sticky styling: %q", attr(a, "style"))
	}

	if n := h.frames.Flush(); n != 1 {
		t.Errorf("stale check did not run, flush = %d", n)
	}
	if _, ok := h.reg.Group(h.container); ok {
		t.Error("stale check recreated the group")
	}
}

func TestDeregisterActiveElementRescans(t *testing.T) {
	h := newHarness(t, css.Features{})
	deregs := h.register("a", "b", "d")
	h.scrollTo(60)
	b := h.node("b")

	deregs[1]()
	s := h.state()
	if len(s.Elements) != 2 {
		t.Fatalf("elements = %d", len(s.Elements))
	}
	if b.HasAttribute(ActiveAttribute) || attr(b, "style") != "height: 50px" {
		t.Errorf("B keeps styling: %q", attr(b, "style"))
	}
	if h.markers() != 0 {
		t.Errorf("markers = %d", h.markers())
	}
	// the remaining elements are #a at -60 and #d at 40
	if s.Index != 0 {
		t.Errorf("index after rescan = %d, want 0", s.Index)
	}
}

func TestNativeCapability(t *testing.T) {
	features := css.Features{StickyValues: []string{"sticky"}}
	h := newHarness(t, features)
	h.register("a", "b")

	if m := h.reg.Mode(); !m.IsNative() || m.Value() != "sticky" {
		t.Fatalf("mode = %s", m)
	}
	for _, id := range []string{"a", "b"} {
		if got := attr(h.node(id).Parent, "style"); got != "position: sticky; top: 0px" {
			t.Errorf("%s wrapper style = %q", id, got)
		}
	}
	ctrl := h.scrolls.Controller(h.container)
	if ctrl.Listeners() != 0 || h.state().Listening {
		t.Error("native mode must not listen to scrolling")
	}

	h.scrollTo(30)
	if h.markers() != 0 || h.frames.Pending() {
		t.Error("fallback ran in native mode")
	}
	if top := h.engine.BoundingRect(h.node("a")).Top; top != 0 {
		t.Errorf("natively stuck top = %v, want 0", top)
	}
}

func TestCapabilityIsMemoized(t *testing.T) {
	c := NewCapability(css.Features{StickyValues: []string{"-webkit-sticky"}})
	if c.Detected() {
		t.Fatal("detected before first use")
	}
	probe := html.NewElement("div")
	if m := c.Mode(probe); m != Native("-webkit-sticky") {
		t.Fatalf("mode = %s", m)
	}
	if attr(probe, "style") != "position: -webkit-sticky; top: 0px" {
		t.Errorf("probe style = %q", attr(probe, "style"))
	}

	other := html.NewElement("div")
	c.Mode(other)
	if other.HasAttribute("style") {
		t.Error("second call probed again")
	}

	fixed := FixedCapability(Fallback)
	if fixed.Mode(probe).IsNative() || fixed.Detected() {
		t.Error("fixed capability should not probe")
	}
}

func TestDetectFallbackCleansProbe(t *testing.T) {
	probe := html.NewElement("div")
	probe.SetAttribute("style", "color: red")
	if m := Detect(probe, css.Features{}); m != Fallback {
		t.Fatalf("mode = %s", m)
	}
	if got := attr(probe, "style"); got != "color: red" {
		t.Errorf("probe style = %q", got)
	}
}

func TestRegisterErrors(t *testing.T) {
	h := newHarness(t, css.Features{})
	loose := h.node("loose")
	parent := loose.Parent

	_, err := h.reg.Register(loose)
	var cfg *ConfigurationError
	if !errors.As(err, &cfg) || !errors.Is(err, ErrNoScrollContainer) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if cfg.Element != "h2#loose" {
		t.Errorf("Element = %q", cfg.Element)
	}
	if loose.Parent != parent {
		t.Error("failed registration must not wrap")
	}

	if _, err := h.reg.Register(nil); !errors.Is(err, ErrInvalidElement) {
		t.Errorf("nil: err = %v", err)
	}
	if _, err := h.reg.Register(h.node("a").Children[0]); !errors.Is(err, ErrInvalidElement) {
		t.Errorf("text node: err = %v", err)
	}
	h.register("a")
	if _, err := h.reg.Register(h.node("a")); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("duplicate: err = %v", err)
	}
}

func TestContainerResolver(t *testing.T) {
	h := newHarness(t, css.Features{}, WithContainerResolver(func(*html.Node) *html.Node { return nil }))
	a := h.node("a")
	if _, err := h.reg.Register(a); !errors.Is(err, ErrNoScrollContainer) {
		t.Fatalf("err = %v, want ErrNoScrollContainer", err)
	}
	if a.Parent != h.container {
		t.Error("failed registration must not wrap")
	}

	var c *html.Node
	h = newHarness(t, css.Features{}, WithContainerResolver(func(*html.Node) *html.Node { return c }))
	c = h.container
	h.register("loose")
	if s := h.state(); len(s.Elements) != 1 || s.Elements[0].Content != h.node("loose") {
		t.Errorf("group = %+v", s)
	}
}

func TestCloseReportsBrokenWrappers(t *testing.T) {
	h := newHarness(t, css.Features{})
	h.register("a", "b")
	// move b out of its wrapper behind the registry's back
	b := h.node("b")
	h.container.AddChild(b)

	err := h.reg.Close()
	if err == nil {
		t.Fatal("expected an error for the moved element")
	}
	if len(h.reg.Containers()) != 0 {
		t.Error("groups left after Close")
	}
}

func TestBind(t *testing.T) {
	doc, err := html.Parse(`<div id="c" style="height: 100px; overflow: auto">
		<h2 sticky>one</h2><p>x</p><h2 sticky>two</h2></div>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	before := doc.Root.Serialize()
	reg := NewRegistry()
	unbind, err := Bind(doc, reg)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	c := doc.Root.FindByID("c")
	s, ok := reg.Group(c)
	if !ok || len(s.Elements) != 2 {
		t.Fatalf("group = %+v", s)
	}
	if got := len(doc.Root.ElementsByClassName(WrapperClass)); got != 2 {
		t.Errorf("wrappers = %d", got)
	}

	if err := unbind(); err != nil {
		t.Fatalf("unbind: %v", err)
	}
	if after := doc.Root.Serialize(); after != before {
		t.Errorf("document not restored:\n%s\n%s", before, after)
	}
}

func TestBindFailureUndoesEarlierRegistrations(t *testing.T) {
	doc, err := html.Parse(`<div id="c" style="overflow: auto"><h2 sticky>in</h2></div><h2 sticky>out</h2>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	reg := NewRegistry()
	if _, err := Bind(doc, reg); !errors.Is(err, ErrNoScrollContainer) {
		t.Fatalf("err = %v", err)
	}
	if len(reg.Containers()) != 0 {
		t.Error("earlier registration left behind")
	}
	if len(doc.Root.ElementsByClassName(WrapperClass)) != 0 {
		t.Error("wrapper left behind")
	}
}

type rects map[*html.Node]layout.ClientRect

func (r rects) BoundingRect(n *html.Node) layout.ClientRect { return r[n] }

func TestTickReleasesFirstElementComingBackIntoView(t *testing.T) {
	a := &Element{Content: html.NewElement("h2"), Wrapper: html.NewElement("div")}
	b := &Element{Content: html.NewElement("h2"), Wrapper: html.NewElement("div")}
	g := &Group{elements: []*Element{a, b}, index: 0, lastScroll: 20}
	a.activate(50)
	probe := rects{
		a.Content: {Top: 0, Bottom: 50, Height: 50},
		a.Wrapper: {Top: 5, Bottom: 55, Height: 50},
		b.Content: {Top: 55, Bottom: 105, Height: 50},
	}
	if got := tick(g, probe, 15); got != actionRelease {
		t.Fatalf("action = %s, want release", got)
	}
	if a.Active() || g.index != 0 || a.Content.HasAttribute(ActiveAttribute) {
		t.Errorf("first element still pinned")
	}
}

func TestTickOnEmptyGroupIsNoop(t *testing.T) {
	g := newGroup(html.NewElement("div"))
	if got := tick(g, rects{}, 10); got != actionNone {
		t.Errorf("action = %s", got)
	}
	if g.lastScroll != 0 {
		t.Error("stale tick must not touch state")
	}
}

func TestLastElementIsNeverPushed(t *testing.T) {
	a := &Element{Content: html.NewElement("h2"), Wrapper: html.NewElement("div")}
	g := &Group{elements: []*Element{a}, index: 0}
	probe := rects{
		a.Content: {Top: -10, Bottom: 40, Height: 50},
		a.Wrapper: {Top: -10, Bottom: 40, Height: 50},
	}
	if got := tick(g, probe, 10); got != actionActivate || a.Offset() != 0 {
		t.Fatalf("action = %s, offset %v", got, a.Offset())
	}
	probe[a.Content] = layout.ClientRect{Top: 0, Bottom: 50, Height: 50}
	if got := tick(g, probe, 30); got != actionNone || a.Offset() != 0 {
		t.Errorf("action = %s, offset %v", got, a.Offset())
	}
}
