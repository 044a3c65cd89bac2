package layout

import (
	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
)

// PinnedAttribute marks content that the host stylesheet pins to the top of
// its scroll container viewport.
const PinnedAttribute = "sticky-active"

// Offsets supplies the current vertical scroll offset of a scroll container.
type Offsets interface {
	ScrollTop(node *html.Node) float64
}

// ClientRect is a box rectangle relative to the top of the viewport of the
// box's nearest scroll container.
type ClientRect struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
	Width  float64
	Height float64
}

type Box struct {
	Node    *html.Node
	Style   *css.Style
	X       float64 // Border box, document coordinates before scrolling
	Y       float64
	Width   float64
	Height  float64
	Margin  css.BoxEdge
	Padding css.BoxEdge
	Border  css.BoxEdge
	Parent  *Box

	Children []*Box
	Text     string // Set on line boxes only

	Pinned bool
	// Shift moves the box and its subtree visually without affecting flow:
	// transform translations plus the native sticky offset.
	Shift float64

	Scroller     bool
	ScrollTop    float64
	ScrollHeight float64 // Padding box extent of the in-flow content
}

type Engine struct {
	Width      float64
	Height     float64 // Viewport height of the document itself
	LineHeight float64
	Features   css.Features
	Scroll     Offsets
	Sheets     []*css.Stylesheet
}
