package render

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"stickyfill/pkg/css"
	"stickyfill/pkg/layout"
)

const scrollbarWidth = 4.0

var (
	black          = css.Color{A: 1}
	scrollbarTrack = css.Color{R: 230, G: 230, B: 230, A: 1}
	scrollbarThumb = css.Color{R: 160, G: 160, B: 160, A: 1}
)

// Renderer paints laid out box trees onto an RGBA canvas.
type Renderer struct {
	context *gg.Context
	width   int
	height  int
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		context: gg.NewContext(width, height),
		width:   width,
		height:  height,
	}
}

// rect is a clip rectangle in canvas coordinates.
type rect struct {
	x0, y0, x1, y1 float64
}

func (c rect) intersect(o rect) rect {
	return rect{max(c.x0, o.x0), max(c.y0, o.y0), min(c.x1, o.x1), min(c.y1, o.y1)}
}

func (c rect) empty() bool {
	return c.x1 <= c.x0 || c.y1 <= c.y0
}

// Render clears the canvas and paints root and its descendants, each clipped
// to the viewports of the scroll containers it sits in. Scrollbars go on top.
func (r *Renderer) Render(root *layout.Box) {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	r.context.SetFontFace(basicfont.Face7x13)

	var scrollers []*layout.Box
	root.Walk(func(box *layout.Box) {
		r.drawBox(box)
		if box.Scroller && box.Parent != nil {
			scrollers = append(scrollers, box)
		}
	})
	for _, box := range scrollers {
		r.drawScrollbar(box)
	}
}

func (r *Renderer) canvas() rect {
	return rect{0, 0, float64(r.width), float64(r.height)}
}

// clipFor returns the visible area of box: the canvas narrowed by the
// viewport of every enclosing scroller.
func (r *Renderer) clipFor(box *layout.Box) rect {
	clip := r.canvas()
	for p := box.Parent; p != nil; p = p.Parent {
		if p.Scroller {
			clip = clip.intersect(r.viewport(p))
		}
	}
	return clip
}

func (r *Renderer) viewport(box *layout.Box) rect {
	top, h := box.Viewport(float64(r.height))
	return rect{box.X + box.Border.Left, top, box.X + box.Width - box.Border.Right, top + h}
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, c.A)
}

func (r *Renderer) fillRect(x, y, w, h float64, clip rect, c css.Color) {
	area := rect{x, y, x + w, y + h}.intersect(clip)
	if area.empty() || c.A <= 0 {
		return
	}
	r.setColor(c)
	r.context.DrawRectangle(area.x0, area.y0, area.x1-area.x0, area.y1-area.y0)
	r.context.Fill()
}

func (r *Renderer) drawBox(box *layout.Box) {
	clip := r.clipFor(box)
	if clip.empty() {
		return
	}
	y := box.VisualY()
	if box.Text != "" {
		r.drawText(box, y, clip)
		return
	}

	if bg, ok := box.Style.Get("background-color"); ok {
		if color, ok := css.ParseColor(bg); ok {
			r.fillRect(box.X, y, box.Width, box.Height, clip, color)
		}
	}
	r.drawBorder(box, y, clip)
}

// borderColor follows border-color, then color, then black.
func borderColor(style *css.Style) css.Color {
	for _, prop := range []string{"border-color", "color"} {
		if v, ok := style.Get(prop); ok {
			if c, ok := css.ParseColor(v); ok {
				return c
			}
		}
	}
	return black
}

func (r *Renderer) drawBorder(box *layout.Box, y float64, clip rect) {
	b := box.Border
	if b.Top <= 0 && b.Right <= 0 && b.Bottom <= 0 && b.Left <= 0 {
		return
	}
	c := borderColor(box.Style)
	r.fillRect(box.X, y, box.Width, b.Top, clip, c)
	r.fillRect(box.X, y+box.Height-b.Bottom, box.Width, b.Bottom, clip, c)
	r.fillRect(box.X, y, b.Left, box.Height, clip, c)
	r.fillRect(box.X+box.Width-b.Right, y, b.Right, box.Height, clip, c)
}

// textColor is the color of the nearest ancestor that sets one.
func textColor(box *layout.Box) css.Color {
	for p := box; p != nil; p = p.Parent {
		if v, ok := p.Style.Get("color"); ok {
			if c, ok := css.ParseColor(v); ok {
				return c
			}
		}
	}
	return black
}

func (r *Renderer) drawText(box *layout.Box, y float64, clip rect) {
	line := rect{box.X, y, box.X + box.Width, y + box.Height}
	visible := line.intersect(clip)
	if visible.empty() {
		return
	}
	partial := visible != line
	if partial {
		r.context.DrawRectangle(visible.x0, visible.y0, visible.x1-visible.x0, visible.y1-visible.y0)
		r.context.Clip()
	}
	r.setColor(textColor(box))
	r.context.DrawStringAnchored(box.Text, box.X, y+box.Height/2, 0, 0.5)
	if partial {
		r.context.ResetClip()
	}
}

// drawScrollbar paints a track along the right edge of a scroller's viewport
// and a thumb sized and placed by the visible share of its content.
func (r *Renderer) drawScrollbar(box *layout.Box) {
	vp := r.viewport(box)
	h := vp.y1 - vp.y0
	if box.ScrollHeight <= h || h <= 0 {
		return
	}
	clip := r.clipFor(box).intersect(vp)
	x := vp.x1 - scrollbarWidth
	r.fillRect(x, vp.y0, scrollbarWidth, h, clip, scrollbarTrack)
	thumb := h * h / box.ScrollHeight
	top := vp.y0 + box.ScrollTop/box.ScrollHeight*h
	r.fillRect(x, top, scrollbarWidth, thumb, clip, scrollbarThumb)
}

// Image returns the canvas.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}
