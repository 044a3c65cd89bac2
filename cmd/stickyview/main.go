package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
	"stickyfill/pkg/render"
	"stickyfill/pkg/resource"
	"stickyfill/pkg/state"
)

const appName = "stickyview"

// viewer owns the page shown in the window. All fields are touched on the
// UI goroutine only.
type viewer struct {
	env       *state.LocalEnv
	page      *resource.Page
	container *html.Node
	renderer  *render.Renderer

	image  *canvas.Image
	slider *widget.Slider
	status *widget.Label
}

func (v *viewer) show(p *resource.Page, c *html.Node, source string) {
	if v.page != nil {
		if err := v.page.Close(); err != nil {
			v.env.Log.Warn("Closing previous page", zap.Error(err))
		}
	}
	v.page, v.container = p, c
	v.slider.Max = p.MaxScroll(c)
	v.slider.Value = p.Offset(c)
	v.slider.Refresh()
	v.env.Log.Info("Page loaded", zap.String("source", source), zap.Stringer("mode", p.Registry.Mode()))
	v.redraw()
}

// scroll is the slider callback: one scroll event, one frame, one paint.
func (v *viewer) scroll(offset float64) {
	if v.page == nil {
		return
	}
	v.page.ScrollTo(v.container, offset)
	v.redraw()
}

func (v *viewer) redraw() {
	v.page.Render(v.renderer)
	v.image.Image = v.renderer.Image()
	v.image.Refresh()

	st, _ := v.page.State(v.container)
	text := fmt.Sprintf("scroll %s  mode %s", css.FormatPx(v.page.Offset(v.container)), v.page.Registry.Mode())
	if i := st.Active(); i >= 0 {
		el := st.Elements[i]
		text += fmt.Sprintf("  active %s at %s", el.Content.Describe(), css.FormatPx(el.Offset))
	}
	v.status.SetText(text)
}

func (v *viewer) load(ctx context.Context, source, id string) {
	v.status.SetText("Loading " + source + "...")
	go func() {
		p, err := v.env.OpenPage(ctx, source)
		var c *html.Node
		if err == nil {
			if c, err = p.Container(id); err != nil {
				p.Close()
			}
		}
		fyne.Do(func() {
			if err != nil {
				v.status.SetText("Error: " + err.Error())
				return
			}
			v.show(p, c, source)
		})
	}()
}

func run(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if err := env.Initialize(cmd.String("config"), cmd.Bool("debug"), appName); err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	defer env.RestoreStdLog()

	width, height := env.Cfg.Viewport.Width, env.Cfg.Viewport.Height
	a := app.New()
	w := a.NewWindow("stickyfill")
	w.Resize(fyne.NewSize(float32(width), float32(height+80)))

	v := &viewer{
		env:      env,
		renderer: render.NewRenderer(width, height),
		status:   widget.NewLabel("Enter a file or URL and press Enter"),
		slider:   widget.NewSlider(0, 0),
	}
	v.image = canvas.NewImageFromImage(v.renderer.Image())
	v.image.FillMode = canvas.ImageFillOriginal
	v.slider.Step = 1
	v.slider.OnChanged = v.scroll

	id := cmd.String("container")
	source := widget.NewEntry()
	source.SetPlaceHolder("page.html or https://example.com/page.html")
	source.OnSubmitted = func(s string) { v.load(ctx, s, id) }

	content := container.NewBorder(source, container.NewVBox(v.slider, v.status), nil, nil, v.image)
	w.SetContent(content)
	w.Canvas().Focus(source)

	if cmd.Args().Len() > 0 {
		source.SetText(cmd.Args().Get(0))
		v.load(ctx, cmd.Args().Get(0), id)
	}
	w.SetOnClosed(func() {
		if v.page != nil {
			if err := v.page.Close(); err != nil {
				env.Log.Warn("Closing page", zap.Error(err))
			}
		}
	})
	w.ShowAndRun()
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:      appName,
		Usage:     "shows a sticky scroll container with a scroll slider",
		ArgsUsage: "[SOURCE]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log every registration and handoff"},
			&cli.StringFlag{Name: "container", Usage: "`ID` of the scroll container to drive"},
		},
		Action: run,
	}
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
