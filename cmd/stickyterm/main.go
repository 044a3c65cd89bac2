package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
	"stickyfill/pkg/layout"
	"stickyfill/pkg/resource"
	"stickyfill/pkg/state"
)

const appName = "stickyterm"

// term draws one scroll container as rows of scale pixels each.
type term struct {
	screen    tcell.Screen
	page      *resource.Page
	container *html.Node
	scale     float64
	log       *zap.Logger
}

func styleFor(box *layout.Box) (tcell.Style, bool) {
	v, ok := box.Style.Get("background-color")
	if !ok {
		return tcell.StyleDefault, false
	}
	c, ok := css.ParseColor(v)
	if !ok || c.A <= 0 {
		return tcell.StyleDefault, false
	}
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))), true
}

func (t *term) row(y float64) int {
	return int(math.Floor(y / t.scale))
}

func (t *term) draw() {
	t.screen.Clear()
	width, height := t.screen.Size()
	rows := height - 1

	root := t.page.Layout.Boxes(t.page.Doc)
	cbox := root.Find(t.container)
	if cbox == nil {
		return
	}
	vtop, vh := cbox.Viewport(t.page.Layout.Height)
	if limit := t.row(vh); limit < rows {
		rows = limit
	}
	cols := func(x float64) int { return int(x / t.scale * 2) }

	root.Walk(func(box *layout.Box) {
		if box == cbox || !t.container.Contains(box.Node) {
			return
		}
		top, bottom := t.row(box.VisualY()-vtop), t.row(box.VisualY()-vtop+box.Height-1)
		if box.Text != "" {
			if top >= 0 && top < rows {
				x := cols(box.X - cbox.X)
				for i, r := range box.Text {
					if x+i < width {
						t.screen.SetContent(x+i, top, r, nil, tcell.StyleDefault)
					}
				}
			}
			return
		}
		style, ok := styleFor(box)
		if !ok {
			return
		}
		x0, x1 := cols(box.X-cbox.X), cols(box.X-cbox.X+box.Width)
		for y := max(top, 0); y <= bottom && y < rows; y++ {
			for x := x0; x < x1 && x < width; x++ {
				t.screen.SetContent(x, y, ' ', nil, style)
			}
		}
	})

	st, _ := t.page.State(t.container)
	status := fmt.Sprintf(" scroll %s/%s  active %d  mode %s  [up/down pgup/pgdn home/end, q quits]",
		css.FormatPx(t.page.Offset(t.container)), css.FormatPx(t.page.MaxScroll(t.container)),
		st.Active(), t.page.Registry.Mode())
	for i, r := range status {
		if i < width {
			t.screen.SetContent(i, height-1, r, nil, tcell.StyleDefault.Reverse(true))
		}
	}
	t.screen.Show()
}

// handleInput turns keys into scroll events. It returns false to quit.
func (t *term) handleInput(ev tcell.Event) bool {
	ctrl := t.page.Scrolls.Controller(t.container)
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			ctrl.ScrollBy(-t.scale)
		case tcell.KeyDown:
			ctrl.ScrollBy(t.scale)
		case tcell.KeyPgUp:
			ctrl.ScrollBy(-t.page.Layout.ViewportHeight(t.container))
		case tcell.KeyPgDn:
			ctrl.ScrollBy(t.page.Layout.ViewportHeight(t.container))
		case tcell.KeyHome:
			ctrl.ScrollTo(0)
		case tcell.KeyEnd:
			ctrl.ScrollTo(t.page.MaxScroll(t.container))
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'k':
				ctrl.ScrollBy(-t.scale)
			case 'j':
				ctrl.ScrollBy(t.scale)
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

// loop flushes one frame per tick; scroll events only queue work for it.
func (t *term) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	t.draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eventChan:
			if !t.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if t.page.Frames.Flush() > 0 {
				t.log.Debug("Frame", zap.Float64("scroll", t.page.Offset(t.container)))
			}
			t.draw()
		}
	}
}

func run(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if err := env.Initialize(cmd.String("config"), cmd.Bool("debug"), appName); err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}
	defer env.RestoreStdLog()
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no SOURCE has been specified")
	}

	page, err := env.OpenPage(ctx, cmd.Args().Get(0))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, page.Close())
	}()
	c, err := page.Container(cmd.String("container"))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	t := &term{screen: screen, page: page, container: c, scale: cmd.Float("scale"), log: env.Log}
	if t.scale <= 0 {
		t.scale = env.Cfg.Layout.LineHeight
	}
	t.loop(ctx, env.Cfg.Frames.Interval)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:      appName,
		Usage:     "scrolls a sticky container in the terminal",
		ArgsUsage: "SOURCE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log every registration and handoff"},
			&cli.StringFlag{Name: "container", Usage: "`ID` of the scroll container to drive"},
			&cli.FloatFlag{Name: "scale", Usage: "`PIXELS` per terminal row (default: line height)"},
		},
		Action: run,
	}
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
