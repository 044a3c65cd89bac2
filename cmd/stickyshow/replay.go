package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stickyfill/pkg/config"
	"stickyfill/pkg/css"
	"stickyfill/pkg/html"
	"stickyfill/pkg/render"
	"stickyfill/pkg/resource"
	"stickyfill/pkg/state"
	"stickyfill/pkg/sticky"
)

// plan is a sequence of scroll offsets from From to To, both included.
type plan struct {
	From, To, Step float64
}

func planFrom(rc config.ReplayConfig, cmd *cli.Command) plan {
	p := plan{From: rc.From, To: rc.To, Step: rc.Step}
	if cmd.IsSet("from") {
		p.From = cmd.Float("from")
	}
	if cmd.IsSet("to") {
		p.To = cmd.Float("to")
	}
	if cmd.IsSet("step") {
		p.Step = cmd.Float("step")
	}
	return p
}

func (p plan) offsets() ([]float64, error) {
	if p.Step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", p.Step)
	}
	step := p.Step
	if p.To < p.From {
		step = -step
	}
	var out []float64
	for y := p.From; ; y += step {
		if (step > 0 && y >= p.To) || (step < 0 && y <= p.To) {
			return append(out, p.To), nil
		}
		out = append(out, y)
	}
}

type frameReport struct {
	Frame  int
	Scroll float64
	Ran    int
	State  sticky.GroupState
}

// replay scrolls container through offsets, one frame each, and hands every
// settled frame to onFrame.
func replay(ctx context.Context, p *resource.Page, container *html.Node, offsets []float64, onFrame func(frameReport) error) error {
	for i, y := range offsets {
		if err := ctx.Err(); err != nil {
			return err
		}
		ran := p.ScrollTo(container, y)
		st, _ := p.State(container)
		if err := onFrame(frameReport{Frame: i, Scroll: p.Offset(container), Ran: ran, State: st}); err != nil {
			return err
		}
	}
	return nil
}

func writeFrame(w io.Writer, f frameReport) {
	fmt.Fprintf(w, "frame %3d  scroll %6s  active %2d  index %2d\n",
		f.Frame, css.FormatPx(f.Scroll), f.State.Active(), f.State.Index)
	for i, el := range f.State.Elements {
		marker := " "
		if el.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s[%d] %-24s offset %7s  reserved %6s\n",
			marker, i, el.Content.Describe(), css.FormatPx(el.Offset), css.FormatPx(el.Reserved))
	}
}

func runReplay(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("no SOURCE has been specified")
	}
	source := cmd.Args().Get(0)

	page, err := env.OpenPage(ctx, source)
	if err != nil {
		return fmt.Errorf("unable to open '%s': %w", source, err)
	}
	defer func() {
		err = multierr.Append(err, page.Close())
	}()

	id := env.Cfg.Replay.Container
	if cmd.IsSet("container") {
		id = cmd.String("container")
	}
	container, err := page.Container(id)
	if err != nil {
		return err
	}
	offsets, err := planFrom(env.Cfg.Replay, cmd).offsets()
	if err != nil {
		return err
	}

	var renderer *render.Renderer
	dir := cmd.String("png")
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("unable to create png directory: %w", err)
		}
		renderer = render.NewRenderer(env.Cfg.Viewport.Width, env.Cfg.Viewport.Height)
	}

	env.Log.Info("Replaying",
		zap.String("source", source),
		zap.String("container", container.Describe()),
		zap.Stringer("mode", page.Registry.Mode()),
		zap.Int("frames", len(offsets)))

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return replay(ctx, page, container, offsets, func(f frameReport) error {
		writeFrame(out, f)
		if renderer == nil {
			return nil
		}
		page.Render(renderer)
		name := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", f.Frame))
		if err := renderer.SavePNG(name); err != nil {
			return fmt.Errorf("unable to save frame: %w", err)
		}
		return nil
	})
}
