// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stickyfill/pkg/config"
	"stickyfill/pkg/resource"
)

type envKey struct{}

// LocalEnv keeps everything a program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	start         time.Time
	restoreStdLog func()
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		Log:   zap.NewNop(),
		start: time.Now(),
	}
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
}

// PageOptions describes the configured platform to the page loader.
func (e *LocalEnv) PageOptions() resource.Options {
	return resource.Options{
		Width:      float64(e.Cfg.Viewport.Width),
		Height:     float64(e.Cfg.Viewport.Height),
		LineHeight: e.Cfg.Layout.LineHeight,
		Features:   e.Cfg.Features(),
		Logger:     e.Log,
	}
}

// OpenPage loads source, a file path or http(s) URL, with the configured
// platform.
func (e *LocalEnv) OpenPage(ctx context.Context, source string) (*resource.Page, error) {
	e.Log.Debug("Loading page", zap.String("source", source))
	return resource.Load(ctx, resource.NewFetcher(""), source, e.PageOptions())
}

// Initialize loads the configuration at path and prepares logging. The
// debug flag forces debug level console output.
func (e *LocalEnv) Initialize(path string, debug bool, name string) (err error) {
	if e.Cfg, err = config.LoadConfiguration(path); err != nil {
		return err
	}
	if debug {
		e.Cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if e.Log, err = e.Cfg.Logging.Prepare(name); err != nil {
		return err
	}
	e.RedirectStdLog()
	return nil
}
