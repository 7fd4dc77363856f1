package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jpfielding/dicoslut/pkg/config"
	"github.com/jpfielding/dicoslut/pkg/dicos"
	"github.com/jpfielding/dicoslut/pkg/lut"
)

// newFactory prepares the lookup pipeline of one frame: Modality and
// Presentation state from the dataset, the VOI stage from cfg, and the auto
// window fallback when nothing else selects a window.
func newFactory(ctx context.Context, ds *dicos.Dataset, cfg *config.Render, buf any) (*lut.Factory, error) {
	sv, err := dicos.StoredValue(ds)
	if err != nil {
		return nil, err
	}
	attrs := dicos.Attributes(ds)
	f := lut.NewFactory(sv)
	f.Init(attrs)
	// an explicit window replaces whatever VOI stage the image carries
	if cfg.Window.Width != 0 {
		f.SetWindowCenter(cfg.Window.Center)
		f.SetWindowWidth(cfg.Window.Width)
	} else {
		f.SetVOI(attrs, cfg.WindowIndex, cfg.LUTIndex, cfg.PreferWindow)
	}
	if cfg.AutoWindow {
		ok, err := f.AutoWindowing(attrs, buf)
		if err != nil {
			return nil, fmt.Errorf("auto windowing: %w", err)
		}
		if ok {
			p := f.Pipeline()
			slog.DebugContext(ctx, "auto window applied",
				slog.Float64("center", p.WindowCenter),
				slog.Float64("width", p.WindowWidth))
		}
	}
	return f, nil
}
