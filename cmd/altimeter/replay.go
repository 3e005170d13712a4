package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"altimeter/pkg/config"
	"altimeter/pkg/draw"
	"altimeter/pkg/draw/raster"
	"altimeter/pkg/report"
	"altimeter/pkg/sensor"
	"altimeter/pkg/vario"
)

type replayOptions struct {
	Input  string
	Plot   string // PNG chart, optional
	Vario  string // WAV audio, optional
	Render string // PNG face, optional
}

// runReplay feeds a recording through the altimeter as fast as it can and
// writes a summary to out.
func runReplay(ctx context.Context, cfg *config.Config, out io.Writer, opts replayOptions) error {
	src, err := sensor.OpenReplay(opts.Input)
	if err != nil {
		return err
	}
	defer src.Close()

	face, err := raster.NewFace(cfg.Gauge.FontSize)
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}
	alt, err := newAltimeter(cfg, face)
	if err != nil {
		return err
	}

	trace, err := report.Replay(ctx, src, alt.Filter())
	if err != nil {
		return err
	}
	sum, err := report.Summarize(trace)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, sum)

	if opts.Plot != "" {
		if err := report.SavePlot(opts.Plot, trace, alt.AltitudeUnits()); err != nil {
			return err
		}
		fmt.Fprintln(out, "Chart written:", opts.Plot)
	}

	if opts.Vario != "" {
		track := vario.Track(trace.VarioPoints(), vario.DefaultSampleRate)
		if err := vario.SaveWAV(opts.Vario, track, vario.DefaultSampleRate); err != nil {
			return err
		}
		fmt.Fprintln(out, "Vario audio written:", opts.Vario)
	}

	if opts.Render != "" {
		w, h := cfg.Render.Width, cfg.Render.Height
		c := raster.New(w, h)
		c.FillRect(draw.R(0, 0, float64(w), float64(h)), draw.Black)
		alt.Layout(w, h)
		alt.Render(c, time.Now())
		if err := raster.SavePNG(opts.Render, c.Image()); err != nil {
			return err
		}
		fmt.Fprintln(out, "Instrument written:", opts.Render)
	}
	return nil
}
