package report

import (
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"altimeter/pkg/baro"
)

// DefaultPlotSize is the size used by SavePlot.
const (
	DefaultPlotWidth  = 10 * vg.Inch
	DefaultPlotHeight = 6 * vg.Inch
)

// WritePlot renders altitude over vertical speed, stacked, as PNG.
func WritePlot(w io.Writer, t *Trace, unit baro.AltitudeUnit, width, height vg.Length) error {
	if len(t.Entries) == 0 {
		return ErrEmpty
	}
	factor := unit.Factor()

	altXY := make(plotter.XYs, len(t.Entries))
	vsiXY := make(plotter.XYs, len(t.Entries))
	for i, e := range t.Entries {
		x := e.Time.Seconds()
		altXY[i] = plotter.XY{X: x, Y: e.Altitude * factor}
		vsiXY[i] = plotter.XY{X: x, Y: e.VSI * factor}
	}

	alt, err := linePlot(altXY, "Altitude", fmt.Sprintf("altitude (%s)", unit))
	if err != nil {
		return err
	}
	alt.Title.Text = fmt.Sprintf("Replay, Kollsman %.2f mB", t.Reference)

	vsi, err := linePlot(vsiXY, "Vertical speed", fmt.Sprintf("%s/s", unit))
	if err != nil {
		return err
	}
	vsi.X.Label.Text = "time (s)"
	vsi.Add(plotter.NewFunction(func(float64) float64 { return 0 }))

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 4}
	plots := [][]*plot.Plot{{alt}, {vsi}}
	canvases := plot.Align(plots, tiles, dc)
	alt.Draw(canvases[0][0])
	vsi.Draw(canvases[1][0])

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// SavePlot writes the plot to path at the default size.
func SavePlot(path string, t *Trace, unit baro.AltitudeUnit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePlot(f, t, unit, DefaultPlotWidth, DefaultPlotHeight); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func linePlot(xys plotter.XYs, name, yLabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s line: %w", name, err)
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return p, nil
}
