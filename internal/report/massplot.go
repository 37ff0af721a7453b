package report

import (
	"fmt"
	"os"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// MassPlot renders the accumulator's pT versus invariant-mass
// histogram to a PNG heatmap with a side color bar.
func MassPlot(h *hbook.H2D, title, path string) error {
	if h == nil {
		return fmt.Errorf("report: nil histogram")
	}

	grid := h.GridXYZ()
	max := 0.0
	nx, ny := grid.Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if z := grid.Z(i, j); z > max {
				max = z
			}
		}
	}
	if max == 0 {
		max = 1
	}

	colorMap := moreland.ExtendedBlackBody()
	colorMap.SetMin(0)
	colorMap.SetMax(max)

	p := hplot.New()
	p.Title.Text = title
	p.X.Label.Text = "p_T (GeV/c)"
	p.Y.Label.Text = "invariant mass (GeV/c^2)"

	heatMap := plotter.NewHeatMap(grid, colorMap.Palette(1000))
	heatMap.Min = 0
	heatMap.Max = max
	p.Add(heatMap)

	// Heatmap on the left, color bar in a narrow strip on the right.
	img := vgimg.New(670, 400)
	dc := draw.New(img)
	p.Draw(draw.Crop(dc, 0, -70, 0, 0))

	bar := hplot.New()
	colorBar := &plotter.ColorBar{ColorMap: colorMap}
	colorBar.Vertical = true
	bar.Add(colorBar)
	bar.HideX()
	bar.Y.Padding = 0
	bar.Draw(draw.Crop(dc, 620, 0, 0, 0))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
