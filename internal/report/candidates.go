package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/vertex.report/internal/tracking/vertexing"
)

// viridisRamp colors the visual map from sparse to dense.
var viridisRamp = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// CandidatesChart writes an interactive HTML scatter of decay length
// versus invariant mass, colored by pair pT.
func CandidatesChart(cands []vertexing.DecayCandidate, title, path string) error {
	if len(cands) == 0 {
		return fmt.Errorf("report: no candidates to chart")
	}

	data := make([]opts.ScatterData, 0, len(cands))
	maxLen, maxMass, maxPt := 0.0, 0.0, 0.0
	for _, c := range cands {
		if c.DecayLength > maxLen {
			maxLen = c.DecayLength
		}
		if c.InvariantMass > maxMass {
			maxMass = c.InvariantMass
		}
		if c.InvariantPt > maxPt {
			maxPt = c.InvariantPt
		}
		data = append(data, opts.ScatterData{Value: []interface{}{c.DecayLength, c.InvariantMass, c.InvariantPt}})
	}
	if maxPt == 0 {
		maxPt = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("candidates=%d", len(cands))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: maxLen * 1.05, Name: "decay length (cm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: maxMass * 1.05, Name: "invariant mass (GeV/c^2)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxPt),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridisRamp},
		}),
	)
	scatter.AddSeries("candidates", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scatter.Render(f)
}
