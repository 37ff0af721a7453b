// Command vertexfinder runs the pairwise secondary-vertex search over a
// JSONL event stream, records the run and its accepted candidates in
// sqlite, and optionally renders the mass histogram and a candidate
// scatter chart.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/banshee-data/vertex.report/internal/config"
	"github.com/banshee-data/vertex.report/internal/monitoring"
	"github.com/banshee-data/vertex.report/internal/report"
	"github.com/banshee-data/vertex.report/internal/tracking/eventio"
	"github.com/banshee-data/vertex.report/internal/tracking/storage/sqlite"
	"github.com/banshee-data/vertex.report/internal/tracking/vertexing"
	"github.com/banshee-data/vertex.report/internal/version"
)

func main() {
	// Input and output
	input := flag.String("input", "", "JSONL event file to search (required)")
	dbPath := flag.String("db", "vertex_data.db", "path to sqlite db for runs and candidates")
	massPlot := flag.String("mass-plot", "", "write the pT vs invariant-mass heatmap PNG here")
	chart := flag.String("chart", "", "write the candidate scatter HTML here")

	// Cuts and hypothesis
	configPath := flag.String("config", "", "tuning JSON file (built-in defaults when omitted)")
	electron := flag.Bool("electron", false, "use the electron mass hypothesis (photon conversions)")
	requireSilicon := flag.Bool("require-silicon", false, "drop tracks without silicon hits")
	verbose := flag.Bool("verbose", false, "log per-candidate diagnostics")
	flag.Parse()

	if *input == "" {
		log.Fatalf("input event file must be provided")
	}
	log.Printf("vertexfinder %s", version.String())
	monitoring.Verbose = *verbose

	tc := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tc, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	cfg := vertexing.FinderConfigFromTuning(tc)
	if *electron {
		cfg.UseElectronMass()
	}
	if *requireSilicon {
		cfg.RequireSilicon = true
	}

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	params, err := json.Marshal(cfg)
	if err != nil {
		log.Fatalf("encode params: %v", err)
	}
	runs := sqlite.NewRunStore(db)
	run := &sqlite.VertexRun{
		SourcePath: *input,
		ParamsJSON: params,
		Status:     "running",
	}
	if err := runs.Insert(run); err != nil {
		log.Fatalf("insert run: %v", err)
	}
	log.Printf("run %s started on %s", run.RunID, *input)

	start := time.Now()
	acc := vertexing.NewAccumulator(cfg)
	finder := vertexing.NewFinder(cfg, nil, nil)

	events, err := searchFile(*input, finder, acc)
	if err == nil {
		err = sqlite.NewCandidateStore(db).InsertBatch(run.RunID, acc.Candidates)
	}
	if err != nil {
		if ferr := runs.Fail(run.RunID, err.Error()); ferr != nil {
			log.Printf("mark run failed: %v", ferr)
		}
		log.Fatalf("run %s: %v", run.RunID, err)
	}

	stats := sqlite.RunStats{
		EventsProcessed:    events,
		PairsConsidered:    acc.Stats.PairsConsidered,
		CandidatesAccepted: acc.Stats.Accepted,
		ProcessingTimeMs:   time.Since(start).Milliseconds(),
	}
	if err := runs.Complete(run.RunID, stats); err != nil {
		log.Fatalf("complete run: %v", err)
	}
	log.Printf("run %s: %d events in %s | %s",
		run.RunID, events, time.Since(start).Round(time.Millisecond), acc.Stats.Summary())

	if *massPlot != "" {
		if err := report.MassPlot(acc.MassVsPt, "invariant mass vs pT", *massPlot); err != nil {
			log.Fatalf("mass plot: %v", err)
		}
		log.Printf("wrote %s", *massPlot)
	}
	if *chart != "" {
		if len(acc.Candidates) == 0 {
			log.Printf("no candidates, skipping %s", *chart)
		} else if err := report.CandidatesChart(acc.Candidates, "decay candidates", *chart); err != nil {
			log.Fatalf("candidates chart: %v", err)
		} else {
			log.Printf("wrote %s", *chart)
		}
	}
}

// searchFile streams events from path through the finder, returning the
// number of events processed.
func searchFile(path string, finder *vertexing.Finder, acc *vertexing.Accumulator) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	r := eventio.NewReader(f)
	var events int64
	for {
		ev, err := r.Read()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		if err := finder.FindVertices(ev, acc); err != nil {
			return events, err
		}
		events++
	}
}
