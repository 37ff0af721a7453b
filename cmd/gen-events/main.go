// Command gen-events writes synthetic decay events as JSON lines for
// exercising the vertex finder end to end.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/banshee-data/vertex.report/internal/tracking/eventio"
	"github.com/banshee-data/vertex.report/internal/tracking/propagation"
	"github.com/banshee-data/vertex.report/internal/version"
)

func main() {
	output := flag.String("o", "events.jsonl", "output path")
	events := flag.Int("n", 100, "number of events")
	run := flag.Int("run", 1, "run number")
	seed := flag.Int64("seed", 1, "random seed")
	prompt := flag.Int("prompt", 6, "prompt tracks per event")
	decays := flag.Int("decays", 1, "decay pairs per event")
	mass := flag.Float64("mass", 0.497611, "parent mass in GeV")
	bz := flag.Float64("bz", propagation.DefaultBz, "solenoid field in tesla")
	flag.Parse()

	log.Printf("gen-events %s", version.String())
	g := NewGenerator(*run, *seed, *bz)
	g.PromptTracks = *prompt
	g.Decays = *decays
	g.ParentMass = *mass
	if g.ParentMass < 2*g.DaughterMass {
		log.Fatalf("parent mass %.4f below twice the daughter mass %.4f", g.ParentMass, g.DaughterMass)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	w := eventio.NewWriter(f)
	for i := 0; i < *events; i++ {
		if err := w.Write(g.Next()); err != nil {
			log.Fatalf("write event %d: %v", i+1, err)
		}
		if (i+1)%100 == 0 {
			log.Printf("%d/%d events", i+1, *events)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("flush output: %v", err)
	}
	log.Printf("wrote %d events to %s", *events, *output)
}
