// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tgcbench measures collection cost over a range of synthetic
// heap sizes and reports the results either as a Go benchmark results
// file or as an SVG plot of mark time against heap size.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/tgc"
	"github.com/aclements/tgc/internal/bench"
)

// replotValueParsers restricts ParseValues to integers: a benchmark
// results file tgcbench reads back only ever carries "size" and
// "gomaxprocs" config keys, both of which are plain heap-size-shaped
// integers, not durations or arbitrary floats.
var replotValueParsers = []bench.ValueParser{
	func(s string) (interface{}, error) { return strconv.Atoi(s) },
}

func main() {
	log.SetPrefix("tgcbench: ")
	log.SetFlags(0)

	var (
		flagSizes      = flag.String("sizes", "100,1000,10000,100000", "comma-separated synthetic heap sizes")
		flagIterations = flag.Int("n", 20, "collection cycles to time per heap size")
		flagFanout     = flag.Int("fanout", 2, "average outgoing edges per synthetic node")
		flagLiveFrac   = flag.Float64("live", 0.5, "fraction of nodes reachable from the root scope")
		flagSeed       = flag.Int64("seed", 1, "random seed for the synthetic heap generator")
		flagOut        = flag.String("o", "", "write output to `file` (default: stdout)")
		flagTable      = flag.Bool("table", false, "write a Go benchmark results file instead of an SVG plot")
		flagFrom       = flag.String("from", "", "replot an existing benchmark results `file` instead of measuring")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	out := os.Stdout
	if *flagOut != "" {
		f, err := os.Create(*flagOut)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	var records []*bench.Record
	var rows []row

	if *flagFrom != "" {
		records, rows = loadRecords(*flagFrom)
	} else {
		sizes, err := parseSizes(*flagSizes)
		if err != nil {
			log.Fatal(err)
		}
		rng := rand.New(rand.NewSource(*flagSeed))
		for _, size := range sizes {
			var marks, sweeps []float64
			for i := 0; i < *flagIterations; i++ {
				state, _ := buildSyntheticHeap(rng, size, *flagFanout, *flagLiveFrac)
				cs := state.RunTimed()
				marks = append(marks, float64(cs.Mark.Nanoseconds()))
				sweeps = append(sweeps, float64(cs.Sweep.Nanoseconds()))
				records = bench.AppendCycle(records, fmt.Sprintf("Collect/size:%d", size), 1, tgcCycle(cs))
			}
			rows = append(rows, row{size, stats.Mean(marks), stats.Mean(sweeps)})
		}
	}

	if *flagTable {
		if err := bench.Fprint(out, records); err != nil {
			log.Fatal(err)
		}
		return
	}

	tab := gg.NewPlot(tableFromRows(rows))
	tab.Add(gg.LayerLines{X: "Size", Y: "MarkNS"})
	tab.Add(gg.LayerPoints{X: "Size", Y: "MarkNS"})
	tab.Add(gg.Title(fmt.Sprintf("mark time vs heap size (fanout=%d, live=%.2f)", *flagFanout, *flagLiveFrac)))
	if err := tab.WriteSVG(out, 700, 500); err != nil {
		log.Fatal(err)
	}
}

// loadRecords reads a previously written -table file back in and
// recovers the (size, mean mark ns, mean sweep ns) rows tgcbench needs
// to plot, grouping the per-cycle records it finds by their "size"
// path config. ParseValues turns that config's raw "100"/"1000"/...
// strings into real ints instead of tgcbench re-deriving them with its
// own ad hoc parsing.
func loadRecords(path string) ([]*bench.Record, []row) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	records, err := bench.Parse(f)
	if err != nil {
		log.Fatal(err)
	}
	bench.ParseValues(records, replotValueParsers)

	bySize := make(map[int][]*bench.Record)
	var order []int
	for _, rec := range records {
		c, ok := rec.Config["size"]
		if !ok {
			continue
		}
		size, ok := c.Value.(int)
		if !ok {
			log.Fatalf("record %q has non-integer size %q", rec.Name, c.RawValue)
		}
		if _, seen := bySize[size]; !seen {
			order = append(order, size)
		}
		bySize[size] = append(bySize[size], rec)
	}

	var rows []row
	for _, size := range order {
		var marks, sweeps []float64
		for _, rec := range bySize[size] {
			marks = append(marks, rec.Result[bench.MarkNS])
			sweeps = append(sweeps, rec.Result[bench.SweepNS])
		}
		rows = append(rows, row{size, stats.Mean(marks), stats.Mean(sweeps)})
	}
	return records, rows
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad size %q: %w", f, err)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return sizes, nil
}

func tgcCycle(cs tgc.CycleStats) bench.Cycle {
	return bench.Cycle{
		Mark:         cs.Mark,
		Sweep:        cs.Sweep,
		ObjectsFreed: cs.ObjectsFreed,
		ObjectsLive:  cs.ObjectsLive,
	}
}
