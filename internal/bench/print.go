// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bench

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Print writes records to stdout in the standard benchmark format.
func Print(records []*Record) error {
	return Fprint(os.Stdout, records)
}

// Fprint writes records to w in the standard benchmark format, grouping
// consecutive records that share block-level configuration under a
// single configuration block.
func Fprint(w io.Writer, records []*Record) error {
	type kv struct{ k, v string }
	type block struct {
		config []kv
		recs   []*Record
	}

	configKeys := func(rec *Record, inBlock bool) []string {
		var keys []string
		for k, c := range rec.Config {
			if c.InBlock == inBlock {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		return keys
	}

	var blocks []block
	lastConfig := map[string]string{}
	for _, rec := range records {
		var changed []kv
		for _, k := range configKeys(rec, true) {
			c := rec.Config[k]
			if lc, ok := lastConfig[k]; ok && lc == c.RawValue {
				continue
			}
			changed = append(changed, kv{k, c.RawValue})
			lastConfig[k] = c.RawValue
		}

		if len(blocks) == 0 || changed != nil {
			blocks = append(blocks, block{changed, nil})
		}
		bb := &blocks[len(blocks)-1].recs
		*bb = append(*bb, rec)
	}

	for i, blk := range blocks {
		if i > 0 {
			if _, err := fmt.Fprint(w, "\n"); err != nil {
				return err
			}
		}
		for _, kv := range blk.config {
			if _, err := fmt.Fprintf(w, "%s: %s\n", kv.k, kv.v); err != nil {
				return err
			}
		}
		if len(blk.config) > 0 {
			if _, err := fmt.Fprint(w, "\n"); err != nil {
				return err
			}
		}

		var lines [][]string
		for _, rec := range blk.recs {
			name := []string{"Benchmark" + rec.Name}
			gomaxprocs, haveGMP := "", false
			for _, k := range configKeys(rec, false) {
				c := rec.Config[k]
				if k == "gomaxprocs" {
					gomaxprocs, haveGMP = c.RawValue, true
					continue
				}
				name = append(name, fmt.Sprintf("%s:%s", k, c.RawValue))
			}
			if haveGMP && gomaxprocs != "1" {
				if len(name) == 1 {
					name[0] = fmt.Sprintf("%s-%s", name[0], gomaxprocs)
				} else {
					name = append(name, fmt.Sprintf("gomaxprocs:%s", gomaxprocs))
				}
			}

			line := []string{strings.Join(name, "/"), fmt.Sprint(rec.Iterations)}
			var resultKeys []string
			for k := range rec.Result {
				resultKeys = append(resultKeys, k)
			}
			sort.Sort(resultKeySorter(resultKeys))
			for _, k := range resultKeys {
				line = append(line, fmt.Sprint(rec.Result[k]), k)
			}
			lines = append(lines, line)
		}

		widths := make([]int, 0)
		for _, line := range lines {
			for i, elt := range line {
				if i >= len(widths) {
					widths = append(widths, len(elt))
				} else if len(elt) > widths[i] {
					widths[i] = len(elt)
				}
			}
		}

		for _, line := range lines {
			for i, elt := range line {
				var err error
				p := widths[i]
				switch {
				case i == 1 || (i >= 2 && i%2 == 0):
					_, err = fmt.Fprintf(w, "%*s  ", p, elt)
				case i < len(line)-1:
					_, err = fmt.Fprintf(w, "%-*s  ", p, elt)
				default:
					_, err = fmt.Fprintf(w, "%s\n", elt)
				}
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// fixedKeys puts a collection cycle's own metrics in a fixed,
// narrative order -- time spent marking, then sweeping, then what
// sweep did -- ahead of anything else a Record might carry (e.g. a
// config value that leaked into Result from a workload's own output).
var fixedKeys = map[string]int{
	MarkNS:       -4,
	SweepNS:      -3,
	ObjectsFreed: -2,
	ObjectsLive:  -1,
}

type resultKeySorter []string

func (s resultKeySorter) Len() int      { return len(s) }
func (s resultKeySorter) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s resultKeySorter) Less(i, j int) bool {
	if fixedKeys[s[i]] != fixedKeys[s[j]] {
		return fixedKeys[s[i]] < fixedKeys[s[j]]
	}
	return s[i] < s[j]
}
