// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bench reads and writes GC cycle statistics in the standard Go
// benchmark results format
// (https://github.com/golang/proposal/blob/master/design/14313-benchmark-format.md),
// so cmd/tgcbench's output composes with the ordinary Go benchmarking
// toolchain (benchstat and friends) instead of inventing its own format.
package bench

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Record is one parsed line of a benchmark results file: a single run of
// a single named GC cycle benchmark under a particular configuration.
type Record struct {
	// Name is the benchmark name, without the "Benchmark" prefix and
	// without the trailing GOMAXPROCS number.
	Name string

	// Iterations is the number of cycles this record summarizes.
	Iterations int

	// Config holds the configuration pairs in effect for this record,
	// from both block and per-line configuration.
	Config map[string]*Config

	// Result holds this record's (unit, value) metrics, e.g.
	// Result["mark-ns"] or Result["objects-freed"].
	Result map[string]float64
}

// Config is a single configuration key's value.
type Config struct {
	// RawValue is the value exactly as written in the results file.
	RawValue string

	// InBlock records whether this value came from a configuration
	// block line rather than the benchmark line itself.
	InBlock bool

	// Value is RawValue parsed into a structured type by ParseValues,
	// or nil until ParseValues has run. cmd/tgcbench uses this to read
	// the heap size back out of a "size:N" path config as an int
	// instead of re-parsing the string itself.
	Value interface{}
}

var configRe = regexp.MustCompile(`^(\p{Ll}[^\p{Lu}\s\x85\xa0\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}]*):(?:[ \t]+(.*))?$`)

// Parse reads a benchmark results file from r and returns one *Record
// per benchmark result line. A benchmark name may recur, one Record per
// run.
func Parse(r io.Reader) ([]*Record, error) {
	var records []*Record
	config := make(map[string]*Config)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if line == "testing: warning: no tests to run" {
			continue
		}

		if m := configRe.FindStringSubmatch(line); m != nil {
			config[m[1]] = &Config{RawValue: m[2], InBlock: true}
			continue
		}

		if strings.HasPrefix(line, "Benchmark") {
			if rec := parseRecord(line, config); rec != nil {
				records = append(records, rec)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func parseRecord(line string, gconfig map[string]*Config) *Record {
	f := strings.Fields(line)
	if len(f) < 4 {
		return nil
	}
	if f[0] != "Benchmark" {
		next, _ := utf8.DecodeRuneInString(f[0][len("Benchmark"):])
		if !unicode.IsUpper(next) {
			return nil
		}
	}

	rec := &Record{
		Config: make(map[string]*Config),
		Result: make(map[string]float64),
	}
	for k, v := range gconfig {
		rec.Config[k] = v
	}

	name := strings.TrimPrefix(f[0], "Benchmark")
	if strings.Contains(name, "/") {
		parts := strings.Split(name, "/")
		rec.Name = parts[0]
		for _, part := range parts[1:] {
			if i := strings.Index(part, ":"); i >= 0 {
				k, v := part[:i], part[i+1:]
				rec.Config[k] = &Config{RawValue: v}
			}
		}
	} else if i := strings.LastIndex(name, "-"); i >= 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			rec.Name = name[:i]
			rec.Config["gomaxprocs"] = &Config{RawValue: name[i+1:]}
		} else {
			rec.Name = name
		}
	} else {
		rec.Name = name
	}
	if rec.Config["gomaxprocs"] == nil {
		rec.Config["gomaxprocs"] = &Config{RawValue: "1"}
	}

	n, err := strconv.Atoi(f[1])
	if err != nil || n <= 0 {
		return nil
	}
	rec.Iterations = n

	for i := 2; i+2 <= len(f); i += 2 {
		val, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			continue
		}
		rec.Result[f[i+1]] = val
	}

	return rec
}

// ValueParser parses a raw config string into a structured value, or
// returns an error if it doesn't recognize the format.
type ValueParser func(string) (interface{}, error)

// DefaultValueParsers is the parser sequence ParseValues tries, in
// order, for each configuration key: integer, then float, then Go
// duration syntax. cmd/tgcbench's own "size:N" config falls out as an
// int from the first parser; nothing this package emits needs the
// other two, but a config key from another tool's results file (e.g.
// "timeout: 2m") can still round-trip.
var DefaultValueParsers = []ValueParser{
	func(s string) (interface{}, error) { return strconv.Atoi(s) },
	func(s string) (interface{}, error) { return strconv.ParseFloat(s, 64) },
	func(s string) (interface{}, error) { return time.ParseDuration(s) },
}

// ParseValues fills in Value for every Config in records, using the
// first parser in valueParsers (DefaultValueParsers if nil) that can
// parse every record's raw value for that key. A key none of the
// parsers can fully handle is left as its raw string.
func ParseValues(records []*Record, valueParsers []ValueParser) {
	if valueParsers == nil {
		valueParsers = DefaultValueParsers
	}

	keys := map[string]bool{}
	for _, rec := range records {
		for k := range rec.Config {
			keys[k] = true
		}
	}

	for key := range keys {
		good := false
	tryParsers:
		for _, vp := range valueParsers {
			for _, rec := range records {
				if c, ok := rec.Config[key]; ok {
					c.Value = nil
				}
			}

			good = true
			for _, rec := range records {
				c, ok := rec.Config[key]
				if !ok || c.Value != nil {
					continue
				}
				v, err := vp(c.RawValue)
				if err != nil {
					good = false
					break
				}
				c.Value = v
			}
			if good {
				break tryParsers
			}
		}
		if !good {
			for _, rec := range records {
				if c, ok := rec.Config[key]; ok {
					c.Value = c.RawValue
				}
			}
		}
	}
}
