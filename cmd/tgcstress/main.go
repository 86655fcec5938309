// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tgcstress runs a mutator workload repeatedly and in parallel
// looking for a collector bug that only shows up rarely: a use of a
// freed object, a weak reference resolved too early or too late, a
// pinned object reclaimed anyway. The workload is an external command
// that exercises tgc and exits non-zero (or matches -fail) when it
// catches itself in a bad state.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] -workload 'cmd args...'

tgcstress runs the -workload command repeatedly and in parallel and
collects failures.

If the workload exits with status 0, it is considered a pass. If it
exits with any non-zero status besides 125, it is considered a
failure. If it exits with status 125 or doesn't match the pass/fail
regexps, it is considered a flake. If it times out, it is counted as a
timeout, which, like a flake, is neither a pass nor a failure.

If -pass or -fail regular expressions are provided, they override
pass/fail exit status checking.

A failing or timed-out run whose output names a recognized collector
invariant violation (use-after-free, double-free, a weak reference
resolved too early, a pinned object reclaimed) is tagged with that
violation in its saved log name and in the running pass/fail counts,
instead of a bare sequence number.

The -max-* flags cause tgcstress to exit after some number of passes,
failures, or total runs. This is useful for bisecting a known flaky
failure down to a minimal reproduction.

`, os.Args[0])
		flag.PrintDefaults()
	}

	var s Stress
	var workload string
	flag.StringVar(&workload, "workload", "", "shell-quoted mutator `command` to stress")
	flag.IntVar(&s.Parallelism, "p", runtime.NumCPU(), "run `N` workloads in parallel")
	flag.DurationVar(&s.Timeout, "timeout", 2*time.Minute, "timeout each workload run after `duration`")
	defaultDir := filepath.Join(os.TempDir(), time.Now().Format("tgcstress-20060102T150405"))
	flag.StringVar(&s.OutDir, "o", defaultDir, "output failure logs to `directory`")
	flag.Var(FlagLimit{&s.MaxRuns}, "max-runs", "exit after `N` passes+fails (but not flakes)")
	flag.Var(FlagLimit{&s.MaxTotalRuns}, "max-total-runs", "exit after `N` runs with any outcome")
	flag.Var(FlagLimit{&s.MaxPasses}, "max-passes", "exit after `N` successful runs")
	flag.Var(FlagLimit{&s.MaxFails}, "max-fails", "exit after `N` failed runs")
	flag.Var(FlagRegexp{&s.FailRe}, "fail", "fail only if output matches `regexp`")
	flag.Var(FlagRegexp{&s.PassRe}, "pass", "pass only if output matches `regexp`")
	flag.Parse()
	if flag.NArg() != 0 || workload == "" {
		flag.Usage()
		os.Exit(2)
	}

	args, err := shellquote.Split(workload)
	if err != nil {
		log.Fatalf("parsing -workload: %s", err)
	}
	s.Command = args

	if s.Parallelism <= 0 || s.Timeout <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	if err := os.MkdirAll(s.OutDir, 0777); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("output to: %s\n", s.OutDir)

	// Workloads run in their own process group (see cmd.go), so
	// terminal signals like SIGINT won't reach them automatically.
	// Catch them here and shut down the worker pool cleanly instead
	// of leaving orphaned mutator processes running.
	interrupt := make(chan struct{})
	s.Interrupt = interrupt
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, exitSignals...)
	go func() {
		<-sig
		signal.Stop(sig)
		close(interrupt)
	}()

	result := s.Run(NewStdoutReporter())

	switch result {
	case ResultPass:
		os.Exit(0)
	case ResultFail:
		os.Exit(1)
	case ResultFlake:
		os.Exit(125)
	}
}

// FlagLimit is a flag.Value for a run-count limit, where 0 (or
// "inf"/"infinity"/"none") means unlimited.
type FlagLimit struct {
	x *int
}

func (f FlagLimit) String() string {
	if f.x == nil {
		return "<nil>"
	}
	if *f.x <= 0 {
		return "infinity"
	}
	return strconv.FormatInt(int64(*f.x), 10)
}

func (f FlagLimit) Set(x string) error {
	switch x {
	case "inf", "infinity", "none":
		*f.x = 0
		return nil
	}
	limit, err := strconv.ParseInt(x, 10, 0)
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be > 0")
	}
	*f.x = int(limit)
	return nil
}

// FlagRegexp is a flag.Value for an optional compiled regexp.
type FlagRegexp struct {
	x **regexp.Regexp
}

func (f FlagRegexp) String() string {
	if f.x == nil || *f.x == nil {
		return ""
	}
	return (*f.x).String()
}

func (f FlagRegexp) Set(x string) error {
	re, err := regexp.Compile(x)
	if err != nil {
		return err
	}
	*f.x = re
	return nil
}
