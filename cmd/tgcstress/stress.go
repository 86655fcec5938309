// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"
)

// A Stress stress tests a workload command.
type Stress struct {
	Command     []string
	Parallelism int
	Timeout     time.Duration
	OutDir      string

	MaxPasses    int // If 0, no limit
	MaxFails     int
	MaxRuns      int // Limit on passes+fails (but not flakes)
	MaxTotalRuns int // Limit on all types of runs

	FailRe *regexp.Regexp
	PassRe *regexp.Regexp

	Interrupt <-chan struct{}
}

// StressReporter receives live status updates and the workload's raw
// output as Run streams it.
type StressReporter interface {
	io.Writer
	StartStatus()
	StopStatus()
	Status(format string, args ...interface{})
}

type startRun struct {
	id int64
}

type result struct {
	id     int64
	output *os.File
	status *os.ProcessState // nil on timeout
	err    error            // non-nil if the command never started
}

// ResultKind classifies the outcome of one workload run.
type ResultKind int

const (
	ResultPass ResultKind = iota
	ResultFail
	ResultFlake
	ResultTimeout
)

// violationPattern recognizes a collector invariant violation in a
// workload's own report of its failure: a mutator catching itself
// looking at a freed object, a weak reference resolved before or
// after it should have been, or a pinned object the collector
// reclaimed anyway. It plays no part in pass/fail classification
// (resultKind uses the exit status or -pass/-fail); violationKind runs
// it over the output of every failed or timed-out run to name what was
// logged.
var violationPattern = regexp.MustCompile(
	`(?i)use.after.free|double.?free|premature weak (?:resolution|resolve)|pinned? object (?:freed|reclaimed)`)

// violationKind returns a short, filename-safe name for the
// collector invariant violationPattern recognizes in output, or ""
// if output doesn't name one. Run uses this to tag a failure's saved
// log and status-line count with what actually went wrong instead of
// a bare sequence number.
func violationKind(output []byte) string {
	m := violationPattern.Find(output)
	if m == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToLower(string(m)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// resultKind applies tgcstress's pass/fail/flake convention: exit 0
// (or a -pass match) is a pass, any other exit status except 125 (or
// a -fail match) is a failure, and everything else is a flake. A run
// with no exit status (a timeout) is ResultTimeout, which Run counts
// separately from passes, failures and flakes. Status 125 is reserved
// for "inconclusive" the way `git bisect run` and `find -exec` use it.
func (s *Stress) resultKind(res result, output []byte) ResultKind {
	switch {
	case res.status == nil:
		return ResultTimeout
	case s.PassRe == nil && res.status.Success(),
		s.PassRe != nil && s.PassRe.Match(output):
		return ResultPass
	case s.FailRe == nil && res.status.ExitCode() != 125,
		s.FailRe != nil && s.FailRe.Match(output):
		return ResultFail
	default:
		return ResultFlake
	}
}

// Run drives s.Parallelism concurrent workers running the workload
// until an exit condition is reached (a -max-* limit, an interrupt, or
// a fatal error starting the command) and returns the overall verdict.
func (s *Stress) Run(reporter StressReporter) ResultKind {
	const maxInt = int(^uint(0) >> 1)
	for _, limit := range []*int{&s.MaxPasses, &s.MaxFails, &s.MaxRuns, &s.MaxTotalRuns} {
		if *limit <= 0 {
			*limit = maxInt
		}
	}

	start := make(chan startRun, s.Parallelism)
	stop := make(chan struct{})
	results := make(chan result, s.Parallelism)
	var id int64
	activeStartTimes := make(map[int64]time.Time)

	reporter.StartStatus()

	var wg sync.WaitGroup
	for i := 0; i < s.Parallelism; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runner(start, stop, results)
		}()
		start <- startRun{id}
		activeStartTimes[id] = time.Now()
		id++
	}

	fatal := false
	totalRuns := 0
	counts := make(map[ResultKind]int)
	violationCounts := make(map[string]int)
	logIdxPass, logIdxFail, logIdxFlake := 0, 0, 0
	logIdxByViolation := make(map[string]*int)
	var passFailTime time.Duration
	updateStatus := func() {
		buf := new(bytes.Buffer)
		fmt.Fprintf(buf, "%d passes, %d fails", counts[ResultPass], counts[ResultFail])
		if n := counts[ResultFlake]; n > 0 {
			fmt.Fprintf(buf, ", %d flakes", n)
		}
		if n := counts[ResultTimeout]; n > 0 {
			fmt.Fprintf(buf, ", %d timeouts", n)
		}
		var kinds []string
		for k := range violationCounts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(buf, ", %d %s", violationCounts[k], k)
		}
		var avg interface{} = "?"
		if passFail := counts[ResultPass] + counts[ResultFail]; passFail > 0 {
			avg = (passFailTime / time.Duration(passFail)).Round(time.Second)
		}
		var oldest time.Time
		for _, t := range activeStartTimes {
			if oldest.IsZero() || t.Before(oldest) {
				oldest = t
			}
		}
		var maxActive time.Duration
		if !oldest.IsZero() {
			maxActive = time.Since(oldest).Round(time.Second)
		}
		reporter.Status("%s, avg %s, max active %s", buf.String(), avg, maxActive)
	}

loop:
	for {
		updateStatus()

		var res result
		select {
		case res = <-results:
		case <-s.Interrupt:
			break loop
		}

		if res.err != nil {
			log.Printf("error starting workload: %s", res.err)
			fatal = true
			break
		}

		if _, err := res.output.Seek(0, 0); err != nil {
			log.Printf("error seeking log file: %s", err)
			fatal = true
			break
		}
		output, err := ioutil.ReadAll(res.output)
		if err != nil {
			log.Printf("error reading log file: %s", err)
			fatal = true
			break
		}
		logPath := res.output.Name()
		if err := res.output.Close(); err != nil {
			log.Printf("error saving log file: %s", err)
			fatal = true
			break
		}

		kind := s.resultKind(res, output)
		totalRuns++
		counts[kind]++

		duration := time.Since(activeStartTimes[res.id])
		delete(activeStartTimes, res.id)
		if kind == ResultPass || kind == ResultFail {
			passFailTime += duration
		}

		vkind := ""
		if kind == ResultFail || kind == ResultTimeout {
			vkind = violationKind(output)
			if vkind != "" {
				violationCounts[vkind]++
			}
		}

		var prefix string
		var logIdx *int
		switch {
		case kind == ResultPass:
			prefix, logIdx = ".pass-", &logIdxPass
		case kind == ResultFlake:
			prefix, logIdx = "flake-", &logIdxFlake
		case vkind != "":
			idx, ok := logIdxByViolation[vkind]
			if !ok {
				idx = new(int)
				logIdxByViolation[vkind] = idx
			}
			prefix, logIdx = vkind+"-", idx
		default:
			prefix, logIdx = "", &logIdxFail
		}
		savedPath, err := saveLog(s.OutDir, prefix, logIdx, logPath)
		if err != nil {
			log.Printf("error saving log: %s", err)
			fatal = true
			break
		}

		if kind != ResultPass {
			printTail(reporter, output)
			fmt.Fprintf(reporter, "full output written to %s\n", savedPath)
		}

		if totalRuns >= s.MaxTotalRuns ||
			counts[ResultPass]+counts[ResultFail] >= s.MaxRuns ||
			counts[ResultPass] >= s.MaxPasses ||
			counts[ResultFail] >= s.MaxFails {
			break
		}

		start <- startRun{id}
		activeStartTimes[id] = time.Now()
		id++
	}
	updateStatus()
	reporter.StopStatus()

	fmt.Fprintf(reporter, "stopping workloads...\n")
	close(start)
	close(stop)
	wg.Wait()

	switch {
	case fatal:
		return ResultFlake
	case counts[ResultFail] > 0:
		return ResultFail
	case counts[ResultPass] > 0:
		return ResultPass
	default:
		return ResultFlake
	}
}

func (s *Stress) runner(start <-chan startRun, stop <-chan struct{}, results chan<- result) {
	for tok := range start {
		if !s.run1(tok, stop, results) {
			return
		}
	}
}

// run1 runs one instance of the workload to completion, under a
// timeout, and reports its outcome on results. It returns false if
// stop fired before the run completed, telling runner to stop
// starting new runs.
func (s *Stress) run1(tok startRun, stop <-chan struct{}, results chan<- result) bool {
	name := path.Join(s.OutDir, fmt.Sprintf(".run-%06d", tok.id))
	f, err := os.Create(name)
	if err != nil {
		results <- result{id: tok.id, err: err}
		return true
	}
	deleteFile := true
	defer func() {
		if deleteFile {
			f.Close()
			os.Remove(name)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	type outcome struct {
		status *os.ProcessState
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		status, err := runWorkload(ctx, s.Command, f)
		done <- outcome{status, err}
	}()

	select {
	case <-stop:
		cancel()
		<-done
		return false

	case out := <-done:
		if out.err != nil {
			results <- result{id: tok.id, err: out.err}
			return true
		}
		if ctx.Err() == context.DeadlineExceeded {
			fmt.Fprintf(f, "timeout after %s\n", s.Timeout)
			deleteFile = false
			results <- result{id: tok.id, output: f}
			return true
		}
		if !out.status.Success() {
			fmt.Fprintf(f, "exited: %s\n", formatProcessState(out.status))
		}
		deleteFile = false
		results <- result{id: tok.id, output: f, status: out.status}
		return true
	}
}

func saveLog(outDir, prefix string, idx *int, oldName string) (string, error) {
	var name string
	for {
		name = path.Join(outDir, fmt.Sprintf("%s%06d", prefix, *idx))
		*idx++
		err := os.Link(oldName, name)
		if err == nil {
			break
		} else if !os.IsExist(err) {
			return "", err
		}
	}
	os.Remove(oldName)
	return name, nil
}

func printTail(w io.Writer, data []byte) {
	const maxLines = 10
	const maxRunes = maxLines * 100

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data[:len(data):len(data)], '\n')
	}

	pos := len(data)
	lastNL := len(data)
	lineCount := -1
	runeCount := 0
	for pos > 0 {
		bol := bytes.LastIndexByte(data[:lastNL], '\n') + 1

		runeCount += utf8.RuneCount(data[bol:lastNL])
		if runeCount > maxRunes {
			break
		}

		pos = bol
		lastNL = pos - 1
		lineCount++
		if lineCount >= maxLines {
			break
		}
	}

	w.Write(data[pos:])
}

func formatProcessState(state *os.ProcessState) string {
	s := state.Sys().(syscall.WaitStatus)
	switch {
	case s.Exited():
		return fmt.Sprintf("status %d", s.ExitStatus())
	case s.Signaled():
		extra := ""
		if s.CoreDump() {
			extra = " (dumped core)"
		}
		return fmt.Sprintf("signal %s%s", s.Signal(), extra)
	default:
		return fmt.Sprintf("unknown wait status %v", s)
	}
}
