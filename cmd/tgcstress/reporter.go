// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh/terminal"
)

// NewStdoutReporter returns a StressReporter that draws a live,
// redrawn-in-place status line on an interactive terminal, or falls
// back to one status line per update when stdout isn't a terminal
// (e.g. under a CI log collector).
func NewStdoutReporter() StressReporter {
	interactive := os.Getenv("TERM") != "" && os.Getenv("TERM") != "dumb" &&
		terminal.IsTerminal(int(os.Stdout.Fd()))
	return &statusReporter{w: os.Stdout, interactive: interactive}
}

// statusReporter is a StressReporter whose status line is redrawn in
// place with VT100 escapes on an interactive terminal, or simply
// printed once per update otherwise.
type statusReporter struct {
	w           io.Writer
	interactive bool

	stop   chan struct{}
	update chan string
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func (r *statusReporter) StartStatus() {
	if !r.interactive {
		return
	}
	r.stop = make(chan struct{})
	r.update = make(chan string)
	r.wg.Add(1)
	go r.run()
}

func (r *statusReporter) StopStatus() {
	if !r.interactive {
		return
	}
	close(r.stop)
	r.wg.Wait()
}

func (r *statusReporter) Status(format string, args ...interface{}) {
	if !r.interactive {
		fmt.Fprintf(r.w, format+"\n", args...)
		return
	}
	r.update <- fmt.Sprintf(format, args...)
}

// VT100 control sequences used to redraw the status line in place.
const (
	resetLine = "\r\x1b[2K"
	wrapOff   = "\x1b[?7l"
	moveEOL   = "\x1b[999C"
	wrapOn    = "\x1b[?7h"
)

func (r *statusReporter) Write(data []byte) (int, error) {
	if !r.interactive {
		return r.w.Write(data)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s%s", resetLine, wrapOn)
	return r.w.Write(data)
}

func (r *statusReporter) run() {
	const ticker = "-\\|/"

	i := 0
	status := ""
	tick := time.NewTicker(time.Second / 2)
	defer func() {
		tick.Stop()
		r.mu.Lock()
		fmt.Fprintf(r.w, "%s%s%s%s\n", resetLine, wrapOff, status, wrapOn)
		r.mu.Unlock()
		r.wg.Done()
	}()

	for {
		r.mu.Lock()
		fmt.Fprintf(r.w, "%s%s%s%s%c", resetLine, wrapOff, status, moveEOL, ticker[i%len(ticker)])
		r.mu.Unlock()

		select {
		case <-tick.C:
			i++
		case status = <-r.update:
		case <-r.stop:
			return
		}
	}
}
