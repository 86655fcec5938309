// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// runWorkload starts args as a new process in its own process group,
// with both stdout and stderr directed to out, and blocks until it
// exits. If ctx is canceled first, runWorkload kills the whole
// process group -- escalating from traceSignal (if set) to
// os.Interrupt to os.Kill -- and still waits for and returns the
// resulting exit state.
//
// The workload may start subprocesses of its own and may exit before
// they do; a still-running subprocess can keep the output file open
// and keep writing to it. Putting the workload in its own process
// group lets a kill reach that whole tree, not just the direct child.
func runWorkload(ctx context.Context, args []string, out *os.File) (*os.ProcessState, error) {
	cmd := exec.Command(args[0], args[1:]...)

	// Terminal signals like SIGINT won't automatically reach this new
	// process group; main.go forwards them into ctx instead.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			killGroup(cmd.Process, done)
		case <-done:
		}
	}()

	err := cmd.Wait()
	close(done)
	switch err.(type) {
	case nil, *exec.ExitError:
		return cmd.ProcessState, nil
	default:
		return nil, err
	}
}

// killGroup kills proc's whole process group, escalating through
// traceSignal (if non-nil), os.Interrupt, and os.Kill, giving the
// group up to 10 seconds to exit after each before trying the next.
// done should be closed once the caller's Wait returns, so killGroup
// can stop escalating as soon as the process is actually gone.
func killGroup(proc *os.Process, done <-chan struct{}) {
	sigProc, err := os.FindProcess(-proc.Pid)
	if err != nil {
		// Fall back to signaling just the one process.
		sigProc = proc
	}

	for _, sig := range []os.Signal{traceSignal, os.Interrupt, os.Kill} {
		if sig == nil {
			continue
		}
		if sigProc.Signal(sig) != nil {
			// Every member of the group has already exited.
			return
		}
		select {
		case <-done:
			return
		case <-time.After(10 * time.Second):
		}
	}
}
