// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
)

func mustTempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "tgcstress-test")
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestPrintTail(t *testing.T) {
	check := func(t *testing.T, data, want string) {
		t.Helper()
		var got strings.Builder
		printTail(&got, []byte(data))
		if got.String() != want {
			t.Errorf("for:\n%s\ngot:\n%s\nwant:\n%s", data, got.String(), want)
		}
	}

	check(t, "", "")
	check(t, "a", "a\n")
	check(t, "a\nb\n", "a\nb\n")

	a20 := strings.Repeat("a\n", 20)
	check(t, a20, strings.Repeat("a\n", 10))
	check(t, a20[:len(a20)-1], strings.Repeat("a\n", 10))

	long := strings.Repeat("a", 2000) + "\n"
	check(t, long, "")
	long += "x\n"
	check(t, long, "x\n")
}

func TestResultKind(t *testing.T) {
	var s Stress
	runExit := func(code int) result {
		status, err := runWorkload(context.Background(),
			[]string{"/bin/sh", "-c", "exit " + strconv.Itoa(code)}, mustTempFile(t))
		if err != nil {
			t.Fatal(err)
		}
		return result{status: status}
	}

	if kind := s.resultKind(runExit(0), nil); kind != ResultPass {
		t.Errorf("exit 0: got %v, want ResultPass", kind)
	}
	if kind := s.resultKind(runExit(1), nil); kind != ResultFail {
		t.Errorf("exit 1: got %v, want ResultFail", kind)
	}
	if kind := s.resultKind(runExit(125), nil); kind != ResultFlake {
		t.Errorf("exit 125: got %v, want ResultFlake", kind)
	}
	if kind := s.resultKind(result{}, nil); kind != ResultTimeout {
		t.Errorf("nil status: got %v, want ResultTimeout", kind)
	}
}

func TestRunWorkloadKill(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		status, err := runWorkload(ctx, []string{"/bin/sh", "-c", "sleep 60"}, mustTempFile(t))
		if err != nil {
			t.Error(err)
			return
		}
		if status.Success() {
			t.Error("killed workload reported success")
		}
	}()
	cancel()
	<-done
}

func TestViolationKind(t *testing.T) {
	cases := []struct {
		output string
		want   string
	}{
		{"panic: use-after-free at 0xc0001", "useafterfree"},
		{"fatal: double free of object 12", "doublefree"},
		{"weak ref resolved early: premature weak resolution", "prematureweakresolution"},
		{"invariant violated: pinned object reclaimed", "pinnedobjectreclaimed"},
		{"exit status 1", ""},
	}
	for _, c := range cases {
		if got := violationKind([]byte(c.output)); got != c.want {
			t.Errorf("violationKind(%q) = %q, want %q", c.output, got, c.want)
		}
	}
}
