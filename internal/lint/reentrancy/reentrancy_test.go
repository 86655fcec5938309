// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reentrancy

import (
	"strings"
	"testing"
)

func TestCleanPackageHasNoFindings(t *testing.T) {
	findings, err := Check([]string{"github.com/aclements/tgc/cmd/tgclist"})
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings in a clean package, want 0: %+v", len(findings), findings)
	}
}

func TestReentrantFreeIsDetected(t *testing.T) {
	findings, err := Check([]string{"github.com/aclements/tgc/internal/lint/reentrancy/testdata/badfree"})
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) == 0 {
		t.Fatal("got 0 findings for a reentrant Free callback, want at least 1")
	}
	found := false
	for _, f := range findings {
		if strings.HasSuffix(f.Target, ".Protect") || strings.HasSuffix(f.Target, ".InitObject") {
			found = true
		}
	}
	if !found {
		t.Errorf("no finding names Protect or InitObject as the reached operation: %+v", findings)
	}
}
