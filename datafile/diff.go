// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package datafile

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns the unified diff of the rewrite.
// It is empty when nothing changed.
func (r Result) Diff() (string, error) {
	if !r.Changed() {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.Old),
		B:        difflib.SplitLines(r.New),
		FromFile: "a/" + r.Name,
		ToFile:   "b/" + r.Name,
		Context:  3,
	})
}
