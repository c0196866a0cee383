// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package datafile

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/psadeps/deps"
	"go.chromium.org/infra/build/psadeps/osfs"
)

// Suffix is the file name suffix of test suite data files.
const Suffix = ".data"

// Result is the outcome of rewriting a data file.
type Result struct {
	Name string
	Old  string
	New  string
}

// Changed reports whether rewriting changed the content.
func (r Result) Changed() bool {
	return r.Old != r.New
}

// Updater updates the dependencies of data files.
type Updater struct {
	FS     *osfs.OSFS
	Policy *deps.Policy
}

// Check reads fname and rewrites its content without touching the file.
func (u *Updater) Check(ctx context.Context, fname string) (Result, error) {
	if !strings.HasSuffix(fname, Suffix) {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fname)
	}
	buf, err := u.FS.ReadFile(ctx, fname)
	if err != nil {
		return Result{}, err
	}
	r := Result{
		Name: fname,
		Old:  string(buf),
	}
	r.New, err = Rewrite(fname, r.Old, u.Policy)
	if err != nil {
		return Result{}, err
	}
	return r, nil
}

// Update updates the dependencies in fname.
//
// The previous version is renamed to fname+".bak". The file is not
// modified if the content is unchanged.
func (u *Updater) Update(ctx context.Context, fname string) (Result, error) {
	r, err := u.Check(ctx, fname)
	if err != nil {
		return Result{}, err
	}
	if !r.Changed() {
		log.Debugf("%s: up to date", fname)
		return r, nil
	}
	err = u.FS.ReplaceFile(ctx, fname, []byte(r.New))
	if err != nil {
		return Result{}, err
	}
	log.Infof("%s: updated", fname)
	return r, nil
}
