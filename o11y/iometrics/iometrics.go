// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iometrics counts file I/O done while updating data files.
package iometrics

import (
	"fmt"
	"sync/atomic"
)

// counter counts operations, their bytes and their errors.
type counter struct {
	ops   atomic.Int64
	bytes atomic.Int64
	errs  atomic.Int64
}

func (c *counter) done(n int, err error) {
	c.ops.Add(1)
	c.bytes.Add(int64(n))
	if err != nil {
		c.errs.Add(1)
	}
}

func (c *counter) count() Count {
	return Count{
		Ops:   c.ops.Load(),
		Bytes: c.bytes.Load(),
		Errs:  c.errs.Load(),
	}
}

// IOMetrics holds I/O metrics.
// A nil *IOMetrics ignores all counts.
type IOMetrics struct {
	name string

	reads   counter
	writes  counter
	renames counter
	removes counter
}

// New returns new iometrics for name.
func New(name string) *IOMetrics {
	return &IOMetrics{name: name}
}

// Name returns the name of the iometrics.
func (m *IOMetrics) Name() string {
	if m == nil {
		return "<nil>"
	}
	return m.name
}

// ReadDone counts a file read of n bytes. err is the read error.
func (m *IOMetrics) ReadDone(n int, err error) {
	if m == nil {
		return
	}
	m.reads.done(n, err)
}

// WriteDone counts a file write of n bytes. err is the write error.
func (m *IOMetrics) WriteDone(n int, err error) {
	if m == nil {
		return
	}
	m.writes.done(n, err)
}

// RenameDone counts a rename. err is the rename error.
func (m *IOMetrics) RenameDone(err error) {
	if m == nil {
		return
	}
	m.renames.done(0, err)
}

// RemoveDone counts a file removal. err is the removal error.
func (m *IOMetrics) RemoveDone(err error) {
	if m == nil {
		return
	}
	m.removes.done(0, err)
}

// Count is a snapshot of one kind of operation.
type Count struct {
	Ops   int64
	Bytes int64
	Errs  int64
}

// Stats holds iometrics.
type Stats struct {
	Reads   Count
	Writes  Count
	Renames Count
	Removes Count
}

// Stats returns the snapshot of the iometrics.
func (m *IOMetrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		Reads:   m.reads.count(),
		Writes:  m.writes.count(),
		Renames: m.renames.count(),
		Removes: m.removes.count(),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("read=%d(%dB,err=%d) write=%d(%dB,err=%d) rename=%d(err=%d) remove=%d(err=%d)",
		s.Reads.Ops, s.Reads.Bytes, s.Reads.Errs,
		s.Writes.Ops, s.Writes.Bytes, s.Writes.Errs,
		s.Renames.Ops, s.Renames.Errs,
		s.Removes.Ops, s.Removes.Errs)
}
