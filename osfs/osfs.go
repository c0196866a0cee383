// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS Filesystem access.
package osfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/psadeps/o11y/iometrics"
)

const (
	// BackupSuffix is appended to the name of a replaced file to keep
	// its previous version.
	BackupSuffix = ".bak"

	tmpSuffix = ".tmp"

	slowOp = 1 * time.Minute
)

// OSFS provides OS Filesystem access.
// It counts metrics by iometrics.
type OSFS struct {
	*iometrics.IOMetrics
}

// New creates new OSFS.
func New(name string) *OSFS {
	return &OSFS{IOMetrics: iometrics.New(name)}
}

func logSlow(ctx context.Context, name string, dur time.Duration, err error) {
	buf := make([]byte, 4*1024)
	n := runtime.Stack(buf, false)
	log.Warnf("slow op %s: %s %v\n%s", name, dur, err, buf[:n])
}

// ReadFile reads the named file and returns the contents.
func (fsys *OSFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	started := time.Now()
	buf, err := os.ReadFile(name)
	fsys.ReadDone(len(buf), err)
	if dur := time.Since(started); dur > slowOp {
		logSlow(ctx, name, dur, err)
	}
	return buf, err
}

// ReplaceFile replaces the named file with data.
//
// data is written to name+".tmp" first. The existing file is renamed
// to name+".bak" and then name+".tmp" is renamed to name, so name is
// never partially written. The new file gets the permission bits of
// the old one.
func (fsys *OSFS) ReplaceFile(ctx context.Context, name string, data []byte) error {
	started := time.Now()
	defer func() {
		if dur := time.Since(started); dur > slowOp {
			logSlow(ctx, name, dur, nil)
		}
	}()
	fi, err := os.Stat(name)
	if err != nil {
		return err
	}
	tmp := name + tmpSuffix
	err = fsys.writeFile(tmp, data, fi.Mode().Perm())
	if err != nil {
		fsys.remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	backup := name + BackupSuffix
	err = fsys.rename(name, backup)
	if err != nil {
		fsys.remove(tmp)
		return fmt.Errorf("failed to back up %s: %w", name, err)
	}
	err = fsys.rename(tmp, name)
	if err != nil {
		return fmt.Errorf("failed to replace %s (previous content in %s): %w", name, backup, err)
	}
	return nil
}

func (fsys *OSFS) writeFile(name string, data []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		fsys.WriteDone(0, err)
		return err
	}
	defer f.Close()
	n, err := f.Write(data)
	if err == nil {
		err = f.Close()
	}
	fsys.WriteDone(n, err)
	return err
}

func (fsys *OSFS) rename(oldpath, newpath string) error {
	err := os.Rename(oldpath, newpath)
	fsys.RenameDone(err)
	return err
}

func (fsys *OSFS) remove(name string) {
	err := os.Remove(name)
	fsys.RemoveDone(err)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("failed to remove %s: %v", name, err)
	}
}
