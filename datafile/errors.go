// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package datafile

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("bad data file format")

	// ErrUnsupportedFileType is returned for files without the data file suffix.
	ErrUnsupportedFileType = errors.New("file type not recognized")
)

// FormatError is an error in a stanza of a data file.
type FormatError struct {
	// File is the name of the data file.
	File string
	// Stanza is the 1-based position of the stanza in File.
	Stanza int
	// Reason describes what is wrong with the stanza.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s in stanza %d in %s", e.Reason, e.Stanza, e.File)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
