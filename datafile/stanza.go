// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package datafile rewrites the dependencies of Mbed TLS test suite
// data files (*.data).
//
// A data file is a sequence of stanzas separated by a blank line.
// Each stanza has, besides comments, a description line, an optional
// dependency line and a function-and-arguments line:
//
//	# comment
//	Test case description
//	depends_on:PSA_WANT_ALG_SHA_256:MBEDTLS_FOO
//	test_function:PSA_ALG_SHA_256:"0011"
//
// Rewriting only touches the dependency line.
package datafile

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/psadeps/deps"
)

const (
	// stanzaSeparator separates stanzas in a data file.
	stanzaSeparator = "\n\n"

	// dependsOnLeader starts the dependency line of a stanza.
	dependsOnLeader = "depends_on:"
)

// span is a line in a stanza, as [start, end) excluding the newline.
type span struct {
	start, end int
}

// contentLines returns the lines of stanza that are neither blank
// nor comments.
func contentLines(stanza string) []span {
	var lines []span
	for start := 0; start < len(stanza); {
		end := strings.IndexByte(stanza[start:], '\n')
		if end < 0 {
			end = len(stanza)
		} else {
			end += start
		}
		line := strings.TrimLeft(stanza[start:end], "\t ")
		if line != "" && line[0] != '#' {
			lines = append(lines, span{start: start, end: end})
		}
		start = end + 1
	}
	return lines
}

// ProcessStanza updates the dependencies of the n-th test case in fileName.
//
// stanza is the test case text, including the description, the
// dependencies, the line with the function and arguments, and
// optionally comments. It returns the stanza with an updated dependency
// line, preserving everything else.
func ProcessStanza(stanza, fileName string, n int, policy *deps.Policy) (string, error) {
	if strings.TrimLeft(stanza, "\n") == "" {
		return stanza, nil
	}
	lines := contentLines(stanza)
	switch {
	case len(lines) < 2:
		return "", &FormatError{File: fileName, Stanza: n, Reason: "not enough content lines"}
	case len(lines) > 3:
		return "", &FormatError{File: fileName, Stanza: n, Reason: "too many content lines"}
	}
	call := lines[len(lines)-1]
	arguments := strings.Split(stanza[call.start:call.end], ":")
	functionName := arguments[0]
	arguments = arguments[1:]
	keep, err := policy.KeepManual(fileName, functionName, arguments)
	if err != nil {
		return "", fmt.Errorf("stanza %d in %s: %w", n, fileName, err)
	}
	if keep {
		log.Debugf("%s:%d: keep manual dependencies of %s", fileName, n, functionName)
		return stanza, nil
	}

	// after always starts with the newline that ends the dependency line.
	var before, after string
	var oldDeps []string
	if len(lines) == 2 {
		before = stanza[:call.start]
		after = "\n" + stanza[call.start:]
	} else {
		dl := lines[1]
		before = stanza[:dl.start]
		after = stanza[dl.end:]
		fields := strings.Split(stanza[dl.start:dl.end], ":")
		if fields[0]+":" != dependsOnLeader {
			return "", &FormatError{File: fileName, Stanza: n, Reason: `next-to-last line does not start with "depends_on:"`}
		}
		oldDeps = fields[1:]
	}
	newDeps := policy.Updated(fileName, functionName, arguments, oldDeps)
	log.Debugf("%s:%d: %s %q => %q", fileName, n, functionName, oldDeps, newDeps)
	if len(newDeps) == 0 {
		return before + after[1:], nil
	}
	return before + dependsOnLeader + strings.Join(newDeps, ":") + after, nil
}

// Rewrite updates the dependencies of all test cases in content,
// the content of fileName, and returns the new content.
//
// Stanzas are split on exactly one blank line. A run of more blank
// lines leaves newlines at the start of the next stanza, which are
// kept as is.
func Rewrite(fileName, content string, policy *deps.Policy) (string, error) {
	stanzas := strings.Split(content, stanzaSeparator)
	for i, stanza := range stanzas {
		s, err := ProcessStanza(stanza, fileName, i+1, policy)
		if err != nil {
			return "", err
		}
		stanzas[i] = s
	}
	return strings.Join(stanzas, stanzaSeparator), nil
}
