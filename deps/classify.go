// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package deps classifies, derives and merges test case dependencies
// of Mbed TLS test suite data files.
package deps

import "strings"

// systematicPrefix is the prefix of dependencies that are derived
// mechanically from test case arguments.
const systematicPrefix = "PSA_WANT_"

// IsSystematic reports whether dep is a PSA dependency which is
// determined systematically.
func IsSystematic(dep string) bool {
	return strings.HasPrefix(dep, systematicPrefix)
}

// MechanismDependencies returns the dependencies for a symbol that
// designates a cryptographic mechanism, e.g.
// PSA_ALG_SHA_256 => PSA_WANT_ALG_SHA_256.
func MechanismDependencies(symbol string) []string {
	return []string{strings.Replace(symbol, "_", "_WANT_", 1)}
}
