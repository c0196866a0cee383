// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package deps

import (
	"regexp"
	"slices"
)

var mechanismSymbolRE = regexp.MustCompile(`PSA_(?:ALG|KEY_TYPE)_\w+`)

// Systematic returns the sorted systematically determined dependencies
// of a test case calling functionName with arguments.
//
// Every mechanism symbol (PSA_ALG_xxx, PSA_KEY_TYPE_xxx) found in an
// argument contributes its dependencies. functionName is not used yet;
// it is there for rules that depend on the test function.
// Test functions with unusual dependencies opt out with
// Policy.KeepManual instead.
func Systematic(functionName string, arguments []string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, arg := range arguments {
		for _, symbol := range mechanismSymbolRE.FindAllString(arg, -1) {
			for _, dep := range MechanismDependencies(symbol) {
				if seen[dep] {
					continue
				}
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
	}
	slices.Sort(deps)
	return deps
}
