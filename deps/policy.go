// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package deps

import (
	"slices"
	"strings"
)

// KeepManualFunc reports whether the test case calling functionName
// with arguments in fileName keeps its dependencies as written.
type KeepManualFunc func(fileName, functionName string, arguments []string) (bool, error)

// Policy decides which dependencies are dropped and which test cases
// are left alone.
// A nil *Policy is the default policy: no legacy dependencies and
// no test case keeps manual dependencies.
type Policy struct {
	legacy     map[string]bool
	keepManual KeepManualFunc
}

// NewPolicy returns a policy dropping the legacy dependencies.
// keepManual may be nil.
func NewPolicy(legacy []string, keepManual KeepManualFunc) *Policy {
	p := &Policy{
		legacy:     make(map[string]bool),
		keepManual: keepManual,
	}
	for _, dep := range legacy {
		p.legacy[dep] = true
	}
	return p
}

// IsLegacy reports whether dep is a classic dependency that PSA test
// cases should not use. A leading '!' is ignored.
func (p *Policy) IsLegacy(dep string) bool {
	if p == nil {
		return false
	}
	return p.legacy[strings.TrimPrefix(dep, "!")]
}

// LegacyDependencies returns the sorted legacy dependencies.
func (p *Policy) LegacyDependencies() []string {
	if p == nil {
		return nil
	}
	deps := make([]string, 0, len(p.legacy))
	for dep := range p.legacy {
		deps = append(deps, dep)
	}
	slices.Sort(deps)
	return deps
}

// KeepManual reports whether the test case must not be rewritten.
func (p *Policy) KeepManual(fileName, functionName string, arguments []string) (bool, error) {
	if p == nil || p.keepManual == nil {
		return false, nil
	}
	return p.keepManual(fileName, functionName, arguments)
}

// Updated reworks the list of dependencies of a test case.
//
// Legacy dependencies are removed. Existing PSA_WANT_xxx dependencies
// are replaced by the systematic ones derived from the arguments,
// which come first. Other dependencies follow in their original order.
func (p *Policy) Updated(fileName, functionName string, arguments, dependencies []string) []string {
	deps := Systematic(functionName, arguments)
	for _, dep := range dependencies {
		if IsSystematic(dep) || p.IsLegacy(dep) {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}
