// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depsconfig loads the dependency policy from a Starlark file.
//
// The file may define
//
//	# Classic dependencies that PSA test cases should not use.
//	legacy_dependencies = ["MBEDTLS_RSA_C", "MBEDTLS_PKCS1_V15"]
//
//	# Test functions with unusual dependencies.
//	def keep_manual_dependencies(file_name, function_name, arguments):
//	    return function_name == "some_test_function"
//
// Both are optional. load() is resolved relative to the loading file.
package depsconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"

	"go.chromium.org/infra/build/psadeps/deps"
)

const (
	legacyDependencies     = "legacy_dependencies"
	keepManualDependencies = "keep_manual_dependencies"
)

// Default returns the built-in policy, which has no legacy
// dependencies and rewrites every test case.
func Default() *deps.Policy {
	return deps.NewPolicy(nil, nil)
}

// Load loads the policy from fname in fsys.
func Load(ctx context.Context, fsys fs.FS, fname string) (*deps.Policy, error) {
	loader := &moduleLoader{
		fsys:    fsys,
		modules: make(map[string]*module),
	}
	thread := &starlark.Thread{
		Name:  "load",
		Print: printLog,
		Load:  loader.Load,
	}
	globals, err := loader.Load(thread, fname)
	if err != nil {
		log.Warnf("thread:%s failed to exec file %s: %v", thread.Name, fname, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, err
	}
	log.Debugf("config %s: %s", fname, globals)

	var legacy []string
	if v, ok := globals[legacyDependencies]; ok {
		legacy, err = unpackList(v)
		if err != nil {
			return nil, fmt.Errorf("bad %s in %s: %w", legacyDependencies, fname, err)
		}
	}
	var keepManual deps.KeepManualFunc
	if v, ok := globals[keepManualDependencies]; ok {
		fn, ok := v.(starlark.Callable)
		if !ok {
			return nil, fmt.Errorf("%s %s is not callable in %s", keepManualDependencies, v.Type(), fname)
		}
		keepManual = keepManualFunc(fn)
	}
	policy := deps.NewPolicy(legacy, keepManual)
	log.Infof("config %s: legacy_dependencies=%q keep_manual_dependencies=%t", fname, policy.LegacyDependencies(), keepManual != nil)
	return policy, nil
}

// PredicateError is an error of keep_manual_dependencies.
type PredicateError struct {
	fn  starlark.Callable
	err *starlark.EvalError
}

func (e PredicateError) Error() string {
	if fn, ok := e.fn.(*starlark.Function); ok {
		return fmt.Sprintf("failed to run %s[%s]: %v", keepManualDependencies, fn.Position(), e.err)
	}
	return fmt.Sprintf("failed to run %s[%s]: %v", keepManualDependencies, e.fn, e.err)
}

// Backtrace returns the Starlark call stack of the error.
func (e PredicateError) Backtrace() string {
	return e.err.CallStack.String()
}

func (e PredicateError) Unwrap() error {
	return e.err
}

func keepManualFunc(fn starlark.Callable) deps.KeepManualFunc {
	return func(fileName, functionName string, arguments []string) (bool, error) {
		thread := &starlark.Thread{
			Name:  keepManualDependencies,
			Print: printLog,
			Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
				return nil, fmt.Errorf("load is not allowed in %s", keepManualDependencies)
			},
		}
		ret, err := starlark.Call(thread, fn, starlark.Tuple{
			starlark.String(fileName),
			starlark.String(functionName),
			packTuple(arguments),
		}, nil)
		if err != nil {
			var eerr *starlark.EvalError
			if errors.As(err, &eerr) {
				log.Warnf("stacktrace:\n%s", eerr.Backtrace())
				return false, PredicateError{fn: fn, err: eerr}
			}
			return false, fmt.Errorf("failed to run %s: %w", keepManualDependencies, err)
		}
		return bool(ret.Truth()), nil
	}
}

func printLog(thread *starlark.Thread, msg string) {
	log.Debugf("thread:%s %s", thread.Name, msg)
}

func packTuple(list []string) starlark.Tuple {
	values := make([]starlark.Value, 0, len(list))
	for _, elem := range list {
		values = append(values, starlark.String(elem))
	}
	return starlark.Tuple(values)
}

func unpackList(v starlark.Value) ([]string, error) {
	iterator := starlark.Iterate(v)
	if iterator == nil {
		return nil, fmt.Errorf("got %v; want iterable", v.Type())
	}
	defer iterator.Done()
	var elem starlark.Value
	var list []string
	for iterator.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("got %v in %v; want string", elem.Type(), v.Type())
		}
		list = append(list, s)
	}
	return list, nil
}
