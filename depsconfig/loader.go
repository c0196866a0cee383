// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depsconfig

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
)

// module is a loaded Starlark module.
type module struct {
	globals starlark.StringDict
	err     error
}

// moduleLoader is a Starlark module loader on a filesystem.
type moduleLoader struct {
	fsys fs.FS

	// modules holds loaded modules. nil while a module is loading.
	modules map[string]*module
}

// Load loads a Starlark module.
// A relative module name is relative to the directory of the module
// loading it.
func (l *moduleLoader) Load(thread *starlark.Thread, name string) (starlark.StringDict, error) {
	curname, _ := thread.Local("modulename").(string)
	fname := name
	if curname != "" && !path.IsAbs(name) {
		fname = path.Join(path.Dir(curname), name)
	}
	log.Debugf("load %s from %q => %s", name, curname, fname)
	m, ok := l.modules[fname]
	if ok {
		if m == nil {
			return nil, fmt.Errorf("cycle in load graph: %s", fname)
		}
		return m.globals, m.err
	}
	l.modules[fname] = nil

	buf, err := fs.ReadFile(l.fsys, fname)
	if err != nil {
		err = fmt.Errorf("failed to load %s: %w", fname, err)
		l.modules[fname] = &module{err: err}
		return nil, err
	}
	t := &starlark.Thread{
		Name:  "module " + fname,
		Print: printLog,
		Load:  l.Load,
	}
	t.SetLocal("modulename", fname)
	globals, err := starlark.ExecFile(t, fname, buf, nil)
	if err == nil {
		globals.Freeze()
	}
	l.modules[fname] = &module{globals: globals, err: err}
	return globals, err
}
