// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package update is update subcommand to rewrite dependencies of
// test suite data files.
package update

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/psadeps/datafile"
	"go.chromium.org/infra/build/psadeps/deps"
	"go.chromium.org/infra/build/psadeps/depsconfig"
	"go.chromium.org/infra/build/psadeps/osfs"
)

const usage = `update PSA dependencies of test suite data files

 $ psadeps update [-config <file.star>] [-n|-check] <file.data>...

rewrites the depends_on: line of every test case in <file.data>.
PSA_WANT_xxx dependencies are derived from the PSA_ALG_xxx and
PSA_KEY_TYPE_xxx symbols in the test arguments, legacy dependencies
listed in the config are removed, and other dependencies are kept.

A changed file is replaced and its previous version is kept as
<file.data>.bak. Files are processed in order and processing stops
at the first error.

-config is a Starlark file that may define legacy_dependencies and
keep_manual_dependencies(file_name, function_name, arguments).
`

// errNeedsUpdate is returned by -check when some files are not up to date.
var errNeedsUpdate = errors.New("some files need update")

// Cmd returns the Command for the `update` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "update [-config <file.star>] [-n|-check] <file.data>...",
		ShortDesc: "update PSA dependencies of test suite data files",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	configFile string
	dryRun     bool
	check      bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.configFile, "config", "", "Starlark file for legacy_dependencies and keep_manual_dependencies. empty uses no legacy dependencies")
	c.Flags.BoolVar(&c.dryRun, "n", false, "dry run. print diff instead of updating files")
	c.Flags.BoolVar(&c.check, "check", false, "don't update files. exit with error if some files need update")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, a.GetOut(), args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
		case errors.Is(err, errNeedsUpdate):
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no data files: %w", flag.ErrHelp)
	}
	if c.dryRun && c.check {
		return fmt.Errorf("-n and -check are exclusive: %w", flag.ErrHelp)
	}
	policy, err := c.loadPolicy(ctx)
	if err != nil {
		return err
	}
	fsys := osfs.New("psadeps")
	defer func() {
		log.Debugf("%s: %s", fsys.Name(), fsys.Stats())
	}()
	u := &datafile.Updater{
		FS:     fsys,
		Policy: policy,
	}
	needsUpdate := false
	for _, fname := range args {
		if !c.dryRun && !c.check {
			_, err := u.Update(ctx, fname)
			if err != nil {
				return err
			}
			continue
		}
		r, err := u.Check(ctx, fname)
		if err != nil {
			return err
		}
		if !r.Changed() {
			continue
		}
		needsUpdate = true
		if c.check {
			fmt.Fprintf(w, "%s: needs update\n", fname)
			continue
		}
		diff, err := r.Diff()
		if err != nil {
			return fmt.Errorf("failed to diff %s: %w", fname, err)
		}
		fmt.Fprint(w, diff)
	}
	if c.check && needsUpdate {
		return errNeedsUpdate
	}
	return nil
}

func (c *run) loadPolicy(ctx context.Context) (*deps.Policy, error) {
	if c.configFile == "" {
		return depsconfig.Default(), nil
	}
	fname, err := filepath.Abs(c.configFile)
	if err != nil {
		return nil, err
	}
	policy, err := depsconfig.Load(ctx, os.DirFS(filepath.Dir(fname)), filepath.Base(fname))
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", c.configFile, err)
	}
	return policy, nil
}
