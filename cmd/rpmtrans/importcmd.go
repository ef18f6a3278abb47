// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"

	"github.com/rpmtrans/depengine"
	"github.com/rpmtrans/depengine/internal/fsdb"
	"github.com/rpmtrans/depengine/internal/importers"
)

const importShortHelp = `Import a legacy YAML package manifest into a transaction`
const importLongHelp = `
Import reads a legacy YAML package manifest and stages every entry as an
ADD element, then runs the checker and reports any problems found. Useful
for migrating a manifest produced by an older, non-RPM toolchain.
`

type importCommand struct {
	dbDir string
}

func (cmd *importCommand) Name() string      { return "import" }
func (cmd *importCommand) Args() string      { return "<manifest.yaml>" }
func (cmd *importCommand) ShortHelp() string { return importShortHelp }
func (cmd *importCommand) LongHelp() string  { return importLongHelp }

func (cmd *importCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.dbDir, "db", "db", "installed package database directory")
}

func (cmd *importCommand) Run(ctx *Ctx, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("import requires exactly one manifest.yaml argument")
	}

	db := fsdb.New(cmd.dbDir)
	ts := depengine.NewTransactionSet(db)
	ts.Logger = ctx.Logger

	legacy := importers.NewLegacy(ctx.Verbose, func(format string, a ...interface{}) {
		fmt.Fprintf(ctx.Logger, format+"\n", a...)
	})
	if !legacy.HasManifest(args[0]) {
		return fmt.Errorf("%s: no such manifest", args[0])
	}
	if err := legacy.Import(ts, args[0]); err != nil {
		return err
	}

	if err := depengine.Check(ts); err != nil {
		return err
	}
	for _, p := range ts.Problems().Problems() {
		fmt.Println(p.String())
	}
	if !ts.Problems().Empty() {
		return fmt.Errorf("%d problem(s) found after import", len(ts.Problems().Problems()))
	}

	var added int
	for _, e := range ts.Order() {
		if e.Type == depengine.Add {
			added++
		}
	}
	fmt.Printf("imported %d package(s), no problems found\n", added)
	return nil
}
