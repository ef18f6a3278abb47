// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"

	"github.com/rpmtrans/depengine"
	"github.com/rpmtrans/depengine/internal/fsdb"
)

const checkShortHelp = `Check a proposed transaction for unsatisfied deps and conflicts`
const checkLongHelp = `
Check stages every entry named in the given transaction.toml against the
candidate pool, runs it against the installed database, and prints each
problem found (missing requires, live conflicts). Exits 1 if any problems
were found.
`

type checkCommand struct {
	dbDir   string
	poolDir string
}

func (cmd *checkCommand) Name() string      { return "check" }
func (cmd *checkCommand) Args() string      { return "<transaction.toml>" }
func (cmd *checkCommand) ShortHelp() string { return checkShortHelp }
func (cmd *checkCommand) LongHelp() string  { return checkLongHelp }

func (cmd *checkCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.dbDir, "db", "db", "installed package database directory")
	fs.StringVar(&cmd.poolDir, "pool", "pool", "candidate package pool directory")
}

func (cmd *checkCommand) Run(ctx *Ctx, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("check requires exactly one transaction.toml argument")
	}

	tf, err := loadTransactionFile(args[0])
	if err != nil {
		return err
	}

	db := fsdb.New(cmd.dbDir)
	ts := depengine.NewTransactionSet(db)
	ts.Logger = ctx.Logger

	if err := stageTransaction(ts, cmd.poolDir, tf); err != nil {
		return err
	}

	if err := depengine.Check(ts); err != nil {
		return err
	}

	probs := ts.Problems().Problems()
	for _, p := range probs {
		fmt.Println(p.String())
	}
	if len(probs) > 0 {
		return fmt.Errorf("%d problem(s) found", len(probs))
	}

	fmt.Println("no problems found")
	return nil
}
