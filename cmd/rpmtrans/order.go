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

const orderShortHelp = `Compute the install/erase order for a proposed transaction`
const orderLongHelp = `
Order stages every entry named in the given transaction.toml, runs the
checker, then the orderer, and prints the resulting element sequence one
per line as "<add|remove> <NEVR>". Exits 1 if the transaction could not
be fully linearized (a dependency loop).
`

type orderCommand struct {
	dbDir        string
	poolDir      string
	chainsaw     bool
	rescanBudget int
	whiteout     string
}

func (cmd *orderCommand) Name() string      { return "order" }
func (cmd *orderCommand) Args() string      { return "<transaction.toml>" }
func (cmd *orderCommand) ShortHelp() string { return orderShortHelp }
func (cmd *orderCommand) LongHelp() string  { return orderLongHelp }

func (cmd *orderCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.dbDir, "db", "db", "installed package database directory")
	fs.StringVar(&cmd.poolDir, "pool", "pool", "candidate package pool directory")
	fs.BoolVar(&cmd.chainsaw, "chainsaw", false, "preserve presentation order across ties instead of pulling upgrade removes in place")
	fs.IntVar(&cmd.rescanBudget, "rescan-budget", 0, "cycle-breaking rescan budget (0 selects the default of 10)")
	fs.StringVar(&cmd.whiteout, "whiteout", "", "whitespace-separated list of P>Q pairs the cycle breaker should ignore")
}

func (cmd *orderCommand) Run(ctx *Ctx, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("order requires exactly one transaction.toml argument")
	}

	tf, err := loadTransactionFile(args[0])
	if err != nil {
		return err
	}

	db := fsdb.New(cmd.dbDir)
	ts := depengine.NewTransactionSet(db)
	ts.Logger = ctx.Logger

	if cmd.whiteout != "" {
		cfg := depengine.Config{Whiteout: cmd.whiteout}
		if err := cfg.Apply(ts); err != nil {
			return err
		}
	}
	// Apply also writes Config's zero Chainsaw and NoSuggests onto ts; the
	// command-line flags are applied after it, so they always win.
	ts.Chainsaw = cmd.chainsaw
	if cmd.rescanBudget > 0 {
		ts.RescanBudget = cmd.rescanBudget
	}

	if err := stageTransaction(ts, cmd.poolDir, tf); err != nil {
		return err
	}

	if err := depengine.Check(ts); err != nil {
		return err
	}
	if !ts.Problems().Empty() {
		for _, p := range ts.Problems().Problems() {
			fmt.Println(p.String())
		}
		return fmt.Errorf("transaction has unresolved problems, refusing to order")
	}

	remaining, err := depengine.Order(ts)
	for _, e := range ts.Order() {
		fmt.Printf("%s %s\n", e.Type, e.NEVR)
	}
	if err != nil {
		return fmt.Errorf("%v (%d unordered)", err, remaining)
	}
	return nil
}
