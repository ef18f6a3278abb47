// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rpmtrans/depengine"
)

const initShortHelp = `Set up a new depengine.toml and an empty package database directory`
const initLongHelp = `
Init writes a sample depengine.toml in the working directory (unless one
already exists) and creates the installed-database and candidate-pool
directories named by -db and -pool.
`

type initCommand struct {
	dbDir   string
	poolDir string
}

func (cmd *initCommand) Name() string      { return "init" }
func (cmd *initCommand) Args() string      { return "" }
func (cmd *initCommand) ShortHelp() string { return initShortHelp }
func (cmd *initCommand) LongHelp() string  { return initLongHelp }

func (cmd *initCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.dbDir, "db", "db", "installed package database directory to create")
	fs.StringVar(&cmd.poolDir, "pool", "pool", "candidate package pool directory to create")
}

func (cmd *initCommand) Run(ctx *Ctx, args []string) error {
	cfgPath := filepath.Join(ctx.WorkingDir, "depengine.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := depengine.Config{
		Chainsaw:     false,
		CachePath:    filepath.Join(ctx.WorkingDir, "depengine-cache.bolt"),
		NoSuggests:   false,
		RescanBudget: 10,
	}
	if err := depengine.WriteConfig(cfgPath, cfg); err != nil {
		return err
	}

	for _, dir := range []string{cmd.dbDir, cmd.poolDir} {
		if err := os.MkdirAll(filepath.Join(ctx.WorkingDir, dir), 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}

	fmt.Fprintf(ctx.Logger, "wrote %s\n", cfgPath)
	return nil
}
