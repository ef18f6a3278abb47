// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rpmtrans drives a depengine.TransactionSet from a filesystem
// package database and a legacy YAML manifest, the same flag.FlagSet/
// command-interface shape as the teacher's cmd/dep.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rpmtrans/depengine/log"
)

type command interface {
	Name() string           // "check"
	Args() string           // "<db-dir>"
	ShortHelp() string      // "Check a transaction for unsatisfied deps"
	LongHelp() string       // full usage text
	Register(*flag.FlagSet) // command-specific flags
	Run(*Ctx, []string) error
}

// Ctx carries the ambient state every subcommand needs, in the spirit of
// the teacher's dep.Ctx.
type Ctx struct {
	WorkingDir string
	Logger     *log.Logger
	Verbose    bool
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to get working directory:", err)
		os.Exit(1)
	}
	os.Exit(run(os.Args, wd, os.Stdout, os.Stderr))
}

func run(args []string, wd string, stdout, stderr io.Writer) (exitCode int) {
	commands := []command{
		&initCommand{},
		&checkCommand{},
		&orderCommand{},
		&importCommand{},
	}

	usage := func() {
		fmt.Fprintln(stderr, "rpmtrans is a tool for staging and resolving package transactions")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage: rpmtrans <command> [flags] [args]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Commands:")
		fmt.Fprintln(stderr)
		w := tabwriter.NewWriter(stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
		}
		w.Flush()
	}

	if len(args) < 2 {
		usage()
		return 1
	}
	cmdName := args[1]
	if cmdName == "-h" || cmdName == "-help" || cmdName == "help" {
		usage()
		return 1
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(stderr)
		verbose := fs.Bool("v", false, "enable verbose logging")
		cmd.Register(fs)
		resetUsage(stderr, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if err := fs.Parse(args[2:]); err != nil {
			return 1
		}

		level := log.LevelWarn
		if *verbose {
			level = log.LevelDebug
		}
		ctx := &Ctx{
			WorkingDir: wd,
			Logger:     log.NewLevel(stdout, level),
			Verbose:    *verbose,
		}

		if err := cmd.Run(ctx, fs.Args()); err != nil {
			fmt.Fprintf(stderr, "rpmtrans: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "rpmtrans: %s: no such command\n", cmdName)
	usage()
	return 1
}

func resetUsage(stderr io.Writer, fs *flag.FlagSet, name, args, longHelp string) {
	var flagBlock bytes.Buffer
	w := tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	var hasFlags bool
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		fmt.Fprintf(w, "\t-%s\t%s\n", f.Name, f.Usage)
	})
	w.Flush()
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rpmtrans %s %s\n\n", name, args)
		fmt.Fprintln(stderr, strings.TrimSpace(longHelp))
		if hasFlags {
			fmt.Fprintln(stderr, "\nFlags:")
			fmt.Fprint(stderr, flagBlock.String())
		}
	}
}
