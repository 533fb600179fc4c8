package main

import (
	"flag"
	"fmt"
	"strings"

	cfgpred "github.com/cfgpred/cfgpred-go"
	"github.com/cfgpred/cfgpred-go/loader"
)

func newEvalCommand() *Command {
	evalCmd := &Command{
		Name:        "eval",
		Description: "Evaluate a predicate against a flags file",
		FlagSet:     flag.NewFlagSet("eval", flag.ExitOnError),
	}

	flagsPath := evalCmd.FlagSet.String("flags", "", "Path to a YAML or JSON flags file")

	evalCmd.Run = func() error {
		if *flagsPath == "" {
			return fmt.Errorf("-flags is required")
		}
		args := evalCmd.FlagSet.Args()
		if len(args) < 1 {
			return fmt.Errorf("no predicate specified")
		}

		env, err := loader.LoadFile(*flagsPath)
		if err != nil {
			return err
		}

		p, err := cfgpred.Parse(strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("parsing predicate: %w", err)
		}

		fmt.Printf("%s => %t\n", cfgpred.Format(p), p.Matches(env))
		return nil
	}

	return evalCmd
}
