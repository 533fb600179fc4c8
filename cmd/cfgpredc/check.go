package main

import (
	"flag"
	"fmt"
	"os"
)

func newCheckCommand() *Command {
	checkCmd := &Command{
		Name:        "check",
		Description: "Parse predicate files and report errors",
		FlagSet:     flag.NewFlagSet("check", flag.ExitOnError),
	}

	checkCmd.Run = func() error {
		files := checkCmd.FlagSet.Args()
		if len(files) < 1 {
			return fmt.Errorf("no input files specified")
		}

		failed := false
		for _, filename := range files {
			content, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("reading %s: %w", filename, err)
			}

			predicates, err := parsePredicateFile(string(content))
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
				failed = true
				continue
			}
			fmt.Printf("%s: %d predicates OK\n", filename, len(predicates))
		}

		if failed {
			return fmt.Errorf("check failed")
		}
		return nil
	}

	return checkCmd
}
