package main

import (
	"flag"
	"fmt"
	"os"
)

func newFormatCommand() *Command {
	formatCmd := &Command{
		Name:        "format",
		Description: "Canonicalize predicate files",
		FlagSet:     flag.NewFlagSet("format", flag.ExitOnError),
	}

	write := formatCmd.FlagSet.Bool("write", true, "Write formatted output back to files")
	stdout := formatCmd.FlagSet.Bool("stdout", false, "Print formatted output to stdout")
	check := formatCmd.FlagSet.Bool("check", false, "Return non-zero exit code if files need formatting")

	formatCmd.Run = func() error {
		files := formatCmd.FlagSet.Args()
		if len(files) < 1 {
			return fmt.Errorf("no input files specified")
		}

		needsChanges := false
		for _, filename := range files {
			original, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("reading %s: %w", filename, err)
			}

			formatted, err := formatPredicateFile(string(original))
			if err != nil {
				return fmt.Errorf("formatting %s: %w", filename, err)
			}

			if string(original) != formatted {
				needsChanges = true
			}

			if *stdout {
				fmt.Print(formatted)
				continue
			}

			if *write {
				if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
					return fmt.Errorf("writing %s: %w", filename, err)
				}
			}
		}

		if *check && needsChanges {
			return fmt.Errorf("formatting required")
		}
		return nil
	}

	return formatCmd
}
