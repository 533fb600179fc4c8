package main

import (
	"fmt"
	"strings"

	cfgpred "github.com/cfgpred/cfgpred-go"
)

// parsePredicateFile parses a predicate file: one predicate per line, with
// blank lines and #-comments ignored. Line numbers in errors are 1-based.
func parsePredicateFile(content string) ([]cfgpred.Predicate, error) {
	var predicates []cfgpred.Predicate

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		p, err := cfgpred.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		predicates = append(predicates, p)
	}
	return predicates, nil
}

// formatPredicateFile canonicalizes a predicate file, keeping comments and
// dropping blank runs to single blank lines.
func formatPredicateFile(content string) (string, error) {
	var b strings.Builder
	lastBlank := false

	for i, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			if !lastBlank && b.Len() > 0 {
				b.WriteString("\n")
			}
			lastBlank = true
			continue
		case strings.HasPrefix(trimmed, "#"):
			b.WriteString(trimmed)
			b.WriteString("\n")
		default:
			p, err := cfgpred.Parse(trimmed)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			b.WriteString(cfgpred.Format(p))
			b.WriteString("\n")
		}
		lastBlank = false
	}
	return b.String(), nil
}
