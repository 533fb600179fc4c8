package cfgpred

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Format returns the canonical text of a predicate tree. The output is the
// structural inverse of Parse: combinators are always wrapped with their
// keyword and parentheses, including zero and one child, list items are
// joined by ", " with no trailing comma, and literals are printed quoted.
// The result is byte-for-byte deterministic for a given tree.
func Format(p Predicate) string {
	var b strings.Builder
	writePredicate(&b, p)
	return b.String()
}

func writePredicate(b *strings.Builder, p Predicate) {
	switch pred := p.(type) {
	case *Name:
		b.WriteString(pred.Name)
	case *NameValue:
		b.WriteString(pred.Name)
		b.WriteString(" = ")
		b.WriteString(strconv.Quote(pred.Value))
	case *All:
		writeList(b, "all", pred.Predicates)
	case *Any:
		writeList(b, "any", pred.Predicates)
	case *Not:
		b.WriteString("not(")
		writePredicate(b, pred.Predicate)
		b.WriteString(")")
	}
}

func writeList(b *strings.Builder, keyword string, predicates []Predicate) {
	b.WriteString(keyword)
	b.WriteString("(")
	for i, child := range predicates {
		if i > 0 {
			b.WriteString(", ")
		}
		writePredicate(b, child)
	}
	b.WriteString(")")
}

func (p *Name) String() string      { return Format(p) }
func (p *NameValue) String() string { return Format(p) }
func (p *All) String() string       { return Format(p) }
func (p *Any) String() string       { return Format(p) }
func (p *Not) String() string       { return Format(p) }

// Fingerprint returns a stable hex digest of the canonical text, suitable as
// a cache or registry key.
func Fingerprint(p Predicate) string {
	sum := sha256.Sum256([]byte(Format(p)))
	return hex.EncodeToString(sum[:])
}
