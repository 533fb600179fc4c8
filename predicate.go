// Package cfgpred models boolean configuration predicates: expressions over
// named flags and flag/value pairs combined with all, any and not. A parsed
// Predicate is immutable and may be evaluated against any number of flag
// environments or printed back to its canonical text.
package cfgpred

import "fmt"

// Predicate is one node of a configuration predicate tree. The concrete types
// are Name, NameValue, All, Any and Not; the set is closed and the evaluator
// and printer switch over it exhaustively.
type Predicate interface {
	// Matches reports whether the predicate holds for the given pattern.
	Matches(pattern Pattern) bool

	// String returns the canonical text of the predicate.
	String() string

	sealed()
}

// Name matches the presence of a flag, regardless of its value.
type Name struct {
	Name string
}

// NameValue matches a flag carrying an exact value.
type NameValue struct {
	Name  string
	Value string
}

// All is a conjunction over its children. An empty All is vacuously true.
type All struct {
	Predicates []Predicate
}

// Any is a disjunction over its children. An empty Any is vacuously false.
type Any struct {
	Predicates []Predicate
}

// Not negates its child predicate.
type Not struct {
	Predicate Predicate
}

func (*Name) sealed()      {}
func (*NameValue) sealed() {}
func (*All) sealed()       {}
func (*Any) sealed()       {}
func (*Not) sealed()       {}

// NewName returns a presence predicate for the given flag name.
func NewName(name string) *Name {
	return &Name{Name: name}
}

// NewNameValue returns a predicate matching a flag with an exact value.
func NewNameValue(name, value string) *NameValue {
	return &NameValue{Name: name, Value: value}
}

// NewAll returns a conjunction over the given predicates, preserving order.
func NewAll(predicates ...Predicate) *All {
	return &All{Predicates: predicates}
}

// NewAny returns a disjunction over the given predicates, preserving order.
func NewAny(predicates ...Predicate) *Any {
	return &Any{Predicates: predicates}
}

// NewNot returns the negation of the given predicate.
func NewNot(predicate Predicate) *Not {
	return &Not{Predicate: predicate}
}

// Validate checks the construction invariants of a predicate tree: every
// identifier is a non-empty token in identifier syntax and every child is
// non-nil. Trees produced by Parse are always valid; Validate exists for
// callers that build trees directly.
func Validate(p Predicate) error {
	switch pred := p.(type) {
	case *Name:
		if !isIdent(pred.Name) {
			return fmt.Errorf("invalid flag name %q", pred.Name)
		}
	case *NameValue:
		if !isIdent(pred.Name) {
			return fmt.Errorf("invalid flag name %q", pred.Name)
		}
	case *All:
		for _, child := range pred.Predicates {
			if child == nil {
				return fmt.Errorf("all() contains a nil predicate")
			}
			if err := Validate(child); err != nil {
				return err
			}
		}
	case *Any:
		for _, child := range pred.Predicates {
			if child == nil {
				return fmt.Errorf("any() contains a nil predicate")
			}
			if err := Validate(child); err != nil {
				return err
			}
		}
	case *Not:
		if pred.Predicate == nil {
			return fmt.Errorf("not() contains a nil predicate")
		}
		return Validate(pred.Predicate)
	case nil:
		return fmt.Errorf("nil predicate")
	default:
		return fmt.Errorf("unknown predicate type %T", p)
	}
	return nil
}

// Equal reports structural equality of two predicate trees: same variants,
// same identifiers and literals, and children equal pairwise in order.
func Equal(a, b Predicate) bool {
	switch pa := a.(type) {
	case *Name:
		pb, ok := b.(*Name)
		return ok && pa.Name == pb.Name
	case *NameValue:
		pb, ok := b.(*NameValue)
		return ok && pa.Name == pb.Name && pa.Value == pb.Value
	case *All:
		pb, ok := b.(*All)
		return ok && equalLists(pa.Predicates, pb.Predicates)
	case *Any:
		pb, ok := b.(*Any)
		return ok && equalLists(pa.Predicates, pb.Predicates)
	case *Not:
		pb, ok := b.(*Not)
		return ok && Equal(pa.Predicate, pb.Predicate)
	case nil:
		return b == nil
	}
	return false
}

func equalLists(a, b []Predicate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// isIdent reports whether s is a non-empty identifier token: a letter or
// underscore followed by letters, digits and underscores.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
