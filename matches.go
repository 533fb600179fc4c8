package cfgpred

// Pattern is the flag-set side of an evaluation. Implementations report
// whether a flag is active: a nil value asks for presence only, a non-nil
// value asks for presence with that exact value.
type Pattern interface {
	Matches(key string, value *string) bool
}

// Flag is a single (key, optional value) entry of a flag environment.
type Flag struct {
	Key   string
	Value *string
}

// FlagEnv is an ordered flag environment. Duplicate keys are legal; every
// entry participates in matching and any matching entry suffices. The
// evaluator never mutates it.
type FlagEnv []Flag

// NewFlagEnv builds a FlagEnv from (key, optional value) pairs, preserving
// order and duplicates.
func NewFlagEnv(pairs []Flag) FlagEnv {
	env := make(FlagEnv, len(pairs))
	copy(env, pairs)
	return env
}

// Value returns a pointer to s, for building value-carrying flags inline.
func Value(s string) *string {
	return &s
}

// Matches implements Pattern over the pair list.
func (env FlagEnv) Matches(key string, value *string) bool {
	for _, flag := range env {
		if flag.Key != key {
			continue
		}
		if value == nil {
			return true
		}
		if flag.Value != nil && *flag.Value == *value {
			return true
		}
	}
	return false
}

// FlagMap is a map-shaped flag environment for callers that hold a
// deduplicated view: each key maps to the set of values it was declared
// with. A key present with no values still matches presence checks.
type FlagMap map[string][]string

// Matches implements Pattern over the map.
func (m FlagMap) Matches(key string, value *string) bool {
	values, ok := m[key]
	if !ok {
		return false
	}
	if value == nil {
		return true
	}
	for _, v := range values {
		if v == *value {
			return true
		}
	}
	return false
}

// Matches reports whether a flag with this name is present.
func (p *Name) Matches(pattern Pattern) bool {
	return pattern.Matches(p.Name, nil)
}

// Matches reports whether a flag with this name carries exactly this value.
func (p *NameValue) Matches(pattern Pattern) bool {
	return pattern.Matches(p.Name, &p.Value)
}

// Matches reports whether every child matches. An empty All is true.
func (p *All) Matches(pattern Pattern) bool {
	for _, child := range p.Predicates {
		if !child.Matches(pattern) {
			return false
		}
	}
	return true
}

// Matches reports whether at least one child matches. An empty Any is false.
func (p *Any) Matches(pattern Pattern) bool {
	for _, child := range p.Predicates {
		if child.Matches(pattern) {
			return true
		}
	}
	return false
}

// Matches reports the inverse of the child predicate.
func (p *Not) Matches(pattern Pattern) bool {
	return !p.Predicate.Matches(pattern)
}
