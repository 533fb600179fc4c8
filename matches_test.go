package cfgpred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		predicate Predicate
		env       FlagEnv
		want      bool
	}{
		{
			name:      "name presence",
			predicate: NewName("unix"),
			env:       FlagEnv{{Key: "unix"}},
			want:      true,
		},
		{
			name:      "name absent",
			predicate: NewName("unix"),
			env:       FlagEnv{},
			want:      false,
		},
		{
			name:      "name matches regardless of value",
			predicate: NewName("target_os"),
			env:       FlagEnv{{Key: "target_os", Value: Value("macos")}},
			want:      true,
		},
		{
			name:      "name-value exact match",
			predicate: NewNameValue("target_pointer_width", "32"),
			env:       FlagEnv{{Key: "target_pointer_width", Value: Value("32")}},
			want:      true,
		},
		{
			name:      "name-value wrong value",
			predicate: NewNameValue("target_pointer_width", "32"),
			env:       FlagEnv{{Key: "target_pointer_width", Value: Value("64")}},
			want:      false,
		},
		{
			name:      "name-value against empty env",
			predicate: NewNameValue("target_pointer_width", "32"),
			env:       FlagEnv{},
			want:      false,
		},
		{
			name:      "name-value against valueless flag",
			predicate: NewNameValue("unix", "1"),
			env:       FlagEnv{{Key: "unix"}},
			want:      false,
		},
		{
			name:      "any matches first",
			predicate: NewAny(NewName("foo"), NewName("bar")),
			env:       FlagEnv{{Key: "foo"}},
			want:      true,
		},
		{
			name:      "any matches none",
			predicate: NewAny(NewName("foo"), NewName("bar")),
			env:       FlagEnv{{Key: "baz"}},
			want:      false,
		},
		{
			name:      "not inverts",
			predicate: NewNot(NewName("bar")),
			env:       FlagEnv{{Key: "foo"}, {Key: "bar"}},
			want:      false,
		},
		{
			name:      "all requires every child",
			predicate: NewAll(NewName("unix"), NewNameValue("target_pointer_width", "32")),
			env:       FlagEnv{{Key: "unix"}},
			want:      false,
		},
		{
			name:      "all with every child present",
			predicate: NewAll(NewName("unix"), NewNameValue("target_pointer_width", "32")),
			env:       FlagEnv{{Key: "unix"}, {Key: "target_pointer_width", Value: Value("32")}},
			want:      true,
		},
		{
			name:      "duplicate keys all participate",
			predicate: NewNameValue("feature", "b"),
			env: FlagEnv{
				{Key: "feature", Value: Value("a")},
				{Key: "feature", Value: Value("b")},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.predicate.Matches(tt.env))
		})
	}
}

func TestVacuousCombinators(t *testing.T) {
	envs := []FlagEnv{
		{},
		{{Key: "unix"}},
		{{Key: "a"}, {Key: "b", Value: Value("c")}},
	}

	for _, env := range envs {
		assert.True(t, NewAll().Matches(env), "empty all() must be true")
		assert.False(t, NewAny().Matches(env), "empty any() must be false")
	}
}

func TestNegationDuality(t *testing.T) {
	predicates := []Predicate{
		NewName("unix"),
		NewNameValue("target_os", "macos"),
		NewAll(),
		NewAny(),
		NewAll(NewName("unix"), NewName("missing")),
		NewNot(NewName("unix")),
	}
	envs := []FlagEnv{
		{},
		{{Key: "unix"}},
		{{Key: "target_os", Value: Value("macos")}},
	}

	for _, p := range predicates {
		for _, env := range envs {
			assert.Equal(t, !p.Matches(env), NewNot(p).Matches(env),
				"not(%s) against %v", p, env)
		}
	}
}

func TestFlagMapPattern(t *testing.T) {
	m := FlagMap{
		"foo":                  nil,
		"bar":                  nil,
		"target_os":            {"macos"},
		"target_pointer_width": {"32"},
		"feature":              {"a", "b"},
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"unix", false},
		{`target_os = "macos"`, true},
		{"any(foo, bar)", true},
		{"not(bar)", false},
		{`all(unix, target_pointer_width = "32")`, false},
		{`any(unix, target_pointer_width = "32")`, true},
		{`feature = "b"`, true},
		{`feature = "c"`, false},
		{"foo", true},
		{`foo = "1"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Matches(m))
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	input := `all(unix, target_pointer_width = "32")`

	p, err := Parse(input)
	require.NoError(t, err)
	assert.True(t, Equal(
		NewAll(NewName("unix"), NewNameValue("target_pointer_width", "32")),
		p,
	))

	matching := NewFlagEnv([]Flag{
		{Key: "unix"},
		{Key: "target_pointer_width", Value: Value("32")},
	})
	assert.True(t, p.Matches(matching))

	assert.False(t, p.Matches(FlagEnv{{Key: "windows"}}))

	assert.Equal(t, input, Format(p))
}
