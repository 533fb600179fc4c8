package cfgpred

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Predicate
		want bool
	}{
		{"same name", NewName("unix"), NewName("unix"), true},
		{"different name", NewName("unix"), NewName("windows"), false},
		{"name vs name-value", NewName("unix"), NewNameValue("unix", "1"), false},
		{"same name-value", NewNameValue("k", "v"), NewNameValue("k", "v"), true},
		{"different value", NewNameValue("k", "v"), NewNameValue("k", "w"), false},
		{"all vs any", NewAll(NewName("a")), NewAny(NewName("a")), false},
		{"empty all", NewAll(), NewAll(), true},
		{
			"order matters structurally",
			NewAll(NewName("a"), NewName("b")),
			NewAll(NewName("b"), NewName("a")),
			false,
		},
		{
			"nested equal",
			NewNot(NewAny(NewName("a"), NewNameValue("b", "c"))),
			NewNot(NewAny(NewName("a"), NewNameValue("b", "c"))),
			true,
		},
		{"different lengths", NewAll(NewName("a")), NewAll(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := []Predicate{
		NewName("unix"),
		NewName("_private"),
		NewNameValue("target_pointer_width", "32"),
		NewNameValue("k", ""),
		NewAll(),
		NewAll(NewName("a"), NewNot(NewAny())),
	}
	for _, p := range valid {
		assert.NoError(t, Validate(p), "%s", p)
	}

	invalid := []Predicate{
		NewName(""),
		NewName("0abc"),
		NewName("has-dash"),
		NewNameValue("", "v"),
		NewAll(NewName("ok"), nil),
		NewAny(nil),
		NewNot(nil),
		NewNot(NewName("")),
		nil,
	}
	for _, p := range invalid {
		assert.Error(t, Validate(p))
	}
}
