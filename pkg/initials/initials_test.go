package initials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"JW", "JW", true},
		{"jw", "JW", true},
		{" kt ", "KT", true},
		{"abc", "ABC", true},
		{"", "", false},
		{"J", "", false},
		{"ABCD", "", false},
		{"J2", "", false},
		{"J W", "", false},
	}

	for _, tc := range cases {
		got, ok := Normalize(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}
