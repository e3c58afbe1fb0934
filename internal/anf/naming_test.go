package anf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBaseName tests the label heuristic for generated names.
func TestBaseName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"f", "f"},
		{"add2", "add"},
		{"make_tuple", "make_tuple"},
		{"f.method", "f"},
		{"ns/op", ""},
		{"g/out", ""},
		{"#prim", "#prim"},
		{"#a/b", ""},
		{"9lives", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.label))
		})
	}
}

// TestDefaultTags tests positional tags.
func TestDefaultTags(t *testing.T) {
	assert.Equal(t, []string{"in1", "in2", "in3"}, defaultTags(3))
	assert.Empty(t, defaultTags(0))
	assert.Equal(t, "in12", defaultTags(12)[11])
}
