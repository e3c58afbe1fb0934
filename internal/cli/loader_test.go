package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTree_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		format  string
	}{
		{"json", "tree.json", `{"apply": ["add", {"apply": ["mul", "x", 2]}, 1]}`, FormatJSON},
		{"yaml", "tree.yaml", nestedCallYAML, FormatYAML},
		{"yml", "tree.yml", nestedCallYAML, FormatYAML},
		{"cue tree field", "tree.cue", `tree: {apply: ["add", {apply: ["mul", "x", 2]}, 1]}`, FormatCUE},
		{"cue whole file", "tree.cue", `apply: ["add", {apply: ["mul", "x", 2]}, 1]`, FormatCUE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			lt, err := LoadTree(path, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.format, lt.Format)
			assert.Equal(t, DefaultNamespace, lt.Namespace)
			assert.Equal(t, "(add (mul x 2) 1)", lt.Tree.String())

			norm, err := lt.Normalize()
			require.NoError(t, err)
			assert.Equal(t, nestedCallNF, norm.String())
		})
	}
}

func TestLoadTree_Stdin(t *testing.T) {
	lt, err := LoadTree("-", "ns", strings.NewReader(`{"tuple": [1, {"str": "a"}]}`))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, lt.Format)
	assert.Equal(t, "ns", lt.Namespace)
	assert.Equal(t, `(tuple 1 "a")`, lt.Tree.String())
}

func TestLoadTree_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    string
	}{
		{"unsupported extension", "tree.txt", "x", ErrCodeUnsupportedFile},
		{"yaml syntax", "tree.yaml", "{apply: [", ErrCodeParseFailed},
		{"cue syntax", "tree.cue", "tree: {apply: [", ErrCodeBuildFailed},
		{"bare list", "tree.json", "[1, 2]", ErrCodeDecodeFailed},
		{"empty symbol", "tree.yaml", `apply: ["", x]`, ErrCodeDecodeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := LoadTree(path, "", nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, errorCode(err))
		})
	}
}

func TestLoadTree_NotFound(t *testing.T) {
	_, err := LoadTree("/nonexistent/tree.json", "", nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, errorCode(err))
	assert.Contains(t, err.Error(), "tree file not found")
}

func TestLoadTree_CUEErrorPosition(t *testing.T) {
	path := writeFile(t, "tree.cue", "tree: {\n  apply: [\n")
	_, err := LoadTree(path, "", nil)
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, loadErr.Pos.IsValid())
	assert.Contains(t, err.Error(), "tree.cue:")
}

func TestLoadTree_ReservesGeneratedNames(t *testing.T) {
	tree := `{"apply": ["f", {"apply": ["g", {"sym": "f/in1", "ns": "anfir", "v": 1}]}]}`
	path := writeFile(t, "tree.json", tree)
	lt, err := LoadTree(path, "", nil)
	require.NoError(t, err)

	norm, err := lt.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "(let ((f/in1#2 (g f/in1#1))) (f f/in1#2))", norm.String())
}

func TestLoadTree_LambdaNamespace(t *testing.T) {
	path := writeFile(t, "tree.json", squareSumJSON)
	lt, err := LoadTree(path, "", nil)
	require.NoError(t, err)

	norm, err := lt.Normalize()
	require.NoError(t, err)
	assert.Equal(t, squareSumNF, norm.String())
}

func TestNormalizeSource_MatchesLoader(t *testing.T) {
	norm, err := normalizeSource([]byte(`{"apply": ["add", {"apply": ["mul", "x", 2]}, 1]}`), DefaultNamespace)
	require.NoError(t, err)
	assert.Equal(t, nestedCallNF, norm.String())
}

func TestErrorCode_Generic(t *testing.T) {
	assert.Equal(t, ErrCodeGeneric, errorCode(assert.AnError))
}
