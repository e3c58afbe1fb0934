package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/gensym"
)

func TestNormalizeCommand_Text(t *testing.T) {
	path := writeFile(t, "tree.yaml", nestedCallYAML)
	out, err := execute(t, "normalize", path)
	require.NoError(t, err)
	assert.Equal(t, nestedCallNF+"\n", out)
}

func TestNormalizeCommand_JSON(t *testing.T) {
	path := writeFile(t, "tree.json", squareSumJSON)
	out, err := execute(t, "normalize", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   NormalizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, squareSumNF, resp.Data.NormalForm)
	assert.Len(t, resp.Data.TreeHash, 64)
	assert.False(t, resp.Data.Cached)
	assert.NotNil(t, resp.Data.Tree)
}

func TestNormalizeCommand_OutputFile(t *testing.T) {
	path := writeFile(t, "tree.yaml", nestedCallYAML)
	outPath := filepath.Join(t.TempDir(), "normal.json")

	_, err := execute(t, "normalize", path, "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	dec := ast.Decoder{NewNamer: gensym.Factory(DefaultNamespace)}
	norm, err := dec.UnmarshalExpr(data)
	require.NoError(t, err)
	assert.Equal(t, nestedCallNF, norm.String())
}

func TestNormalizeCommand_OutputIsFlat(t *testing.T) {
	path := writeFile(t, "tree.yaml", nestedCallYAML)
	outPath := filepath.Join(t.TempDir(), "normal.json")
	_, err := execute(t, "normalize", path, "-o", outPath)
	require.NoError(t, err)

	out, err := execute(t, "check", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
}

func TestNormalizeCommand_Cache(t *testing.T) {
	path := writeFile(t, "tree.yaml", nestedCallYAML)
	db := filepath.Join(t.TempDir(), "cache.db")

	decode := func(out string) NormalizeResult {
		var resp struct {
			Data NormalizeResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		return resp.Data
	}

	out, err := execute(t, "normalize", path, "--cache", db, "--format", "json")
	require.NoError(t, err)
	first := decode(out)
	assert.False(t, first.Cached)

	out, err = execute(t, "normalize", path, "--cache", db, "--format", "json")
	require.NoError(t, err)
	second := decode(out)
	assert.True(t, second.Cached)
	assert.Equal(t, first.NormalForm, second.NormalForm)
	assert.Equal(t, first.TreeHash, second.TreeHash)
}

func TestNormalizeCommand_MissingFile(t *testing.T) {
	out, err := execute(t, "normalize", "/nonexistent/tree.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}

func TestNormalizeCommand_MissingArgs(t *testing.T) {
	_, err := execute(t, "normalize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
