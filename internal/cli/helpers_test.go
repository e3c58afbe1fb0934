package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	nestedCallYAML = `{apply: [add, {apply: [mul, x, 2]}, 1]}`
	nestedCallNF   = "(let ((add/in1#1 (mul x 2))) (add add/in1#1 1))"

	squareSumJSON = `{"lambda": ["x", "y"], "ns": "sq",
  "body": {"apply": ["add", {"apply": ["mul", "x", "x"]}, {"apply": ["mul", "y", "y"]}]}}`
	squareSumNF = "(lambda (x y) (let ((add/in1#1 (mul x x)) (add/in2#1 (mul y y))) (add add/in1#1 add/in2#1)))"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeFile writes content to name in a new temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
