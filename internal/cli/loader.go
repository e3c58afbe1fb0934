package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/anfir/internal/anf"
	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/gensym"
)

// DefaultNamespace scopes the names generated for trees loaded by the CLI.
const DefaultNamespace = "anfir"

// Tree file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCUE  = "cue"
)

// LoadedTree is a decoded tree file.
type LoadedTree struct {
	Path      string
	Format    string
	Namespace string
	Tree      ast.Expr

	// Root mints names outside of any lambda. It has already seen every
	// generated name of Tree.
	Root *gensym.Generator
}

// LoadError represents an error that occurred while loading a tree.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadTree reads and decodes a tree file. The format follows the file
// extension; "-" reads JSON from stdin.
func LoadTree(path, namespace string, stdin io.Reader) (*LoadedTree, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("tree file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	return DecodeTree(data, format, path, namespace)
}

func formatOf(path string) (string, error) {
	if path == "-" {
		return FormatJSON, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", &LoadError{
		Code:    ErrCodeUnsupportedFile,
		Message: fmt.Sprintf("unsupported tree file %s: want .json, .yaml, .yml or .cue", path),
	}
}

// DecodeTree decodes tree data in format. Decoded lambdas get generators
// scoped under namespace, and every generated name of the tree is reserved
// so that normalizing it again cannot mint a clashing name.
func DecodeTree(data []byte, format, path, namespace string) (*LoadedTree, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	dec := ast.Decoder{NewNamer: gensym.Factory(namespace)}

	var (
		tree ast.Expr
		err  error
	)
	switch format {
	case FormatJSON:
		tree, err = dec.UnmarshalExpr(data)
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
		}
		tree, err = dec.Decode(v)
	case FormatCUE:
		var raw []byte
		raw, err = cueToJSON(data, path)
		if err != nil {
			return nil, err
		}
		tree, err = dec.UnmarshalExpr(raw)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupportedFile, Message: fmt.Sprintf("unknown format %q", format)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
	}

	root := gensym.New(namespace)
	gensym.ReserveTree(tree, root)
	return &LoadedTree{
		Path:      path,
		Format:    format,
		Namespace: namespace,
		Tree:      tree,
		Root:      root,
	}, nil
}

// cueToJSON evaluates a CUE file and exports its tree as JSON. The tree is
// the value of the top-level "tree" field when present, otherwise the whole
// file.
func cueToJSON(data []byte, path string) ([]byte, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "building CUE value", err)
	}

	if tree := value.LookupPath(cue.ParsePath("tree")); tree.Exists() {
		value = tree
	}
	raw, err := value.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, "exporting CUE tree", err)
	}
	return raw, nil
}

// cueLoadError converts a CUE error to a LoadError with position info.
func cueLoadError(code, context string, err error) *LoadError {
	loadErr := &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, err)}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		loadErr.Pos = errs[0].Position()
	}
	return loadErr
}

// Normalize normalizes the loaded tree with its root generator.
func (lt *LoadedTree) Normalize() (ast.Expr, error) {
	return anf.Normalize(lt.Tree, anf.WithNamer(lt.Root))
}

// normalizeSource decodes canonical JSON under namespace and normalizes it
// the same way the normalize command does. The cache replays entries with
// it.
func normalizeSource(source []byte, namespace string) (ast.Expr, error) {
	lt, err := DecodeTree(source, FormatJSON, "<cache>", namespace)
	if err != nil {
		return nil, err
	}
	return lt.Normalize()
}

// Error code constants - unified across all CLI commands.
// Checker violations use the anf codes (E201..E206) directly.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeReadFailed      = "E002" // File read error
	ErrCodeUnsupportedFile = "E003" // Unknown tree file extension
	ErrCodeParseFailed     = "E004" // JSON/YAML parse failed
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeBuildFailed     = "E006" // CUE build failed
	ErrCodeWriteFailed     = "E007" // File write error
	ErrCodeDecodeFailed    = "E008" // Tree format error
	ErrCodeNormalizeFailed = "E009" // Normalization failed
	ErrCodeLowerFailed     = "E010" // Lowering failed
	ErrCodeEvalFailed      = "E011" // Evaluation failed
	ErrCodeCacheFailed     = "E012" // Cache database error
)

// errorCode returns the code of a LoadError, or ErrCodeGeneric.
func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
