package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultNamespace is used when a scenario does not set one.
const DefaultNamespace = "scenario"

// Scenario defines a normalization test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Namespace scopes the generated names. Defaults to "scenario".
	Namespace string `yaml:"namespace,omitempty"`

	// Tree is the source tree in the tagged codec format.
	Tree any `yaml:"tree"`

	// Args are passed to a root lambda.
	Args []any `yaml:"args,omitempty"`

	// Env binds free symbols when the root is not a lambda.
	Env map[string]any `yaml:"env,omitempty"`

	// Expect states exact outcomes. If nil, only assertions are checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions validate properties of the normal form.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies exact expected outcomes.
type ExpectClause struct {
	// NormalForm is the expected printed normal form.
	NormalForm string `yaml:"normal_form,omitempty"`

	// Violations are the checker codes expected for the source tree, in
	// order. Nil skips the check; an empty list expects a flat source.
	Violations []string `yaml:"violations,omitempty"`

	// Result is the expected formatted evaluation result.
	Result string `yaml:"result,omitempty"`

	// Error is a substring of the expected evaluation error.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates a property of the normal form.
type Assertion struct {
	// Type specifies the assertion type:
	// flat, idempotent, bindings, free_symbols, lowers, preserves_eval.
	Type string `yaml:"type"`

	// Count is the expected number (used by bindings and lowers).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFlat          = "flat"
	AssertIdempotent    = "idempotent"
	AssertBindings      = "bindings"
	AssertFreeSymbols   = "free_symbols"
	AssertLowers        = "lowers"
	AssertPreservesEval = "preserves_eval"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields to catch typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file of dir, ordered by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Tree == nil {
		return fmt.Errorf("tree is required")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	if len(s.Args) > 0 && len(s.Env) > 0 {
		return fmt.Errorf("args and env are mutually exclusive")
	}

	if s.Expect != nil && s.Expect.Result != "" && s.Expect.Error != "" {
		return fmt.Errorf("expect: result and error are mutually exclusive")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFlat, AssertIdempotent, AssertFreeSymbols, AssertPreservesEval:
		if a.Count != 0 {
			return fmt.Errorf("assertions[%d]: count is not used by %s", index, a.Type)
		}
	case AssertBindings, AssertLowers:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
