package harness

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion holds.
	Pass bool `json:"pass"`

	// Source is the printed source tree.
	Source string `json:"source"`

	// NormalForm is the printed normal form.
	NormalForm string `json:"normal_form"`

	// Bindings is the number of Let bindings in the normal form.
	Bindings int `json:"bindings"`

	// Violations are the checker codes reported for the source.
	Violations []string `json:"violations"`

	// Value is the formatted evaluation result, empty when the scenario
	// does not evaluate.
	Value string `json:"value,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Violations: []string{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
