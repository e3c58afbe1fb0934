package anf

import (
	"fmt"

	"github.com/roach88/anfir/internal/ast"
)

// Violation codes (E200-E299)
const (
	ErrNonAtomicOperand = "E201" // compound expression in an operand position
	ErrNestedLetBinding = "E202" // Let used as a binding value
	ErrNestedLetBody    = "E203" // Let used as a Let body
	ErrForwardReference = "E204" // binding refers to a name bound later in its Let
	ErrBeginSurvives    = "E205" // Begin left in a normalized tree
	ErrNilNode          = "E206" // missing sub-expression
)

// Violation is one way in which a tree fails to be flat A-normal form.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Field, v.Message)
}

// Check reports every violation of flat A-normal form in e. It does not
// stop at the first one. Lambda bodies are checked as their own scopes.
func Check(e ast.Expr) []Violation {
	c := &checker{}
	c.check(e, "$")
	return c.violations
}

// Verify is Check returning a *CheckError, or nil for a well-formed tree.
func Verify(e ast.Expr) error {
	if vs := Check(e); len(vs) > 0 {
		return &CheckError{Violations: vs}
	}
	return nil
}

type checker struct {
	violations []Violation
}

func (c *checker) add(code, field, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (c *checker) check(e ast.Expr, path string) {
	switch n := e.(type) {
	case nil:
		c.add(ErrNilNode, path, "missing expression")
	case *ast.Symbol, *ast.Value:
	case *ast.Apply:
		c.operands(path+".apply", append([]ast.Expr{n.Fn}, n.Args...))
	case *ast.If:
		c.operands(path+".if", []ast.Expr{n.Cond, n.Then, n.Else})
	case *ast.Tuple:
		c.operands(path+".tuple", n.Values)
	case *ast.Closure:
		c.operands(path+".closure", append([]ast.Expr{n.Fn}, n.Args...))
	case *ast.Lambda:
		c.check(n.Body, path+".body")
	case *ast.Begin:
		c.add(ErrBeginSurvives, path, "begin must be lowered to let")
		for i, s := range n.Stmts {
			c.check(s, fmt.Sprintf("%s.begin[%d]", path, i))
		}
	case *ast.Let:
		c.let(n, path)
	}
}

func (c *checker) operands(path string, items []ast.Expr) {
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		if item == nil {
			c.add(ErrNilNode, p, "missing operand")
			continue
		}
		if !ast.IsAtom(item) {
			c.add(ErrNonAtomicOperand, p, "operand %s is not a symbol or value", ast.Kind(item))
		}
		c.check(item, p)
	}
}

func (c *checker) let(n *ast.Let, path string) {
	// position of the first binding of each name
	first := make(map[string]int, len(n.Bindings))
	for i, b := range n.Bindings {
		if b.Sym == nil {
			continue
		}
		if _, ok := first[b.Sym.Key()]; !ok {
			first[b.Sym.Key()] = i
		}
	}

	for i, b := range n.Bindings {
		p := fmt.Sprintf("%s.let[%d]", path, i)
		if b.Sym == nil {
			c.add(ErrNilNode, p, "binding has no symbol")
		}
		if _, ok := b.Expr.(*ast.Let); ok {
			c.add(ErrNestedLetBinding, p, "binding value is a let")
		}
		if b.Expr != nil {
			// a reference to the binding's own name is the enclosing one,
			// or the binding itself when it is a lambda
			for _, ref := range ast.FreeSymbols(b.Expr) {
				if pos, ok := first[ref.Key()]; ok && pos > i {
					c.add(ErrForwardReference, p, "refers to %s before it is bound", ref)
				}
			}
		}
		c.check(b.Expr, p)
	}

	if _, ok := n.Body.(*ast.Let); ok {
		c.add(ErrNestedLetBody, path+".body", "let body is a let")
	}
	c.check(n.Body, path+".body")
}
