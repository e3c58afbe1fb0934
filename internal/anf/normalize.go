package anf

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/roach88/anfir/internal/ast"
	"github.com/roach88/anfir/internal/gensym"
)

// Option configures Normalize.
type Option func(*config)

type config struct {
	namer ast.Namer
}

// WithNamer sets the generator used for names minted outside of any Lambda.
//
// Default: the root Lambda's own generator, or a fresh gensym.Generator with
// an anonymous namespace.
func WithNamer(n ast.Namer) Option {
	return func(c *config) {
		c.namer = n
	}
}

// Normalize rewrites e into flat A-normal form: Transform followed by
// Collapse.
func Normalize(e ast.Expr, opts ...Option) (ast.Expr, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.namer == nil {
		if lam, ok := e.(*ast.Lambda); ok && lam.Gen != nil {
			cfg.namer = lam.Gen
		} else {
			cfg.namer = gensym.New("")
		}
	}

	tree, err := Transform(e, cfg.namer)
	if err != nil {
		return nil, err
	}
	flat, err := Collapse(tree)
	if err != nil {
		return nil, err
	}

	slog.Debug("normalized tree",
		"namespace", cfg.namer.Namespace(),
		"kind", ast.Kind(flat),
	)
	return flat, nil
}

// MustNormalize is like Normalize but panics on error.
// Use only for trees built in code.
func MustNormalize(e ast.Expr, opts ...Option) ast.Expr {
	out, err := Normalize(e, opts...)
	if err != nil {
		panic(fmt.Sprintf("MustNormalize: %v", err))
	}
	return out
}

// Transform runs the A-normal transformer alone. The result is in ANF but
// may still contain nested Let nodes.
//
// Let binders whose name is bound elsewhere in e, or also occurs free in e,
// are renamed to symbols derived with RenameMarker, so flattening cannot
// make one binding capture references meant for another.
func Transform(e ast.Expr, gen ast.Namer) (ast.Expr, error) {
	t := &transformer{gen: gen, shared: sharedBinders(e)}
	return t.transform(e, nil)
}

// stash tells a sub-transform what to do with a compound result. A nil
// stash returns the result inline. Otherwise the result is bound to a fresh
// symbol appended to acc and the symbol is returned. An empty name defers to
// the default name of the node being transformed.
type stash struct {
	name string
	acc  *[]ast.Binding
}

type transformer struct {
	gen     ast.Namer
	shared  map[string]bool
	renamed map[string]*ast.Symbol // binder key -> symbol it was renamed to
}

// scoped returns a transformer for a nested scope with its own renamings.
func (t *transformer) scoped(gen ast.Namer) *transformer {
	renamed := make(map[string]*ast.Symbol, len(t.renamed)+4)
	maps.Copy(renamed, t.renamed)
	return &transformer{gen: gen, shared: t.shared, renamed: renamed}
}

func (t *transformer) transform(e ast.Expr, st *stash) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.Symbol:
		if r, ok := t.renamed[n.Key()]; ok {
			return r, nil
		}
		return n, nil

	case *ast.Value:
		return n, nil

	case *ast.Apply:
		items := append([]ast.Expr{n.Fn}, n.Args...)
		return t.transformArguments(items, st, "", nil, true, func(items []ast.Expr) ast.Expr {
			return &ast.Apply{Fn: items[0], Args: items[1:]}
		})

	case *ast.If:
		return t.transformArguments([]ast.Expr{n.Cond, n.Then, n.Else}, st, "if",
			[]string{"cond", "then", "else"}, false, func(items []ast.Expr) ast.Expr {
				return &ast.If{Cond: items[0], Then: items[1], Else: items[2]}
			})

	case *ast.Tuple:
		return t.transformArguments(n.Values, st, "tup", nil, false, func(items []ast.Expr) ast.Expr {
			return &ast.Tuple{Values: items}
		})

	case *ast.Closure:
		items := append([]ast.Expr{n.Fn}, n.Args...)
		return t.transformArguments(items, st, "closure", nil, false, func(items []ast.Expr) ast.Expr {
			return &ast.Closure{Fn: items[0], Args: items[1:]}
		})

	case *ast.Let:
		inner := t.scoped(t.gen)
		bindings := make([]ast.Binding, len(n.Bindings))
		for i, b := range n.Bindings {
			sym := b.Sym
			if sym != nil && t.shared[sym.Key()] {
				sym = t.gen.Derive(b.Sym, RenameMarker)
			}
			// a lambda sees its own binding
			_, recursive := b.Expr.(*ast.Lambda)
			if recursive && sym != nil {
				inner.renamed[b.Sym.Key()] = sym
			}
			v, err := inner.transform(b.Expr, nil)
			if err != nil {
				return nil, err
			}
			if sym != nil {
				inner.renamed[b.Sym.Key()] = sym
			}
			bindings[i] = ast.Binding{Sym: sym, Expr: v}
		}
		body, err := inner.transform(n.Body, nil)
		if err != nil {
			return nil, err
		}
		return t.stash(st, &ast.Let{Bindings: bindings, Body: body}, "let"), nil

	case *ast.Lambda:
		gen := n.Gen
		if gen == nil {
			gen = t.childNamer(n)
		}
		inner := t.scoped(gen)
		for _, arg := range n.Args {
			if arg != nil {
				delete(inner.renamed, arg.Key())
			}
		}
		body, err := inner.transform(n.Body, nil)
		if err != nil {
			return nil, err
		}
		lam := &ast.Lambda{Args: n.Args, Body: body, Gen: gen, Ref: n.Ref}
		return t.stash(st, lam, "lambda"), nil

	case *ast.Begin:
		if len(n.Stmts) == 0 {
			return ast.Lit(ast.Nil{}), nil
		}
		last := len(n.Stmts) - 1
		var stmts []ast.Expr
		for _, s := range n.Stmts[:last] {
			if !ast.IsAtom(s) {
				stmts = append(stmts, s)
			}
		}
		stmts = append(stmts, n.Stmts[last])
		if len(stmts) == 1 {
			return t.transform(stmts[0], st)
		}
		bindings := make([]ast.Binding, len(stmts))
		for i, s := range stmts {
			bindings[i] = ast.Binding{Sym: t.gen.Sym("_"), Expr: s}
		}
		seq := &ast.Let{Bindings: bindings, Body: bindings[len(bindings)-1].Sym}
		return t.transform(seq, st)

	default:
		return nil, &UnsupportedNodeError{Pass: "transform", Node: fmt.Sprintf("%T", e)}
	}
}

// transformArguments normalizes the operand positions of a call-like node.
// With withFn set, items[0] is the function position and the base name is
// derived from its label; otherwise base names every generated symbol.
func (t *transformer) transformArguments(
	items []ast.Expr,
	st *stash,
	base string,
	tags []string,
	withFn bool,
	rebuild func([]ast.Expr) ast.Expr,
) (ast.Expr, error) {
	var bindings []ast.Binding
	out := make([]ast.Expr, 0, len(items))
	operands := items

	if withFn {
		fn, err := t.transform(items[0], &stash{acc: &bindings})
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
		operands = items[1:]
		base = BaseName(labelOf(fn))
	}
	if tags == nil {
		tags = defaultTags(len(operands))
	}

	for i, arg := range operands {
		a, err := t.transform(arg, &stash{name: joinName(base, tags[i]), acc: &bindings})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	result := rebuild(out)
	if len(bindings) > 0 {
		result = &ast.Let{Bindings: bindings, Body: result}
	}
	return t.stash(st, result, joinName(base, "out")), nil
}

func (t *transformer) stash(st *stash, result ast.Expr, defaultName string) ast.Expr {
	if st == nil {
		return result
	}
	name := st.name
	if name == "" {
		name = defaultName
	}
	sym := t.gen.Sym(name)
	*st.acc = append(*st.acc, ast.Binding{Sym: sym, Expr: result})
	return sym
}

// sharedBinders returns the keys of Let-bound names that are bound more than
// once in e, counting Lambda arguments, or that also occur free in e.
func sharedBinders(e ast.Expr) map[string]bool {
	binders := make(map[string]int)
	letBound := make(map[string]bool)
	free := make(map[string]bool)

	var walk func(e ast.Expr, bound map[string]bool)
	walk = func(e ast.Expr, bound map[string]bool) {
		switch n := e.(type) {
		case *ast.Symbol:
			if !bound[n.Key()] {
				free[n.Key()] = true
			}
		case *ast.Let:
			scope := maps.Clone(bound)
			for _, b := range n.Bindings {
				if b.Sym == nil {
					walk(b.Expr, scope)
					continue
				}
				k := b.Sym.Key()
				binders[k]++
				letBound[k] = true
				if _, ok := b.Expr.(*ast.Lambda); ok {
					scope[k] = true
				}
				walk(b.Expr, scope)
				scope[k] = true
			}
			walk(n.Body, scope)
		case *ast.Lambda:
			scope := maps.Clone(bound)
			for _, a := range n.Args {
				if a != nil {
					binders[a.Key()]++
					scope[a.Key()] = true
				}
			}
			walk(n.Body, scope)
		default:
			for _, c := range ast.Children(e) {
				walk(c, bound)
			}
		}
	}
	walk(e, map[string]bool{})

	shared := make(map[string]bool)
	for k := range letBound {
		if binders[k] > 1 || free[k] {
			shared[k] = true
		}
	}
	return shared
}

// childNamer scopes a lambda that came without a generator under the
// enclosing one.
func (t *transformer) childNamer(lam *ast.Lambda) ast.Namer {
	scope := "lambda"
	if lam.Ref != nil {
		scope = lam.Ref.Label
	}
	if g, ok := t.gen.(*gensym.Generator); ok {
		return g.Child(scope)
	}
	return gensym.New("")
}

func labelOf(e ast.Expr) string {
	if s, ok := e.(*ast.Symbol); ok {
		return s.RootLabel()
	}
	return ""
}
