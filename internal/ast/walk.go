package ast

// Children returns the direct sub-expressions of e in evaluation order.
// Let binding symbols and Lambda arguments are binders, not children.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Apply:
		return append([]Expr{n.Fn}, n.Args...)
	case *Let:
		out := make([]Expr, 0, len(n.Bindings)+1)
		for _, b := range n.Bindings {
			out = append(out, b.Expr)
		}
		return append(out, n.Body)
	case *Lambda:
		return []Expr{n.Body}
	case *If:
		return []Expr{n.Cond, n.Then, n.Else}
	case *Tuple:
		return n.Values
	case *Closure:
		return append([]Expr{n.Fn}, n.Args...)
	case *Begin:
		return n.Stmts
	}
	return nil
}

// FreeSymbols returns the symbols referenced by e that no enclosing binder
// inside e binds, in first-occurrence order and without duplicates.
func FreeSymbols(e Expr) []*Symbol {
	var out []*Symbol
	seen := make(map[string]bool)
	var walk func(e Expr, bound map[string]bool)
	walk = func(e Expr, bound map[string]bool) {
		switch n := e.(type) {
		case *Symbol:
			k := n.Key()
			if !bound[k] && !seen[k] {
				seen[k] = true
				out = append(out, n)
			}
		case *Let:
			scope := extend(bound)
			for _, b := range n.Bindings {
				walk(b.Expr, scope)
				scope[b.Sym.Key()] = true
			}
			walk(n.Body, scope)
		case *Lambda:
			scope := extend(bound)
			for _, a := range n.Args {
				scope[a.Key()] = true
			}
			walk(n.Body, scope)
		default:
			for _, c := range Children(e) {
				walk(c, bound)
			}
		}
	}
	walk(e, map[string]bool{})
	return out
}

func extend(bound map[string]bool) map[string]bool {
	scope := make(map[string]bool, len(bound)+4)
	for k := range bound {
		scope[k] = true
	}
	return scope
}
