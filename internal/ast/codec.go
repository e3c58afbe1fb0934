package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tree files use a tagged generic form that maps directly onto JSON, YAML
// and CUE values:
//
//	"f"                               user symbol f
//	{"sym": "f", "ns": "n", "v": 2}   generated symbol
//	1, 2.5, true, null                Int, Float, Bool and Nil literals
//	{"str": "text"}                   Str literal
//	{"apply": [fn, arg...]}
//	{"let": [[sym, expr], ...], "body": expr}
//	{"lambda": [arg...], "body": expr, "ns": "scope", "ref": sym}
//	{"if": [cond, then, else]}
//	{"tuple": [expr...]}
//	{"closure": [fn, arg...]}
//	{"begin": [expr...]}

// DecodeError reports a malformed tree with the path of the offending node.
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "decode tree: " + e.Message
	}
	return fmt.Sprintf("decode tree at %s: %s", e.Path, e.Message)
}

// Decoder converts the generic form into trees.
type Decoder struct {
	// NewNamer supplies the name generator of each decoded Lambda, given
	// its scope name. When nil, lambdas are decoded without a generator.
	NewNamer func(scope string) Namer
}

// Encode converts a tree into the generic form. Maps are map[string]any and
// Float literals are json.Number values so that JSON output keeps them
// distinct from integers.
func Encode(e Expr) (any, error) {
	switch n := e.(type) {
	case *Symbol:
		return encodeSymbol(n), nil
	case *Value:
		return encodeLiteral(n.Literal)
	case *Apply:
		items, err := encodeList(append([]Expr{n.Fn}, n.Args...))
		if err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
		return map[string]any{KindApply: items}, nil
	case *Let:
		bindings := make([]any, 0, len(n.Bindings))
		for i, b := range n.Bindings {
			if b.Sym == nil {
				return nil, fmt.Errorf("let binding %d: missing symbol", i)
			}
			v, err := Encode(b.Expr)
			if err != nil {
				return nil, fmt.Errorf("let binding %s: %w", b.Sym, err)
			}
			bindings = append(bindings, []any{encodeSymbol(b.Sym), v})
		}
		body, err := Encode(n.Body)
		if err != nil {
			return nil, fmt.Errorf("let body: %w", err)
		}
		return map[string]any{KindLet: bindings, "body": body}, nil
	case *Lambda:
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = encodeSymbol(a)
		}
		body, err := Encode(n.Body)
		if err != nil {
			return nil, fmt.Errorf("lambda body: %w", err)
		}
		out := map[string]any{KindLambda: args, "body": body}
		if n.Gen != nil && n.Gen.Namespace() != "" {
			out["ns"] = n.Gen.Namespace()
		}
		if n.Ref != nil {
			out["ref"] = encodeSymbol(n.Ref)
		}
		return out, nil
	case *If:
		items, err := encodeList([]Expr{n.Cond, n.Then, n.Else})
		if err != nil {
			return nil, fmt.Errorf("if: %w", err)
		}
		return map[string]any{KindIf: items}, nil
	case *Tuple:
		items, err := encodeList(n.Values)
		if err != nil {
			return nil, fmt.Errorf("tuple: %w", err)
		}
		return map[string]any{KindTuple: items}, nil
	case *Closure:
		items, err := encodeList(append([]Expr{n.Fn}, n.Args...))
		if err != nil {
			return nil, fmt.Errorf("closure: %w", err)
		}
		return map[string]any{KindClosure: items}, nil
	case *Begin:
		items, err := encodeList(n.Stmts)
		if err != nil {
			return nil, fmt.Errorf("begin: %w", err)
		}
		return map[string]any{KindBegin: items}, nil
	case nil:
		return nil, fmt.Errorf("nil expression")
	default:
		return nil, fmt.Errorf("unsupported node type %T", e)
	}
}

func encodeList(items []Expr) ([]any, error) {
	out := make([]any, len(items))
	for i, item := range items {
		v, err := Encode(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func encodeSymbol(s *Symbol) any {
	if s.Namespace == "" && s.Version == 0 && s.Base == nil {
		return s.Label
	}
	out := map[string]any{KindSym: s.Label}
	if s.Namespace != "" {
		out["ns"] = s.Namespace
	}
	if s.Version != 0 {
		out["v"] = int64(s.Version)
	}
	if s.Base != nil {
		out["base"] = encodeSymbol(s.Base)
		out["rel"] = s.Relation
	}
	return out
}

func encodeLiteral(l Literal) (any, error) {
	switch v := l.(type) {
	case nil, Nil:
		return nil, nil
	case Int:
		return int64(v), nil
	case Float:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite float %v", f)
		}
		return json.Number(v.String()), nil
	case Str:
		return map[string]any{"str": string(v)}, nil
	case Bool:
		return bool(v), nil
	default:
		return nil, fmt.Errorf("unsupported literal %T", l)
	}
}

// Decode converts the generic form into a tree.
func (d Decoder) Decode(v any) (Expr, error) {
	return d.decode(v, "$")
}

func (d Decoder) decode(v any, path string) (Expr, error) {
	switch x := v.(type) {
	case nil:
		return Lit(Nil{}), nil
	case string:
		if x == "" {
			return nil, &DecodeError{Path: path, Message: "empty symbol"}
		}
		return NewSymbol(x), nil
	case bool:
		return Lit(Bool(x)), nil
	case int:
		return Lit(Int(x)), nil
	case int64:
		return Lit(Int(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, &DecodeError{Path: path, Message: "integer overflows int64"}
		}
		return Lit(Int(x)), nil
	case float64:
		return Lit(Float(x)), nil
	case json.Number:
		return decodeNumber(x, path)
	case map[string]any:
		return d.decodeNode(x, path)
	case []any:
		return nil, &DecodeError{Path: path, Message: "bare list is not an expression"}
	default:
		return nil, &DecodeError{Path: path, Message: fmt.Sprintf("unsupported value %T", v)}
	}
}

func decodeNumber(n json.Number, path string) (Expr, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &DecodeError{Path: path, Message: err.Error()}
		}
		return Lit(Int(i)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &DecodeError{Path: path, Message: err.Error()}
	}
	return Lit(Float(f)), nil
}

func (d Decoder) decodeNode(m map[string]any, path string) (Expr, error) {
	if s, ok := m["str"]; ok {
		str, ok := s.(string)
		if !ok {
			return nil, &DecodeError{Path: path, Message: "str must be a string"}
		}
		return Lit(Str(str)), nil
	}
	if _, ok := m[KindSym]; ok {
		return decodeSymbol(m, path)
	}
	for _, kind := range []string{KindApply, KindLet, KindLambda, KindIf, KindTuple, KindClosure, KindBegin} {
		raw, ok := m[kind]
		if !ok {
			continue
		}
		p := path + "." + kind
		switch kind {
		case KindLet:
			return d.decodeLet(raw, m, path)
		case KindLambda:
			return d.decodeLambda(raw, m, path)
		}
		items, err := d.decodeList(raw, p)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindApply:
			if len(items) == 0 {
				return nil, &DecodeError{Path: p, Message: "apply needs a function"}
			}
			return &Apply{Fn: items[0], Args: items[1:]}, nil
		case KindIf:
			if len(items) != 3 {
				return nil, &DecodeError{Path: p, Message: fmt.Sprintf("if needs 3 operands, got %d", len(items))}
			}
			return &If{Cond: items[0], Then: items[1], Else: items[2]}, nil
		case KindTuple:
			return &Tuple{Values: items}, nil
		case KindClosure:
			if len(items) == 0 {
				return nil, &DecodeError{Path: p, Message: "closure needs a function"}
			}
			return &Closure{Fn: items[0], Args: items[1:]}, nil
		case KindBegin:
			return &Begin{Stmts: items}, nil
		}
	}
	return nil, &DecodeError{Path: path, Message: "object has no node tag"}
}

func (d Decoder) decodeList(raw any, path string) ([]Expr, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &DecodeError{Path: path, Message: "expected a list"}
	}
	items := make([]Expr, len(list))
	for i, item := range list {
		e, err := d.decode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		items[i] = e
	}
	return items, nil
}

func (d Decoder) decodeLet(raw any, m map[string]any, path string) (Expr, error) {
	p := path + ".let"
	list, ok := raw.([]any)
	if !ok {
		return nil, &DecodeError{Path: p, Message: "expected a list of bindings"}
	}
	bindings := make([]Binding, len(list))
	for i, item := range list {
		bp := fmt.Sprintf("%s[%d]", p, i)
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, &DecodeError{Path: bp, Message: "binding must be [symbol, expr]"}
		}
		sym, err := symbolOf(pair[0], bp+"[0]")
		if err != nil {
			return nil, err
		}
		e, err := d.decode(pair[1], bp+"[1]")
		if err != nil {
			return nil, err
		}
		bindings[i] = Binding{Sym: sym, Expr: e}
	}
	body, err := d.decodeBody(m, path)
	if err != nil {
		return nil, err
	}
	return &Let{Bindings: bindings, Body: body}, nil
}

func (d Decoder) decodeLambda(raw any, m map[string]any, path string) (Expr, error) {
	p := path + ".lambda"
	list, ok := raw.([]any)
	if !ok {
		return nil, &DecodeError{Path: p, Message: "expected a list of arguments"}
	}
	args := make([]*Symbol, len(list))
	for i, item := range list {
		sym, err := symbolOf(item, fmt.Sprintf("%s[%d]", p, i))
		if err != nil {
			return nil, err
		}
		args[i] = sym
	}
	body, err := d.decodeBody(m, path)
	if err != nil {
		return nil, err
	}
	lam := &Lambda{Args: args, Body: body}
	if ref, ok := m["ref"]; ok {
		sym, err := symbolOf(ref, path+".ref")
		if err != nil {
			return nil, err
		}
		lam.Ref = sym
	}
	if d.NewNamer != nil {
		scope, _ := m["ns"].(string)
		if scope == "" && lam.Ref != nil {
			scope = lam.Ref.Label
		}
		lam.Gen = d.NewNamer(scope)
	}
	return lam, nil
}

func (d Decoder) decodeBody(m map[string]any, path string) (Expr, error) {
	raw, ok := m["body"]
	if !ok {
		return nil, &DecodeError{Path: path, Message: "missing body"}
	}
	return d.decode(raw, path+".body")
}

func symbolOf(v any, path string) (*Symbol, error) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil, &DecodeError{Path: path, Message: "empty symbol"}
		}
		return NewSymbol(x), nil
	case map[string]any:
		if _, ok := x[KindSym]; ok {
			return decodeSymbol(x, path)
		}
	}
	return nil, &DecodeError{Path: path, Message: fmt.Sprintf("expected a symbol, got %T", v)}
}

func decodeSymbol(m map[string]any, path string) (*Symbol, error) {
	label, ok := m[KindSym].(string)
	if !ok {
		return nil, &DecodeError{Path: path, Message: "sym must be a string"}
	}
	s := &Symbol{Label: label}
	if ns, ok := m["ns"]; ok {
		if s.Namespace, ok = ns.(string); !ok {
			return nil, &DecodeError{Path: path, Message: "ns must be a string"}
		}
	}
	if v, ok := m["v"]; ok {
		n, err := intOf(v)
		if err != nil {
			return nil, &DecodeError{Path: path + ".v", Message: err.Error()}
		}
		s.Version = n
	}
	if base, ok := m["base"]; ok {
		b, err := symbolOf(base, path+".base")
		if err != nil {
			return nil, err
		}
		s.Base = b
		s.Relation, _ = m["rel"].(string)
	}
	return s, nil
}

func intOf(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected an integer, got %v", x)
		}
		return int(x), nil
	case json.Number:
		i, err := x.Int64()
		return int(i), err
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

// MarshalExpr encodes a tree as indented JSON.
func MarshalExpr(e Expr) ([]byte, error) {
	v, err := Encode(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalExpr decodes a JSON tree. Numbers keep their integer or float
// spelling.
func (d Decoder) UnmarshalExpr(data []byte) (Expr, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse tree json: %w", err)
	}
	return d.Decode(v)
}
