package pathexpr

import (
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/heracles-engine/heracles/internal/tree"
)

// ValueKind tags the Value union spec.md §9 calls for: "tagged
// variants (Number, String, Boolean, Nodeset) rather than a class
// hierarchy", mirroring XPath's own object model.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindString
	KindBoolean
	KindNodeset
)

// Value is the tagged result of evaluating a ValueExpr.
type Value struct {
	Kind    ValueKind
	Number  float64
	String  string
	Boolean bool
	Nodeset []*tree.Node
}

// Context carries everything evaluation needs beyond the Expr itself:
// the tree being queried, the node relative paths resolve against,
// and the symbol table for $variable lookups.
type Context struct {
	Tree    *tree.Tree
	Node    *tree.Node
	Symbols *SymbolTable
}

// Match evaluates expr against ctx and returns the resulting node set
// in document order, per spec.md §4.2's "match" operation.
func Match(ctx *Context, expr *Expr) ([]*tree.Node, *Error) {
	start, err := startSet(ctx, expr)
	if err != nil {
		return nil, err
	}
	return evalSteps(ctx, start, expr.Steps)
}

func startSet(ctx *Context, expr *Expr) ([]*tree.Node, *Error) {
	if expr.Var != "" {
		if ctx.Symbols == nil {
			return nil, newError(ENOVAR, "$"+expr.Var, 0)
		}
		b, ok := ctx.Symbols.lookup(expr.Var)
		if !ok {
			return nil, newError(ENOVAR, "$"+expr.Var, 0)
		}
		if b.expr != nil {
			return Match(ctx, b.expr)
		}
		return b.nodes, nil
	}
	if expr.Absolute {
		return []*tree.Node{ctx.Tree.Root()}, nil
	}
	return []*tree.Node{ctx.Node}, nil
}

func evalSteps(ctx *Context, nodes []*tree.Node, steps []*StepExpr) ([]*tree.Node, *Error) {
	cur := nodes
	for _, step := range steps {
		var out []*tree.Node
		for _, n := range cur {
			group := stepChildren(n, step.Name)
			survivors, err := applyPredicates(ctx, group, step.Predicates)
			if err != nil {
				return nil, err
			}
			out = append(out, survivors...)
		}
		cur = out
	}
	return cur, nil
}

func stepChildren(n *tree.Node, name string) []*tree.Node {
	if name == "." {
		return []*tree.Node{n}
	}
	var out []*tree.Node
	for _, c := range n.Children() {
		if c.Hidden() {
			continue
		}
		if name == "*" || c.Label() == name {
			out = append(out, c)
		}
	}
	return out
}

func applyPredicates(ctx *Context, group []*tree.Node, preds []PredExpr) ([]*tree.Node, *Error) {
	cur := group
	for _, pred := range preds {
		if pred.Index != nil {
			idx := pred.Index.Offset
			if pred.Index.FromLast {
				idx = len(cur) + pred.Index.Offset
			}
			if idx < 1 || idx > len(cur) {
				cur = nil
				continue
			}
			cur = []*tree.Node{cur[idx-1]}
			continue
		}
		var survivors []*tree.Node
		for i, n := range cur {
			ok, err := evalBool(ctx, pred.Bool, n, i+1, len(cur))
			if err != nil {
				return nil, err
			}
			if ok {
				survivors = append(survivors, n)
			}
		}
		cur = survivors
	}
	return cur, nil
}

func evalBool(ctx *Context, b BoolExpr, n *tree.Node, position, last int) (bool, *Error) {
	switch e := b.(type) {
	case OrExpr:
		for _, op := range e.Operands {
			ok, err := evalBool(ctx, op, n, position, last)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case AndExpr:
		for _, op := range e.Operands {
			ok, err := evalBool(ctx, op, n, position, last)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case CmpExpr:
		left, err := evalValue(ctx, e.Left, n, position, last)
		if err != nil {
			return false, err
		}
		if e.Op == "" {
			return truthy(left), nil
		}
		right, err := evalValue(ctx, e.Right, n, position, last)
		if err != nil {
			return false, err
		}
		return compare(e.Op, left, right)
	default:
		return false, newError(EINTERNAL, "", 0)
	}
}

func evalValue(ctx *Context, v ValueExpr, n *tree.Node, position, last int) (Value, *Error) {
	switch e := v.(type) {
	case NumberLit:
		return Value{Kind: KindNumber, Number: float64(e)}, nil
	case StringLit:
		return Value{Kind: KindString, String: string(e)}, nil
	case DotExpr:
		val, _ := n.Value()
		return Value{Kind: KindString, String: val}, nil
	case *pathFromBool:
		ok, err := evalBool(ctx, e.b, n, position, last)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBoolean, Boolean: ok}, nil
	case *PathValueExpr:
		sub := &Context{Tree: ctx.Tree, Node: n, Symbols: ctx.Symbols}
		nodes, err := Match(sub, e.Path)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindNodeset, Nodeset: nodes}, nil
	case *FuncCall:
		return evalFunc(ctx, e, n, position, last)
	default:
		return Value{}, newError(EINTERNAL, "", 0)
	}
}

func evalFunc(ctx *Context, f *FuncCall, n *tree.Node, position, last int) (Value, *Error) {
	switch f.Name {
	case "count":
		if len(f.Args) != 1 {
			return Value{}, newError(EARITY, f.Name, 0)
		}
		arg, err := evalValue(ctx, f.Args[0], n, position, last)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindNumber, Number: float64(len(arg.Nodeset))}, nil
	case "label":
		if len(f.Args) != 0 {
			return Value{}, newError(EARITY, f.Name, 0)
		}
		return Value{Kind: KindString, String: n.Label()}, nil
	case "last":
		if len(f.Args) != 0 {
			return Value{}, newError(EARITY, f.Name, 0)
		}
		return Value{Kind: KindNumber, Number: float64(last)}, nil
	case "position":
		if len(f.Args) != 0 {
			return Value{}, newError(EARITY, f.Name, 0)
		}
		return Value{Kind: KindNumber, Number: float64(position)}, nil
	case "glob":
		if len(f.Args) != 1 {
			return Value{}, newError(EARITY, f.Name, 0)
		}
		arg, err := evalValue(ctx, f.Args[0], n, position, last)
		if err != nil {
			return Value{}, err
		}
		matched, merr := filepath.Match(arg.String, n.Label())
		if merr != nil {
			return Value{}, newError(EREGEXP, f.Name, 0)
		}
		return Value{Kind: KindBoolean, Boolean: matched}, nil
	case "regexp":
		if len(f.Args) != 1 {
			return Value{}, newError(EARITY, f.Name, 0)
		}
		arg, err := evalValue(ctx, f.Args[0], n, position, last)
		if err != nil {
			return Value{}, err
		}
		re, rerr := regexp.Compile(arg.String)
		if rerr != nil {
			return Value{}, newError(EREGEXP, arg.String, 0)
		}
		val, _ := n.Value()
		return Value{Kind: KindBoolean, Boolean: re.MatchString(val)}, nil
	default:
		return Value{}, newError(ENAME, f.Name, 0)
	}
}

func truthy(v Value) bool {
	switch v.Kind {
	case KindBoolean:
		return v.Boolean
	case KindNumber:
		return v.Number != 0
	case KindString:
		return v.String != ""
	case KindNodeset:
		return len(v.Nodeset) > 0
	default:
		return false
	}
}

// compare implements XPath's "any node in the node-set satisfies the
// comparison" semantics when one side is a Nodeset, falling back to a
// scalar comparison of the two values' string forms otherwise.
func compare(op string, left, right Value) (bool, *Error) {
	if left.Kind == KindNodeset {
		for _, n := range left.Nodeset {
			val, _ := n.Value()
			ok, err := compareScalar(op, val, scalarString(right))
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	if right.Kind == KindNodeset {
		return compare(op, right, left)
	}
	return compareScalar(op, scalarString(left), scalarString(right))
}

func scalarString(v Value) string {
	switch v.Kind {
	case KindString:
		return v.String
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindBoolean:
		if v.Boolean {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

func compareScalar(op, left, right string) (bool, *Error) {
	ln, lerr := strconv.ParseFloat(left, 64)
	rn, rerr := strconv.ParseFloat(right, 64)
	numeric := lerr == nil && rerr == nil
	switch op {
	case "=":
		return left == right, nil
	case "!=":
		return left != right, nil
	case "<":
		if numeric {
			return ln < rn, nil
		}
		return left < right, nil
	case "<=":
		if numeric {
			return ln <= rn, nil
		}
		return left <= right, nil
	case ">":
		if numeric {
			return ln > rn, nil
		}
		return left > right, nil
	case ">=":
		if numeric {
			return ln >= rn, nil
		}
		return left >= right, nil
	default:
		return false, newError(ENOEQUAL, op, 0)
	}
}
