// Package optimizer implements Hana's AST-to-AST rewriter: constant
// folding, constant propagation, algebraic identity elimination, and
// dead-branch elimination (spec §4.3), grounded on
// original_source/4_Optimization/optimizer.py's OptimizingMIPSCodeGenerator.
package optimizer

import (
	"hana/ast"
	"strconv"
)

// Optimizer rewrites an AST in place (by replacing, never mutating, nodes)
// using a small constant environment that maps a variable name to the last
// literal number known to have been assigned to it. It is conservative by
// omission: anything it cannot prove safe is left untouched, side effects
// are never reordered, and function calls are never evaluated.
type Optimizer struct {
	constants map[string]string
}

// New builds an Optimizer with an empty constant environment.
func New() *Optimizer {
	return &Optimizer{constants: make(map[string]string)}
}

// Optimize applies the fused fold/propagate/simplify/prune passes to every
// top-level node, dropping nodes that reduce to nothing (a While whose
// condition folds to 거짓, for instance).
func Optimize(nodes []ast.Node) []ast.Node {
	o := New()
	var out []ast.Node
	for _, n := range nodes {
		if opt := o.optimize(n); opt != nil {
			out = append(out, opt...)
		}
	}
	return out
}

// optimize rewrites a single node, returning the replacement nodes (zero,
// one, or — for a dead-branch If collapsing into its live body — many).
func (o *Optimizer) optimize(node ast.Node) []ast.Node {
	if node == nil {
		return nil
	}
	switch n := node.(type) {
	case *ast.BinaryOp:
		return []ast.Node{o.optimizeBinaryOp(n)}

	case *ast.Assign:
		expr := o.optimizeExpr(n.Expr)
		if num, ok := expr.(*ast.Number); ok {
			o.constants[n.Target.Name] = num.Value
		} else {
			delete(o.constants, n.Target.Name)
		}
		return []ast.Node{&ast.Assign{Target: n.Target, Expr: expr}}

	case *ast.Identifier:
		if v, ok := o.constants[n.Name]; ok {
			return []ast.Node{&ast.Number{Value: v}}
		}
		return []ast.Node{n}

	case *ast.While:
		o.constants = make(map[string]string)
		cond := o.optimizeExpr(n.Condition)
		if truthy, known := constTruth(cond); known && !truthy {
			return nil
		}
		body := o.optimizeBody(n.Body)
		o.constants = make(map[string]string)
		return []ast.Node{&ast.While{Condition: cond, Body: body}}

	case *ast.If:
		cond := o.optimizeExpr(n.Condition)
		if truthy, known := constTruth(cond); known {
			if truthy {
				return o.optimizeBody(n.Body)
			}
			return o.optimizeBody(n.Else)
		}
		body := o.optimizeBody(n.Body)
		o.constants = make(map[string]string)
		elseBody := o.optimizeBody(n.Else)
		o.constants = make(map[string]string)
		return []ast.Node{&ast.If{Condition: cond, Body: body, Else: elseBody}}

	case *ast.FuncDef:
		o.constants = make(map[string]string)
		body := o.optimizeBody(n.Body)
		o.constants = make(map[string]string)
		return []ast.Node{&ast.FuncDef{Name: n.Name, Params: n.Params, Body: body}}

	case *ast.FuncCall:
		o.constants = make(map[string]string)
		return []ast.Node{n}

	case *ast.Print:
		return []ast.Node{&ast.Print{Expr: o.optimizeExpr(n.Expr)}}

	case *ast.Return:
		return []ast.Node{&ast.Return{Expr: o.optimizeExpr(n.Expr)}}

	default:
		return []ast.Node{n}
	}
}

// optimizeBody optimizes each statement in a sequence, dropping any that
// reduce to nothing and flattening any that expand (a nested dead-branch If).
func (o *Optimizer) optimizeBody(body []ast.Node) []ast.Node {
	var out []ast.Node
	for _, stmt := range body {
		out = append(out, o.optimize(stmt)...)
	}
	return out
}

// optimizeExpr optimizes a single expression-shaped node, used where the
// caller needs exactly one replacement rather than a statement sequence.
func (o *Optimizer) optimizeExpr(n ast.Node) ast.Node {
	if n == nil {
		return nil
	}
	replaced := o.optimize(n)
	if len(replaced) == 0 {
		return n
	}
	return replaced[0]
}

// optimizeBinaryOp folds constant operands, recurses into non-constant
// operands, and eliminates algebraic identities with the literal on either
// side (x+0, 0+x, x*1, 1*x).
func (o *Optimizer) optimizeBinaryOp(n *ast.BinaryOp) ast.Node {
	left := o.optimizeExpr(n.Left)
	right := o.optimizeExpr(n.Right)

	leftNum, leftIsNum := left.(*ast.Number)
	rightNum, rightIsNum := right.(*ast.Number)
	if leftIsNum && rightIsNum {
		if folded, ok := foldConstants(n.Operator, leftNum.Value, rightNum.Value); ok {
			return folded
		}
	}

	if isIdentity(n.Operator, right) {
		return left
	}
	if isIdentity(n.Operator, left) {
		return right
	}

	return &ast.BinaryOp{Left: left, Operator: n.Operator, Right: right}
}

// foldConstants evaluates a binary op over two numeric-lexeme operands.
// Integer arithmetic only, per spec §4.3; a non-integer lexeme on either
// side leaves folding to the generator instead of guessing a representation.
func foldConstants(operator, left, right string) (*ast.Number, bool) {
	l, lErr := strconv.ParseInt(left, 10, 64)
	r, rErr := strconv.ParseInt(right, 10, 64)
	if lErr != nil || rErr != nil {
		return nil, false
	}

	var result int64
	switch operator {
	case "+":
		result = l + r
	case "-":
		result = l - r
	case "*":
		result = l * r
	case "/":
		if r == 0 {
			result = 0
		} else {
			result = l / r
			if l%r != 0 && (l < 0) != (r < 0) {
				result--
			}
		}
	case "==":
		result = boolToInt(l == r)
	case "!=":
		result = boolToInt(l != r)
	case "<":
		result = boolToInt(l < r)
	case "<=":
		result = boolToInt(l <= r)
	case ">":
		result = boolToInt(l > r)
	case ">=":
		result = boolToInt(l >= r)
	default:
		return nil, false
	}
	return &ast.Number{Value: strconv.FormatInt(result, 10)}, true
}

// constTruth reports whether a folded condition is known at compile time,
// and if so, whether it is truthy. A comparison operator folds to a Number
// ("1"/"0"), not a Boolean, so dead-branch elimination must recognize both
// shapes: nonzero is truthy, zero is falsy.
func constTruth(n ast.Node) (truthy bool, known bool) {
	switch v := n.(type) {
	case *ast.Boolean:
		return v.Value, true
	case *ast.Number:
		return v.Value != "0", true
	default:
		return false, false
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// isIdentity reports whether op applied against a right operand of num is an
// algebraic no-op: x + 0 or x * 1.
func isIdentity(operator string, right ast.Node) bool {
	num, ok := right.(*ast.Number)
	if !ok {
		return false
	}
	switch operator {
	case "+":
		return num.Value == "0"
	case "*":
		return num.Value == "1"
	default:
		return false
	}
}
