package optimizer

import (
	"hana/ast"
	"testing"
)

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		name string
		op   string
		a, b string
		want string
	}{
		{"add", "+", "2", "3", "5"},
		{"sub", "-", "10", "4", "6"},
		{"mul", "*", "6", "7", "42"},
		{"div floor", "/", "7", "2", "3"},
		{"div by zero folds to 0", "/", "5", "0", "0"},
		{"less than", "<", "2", "3", "1"},
		{"equal", "==", "5", "5", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := Optimize([]ast.Node{&ast.Print{Expr: &ast.BinaryOp{
				Left:     &ast.Number{Value: tt.a},
				Operator: tt.op,
				Right:    &ast.Number{Value: tt.b},
			}}})
			print := nodes[0].(*ast.Print)
			num, ok := print.Expr.(*ast.Number)
			if !ok || num.Value != tt.want {
				t.Errorf("fold(%s %s %s) = %#v, want Number(%s)", tt.a, tt.op, tt.b, print.Expr, tt.want)
			}
		})
	}
}

func TestConstantPropagation(t *testing.T) {
	nodes := Optimize([]ast.Node{
		&ast.Assign{Target: &ast.Identifier{Name: "x"}, Expr: &ast.Number{Value: "5"}},
		&ast.Print{Expr: &ast.Identifier{Name: "x"}},
	})
	print := nodes[1].(*ast.Print)
	num, ok := print.Expr.(*ast.Number)
	if !ok || num.Value != "5" {
		t.Errorf("expected propagated Number(5), got %#v", print.Expr)
	}
}

func TestAlgebraicIdentityElimination(t *testing.T) {
	nodes := Optimize([]ast.Node{
		&ast.Assign{Target: &ast.Identifier{Name: "y"}, Expr: &ast.Number{Value: "7"}},
		&ast.Print{Expr: &ast.BinaryOp{Left: &ast.Identifier{Name: "y"}, Operator: "*", Right: &ast.Number{Value: "1"}}},
	})
	print := nodes[1].(*ast.Print)
	if num, ok := print.Expr.(*ast.Number); !ok || num.Value != "7" {
		t.Errorf("expected y*1 to fold through propagation to Number(7), got %#v", print.Expr)
	}
}

func TestDeadBranchEliminationIf(t *testing.T) {
	nodes := Optimize([]ast.Node{
		&ast.If{
			Condition: &ast.Boolean{Value: false},
			Body:      []ast.Node{&ast.Print{Expr: &ast.Number{Value: "1"}}},
			Else:      []ast.Node{&ast.Print{Expr: &ast.Number{Value: "2"}}},
		},
	})
	if len(nodes) != 1 {
		t.Fatalf("expected If(false) to reduce to its else branch, got %d nodes", len(nodes))
	}
	print, ok := nodes[0].(*ast.Print)
	if !ok {
		t.Fatalf("expected *ast.Print, got %T", nodes[0])
	}
	if num, ok := print.Expr.(*ast.Number); !ok || num.Value != "2" {
		t.Errorf("expected Number(2), got %#v", print.Expr)
	}
}

func TestDeadBranchEliminationIfWithFoldedComparisonCondition(t *testing.T) {
	// The condition folds to Number("1"), not Boolean(true); dead-branch
	// elimination must still recognize it as constant-truthy.
	nodes := Optimize([]ast.Node{
		&ast.If{
			Condition: &ast.BinaryOp{Left: &ast.Number{Value: "1"}, Operator: "==", Right: &ast.Number{Value: "1"}},
			Body:      []ast.Node{&ast.Print{Expr: &ast.Number{Value: "10"}}},
			Else:      []ast.Node{&ast.Print{Expr: &ast.Number{Value: "20"}}},
		},
	})
	if len(nodes) != 1 {
		t.Fatalf("expected If(1==1) to reduce to its then branch, got %d nodes", len(nodes))
	}
	print, ok := nodes[0].(*ast.Print)
	if !ok {
		t.Fatalf("expected *ast.Print, got %T", nodes[0])
	}
	if num, ok := print.Expr.(*ast.Number); !ok || num.Value != "10" {
		t.Errorf("expected Number(10), got %#v", print.Expr)
	}
}

func TestDeadBranchEliminationIfWithoutElse(t *testing.T) {
	nodes := Optimize([]ast.Node{
		&ast.If{
			Condition: &ast.Boolean{Value: false},
			Body:      []ast.Node{&ast.Print{Expr: &ast.Number{Value: "1"}}},
		},
	})
	if len(nodes) != 0 {
		t.Errorf("expected If(false) with no else to vanish entirely, got %d nodes", len(nodes))
	}
}

func TestWhileFalseEliminated(t *testing.T) {
	nodes := Optimize([]ast.Node{
		&ast.While{Condition: &ast.Boolean{Value: false}, Body: []ast.Node{&ast.Print{Expr: &ast.Number{Value: "1"}}}},
	})
	if len(nodes) != 0 {
		t.Errorf("expected While(false) to be dropped entirely, got %d nodes", len(nodes))
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	input := []ast.Node{
		&ast.Print{Expr: &ast.BinaryOp{Left: &ast.Number{Value: "2"}, Operator: "+", Right: &ast.Number{Value: "3"}}},
	}
	once := Optimize(input)
	twice := Optimize(once)
	n1 := once[0].(*ast.Print).Expr.(*ast.Number).Value
	n2 := twice[0].(*ast.Print).Expr.(*ast.Number).Value
	if n1 != n2 {
		t.Errorf("Optimize is not idempotent: %v vs %v", n1, n2)
	}
}
