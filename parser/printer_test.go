package parser

import (
	"encoding/json"
	"hana/ast"
	"os"
	"path/filepath"
	"testing"
)

func TestPrintASTJSON_Print(t *testing.T) {
	nodes := []ast.Node{
		&ast.Print{Expr: &ast.Number{Value: "42"}},
	}

	jsonString, err := PrintASTJSON(nodes)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonString), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 node, got %d", len(out))
	}

	node := out[0]
	if typ, ok := node["type"].(string); !ok || typ != "Print" {
		t.Fatalf("expected type Print, got %v", node["type"])
	}

	expr, ok := node["expr"].(map[string]any)
	if !ok {
		t.Fatalf("expected expr to be an object, got %v", node["expr"])
	}
	if expr["type"] != "Number" || expr["value"] != "42" {
		t.Fatalf("expected Number 42, got %v", expr)
	}
}

func TestWriteASTJSONToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ast.json")

	nodes := []ast.Node{&ast.Identifier{Name: "x"}}
	if err := WriteASTJSONToFile(nodes, path); err != nil {
		t.Fatalf("WriteASTJSONToFile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal written file: %v", err)
	}
	if len(out) != 1 || out[0]["type"] != "Identifier" {
		t.Fatalf("unexpected written AST: %v", out)
	}
}
