// Package codegen turns an optimized Hana AST into MIPS32 assembly text
// (spec §4.4/§4.5), grounded on original_source/4_Optimization/codegen.py's
// MIPSCodeGenerator and styled after compiler/ast_compiler.go's visitor-based
// traversal (scope/slot bookkeeping replaced by Hana's flat, unscoped stack
// layout per spec §9).
package codegen

import (
	"fmt"
	"hana/ast"
	"io"
	"os"
	"strings"
)

var binaryOpcodes = map[string]string{
	"+":    "add",
	"-":    "sub",
	"*":    "mul",
	"/":    "div",
	"%":    "rem",
	"==":   "seq",
	"!=":   "sne",
	"<":    "slt",
	"<=":   "sle",
	">":    "sgt",
	">=":   "sge",
	"그리고": "and",
	"이거나": "or",
}

// Generator walks an optimized AST and emits MIPS32 assembly. It implements
// ast.Visitor; every Visit method returns a bool (boxed as any) reporting
// whether emission should continue — an *ast.Error sets stopped and every
// later top-level node, not just the rest of the current subtree, is
// skipped, matching the original generator's get_code() truncation.
type Generator struct {
	variables    map[string]int
	stackOffset  int
	labelCounter int

	lists map[string]string
	dicts map[string]string

	stringLabels map[string]string

	mainLines []string
	funcLines []string
	current   *[]string

	data []string

	usesPow bool
	stopped bool

	warn io.Writer
}

// New builds a Generator ready to process a full compilation unit.
func New() *Generator {
	g := &Generator{
		variables:    make(map[string]int),
		lists:        make(map[string]string),
		dicts:        make(map[string]string),
		stringLabels: make(map[string]string),
		warn:         os.Stderr,
	}
	g.current = &g.mainLines
	return g
}

// Generate compiles nodes into a complete .data/.text MIPS program.
func Generate(nodes []ast.Node) string {
	return New().Generate(nodes)
}

func (g *Generator) Generate(nodes []ast.Node) string {
	for _, node := range nodes {
		if g.stopped {
			break
		}
		g.visit(node)
	}
	if !g.stopped {
		g.emit("li $v0, 10")
		g.emit("syscall")
	}
	return g.output()
}

// visit dispatches to node.Accept and unboxes the bool result. A nil node
// (an absent else-branch, an empty Dict declaration) is always a no-op
// success.
func (g *Generator) visit(node ast.Node) bool {
	if node == nil {
		return true
	}
	if g.stopped {
		return false
	}
	ok, _ := node.Accept(g).(bool)
	return ok
}

func (g *Generator) emit(format string, args ...any) {
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}
	*g.current = append(*g.current, line)
}

func (g *Generator) emitData(line string) {
	g.data = append(g.data, line)
}

func (g *Generator) newLabel(base string) string {
	g.labelCounter++
	return fmt.Sprintf("%s_%d", base, g.labelCounter)
}

func (g *Generator) lastLine() string {
	if len(*g.current) == 0 {
		return ""
	}
	return (*g.current)[len(*g.current)-1]
}

// fail records an in-band diagnostic and stops the remainder of the unit.
// Used both for *ast.Error nodes and for constructs codegen cannot express.
func (g *Generator) fail(message string) {
	g.emit("# Error encountered: %s", message)
	g.stopped = true
}

func (g *Generator) warnf(format string, args ...any) {
	fmt.Fprintf(g.warn, "⚠️  "+format+"\n", args...)
}

// allocate returns name's stack-frame offset, assigning the next monotonic
// slot (starting at -4, stepping -4) the first time it is seen.
func (g *Generator) allocate(name string) int {
	if off, ok := g.variables[name]; ok {
		return off
	}
	g.stackOffset -= 4
	g.variables[name] = g.stackOffset
	return g.stackOffset
}

func (g *Generator) loadNumber(value string) {
	want := fmt.Sprintf("li $v0, %s", value)
	if g.lastLine() == want {
		return
	}
	g.emit(want)
}

func (g *Generator) stringLabel(value string) string {
	if label, ok := g.stringLabels[value]; ok {
		return label
	}
	label := fmt.Sprintf("str_%d", len(g.stringLabels)+1)
	g.stringLabels[value] = label
	g.emitData(fmt.Sprintf("%s: .asciiz %s", label, value))
	return label
}

// --- literals ---

func (g *Generator) VisitNumber(n *ast.Number) any {
	g.loadNumber(n.Value)
	return true
}

func (g *Generator) VisitBoolean(n *ast.Boolean) any {
	if n.Value {
		g.loadNumber("1")
	} else {
		g.loadNumber("0")
	}
	return true
}

func (g *Generator) VisitNull(n *ast.Null) any {
	g.loadNumber("0")
	return true
}

func (g *Generator) VisitString(n *ast.String) any {
	label := g.stringLabel(n.Value)
	g.emit("la $v0, %s", label)
	return true
}

func (g *Generator) VisitIdentifier(n *ast.Identifier) any {
	off, known := g.variables[n.Name]
	if !known {
		g.warnf("reading %q before assignment; allocating it as zero", n.Name)
		off = g.allocate(n.Name)
	}
	g.emit("lw $v0, %d($sp)", off)
	return true
}

// --- operators ---

func (g *Generator) VisitBinaryOp(n *ast.BinaryOp) any {
	if !g.visit(n.Left) {
		return false
	}
	g.emit("move $t1, $v0")
	if !g.visit(n.Right) {
		return false
	}

	if n.Operator == "**" {
		g.usesPow = true
		g.emit("move $a0, $t1")
		g.emit("move $a1, $v0")
		g.emit("jal __pow")
		return true
	}

	mnemonic, ok := binaryOpcodes[n.Operator]
	if !ok {
		g.fail(fmt.Sprintf("unsupported operator %q", n.Operator))
		return false
	}
	g.emit("%s $v0, $t1, $v0", mnemonic)
	return true
}

func (g *Generator) VisitUnaryOp(n *ast.UnaryOp) any {
	if !g.visit(n.Operand) {
		return false
	}
	switch n.Operator {
	case "-":
		g.emit("sub $v0, $zero, $v0")
	default:
		g.fail(fmt.Sprintf("unsupported unary operator %q", n.Operator))
		return false
	}
	return true
}

// --- statements ---

func (g *Generator) VisitAssign(n *ast.Assign) any {
	if !g.visit(n.Expr) {
		return false
	}
	off := g.allocate(n.Target.Name)
	g.emit("sw $v0, %d($sp)", off)
	return true
}

func (g *Generator) VisitIf(n *ast.If) any {
	if !g.visit(n.Condition) {
		return false
	}
	g.labelCounter++
	falseLabel := fmt.Sprintf("if_false_%d", g.labelCounter)
	endLabel := fmt.Sprintf("if_end_%d", g.labelCounter)

	g.emit("beq $v0, $zero, %s", falseLabel)
	for _, stmt := range n.Body {
		if !g.visit(stmt) {
			return false
		}
	}
	g.emit("j %s", endLabel)
	g.emit("%s:", falseLabel)
	for _, stmt := range n.Else {
		if !g.visit(stmt) {
			return false
		}
	}
	g.emit("%s:", endLabel)
	return true
}

func (g *Generator) VisitWhile(n *ast.While) any {
	g.labelCounter++
	startLabel := fmt.Sprintf("while_start_%d", g.labelCounter)
	endLabel := fmt.Sprintf("while_end_%d", g.labelCounter)

	g.emit("%s:", startLabel)
	if !g.visit(n.Condition) {
		return false
	}
	g.emit("beq $v0, $zero, %s", endLabel)
	for _, stmt := range n.Body {
		if !g.visit(stmt) {
			return false
		}
	}
	g.emit("j %s", startLabel)
	g.emit("%s:", endLabel)
	return true
}

func (g *Generator) VisitFuncDef(n *ast.FuncDef) any {
	prevCurrent := g.current
	var body []string
	g.current = &body

	g.emit("%s:", n.Name)
	g.emit("addi $sp, $sp, -4")
	g.emit("sw $ra, 0($sp)")

	ok := true
	for _, stmt := range n.Body {
		if !g.visit(stmt) {
			ok = false
			break
		}
	}

	if ok {
		g.emit("lw $ra, 0($sp)")
		g.emit("addi $sp, $sp, 4")
		g.emit("jr $ra")
	}

	g.current = prevCurrent
	g.funcLines = append(g.funcLines, body...)
	return ok
}

func (g *Generator) VisitReturn(n *ast.Return) any {
	return g.visit(n.Expr)
}

func (g *Generator) VisitFuncCall(n *ast.FuncCall) any {
	if n.FuncName == "랜덤" {
		g.emit("li $v0, 42")
		g.emit("li $a0, 0")
		g.emit("li $a1, 100")
		g.emit("syscall")
		g.emit("move $v0, $a0")
		return true
	}

	for i, arg := range n.Args {
		if !g.visit(arg) {
			return false
		}
		g.emit("sw $v0, %d($sp)", -(i+1)*4)
	}
	g.emit("jal %s", n.FuncName)
	if len(n.Args) > 0 {
		g.emit("addi $sp, $sp, %d", len(n.Args)*4)
	}
	return true
}

func (g *Generator) VisitMethodCall(n *ast.MethodCall) any {
	switch n.Method {
	case "추가":
		return g.emitListAppend(n)
	case "뽑기":
		return g.emitListPop(n)
	default:
		g.fail(fmt.Sprintf("unsupported method %q on %q", n.Method, n.Receiver))
		return false
	}
}

func (g *Generator) emitListAppend(n *ast.MethodCall) bool {
	label, ok := g.lists[n.Receiver]
	if !ok {
		g.fail(fmt.Sprintf("append to undeclared list %q", n.Receiver))
		return false
	}
	if len(n.Args) != 1 {
		g.fail(fmt.Sprintf("%s expects exactly one argument", n.Method))
		return false
	}
	if !g.visit(n.Args[0]) {
		return false
	}
	lenOff := g.allocate(n.Receiver + "_len")
	g.emit("lw $t0, %d($sp)", lenOff)
	g.emit("sll $t2, $t0, 2")
	g.emit("la $t3, %s", label)
	g.emit("add $t2, $t2, $t3")
	g.emit("sw $v0, 0($t2)")
	g.emit("addi $t0, $t0, 1")
	g.emit("sw $t0, %d($sp)", lenOff)
	return true
}

func (g *Generator) emitListPop(n *ast.MethodCall) bool {
	label, ok := g.lists[n.Receiver]
	if !ok {
		g.fail(fmt.Sprintf("pop from undeclared list %q", n.Receiver))
		return false
	}
	lenOff := g.allocate(n.Receiver + "_len")
	emptyLabel := g.newLabel("pop_empty")
	endLabel := g.newLabel("pop_end")

	g.emit("lw $t0, %d($sp)", lenOff)
	g.emit("beq $t0, $zero, %s", emptyLabel)
	g.emit("addi $t0, $t0, -1")
	g.emit("sll $t2, $t0, 2")
	g.emit("la $t3, %s", label)
	g.emit("add $t2, $t2, $t3")
	g.emit("lw $v0, 0($t2)")
	g.emit("sw $t0, %d($sp)", lenOff)
	g.emit("j %s", endLabel)
	g.emit("%s:", emptyLabel)
	g.emit("%s:", endLabel)
	return true
}

func (g *Generator) VisitList(n *ast.List) any {
	label := fmt.Sprintf("리스트_%s", n.Name)
	g.lists[n.Name] = label
	g.emitData(fmt.Sprintf("%s: .space 400", label))
	lenOff := g.allocate(n.Name + "_len")
	g.emit("li $t0, %d", len(n.Elements))
	g.emit("sw $t0, %d($sp)", lenOff)

	for i, elem := range n.Elements {
		if !g.visit(elem) {
			return false
		}
		g.emit("la $t1, %s", label)
		g.emit("sw $v0, %d($t1)", i*4)
	}
	return true
}

func (g *Generator) VisitListElem(n *ast.ListElem) any {
	ident, ok := n.List.(*ast.Identifier)
	if !ok {
		g.fail("list index target is not a plain identifier")
		return false
	}
	label, ok := g.lists[ident.Name]
	if !ok {
		g.fail(fmt.Sprintf("indexing undeclared list %q", ident.Name))
		return false
	}
	if !g.visit(n.Index) {
		return false
	}
	g.emit("sll $t0, $v0, 2")
	g.emit("la $t1, %s", label)
	g.emit("add $t2, $t0, $t1")
	g.emit("lw $v0, 0($t2)")
	return true
}

func (g *Generator) VisitDict(n *ast.Dict) any {
	label := fmt.Sprintf("딕셔너리_%s", n.Name)
	g.dicts[n.Name] = label
	g.emitData(fmt.Sprintf("%s: .space 400", label))

	if n.Key == nil && n.Value == nil {
		return true
	}
	return g.storeDict(label, n.Key, n.Value)
}

func (g *Generator) storeDict(label string, key, value ast.Node) bool {
	if !g.visit(value) {
		return false
	}
	g.emit("move $t1, $v0")
	if !g.visit(key) {
		return false
	}
	g.emit("sll $t0, $v0, 2")
	g.emit("la $t2, %s", label)
	g.emit("add $t3, $t0, $t2")
	g.emit("sw $t1, 0($t3)")
	return true
}

func (g *Generator) VisitDictAssign(n *ast.DictAssign) any {
	ident, ok := n.Dict.(*ast.Identifier)
	if !ok {
		g.fail("dict assignment target is not a plain identifier")
		return false
	}
	label, ok := g.dicts[ident.Name]
	if !ok {
		g.fail(fmt.Sprintf("assigning into undeclared dict %q", ident.Name))
		return false
	}

	if !g.visit(n.Value) {
		return false
	}
	g.emit("move $t1, $v0")
	if !g.visit(n.Key) {
		return false
	}
	g.emit("sll $t0, $v0, 2")
	g.emit("la $t2, %s", label)
	g.emit("add $t3, $t0, $t2")
	g.emit("sw $t1, 0($t3)")
	return true
}

func (g *Generator) VisitPrint(n *ast.Print) any {
	if !g.visit(n.Expr) {
		return false
	}
	g.emit("move $a0, $v0")
	g.emit("li $v0, 1")
	g.emit("syscall")
	return true
}

func (g *Generator) VisitComment(n *ast.Comment) any {
	g.emit("# %s", n.Text)
	return true
}

func (g *Generator) VisitError(n *ast.Error) any {
	g.fail(n.Message)
	return false
}

// --- output assembly ---

func (g *Generator) ensurePowHelper() {
	g.funcLines = append(g.funcLines,
		"__pow:",
		"li $v0, 1",
		"beq $a1, $zero, __pow_end",
		"__pow_loop:",
		"mul $v0, $v0, $a0",
		"addi $a1, $a1, -1",
		"bgtz $a1, __pow_loop",
		"__pow_end:",
		"jr $ra",
	)
}

func (g *Generator) output() string {
	var b strings.Builder

	b.WriteString(".data\n")
	for _, d := range g.data {
		b.WriteString(d)
		b.WriteString("\n")
	}

	b.WriteString("\n.text\n.globl main\nmain:\n")
	writeLines(&b, g.mainLines)

	if g.usesPow {
		g.ensurePowHelper()
	}
	writeLines(&b, g.funcLines)

	return b.String()
}

func writeLines(b *strings.Builder, lines []string) {
	for _, l := range lines {
		if strings.HasSuffix(l, ":") {
			b.WriteString(l)
		} else {
			b.WriteString("\t")
			b.WriteString(l)
		}
		b.WriteString("\n")
	}
}
