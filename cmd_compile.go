package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/subcommands"

	"hana/codegen"
	"hana/lexer"
	"hana/optimizer"
	"hana/parser"
)

// compileCmd runs the full pipeline: lex, parse, optionally optimize, then
// emit MIPS assembly, following the same positional-arg/flag shape as the
// teacher's runCmd.
type compileCmd struct {
	optimize bool
	printAST bool
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile a Hana source file to MIPS32 assembly" }
func (*compileCmd) Usage() string {
	return `compile [-opt] [-print-ast] <file>:
  Compile Hana source to MIPS32 assembly text.
`
}

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.optimize, "opt", true, "run the constant-fold/propagate/simplify/prune pass before codegen")
	f.BoolVar(&cmd.printAST, "print-ast", false, "dump the parsed AST as JSON before codegen")
}

var sampleNamePattern = regexp.MustCompile(`^sample(\d+)\.txt$`)

// outputPathFor implements the §6 output-path derivation rule:
// samples_output/output<N>.asm for sample<N>.txt, else samples_output/output.asm.
func outputPathFor(inputPath string) string {
	base := filepath.Base(inputPath)
	if m := sampleNamePattern.FindStringSubmatch(base); m != nil {
		return filepath.Join("samples_output", fmt.Sprintf("output%s.asm", m[1]))
	}
	return filepath.Join("samples_output", "output.asm")
}

func (cmd *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	lex := lexer.New(string(data))
	tokens, err := lex.Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Lexing error: %v\n", err)
	}

	p := parser.Make(tokens)
	nodes, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		for _, pErr := range parseErrs {
			fmt.Fprintln(os.Stderr, pErr)
		}
	}

	if cmd.printAST {
		if _, err := parser.PrintASTJSON(nodes); err != nil {
			fmt.Fprintf(os.Stderr, "💥 AST print error: %v\n", err)
		}
	}

	if cmd.optimize {
		nodes = optimizer.Optimize(nodes)
	}

	asm := codegen.Generate(nodes)

	outPath := outputPathFor(filename)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to create output directory: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(outPath, []byte(asm), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to write assembly: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("wrote %s\n", outPath)
	return subcommands.ExitSuccess
}
