package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"hana/lexer"
	"hana/parser"
)

// replCmd is a line-at-a-time tokenizer/parser inspector. It never runs
// codegen: Hana's single flat stack frame assumes a whole compilation unit,
// so there is nothing meaningful to assemble one line at a time. It exists
// to give github.com/chzyer/readline — declared by the teacher but never
// wired into anything — an actual home backing line editing and history.
type replCmd struct {
	printAST bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive tokenizer/parser inspector" }
func (*replCmd) Usage() string {
	return `repl [-print-ast]:
  Lex and parse one line at a time, printing the tokens and AST for each.
`
}

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.printAST, "print-ast", true, "print the parsed AST for each line")
}

func (cmd *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\n\nWelcome to Hana! Type a line of Hana source, or 'exit' to quit.")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 readline init error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D, readline.ErrInterrupt on Ctrl-C
			return subcommands.ExitSuccess
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return subcommands.ExitSuccess
		}

		tokens, lexErr := lexer.New(line).Scan()
		if lexErr != nil {
			fmt.Println(lexErr)
		}
		for _, tok := range tokens {
			fmt.Println(tok.String())
		}

		nodes, parseErrs := parser.Make(tokens).Parse()
		for _, pErr := range parseErrs {
			fmt.Println(pErr)
		}
		if cmd.printAST {
			if _, err := parser.PrintASTJSON(nodes); err != nil {
				fmt.Printf("💥 AST print error: %v\n", err)
			}
		}
	}
}
