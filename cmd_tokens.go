package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"hana/lexer"
)

// tokensCmd runs the lexer alone and dumps the resulting token stream, one
// Token.String() per line — a debugging aid mirroring the teacher's
// parser.Print.
type tokensCmd struct{}

func (*tokensCmd) Name() string     { return "tokens" }
func (*tokensCmd) Synopsis() string { return "Lex a Hana source file and print its token stream" }
func (*tokensCmd) Usage() string {
	return `tokens <file>:
  Print the token stream produced by the lexer, one token per line.
`
}
func (*tokensCmd) SetFlags(f *flag.FlagSet) {}

func (cmd *tokensCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Lexing error: %v\n", err)
	}

	for _, tok := range tokens {
		fmt.Println(tok.String())
	}

	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
