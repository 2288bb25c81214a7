// Command loongcc reads a small C source file, runs it through
// pkg/lexer, pkg/parser, and pkg/codegen, and writes the resulting
// LoongArch assembly listing to -o (or stdout).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"loongcc/pkg/codegen"
	"loongcc/pkg/lexer"
	"loongcc/pkg/parser"
)

func main() {
	output := flag.String("o", "", "output assembly file (default: stdout)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: loongcc [-o out.s] source.c")
		os.Exit(1)
	}

	if err := run(args[0], *output); err != nil {
		fmt.Fprintln(os.Stderr, "loongcc:", err)
		os.Exit(1)
	}
}

func run(srcPath, outPath string) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcPath, err)
	}

	toks, err := lexer.Lex(string(src))
	if err != nil {
		return fmt.Errorf("lex: %w", err)
	}

	prog, err := parser.Parse(toks)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	out, closeOut, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := codegen.Generate(prog, out); err != nil {
		return fmt.Errorf("codegen: %w", err)
	}
	return nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}
