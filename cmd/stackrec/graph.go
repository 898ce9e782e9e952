package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zboralski/lattice/render"

	"stackrec/internal/ssa"
	"stackrec/internal/usegraph"
)

func cmdGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	in := fs.String("in", "", "textual SSA input")
	out := fs.String("out", "", "output file (default stdout)")
	fnName := fs.String("func", "", "restrict to one function")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("--in is required")
	}

	funcs, err := ssa.ParseFile(*in)
	if err != nil {
		return err
	}

	var dot string
	for _, fn := range funcs {
		if *fnName != "" && fn.Name != *fnName {
			continue
		}
		g, ok := usegraph.Build(fn)
		if !ok {
			continue
		}
		dot += render.DOT(g, fn.Name)
	}
	if dot == "" {
		return fmt.Errorf("no function with a stack-pointer designation matched")
	}

	if *out == "" {
		fmt.Print(dot)
		return nil
	}
	if err := os.WriteFile(*out, []byte(dot), 0644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	return nil
}
