package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = cmdAnalyze(os.Args[2:])
	case "graph":
		err = cmdGraph(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `stackrec — stack-frame structure recovery

Usage:
  stackrec analyze --in <file.ssa> [--out <dir>] [--json]   Recover frame layouts
  stackrec graph   --in <file.ssa> [--func <name>] [--out <path>]   Stack-pointer use graph as DOT

Flags:
  --in <file>     Textual SSA input
  --out <path>    Output directory (analyze) or file (graph)
  --json          Print JSON records instead of text
  --func <name>   Restrict graph to one function
`)
}
