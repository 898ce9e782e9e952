package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"stackrec/internal/frame"
	"stackrec/internal/report"
	"stackrec/internal/ssa"
)

func cmdAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	in := fs.String("in", "", "textual SSA input")
	out := fs.String("out", "", "output directory for frames.json")
	jsonOut := fs.Bool("json", false, "print JSON records instead of text")

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

	recs := analyzeFuncs(funcs)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(recs); err != nil {
			return err
		}
	} else {
		fmt.Print(report.FormatText(recs))
	}

	if *out != "" {
		if err := os.MkdirAll(*out, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", *out, err)
		}
		if err := report.WriteFrames(*out, recs); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s/frames.json (%d functions)\n", *out, len(recs))
	}
	return nil
}

// analyzeFuncs runs frame recovery over every function that carries a
// stack-pointer designation. Functions without one are not analyzed
// and produce no record.
func analyzeFuncs(funcs []*ssa.Func) []report.Record {
	var recs []report.Record
	for _, fn := range funcs {
		if _, ok := fn.StackPointer(); !ok {
			continue
		}
		rec := report.Record{Func: fn.Name}
		if obj, ok := frame.ForFunc(fn); ok {
			rec.Recovered = true
			rec.Layout = obj.String()
		}
		recs = append(recs, rec)
	}
	return recs
}
