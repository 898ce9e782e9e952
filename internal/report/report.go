// Package report writes frame-recovery results to files and text.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Record is the per-function analysis result. Layout is the rendered
// type tree, empty when nothing was recovered.
type Record struct {
	Func      string `json:"func"`
	Recovered bool   `json:"recovered"`
	Layout    string `json:"layout,omitempty"`
}

// FormatText renders records in the diagnostic form, one line per
// analyzed function: "name: layout", with an empty layout when nothing
// was recovered.
func FormatText(recs []Record) string {
	var sb strings.Builder
	for _, r := range recs {
		sb.WriteString(r.Func)
		sb.WriteString(": ")
		sb.WriteString(r.Layout)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteFrames writes records to frames.json in dir.
func WriteFrames(dir string, recs []Record) error {
	return writeJSON(filepath.Join(dir, "frames.json"), recs)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encode %s: %w", path, err)
	}
	return nil
}
