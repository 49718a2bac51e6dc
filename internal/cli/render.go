package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wdm0006/textprep/pkg/profile"
	"github.com/wdm0006/textprep/pkg/textprep"
)

const maxCell = 80

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// formatRecord renders text as a quoted string and tokens as a bracketed
// list, cut to maxCell runes.
func formatRecord(rec textprep.Record) string {
	var s string
	switch v := rec.(type) {
	case string:
		s = fmt.Sprintf("%q", v)
	case []string:
		quoted := make([]string, len(v))
		for i, tok := range v {
			quoted[i] = fmt.Sprintf("%q", tok)
		}
		s = "[" + strings.Join(quoted, " ") + "]"
	default:
		s = fmt.Sprintf("%v", v)
	}
	if r := []rune(s); len(r) > maxCell {
		s = string(r[:maxCell-3]) + "..."
	}
	return s
}

func renderPreview(w io.Writer, recs []textprep.Record) {
	if len(recs) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\nFirst %d records:\n", len(recs))
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Record"})
	for i, rec := range recs {
		t.AppendRow(table.Row{i, formatRecord(rec)})
	}
	t.Render()
}

func renderStages(w io.Writer, stages []textprep.StageStats) {
	if len(stages) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "\nStages:")
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Step", "Records", "Failures", "Duration"})
	for _, s := range stages {
		t.AppendRow(table.Row{s.Position, s.Step, s.Records, s.Failures, s.Duration.String()})
	}
	t.Render()
}

func renderFailures(w io.Writer, failures []*textprep.TransformError) {
	if len(failures) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%d records failed:\n", len(failures))
	t := newTable(w)
	t.AppendHeader(table.Row{"Record", "Step", "Error"})
	for _, f := range failures {
		t.AppendRow(table.Row{f.Index, f.Step, f.Err})
	}
	t.Render()
}

func renderProfile(w io.Writer, p *profile.JSONProfile) {
	if p == nil {
		return
	}
	_, _ = fmt.Fprintln(w, "\nProfile:")
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Min", "Max", "Mean"})
	t.AppendRow(table.Row{"tokens per record", p.Tokens.Min, p.Tokens.Max, fmt.Sprintf("%.2f", p.Tokens.Mean)})
	t.AppendRow(table.Row{"chars per record", p.Chars.Min, p.Chars.Max, fmt.Sprintf("%.2f", p.Chars.Mean)})
	t.Render()
	_, _ = fmt.Fprintf(w, "vocabulary: %d, empty records: %d\n", p.Vocabulary, p.Empty)
	if len(p.Top) == 0 {
		return
	}
	top := newTable(w)
	top.AppendHeader(table.Row{"Token", "Count"})
	for _, tc := range p.Top {
		top.AppendRow(table.Row{tc.Token, tc.Count})
	}
	top.Render()
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
