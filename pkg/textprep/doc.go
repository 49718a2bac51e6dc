// Package textprep runs ordered, named text-preprocessing steps over a column
// of records.
//
// Steps are looked up by name in a Registry and applied stage by stage: every
// record passes through step i before any record enters step i+1. Within a
// stage records are independent and may be processed concurrently.
//
//	reg := textprep.NewRegistry()
//	reg.Register("Lowercase", textprep.Text(strings.ToLower))
//	p, _ := textprep.New(reg, textprep.WithConcurrency(4))
//	out, err := p.Execute(ctx, textprep.TextRecords(rows), []string{"Lowercase"})
package textprep
