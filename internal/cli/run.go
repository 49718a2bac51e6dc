package cli

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wdm0006/textprep/internal/config"
	"github.com/wdm0006/textprep/pkg/plan"
	"github.com/wdm0006/textprep/pkg/profile"
	"github.com/wdm0006/textprep/pkg/runner"
	"github.com/wdm0006/textprep/pkg/textprep"
	"github.com/wdm0006/textprep/pkg/transform/text"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run preprocessing steps over a dataset column",
		Long: `Load a text column and apply the named steps to every record, in order.

The source is either a catalogued dataset (--dataset) or a file (--file).
Steps run exactly as listed; an unknown step name fails the run before any
record is processed.`,
		Example: `  # Clean and tokenize the IMDB reviews
  textprep run --dataset imdb --column review --steps "Text Cleaning,Tokenization"

  # Run a saved plan, overriding its column
  textprep run --plan imdb.yaml --column title

  # Stream a large file in chunks of 10000 records
  textprep run --file reviews.csv.gz --column body --steps Tokenization --chunk-size 10000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd)
		},
	}

	f := cmd.Flags()
	f.String("dataset", "", "catalog key of the dataset to load")
	f.String("file", "", "CSV, JSONL or Parquet file to load instead of a dataset")
	f.String("column", config.DefaultColumn, "text column to process")
	f.String("label-column", "", "label column carried into the feature matrix")
	f.StringSlice("steps", nil, "steps to apply, in order (comma separated or repeated)")
	f.String("plan", "", "plan file (.yaml, .yml, .toml or .json) naming source, column and steps")
	f.Int("concurrency", config.DefaultConcurrency, "records processed in parallel within a stage")
	f.Bool("lenient", false, "report failing records instead of aborting the run")
	f.Int("chunk-size", 0, "stream the input in chunks of this many records (CSV and JSONL only)")
	f.Int("preview", config.DefaultPreview, "number of processed records to print")
	f.Int("top-k", 0, "profile the result and list the k most frequent tokens")
	f.Int("features", 0, "build a bag-of-words matrix over this many tokens")
	f.StringP("output", "o", "text", "output format (text|json)")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("steps", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return text.NewRegistry().Names(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runRun(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)
	w := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("output")
	if format != "text" && format != "json" {
		return errors.Errorf("unsupported output format %q", format)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	req := runner.Request{
		Dataset:     cfg.Dataset,
		File:        cfg.File,
		Column:      cfg.Column,
		LabelColumn: cfg.LabelColumn,
		Steps:       cfg.Steps,
		TopK:        cfg.TopK,
		Features:    cfg.Features,
	}
	if cfg.Plan != "" {
		p, err := plan.Load(cfg.Plan)
		if err != nil {
			return err
		}
		if err := text.RegisterCustom(reg, p.CustomSteps); err != nil {
			return errors.Wrapf(err, "plan %s", cfg.Plan)
		}
		if err := p.Validate(reg); err != nil {
			return errors.Wrapf(err, "plan %s", cfg.Plan)
		}
		applyPlan(cmd.Flags(), p, &req)
		logger.Debug("using plan", "path", cfg.Plan, "name", p.Name, "steps", len(req.Steps))
	}

	r, err := runner.New(cat, reg,
		runner.WithLogger(logger),
		runner.WithPipelineOptions(cfg.PipelineOptions()...),
	)
	if err != nil {
		return err
	}

	if cfg.ChunkSize > 0 {
		return runStream(cmd, r, req, cfg, format)
	}

	start := time.Now()
	res, err := r.Run(ctx, req)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	preview := res.Column
	if len(preview) > cfg.Preview {
		preview = preview[:cfg.Preview]
	}
	if format == "json" {
		return renderJSON(w, newRunReport(res, req.Steps, preview, elapsed))
	}

	_, _ = fmt.Fprintf(w, "Loaded %s dataset with %d records\n", res.Entry.Key, res.Processed)
	_, _ = fmt.Fprintf(w, "Applied %d steps in %s (run %s)\n", len(req.Steps), elapsed.Round(time.Millisecond), res.RunID)
	renderStages(w, res.Stages)
	renderPreview(w, preview)
	renderFailures(w, res.Failures)
	renderProfile(w, res.Profile)
	if res.Features != nil {
		cols, rows := res.Features.Size()
		_, _ = fmt.Fprintf(w, "\nFeature matrix: %d rows x %d attributes\n", rows, cols)
	}
	return nil
}

// applyPlan fills req from p. Flags set on the command line win over the
// plan; the plan wins over config files and environment variables.
func applyPlan(flags *pflag.FlagSet, p *plan.Plan, req *runner.Request) {
	if !flags.Changed("dataset") && !flags.Changed("file") {
		req.Dataset, req.File = p.Dataset, p.File
	}
	if !flags.Changed("column") {
		req.Column = p.Column
	}
	if !flags.Changed("label-column") && p.LabelColumn != "" {
		req.LabelColumn = p.LabelColumn
	}
	if !flags.Changed("steps") {
		req.Steps = p.StepNames()
	}
}

// previewSink keeps the first records of a stream and feeds every chunk to
// an optional profile collector.
type previewSink struct {
	limit     int
	preview   []textprep.Record
	collector *profile.Collector
}

func (s *previewSink) Write(recs []textprep.Record) error {
	if n := s.limit - len(s.preview); n > 0 {
		if n > len(recs) {
			n = len(recs)
		}
		s.preview = append(s.preview, recs[:n]...)
	}
	if s.collector != nil {
		return s.collector.Write(recs)
	}
	return nil
}

func (s *previewSink) Close() error {
	if s.collector != nil {
		return s.collector.Close()
	}
	return nil
}

func runStream(cmd *cobra.Command, r *runner.Runner, req runner.Request, cfg *config.Config, format string) error {
	if req.Features > 0 {
		return errors.New("features need the whole column; drop --chunk-size")
	}
	sink := &previewSink{limit: cfg.Preview}
	if req.TopK > 0 {
		sink.collector = profile.NewCollector(req.TopK)
	}
	start := time.Now()
	res, err := r.Stream(cmd.Context(), req, cfg.ChunkSize, sink)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var prof *profile.JSONProfile
	if sink.collector != nil {
		p := sink.collector.ReportJSON()
		prof = &p
	}
	w := cmd.OutOrStdout()
	if format == "json" {
		return renderJSON(w, streamReport{
			Source:    sourceName(req),
			Steps:     req.Steps,
			Processed: res.Processed,
			Chunks:    res.Chunks,
			ChunkSize: cfg.ChunkSize,
			Elapsed:   elapsed.String(),
			Failures:  newFailureReports(res.Failures),
			Preview:   sink.preview,
			Profile:   prof,
		})
	}
	_, _ = fmt.Fprintf(w, "Streamed %d records from %s in %d chunks of %d (%s)\n",
		res.Processed, sourceName(req), res.Chunks, cfg.ChunkSize, elapsed.Round(time.Millisecond))
	renderPreview(w, sink.preview)
	renderFailures(w, res.Failures)
	renderProfile(w, prof)
	return nil
}

func sourceName(req runner.Request) string {
	if req.Dataset != "" {
		return req.Dataset
	}
	return req.File
}

type stageReport struct {
	Position int    `json:"position"`
	Step     string `json:"step"`
	Records  int    `json:"records"`
	Failures int    `json:"failures"`
	Duration string `json:"duration"`
}

type failureReport struct {
	Index int    `json:"index"`
	Step  string `json:"step"`
	Error string `json:"error"`
}

func newFailureReports(failures []*textprep.TransformError) []failureReport {
	var out []failureReport
	for _, f := range failures {
		out = append(out, failureReport{Index: f.Index, Step: f.Step, Error: f.Err.Error()})
	}
	return out
}

type runReport struct {
	RunID     string               `json:"run_id"`
	Dataset   string               `json:"dataset"`
	Location  string               `json:"location"`
	Steps     []string             `json:"steps"`
	Processed int                  `json:"processed"`
	Elapsed   string               `json:"elapsed"`
	Stages    []stageReport        `json:"stages"`
	Failures  []failureReport      `json:"failures,omitempty"`
	Preview   []textprep.Record    `json:"preview"`
	Profile   *profile.JSONProfile `json:"profile,omitempty"`
	Features  []int                `json:"features,omitempty"`
}

type streamReport struct {
	Source    string               `json:"source"`
	Steps     []string             `json:"steps"`
	Processed int                  `json:"processed"`
	Chunks    int                  `json:"chunks"`
	ChunkSize int                  `json:"chunk_size"`
	Elapsed   string               `json:"elapsed"`
	Failures  []failureReport      `json:"failures,omitempty"`
	Preview   []textprep.Record    `json:"preview"`
	Profile   *profile.JSONProfile `json:"profile,omitempty"`
}

func newRunReport(res *runner.Result, steps []string, preview []textprep.Record, elapsed time.Duration) runReport {
	rep := runReport{
		RunID:     res.RunID,
		Dataset:   res.Entry.Key,
		Location:  res.Entry.Location,
		Steps:     steps,
		Processed: res.Processed,
		Elapsed:   elapsed.String(),
		Stages:    make([]stageReport, len(res.Stages)),
		Preview:   preview,
		Profile:   res.Profile,
	}
	if rep.Steps == nil {
		rep.Steps = []string{}
	}
	for i, s := range res.Stages {
		rep.Stages[i] = stageReport{
			Position: s.Position,
			Step:     s.Step,
			Records:  s.Records,
			Failures: s.Failures,
			Duration: s.Duration.String(),
		}
	}
	rep.Failures = newFailureReports(res.Failures)
	if res.Features != nil {
		cols, rows := res.Features.Size()
		rep.Features = []int{rows, cols}
	}
	return rep
}
