// Package runner ties the catalog, loader and pipeline together: it finds a
// dataset, reads its text column and runs the requested steps over it.
package runner

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/textprep/adapters/golearn"
	"github.com/wdm0006/textprep/pkg/catalog"
	"github.com/wdm0006/textprep/pkg/loader"
	"github.com/wdm0006/textprep/pkg/profile"
	"github.com/wdm0006/textprep/pkg/textprep"
)

var ErrNoSource = errors.New("exactly one of dataset or file is required")

// Request describes one pipeline run.
type Request struct {
	// RunID tags log lines and the result. A random id is used when empty.
	RunID string
	// Dataset is a catalog key. File names a file directly instead.
	Dataset string
	File    string
	Column  string
	// LabelColumn is carried into the feature matrix as the class attribute.
	LabelColumn string
	Steps       []string
	// TopK > 0 profiles the processed column, keeping the TopK most
	// frequent tokens.
	TopK int
	// Features > 0 builds a bag-of-words matrix over the Features most
	// frequent tokens.
	Features int
}

type Result struct {
	RunID     string
	Entry     catalog.Entry
	Column    []textprep.Record
	Labels    []string
	Processed int
	Stages    []textprep.StageStats
	Failures  []*textprep.TransformError
	Profile   *profile.JSONProfile
	Features  *base.DenseInstances
}

type Runner struct {
	catalog  *catalog.Catalog
	reg      *textprep.Registry
	loadOpts loader.Options
	pipeOpts []textprep.Option
	logger   *slog.Logger
}

type Option func(*Runner)

func WithLoaderOptions(opt loader.Options) Option {
	return func(r *Runner) { r.loadOpts = opt }
}

// WithPipelineOptions sets the options used for every pipeline the runner
// builds. The runner supplies its own logger.
func WithPipelineOptions(opts ...textprep.Option) Option {
	return func(r *Runner) { r.pipeOpts = append(r.pipeOpts, opts...) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(cat *catalog.Catalog, reg *textprep.Registry, opts ...Option) (*Runner, error) {
	if cat == nil {
		return nil, errors.New("catalog must be set")
	}
	if reg == nil {
		return nil, textprep.ErrRegistryMustBeSet
	}
	r := &Runner{
		catalog: cat,
		reg:     reg,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) Catalog() *catalog.Catalog { return r.catalog }

func (r *Runner) Registry() *textprep.Registry { return r.reg }

// Run loads the requested column and applies the steps. Unknown steps and
// missing datasets are reported before anything is read.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}
	logger := r.logger.With("run_id", req.RunID)

	if err := r.reg.Validate(req.Steps); err != nil {
		return nil, err
	}
	entry, err := r.source(req)
	if err != nil {
		return nil, err
	}

	texts, labels, err := r.load(entry, req)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded dataset", "dataset", entry.Key, "location", entry.Location, "records", len(texts))

	p, err := r.pipeline(logger)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(ctx, textprep.TextRecords(texts), req.Steps)
	if err != nil {
		return nil, err
	}
	logger.Info("pipeline finished", "steps", len(req.Steps), "processed", res.Processed, "failures", len(res.Failures))

	out := &Result{
		RunID:     req.RunID,
		Entry:     entry,
		Column:    res.Column,
		Labels:    labels,
		Processed: res.Processed,
		Stages:    res.Stages,
		Failures:  res.Failures,
	}
	if req.TopK > 0 {
		c := profile.NewCollector(req.TopK)
		c.Consume(res.Column)
		prof := c.ReportJSON()
		out.Profile = &prof
	}
	if req.Features > 0 {
		inst, err := golearn.BagOfWords(res.Column, labels, req.Features)
		if err != nil {
			return nil, errors.Wrap(err, "feature export")
		}
		out.Features = inst
	}
	return out, nil
}

// Stream runs the steps chunk by chunk and writes each processed chunk to
// sink. Lenient failures come back in the result with stream-wide record
// indices. Only CSV and JSONL sources can be streamed.
func (r *Runner) Stream(ctx context.Context, req Request, chunkSize int, sink textprep.ChunkSink) (*textprep.StreamResult, error) {
	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}
	logger := r.logger.With("run_id", req.RunID)

	if err := r.reg.Validate(req.Steps); err != nil {
		return nil, err
	}
	entry, err := r.source(req)
	if err != nil {
		return nil, err
	}
	src, err := loader.OpenStream(entry.Location, req.Column, chunkSize, r.loadOpts)
	if err != nil {
		return nil, notFound(req, entry, err)
	}
	defer func() { _ = src.Close() }()

	p, err := r.pipeline(logger)
	if err != nil {
		return nil, err
	}
	res, err := textprep.RunStream(ctx, p, req.Steps, src, sink)
	if err != nil {
		return res, err
	}
	logger.Info("stream finished",
		"dataset", entry.Key,
		"processed", res.Processed,
		"chunks", res.Chunks,
		"failures", len(res.Failures),
		"chunk_size", chunkSize,
	)
	return res, nil
}

func (r *Runner) pipeline(logger *slog.Logger) (*textprep.Pipeline, error) {
	opts := append(append([]textprep.Option(nil), r.pipeOpts...), textprep.WithLogger(logger))
	return textprep.New(r.reg, opts...)
}

func (r *Runner) source(req Request) (catalog.Entry, error) {
	if (req.Dataset == "") == (req.File == "") {
		return catalog.Entry{}, ErrNoSource
	}
	if req.Column == "" {
		return catalog.Entry{}, errors.New("column is required")
	}
	if req.Dataset != "" {
		return r.catalog.Resolve(req.Dataset)
	}
	e := catalog.FromFile(req.File)
	if _, err := os.Stat(e.Location); err != nil {
		return catalog.Entry{}, errors.Wrapf(loader.ErrFileNotFound, "%s", e.Location)
	}
	return e, nil
}

func (r *Runner) load(entry catalog.Entry, req Request) ([]string, []string, error) {
	if req.LabelColumn == "" {
		texts, err := loader.LoadColumn(entry.Location, req.Column, r.loadOpts)
		if err != nil {
			return nil, nil, notFound(req, entry, err)
		}
		return texts, nil, nil
	}
	opt := r.loadOpts
	opt.TextColumns = append(append([]string(nil), opt.TextColumns...), req.Column, req.LabelColumn)
	f, err := loader.Load(entry.Location, opt)
	if err != nil {
		return nil, nil, notFound(req, entry, err)
	}
	texts, err := f.TextColumn(req.Column)
	if err != nil {
		return nil, nil, err
	}
	labels, err := f.TextColumn(req.LabelColumn)
	if err != nil {
		return nil, nil, errors.Wrap(err, "label column")
	}
	return texts, labels, nil
}

// notFound reports a catalog dataset whose file vanished as a missing
// dataset rather than a missing file.
func notFound(req Request, entry catalog.Entry, err error) error {
	if req.Dataset != "" && errors.Is(err, loader.ErrFileNotFound) {
		return &catalog.NotFoundError{Key: entry.Key, Location: entry.Location}
	}
	return err
}
