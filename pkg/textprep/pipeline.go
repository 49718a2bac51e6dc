package textprep

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// chunksPerWorker controls how finely a stage is split when running
// concurrently. Chunks are contiguous so row order never depends on
// scheduling.
const chunksPerWorker = 4

// Pipeline applies named steps from a Registry to a column of records.
// A Pipeline holds no per-run state and may be shared between goroutines.
type Pipeline struct {
	reg         *Registry
	concurrency int
	lenient     bool
	logger      *slog.Logger
}

// StageStats summarises one stage of a run.
type StageStats struct {
	Step     string
	Position int
	Records  int
	Failures int
	Duration time.Duration
}

// Result is the outcome of Run.
type Result struct {
	Column    []Record
	Processed int
	Stages    []StageStats
	// Failures is only populated by lenient pipelines, one entry per failed
	// record, ordered by stage then record index.
	Failures []*TransformError
}

func New(reg *Registry, opts ...Option) (*Pipeline, error) {
	if reg == nil {
		return nil, ErrRegistryMustBeSet
	}
	p := &Pipeline{
		reg:         reg,
		concurrency: 1,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pipeline) Registry() *Registry { return p.reg }

// Execute runs steps over column in order and returns the transformed column.
// The input slice is never modified.
func (p *Pipeline) Execute(ctx context.Context, column []Record, steps []string) ([]Record, error) {
	res, err := p.Run(ctx, column, steps)
	if err != nil {
		return nil, err
	}
	return res.Column, nil
}

// Run is Execute with per-stage statistics and, for lenient pipelines, the
// records that failed.
func (p *Pipeline) Run(ctx context.Context, column []Record, steps []string) (*Result, error) {
	stages, err := p.reg.resolveAll(steps)
	if err != nil {
		return nil, err
	}

	cur := make([]Record, len(column))
	copy(cur, column)
	res := &Result{Processed: len(cur), Stages: make([]StageStats, 0, len(stages))}

	var failed []bool
	if p.lenient {
		failed = make([]bool, len(cur))
	}

	for _, st := range stages {
		if ctx.Err() != nil {
			return nil, cancelled(ctx, st.position)
		}
		p.logger.Debug("stage started", "step", st.name, "position", st.position, "records", len(cur))
		start := time.Now()

		var failures []*TransformError
		if p.concurrency > 1 && len(cur) > 1 {
			failures, err = p.applyConcurrent(ctx, st, cur, failed)
		} else {
			failures, err = p.apply(ctx, st, cur, failed, 0, len(cur))
		}
		if err != nil {
			return nil, err
		}
		for _, f := range failures {
			failed[f.Index] = true
		}

		stats := StageStats{
			Step:     st.name,
			Position: st.position,
			Records:  len(cur),
			Failures: len(failures),
			Duration: time.Since(start),
		}
		res.Stages = append(res.Stages, stats)
		res.Failures = append(res.Failures, failures...)
		p.logger.Debug("stage finished",
			"step", stats.Step,
			"position", stats.Position,
			"records", stats.Records,
			"failures", stats.Failures,
			"duration", stats.Duration,
		)
	}

	res.Column = cur
	return res, nil
}

// apply runs one stage over cur[lo:hi] in place. In strict mode the first
// failure is returned as an error; in lenient mode failures are collected
// and the failing records are left untouched.
func (p *Pipeline) apply(ctx context.Context, st stage, cur []Record, failed []bool, lo, hi int) ([]*TransformError, error) {
	var failures []*TransformError
	for i := lo; i < hi; i++ {
		if ctx.Err() != nil {
			return nil, cancelled(ctx, st.position)
		}
		if failed != nil && failed[i] {
			continue
		}
		out, err := st.transform.Apply(ctx, cur[i])
		if err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx, st.position)
			}
			terr := &TransformError{Step: st.name, Position: st.position, Index: i, Err: err}
			if !p.lenient {
				return nil, terr
			}
			failures = append(failures, terr)
			continue
		}
		cur[i] = out
	}
	return failures, nil
}

func (p *Pipeline) applyConcurrent(ctx context.Context, st stage, cur []Record, failed []bool) ([]*TransformError, error) {
	n := len(cur)
	chunks := p.concurrency * chunksPerWorker
	if chunks > n {
		chunks = n
	}
	size := (n + chunks - 1) / chunks

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	perChunk := make([][]*TransformError, chunks)
	for c := 0; c < chunks; c++ {
		lo := c * size
		if lo >= n {
			break
		}
		hi := min(lo+size, n)
		g.Go(func() error {
			f, err := p.apply(gctx, st, cur, failed, lo, hi)
			perChunk[c] = f
			return err
		})
	}
	if err := g.Wait(); err != nil {
		var terr *TransformError
		if errors.As(err, &terr) {
			return nil, terr
		}
		// A sibling failure cancels gctx, so only a cancelled parent context
		// ends up here.
		return nil, cancelled(ctx, st.position)
	}

	var failures []*TransformError
	for _, f := range perChunk {
		failures = append(failures, f...)
	}
	return failures, nil
}
