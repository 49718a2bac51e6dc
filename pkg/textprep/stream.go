package textprep

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ChunkSource yields record chunks until io.EOF.
type ChunkSource interface {
	Next() ([]Record, error)
}

// ChunkSink consumes processed chunks.
type ChunkSink interface {
	Write([]Record) error
	Close() error
}

// StreamResult is the outcome of RunStream.
type StreamResult struct {
	Processed int
	Chunks    int
	// Failures is only populated by lenient pipelines. Index counts from the
	// first record of the stream, not of the chunk.
	Failures []*TransformError
}

// RunStream pulls chunks from src, runs every step over each chunk and writes
// the result to sink. Step names are resolved before the first chunk is read.
// The result is never nil; on error it covers the chunks written so far.
// Cancellation noticed between chunks is reported with Position -1.
func RunStream(ctx context.Context, p *Pipeline, steps []string, src ChunkSource, sink ChunkSink) (*StreamResult, error) {
	defer func() { _ = sink.Close() }()
	out := &StreamResult{}
	if _, err := p.reg.resolveAll(steps); err != nil {
		return out, err
	}
	for {
		if ctx.Err() != nil {
			return out, cancelled(ctx, -1)
		}
		chunk, err := src.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, errors.Wrap(err, "read chunk")
		}
		res, err := p.Run(ctx, chunk, steps)
		if err != nil {
			var terr *TransformError
			if errors.As(err, &terr) {
				terr.Index += out.Processed
			}
			return out, err
		}
		for _, f := range res.Failures {
			f.Index += out.Processed
		}
		if err := sink.Write(res.Column); err != nil {
			return out, errors.Wrap(err, "write chunk")
		}
		out.Processed += len(res.Column)
		out.Chunks++
		out.Failures = append(out.Failures, res.Failures...)
		if len(res.Failures) > 0 {
			p.logger.Warn("records failed in chunk", "chunk", out.Chunks-1, "failures", len(res.Failures))
		}
	}
}
