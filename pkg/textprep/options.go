package textprep

import "log/slog"

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency bounds the number of goroutines applying a stage. Values
// below 2 run every stage on the calling goroutine.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

// WithLenient switches the failure policy. A lenient pipeline keeps a failing
// record at its last good value, skips it in later stages and reports it in
// Result.Failures instead of aborting.
func WithLenient(lenient bool) Option {
	return func(p *Pipeline) { p.lenient = lenient }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}
