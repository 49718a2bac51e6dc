package textprep

import (
	"context"
	"strings"
	"unicode"
)

// Record is the current representation of one row of a column. Columns start
// as strings; steps such as tokenization turn them into []string. Each step
// documents the shape it accepts and the shape it returns.
type Record any

// Transform converts one record. Implementations must be pure: the result
// may only depend on the record passed in.
type Transform interface {
	Apply(ctx context.Context, rec Record) (Record, error)
}

// TransformFunc adapts a plain function to Transform.
type TransformFunc func(ctx context.Context, rec Record) (Record, error)

func (f TransformFunc) Apply(ctx context.Context, rec Record) (Record, error) { return f(ctx, rec) }

// ConvertFunc converts a value of type A into type B.
type ConvertFunc[A, B any] func(ctx context.Context, a A) (B, error)

// Convert returns a transform that accepts records of type A only and
// produces B. Any other shape fails with ErrShapeMismatch.
func Convert[A, B any](convert ConvertFunc[A, B]) TransformFunc {
	return func(ctx context.Context, rec Record) (Record, error) {
		a, ok := rec.(A)
		if !ok {
			var zero A
			return nil, shapeError(zero, rec)
		}
		return convert(ctx, a)
	}
}

// Text returns a string -> string transform.
func Text(fn func(string) string) TransformFunc {
	return Convert(func(_ context.Context, s string) (string, error) { return fn(s), nil })
}

// Tokenize returns a string -> []string transform.
func Tokenize(fn func(string) []string) TransformFunc {
	return Convert(func(_ context.Context, s string) ([]string, error) { return fn(s), nil })
}

// Tokens returns a []string -> []string transform.
func Tokens(fn func([]string) []string) TransformFunc {
	return Convert(func(_ context.Context, toks []string) ([]string, error) { return fn(toks), nil })
}

// TextOrTokens applies fn to a string record, or to every token of a []string
// record. A token that comes back holding white space is split again and
// tokens that become empty are dropped, so a token list never holds blanks.
func TextOrTokens(fn func(string) string) TransformFunc {
	return func(_ context.Context, rec Record) (Record, error) {
		switch v := rec.(type) {
		case string:
			return fn(v), nil
		case []string:
			out := make([]string, 0, len(v))
			for _, tok := range v {
				t := fn(tok)
				if t == "" {
					continue
				}
				if strings.IndexFunc(t, unicode.IsSpace) < 0 {
					out = append(out, t)
					continue
				}
				out = append(out, strings.Fields(t)...)
			}
			return out, nil
		default:
			return nil, shapeError("", rec)
		}
	}
}

// TextRecords wraps a slice of strings as a record column.
func TextRecords(values []string) []Record {
	out := make([]Record, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
