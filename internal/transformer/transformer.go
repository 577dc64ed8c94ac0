// Package transformer chains in-memory row transforms that run between
// loading and aggregation.
package transformer

// Transformer rewrites a slice of rows. Implementations may modify in place
// and return the input slice.
type Transformer[T any] interface{ Apply([]T) []T }

// Chain is an ordered list of transformers.
type Chain[T any] []Transformer[T]

func (c Chain[T]) Apply(in []T) []T {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Func adapts a plain function to Transformer.
type Func[T any] func([]T) []T

func (f Func[T]) Apply(in []T) []T { return f(in) }
