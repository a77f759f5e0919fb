// Package random provides the pluggable random source used by the
// spintax and velocity packages.
package random

import "math/rand/v2"

// Source is the subset of *rand.Rand used by the pipeline.
type Source interface {
	Float64() float64
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) IntN(n int) int   { return rand.IntN(n) }

// Default returns the process-wide source. It is safe for concurrent use.
func Default() Source {
	return globalSource{}
}

// NewSeeded returns a deterministic source. It is not safe for concurrent use.
func NewSeeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// OrDefault returns src, or the process-wide source when src is nil.
func OrDefault(src Source) Source {
	if src == nil {
		return Default()
	}
	return src
}
