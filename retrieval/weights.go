package retrieval

import (
	"github.com/tripseek/tripseek/schema"
	"github.com/tripseek/tripseek/vectordb"
)

// weightPresets distributes relevance across vector/sparse/fulltext per
// search mode. Each tuple sums to 1.0.
var weightPresets = map[schema.SearchMode]vectordb.Weights{
	schema.ModeBalanced: {Vector: 0.4, Sparse: 0.3, Fulltext: 0.3},
	schema.ModeSemantic: {Vector: 0.7, Sparse: 0.2, Fulltext: 0.1},
	schema.ModeKeyword:  {Vector: 0.2, Sparse: 0.6, Fulltext: 0.2},
	schema.ModeExact:    {Vector: 0.1, Sparse: 0.2, Fulltext: 0.7},
}

// WeightsFor returns the preset for a mode; unknown modes get balanced.
func WeightsFor(mode schema.SearchMode) vectordb.Weights {
	return weightPresets[mode.Normalize()]
}

// Presets exposes the full table for inspection.
func Presets() map[schema.SearchMode]vectordb.Weights {
	out := make(map[schema.SearchMode]vectordb.Weights, len(weightPresets))
	for k, v := range weightPresets {
		out[k] = v
	}
	return out
}
