// Package planner turns a parsed pattern graph into a compiled
// PlanData: an optimal matching order, then a raw instruction stream,
// then a CSE-and-reorder optimization pass (spec §4.2, §4.3).
//
// File organization:
//   - types.go: shared PatternGraph alias and planner configuration
//   - statistics.go: basic/advanced statistics file shapes (spec §6)
//   - order_basic.go: label-cardinality order calculator
//   - order_advanced.go: selectivity/histogram order calculator
//   - apriori.go: frequent-itemset mining used by CSE
//   - plangen.go: raw instruction generation from an optimal order
//   - optimize.go: CSE and dependency-respecting reorder
//   - cache.go: plan cache keyed by pattern text
//   - planner.go: GenerateOptimalPlan entry point
package planner

import (
	"github.com/wbrown/graphmatch/graph"
	"github.com/wbrown/graphmatch/schemas"
)

// PatternGraph is the pattern-side DynGraph instantiation the planner
// operates over, mirroring ctx.Graph's data-side instantiation.
type PatternGraph = graph.DynGraph[schemas.PatternVertex, schemas.PatternEdge]

// BuildPatternGraph assembles a PatternGraph from the flat vertex/edge
// lists the parser produces. Every vertex/edge is tagged with its own
// id as "pattern provenance" — the planner doesn't need provenance
// distinct from identity, only the execution-time DynGraph does.
func BuildPatternGraph(vertices []schemas.PatternVertex, edges []schemas.PatternEdge) *PatternGraph {
	g := graph.New[schemas.PatternVertex, schemas.PatternEdge]()
	for _, v := range vertices {
		g.UpdateV(v, v.Vid)
	}
	for _, e := range edges {
		g.UpdateE(e, e.Eid)
	}
	return g
}

// OrderStrategy selects which OrderCalculator computes the matching
// order (spec §4.2's Basic vs Advanced split).
type OrderStrategy int

const (
	OrderBasic OrderStrategy = iota
	OrderAdvanced
)

// Options configures plan generation.
type Options struct {
	Strategy OrderStrategy

	// Statistics sources. Exactly one of these is read, matching
	// Strategy; both are optional — a nil source falls back to the
	// all-zero statistics used by tests over small fixtures.
	Basic    *Statistics
	Advanced *AdvancedStatistics

	// Cache, if set, is consulted before planning and populated after.
	Cache *PlanCache
}
