// Package ctx holds the mutable execution state for one query: the
// four per-variable bucket blocks (F/A/C/T) plus pattern lookups and
// the grouped-partial-matches collector (spec §3, §4.4).
package ctx

import (
	"github.com/wbrown/graphmatch/graph"
	"github.com/wbrown/graphmatch/schemas"
)

// Graph/Expand fix the DynGraph/ExpandGraph type parameters to the
// storage-facing entity types; every bucket and the engine operate on
// these two aliases.
type Graph = graph.DynGraph[schemas.DataVertex, schemas.DataEdge]
type Expand = graph.ExpandGraph[schemas.DataVertex, schemas.DataEdge]

// FBucket holds fully-committed partial matches and the frontier(s) at
// which expansion should continue next (spec §3).
type FBucket struct {
	AllMatched           []*Graph
	MatchedWithFrontiers map[int][]schemas.Vid
}

func NewFBucket() *FBucket {
	return &FBucket{MatchedWithFrontiers: map[int][]schemas.Vid{}}
}

// ABucket is an FBucket plus the pattern vertex currently being
// expanded and the per-next-pattern-vid grouped ExpandGraphs GetAdj
// produced (spec §3).
type ABucket struct {
	FBucket
	CurrPatVid              schemas.Vid
	NextPatGroupedExpanding map[schemas.Vid][]*Expand
}

func NewABucket(from *FBucket, currPatVid schemas.Vid) *ABucket {
	return &ABucket{
		FBucket:                 *from,
		CurrPatVid:              currPatVid,
		NextPatGroupedExpanding: map[schemas.Vid][]*Expand{},
	}
}

// CBucket holds expand graphs whose candidate targets have been
// checked against a loaded vertex set (spec §3).
type CBucket struct {
	AllExpanded          []*Expand
	ExpandedWithFrontiers map[int][]schemas.Vid
}

func NewCBucket() *CBucket {
	return &CBucket{ExpandedWithFrontiers: map[int][]schemas.Vid{}}
}

// TBucket holds the expand graphs produced by a multi-operand
// Intersect, awaiting a final single-op Intersect against a loaded
// vertex set for target_pat_vid (spec §3).
type TBucket struct {
	TargetPatVid    schemas.Vid
	ExpandingGraphs []*Expand
}

func NewTBucket(targetPatVid schemas.Vid) *TBucket {
	return &TBucket{TargetPatVid: targetPatVid}
}
