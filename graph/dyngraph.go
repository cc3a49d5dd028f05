// Package graph implements the value-semantic partial-match carriers
// used by the execution engine: DynGraph (a committed partial match)
// and ExpandGraph (a staged expansion awaiting target validation).
//
// Grounded on original_source/src/utils/dyn_graph.rs and
// expand_graph.rs; adapted from Rust generics + operator overloading
// to Go generics + named methods, the way the teacher exposes named
// mutators (Assert/Retract) rather than operator overloads.
package graph

import (
	"fmt"
	"sort"

	"github.com/wbrown/graphmatch/schemas"
)

// VNode is a vertex's adjacency within a DynGraph: the set of edge ids
// entering and leaving it.
type VNode struct {
	EIn  map[schemas.Eid]struct{}
	EOut map[schemas.Eid]struct{}
}

func newVNode() VNode {
	return VNode{EIn: map[schemas.Eid]struct{}{}, EOut: map[schemas.Eid]struct{}{}}
}

func (n *VNode) mergeFrom(other VNode) {
	for eid := range other.EIn {
		n.EIn[eid] = struct{}{}
	}
	for eid := range other.EOut {
		n.EOut[eid] = struct{}{}
	}
}

func (n VNode) clone() VNode {
	out := newVNode()
	for eid := range n.EIn {
		out.EIn[eid] = struct{}{}
	}
	for eid := range n.EOut {
		out.EOut[eid] = struct{}{}
	}
	return out
}

// DynGraph is an in-memory labelled multigraph carrying both the
// matched entities and their pattern-id provenance (spec §3). V and E
// are normally schemas.DataVertex/schemas.DataEdge; the type is kept
// generic so tests can exercise it with lighter fixtures.
type DynGraph[V schemas.VertexLike, E schemas.EdgeLike] struct {
	VEntities map[schemas.Vid]V
	EEntities map[schemas.Eid]E
	AdjTable  map[schemas.Vid]VNode

	// Provenance: which pattern vid/eid a data vid/eid was matched
	// against, and the reverse index used by the pairwise expansion
	// join (spec §4.4.6) to check "identical and singleton" groups.
	VPattern     map[schemas.Vid]schemas.Vid
	EPattern     map[schemas.Eid]schemas.Eid
	PatternToVid map[schemas.Vid]map[schemas.Vid]struct{}
	PatternToEid map[schemas.Vid]map[schemas.Eid]struct{}
}

// New returns an empty DynGraph.
func New[V schemas.VertexLike, E schemas.EdgeLike]() *DynGraph[V, E] {
	return &DynGraph[V, E]{
		VEntities:    map[schemas.Vid]V{},
		EEntities:    map[schemas.Eid]E{},
		AdjTable:     map[schemas.Vid]VNode{},
		VPattern:     map[schemas.Vid]schemas.Vid{},
		EPattern:     map[schemas.Eid]schemas.Eid{},
		PatternToVid: map[schemas.Vid]map[schemas.Vid]struct{}{},
		PatternToEid: map[schemas.Vid]map[schemas.Eid]struct{}{},
	}
}

// Clone returns a deep copy (value semantics, spec §3: "value-semantic
// partial match carrier").
func (g *DynGraph[V, E]) Clone() *DynGraph[V, E] {
	out := New[V, E]()
	for k, v := range g.VEntities {
		out.VEntities[k] = v
	}
	for k, v := range g.EEntities {
		out.EEntities[k] = v
	}
	for k, v := range g.AdjTable {
		out.AdjTable[k] = v.clone()
	}
	for k, v := range g.VPattern {
		out.VPattern[k] = v
	}
	for k, v := range g.EPattern {
		out.EPattern[k] = v
	}
	for pat, vids := range g.PatternToVid {
		cp := make(map[schemas.Vid]struct{}, len(vids))
		for vid := range vids {
			cp[vid] = struct{}{}
		}
		out.PatternToVid[pat] = cp
	}
	for pat, eids := range g.PatternToEid {
		cp := make(map[schemas.Eid]struct{}, len(eids))
		for eid := range eids {
			cp[eid] = struct{}{}
		}
		out.PatternToEid[pat] = cp
	}
	return out
}

// HasVid/HasEid report entity membership.
func (g *DynGraph[V, E]) HasVid(vid schemas.Vid) bool { _, ok := g.VEntities[vid]; return ok }
func (g *DynGraph[V, E]) HasEid(eid schemas.Eid) bool { _, ok := g.EEntities[eid]; return ok }

func (g *DynGraph[V, E]) HasAllVids(vids []schemas.Vid) bool {
	for _, vid := range vids {
		if !g.HasVid(vid) {
			return false
		}
	}
	return true
}

// UpdateV inserts a vertex tagged with its pattern vid.
func (g *DynGraph[V, E]) UpdateV(vertex V, patternVid schemas.Vid) {
	vid := vertex.VertexID()
	g.VEntities[vid] = vertex
	if _, ok := g.AdjTable[vid]; !ok {
		g.AdjTable[vid] = newVNode()
	}
	g.VPattern[vid] = patternVid
	if g.PatternToVid[patternVid] == nil {
		g.PatternToVid[patternVid] = map[schemas.Vid]struct{}{}
	}
	g.PatternToVid[patternVid][vid] = struct{}{}
}

func (g *DynGraph[V, E]) UpdateVBatch(vertices []V, patternVid schemas.Vid) {
	for _, v := range vertices {
		g.UpdateV(v, patternVid)
	}
}

// UpdateE inserts an edge tagged with its pattern eid. Both endpoints
// must already be present: half-dangling edges are an invariant
// violation at this layer (dangling edges live only in ExpandGraph,
// spec §4.5).
func (g *DynGraph[V, E]) UpdateE(edge E, patternEid schemas.Eid) {
	eid := edge.EdgeID()
	src, dst := edge.Src(), edge.Dst()

	hasSrc, hasDst := g.HasVid(src), g.HasVid(dst)
	switch {
	case hasSrc && hasDst:
		g.EEntities[eid] = edge
		srcNode := g.AdjTable[src]
		srcNode.EOut[eid] = struct{}{}
		g.AdjTable[src] = srcNode
		dstNode := g.AdjTable[dst]
		dstNode.EIn[eid] = struct{}{}
		g.AdjTable[dst] = dstNode
		g.EPattern[eid] = patternEid
		if g.PatternToEid[patternEid] == nil {
			g.PatternToEid[patternEid] = map[schemas.Eid]struct{}{}
		}
		g.PatternToEid[patternEid][eid] = struct{}{}
	case hasSrc:
		panic(fmt.Errorf("%w: half-dangling edge (vid: %s) -[eid: %s]-> ?", schemas.ErrInvariantViolation, src, eid))
	case hasDst:
		panic(fmt.Errorf("%w: half-dangling edge ? -[eid: %s]-> (vid: %s)", schemas.ErrInvariantViolation, eid, dst))
	default:
		panic(fmt.Errorf("%w: dangling edge ? -[eid: %s]-> ?", schemas.ErrInvariantViolation, eid))
	}
}

func (g *DynGraph[V, E]) UpdateEBatch(edges []E, patternEids map[schemas.Eid]schemas.Eid) {
	for _, e := range edges {
		g.UpdateE(e, patternEids[e.EdgeID()])
	}
}

// Union returns g | other: entity union plus adjacency merge (spec
// §4.5). Clones g first, so O(|g| + |other|); UnionAssign is O(|other|).
func (g *DynGraph[V, E]) Union(other *DynGraph[V, E]) *DynGraph[V, E] {
	out := g.Clone()
	out.UnionAssign(other)
	return out
}

// UnionAssign is the in-place form of Union.
func (g *DynGraph[V, E]) UnionAssign(other *DynGraph[V, E]) {
	for k, v := range other.VEntities {
		g.VEntities[k] = v
	}
	for k, v := range other.EEntities {
		g.EEntities[k] = v
	}
	for vid, node := range other.AdjTable {
		existing, ok := g.AdjTable[vid]
		if !ok {
			g.AdjTable[vid] = node.clone()
			continue
		}
		existing.mergeFrom(node)
		g.AdjTable[vid] = existing
	}
	for k, v := range other.VPattern {
		g.VPattern[k] = v
	}
	for k, v := range other.EPattern {
		g.EPattern[k] = v
	}
	for pat, vids := range other.PatternToVid {
		if g.PatternToVid[pat] == nil {
			g.PatternToVid[pat] = map[schemas.Vid]struct{}{}
		}
		for vid := range vids {
			g.PatternToVid[pat][vid] = struct{}{}
		}
	}
	for pat, eids := range other.PatternToEid {
		if g.PatternToEid[pat] == nil {
			g.PatternToEid[pat] = map[schemas.Eid]struct{}{}
		}
		for eid := range eids {
			g.PatternToEid[pat][eid] = struct{}{}
		}
	}
}

// IsSubsetOf reports whether every vertex/edge adjacency of g is
// present in other (spec §4.5).
func (g *DynGraph[V, E]) IsSubsetOf(other *DynGraph[V, E]) bool {
	for vid, node := range g.AdjTable {
		otherNode, ok := other.AdjTable[vid]
		if !ok {
			return false
		}
		for eid := range node.EIn {
			if _, ok := otherNode.EIn[eid]; !ok {
				return false
			}
		}
		for eid := range node.EOut {
			if _, ok := otherNode.EOut[eid]; !ok {
				return false
			}
		}
	}
	return true
}

// VPatternCounts/EPatternCounts build the pattern-multiset used by
// Report (spec §4.4.5) and the final merge (spec §4.4.6) to filter out
// over- or under-sized matches.
func (g *DynGraph[V, E]) VPatternCounts() map[schemas.Vid]int {
	counts := make(map[schemas.Vid]int, len(g.VPattern))
	for _, pat := range g.VPattern {
		counts[pat]++
	}
	return counts
}

func (g *DynGraph[V, E]) EPatternCounts() map[schemas.Vid]int {
	counts := make(map[schemas.Vid]int, len(g.EPattern))
	for _, pat := range g.EPattern {
		counts[pat]++
	}
	return counts
}

// VCount/ECount report entity counts.
func (g *DynGraph[V, E]) VCount() int { return len(g.VEntities) }
func (g *DynGraph[V, E]) ECount() int { return len(g.EEntities) }

// The methods below serve the planner's pattern-graph queries (order
// calculation, cost estimation): they read the same AdjTable the
// execution-time DynGraph uses, grounded on original_source's
// get_adj_eids/get_adj_vids/get_in_degree/get_out_degree.

// InDegree/OutDegree count edges ending/starting at vid.
func (g *DynGraph[V, E]) InDegree(vid schemas.Vid) int  { return len(g.AdjTable[vid].EIn) }
func (g *DynGraph[V, E]) OutDegree(vid schemas.Vid) int { return len(g.AdjTable[vid].EOut) }

// AdjEids returns every edge id touching vid, in either direction.
func (g *DynGraph[V, E]) AdjEids(vid schemas.Vid) []schemas.Eid {
	node := g.AdjTable[vid]
	out := make([]schemas.Eid, 0, len(node.EIn)+len(node.EOut))
	for eid := range node.EIn {
		out = append(out, eid)
	}
	for eid := range node.EOut {
		out = append(out, eid)
	}
	return out
}

// AdjVids returns the distinct neighbor vertex ids reachable through an
// adjacent edge of vid.
func (g *DynGraph[V, E]) AdjVids(vid schemas.Vid) []schemas.Vid {
	seen := map[schemas.Vid]struct{}{}
	for _, eid := range g.AdjEids(vid) {
		e := g.EEntities[eid]
		if e.Src() != vid {
			seen[e.Src()] = struct{}{}
		}
		if e.Dst() != vid {
			seen[e.Dst()] = struct{}{}
		}
	}
	out := make([]schemas.Vid, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}

// AdjEidsGroupedByTargetVid groups vid's adjacent edges by the other
// endpoint, the way a worst-case-optimal cost estimate needs to treat
// parallel edges to the same neighbor as one join group.
func (g *DynGraph[V, E]) AdjEidsGroupedByTargetVid(vid schemas.Vid) map[schemas.Vid][]schemas.Eid {
	out := map[schemas.Vid][]schemas.Eid{}
	for _, eid := range g.AdjEids(vid) {
		e := g.EEntities[eid]
		other := e.Src()
		if other == vid {
			other = e.Dst()
		}
		out[other] = append(out[other], eid)
	}
	return out
}

// Vids returns every vertex id, sorted for deterministic iteration
// (the Rust original folds a parallel iterator into a BTreeMap keyed
// by cost, which only orders between cost buckets — ties are broken
// here by vid instead of being left to scheduler order).
func (g *DynGraph[V, E]) Vids() []schemas.Vid {
	out := make([]schemas.Vid, 0, len(g.VEntities))
	for vid := range g.VEntities {
		out = append(out, vid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
