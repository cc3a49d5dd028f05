package graph

import "github.com/wbrown/graphmatch/schemas"

// ExpandGraph stages an expansion that has not yet committed to a
// concrete new vertex: a DynGraph plus dangling edges (one endpoint
// outside the graph) and candidate target vertices, each with parallel
// pattern-id provenance (spec §3).
type ExpandGraph[V schemas.VertexLike, E schemas.EdgeLike] struct {
	Base *DynGraph[V, E]

	DanglingE        map[schemas.Eid]E
	DanglingEPattern map[schemas.Eid]schemas.Eid

	TargetV        map[schemas.Vid]V
	TargetVPattern map[schemas.Vid]schemas.Vid
}

// FromDynGraph wraps a committed DynGraph as the base of a new,
// otherwise-empty ExpandGraph.
func FromDynGraph[V schemas.VertexLike, E schemas.EdgeLike](g *DynGraph[V, E]) *ExpandGraph[V, E] {
	return &ExpandGraph[V, E]{
		Base:             g.Clone(),
		DanglingE:        map[schemas.Eid]E{},
		DanglingEPattern: map[schemas.Eid]schemas.Eid{},
		TargetV:          map[schemas.Vid]V{},
		TargetVPattern:   map[schemas.Vid]schemas.Vid{},
	}
}

func (x *ExpandGraph[V, E]) Clone() *ExpandGraph[V, E] {
	out := FromDynGraph(x.Base)
	for k, v := range x.DanglingE {
		out.DanglingE[k] = v
	}
	for k, v := range x.DanglingEPattern {
		out.DanglingEPattern[k] = v
	}
	for k, v := range x.TargetV {
		out.TargetV[k] = v
	}
	for k, v := range x.TargetVPattern {
		out.TargetVPattern[k] = v
	}
	return out
}

// isConnective reports whether exactly one endpoint of e is in Base:
// the true-dangling condition spec §8 requires.
func (x *ExpandGraph[V, E]) isConnective(e E) bool {
	hasSrc, hasDst := x.Base.HasVid(e.Src()), x.Base.HasVid(e.Dst())
	return hasSrc != hasDst
}

func (x *ExpandGraph[V, E]) isValidDanglingEdge(e E) bool {
	return x.isConnective(e) && !x.Base.HasEid(e.EdgeID())
}

// UpdateValidDanglingEdges installs each (edge, patternEid) pair whose
// edge is a true dangling edge relative to Base, returning the eids
// actually installed.
func (x *ExpandGraph[V, E]) UpdateValidDanglingEdges(edges []E, patterns map[schemas.Eid]schemas.Eid) map[schemas.Eid]struct{} {
	installed := map[schemas.Eid]struct{}{}
	for _, e := range edges {
		if !x.isValidDanglingEdge(e) {
			continue
		}
		eid := e.EdgeID()
		x.DanglingE[eid] = e
		x.DanglingEPattern[eid] = patterns[eid]
		installed[eid] = struct{}{}
	}
	return installed
}

// isValidTarget reports whether v completes some dangling edge and is
// not already committed.
func (x *ExpandGraph[V, E]) isValidTarget(v V) bool {
	if x.Base.HasVid(v.VertexID()) {
		return false
	}
	for _, e := range x.DanglingE {
		if schemas.Contains(e, v.VertexID()) {
			return true
		}
	}
	return false
}

// CandidateTargetVertex pairs a candidate data vertex with the pattern
// vid it's being validated against.
type CandidateTargetVertex[V schemas.VertexLike] struct {
	Vertex     V
	PatternVid schemas.Vid
}

// UpdateValidTargetVertices installs each candidate whose vertex
// completes a dangling edge, returning the installed vids.
func (x *ExpandGraph[V, E]) UpdateValidTargetVertices(candidates []CandidateTargetVertex[V]) map[schemas.Vid]struct{} {
	installed := map[schemas.Vid]struct{}{}
	for _, c := range candidates {
		if !x.isValidTarget(c.Vertex) {
			continue
		}
		vid := c.Vertex.VertexID()
		x.TargetV[vid] = c.Vertex
		x.TargetVPattern[vid] = c.PatternVid
		installed[vid] = struct{}{}
	}
	return installed
}

// Commit converts a validated ExpandGraph into a concrete DynGraph:
// target vertices become real vertices, dangling edges whose pending
// endpoint is now present become real edges (spec §4.4.4 Foreach).
func (x *ExpandGraph[V, E]) Commit() *DynGraph[V, E] {
	out := x.Base.Clone()
	for vid, v := range x.TargetV {
		out.UpdateV(v, x.TargetVPattern[vid])
	}
	for eid, e := range x.DanglingE {
		if out.HasAllVids([]schemas.Vid{e.Src(), e.Dst()}) {
			out.UpdateE(e, x.DanglingEPattern[eid])
		}
	}
	return out
}

// NewTargetVids returns the vids just installed by UpdateValidTargetVertices,
// which become the new frontier for Foreach's resulting DynGraph.
func NewTargetVids[V schemas.VertexLike](installed map[schemas.Vid]struct{}) []schemas.Vid {
	out := make([]schemas.Vid, 0, len(installed))
	for vid := range installed {
		out = append(out, vid)
	}
	return out
}

// GroupDanglingByPendingV groups this ExpandGraph's dangling edges by
// the vid that is NOT yet in Base (the "pending" endpoint).
func (x *ExpandGraph[V, E]) GroupDanglingByPendingV() map[schemas.Vid][]E {
	grouped := map[schemas.Vid][]E{}
	for _, e := range x.DanglingE {
		if x.Base.HasVid(e.Src()) {
			grouped[e.Dst()] = append(grouped[e.Dst()], e)
		} else if x.Base.HasVid(e.Dst()) {
			grouped[e.Src()] = append(grouped[e.Src()], e)
		}
	}
	return grouped
}
