package graph

import "github.com/wbrown/graphmatch/schemas"

// PairwiseExpansionJoin implements spec §4.4.6's "Pairwise expansion
// join": union l and r's committed entities into a base DynGraph, then
// for every pending vid that appears as a dangling-edge target in both
// sides, emit one ExpandGraph carrying the base plus the union of both
// sides' dangling edges at that pending vid.
//
// Invariant check first: for every pattern vid/eid common to both
// sides, the set of data vids/eids tagged with it must be identical
// and singleton in both — otherwise the pair contributes nothing.
// Grounded on original_source/src/utils/expand_graph.rs's
// union_then_intersect_on_connective_v.
func PairwiseExpansionJoin[V schemas.VertexLike, E schemas.EdgeLike](l, r *ExpandGraph[V, E]) []*ExpandGraph[V, E] {
	if !provenanceCompatible(l.Base.PatternToVid, r.Base.PatternToVid) {
		return nil
	}
	if !provenanceCompatible(l.Base.PatternToEid, r.Base.PatternToEid) {
		return nil
	}

	base := l.Base.Union(r.Base)

	groupedL := l.GroupDanglingByPendingV()
	groupedR := r.GroupDanglingByPendingV()

	var result []*ExpandGraph[V, E]
	for pendingVid, lEdges := range groupedL {
		rEdges, ok := groupedR[pendingVid]
		if !ok {
			continue
		}
		expanding := FromDynGraph(base)
		expanding.UpdateValidDanglingEdges(lEdges, l.DanglingEPattern)
		expanding.UpdateValidDanglingEdges(rEdges, r.DanglingEPattern)
		result = append(result, expanding)
	}
	return result
}

// provenanceCompatible reports whether, for every pattern key common to
// both maps, the associated data-id set is identical and singleton.
func provenanceCompatible[K comparable](l, r map[schemas.Vid]map[K]struct{}) bool {
	for pat, lSet := range l {
		rSet, ok := r[pat]
		if !ok {
			continue
		}
		if len(lSet) > 1 || len(rSet) > 1 {
			return false
		}
		if !setsEqual(lSet, rSet) {
			return false
		}
	}
	return true
}

func setsEqual[K comparable](a, b map[K]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
