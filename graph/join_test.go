package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphmatch/schemas"
)

func leftExpandingFromV1(pendingVid schemas.Vid) *ExpandGraph[schemas.DataVertex, schemas.DataEdge] {
	base := New[schemas.DataVertex, schemas.DataEdge]()
	base.UpdateV(schemas.DataVertex{Vid: "v1", Label: "person"}, "a")
	x := FromDynGraph(base)
	x.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "e1", SrcVid: "v1", DstVid: pendingVid, Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"e1": "pe1"},
	)
	return x
}

func rightExpandingFromV2(pendingVid schemas.Vid) *ExpandGraph[schemas.DataVertex, schemas.DataEdge] {
	base := New[schemas.DataVertex, schemas.DataEdge]()
	base.UpdateV(schemas.DataVertex{Vid: "v2", Label: "person"}, "b")
	x := FromDynGraph(base)
	x.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "e2", SrcVid: "v2", DstVid: pendingVid, Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"e2": "pe2"},
	)
	return x
}

func TestPairwiseExpansionJoinMergesOnSharedPendingVertex(t *testing.T) {
	l := leftExpandingFromV1("v3")
	r := rightExpandingFromV2("v3")

	result := PairwiseExpansionJoin(l, r)
	require.Len(t, result, 1)

	merged := result[0]
	assert.True(t, merged.Base.HasVid("v1"))
	assert.True(t, merged.Base.HasVid("v2"))
	assert.Contains(t, merged.DanglingE, schemas.Eid("e1"))
	assert.Contains(t, merged.DanglingE, schemas.Eid("e2"))
}

func TestPairwiseExpansionJoinYieldsNothingWithoutSharedPendingVertex(t *testing.T) {
	l := leftExpandingFromV1("v3")
	r := rightExpandingFromV2("v4")

	assert.Empty(t, PairwiseExpansionJoin(l, r))
}

func TestPairwiseExpansionJoinRejectsIncompatibleProvenance(t *testing.T) {
	baseL := New[schemas.DataVertex, schemas.DataEdge]()
	baseL.UpdateV(schemas.DataVertex{Vid: "v1", Label: "person"}, "a")
	baseL.UpdateV(schemas.DataVertex{Vid: "v5", Label: "person"}, "shared")
	l := FromDynGraph(baseL)
	l.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "e1", SrcVid: "v1", DstVid: "v3", Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"e1": "pe1"},
	)

	baseR := New[schemas.DataVertex, schemas.DataEdge]()
	baseR.UpdateV(schemas.DataVertex{Vid: "v2", Label: "person"}, "b")
	baseR.UpdateV(schemas.DataVertex{Vid: "v6", Label: "person"}, "shared")
	r := FromDynGraph(baseR)
	r.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "e2", SrcVid: "v2", DstVid: "v3", Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"e2": "pe2"},
	)

	assert.Empty(t, PairwiseExpansionJoin(l, r))
}
