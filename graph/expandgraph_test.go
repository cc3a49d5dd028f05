package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphmatch/schemas"
)

func baseWithV1() *DynGraph[schemas.DataVertex, schemas.DataEdge] {
	g := New[schemas.DataVertex, schemas.DataEdge]()
	g.UpdateV(schemas.DataVertex{Vid: "v1", Label: "person"}, "a")
	return g
}

func TestUpdateValidDanglingEdgesRejectsAlreadyCommittedEdge(t *testing.T) {
	base := baseWithV1()
	base.UpdateV(schemas.DataVertex{Vid: "v2", Label: "person"}, "b")
	base.UpdateE(schemas.DataEdge{Eid: "e1", SrcVid: "v1", DstVid: "v2", Label: "friend"}, "e1")

	x := FromDynGraph(base)
	installed := x.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "e1", SrcVid: "v1", DstVid: "v2", Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"e1": "e1"},
	)
	assert.Empty(t, installed)
}

func TestUpdateValidDanglingEdgesRejectsEdgeWithBothEndpointsOutside(t *testing.T) {
	x := FromDynGraph(baseWithV1())
	installed := x.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "e9", SrcVid: "v9", DstVid: "v10", Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"e9": "e1"},
	)
	assert.Empty(t, installed)
}

func TestUpdateValidTargetVerticesRejectsAlreadyCommittedVertex(t *testing.T) {
	x := FromDynGraph(baseWithV1())
	installed := x.UpdateValidTargetVertices([]CandidateTargetVertex[schemas.DataVertex]{
		{Vertex: schemas.DataVertex{Vid: "v1", Label: "person"}, PatternVid: "a"},
	})
	assert.Empty(t, installed)
}

func TestUpdateValidTargetVerticesRejectsCandidateNotCompletingAnyDanglingEdge(t *testing.T) {
	x := FromDynGraph(baseWithV1())
	x.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "e1", SrcVid: "v1", DstVid: "v2", Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"e1": "e1"},
	)
	installed := x.UpdateValidTargetVertices([]CandidateTargetVertex[schemas.DataVertex]{
		{Vertex: schemas.DataVertex{Vid: "v3", Label: "person"}, PatternVid: "b"},
	})
	assert.Empty(t, installed)
}

func TestCommitOnlyRealizesEdgesWhoseBothEndpointsArePresent(t *testing.T) {
	x := FromDynGraph(baseWithV1())
	x.UpdateValidDanglingEdges(
		[]schemas.DataEdge{
			{Eid: "e1", SrcVid: "v1", DstVid: "v2", Label: "friend"},
			{Eid: "e2", SrcVid: "v1", DstVid: "v3", Label: "friend"},
		},
		map[schemas.Eid]schemas.Eid{"e1": "e1", "e2": "e1"},
	)
	x.UpdateValidTargetVertices([]CandidateTargetVertex[schemas.DataVertex]{
		{Vertex: schemas.DataVertex{Vid: "v2", Label: "person"}, PatternVid: "b"},
	})

	committed := x.Commit()
	assert.True(t, committed.HasVid("v2"))
	assert.True(t, committed.HasEid("e1"))
	assert.False(t, committed.HasVid("v3"))
	assert.False(t, committed.HasEid("e2"))
}

func TestGroupDanglingByPendingV(t *testing.T) {
	x := FromDynGraph(baseWithV1())
	x.UpdateValidDanglingEdges(
		[]schemas.DataEdge{
			{Eid: "e1", SrcVid: "v1", DstVid: "v2", Label: "friend"},
			{Eid: "e2", SrcVid: "v3", DstVid: "v1", Label: "friend"},
		},
		map[schemas.Eid]schemas.Eid{"e1": "e1", "e2": "e2"},
	)
	grouped := x.GroupDanglingByPendingV()
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["v2"], 1)
	assert.Len(t, grouped["v3"], 1)
}

func TestNewTargetVids(t *testing.T) {
	installed := map[schemas.Vid]struct{}{"v1": {}, "v2": {}}
	vids := NewTargetVids[schemas.DataVertex](installed)
	assert.ElementsMatch(t, []schemas.Vid{"v1", "v2"}, vids)
}
