package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/graph"
	"github.com/wbrown/graphmatch/schemas"
)

func TestIntersectWithAdjSetKeepsOnlyLoadedTargetVertices(t *testing.T) {
	plan := schemas.PlanData{
		PatternVs: map[schemas.Vid]schemas.PatternVertex{"b": {Vid: "b", Label: "person"}},
	}
	mctx := gctx.New(plan)

	base := graph.New[schemas.DataVertex, schemas.DataEdge]()
	base.UpdateV(schemas.DataVertex{Vid: "v1", Label: "person"}, "a")
	expanding := graph.FromDynGraph(base)
	expanding.UpdateValidDanglingEdges(
		[]schemas.DataEdge{{Eid: "de1", SrcVid: "v1", DstVid: "v2", Label: "friend"}},
		map[schemas.Eid]schemas.Eid{"de1": "e1"},
	)

	aBucket := gctx.NewABucket(gctx.NewFBucket(), "a")
	aBucket.NextPatGroupedExpanding = map[schemas.Vid][]*gctx.Expand{"b": {expanding}}
	require.NoError(t, mctx.UpdateABlock("A^b", aBucket))

	op := NewIntersectOperator(chainDataset(), NewWorkerPool(2))
	singleOp := "A^b"
	instr := schemas.Instruction{Vid: "b", Type: schemas.InstrIntersect, SingleOp: &singleOp, TargetVar: "C^b"}
	require.NoError(t, op.Execute(context.Background(), mctx, instr))

	cBucket, err := mctx.PopFromCBlock("C^b")
	require.NoError(t, err)
	require.Len(t, cBucket.AllExpanded, 1)
	assert.Equal(t, []schemas.Vid{"v2"}, cBucket.ExpandedWithFrontiers[0])
}

func TestIntersectMultiAdjSetUsesChunkedParallelAboveThreshold(t *testing.T) {
	plan := schemas.PlanData{}
	mctx := gctx.New(plan)

	makeExpand := func(vid, patVid schemas.Vid, pendingTo schemas.Vid, eid schemas.Eid) *gctx.Expand {
		base := graph.New[schemas.DataVertex, schemas.DataEdge]()
		base.UpdateV(schemas.DataVertex{Vid: vid, Label: "person"}, patVid)
		expanding := graph.FromDynGraph(base)
		expanding.UpdateValidDanglingEdges(
			[]schemas.DataEdge{{Eid: eid, SrcVid: vid, DstVid: pendingTo, Label: "friend"}},
			map[schemas.Eid]schemas.Eid{eid: "e1"},
		)
		return expanding
	}

	const leftCount = chunkedParallelThreshold + 7
	left := make([]*gctx.Expand, leftCount)
	for i := 0; i < leftCount; i++ {
		vid := schemas.Vid(fmt.Sprintf("v%d", i))
		left[i] = makeExpand(vid, "a", "shared", schemas.Eid(fmt.Sprintf("e%d", i)))
	}
	right := []*gctx.Expand{makeExpand("other", "b", "shared", "eo")}

	leftBucket := gctx.NewABucket(gctx.NewFBucket(), "a")
	leftBucket.NextPatGroupedExpanding = map[schemas.Vid][]*gctx.Expand{"b": left}
	require.NoError(t, mctx.UpdateABlock("A^left", leftBucket))

	rightBucket := gctx.NewABucket(gctx.NewFBucket(), "a")
	rightBucket.NextPatGroupedExpanding = map[schemas.Vid][]*gctx.Expand{"b": right}
	require.NoError(t, mctx.UpdateABlock("A^right", rightBucket))

	op := NewIntersectOperator(chainDataset(), NewWorkerPool(4))
	instr := schemas.Instruction{Vid: "b", Type: schemas.InstrIntersect, MultiOps: []string{"A^left", "A^right"}, TargetVar: "T^b"}
	require.NoError(t, op.Execute(context.Background(), mctx, instr))

	tBucket, err := mctx.PopFromTBlock("T^b")
	require.NoError(t, err)
	assert.Len(t, tBucket.ExpandingGraphs, leftCount)
}

func TestIntersectMultiAdjSetRequiresAtLeastTwoGroups(t *testing.T) {
	plan := schemas.PlanData{}
	mctx := gctx.New(plan)

	base := graph.New[schemas.DataVertex, schemas.DataEdge]()
	base.UpdateV(schemas.DataVertex{Vid: "v1", Label: "person"}, "a")
	expanding := graph.FromDynGraph(base)

	aBucket := gctx.NewABucket(gctx.NewFBucket(), "a")
	aBucket.NextPatGroupedExpanding = map[schemas.Vid][]*gctx.Expand{"b": {expanding}}
	require.NoError(t, mctx.UpdateABlock("A^only", aBucket))

	op := NewIntersectOperator(chainDataset(), NewWorkerPool(2))
	instr := schemas.Instruction{Vid: "b", Type: schemas.InstrIntersect, MultiOps: []string{"A^only"}, TargetVar: "T^b"}
	require.NoError(t, op.Execute(context.Background(), mctx, instr))

	_, err := mctx.PopFromTBlock("T^b")
	assert.Error(t, err)
}
