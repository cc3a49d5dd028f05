package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/planner"
	"github.com/wbrown/graphmatch/schemas"
)

// Resolves the GetAdj fan-out Open Question: Serial (one goroutine per
// matched graph) and Batched (chunks of getAdjBatchSize) must agree on
// the set of matches, differing only in fan-out granularity.
func TestGetAdjStrategiesAgreeOnResultSet(t *testing.T) {
	text, pattern := twoVertexPattern(t)
	plan := planner.GenerateOptimalPlan(text, pattern, planner.Options{Strategy: planner.OrderBasic})

	serial, err := NewExecEngine(chainDataset(), Options{GetAdjStrategy: GetAdjSerial}).Exec(context.Background(), plan)
	require.NoError(t, err)
	batched, err := NewExecEngine(chainDataset(), Options{GetAdjStrategy: GetAdjBatched}).Exec(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, batched, len(serial))
	assert.ElementsMatch(t, matchedPairs(serial), matchedPairs(batched))
}

// A hub fanning out to several leaves gives Init more than
// getAdjBatchSize matched frontiers, which exercises the multi-chunk
// path in RunBatched.
func TestGetAdjBatchedChunksAcrossMultipleFrontiers(t *testing.T) {
	adapter := &fakeAdapter{
		vertices: []schemas.DataVertex{
			{Vid: "hub", Label: "person", Attrs: map[string]schemas.AttrValue{}},
		},
		edges: []schemas.DataEdge{},
	}
	for i := 0; i < 5; i++ {
		leaf := schemas.Vid("leaf" + string(rune('a'+i)))
		adapter.vertices = append(adapter.vertices, schemas.DataVertex{Vid: leaf, Label: "person", Attrs: map[string]schemas.AttrValue{}})
		adapter.edges = append(adapter.edges, schemas.DataEdge{
			Eid: "e" + string(rune('a'+i)), SrcVid: "hub", DstVid: leaf, Label: "friend", Attrs: map[string]schemas.AttrValue{},
		})
	}

	text, pattern := twoVertexPattern(t)
	plan := planner.GenerateOptimalPlan(text, pattern, planner.Options{Strategy: planner.OrderBasic})

	results, err := NewExecEngine(adapter, Options{GetAdjStrategy: GetAdjBatched}).Exec(context.Background(), plan)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func matchedPairs(results []*gctx.Graph) [][2]string {
	pairs := make([][2]string, 0, len(results))
	for _, g := range results {
		var av, bv string
		for vid := range g.PatternToVid["a"] {
			av = vid
		}
		for vid := range g.PatternToVid["b"] {
			bv = vid
		}
		pairs = append(pairs, [2]string{av, bv})
	}
	return pairs
}
