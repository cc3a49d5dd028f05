package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphmatch/schemas"
)

func twoVertexOneEdgePattern() *PatternGraph {
	return BuildPatternGraph(
		[]schemas.PatternVertex{
			{Vid: "a", Label: "person"},
			{Vid: "b", Label: "person"},
		},
		[]schemas.PatternEdge{
			{Eid: "e1", SrcVid: "a", DstVid: "b", Label: "friend"},
		},
	)
}

func TestGenerateOptimalPlanProducesInitIntersectForeachGetAdjReport(t *testing.T) {
	plan := GenerateOptimalPlan("pattern text", twoVertexOneEdgePattern(), Options{Strategy: OrderBasic})

	require.Len(t, plan.MatchingOrder, 2)
	require.NotEmpty(t, plan.Instructions)

	last := plan.Instructions[len(plan.Instructions)-1]
	assert.Equal(t, schemas.InstrReport, last.Type)

	var sawInit, sawGetAdj, sawIntersectOrForeach bool
	for _, instr := range plan.Instructions {
		switch instr.Type {
		case schemas.InstrInit:
			sawInit = true
		case schemas.InstrGetAdj:
			sawGetAdj = true
		case schemas.InstrIntersect, schemas.InstrForeach:
			sawIntersectOrForeach = true
		}
	}
	assert.True(t, sawInit)
	assert.True(t, sawGetAdj)
	assert.True(t, sawIntersectOrForeach)

	assert.Equal(t, twoVertexOneEdgePattern().VEntities, plan.PatternVs)
}

func TestGenerateOptimalPlanUsesCacheOnRepeatedCall(t *testing.T) {
	cache := NewPlanCache(10, 0)
	opts := Options{Strategy: OrderBasic, Cache: cache}

	first := GenerateOptimalPlan("pattern text", twoVertexOneEdgePattern(), opts)
	second := GenerateOptimalPlan("pattern text", twoVertexOneEdgePattern(), opts)

	assert.Equal(t, first.Instructions, second.Instructions)
	hits, _, _ := cache.Stats()
	assert.Equal(t, int64(1), hits)
}

func TestExplainTextIncludesMatchingOrderAndInstructions(t *testing.T) {
	plan := GenerateOptimalPlan("pattern text", twoVertexOneEdgePattern(), Options{Strategy: OrderBasic})
	out := ExplainText(plan)

	assert.True(t, strings.HasPrefix(out, "matching order: "))
	assert.Contains(t, out, "report")
}
