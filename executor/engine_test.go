package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphmatch/parser"
	"github.com/wbrown/graphmatch/planner"
	"github.com/wbrown/graphmatch/schemas"
)

// fakeAdapter is a minimal in-memory storage.Adapter for exercising the
// executor against a known, hand-built dataset.
type fakeAdapter struct {
	vertices []schemas.DataVertex
	edges    []schemas.DataEdge
}

func (a *fakeAdapter) GetV(_ context.Context, vid schemas.Vid) (schemas.DataVertex, bool) {
	for _, v := range a.vertices {
		if v.Vid == vid {
			return v, true
		}
	}
	return schemas.DataVertex{}, false
}

func (a *fakeAdapter) LoadV(_ context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataVertex {
	var out []schemas.DataVertex
	for _, v := range a.vertices {
		if v.Label == label && attrOK(v.Attrs, attr) {
			out = append(out, v)
		}
	}
	return out
}

func (a *fakeAdapter) LoadE(_ context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	var out []schemas.DataEdge
	for _, e := range a.edges {
		if e.Label == label && attrOK(e.Attrs, attr) {
			out = append(out, e)
		}
	}
	return out
}

func (a *fakeAdapter) LoadEWithSrc(_ context.Context, srcVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	var out []schemas.DataEdge
	for _, e := range a.edges {
		if e.SrcVid == srcVid && e.Label == label && attrOK(e.Attrs, attr) {
			out = append(out, e)
		}
	}
	return out
}

func (a *fakeAdapter) LoadEWithDst(_ context.Context, dstVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	var out []schemas.DataEdge
	for _, e := range a.edges {
		if e.DstVid == dstVid && e.Label == label && attrOK(e.Attrs, attr) {
			out = append(out, e)
		}
	}
	return out
}

func (a *fakeAdapter) LoadEWithSrcAndDstFilter(_ context.Context, srcVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, dstLabel schemas.Label, dstAttr *schemas.PatternAttr) []schemas.DataEdge {
	var out []schemas.DataEdge
	for _, e := range a.edges {
		if e.SrcVid != srcVid || e.Label != eLabel || !attrOK(e.Attrs, eAttr) {
			continue
		}
		dst, ok := a.GetV(context.Background(), e.DstVid)
		if !ok || dst.Label != dstLabel || !attrOK(dst.Attrs, dstAttr) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (a *fakeAdapter) LoadEWithDstAndSrcFilter(_ context.Context, dstVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, srcLabel schemas.Label, srcAttr *schemas.PatternAttr) []schemas.DataEdge {
	var out []schemas.DataEdge
	for _, e := range a.edges {
		if e.DstVid != dstVid || e.Label != eLabel || !attrOK(e.Attrs, eAttr) {
			continue
		}
		src, ok := a.GetV(context.Background(), e.SrcVid)
		if !ok || src.Label != srcLabel || !attrOK(src.Attrs, srcAttr) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (a *fakeAdapter) Close() error { return nil }

func attrOK(attrs map[string]schemas.AttrValue, attr *schemas.PatternAttr) bool {
	if attr == nil {
		return true
	}
	v, ok := attrs[attr.Key]
	return attr.IsDataAttrSatisfied(v, ok)
}

func chainDataset() *fakeAdapter {
	return &fakeAdapter{
		vertices: []schemas.DataVertex{
			{Vid: "v1", Label: "person", Attrs: map[string]schemas.AttrValue{}},
			{Vid: "v2", Label: "person", Attrs: map[string]schemas.AttrValue{}},
			{Vid: "v3", Label: "person", Attrs: map[string]schemas.AttrValue{}},
		},
		edges: []schemas.DataEdge{
			{Eid: "de1", SrcVid: "v1", DstVid: "v2", Label: "friend", Attrs: map[string]schemas.AttrValue{}},
			{Eid: "de2", SrcVid: "v2", DstVid: "v3", Label: "friend", Attrs: map[string]schemas.AttrValue{}},
		},
	}
}

func twoVertexPattern(t *testing.T) (string, *planner.PatternGraph) {
	t.Helper()
	src := "2 1 0 0\na person\nb person\ne1 a b friend\n"
	text, pattern, err := parser.ParsePattern(strings.NewReader(src))
	require.NoError(t, err)
	return text, pattern
}

func TestExecEngineFindsEveryEdgeMatch(t *testing.T) {
	text, pattern := twoVertexPattern(t)
	plan := planner.GenerateOptimalPlan(text, pattern, planner.Options{Strategy: planner.OrderBasic})

	adapter := chainDataset()
	engine := NewExecEngine(adapter, Options{})

	results, err := engine.Exec(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, results, 2)

	pairs := map[[2]string]bool{}
	for _, g := range results {
		var av, bv string
		for vid := range g.PatternToVid["a"] {
			av = vid
		}
		for vid := range g.PatternToVid["b"] {
			bv = vid
		}
		pairs[[2]string{av, bv}] = true
	}
	assert.True(t, pairs[[2]string{"v1", "v2"}])
	assert.True(t, pairs[[2]string{"v2", "v3"}])
}

func TestExecEngineNoMatchesWhenLabelAbsent(t *testing.T) {
	src := "1 0 0 0\na nonexistent\n"
	text, pattern, err := parser.ParsePattern(strings.NewReader(src))
	require.NoError(t, err)
	plan := planner.GenerateOptimalPlan(text, pattern, planner.Options{Strategy: planner.OrderBasic})

	results, err := NewExecEngine(chainDataset(), Options{}).Exec(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, results)
}
