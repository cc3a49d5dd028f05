package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphmatch/schemas"
)

type countingAdapter struct {
	getVCalls    int
	loadVCalls   int
	loadECalls   int
	loadSrcCalls int
}

func (a *countingAdapter) GetV(_ context.Context, vid schemas.Vid) (schemas.DataVertex, bool) {
	a.getVCalls++
	if vid == "v1" {
		return schemas.DataVertex{Vid: "v1", Label: "person"}, true
	}
	return schemas.DataVertex{}, false
}

func (a *countingAdapter) LoadV(_ context.Context, label schemas.Label, _ *schemas.PatternAttr) []schemas.DataVertex {
	a.loadVCalls++
	return []schemas.DataVertex{{Vid: "v1", Label: label}}
}

func (a *countingAdapter) LoadE(_ context.Context, _ schemas.Label, _ *schemas.PatternAttr) []schemas.DataEdge {
	a.loadECalls++
	return nil
}

func (a *countingAdapter) LoadEWithSrc(_ context.Context, srcVid schemas.Vid, label schemas.Label, _ *schemas.PatternAttr) []schemas.DataEdge {
	a.loadSrcCalls++
	return []schemas.DataEdge{{Eid: "e1", SrcVid: srcVid, DstVid: "v2", Label: label}}
}

func (a *countingAdapter) LoadEWithDst(_ context.Context, _ schemas.Vid, _ schemas.Label, _ *schemas.PatternAttr) []schemas.DataEdge {
	return nil
}

func (a *countingAdapter) LoadEWithSrcAndDstFilter(_ context.Context, _ schemas.Vid, _ schemas.Label, _ *schemas.PatternAttr, _ schemas.Label, _ *schemas.PatternAttr) []schemas.DataEdge {
	return nil
}

func (a *countingAdapter) LoadEWithDstAndSrcFilter(_ context.Context, _ schemas.Vid, _ schemas.Label, _ *schemas.PatternAttr, _ schemas.Label, _ *schemas.PatternAttr) []schemas.DataEdge {
	return nil
}

func (a *countingAdapter) Close() error { return nil }

func TestCachedAdapterGetVHitsCacheOnSecondCall(t *testing.T) {
	inner := &countingAdapter{}
	cached, err := NewCachedAdapter(inner, 10)
	require.NoError(t, err)

	v1, ok1 := cached.GetV(context.Background(), "v1")
	v2, ok2 := cached.GetV(context.Background(), "v1")

	assert.Equal(t, v1, v2)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, 1, inner.getVCalls)
}

func TestCachedAdapterLoadEIsNeverCached(t *testing.T) {
	inner := &countingAdapter{}
	cached, err := NewCachedAdapter(inner, 10)
	require.NoError(t, err)

	cached.LoadE(context.Background(), "friend", nil)
	cached.LoadE(context.Background(), "friend", nil)

	assert.Equal(t, 2, inner.loadECalls)
}

func TestCachedAdapterLoadVCachesPerLabelAndAttr(t *testing.T) {
	inner := &countingAdapter{}
	cached, err := NewCachedAdapter(inner, 10)
	require.NoError(t, err)

	cached.LoadV(context.Background(), "person", nil)
	cached.LoadV(context.Background(), "person", nil)
	assert.Equal(t, 1, inner.loadVCalls)

	cached.LoadV(context.Background(), "company", nil)
	assert.Equal(t, 2, inner.loadVCalls)
}

func TestCachedAdapterLoadEWithSrcCachesByKey(t *testing.T) {
	inner := &countingAdapter{}
	cached, err := NewCachedAdapter(inner, 10)
	require.NoError(t, err)

	cached.LoadEWithSrc(context.Background(), "v1", "friend", nil)
	cached.LoadEWithSrc(context.Background(), "v1", "friend", nil)
	assert.Equal(t, 1, inner.loadSrcCalls)

	cached.LoadEWithSrc(context.Background(), "v2", "friend", nil)
	assert.Equal(t, 2, inner.loadSrcCalls)
}

func TestCachedAdapterCacheClearForcesReload(t *testing.T) {
	inner := &countingAdapter{}
	cached, err := NewCachedAdapter(inner, 10)
	require.NoError(t, err)

	cached.GetV(context.Background(), "v1")
	cached.CacheClear()
	cached.GetV(context.Background(), "v1")

	assert.Equal(t, 2, inner.getVCalls)
}
