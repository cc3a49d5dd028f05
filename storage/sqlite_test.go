package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphmatch/schemas"
)

func newTestSQLiteAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()
	adapter, err := NewSQLiteAdapter(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestSQLiteAdapterLoadFixtureAndQuery(t *testing.T) {
	a := newTestSQLiteAdapter(t)
	ctx := context.Background()

	vertices := []schemas.DataVertex{
		{Vid: "alice", Label: "person", Attrs: map[string]schemas.AttrValue{"city": schemas.StringValue("NYC")}},
		{Vid: "acme", Label: "company"},
	}
	edges := []schemas.DataEdge{
		{Eid: "e1", SrcVid: "alice", DstVid: "acme", Label: "works_at"},
	}
	require.NoError(t, a.LoadFixture(ctx, vertices, edges))

	alice, ok := a.GetV(ctx, "alice")
	require.True(t, ok)
	assert.Equal(t, schemas.Label("person"), alice.Label)
	assert.Equal(t, schemas.StringValue("NYC"), alice.Attrs["city"])

	_, ok = a.GetV(ctx, "nobody")
	assert.False(t, ok)

	people := a.LoadV(ctx, "person", nil)
	require.Len(t, people, 1)
	assert.Equal(t, schemas.Vid("alice"), people[0].Vid)

	attr := schemas.PatternAttr{Key: "city", Op: schemas.OpEq, Value: schemas.StringValue("NYC")}
	matched := a.LoadV(ctx, "person", &attr)
	require.Len(t, matched, 1)

	noMatch := a.LoadV(ctx, "person", &schemas.PatternAttr{Key: "city", Op: schemas.OpEq, Value: schemas.StringValue("LA")})
	assert.Empty(t, noMatch)

	workEdges := a.LoadE(ctx, "works_at", nil)
	require.Len(t, workEdges, 1)
	assert.Equal(t, schemas.Eid("e1"), workEdges[0].Eid)

	fromAlice := a.LoadEWithSrc(ctx, "alice", "works_at", nil)
	require.Len(t, fromAlice, 1)

	filtered := a.LoadEWithSrcAndDstFilter(ctx, "alice", "works_at", nil, "company", nil)
	require.Len(t, filtered, 1)

	wrongDstLabel := a.LoadEWithSrcAndDstFilter(ctx, "alice", "works_at", nil, "person", nil)
	assert.Empty(t, wrongDstLabel)
}

func TestSQLiteAdapterLoadEWithDstAndSrcFilter(t *testing.T) {
	a := newTestSQLiteAdapter(t)
	ctx := context.Background()

	vertices := []schemas.DataVertex{
		{Vid: "alice", Label: "person"},
		{Vid: "acme", Label: "company"},
	}
	edges := []schemas.DataEdge{
		{Eid: "e1", SrcVid: "alice", DstVid: "acme", Label: "works_at"},
	}
	require.NoError(t, a.LoadFixture(ctx, vertices, edges))

	matched := a.LoadEWithDstAndSrcFilter(ctx, "acme", "works_at", nil, "person", nil)
	require.Len(t, matched, 1)
	assert.Equal(t, schemas.Eid("e1"), matched[0].Eid)

	wrongSrcLabel := a.LoadEWithDstAndSrcFilter(ctx, "acme", "works_at", nil, "company", nil)
	assert.Empty(t, wrongSrcLabel)
}
