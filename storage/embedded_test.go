package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/graphmatch/schemas"
)

func newTestEmbeddedAdapter(t *testing.T) *EmbeddedAdapter {
	t.Helper()
	adapter, err := NewEmbeddedAdapter(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func seedPeopleAndCompany(t *testing.T, a *EmbeddedAdapter) {
	t.Helper()
	vertices := []schemas.DataVertex{
		{Vid: "alice", Label: "person", Attrs: map[string]schemas.AttrValue{"city": schemas.StringValue("NYC")}},
		{Vid: "bob", Label: "person", Attrs: map[string]schemas.AttrValue{"city": schemas.StringValue("LA")}},
		{Vid: "acme", Label: "company"},
	}
	edges := []schemas.DataEdge{
		{Eid: "e1", SrcVid: "alice", DstVid: "bob", Label: "friend"},
		{Eid: "e2", SrcVid: "alice", DstVid: "acme", Label: "works_at"},
	}
	require.NoError(t, a.LoadFixture(vertices, edges))
}

func TestEmbeddedAdapterGetV(t *testing.T) {
	a := newTestEmbeddedAdapter(t)
	seedPeopleAndCompany(t, a)

	alice, ok := a.GetV(context.Background(), "alice")
	require.True(t, ok)
	assert.Equal(t, schemas.Label("person"), alice.Label)

	_, ok = a.GetV(context.Background(), "nobody")
	assert.False(t, ok)
}

func TestEmbeddedAdapterLoadVByLabel(t *testing.T) {
	a := newTestEmbeddedAdapter(t)
	seedPeopleAndCompany(t, a)

	people := a.LoadV(context.Background(), "person", nil)
	assert.Len(t, people, 2)

	companies := a.LoadV(context.Background(), "company", nil)
	require.Len(t, companies, 1)
	assert.Equal(t, schemas.Vid("acme"), companies[0].Vid)
}

func TestEmbeddedAdapterLoadVFiltersByAttr(t *testing.T) {
	a := newTestEmbeddedAdapter(t)
	seedPeopleAndCompany(t, a)

	attr := schemas.PatternAttr{Key: "city", Op: schemas.OpEq, Value: schemas.StringValue("NYC")}
	matched := a.LoadV(context.Background(), "person", &attr)
	require.Len(t, matched, 1)
	assert.Equal(t, schemas.Vid("alice"), matched[0].Vid)
}

func TestEmbeddedAdapterLoadEByLabel(t *testing.T) {
	a := newTestEmbeddedAdapter(t)
	seedPeopleAndCompany(t, a)

	edges := a.LoadE(context.Background(), "friend", nil)
	require.Len(t, edges, 1)
	assert.Equal(t, schemas.Eid("e1"), edges[0].Eid)
}

func TestEmbeddedAdapterLoadEWithSrcAndDst(t *testing.T) {
	a := newTestEmbeddedAdapter(t)
	seedPeopleAndCompany(t, a)

	fromAlice := a.LoadEWithSrc(context.Background(), "alice", "friend", nil)
	require.Len(t, fromAlice, 1)
	assert.Equal(t, schemas.Vid("bob"), fromAlice[0].DstVid)

	toBob := a.LoadEWithDst(context.Background(), "bob", "friend", nil)
	require.Len(t, toBob, 1)
	assert.Equal(t, schemas.Vid("alice"), toBob[0].SrcVid)

	assert.Empty(t, a.LoadEWithSrc(context.Background(), "alice", "enemy_of", nil))
}

func TestEmbeddedAdapterLoadEWithSrcAndDstFilter(t *testing.T) {
	a := newTestEmbeddedAdapter(t)
	seedPeopleAndCompany(t, a)

	matched := a.LoadEWithSrcAndDstFilter(context.Background(), "alice", "works_at", nil, "company", nil)
	require.Len(t, matched, 1)
	assert.Equal(t, schemas.Eid("e2"), matched[0].Eid)

	wrongDstLabel := a.LoadEWithSrcAndDstFilter(context.Background(), "alice", "works_at", nil, "person", nil)
	assert.Empty(t, wrongDstLabel)
}

func TestEmbeddedAdapterLoadEWithDstAndSrcFilter(t *testing.T) {
	a := newTestEmbeddedAdapter(t)
	seedPeopleAndCompany(t, a)

	matched := a.LoadEWithDstAndSrcFilter(context.Background(), "acme", "works_at", nil, "person", nil)
	require.Len(t, matched, 1)
	assert.Equal(t, schemas.Eid("e2"), matched[0].Eid)

	wrongSrcLabel := a.LoadEWithDstAndSrcFilter(context.Background(), "acme", "works_at", nil, "company", nil)
	assert.Empty(t, wrongSrcLabel)
}
