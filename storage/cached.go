package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wbrown/graphmatch/schemas"
)

const defaultCacheSize = 256

// cacheKey mirrors original_source's CacheKey enum as a single
// comparable struct (Go map keys must be comparable, so one shape
// serves every call), with kind distinguishing vertex/by-label/by-src/
// by-dst lookups the way the four Rust variants did.
type cacheKey struct {
	kind     string
	id       schemas.Vid
	label    schemas.Label
	attr     cachedAttr
	oppLabel schemas.Label
	oppAttr  cachedAttr
}

// cachedAttr is a comparable projection of *PatternAttr (PatternAttr
// itself is fine as a map key component once reduced to plain fields);
// hasAttr distinguishes "no predicate" from the zero value.
type cachedAttr struct {
	hasAttr bool
	key     string
	op      schemas.Op
	value   string
}

func cacheAttrOf(attr *schemas.PatternAttr) cachedAttr {
	if attr == nil {
		return cachedAttr{}
	}
	return cachedAttr{hasAttr: true, key: attr.Key, op: attr.Op, value: attr.Value.String2()}
}

// CachedAdapter wraps another Adapter with three LRU caches (vertex,
// vertices-by-label, edges), adapted from original_source's
// storage/cached.rs — same three-cache split, same no-cache-for-LoadE
// policy since that query is unbounded.
type CachedAdapter struct {
	inner    Adapter
	vertex   *lru.Cache[cacheKey, vertexCacheEntry]
	vertices *lru.Cache[cacheKey, []schemas.DataVertex]
	edges    *lru.Cache[cacheKey, []schemas.DataEdge]
}

type vertexCacheEntry struct {
	v  schemas.DataVertex
	ok bool
}

// NewCachedAdapter wraps inner with an LRU cache of the given size
// (defaultCacheSize if size <= 0).
func NewCachedAdapter(inner Adapter, size int) (*CachedAdapter, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	vertexCache, err := lru.New[cacheKey, vertexCacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("%w: building vertex cache: %v", schemas.ErrConfig, err)
	}
	verticesCache, err := lru.New[cacheKey, []schemas.DataVertex](size)
	if err != nil {
		return nil, fmt.Errorf("%w: building vertices cache: %v", schemas.ErrConfig, err)
	}
	edgesCache, err := lru.New[cacheKey, []schemas.DataEdge](size)
	if err != nil {
		return nil, fmt.Errorf("%w: building edges cache: %v", schemas.ErrConfig, err)
	}
	return &CachedAdapter{inner: inner, vertex: vertexCache, vertices: verticesCache, edges: edgesCache}, nil
}

func (a *CachedAdapter) Close() error { return a.inner.Close() }

// CacheClear empties all three caches, the Go counterpart of the
// teacher's cache_clear.
func (a *CachedAdapter) CacheClear() {
	a.vertex.Purge()
	a.vertices.Purge()
	a.edges.Purge()
}

func (a *CachedAdapter) GetV(ctx context.Context, vid schemas.Vid) (schemas.DataVertex, bool) {
	key := cacheKey{kind: "vertex", id: vid}
	if entry, ok := a.vertex.Get(key); ok {
		return entry.v, entry.ok
	}
	v, ok := a.inner.GetV(ctx, vid)
	a.vertex.Add(key, vertexCacheEntry{v: v, ok: ok})
	return v, ok
}

func (a *CachedAdapter) LoadV(ctx context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataVertex {
	key := cacheKey{kind: "verticesByLabel", label: label, attr: cacheAttrOf(attr)}
	if result, ok := a.vertices.Get(key); ok {
		return result
	}
	result := a.inner.LoadV(ctx, label, attr)
	a.vertices.Add(key, result)
	return result
}

// LoadE is deliberately never cached: a broad label-only scan can
// return the whole edge set, and caching it risks unbounded memory
// growth for one rarely-repeated call.
func (a *CachedAdapter) LoadE(ctx context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	return a.inner.LoadE(ctx, label, attr)
}

func (a *CachedAdapter) LoadEWithSrc(ctx context.Context, srcVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	key := cacheKey{kind: "edgesBySrc", id: srcVid, label: label, attr: cacheAttrOf(attr)}
	if result, ok := a.edges.Get(key); ok {
		return result
	}
	result := a.inner.LoadEWithSrc(ctx, srcVid, label, attr)
	a.edges.Add(key, result)
	return result
}

func (a *CachedAdapter) LoadEWithDst(ctx context.Context, dstVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	key := cacheKey{kind: "edgesByDst", id: dstVid, label: label, attr: cacheAttrOf(attr)}
	if result, ok := a.edges.Get(key); ok {
		return result
	}
	result := a.inner.LoadEWithDst(ctx, dstVid, label, attr)
	a.edges.Add(key, result)
	return result
}

// LoadEWithSrcAndDstFilter/LoadEWithDstAndSrcFilter key on both
// endpoints' label/attr; the teacher's cache had no two-sided variant
// to ground this on (its StorageAdapter trait lacked these methods),
// so this extends the one-sided key shape above with the opposite
// endpoint's label/attr rather than introducing a second cache.
func (a *CachedAdapter) LoadEWithSrcAndDstFilter(ctx context.Context, srcVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, dstLabel schemas.Label, dstAttr *schemas.PatternAttr) []schemas.DataEdge {
	key := cacheKey{kind: "edgesSrcDst", id: srcVid, label: eLabel, attr: cacheAttrOf(eAttr), oppLabel: dstLabel, oppAttr: cacheAttrOf(dstAttr)}
	if result, ok := a.edges.Get(key); ok {
		return result
	}
	result := a.inner.LoadEWithSrcAndDstFilter(ctx, srcVid, eLabel, eAttr, dstLabel, dstAttr)
	a.edges.Add(key, result)
	return result
}

func (a *CachedAdapter) LoadEWithDstAndSrcFilter(ctx context.Context, dstVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, srcLabel schemas.Label, srcAttr *schemas.PatternAttr) []schemas.DataEdge {
	key := cacheKey{kind: "edgesDstSrc", id: dstVid, label: eLabel, attr: cacheAttrOf(eAttr), oppLabel: srcLabel, oppAttr: cacheAttrOf(srcAttr)}
	if result, ok := a.edges.Get(key); ok {
		return result
	}
	result := a.inner.LoadEWithDstAndSrcFilter(ctx, dstVid, eLabel, eAttr, srcLabel, srcAttr)
	a.edges.Add(key, result)
	return result
}
