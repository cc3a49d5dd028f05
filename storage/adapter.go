// Package storage defines the StorageAdapter contract (spec §6) and
// ships three concrete backends plus the LRU cache wrapper spec.md
// describes but leaves out of scope. All methods are safe to call
// concurrently; storage failures are never returned as hard errors to
// the execution engine — see the package doc on Load* below — because
// spec §4.6/§7 treats a StorageFailure as "surfaced as empty result
// lists", not a fatal condition.
package storage

import (
	"context"

	"github.com/wbrown/graphmatch/schemas"
)

// Adapter is the contract an implementer must satisfy (spec §6). Every
// Load* method returns only vertices/edges that already satisfy the
// given label and predicate; callers never re-filter.
//
// Storage errors (I/O, parse, network) are logged by the adapter and
// turned into an empty result, per spec §4.6 — GetV is the one
// exception in shape only: it reports ok == false both for "no such
// vertex" and for a broken adapter, never a wrapped error, keeping
// error returns reserved for ConfigError-class failures at
// construction time.
type Adapter interface {
	// GetV fetches a single vertex by id. ok is false if it doesn't
	// exist or the backend failed to answer.
	GetV(ctx context.Context, vid schemas.Vid) (v schemas.DataVertex, ok bool)

	// LoadV returns every vertex with the given label satisfying attr
	// (attr may be nil for "no predicate").
	LoadV(ctx context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataVertex

	// LoadEWithSrcAndDstFilter returns edges out of srcVid labelled
	// eLabel/eAttr whose destination satisfies dstLabel/dstAttr.
	LoadEWithSrcAndDstFilter(ctx context.Context, srcVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, dstLabel schemas.Label, dstAttr *schemas.PatternAttr) []schemas.DataEdge

	// LoadEWithDstAndSrcFilter is the dst-symmetric variant: edges into
	// dstVid whose source satisfies srcLabel/srcAttr.
	LoadEWithDstAndSrcFilter(ctx context.Context, dstVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, srcLabel schemas.Label, srcAttr *schemas.PatternAttr) []schemas.DataEdge

	// LoadE, LoadEWithSrc and LoadEWithDst serve narrower plans that
	// don't need the opposite endpoint's label/predicate.
	LoadE(ctx context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge
	LoadEWithSrc(ctx context.Context, srcVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge
	LoadEWithDst(ctx context.Context, dstVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge

	// Close releases backend resources.
	Close() error
}

// matchesAttr reports whether v's data attribute satisfies attr (nil
// attr always matches).
func matchesAttr(attrs map[string]schemas.AttrValue, attr *schemas.PatternAttr) bool {
	if attr == nil {
		return true
	}
	v, ok := attrs[attr.Key]
	return attr.IsDataAttrSatisfied(v, ok)
}
