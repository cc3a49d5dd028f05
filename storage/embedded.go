package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/wbrown/graphmatch/schemas"
)

// EmbeddedAdapter is a StorageAdapter backed by an embedded BadgerDB
// instance. Grounded on the teacher's datalog/storage/badger_store.go
// (same open-options shape), adapted from EAVT-datom indices to a
// label-prefixed vertex/edge key layout with secondary indices for
// src/dst/label lookups.
//
// Non-goal compliance: the only writer path is LoadFixture, used to
// seed test/demo data — there are no persistent query-time writes.
type EmbeddedAdapter struct {
	db     *badger.DB
	logger *log.Logger
}

// EmbeddedOption configures EmbeddedAdapter construction.
type EmbeddedOption func(*badger.Options)

// WithPath points the adapter at an on-disk directory instead of the
// default in-memory mode.
func WithPath(path string) EmbeddedOption {
	return func(o *badger.Options) {
		o.Dir = path
		o.ValueDir = path
		o.InMemory = false
	}
}

// NewEmbeddedAdapter opens a Badger-backed adapter. With no options it
// runs fully in memory, matching the teacher's "Disable BadgerDB logs
// for now" posture for local/demo/test use.
func NewEmbeddedAdapter(logger *log.Logger, opts ...EmbeddedOption) (*EmbeddedAdapter, error) {
	options := badger.DefaultOptions("").WithInMemory(true)
	options.Logger = nil
	for _, opt := range opts {
		opt(&options)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("%w: opening badger: %v", schemas.ErrConfig, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EmbeddedAdapter{db: db, logger: logger}, nil
}

func (a *EmbeddedAdapter) Close() error { return a.db.Close() }

// Key layout.
func vertexKey(vid schemas.Vid) []byte          { return []byte("vertex:" + vid) }
func vertexLabelIdxKey(label schemas.Label, vid schemas.Vid) []byte {
	return []byte("vidx:label:" + label + ":" + vid)
}
func edgeKey(eid schemas.Eid) []byte { return []byte("edge:" + eid) }
func edgeLabelIdxKey(label schemas.Label, eid schemas.Eid) []byte {
	return []byte("eidx:label:" + label + ":" + eid)
}
func edgeSrcIdxKey(src schemas.Vid, eid schemas.Eid) []byte {
	return []byte("eidx:src:" + src + ":" + eid)
}
func edgeDstIdxKey(dst schemas.Vid, eid schemas.Eid) []byte {
	return []byte("eidx:dst:" + dst + ":" + eid)
}

// LoadFixture writes vertices and edges directly, for test/demo seeding
// (the non-goal-compliant write path).
func (a *EmbeddedAdapter) LoadFixture(vertices []schemas.DataVertex, edges []schemas.DataEdge) error {
	return a.db.Update(func(txn *badger.Txn) error {
		for _, v := range vertices {
			payload, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encoding vertex %s: %w", v.Vid, err)
			}
			if err := txn.Set(vertexKey(v.Vid), payload); err != nil {
				return err
			}
			if err := txn.Set(vertexLabelIdxKey(v.Label, v.Vid), nil); err != nil {
				return err
			}
		}
		for _, e := range edges {
			payload, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encoding edge %s: %w", e.Eid, err)
			}
			if err := txn.Set(edgeKey(e.Eid), payload); err != nil {
				return err
			}
			if err := txn.Set(edgeLabelIdxKey(e.Label, e.Eid), nil); err != nil {
				return err
			}
			if err := txn.Set(edgeSrcIdxKey(e.SrcVid, e.Eid), nil); err != nil {
				return err
			}
			if err := txn.Set(edgeDstIdxKey(e.DstVid, e.Eid), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *EmbeddedAdapter) getVertex(txn *badger.Txn, vid schemas.Vid) (schemas.DataVertex, bool) {
	item, err := txn.Get(vertexKey(vid))
	if err != nil {
		return schemas.DataVertex{}, false
	}
	var v schemas.DataVertex
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &v) }); err != nil {
		a.logger.Printf("graphmatch/storage: corrupt vertex %s: %v", vid, err)
		return schemas.DataVertex{}, false
	}
	return v, true
}

func (a *EmbeddedAdapter) getEdge(txn *badger.Txn, eid schemas.Eid) (schemas.DataEdge, bool) {
	item, err := txn.Get(edgeKey(eid))
	if err != nil {
		return schemas.DataEdge{}, false
	}
	var e schemas.DataEdge
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &e) }); err != nil {
		a.logger.Printf("graphmatch/storage: corrupt edge %s: %v", eid, err)
		return schemas.DataEdge{}, false
	}
	return e, true
}

func (a *EmbeddedAdapter) GetV(_ context.Context, vid schemas.Vid) (schemas.DataVertex, bool) {
	var v schemas.DataVertex
	var ok bool
	err := a.db.View(func(txn *badger.Txn) error {
		v, ok = a.getVertex(txn, vid)
		return nil
	})
	if err != nil {
		a.logger.Printf("graphmatch/storage: GetV(%s): %v", vid, err)
		return schemas.DataVertex{}, false
	}
	return v, ok
}

func (a *EmbeddedAdapter) LoadV(_ context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataVertex {
	var out []schemas.DataVertex
	prefix := []byte("vidx:label:" + label + ":")
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			vid := string(bytes.TrimPrefix(it.Item().Key(), prefix))
			v, ok := a.getVertex(txn, vid)
			if !ok {
				continue
			}
			if matchesAttr(v.Attrs, attr) {
				out = append(out, v)
			}
		}
		return nil
	})
	if err != nil {
		a.logger.Printf("graphmatch/storage: LoadV(%s): %v", label, err)
		return nil
	}
	return out
}

func (a *EmbeddedAdapter) loadEdgesByIndexPrefix(prefix []byte, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	var out []schemas.DataEdge
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			eid := string(bytes.TrimPrefix(it.Item().Key(), prefix))
			e, ok := a.getEdge(txn, eid)
			if !ok || e.Label != label {
				continue
			}
			if matchesAttr(e.Attrs, attr) {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		a.logger.Printf("graphmatch/storage: load edges by prefix: %v", err)
		return nil
	}
	return out
}

func (a *EmbeddedAdapter) LoadE(_ context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	return a.loadEdgesByIndexPrefix([]byte("eidx:label:"+label+":"), label, attr)
}

func (a *EmbeddedAdapter) LoadEWithSrc(_ context.Context, srcVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	return a.loadEdgesByIndexPrefix([]byte("eidx:src:"+srcVid+":"), label, attr)
}

func (a *EmbeddedAdapter) LoadEWithDst(_ context.Context, dstVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	return a.loadEdgesByIndexPrefix([]byte("eidx:dst:"+dstVid+":"), label, attr)
}

func (a *EmbeddedAdapter) LoadEWithSrcAndDstFilter(ctx context.Context, srcVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, dstLabel schemas.Label, dstAttr *schemas.PatternAttr) []schemas.DataEdge {
	candidates := a.LoadEWithSrc(ctx, srcVid, eLabel, eAttr)
	out := make([]schemas.DataEdge, 0, len(candidates))
	for _, e := range candidates {
		dst, ok := a.GetV(ctx, e.DstVid)
		if !ok || dst.Label != dstLabel {
			continue
		}
		if matchesAttr(dst.Attrs, dstAttr) {
			out = append(out, e)
		}
	}
	return out
}

func (a *EmbeddedAdapter) LoadEWithDstAndSrcFilter(ctx context.Context, dstVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, srcLabel schemas.Label, srcAttr *schemas.PatternAttr) []schemas.DataEdge {
	candidates := a.LoadEWithDst(ctx, dstVid, eLabel, eAttr)
	out := make([]schemas.DataEdge, 0, len(candidates))
	for _, e := range candidates {
		src, ok := a.GetV(ctx, e.SrcVid)
		if !ok || src.Label != srcLabel {
			continue
		}
		if matchesAttr(src.Attrs, srcAttr) {
			out = append(out, e)
		}
	}
	return out
}
