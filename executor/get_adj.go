package executor

import (
	"context"
	"fmt"
	"sync"

	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/graph"
	"github.com/wbrown/graphmatch/schemas"
	"github.com/wbrown/graphmatch/storage"
)

// GetAdjStrategy picks how GetAdjOperator fans out across a bucket's
// matched graphs: one goroutine per matched graph (Serial, named for
// the teacher's per-item job-channel dispatch, not for the lack of
// concurrency) or one goroutine per fixed-size batch of matched graphs
// (Batched), mirroring original_source's incremental_load_new_edges
// vs. batched_incremental_load_new_edges (spec §9 Open Question).
type GetAdjStrategy int

const (
	GetAdjSerial GetAdjStrategy = iota
	GetAdjBatched
)

// getAdjBatchSize matches original_source/src/matching_ctx/buckets_impl/a_bucket_impl.rs's
// BATCH_SIZE constant.
const getAdjBatchSize = 2

// GetAdjOperator pops an F bucket, loads every adjacent edge of its
// frontier vertices along the instruction's expand_eid_list, and groups
// the resulting ExpandGraphs by which pattern vertex they extend into
// (spec §4.4.2). Grounded on
// original_source/src/executor/instr_ops/get_adj.rs +
// matching_ctx/buckets_impl/a_bucket_impl.rs.
type GetAdjOperator struct {
	Adapter  storage.Adapter
	Strategy GetAdjStrategy
	Pool     *WorkerPool
}

func NewGetAdjOperator(adapter storage.Adapter, strategy GetAdjStrategy, pool *WorkerPool) *GetAdjOperator {
	return &GetAdjOperator{Adapter: adapter, Strategy: strategy, Pool: pool}
}

type getAdjEntry struct {
	matched   *gctx.Graph
	frontiers []schemas.Vid
}

// getAdjFound is one (next pattern vid, ExpandGraph) pair produced
// while expanding a single matched graph's frontier.
type getAdjFound struct {
	nextPatVid schemas.Vid
	expanding  *gctx.Expand
}

func (o *GetAdjOperator) Execute(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	if instr.SingleOp == nil {
		return fmt.Errorf("%w: get_adj %s missing single_op", schemas.ErrInvalidPlan, instr.Vid)
	}
	_, currPatVid, err := schemas.SplitVar(*instr.SingleOp)
	if err != nil {
		return fmt.Errorf("%w: %s", schemas.ErrInvalidPlan, err)
	}

	fBucket, err := mctx.PopFromFBlock(*instr.SingleOp)
	if err != nil {
		return err
	}

	patternEs := mctx.FetchPatternEBatch(instr.ExpandEids)
	patternVs := mctx.PatternVs()

	entries := make([]getAdjEntry, 0, len(fBucket.AllMatched))
	for idx, matched := range fBucket.AllMatched {
		entries = append(entries, getAdjEntry{matched: matched, frontiers: fBucket.MatchedWithFrontiers[idx]})
	}

	var found [][]getAdjFound
	var expandedVids map[schemas.Vid]struct{}
	switch o.Strategy {
	case GetAdjBatched:
		found, expandedVids, err = o.runBatched(ctx, entries, currPatVid, patternEs, patternVs)
	default:
		found, expandedVids, err = o.runSerial(ctx, entries, currPatVid, patternEs, patternVs)
	}
	if err != nil {
		return fmt.Errorf("get_adj %s: %w", instr.Vid, err)
	}

	grouped := map[schemas.Vid][]*gctx.Expand{}
	for _, perEntry := range found {
		for _, f := range perEntry {
			grouped[f.nextPatVid] = append(grouped[f.nextPatVid], f.expanding)
		}
	}

	aBucket := gctx.NewABucket(fBucket, currPatVid)
	aBucket.NextPatGroupedExpanding = grouped

	if err := mctx.UpdateABlock(instr.TargetVar, aBucket); err != nil {
		return err
	}
	mctx.UpdateExpandedDataVids(expandedVids)
	return nil
}

func (o *GetAdjOperator) runSerial(ctx context.Context, entries []getAdjEntry, currPatVid schemas.Vid, patternEs []schemas.PatternEdge, patternVs map[schemas.Vid]schemas.PatternVertex) ([][]getAdjFound, map[schemas.Vid]struct{}, error) {
	var mu sync.Mutex
	expanded := map[schemas.Vid]struct{}{}

	results, err := Run(ctx, o.Pool, entries, func(ctx context.Context, e getAdjEntry) ([]getAdjFound, error) {
		found := o.expandEntry(ctx, e, currPatVid, patternEs, patternVs)
		mu.Lock()
		for _, f := range e.frontiers {
			expanded[f] = struct{}{}
		}
		mu.Unlock()
		return found, nil
	})
	return results, expanded, err
}

func (o *GetAdjOperator) runBatched(ctx context.Context, entries []getAdjEntry, currPatVid schemas.Vid, patternEs []schemas.PatternEdge, patternVs map[schemas.Vid]schemas.PatternVertex) ([][]getAdjFound, map[schemas.Vid]struct{}, error) {
	var mu sync.Mutex
	expanded := map[schemas.Vid]struct{}{}

	results, err := RunBatched(ctx, o.Pool, entries, getAdjBatchSize, func(ctx context.Context, batch []getAdjEntry) ([][]getAdjFound, error) {
		out := make([][]getAdjFound, len(batch))
		for i, e := range batch {
			out[i] = o.expandEntry(ctx, e, currPatVid, patternEs, patternVs)
			mu.Lock()
			for _, f := range e.frontiers {
				expanded[f] = struct{}{}
			}
			mu.Unlock()
		}
		return out, nil
	})
	return results, expanded, err
}

// expandEntry expands one matched graph's frontier vertices over
// patternEs, mirroring a_bucket_impl.rs's per-matched-graph task body.
func (o *GetAdjOperator) expandEntry(ctx context.Context, e getAdjEntry, currPatVid schemas.Vid, patternEs []schemas.PatternEdge, patternVs map[schemas.Vid]schemas.PatternVertex) []getAdjFound {
	var out []getAdjFound

	for _, frontierVid := range e.frontiers {
		for _, patE := range patternEs {
			isSrcCurrPat := currPatVid == patE.SrcVid

			var nextPatVid schemas.Vid
			var loaded []schemas.DataEdge
			if isSrcCurrPat {
				nextPatVid = patE.DstVid
				nextV := patternVs[nextPatVid]
				loaded = o.Adapter.LoadEWithSrcAndDstFilter(ctx, frontierVid, patE.Label, patE.Attr, nextV.Label, nextV.Attr)
			} else {
				nextPatVid = patE.SrcVid
				nextV := patternVs[nextPatVid]
				loaded = o.Adapter.LoadEWithDstAndSrcFilter(ctx, frontierVid, patE.Label, patE.Attr, nextV.Label, nextV.Attr)
			}

			var matchedEs []schemas.DataEdge
			for _, de := range loaded {
				if !e.matched.HasEid(de.Eid) {
					matchedEs = append(matchedEs, de)
				}
			}
			if len(matchedEs) == 0 {
				// no edges connect this frontier through patE: this
				// frontier is a dead end, stop trying its other pattern
				// edges (matches a_bucket_impl.rs's `break`).
				break
			}

			nextGrouped := map[schemas.Vid][]schemas.DataEdge{}
			for _, de := range matchedEs {
				next := de.DstVid
				if !isSrcCurrPat {
					next = de.SrcVid
				}
				nextGrouped[next] = append(nextGrouped[next], de)
			}

			for _, edges := range nextGrouped {
				expanding := graph.FromDynGraph(e.matched)
				patternMap := make(map[schemas.Eid]schemas.Eid, len(edges))
				for _, de := range edges {
					patternMap[de.Eid] = patE.Eid
				}
				expanding.UpdateValidDanglingEdges(edges, patternMap)
				out = append(out, getAdjFound{nextPatVid: nextPatVid, expanding: expanding})
			}
		}
	}

	return out
}
