package executor

import (
	"context"
	"fmt"

	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/graph"
	"github.com/wbrown/graphmatch/schemas"
	"github.com/wbrown/graphmatch/storage"
)

// IntersectOperator runs one of the three compiled Intersect shapes
// (spec §4.4.3): Vi ∩ Ax -> Cy (single_op on a GetAdj result), the
// multi-op A1 ∩ ... ∩ An -> Tx pairwise-join step, and Vi ∩ Tx -> Cy
// (single_op on a multi-op result). Grounded on
// original_source/src/executor/instr_ops/intersect.rs +
// matching_ctx/buckets_impl/{c_bucket_impl,t_bucket_impl}.rs.
type IntersectOperator struct {
	Adapter storage.Adapter
	Pool    *WorkerPool
}

func NewIntersectOperator(adapter storage.Adapter, pool *WorkerPool) *IntersectOperator {
	return &IntersectOperator{Adapter: adapter, Pool: pool}
}

func (o *IntersectOperator) Execute(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	if instr.IsSingleOp() {
		prefix, _, err := schemas.SplitVar(*instr.SingleOp)
		if err != nil {
			return fmt.Errorf("%w: %s", schemas.ErrInvalidPlan, err)
		}
		switch prefix {
		case schemas.PrefixDbQueryTarget:
			return o.withAdjSet(ctx, mctx, instr)
		case schemas.PrefixIntersectTarget:
			return o.withTempIntersected(ctx, mctx, instr)
		default:
			return fmt.Errorf("%w: intersect single_op has unexpected prefix %q", schemas.ErrInvalidPlan, prefix)
		}
	}
	return o.withMultiAdjSet(ctx, mctx, instr)
}

func (o *IntersectOperator) loadVertices(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) ([]schemas.DataVertex, schemas.Vid, error) {
	patternV, err := mctx.GetPatternV(instr.Vid)
	if err != nil {
		return nil, "", err
	}
	return o.Adapter.LoadV(ctx, patternV.Label, patternV.Attr), patternV.Vid, nil
}

// withAdjSet implements Vi ∩ Ax -> Cy.
func (o *IntersectOperator) withAdjSet(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	loadedVs, patVid, err := o.loadVertices(ctx, mctx, instr)
	if err != nil {
		return err
	}

	aGroup, err := mctx.PopGroupByPatFromABlock(*instr.SingleOp, instr.Vid)
	if err != nil {
		return err
	}

	cBucket := buildCBucketFromGroup(aGroup, loadedVs, patVid)
	return mctx.UpdateCBlock(instr.TargetVar, cBucket)
}

// withTempIntersected implements Vi ∩ Tx -> Cy.
func (o *IntersectOperator) withTempIntersected(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	loadedVs, patVid, err := o.loadVertices(ctx, mctx, instr)
	if err != nil {
		return err
	}

	tBucket, err := mctx.PopFromTBlock(*instr.SingleOp)
	if err != nil {
		return err
	}

	cBucket := buildCBucketFromGroup(tBucket.ExpandingGraphs, loadedVs, patVid)
	return mctx.UpdateCBlock(instr.TargetVar, cBucket)
}

// withMultiAdjSet implements A1 ∩ ... ∩ An -> Tx via repeated pairwise
// expansion joins, folding left to right.
func (o *IntersectOperator) withMultiAdjSet(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	var aGroups [][]*gctx.Expand
	for _, op := range instr.MultiOps {
		group, err := mctx.PopGroupByPatFromABlock(op, instr.Vid)
		if err != nil {
			continue
		}
		aGroups = append(aGroups, group)
	}
	if len(aGroups) < 2 {
		return nil
	}

	merged, err := o.pairwiseExpandAll(ctx, aGroups[0], aGroups[1])
	if err != nil {
		return err
	}
	for _, next := range aGroups[2:] {
		merged, err = o.pairwiseExpandAll(ctx, merged, next)
		if err != nil {
			return err
		}
	}

	return mctx.UpdateTBlock(instr.TargetVar, &gctx.TBucket{TargetPatVid: instr.Vid, ExpandingGraphs: merged})
}

// pairwiseExpandAll runs graph.PairwiseExpansionJoin over every
// (left, right) pair and flattens the results, bounded by the worker
// pool (spec §4.4.6, fan-out grounded on
// matching_ctx/buckets_impl/t_bucket_impl.rs's expand_edges_of_two).
// Below the chunking threshold this partitions one task per left
// item; at or above it, left is pre-split into chunks so the number of
// goroutines doesn't scale past the pool's thread cap (spec §5).
func (o *IntersectOperator) pairwiseExpandAll(ctx context.Context, left, right []*gctx.Expand) ([]*gctx.Expand, error) {
	if len(left) == 0 || len(right) == 0 {
		return nil, nil
	}

	joinOne := func(l *gctx.Expand) []*gctx.Expand {
		var out []*gctx.Expand
		for _, r := range right {
			out = append(out, graph.PairwiseExpansionJoin(l, r)...)
		}
		return out
	}

	dataSize := len(left)
	if dataSize < chunkedParallelThreshold {
		perLeft, err := Run(ctx, o.Pool, left, func(_ context.Context, l *gctx.Expand) ([]*gctx.Expand, error) {
			return joinOne(l), nil
		})
		if err != nil {
			return nil, err
		}
		var merged []*gctx.Expand
		for _, group := range perLeft {
			merged = append(merged, group...)
		}
		return merged, nil
	}

	return RunBatched(ctx, o.Pool, left, chunkSize(dataSize, o.Pool.workerCount), func(_ context.Context, batch []*gctx.Expand) ([]*gctx.Expand, error) {
		var out []*gctx.Expand
		for _, l := range batch {
			out = append(out, joinOne(l)...)
		}
		return out, nil
	})
}

func buildCBucketFromGroup(group []*gctx.Expand, loadedVs []schemas.DataVertex, patVid schemas.Vid) *gctx.CBucket {
	c := gctx.NewCBucket()
	candidates := make([]graph.CandidateTargetVertex[schemas.DataVertex], len(loadedVs))
	for i, v := range loadedVs {
		candidates[i] = graph.CandidateTargetVertex[schemas.DataVertex]{Vertex: v, PatternVid: patVid}
	}

	for idx, expanding := range group {
		installed := expanding.UpdateValidTargetVertices(candidates)
		c.AllExpanded = append(c.AllExpanded, expanding)
		if len(installed) > 0 {
			c.ExpandedWithFrontiers[idx] = append(c.ExpandedWithFrontiers[idx], graph.NewTargetVids[schemas.DataVertex](installed)...)
		}
	}
	return c
}
