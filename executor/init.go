package executor

import (
	"context"
	"fmt"

	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/graph"
	"github.com/wbrown/graphmatch/schemas"
	"github.com/wbrown/graphmatch/storage"
)

// InitOperator loads every data vertex satisfying a pattern vertex's
// label/attr and seeds the target F bucket with one singleton DynGraph
// per match, frontier = the vertex's own vid (spec §4.4.1). Grounded on
// original_source/src/executor/instr_ops/init.rs.
type InitOperator struct {
	Adapter storage.Adapter
	Pool    *WorkerPool
}

func NewInitOperator(adapter storage.Adapter, pool *WorkerPool) *InitOperator {
	return &InitOperator{Adapter: adapter, Pool: pool}
}

type initSeed struct {
	matched     *gctx.Graph
	frontierVid schemas.Vid
}

func (o *InitOperator) Execute(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	patternV, err := mctx.GetPatternV(instr.Vid)
	if err != nil {
		return err
	}

	matchedVs := o.Adapter.LoadV(ctx, patternV.Label, patternV.Attr)

	if err := mctx.InitFBlock(instr.TargetVar); err != nil {
		return err
	}

	seeds, err := Run(ctx, o.Pool, matchedVs, func(_ context.Context, v schemas.DataVertex) (initSeed, error) {
		matched := graph.New[schemas.DataVertex, schemas.DataEdge]()
		matched.UpdateV(v, patternV.Vid)
		return initSeed{matched: matched, frontierVid: v.Vid}, nil
	})
	if err != nil {
		return fmt.Errorf("init %s: %w", instr.Vid, err)
	}

	for _, seed := range seeds {
		if err := mctx.AppendToFBlock(instr.TargetVar, seed.matched, seed.frontierVid); err != nil {
			return err
		}
	}
	return nil
}
