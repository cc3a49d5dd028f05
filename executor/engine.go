package executor

import (
	"context"
	"fmt"

	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/schemas"
	"github.com/wbrown/graphmatch/storage"
)

// Options configures an ExecEngine.
type Options struct {
	// GetAdjStrategy picks GetAdjOperator's fan-out shape.
	GetAdjStrategy GetAdjStrategy
	// Workers bounds per-operator concurrency; <= 0 uses NumCPU.
	Workers int
}

// ExecEngine runs a compiled plan's instruction stream to completion
// and performs the final Cartesian merge across every F-bucket group
// Report collected (spec §4.4.6). Grounded on
// original_source/src/executor/mod.rs's ExecEngine (build_from_json,
// exec_without_final_merge, exec).
type ExecEngine struct {
	adapter storage.Adapter
	pool    *WorkerPool

	initOp      *InitOperator
	getAdjOp    *GetAdjOperator
	intersectOp *IntersectOperator
	foreachOp   *ForeachOperator
	reportOp    *ReportOperator
}

func NewExecEngine(adapter storage.Adapter, opts Options) *ExecEngine {
	pool := NewWorkerPool(opts.Workers)
	return &ExecEngine{
		adapter:     adapter,
		pool:        pool,
		initOp:      NewInitOperator(adapter, pool),
		getAdjOp:    NewGetAdjOperator(adapter, opts.GetAdjStrategy, pool),
		intersectOp: NewIntersectOperator(adapter, pool),
		foreachOp:   NewForeachOperator(),
		reportOp:    NewReportOperator(),
	}
}

// ExecWithoutFinalMerge runs every instruction in plan in order and
// returns the grouped, unmerged partial matches Report collected,
// without the final pairwise-union/exact-count filter exec performs.
// Exposed mainly for tests.
func (e *ExecEngine) ExecWithoutFinalMerge(ctx context.Context, plan schemas.PlanData) ([][]*gctx.Graph, error) {
	mctx := gctx.New(plan)

	for _, instr := range plan.Instructions {
		if err := e.executeOne(ctx, mctx, instr); err != nil {
			return nil, err
		}
	}

	return mctx.DrainGroupedPartialMatches(), nil
}

func (e *ExecEngine) executeOne(ctx context.Context, mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	switch instr.Type {
	case schemas.InstrInit:
		return e.initOp.Execute(ctx, mctx, instr)
	case schemas.InstrGetAdj:
		return e.getAdjOp.Execute(ctx, mctx, instr)
	case schemas.InstrIntersect:
		return e.intersectOp.Execute(ctx, mctx, instr)
	case schemas.InstrForeach:
		return e.foreachOp.Execute(mctx, instr)
	case schemas.InstrReport:
		return e.reportOp.Execute(mctx)
	case schemas.InstrTCache:
		return fmt.Errorf("%w: t_cache is a reserved, unimplemented opcode", schemas.ErrInvalidPlan)
	default:
		return fmt.Errorf("%w: unknown instruction type %v", schemas.ErrInvalidPlan, instr.Type)
	}
}

// Exec runs plan and folds each combination of one unmerged group per
// pattern-vid sequence into a single DynGraph via repeated Union,
// keeping only combinations whose merged pattern-vid/eid counts are
// exactly 1 per pattern element (spec §4.4.6's completeness
// invariant). Empty groups are left out of the product; a combination
// that then leaves some pattern element unmatched fails the exact-count
// check and is dropped.
func (e *ExecEngine) Exec(ctx context.Context, plan schemas.PlanData) ([]*gctx.Graph, error) {
	unmerged, err := e.ExecWithoutFinalMerge(ctx, plan)
	if err != nil {
		return nil, err
	}

	var nonEmpty [][]*gctx.Graph
	for _, group := range unmerged {
		if len(group) > 0 {
			nonEmpty = append(nonEmpty, group)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, nil
	}

	combinations := cartesianProduct(nonEmpty)

	results := make([]*gctx.Graph, 0, len(combinations))
	for _, combo := range combinations {
		merged := combo[0].Clone()
		for _, next := range combo[1:] {
			merged.UnionAssign(next)
		}
		if matchesExactPattern(merged, plan.PatternVs, plan.PatternEs) {
			results = append(results, merged)
		}
	}
	return results, nil
}

func matchesExactPattern(g *gctx.Graph, patternVs map[schemas.Vid]schemas.PatternVertex, patternEs map[schemas.Eid]schemas.PatternEdge) bool {
	vCounts := g.VPatternCounts()
	if len(vCounts) != len(patternVs) {
		return false
	}
	for vPat := range patternVs {
		if vCounts[vPat] != 1 {
			return false
		}
	}

	eCounts := g.EPatternCounts()
	if len(eCounts) != len(patternEs) {
		return false
	}
	for ePat := range patternEs {
		if eCounts[ePat] != 1 {
			return false
		}
	}
	return true
}

// cartesianProduct enumerates every combination choosing one element
// from each group, in group order.
func cartesianProduct(groups [][]*gctx.Graph) [][]*gctx.Graph {
	result := [][]*gctx.Graph{{}}
	for _, group := range groups {
		var next [][]*gctx.Graph
		for _, prefix := range result {
			for _, g := range group {
				combo := make([]*gctx.Graph, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				combo = append(combo, g)
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}
