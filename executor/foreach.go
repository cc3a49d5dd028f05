package executor

import (
	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/schemas"
)

// ForeachOperator commits a C bucket's validated ExpandGraphs into real
// DynGraphs, seeding a fresh F bucket whose frontier is each graph's
// newly-installed target vertices (spec §4.4.4). A missing C bucket
// (the pattern vertex had no surviving candidates) yields an empty F
// bucket rather than an error, matching original_source's
// instr_ops/foreach.rs early return. Grounded on
// matching_ctx/buckets_impl/f_bucket_impl.rs.
type ForeachOperator struct{}

func NewForeachOperator() *ForeachOperator { return &ForeachOperator{} }

func (o *ForeachOperator) Execute(mctx *gctx.MatchingCtx, instr schemas.Instruction) error {
	if err := mctx.InitFBlock(instr.TargetVar); err != nil {
		return err
	}

	cBucket, err := mctx.PopFromCBlock(*instr.SingleOp)
	if err != nil {
		return nil
	}

	fBucket := gctx.NewFBucket()
	for idx, expanding := range cBucket.AllExpanded {
		committed := expanding.Commit()
		fBucket.AllMatched = append(fBucket.AllMatched, committed)
		fBucket.MatchedWithFrontiers[idx] = append(fBucket.MatchedWithFrontiers[idx], cBucket.ExpandedWithFrontiers[idx]...)
	}

	return mctx.UpdateFBlock(instr.TargetVar, fBucket)
}
