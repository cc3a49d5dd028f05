package executor

import (
	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/schemas"
)

// ReportOperator drains every live F bucket and keeps only the matches
// that could still complete the whole pattern: no more vertices/edges
// of any pattern id than the plan allows (spec §4.4.5). This is a
// necessary, not sufficient, filter — the final merge in ExecEngine
// enforces the exact "one occurrence per pattern element" invariant
// once all buckets have been unioned. Grounded on
// original_source/src/executor/instr_ops/report.rs.
type ReportOperator struct{}

func NewReportOperator() *ReportOperator { return &ReportOperator{} }

func (o *ReportOperator) Execute(mctx *gctx.MatchingCtx) error {
	patternVs := mctx.PatternVs()
	patternEs := mctx.PatternEs()

	for _, key := range mctx.AllFBucketKeys() {
		fBucket, err := mctx.PopFromFBlock(schemas.MakeVar(schemas.PrefixEnumerateTarget, key))
		if err != nil {
			continue
		}

		var filtered []*gctx.Graph
		for _, g := range fBucket.AllMatched {
			if couldMatchPartialPattern(g, patternVs, patternEs) {
				filtered = append(filtered, g)
			}
		}
		mctx.AppendGroupedPartialMatches(filtered)
	}
	return nil
}

func couldMatchPartialPattern(g *gctx.Graph, patternVs map[schemas.Vid]schemas.PatternVertex, patternEs map[schemas.Eid]schemas.PatternEdge) bool {
	if g.VCount() > len(patternVs) || g.ECount() > len(patternEs) {
		return false
	}
	for vPat, cnt := range g.VPatternCounts() {
		if _, ok := patternVs[vPat]; !ok || cnt > 1 {
			return false
		}
	}
	for ePat, cnt := range g.EPatternCounts() {
		if _, ok := patternEs[ePat]; !ok || cnt > 1 {
			return false
		}
	}
	return true
}
