package planner

import (
	"sort"

	"github.com/wbrown/graphmatch/schemas"
)

// BasicOrderCalculator picks a worst-case-optimal matching order from
// per-label vertex/edge cardinalities alone, grounded on
// original_source's planner/order_calc.rs OrderCalculator.
type BasicOrderCalculator struct {
	stats   *Statistics
	pattern *PatternGraph
}

func NewBasicOrderCalculator(pattern *PatternGraph, stats *Statistics) *BasicOrderCalculator {
	if stats == nil {
		stats = &Statistics{VLabelCnt: map[schemas.Label]int{}, ELabelCnt: map[schemas.Label]int{}}
	}
	return &BasicOrderCalculator{stats: stats, pattern: pattern}
}

// Order returns the pattern's vertex ids sorted ascending by estimated
// worst-case cost. Only the vid is needed downstream: plan generation
// consumes positions in order, not the cost value itself.
func (c *BasicOrderCalculator) Order() []schemas.Vid {
	type vidCost struct {
		vid  schemas.Vid
		cost int
	}

	vids := c.pattern.Vids()
	costs := make([]vidCost, 0, len(vids))
	for _, vid := range vids {
		costs = append(costs, vidCost{vid: vid, cost: c.costOf(vid)})
	}

	sort.SliceStable(costs, func(i, j int) bool {
		if costs[i].cost != costs[j].cost {
			return costs[i].cost < costs[j].cost
		}
		return costs[i].vid < costs[j].vid
	})

	out := make([]schemas.Vid, len(costs))
	for i, vc := range costs {
		out[i] = vc.vid
	}
	return out
}

// costOf estimates vid's worst-case join cost: its own label
// cardinality, multiplied by the number of distinct neighbor groups
// (every group could in the worst case fully match), plus each
// neighbor group's edge cost capped at vid's original cardinality
// (a join can never produce more rows than either side could supply).
func (c *BasicOrderCalculator) costOf(vid schemas.Vid) int {
	v, ok := c.pattern.VEntities[vid]
	if !ok {
		return 0
	}
	originalVCost := c.stats.VLabelCnt[v.VertexLabel()]
	groups := c.pattern.AdjEidsGroupedByTargetVid(vid)

	vCost := originalVCost * len(groups)

	groupCostSum := 0
	for _, eids := range groups {
		groupSum := 0
		for _, eid := range eids {
			e := c.pattern.EEntities[eid]
			eEst := c.stats.ELabelCnt[e.EdgeLabel()]
			if eEst > originalVCost {
				eEst = originalVCost
			}
			groupSum += eEst
		}
		groupCostSum += groupSum
	}

	return vCost + groupCostSum
}
