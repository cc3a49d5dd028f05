package planner

import (
	"sort"

	"github.com/wbrown/graphmatch/schemas"
)

// AdvancedOrderCalculator refines the basic cost model with per-
// attribute selectivity estimated from histograms, grounded on
// original_source's planner/advanced_order_calc.rs
// AdvancedOrderCalculator.
type AdvancedOrderCalculator struct {
	stats   *AdvancedStatistics
	pattern *PatternGraph

	eqVids    []schemas.Vid
	rangeVids []schemas.Vid
	neVids    []schemas.Vid
	plainVids []schemas.Vid

	vertexCosts map[schemas.Vid]float64
}

func NewAdvancedOrderCalculator(pattern *PatternGraph, stats *AdvancedStatistics) *AdvancedOrderCalculator {
	if stats == nil {
		stats = &AdvancedStatistics{
			VLabelCnt:  map[schemas.Label]int{},
			ELabelCnt:  map[schemas.Label]int{},
			VAttrStats: map[schemas.Label]map[string]AttributeStats{},
			EAttrStats: map[schemas.Label]map[string]AttributeStats{},
		}
	}
	return &AdvancedOrderCalculator{stats: stats, pattern: pattern, vertexCosts: map[schemas.Vid]float64{}}
}

// Order runs the three-stage pipeline: bucket by predicate shape,
// rule-based connectivity pre-sort, cost-based final sort, then
// concatenates Eq -> Range -> Ne -> Plain.
func (c *AdvancedOrderCalculator) Order() []schemas.Vid {
	c.groupVidsByAttrOp()
	c.ruleBasedOptimization()
	c.costBasedOptimization()
	return c.concatFinalOptimalOrder()
}

func (c *AdvancedOrderCalculator) groupVidsByAttrOp() {
	for _, vid := range c.pattern.Vids() {
		v := c.pattern.VEntities[vid]
		attr := v.Attr
		switch {
		case attr == nil:
			c.plainVids = append(c.plainVids, vid)
		case attr.Op == schemas.OpEq:
			c.eqVids = append(c.eqVids, vid)
		case attr.Op == schemas.OpNe:
			c.neVids = append(c.neVids, vid)
		default:
			c.rangeVids = append(c.rangeVids, vid)
		}
	}
}

// ruleBasedOptimization sorts each bucket by connectivity price
// (cheaper/less-connected first), weighting distinct-neighbor count
// above raw edge degree.
func (c *AdvancedOrderCalculator) ruleBasedOptimization() {
	prices := map[schemas.Vid]float64{}
	for _, vid := range c.pattern.Vids() {
		price := float64(c.pattern.InDegree(vid) + c.pattern.OutDegree(vid))
		price += float64(len(c.pattern.AdjVids(vid))) * 5.0
		prices[vid] = price
	}

	for _, bucket := range c.buckets() {
		sort.SliceStable(*bucket, func(i, j int) bool {
			return prices[(*bucket)[i]] < prices[(*bucket)[j]]
		})
	}
}

// costBasedOptimization refines each bucket's order using attribute
// selectivity (from histograms) weighted against label cardinality
// and adjacent-edge cost.
func (c *AdvancedOrderCalculator) costBasedOptimization() {
	for _, vid := range c.pattern.Vids() {
		v := c.pattern.VEntities[vid]
		label := v.VertexLabel()

		initialCardinality := float64(c.stats.VLabelCnt[label])
		if initialCardinality == 0 {
			initialCardinality = 1
		}

		selectivity := 1.0
		if v.Attr != nil {
			if stats, ok := c.stats.vAttrStats(label, v.Attr.Key); ok {
				if est, ok := c.estimateSelectivity(v.Attr, stats); ok {
					selectivity = est
					if selectivity < 1e-9 {
						selectivity = 1e-9
					}
					if selectivity > 1.0 {
						selectivity = 1.0
					}
				}
			}
		}

		vertexEstimatedCardinality := initialCardinality * selectivity

		groups := c.pattern.AdjEidsGroupedByTargetVid(vid)
		edgeCost := 0.0
		for _, eids := range groups {
			for _, eid := range eids {
				e := c.pattern.EEntities[eid]
				eEst := float64(c.stats.ELabelCnt[e.EdgeLabel()])
				if eEst == 0 {
					eEst = 1
				}
				if eEst > vertexEstimatedCardinality {
					eEst = vertexEstimatedCardinality
				}
				edgeCost += eEst
			}
		}

		numDistinctNeighbors := len(groups)
		if numDistinctNeighbors < 1 {
			numDistinctNeighbors = 1
		}
		c.vertexCosts[vid] = vertexEstimatedCardinality*float64(numDistinctNeighbors) + edgeCost
	}

	for _, bucket := range c.buckets() {
		sort.SliceStable(*bucket, func(i, j int) bool {
			return c.vertexCosts[(*bucket)[i]] < c.vertexCosts[(*bucket)[j]]
		})
	}
}

// estimateSelectivity dispatches on operator/type the way
// estimate_string_eq_selectivity / estimate_range_selectivity do.
func (c *AdvancedOrderCalculator) estimateSelectivity(attr *schemas.PatternAttr, stats AttributeStats) (float64, bool) {
	if stats.Count == 0 {
		return 0.0, true
	}
	switch attr.Op {
	case schemas.OpEq:
		if stats.Type == "String" {
			return c.estimateStringEqSelectivity(attr.Value.String, stats)
		}
		return stats.Selectivity.Eq, true
	case schemas.OpNe:
		return stats.Selectivity.Ne, true
	default:
		return c.estimateRangeSelectivity(attr.Op, attr.Value, stats)
	}
}

func (c *AdvancedOrderCalculator) estimateStringEqSelectivity(value string, stats AttributeStats) (float64, bool) {
	count, ok := stats.Histogram.ValueCounts[value]
	if !ok {
		return 0.0, true
	}
	return float64(count) / float64(stats.Count), true
}

// estimateRangeSelectivity interpolates the fraction of each histogram
// bin satisfying the predicate, assuming a uniform distribution within
// the bin.
func (c *AdvancedOrderCalculator) estimateRangeSelectivity(op schemas.Op, value schemas.AttrValue, stats AttributeStats) (float64, bool) {
	if stats.Type == "String" {
		return 0, false
	}
	cmpVal, ok := numericValue(value)
	if !ok {
		return 0, false
	}

	bins := stats.Histogram.Bins
	counts := stats.Histogram.Counts
	if len(bins) == 0 || len(counts) == 0 || len(bins) != len(counts)+1 {
		return 0, false
	}

	satisfying := 0.0
	for i, binCount := range counts {
		binStart, binEnd := bins[i], bins[i+1]
		var fraction float64
		switch op {
		case schemas.OpLt:
			switch {
			case cmpVal <= binStart:
				fraction = 0.0
			case cmpVal >= binEnd:
				fraction = 1.0
			default:
				fraction = (cmpVal - binStart) / (binEnd - binStart)
			}
		case schemas.OpLe:
			switch {
			case cmpVal < binStart:
				fraction = 0.0
			case cmpVal >= binEnd:
				fraction = 1.0
			default:
				fraction = (cmpVal - binStart) / (binEnd - binStart)
			}
		case schemas.OpGt:
			switch {
			case cmpVal >= binEnd:
				fraction = 0.0
			case cmpVal <= binStart:
				fraction = 1.0
			default:
				fraction = (binEnd - cmpVal) / (binEnd - binStart)
			}
		case schemas.OpGe:
			switch {
			case cmpVal > binEnd:
				fraction = 0.0
			case cmpVal <= binStart:
				fraction = 1.0
			default:
				fraction = (binEnd - cmpVal) / (binEnd - binStart)
			}
		}
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		satisfying += float64(binCount) * fraction
	}

	return satisfying / float64(stats.Count), true
}

func numericValue(v schemas.AttrValue) (float64, bool) {
	switch v.Type {
	case schemas.AttrInt:
		return float64(v.Int), true
	case schemas.AttrFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func (c *AdvancedOrderCalculator) concatFinalOptimalOrder() []schemas.Vid {
	order := make([]schemas.Vid, 0, len(c.eqVids)+len(c.rangeVids)+len(c.neVids)+len(c.plainVids))
	order = append(order, c.eqVids...)
	order = append(order, c.rangeVids...)
	order = append(order, c.neVids...)
	order = append(order, c.plainVids...)
	return order
}

func (c *AdvancedOrderCalculator) buckets() []*[]schemas.Vid {
	return []*[]schemas.Vid{&c.eqVids, &c.rangeVids, &c.neVids, &c.plainVids}
}
