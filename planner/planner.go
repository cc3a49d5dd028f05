package planner

import (
	"encoding/json"

	"github.com/wbrown/graphmatch/schemas"
)

// GenerateOptimalPlan runs the full pipeline: order calculation (Basic
// or Advanced per opts.Strategy), raw instruction generation, CSE/
// reorder optimization, and PlanData assembly. patternText is used
// purely as the cache key; it should be the canonical source the
// pattern graph was parsed from. Grounded on original_source's
// planner/mod.rs generate_optimal_plan.
func GenerateOptimalPlan(patternText string, pattern *PatternGraph, opts Options) schemas.PlanData {
	if opts.Cache != nil {
		if cached, ok := opts.Cache.Get(patternText, opts.Strategy); ok {
			return cached
		}
	}

	var order []schemas.Vid
	switch opts.Strategy {
	case OrderAdvanced:
		order = NewAdvancedOrderCalculator(pattern, opts.Advanced).Order()
	default:
		order = NewBasicOrderCalculator(pattern, opts.Basic).Order()
	}

	rawInstructions := NewPlanGenerator(pattern, order).GenerateRawPlan()
	instructions := NewPlanOptimizer(rawInstructions).ApplyOptimization()

	plan := schemas.PlanData{
		MatchingOrder: order,
		PatternVs:     clonePatternVs(pattern),
		PatternEs:     clonePatternEs(pattern),
		Instructions:  instructions,
	}

	if opts.Cache != nil {
		opts.Cache.Set(patternText, opts.Strategy, plan)
	}

	return plan
}

func clonePatternVs(pattern *PatternGraph) map[schemas.Vid]schemas.PatternVertex {
	out := make(map[schemas.Vid]schemas.PatternVertex, len(pattern.VEntities))
	for vid, v := range pattern.VEntities {
		out[vid] = v
	}
	return out
}

func clonePatternEs(pattern *PatternGraph) map[schemas.Eid]schemas.PatternEdge {
	out := make(map[schemas.Eid]schemas.PatternEdge, len(pattern.EEntities))
	for eid, e := range pattern.EEntities {
		out[eid] = e
	}
	return out
}

// ExplainText renders a human-readable dump of a compiled plan:
// matching order, then each instruction. Supplements original_source's
// plan_dump.rs serialize_json (still available via PlanData's own JSON
// tags) with a readable form for the CLI's -explain flag.
func ExplainText(plan schemas.PlanData) string {
	var out []byte
	out = append(out, "matching order: "...)
	for i, vid := range plan.MatchingOrder {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = append(out, vid...)
	}
	out = append(out, '\n')

	for _, instr := range plan.Instructions {
		line, _ := json.Marshal(instr)
		out = append(out, instr.Type.String()...)
		out = append(out, ' ')
		out = append(out, line...)
		out = append(out, '\n')
	}
	return string(out)
}
