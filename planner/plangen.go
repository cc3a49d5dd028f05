package planner

import (
	"github.com/wbrown/graphmatch/schemas"
)

// PlanGenerator turns an optimal vertex order into a raw instruction
// stream, direct port of original_source's planner/plan_gen.rs
// PlanGenerator::generate_raw_plan.
type PlanGenerator struct {
	pattern      *PatternGraph
	optimalOrder []schemas.Vid
}

func NewPlanGenerator(pattern *PatternGraph, optimalOrder []schemas.Vid) *PlanGenerator {
	return &PlanGenerator{pattern: pattern, optimalOrder: optimalOrder}
}

// GenerateRawPlan emits one Init/GetAdj pair for the first vertex in
// the order, then for each subsequent vertex an Init (no precursors),
// a single-op Intersect into C (one precursor), or a multi-op Intersect
// into T followed by a single-op Intersect from T into C (two or more
// precursors); a Foreach follows whenever there was a precursor, then a
// GetAdj over its still-unexpanded adjacent edges; a final Report instruction
// closes the stream. Dead GetAdj instructions (whose target nothing
// downstream consumes) are pruned.
func (g *PlanGenerator) GenerateRawPlan() []schemas.Instruction {
	if len(g.optimalOrder) == 0 {
		return nil
	}

	var instructions []schemas.Instruction
	fSet := map[schemas.Vid]struct{}{}
	expandedEs := map[schemas.Eid]struct{}{}

	first := g.optimalOrder[0]
	adjEids := g.pattern.AdjEids(first)
	instructions = append(instructions,
		schemas.NewInstruction(first, schemas.InstrInit).
			TargetVar(schemas.MakeVar(schemas.PrefixEnumerateTarget, first)).
			Build(),
		schemas.NewInstruction(first, schemas.InstrGetAdj).
			ExpandEids(adjEids).
			SingleOp(schemas.MakeVar(schemas.PrefixEnumerateTarget, first)).
			TargetVar(schemas.MakeVar(schemas.PrefixDbQueryTarget, first)).
			Build(),
	)
	fSet[first] = struct{}{}
	for _, eid := range adjEids {
		expandedEs[eid] = struct{}{}
	}

	for _, vid := range g.optimalOrder[1:] {
		adjVids := g.pattern.AdjVids(vid)
		adjVidSet := map[schemas.Vid]struct{}{}
		for _, v := range adjVids {
			adjVidSet[v] = struct{}{}
		}

		var precursors []schemas.Vid
		for f := range fSet {
			if _, ok := adjVidSet[f]; ok {
				precursors = append(precursors, f)
			}
		}

		var vidAdjEids []schemas.Eid
		for _, eid := range g.pattern.AdjEids(vid) {
			if _, ok := expandedEs[eid]; !ok {
				vidAdjEids = append(vidAdjEids, eid)
			}
		}

		switch len(precursors) {
		case 0:
			instructions = append(instructions,
				schemas.NewInstruction(vid, schemas.InstrInit).
					TargetVar(schemas.MakeVar(schemas.PrefixEnumerateTarget, vid)).
					Build(),
			)
		case 1:
			instructions = append(instructions,
				schemas.NewInstruction(vid, schemas.InstrIntersect).
					SingleOp(schemas.MakeVar(schemas.PrefixDbQueryTarget, precursors[0])).
					TargetVar(schemas.MakeVar(schemas.PrefixIntersectCand, vid)).
					Build(),
			)
		default:
			multiOps := make([]string, 0, len(precursors))
			for _, p := range precursors {
				multiOps = append(multiOps, schemas.MakeVar(schemas.PrefixDbQueryTarget, p))
			}
			instructions = append(instructions,
				schemas.NewInstruction(vid, schemas.InstrIntersect).
					MultiOps(multiOps).
					TargetVar(schemas.MakeVar(schemas.PrefixIntersectTarget, vid)).
					Build(),
				schemas.NewInstruction(vid, schemas.InstrIntersect).
					SingleOp(schemas.MakeVar(schemas.PrefixIntersectTarget, vid)).
					TargetVar(schemas.MakeVar(schemas.PrefixIntersectCand, vid)).
					Build(),
			)
		}

		if len(precursors) > 0 {
			instructions = append(instructions,
				schemas.NewInstruction(vid, schemas.InstrForeach).
					SingleOp(schemas.MakeVar(schemas.PrefixIntersectCand, vid)).
					TargetVar(schemas.MakeVar(schemas.PrefixEnumerateTarget, vid)).
					Build(),
			)
		}

		instructions = append(instructions,
			schemas.NewInstruction(vid, schemas.InstrGetAdj).
				ExpandEids(vidAdjEids).
				SingleOp(schemas.MakeVar(schemas.PrefixEnumerateTarget, vid)).
				TargetVar(schemas.MakeVar(schemas.PrefixDbQueryTarget, vid)).
				Build(),
		)

		fSet[vid] = struct{}{}
		for _, eid := range vidAdjEids {
			expandedEs[eid] = struct{}{}
		}
	}

	embedding := make([]string, 0, len(fSet))
	for _, vid := range g.optimalOrder {
		if _, ok := fSet[vid]; ok {
			embedding = append(embedding, schemas.MakeVar(schemas.PrefixEnumerateTarget, vid))
		}
	}
	instructions = append(instructions,
		schemas.NewInstruction("", schemas.InstrReport).
			MultiOps(embedding).
			TargetVar(schemas.PrefixEnumerateTarget.String()).
			Build(),
	)

	return removeUnusedGetAdj(instructions)
}

// removeUnusedGetAdj drops any GetAdj instruction whose target_var no
// downstream instruction consumes as an operand (spec's dead-GetAdj
// elimination; on by default, matching original_source's non-
// `no_optimizations` build).
func removeUnusedGetAdj(instructions []schemas.Instruction) []schemas.Instruction {
	dependSet := map[string]struct{}{}
	for _, instr := range instructions {
		if instr.SingleOp != nil {
			if *instr.SingleOp != schemas.PrefixDataVertexSet.String() {
				dependSet[*instr.SingleOp] = struct{}{}
			}
		} else {
			for _, op := range instr.MultiOps {
				dependSet[op] = struct{}{}
			}
		}
	}

	out := make([]schemas.Instruction, 0, len(instructions))
	for _, instr := range instructions {
		if instr.Type == schemas.InstrGetAdj {
			if _, used := dependSet[instr.TargetVar]; !used {
				continue
			}
		}
		out = append(out, instr)
	}
	return out
}
