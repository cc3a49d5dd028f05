package planner

import (
	"fmt"
	"sort"

	"github.com/wbrown/graphmatch/schemas"
)

// PlanOptimizer rewrites a raw instruction stream in two passes: CSE
// elimination (factor out the largest shared Intersect operand group
// into its own instruction) and a dependency-respecting reorder.
// Grounded on original_source's planner/plan_opt.rs PlanOptimizer.
// flatten_multi_ops is intentionally not ported: the original marks it
// `#[deprecated]` and unused, noting ExecEngine's Intersect already
// supports N-ary operands and flattening would only cost parallelism.
type PlanOptimizer struct {
	instructions []schemas.Instruction
	ti           int
}

func NewPlanOptimizer(instructions []schemas.Instruction) *PlanOptimizer {
	return &PlanOptimizer{instructions: instructions}
}

// ApplyOptimization runs eliminateCSE then reorder, returning the
// optimized stream.
func (o *PlanOptimizer) ApplyOptimization() []schemas.Instruction {
	if len(o.instructions) == 0 {
		return o.instructions
	}
	o.eliminateCSE()
	o.reorder()
	return o.instructions
}

// eliminateCSE repeatedly takes the largest-size generation of frequent
// itemsets (support >= 2), picks its highest-support itemset among multi-op Intersect instructions' operand sets
// and factors it into a new shared Intersect instruction, until no
// itemset of size >= 2 survives.
func (o *PlanOptimizer) eliminateCSE() {
	for {
		var dataList []itemset
		var instrIdx []int
		intersectPos := map[string]int{}

		for idx, instr := range o.instructions {
			switch {
			case instr.Type == schemas.InstrGetAdj:
				intersectPos[instr.TargetVar] = idx
			case instr.Type == schemas.InstrIntersect && !instr.IsSingleOp():
				intersectPos[instr.TargetVar] = idx
				dataList = append(dataList, newItemset(instr.MultiOps))
				instrIdx = append(instrIdx, idx)
			}
		}

		ap := newApriori(dataList, 2)
		freqSet := ap.genMaxSizeFreqSet()

		keys := make([]string, 0, len(freqSet))
		for k := range freqSet {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var maxFreqSet itemset
		maxFreqSupport := 0
		for _, k := range keys {
			is := freqSet[k]
			switch {
			case is.support > maxFreqSupport:
				maxFreqSet = is.items
				maxFreqSupport = is.support
			case is.support == maxFreqSupport:
				l1 := sortedPositions(maxFreqSet, intersectPos)
				l2 := sortedPositions(is.items, intersectPos)
				for i := 0; i < len(l1) && i < len(l2); i++ {
					if l1[i] > l2[i] {
						maxFreqSupport = is.support
						maxFreqSet = is.items
					}
				}
			}
		}

		if len(maxFreqSet) < 2 {
			return
		}

		o.ti++
		newVar := schemas.MakeVar(schemas.PrefixIntersectTarget, fmt.Sprintf("@%d", o.ti))
		flag := true

		for i, operandSet := range dataList {
			if !maxFreqSet.isSubsetOf(operandSet) {
				continue
			}

			remaining := map[string]struct{}{newVar: {}}
			for _, op := range operandSet {
				if !maxFreqSet.contains(op) {
					remaining[op] = struct{}{}
				}
			}

			if flag {
				operators := append(itemset{}, maxFreqSet...)
				sort.Slice(operators, func(a, b int) bool {
					return intersectPos[operators[a]] < intersectPos[operators[b]]
				})
				oldVid := o.instructions[instrIdx[i]].Vid
				newInstr := schemas.NewInstruction(oldVid, schemas.InstrIntersect).
					MultiOps(operators).
					TargetVar(newVar).
					Build()
				o.instructions = insertInstruction(o.instructions, instrIdx[i], newInstr)
				flag = false
			}

			remainingList := make([]string, 0, len(remaining))
			for op := range remaining {
				remainingList = append(remainingList, op)
			}
			sort.Strings(remainingList)

			pos := instrIdx[i] + 1
			if len(remainingList) > 1 {
				o.instructions[pos].MultiOps = remainingList
				o.instructions[pos].SingleOp = nil
			} else {
				single := remainingList[0]
				o.instructions[pos].SingleOp = &single
				o.instructions[pos].MultiOps = nil
			}
		}
	}
}

func sortedPositions(items itemset, pos map[string]int) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = pos[it]
	}
	sort.Ints(out)
	return out
}

func insertInstruction(instrs []schemas.Instruction, idx int, instr schemas.Instruction) []schemas.Instruction {
	out := make([]schemas.Instruction, 0, len(instrs)+1)
	out = append(out, instrs[:idx]...)
	out = append(out, instr)
	out = append(out, instrs[idx:]...)
	return out
}

// reorder greedily pulls each still-unplaced instruction whose operands
// are already produced ("certain") as early as possible, breaking ties
// by InstructionType.Ordinal() (Init first, Report last).
func (o *PlanOptimizer) reorder() {
	certainSet := map[string]struct{}{o.instructions[0].TargetVar: {}}

	for i := 1; i < len(o.instructions); i++ {
		var candidates []int
		for j := i; j < len(o.instructions); j++ {
			if dependenciesSatisfied(o.instructions[j], certainSet) {
				candidates = append(candidates, j)
			}
		}

		if len(candidates) > 0 {
			best := candidates[0]
			for _, idx := range candidates[1:] {
				if o.instructions[idx].Type.Ordinal() < o.instructions[best].Type.Ordinal() {
					best = idx
				}
			}
			o.instructions[i], o.instructions[best] = o.instructions[best], o.instructions[i]
		}

		certainSet[o.instructions[i].TargetVar] = struct{}{}
	}
}

func dependenciesSatisfied(instr schemas.Instruction, certainSet map[string]struct{}) bool {
	if instr.SingleOp != nil {
		_, ok := certainSet[*instr.SingleOp]
		return ok
	}
	if len(instr.MultiOps) == 0 {
		return true
	}
	for _, op := range instr.MultiOps {
		if _, ok := certainSet[op]; !ok {
			return false
		}
	}
	return true
}
