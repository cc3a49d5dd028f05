package schemas

import (
	"encoding/json"
	"fmt"
)

// InstructionType is the opcode of a compiled instruction (spec §3/§6).
// TCache is reserved: no planner stage ever emits it (spec §9 Open
// Questions), and building an operator for it is an ErrInvalidPlan.
type InstructionType uint8

const (
	InstrInit InstructionType = iota
	InstrGetAdj
	InstrIntersect
	InstrForeach
	InstrTCache
	InstrReport
)

// Ordinal gives the reorder pass's opcode ordering (spec §4.3): Init <
// GetAdj < Intersect < Foreach < TCache < Report.
func (t InstructionType) Ordinal() int { return int(t) }

func (t InstructionType) String() string {
	switch t {
	case InstrInit:
		return "init"
	case InstrGetAdj:
		return "get_adj"
	case InstrIntersect:
		return "intersect"
	case InstrForeach:
		return "foreach"
	case InstrTCache:
		return "t_cache"
	case InstrReport:
		return "report"
	default:
		return "?"
	}
}

func ParseInstructionType(s string) (InstructionType, error) {
	switch s {
	case "init":
		return InstrInit, nil
	case "get_adj":
		return InstrGetAdj, nil
	case "intersect":
		return InstrIntersect, nil
	case "foreach":
		return InstrForeach, nil
	case "t_cache":
		return InstrTCache, nil
	case "report":
		return InstrReport, nil
	default:
		return 0, fmt.Errorf("%w: unknown instruction type %q", ErrInvalidPlan, s)
	}
}

func (t InstructionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *InstructionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseInstructionType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Instruction is one step of a compiled plan (spec §3, §6).
type Instruction struct {
	Vid        Vid             `json:"vid"`
	Type       InstructionType `json:"type"`
	ExpandEids []Eid           `json:"expand_eid_list"`
	SingleOp   *string         `json:"single_op,omitempty"`
	MultiOps   []string        `json:"multi_ops,omitempty"`
	TargetVar  string          `json:"target_var"`
	DependOn   []string        `json:"depend_on,omitempty"`
}

// IsSingleOp reports whether this instruction has a single operand
// (as opposed to a multi-op Intersect).
func (i Instruction) IsSingleOp() bool { return i.SingleOp != nil }

// Operands returns every var reference this instruction consumes
// (single_op ∪ multi_ops), used by pruning and reorder passes.
func (i Instruction) Operands() []string {
	var ops []string
	if i.SingleOp != nil {
		ops = append(ops, *i.SingleOp)
	}
	ops = append(ops, i.MultiOps...)
	return ops
}

// Builder mirrors original_source's InstructionBuilder: a fluent way to
// assemble an Instruction during plan generation.
type Builder struct {
	instr Instruction
}

func NewInstruction(vid Vid, t InstructionType) *Builder {
	return &Builder{instr: Instruction{Vid: vid, Type: t}}
}

func (b *Builder) ExpandEids(eids []Eid) *Builder {
	b.instr.ExpandEids = eids
	return b
}

func (b *Builder) SingleOp(op string) *Builder {
	b.instr.SingleOp = &op
	return b
}

func (b *Builder) MultiOps(ops []string) *Builder {
	b.instr.MultiOps = ops
	return b
}

func (b *Builder) TargetVar(v string) *Builder {
	b.instr.TargetVar = v
	return b
}

func (b *Builder) DependOn(deps []string) *Builder {
	b.instr.DependOn = deps
	return b
}

func (b *Builder) Build() Instruction {
	return b.instr
}
