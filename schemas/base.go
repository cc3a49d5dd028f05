// Package schemas holds the immutable value types shared by the planner
// and execution engine: pattern/data vertices and edges, attribute
// predicates, instructions, and the serialized plan.
package schemas

import (
	"encoding/json"
	"fmt"
)

// Vid identifies a vertex, either pattern-side or data-side. Eid is the
// edge analogue. Both are plain strings so they round-trip through JSON
// and storage keys without a translation layer.
type Vid = string
type Eid = string
type Label = string

// Op is a predicate comparison operator. String-typed attributes only
// support Eq and Ne (spec: "range ops are forbidden on strings").
type Op uint8

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	default:
		return "?"
	}
}

// ParseOp parses the wire representation of an Op (spec §6).
func ParseOp(s string) (Op, error) {
	switch s {
	case "=":
		return OpEq, nil
	case "!=":
		return OpNe, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGe, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	default:
		return 0, fmt.Errorf("invalid operator %q", s)
	}
}

func (o Op) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", o.String())), nil
}

func (o *Op) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOp(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// VarPrefix is the one-character prefix that types a bucket variable
// name: f=Enumerate, A=DbQuery, C=IntersectCandidate, T=IntersectTemp,
// V=DataVertexSet.
type VarPrefix byte

const (
	PrefixDataGraph        VarPrefix = ' '
	PrefixEnumerateTarget  VarPrefix = 'f'
	PrefixDbQueryTarget    VarPrefix = 'A'
	PrefixIntersectTarget  VarPrefix = 'T'
	PrefixIntersectCand    VarPrefix = 'C'
	PrefixDataVertexSet    VarPrefix = 'V'
)

func (p VarPrefix) String() string {
	return string(rune(p))
}

// varSplitter separates a VarPrefix from its variable name in a
// target_var string, e.g. "A^v3" -> ('A', "v3").
const varSplitter = "^"

// SplitVar splits a target_var/single_op/multi_op string into its
// prefix and variable name.
func SplitVar(v string) (VarPrefix, string, error) {
	for i := 0; i < len(v); i++ {
		if v[i] == '^' {
			return VarPrefix(v[0]), v[i+1:], nil
		}
	}
	return 0, "", fmt.Errorf("malformed variable reference %q: missing %q splitter", v, varSplitter)
}

// MakeVar builds a target_var/single_op string from a prefix and name.
func MakeVar(p VarPrefix, name string) string {
	return p.String() + varSplitter + name
}
