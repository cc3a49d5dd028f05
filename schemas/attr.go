package schemas

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AttrType tags which Go type an AttrValue carries, also used by the
// statistics files (spec §6) to describe a column's declared type.
type AttrType uint8

const (
	AttrInt AttrType = iota
	AttrFloat
	AttrString
)

func (t AttrType) String() string {
	switch t {
	case AttrInt:
		return "int"
	case AttrFloat:
		return "float"
	case AttrString:
		return "string"
	default:
		return "?"
	}
}

// AttrValue is a typed attribute value: exactly one of Int, Float or
// String is meaningful, selected by Type. Grounded on
// original_source/src/schemas/attr.rs's AttrValue enum.
type AttrValue struct {
	Type   AttrType
	Int    int64
	Float  float64
	String string
}

func IntValue(v int64) AttrValue    { return AttrValue{Type: AttrInt, Int: v} }
func FloatValue(v float64) AttrValue { return AttrValue{Type: AttrFloat, Float: v} }
func StringValue(v string) AttrValue { return AttrValue{Type: AttrString, String: v} }

// ParseAttrValue mirrors AttrValue::from_str: int, then float, then a
// bare string as last resort.
func ParseAttrValue(s string) AttrValue {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(s)
}

func (v AttrValue) String2() string {
	switch v.Type {
	case AttrInt:
		return strconv.FormatInt(v.Int, 10)
	case AttrFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.String
	}
}

func (v AttrValue) asFloat() (float64, bool) {
	switch v.Type {
	case AttrInt:
		return float64(v.Int), true
	case AttrFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Equal implements the cross-numeric equality original_source's
// PartialEq impl gives AttrValue (int/float compare by value, strings
// compare literally, int/string never equal).
func (v AttrValue) Equal(other AttrValue) bool {
	if v.Type == AttrString || other.Type == AttrString {
		return v.Type == AttrString && other.Type == AttrString && v.String == other.String
	}
	lf, _ := v.asFloat()
	rf, _ := other.asFloat()
	return lf == rf
}

// Compare returns -1/0/1 comparing v to other, or an error if they are
// not comparable (string vs numeric).
func (v AttrValue) Compare(other AttrValue) (int, error) {
	if v.Type == AttrString || other.Type == AttrString {
		if v.Type != AttrString || other.Type != AttrString {
			return 0, fmt.Errorf("cannot compare %s to %s", v.Type, other.Type)
		}
		return strings.Compare(v.String, other.String), nil
	}
	lf, _ := v.asFloat()
	rf, _ := other.asFloat()
	switch {
	case lf < rf:
		return -1, nil
	case lf > rf:
		return 1, nil
	default:
		return 0, nil
	}
}

func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case AttrInt:
		return json.Marshal(v.Int)
	case AttrFloat:
		return json.Marshal(v.Float)
	default:
		return json.Marshal(v.String)
	}
}

func (v *AttrValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = ParseAttrValue(t)
	case float64:
		if t == float64(int64(t)) {
			*v = IntValue(int64(t))
		} else {
			*v = FloatValue(t)
		}
	default:
		return fmt.Errorf("unsupported attribute value literal: %v", raw)
	}
	return nil
}

// PatternAttr is an attribute predicate: key op value, e.g. age > 30.
type PatternAttr struct {
	Key   string   `json:"attr"`
	Op    Op       `json:"op"`
	Value AttrValue `json:"value"`
	Type  AttrType `json:"-"`
}

func (a PatternAttr) MarshalJSON() ([]byte, error) {
	type wire struct {
		Attr  string    `json:"attr"`
		Op    Op        `json:"op"`
		Value AttrValue `json:"value"`
		Type  string    `json:"type"`
	}
	return json.Marshal(wire{Attr: a.Key, Op: a.Op, Value: a.Value, Type: a.Value.Type.String()})
}

func (a *PatternAttr) UnmarshalJSON(data []byte) error {
	type wire struct {
		Attr  string    `json:"attr"`
		Op    Op        `json:"op"`
		Value AttrValue `json:"value"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Value.Type == AttrString && w.Op != OpEq && w.Op != OpNe {
		return fmt.Errorf("%w: range operator %s on string attribute %q", ErrAttributeTypeMismatch, w.Op, w.Attr)
	}
	a.Key = w.Attr
	a.Op = w.Op
	a.Value = w.Value
	a.Type = w.Value.Type
	return nil
}

// ParsePatternAttrRaw parses the pattern text format's VA/EA line value
// ("<op><value>") the way original_source's PatternAttr::parse_from_raw
// does: op characters first, then a quoted string or bare numeric
// literal.
func ParsePatternAttrRaw(key, rawPred string) (PatternAttr, error) {
	cursor := 0
	for cursor < len(rawPred) {
		c := rawPred[cursor]
		if isAlnum(c) || c == '\'' || c == '"' {
			break
		}
		cursor++
	}
	op, err := ParseOp(rawPred[:cursor])
	if err != nil {
		return PatternAttr{}, fmt.Errorf("invalid operator in %q: %w", rawPred, err)
	}
	if cursor >= len(rawPred) {
		return PatternAttr{}, fmt.Errorf("missing value in %q", rawPred)
	}

	var value AttrValue
	switch c := rawPred[cursor]; {
	case c >= '0' && c <= '9' || c == '-':
		value = ParseAttrValue(rawPred[cursor:])
	case c == '\'' || c == '"':
		if rawPred[len(rawPred)-1] != c {
			return PatternAttr{}, fmt.Errorf("missing closing quote %q in %q", c, rawPred)
		}
		value = StringValue(rawPred[cursor+1 : len(rawPred)-1])
	default:
		return PatternAttr{}, fmt.Errorf("invalid character %q in %q", c, rawPred)
	}

	if value.Type == AttrString && op != OpEq && op != OpNe {
		return PatternAttr{}, fmt.Errorf("%w: invalid operator %s for string attribute %q", ErrAttributeTypeMismatch, op, key)
	}

	return PatternAttr{Key: key, Op: op, Value: value, Type: value.Type}, nil
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsDataAttrSatisfied reports whether a concrete data attribute value
// satisfies this predicate (spec §4.4.1).
func (a PatternAttr) IsDataAttrSatisfied(dataAttr AttrValue, present bool) bool {
	if !present {
		return false
	}
	switch a.Op {
	case OpEq:
		return dataAttr.Equal(a.Value)
	case OpNe:
		return !dataAttr.Equal(a.Value)
	default:
		cmp, err := dataAttr.Compare(a.Value)
		if err != nil {
			return false
		}
		switch a.Op {
		case OpGt:
			return cmp > 0
		case OpGe:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		case OpLe:
			return cmp <= 0
		}
		return false
	}
}
