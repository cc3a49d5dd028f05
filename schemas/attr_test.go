package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttrValuePrecedenceIntFloatString(t *testing.T) {
	assert.Equal(t, IntValue(42), ParseAttrValue("42"))
	assert.Equal(t, FloatValue(3.5), ParseAttrValue("3.5"))
	assert.Equal(t, StringValue("hello"), ParseAttrValue("hello"))
}

func TestAttrValueEqualCrossNumeric(t *testing.T) {
	assert.True(t, IntValue(3).Equal(FloatValue(3.0)))
	assert.False(t, IntValue(3).Equal(StringValue("3")))
	assert.True(t, StringValue("a").Equal(StringValue("a")))
	assert.False(t, StringValue("a").Equal(StringValue("b")))
}

func TestAttrValueCompareRejectsStringVsNumeric(t *testing.T) {
	_, err := StringValue("a").Compare(IntValue(1))
	assert.Error(t, err)

	cmp, err := IntValue(1).Compare(FloatValue(2.0))
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestParsePatternAttrRawNumeric(t *testing.T) {
	attr, err := ParsePatternAttrRaw("age", ">21")
	require.NoError(t, err)
	assert.Equal(t, OpGt, attr.Op)
	assert.Equal(t, int64(21), attr.Value.Int)
}

func TestParsePatternAttrRawQuotedString(t *testing.T) {
	attr, err := ParsePatternAttrRaw("name", "='alice'")
	require.NoError(t, err)
	assert.Equal(t, OpEq, attr.Op)
	assert.Equal(t, "alice", attr.Value.String)
}

func TestParsePatternAttrRawRejectsRangeOpOnString(t *testing.T) {
	_, err := ParsePatternAttrRaw("name", ">'alice'")
	assert.ErrorIs(t, err, ErrAttributeTypeMismatch)
}

func TestParsePatternAttrRawRejectsUnclosedQuote(t *testing.T) {
	_, err := ParsePatternAttrRaw("name", "='alice")
	assert.Error(t, err)
}

func TestParsePatternAttrRawRejectsMissingValue(t *testing.T) {
	_, err := ParsePatternAttrRaw("age", ">")
	assert.Error(t, err)
}

func TestIsDataAttrSatisfied(t *testing.T) {
	gt21 := PatternAttr{Key: "age", Op: OpGt, Value: IntValue(21)}
	assert.True(t, gt21.IsDataAttrSatisfied(IntValue(30), true))
	assert.False(t, gt21.IsDataAttrSatisfied(IntValue(10), true))
	assert.False(t, gt21.IsDataAttrSatisfied(IntValue(30), false))

	eqName := PatternAttr{Key: "name", Op: OpEq, Value: StringValue("bob")}
	assert.True(t, eqName.IsDataAttrSatisfied(StringValue("bob"), true))
	assert.False(t, eqName.IsDataAttrSatisfied(StringValue("alice"), true))
}
