package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wbrown/graphmatch/schemas"
)

func chainPattern() *PatternGraph {
	return BuildPatternGraph(
		[]schemas.PatternVertex{
			{Vid: "a", Label: "person"},
			{Vid: "b", Label: "person"},
			{Vid: "c", Label: "company"},
		},
		[]schemas.PatternEdge{
			{Eid: "e1", SrcVid: "a", DstVid: "b", Label: "friend"},
			{Eid: "e2", SrcVid: "b", DstVid: "c", Label: "works_at"},
		},
	)
}

func TestBasicOrderCalculatorPrefersLowerCardinalityLabel(t *testing.T) {
	stats := &Statistics{
		VLabelCnt: map[schemas.Label]int{"person": 1000, "company": 10},
		ELabelCnt: map[schemas.Label]int{"friend": 500, "works_at": 10},
	}
	order := NewBasicOrderCalculator(chainPattern(), stats).Order()

	assert.Equal(t, schemas.Vid("c"), order[0])
}

func TestBasicOrderCalculatorDefaultsToZeroStatisticsWhenNil(t *testing.T) {
	order := NewBasicOrderCalculator(chainPattern(), nil).Order()
	assert.Len(t, order, 3)
}

func TestBasicOrderCalculatorBreaksTiesByVid(t *testing.T) {
	pattern := BuildPatternGraph(
		[]schemas.PatternVertex{
			{Vid: "z", Label: "person"},
			{Vid: "a", Label: "person"},
		},
		nil,
	)
	order := NewBasicOrderCalculator(pattern, nil).Order()
	assert.Equal(t, []schemas.Vid{"a", "z"}, order)
}
