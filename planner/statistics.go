package planner

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wbrown/graphmatch/schemas"
)

// Statistics is the basic order calculator's input (spec §6): per-label
// vertex/edge counts only. Grounded on original_source's
// planner/order_calc.rs Statistics struct.
type Statistics struct {
	VCount    int                   `json:"v_cnt"`
	ECount    int                   `json:"e_cnt"`
	VLabelCnt map[schemas.Label]int `json:"v_label_cnt"`
	ELabelCnt map[schemas.Label]int `json:"e_label_cnt"`
}

// LoadStatistics parses a basic statistics JSON document.
func LoadStatistics(r io.Reader) (*Statistics, error) {
	var s Statistics
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: parsing statistics: %v", schemas.ErrConfig, err)
	}
	return &s, nil
}

// AttributeHistogram is an equal-width histogram over an attribute's
// numeric range, used to interpolate range-predicate selectivity.
type AttributeHistogram struct {
	Bins        []float64      `json:"bins"`
	Counts      []int          `json:"counts"`
	ValueCounts map[string]int `json:"value_counts"`
}

// OperatorSelectivity precomputes Eq/Ne selectivity so the order
// calculator doesn't need to touch the histogram for those operators.
type OperatorSelectivity struct {
	Eq float64 `json:"eq"`
	Ne float64 `json:"ne"`
}

// AttributeStats is one column's worth of advanced statistics.
type AttributeStats struct {
	Count         int                 `json:"count"`
	NullCount     int                 `json:"null_count"`
	DistinctCount int                 `json:"distinct_count"`
	Histogram     AttributeHistogram  `json:"histogram"`
	Selectivity   OperatorSelectivity `json:"selectivity"`
	Type          string              `json:"type"`
}

// AdvancedStatistics is the advanced order calculator's input (spec
// §6): label counts plus per-(label, attribute) selectivity stats.
// Grounded on original_source's planner/advanced_order_calc.rs
// Statistics struct.
type AdvancedStatistics struct {
	VCount     int                                          `json:"v_cnt"`
	ECount     int                                          `json:"e_cnt"`
	VLabelCnt  map[schemas.Label]int                        `json:"v_label_cnt"`
	ELabelCnt  map[schemas.Label]int                        `json:"e_label_cnt"`
	VAttrStats map[schemas.Label]map[string]AttributeStats `json:"v_attr_stats"`
	EAttrStats map[schemas.Label]map[string]AttributeStats `json:"e_attr_stats"`
}

// LoadAdvancedStatistics parses an advanced statistics JSON document.
func LoadAdvancedStatistics(r io.Reader) (*AdvancedStatistics, error) {
	var s AdvancedStatistics
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: parsing advanced statistics: %v", schemas.ErrConfig, err)
	}
	return &s, nil
}

func (s *AdvancedStatistics) vAttrStats(label schemas.Label, key string) (AttributeStats, bool) {
	byKey, ok := s.VAttrStats[label]
	if !ok {
		return AttributeStats{}, false
	}
	stats, ok := byKey[key]
	return stats, ok
}
