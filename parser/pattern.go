// Package parser reads the pattern text format (spec §6) into a
// planner.PatternGraph. Grounded on original_source/src/parser/mod.rs's
// PatternParser (line-oriented Count/vertex/edge/attr sections), with
// its panic-on-malformed-input behavior translated to Go error returns
// per this repo's no-panic-on-bad-input convention.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wbrown/graphmatch/planner"
	"github.com/wbrown/graphmatch/schemas"
)

// ParsePattern reads the pattern text format from r: a header line
// "V E VA EA", then V vertex lines, E edge lines, VA vertex-attribute
// lines, and EA edge-attribute lines, and returns the raw text (for use
// as a plan-cache key) plus the built pattern graph.
func ParsePattern(r io.Reader) (text string, pattern *planner.PatternGraph, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading pattern: %s", schemas.ErrInvalidPlan, err)
	}
	text = string(data)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	nextLine := func() (string, bool) {
		for scanner.Scan() {
			line++
			l := scanner.Text()
			if strings.TrimSpace(l) == "" {
				continue
			}
			return l, true
		}
		return "", false
	}

	header, ok := nextLine()
	if !ok {
		return text, nil, fmt.Errorf("%w: missing count header line", schemas.ErrInvalidPlan)
	}
	counts := strings.Fields(header)
	if len(counts) != 4 {
		return text, nil, fmt.Errorf("%w: count header %q: expected 4 fields \"V E VA EA\"", schemas.ErrInvalidPlan, header)
	}
	vCnt, e1 := strconv.Atoi(counts[0])
	eCnt, e2 := strconv.Atoi(counts[1])
	vaCnt, e3 := strconv.Atoi(counts[2])
	eaCnt, e4 := strconv.Atoi(counts[3])
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return text, nil, fmt.Errorf("%w: count header %q: non-integer count", schemas.ErrInvalidPlan, header)
	}

	vLabels := map[schemas.Vid]schemas.Label{}
	vAttrs := map[schemas.Vid]schemas.PatternAttr{}
	type edgeSpec struct {
		src, dst schemas.Vid
		label    schemas.Label
	}
	edges := map[schemas.Eid]edgeSpec{}
	eAttrs := map[schemas.Eid]schemas.PatternAttr{}
	vOrder := make([]schemas.Vid, 0, vCnt)
	eOrder := make([]schemas.Eid, 0, eCnt)

	for i := 0; i < vCnt; i++ {
		l, ok := nextLine()
		if !ok {
			return text, nil, fmt.Errorf("%w: missing vertex line %d", schemas.ErrInvalidPlan, i+1)
		}
		fields := strings.Fields(l)
		if len(fields) < 2 {
			return text, nil, fmt.Errorf("%w: vertex line %q: expected \"<vid> <label>\"", schemas.ErrInvalidPlan, l)
		}
		vLabels[fields[0]] = fields[1]
		vOrder = append(vOrder, fields[0])
	}

	for i := 0; i < eCnt; i++ {
		l, ok := nextLine()
		if !ok {
			return text, nil, fmt.Errorf("%w: missing edge line %d", schemas.ErrInvalidPlan, i+1)
		}
		fields := strings.Fields(l)
		if len(fields) < 4 {
			return text, nil, fmt.Errorf("%w: edge line %q: expected \"<eid> <src_vid> <dst_vid> <label>\"", schemas.ErrInvalidPlan, l)
		}
		edges[fields[0]] = edgeSpec{src: fields[1], dst: fields[2], label: fields[3]}
		eOrder = append(eOrder, fields[0])
	}

	for i := 0; i < vaCnt; i++ {
		l, ok := nextLine()
		if !ok {
			return text, nil, fmt.Errorf("%w: missing vertex attribute line %d", schemas.ErrInvalidPlan, i+1)
		}
		fields := strings.Fields(l)
		if len(fields) < 3 {
			return text, nil, fmt.Errorf("%w: vertex attribute line %q: expected \"<vid> <key> <op><value>\"", schemas.ErrInvalidPlan, l)
		}
		rawPred := strings.Join(fields[2:], "")
		attr, err := schemas.ParsePatternAttrRaw(fields[1], rawPred)
		if err != nil {
			return text, nil, err
		}
		vAttrs[fields[0]] = attr
	}

	for i := 0; i < eaCnt; i++ {
		l, ok := nextLine()
		if !ok {
			return text, nil, fmt.Errorf("%w: missing edge attribute line %d", schemas.ErrInvalidPlan, i+1)
		}
		fields := strings.Fields(l)
		if len(fields) < 3 {
			return text, nil, fmt.Errorf("%w: edge attribute line %q: expected \"<eid> <key> <op><value>\"", schemas.ErrInvalidPlan, l)
		}
		rawPred := strings.Join(fields[2:], "")
		attr, err := schemas.ParsePatternAttrRaw(fields[1], rawPred)
		if err != nil {
			return text, nil, err
		}
		eAttrs[fields[0]] = attr
	}

	vids := map[schemas.Vid]struct{}{}
	vertices := make([]schemas.PatternVertex, 0, vCnt)
	for _, vid := range vOrder {
		var attrPtr *schemas.PatternAttr
		if a, ok := vAttrs[vid]; ok {
			attrPtr = &a
		}
		vertices = append(vertices, schemas.PatternVertex{Vid: vid, Label: vLabels[vid], Attr: attrPtr})
		vids[vid] = struct{}{}
	}

	edgeList := make([]schemas.PatternEdge, 0, eCnt)
	for _, eid := range eOrder {
		spec := edges[eid]
		if _, ok := vids[spec.src]; !ok {
			return text, nil, fmt.Errorf("%w: edge %q references unknown src vid %q", schemas.ErrInvalidPlan, eid, spec.src)
		}
		if _, ok := vids[spec.dst]; !ok {
			return text, nil, fmt.Errorf("%w: edge %q references unknown dst vid %q", schemas.ErrInvalidPlan, eid, spec.dst)
		}
		var attrPtr *schemas.PatternAttr
		if a, ok := eAttrs[eid]; ok {
			attrPtr = &a
		}
		edgeList = append(edgeList, schemas.PatternEdge{Eid: eid, SrcVid: spec.src, DstVid: spec.dst, Label: spec.label, Attr: attrPtr})
	}

	return text, planner.BuildPatternGraph(vertices, edgeList), nil
}
