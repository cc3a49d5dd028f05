// Package resultdump renders matched DynGraphs as a table keyed by
// pattern vid/eid, one row per match. Grounded on
// original_source/src/utils/pretty_dump.rs's PrettyDump trait and
// src/result_dump/mod.rs's ResultDumper, swapping Polars' DataFrame for
// the teacher's tablewriter-based markdown table since this repo
// carries no dataframe dependency.
package resultdump

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	gctx "github.com/wbrown/graphmatch/ctx"
	"github.com/wbrown/graphmatch/schemas"
)

// Dumper formats a set of matched graphs against the pattern they were
// matched from.
type Dumper struct {
	Results   []*gctx.Graph
	PatternVs map[schemas.Vid]schemas.PatternVertex
	PatternEs map[schemas.Eid]schemas.PatternEdge

	// Detailed prints every attribute (pretty_dump_detailed); false
	// prints just label + vid (pretty_dump_simplified).
	Detailed bool
	// Colored applies fatih/color ANSI styling to labels and values.
	Colored bool
}

// NewDumper builds a Dumper for results matched against plan.
func NewDumper(results []*gctx.Graph, plan schemas.PlanData) *Dumper {
	return &Dumper{Results: results, PatternVs: plan.PatternVs, PatternEs: plan.PatternEs}
}

func (d *Dumper) columns() []string {
	cols := make([]string, 0, len(d.PatternVs)+len(d.PatternEs))
	for vid := range d.PatternVs {
		cols = append(cols, string(vid))
	}
	for eid := range d.PatternEs {
		cols = append(cols, string(eid))
	}
	sort.Strings(cols)
	return cols
}

// Table renders the results as a markdown table, one column per
// pattern vid/eid and one row per match, in the style of the teacher's
// executor/table_formatter.go.
func (d *Dumper) Table() string {
	if len(d.Results) == 0 {
		return "_Empty result_"
	}

	columns := d.columns()
	vidCols := make(map[string]bool, len(d.PatternVs))
	for vid := range d.PatternVs {
		vidCols[string(vid)] = true
	}

	rows := make([][]string, 0, len(d.Results))
	for _, g := range d.Results {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = d.cell(g, col, vidCols[col])
		}
		rows = append(rows, row)
	}

	tableString := &strings.Builder{}
	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(columns)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(tableString, "\n_%d rows_\n", len(rows))
	return tableString.String()
}

// cell renders the single matched entity for pattern id col within g,
// or "" if the match has no entry for it (shouldn't happen for a fully
// merged result, but partial/explain dumps can hit this).
func (d *Dumper) cell(g *gctx.Graph, col string, isVertex bool) string {
	if isVertex {
		vids := g.PatternToVid[col]
		for vid := range vids {
			if v, ok := g.VEntities[vid]; ok {
				return d.formatVertex(v)
			}
		}
		return ""
	}
	eids := g.PatternToEid[col]
	for eid := range eids {
		if e, ok := g.EEntities[eid]; ok {
			return d.formatEdge(e)
		}
	}
	return ""
}

func (d *Dumper) formatVertex(v schemas.DataVertex) string {
	label := fmt.Sprintf(":%s", v.Label)
	if d.Colored {
		label = color.RedString(label)
	}
	if !d.Detailed {
		vid := v.Vid
		if d.Colored {
			vid = color.CyanString(vid)
		}
		return fmt.Sprintf("(%s %s)", label, vid)
	}
	attrs := formatAttrs(v.Attrs, d.Colored)
	if attrs == "{}" {
		return fmt.Sprintf("(%s)", label)
	}
	return fmt.Sprintf("(%s %s)", label, attrs)
}

func (d *Dumper) formatEdge(e schemas.DataEdge) string {
	label := fmt.Sprintf(":%s", e.Label)
	if d.Colored {
		label = color.RedString(label)
	}
	if !d.Detailed {
		return fmt.Sprintf("[%s]", label)
	}
	attrs := formatAttrs(e.Attrs, d.Colored)
	if attrs == "{}" {
		return fmt.Sprintf("[%s]", label)
	}
	return fmt.Sprintf("[%s %s]", label, attrs)
}

func formatAttrs(attrs map[string]schemas.AttrValue, colored bool) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		fmt.Fprintf(&b, "%s: ", k)
		b.WriteString(formatAttrValue(attrs[k], colored))
		if i < len(keys)-1 {
			b.WriteString(", ")
		}
	}
	b.WriteByte('}')
	return b.String()
}

func formatAttrValue(v schemas.AttrValue, colored bool) string {
	switch v.Type {
	case schemas.AttrInt:
		s := v.String2()
		if colored {
			return color.MagentaString(s)
		}
		return s
	case schemas.AttrFloat:
		s := v.String2()
		if colored {
			return color.YellowString(s)
		}
		return s
	default:
		s := fmt.Sprintf("%q", v.String)
		if colored {
			return color.GreenString(s)
		}
		return s
	}
}
