package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/wbrown/graphmatch/schemas"
)

// SQLiteAdapter serves an EAV-shaped schema: vertex/edge tables plus
// attribute side-tables keyed by (entity id, key). Grounded on
// original_source's storage/sqlite.rs — same four tables and the same
// LEFT JOIN + multi-row attribute collection shape, rewritten from
// sqlx's row-streaming onto database/sql's *sql.Rows.
type SQLiteAdapter struct {
	db     *sql.DB
	logger *log.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS db_vertex (
	vid TEXT PRIMARY KEY,
	label TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vertex_label ON db_vertex(label);

CREATE TABLE IF NOT EXISTS db_edge (
	eid TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	src_vid TEXT NOT NULL,
	dst_vid TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_edge_label ON db_edge(label);
CREATE INDEX IF NOT EXISTS idx_edge_src_vid ON db_edge(src_vid);
CREATE INDEX IF NOT EXISTS idx_edge_dst_vid ON db_edge(dst_vid);

CREATE TABLE IF NOT EXISTS vertex_attribute (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	vid TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vertex_attr_vid ON vertex_attribute(vid);
CREATE INDEX IF NOT EXISTS idx_vertex_attr_key ON vertex_attribute(key);

CREATE TABLE IF NOT EXISTS edge_attribute (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	eid TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	type TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_edge_attr_eid ON edge_attribute(eid);
CREATE INDEX IF NOT EXISTS idx_edge_attr_key ON edge_attribute(key);
`

// NewSQLiteAdapter opens (and, if absent, creates) the on-disk database
// at dbPath.
func NewSQLiteAdapter(dbPath string, logger *log.Logger) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite db %q: %v", schemas.ErrConfig, dbPath, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("%w: creating sqlite schema: %v", schemas.ErrConfig, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SQLiteAdapter{db: db, logger: logger}, nil
}

func (a *SQLiteAdapter) Close() error { return a.db.Close() }

// LoadFixture inserts vertices/edges/attributes for test/demo seeding.
func (a *SQLiteAdapter) LoadFixture(ctx context.Context, vertices []schemas.DataVertex, edges []schemas.DataEdge) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, v := range vertices {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO db_vertex (vid, label) VALUES (?, ?)`, v.Vid, v.Label); err != nil {
			return fmt.Errorf("inserting vertex %s: %w", v.Vid, err)
		}
		for key, val := range v.Attrs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO vertex_attribute (vid, key, value, type) VALUES (?, ?, ?, ?)`,
				v.Vid, key, val.String2(), val.Type.String()); err != nil {
				return fmt.Errorf("inserting vertex attr %s.%s: %w", v.Vid, key, err)
			}
		}
	}
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO db_edge (eid, label, src_vid, dst_vid) VALUES (?, ?, ?, ?)`,
			e.Eid, e.Label, e.SrcVid, e.DstVid); err != nil {
			return fmt.Errorf("inserting edge %s: %w", e.Eid, err)
		}
		for key, val := range e.Attrs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO edge_attribute (eid, key, value, type) VALUES (?, ?, ?, ?)`,
				e.Eid, key, val.String2(), val.Type.String()); err != nil {
				return fmt.Errorf("inserting edge attr %s.%s: %w", e.Eid, key, err)
			}
		}
	}
	return tx.Commit()
}

func typedValue(typ, value string) schemas.AttrValue {
	switch typ {
	case "int":
		i, _ := strconv.ParseInt(value, 10, 64)
		return schemas.IntValue(i)
	case "float":
		f, _ := strconv.ParseFloat(value, 64)
		return schemas.FloatValue(f)
	default:
		return schemas.StringValue(value)
	}
}

// addAttrFilter appends an EXISTS-subquery attribute constraint, the
// way original_source's add_attr_filter does, parameterised by type so
// int/float comparisons aren't done as text. kind is "vertex" or
// "edge"; alias is the outer query's table alias (v/e); idCol is that
// table's id column (vid/eid).
func addAttrFilter(kind, alias, idCol string, attr *schemas.PatternAttr, query *string, args *[]any) {
	if attr == nil {
		return
	}
	*query += fmt.Sprintf(`
		AND EXISTS (
			SELECT 1 FROM %s_attribute
			WHERE %s = %s.%s AND key = ?
			AND type = ?`, kind, idCol, alias, idCol)
	*args = append(*args, attr.Key, attr.Type.String())
	switch attr.Type {
	case schemas.AttrInt:
		*query += fmt.Sprintf(" AND CAST(value AS INTEGER) %s ?", sqliteOp(attr.Op))
		*args = append(*args, attr.Value.Int)
	case schemas.AttrFloat:
		*query += fmt.Sprintf(" AND CAST(value AS REAL) %s ?", sqliteOp(attr.Op))
		*args = append(*args, attr.Value.Float)
	default:
		*query += fmt.Sprintf(" AND value %s ?", sqliteOp(attr.Op))
		*args = append(*args, attr.Value.String)
	}
	*query += ")"
}

func sqliteOp(op schemas.Op) string {
	switch op {
	case schemas.OpEq:
		return "="
	case schemas.OpNe:
		return "<>"
	case schemas.OpGt:
		return ">"
	case schemas.OpGe:
		return ">="
	case schemas.OpLt:
		return "<"
	case schemas.OpLe:
		return "<="
	default:
		return "="
	}
}

func (a *SQLiteAdapter) queryVertices(ctx context.Context, query string, args []any) []schemas.DataVertex {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		a.logger.Printf("graphmatch/storage: sqlite vertex query: %v", err)
		return nil
	}
	defer rows.Close()

	byVid := map[schemas.Vid]*schemas.DataVertex{}
	var order []schemas.Vid
	for rows.Next() {
		var vid, label string
		var key, value, typ sql.NullString
		if err := rows.Scan(&vid, &label, &key, &value, &typ); err != nil {
			a.logger.Printf("graphmatch/storage: sqlite vertex scan: %v", err)
			continue
		}
		v, ok := byVid[schemas.Vid(vid)]
		if !ok {
			v = &schemas.DataVertex{Vid: schemas.Vid(vid), Label: schemas.Label(label), Attrs: map[string]schemas.AttrValue{}}
			byVid[schemas.Vid(vid)] = v
			order = append(order, schemas.Vid(vid))
		}
		if key.Valid {
			v.Attrs[key.String] = typedValue(typ.String, value.String)
		}
	}
	out := make([]schemas.DataVertex, 0, len(order))
	for _, vid := range order {
		out = append(out, *byVid[vid])
	}
	return out
}

func (a *SQLiteAdapter) queryEdges(ctx context.Context, query string, args []any) []schemas.DataEdge {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		a.logger.Printf("graphmatch/storage: sqlite edge query: %v", err)
		return nil
	}
	defer rows.Close()

	byEid := map[schemas.Eid]*schemas.DataEdge{}
	var order []schemas.Eid
	for rows.Next() {
		var eid, label, srcVid, dstVid string
		var key, value, typ sql.NullString
		if err := rows.Scan(&eid, &label, &srcVid, &dstVid, &key, &value, &typ); err != nil {
			a.logger.Printf("graphmatch/storage: sqlite edge scan: %v", err)
			continue
		}
		e, ok := byEid[schemas.Eid(eid)]
		if !ok {
			e = &schemas.DataEdge{Eid: schemas.Eid(eid), Label: schemas.Label(label), SrcVid: schemas.Vid(srcVid), DstVid: schemas.Vid(dstVid), Attrs: map[string]schemas.AttrValue{}}
			byEid[schemas.Eid(eid)] = e
			order = append(order, schemas.Eid(eid))
		}
		if key.Valid {
			e.Attrs[key.String] = typedValue(typ.String, value.String)
		}
	}
	out := make([]schemas.DataEdge, 0, len(order))
	for _, eid := range order {
		out = append(out, *byEid[eid])
	}
	return out
}

func (a *SQLiteAdapter) GetV(ctx context.Context, vid schemas.Vid) (schemas.DataVertex, bool) {
	query := `
		SELECT v.vid, v.label, a.key, a.value, a.type
		FROM db_vertex v
		LEFT JOIN vertex_attribute a ON v.vid = a.vid
		WHERE v.vid = ?
	`
	vs := a.queryVertices(ctx, query, []any{vid})
	if len(vs) == 0 {
		return schemas.DataVertex{}, false
	}
	return vs[0], true
}

func (a *SQLiteAdapter) LoadV(ctx context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataVertex {
	query := `
		SELECT v.vid, v.label, a.key, a.value, a.type
		FROM db_vertex v
		LEFT JOIN vertex_attribute a ON v.vid = a.vid
		WHERE v.label = ?
	`
	args := []any{label}
	addAttrFilter("vertex", "v", "vid", attr, &query, &args)
	return a.queryVertices(ctx, query, args)
}

func (a *SQLiteAdapter) LoadE(ctx context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	query := `
		SELECT e.eid, e.label, e.src_vid, e.dst_vid, a.key, a.value, a.type
		FROM db_edge e
		LEFT JOIN edge_attribute a ON e.eid = a.eid
		WHERE e.label = ?
	`
	args := []any{label}
	addAttrFilter("edge", "e", "eid", attr, &query, &args)
	return a.queryEdges(ctx, query, args)
}

func (a *SQLiteAdapter) LoadEWithSrc(ctx context.Context, srcVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	query := `
		SELECT e.eid, e.label, e.src_vid, e.dst_vid, a.key, a.value, a.type
		FROM db_edge e
		LEFT JOIN edge_attribute a ON e.eid = a.eid
		WHERE e.src_vid = ? AND e.label = ?
	`
	args := []any{srcVid, label}
	addAttrFilter("edge", "e", "eid", attr, &query, &args)
	return a.queryEdges(ctx, query, args)
}

func (a *SQLiteAdapter) LoadEWithDst(ctx context.Context, dstVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	query := `
		SELECT e.eid, e.label, e.src_vid, e.dst_vid, a.key, a.value, a.type
		FROM db_edge e
		LEFT JOIN edge_attribute a ON e.eid = a.eid
		WHERE e.dst_vid = ? AND e.label = ?
	`
	args := []any{dstVid, label}
	addAttrFilter("edge", "e", "eid", attr, &query, &args)
	return a.queryEdges(ctx, query, args)
}

// LoadEWithSrcAndDstFilter joins in db_vertex to filter on the
// destination label in the same query; a destination attribute
// predicate, when given, is checked with one GetV per returned edge.
func (a *SQLiteAdapter) LoadEWithSrcAndDstFilter(ctx context.Context, srcVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, dstLabel schemas.Label, dstAttr *schemas.PatternAttr) []schemas.DataEdge {
	query := `
		SELECT e.eid, e.label, e.src_vid, e.dst_vid, a.key, a.value, a.type
		FROM db_edge e
		JOIN db_vertex dst ON dst.vid = e.dst_vid
		LEFT JOIN edge_attribute a ON e.eid = a.eid
		WHERE e.src_vid = ? AND e.label = ? AND dst.label = ?
	`
	args := []any{srcVid, eLabel, dstLabel}
	addAttrFilter("edge", "e", "eid", eAttr, &query, &args)
	edges := a.queryEdges(ctx, query, args)
	if dstAttr == nil {
		return edges
	}
	out := make([]schemas.DataEdge, 0, len(edges))
	for _, e := range edges {
		if dst, ok := a.GetV(ctx, e.DstVid); ok && matchesAttr(dst.Attrs, dstAttr) {
			out = append(out, e)
		}
	}
	return out
}

func (a *SQLiteAdapter) LoadEWithDstAndSrcFilter(ctx context.Context, dstVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, srcLabel schemas.Label, srcAttr *schemas.PatternAttr) []schemas.DataEdge {
	query := `
		SELECT e.eid, e.label, e.src_vid, e.dst_vid, a.key, a.value, a.type
		FROM db_edge e
		JOIN db_vertex src ON src.vid = e.src_vid
		LEFT JOIN edge_attribute a ON e.eid = a.eid
		WHERE e.dst_vid = ? AND e.label = ? AND src.label = ?
	`
	args := []any{dstVid, eLabel, srcLabel}
	addAttrFilter("edge", "e", "eid", eAttr, &query, &args)
	edges := a.queryEdges(ctx, query, args)
	if srcAttr == nil {
		return edges
	}
	out := make([]schemas.DataEdge, 0, len(edges))
	for _, e := range edges {
		if src, ok := a.GetV(ctx, e.SrcVid); ok && matchesAttr(src.Attrs, srcAttr) {
			out = append(out, e)
		}
	}
	return out
}
