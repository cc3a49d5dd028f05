package storage

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/wbrown/graphmatch/schemas"
)

// Neo4jAdapter queries a Neo4j graph database, building Cypher per call
// and letting the driver's session pooling amortise connections.
// Grounded on original_source's storage/neo4j.rs: the same MATCH/WHERE
// shape, elementId()-as-vid convention, and a constraint fragment for
// every PatternAttr.
type Neo4jAdapter struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *log.Logger
}

// Neo4jConfig names the connection parameters the teacher's adapter
// reads from its environment; here they're plain constructor args so
// ConfigError surfaces at call time rather than via package-level env
// lookups.
type Neo4jConfig struct {
	URI, Username, Password, Database string
}

func NewNeo4jAdapter(ctx context.Context, cfg Neo4jConfig, logger *log.Logger) (*Neo4jAdapter, error) {
	if cfg.URI == "" || cfg.Username == "" {
		return nil, fmt.Errorf("%w: neo4j adapter needs URI and Username", schemas.ErrConfig)
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to neo4j: %v", schemas.ErrConfig, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("%w: neo4j connectivity check: %v", schemas.ErrConfig, err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Neo4jAdapter{driver: driver, database: cfg.Database, logger: logger}, nil
}

func (a *Neo4jAdapter) Close() error { return a.driver.Close(context.Background()) }

func (a *Neo4jAdapter) session(ctx context.Context) neo4j.SessionWithContext {
	return a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.database, AccessMode: neo4j.AccessModeRead})
}

// attrConstraint renders a PatternAttr as a Cypher boolean expression
// over a bound variable, mirroring PatternAttr::to_neo4j_constraint.
func attrConstraint(field string, attr *schemas.PatternAttr) string {
	if attr == nil {
		return ""
	}
	var value string
	if attr.Type == schemas.AttrString {
		value = fmt.Sprintf("%q", attr.Value.String)
	} else {
		value = attr.Value.String2()
	}
	return fmt.Sprintf("%s.%s %s %s", field, attr.Key, cypherOp(attr.Op), value)
}

func cypherOp(op schemas.Op) string {
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

func squash(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

func (a *Neo4jAdapter) run(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session := a.session(ctx)
	defer session.Close(ctx)
	result, err := session.Run(ctx, squash(query), params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func recordString(rec *neo4j.Record, key string) string {
	raw, ok := rec.Get(key)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func recordAttrs(rec *neo4j.Record, key string) map[string]schemas.AttrValue {
	raw, ok := rec.Get(key)
	if !ok {
		return nil
	}
	props, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]schemas.AttrValue, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case int64:
			out[k] = schemas.IntValue(val)
		case float64:
			out[k] = schemas.FloatValue(val)
		case string:
			out[k] = schemas.StringValue(val)
		}
	}
	return out
}

func (a *Neo4jAdapter) GetV(ctx context.Context, vid schemas.Vid) (schemas.DataVertex, bool) {
	query := `
		MATCH (v)
		WHERE elementId(v) = $vid
		RETURN properties(v) AS props, labels(v) AS v_label
	`
	records, err := a.run(ctx, query, map[string]any{"vid": vid})
	if err != nil || len(records) == 0 {
		if err != nil {
			a.logger.Printf("graphmatch/storage: neo4j GetV(%s): %v", vid, err)
		}
		return schemas.DataVertex{}, false
	}
	labelsRaw, _ := records[0].Get("v_label")
	labels, _ := labelsRaw.([]any)
	label := ""
	if len(labels) > 0 {
		label, _ = labels[0].(string)
	}
	return schemas.DataVertex{Vid: vid, Label: schemas.Label(label), Attrs: recordAttrs(records[0], "props")}, true
}

func (a *Neo4jAdapter) LoadV(ctx context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataVertex {
	query := fmt.Sprintf("MATCH (v:%s)\n", label)
	if attr != nil {
		query += fmt.Sprintf("WHERE %s\n", attrConstraint("v", attr))
	}
	query += "RETURN properties(v) AS props, elementId(v) AS vid"

	records, err := a.run(ctx, query, nil)
	if err != nil {
		a.logger.Printf("graphmatch/storage: neo4j LoadV(%s): %v", label, err)
		return nil
	}
	out := make([]schemas.DataVertex, 0, len(records))
	for _, rec := range records {
		out = append(out, schemas.DataVertex{Vid: schemas.Vid(recordString(rec, "vid")), Label: label, Attrs: recordAttrs(rec, "props")})
	}
	return out
}

func (a *Neo4jAdapter) edgeQuery(matchClause, whereClause string, label schemas.Label) ([]schemas.DataEdge, error) {
	query := matchClause + "\n"
	if whereClause != "" {
		query += "WHERE " + whereClause + "\n"
	}
	query += `
		RETURN elementId(e) AS eid, properties(e) AS props,
		       elementId(src) AS src_vid, elementId(dst) AS dst_vid
	`
	records, err := a.run(context.Background(), query, nil)
	if err != nil {
		return nil, err
	}
	out := make([]schemas.DataEdge, 0, len(records))
	for _, rec := range records {
		out = append(out, schemas.DataEdge{
			Eid:    schemas.Eid(recordString(rec, "eid")),
			SrcVid: schemas.Vid(recordString(rec, "src_vid")),
			DstVid: schemas.Vid(recordString(rec, "dst_vid")),
			Label:  label,
			Attrs:  recordAttrs(rec, "props"),
		})
	}
	return out
}

func (a *Neo4jAdapter) LoadE(_ context.Context, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	match := fmt.Sprintf("MATCH (src)-[e:%s]->(dst)", label)
	where := ""
	if attr != nil {
		where = attrConstraint("e", attr)
	}
	out, err := a.edgeQuery(match, where, label)
	if err != nil {
		a.logger.Printf("graphmatch/storage: neo4j LoadE(%s): %v", label, err)
		return nil
	}
	return out
}

func (a *Neo4jAdapter) LoadEWithSrc(_ context.Context, srcVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	match := fmt.Sprintf("MATCH (src)-[e:%s]->(dst)", label)
	where := fmt.Sprintf("elementId(src) = %q", string(srcVid))
	if attr != nil {
		where += " AND " + attrConstraint("e", attr)
	}
	out, err := a.edgeQuery(match, where, label)
	if err != nil {
		a.logger.Printf("graphmatch/storage: neo4j LoadEWithSrc(%s): %v", label, err)
		return nil
	}
	return out
}

func (a *Neo4jAdapter) LoadEWithDst(_ context.Context, dstVid schemas.Vid, label schemas.Label, attr *schemas.PatternAttr) []schemas.DataEdge {
	match := fmt.Sprintf("MATCH (src)-[e:%s]->(dst)", label)
	where := fmt.Sprintf("elementId(dst) = %q", string(dstVid))
	if attr != nil {
		where += " AND " + attrConstraint("e", attr)
	}
	out, err := a.edgeQuery(match, where, label)
	if err != nil {
		a.logger.Printf("graphmatch/storage: neo4j LoadEWithDst(%s): %v", label, err)
		return nil
	}
	return out
}

// LoadEWithSrcAndDstFilter and its dst-symmetric twin push the opposite
// endpoint's label/predicate into the same MATCH instead of the
// two-query composition an engine-side filter would need — spec §6
// names both as first-class adapter methods for exactly this reason.
func (a *Neo4jAdapter) LoadEWithSrcAndDstFilter(_ context.Context, srcVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, dstLabel schemas.Label, dstAttr *schemas.PatternAttr) []schemas.DataEdge {
	match := fmt.Sprintf("MATCH (src)-[e:%s]->(dst:%s)", eLabel, dstLabel)
	where := fmt.Sprintf("elementId(src) = %q", string(srcVid))
	if eAttr != nil {
		where += " AND " + attrConstraint("e", eAttr)
	}
	if dstAttr != nil {
		where += " AND " + attrConstraint("dst", dstAttr)
	}
	out, err := a.edgeQuery(match, where, eLabel)
	if err != nil {
		a.logger.Printf("graphmatch/storage: neo4j LoadEWithSrcAndDstFilter(%s): %v", eLabel, err)
		return nil
	}
	return out
}

func (a *Neo4jAdapter) LoadEWithDstAndSrcFilter(_ context.Context, dstVid schemas.Vid, eLabel schemas.Label, eAttr *schemas.PatternAttr, srcLabel schemas.Label, srcAttr *schemas.PatternAttr) []schemas.DataEdge {
	match := fmt.Sprintf("MATCH (src:%s)-[e:%s]->(dst)", srcLabel, eLabel)
	where := fmt.Sprintf("elementId(dst) = %q", string(dstVid))
	if eAttr != nil {
		where += " AND " + attrConstraint("e", eAttr)
	}
	if srcAttr != nil {
		where += " AND " + attrConstraint("src", srcAttr)
	}
	out, err := a.edgeQuery(match, where, eLabel)
	if err != nil {
		a.logger.Printf("graphmatch/storage: neo4j LoadEWithDstAndSrcFilter(%s): %v", eLabel, err)
		return nil
	}
	return out
}
