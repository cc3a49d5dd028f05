package schemas

// VertexLike is implemented by both PatternVertex and DataVertex so
// DynGraph/ExpandGraph can be generic over "which side of the match"
// a vertex belongs to.
type VertexLike interface {
	VertexID() Vid
	VertexLabel() Label
}

// EdgeLike is the edge analogue of VertexLike.
type EdgeLike interface {
	EdgeID() Eid
	Src() Vid
	Dst() Vid
	EdgeLabel() Label
}

// Contains reports whether an edge is incident on vid.
func Contains(e EdgeLike, vid Vid) bool {
	return e.Src() == vid || e.Dst() == vid
}

// PatternVertex is a query-side vertex: a stable id, a label, and an
// optional attribute predicate.
type PatternVertex struct {
	Vid   Vid          `json:"vid"`
	Label Label        `json:"label"`
	Attr  *PatternAttr `json:"attr,omitempty"`
}

func (v PatternVertex) VertexID() Vid      { return v.Vid }
func (v PatternVertex) VertexLabel() Label { return v.Label }

// PatternEdge is a query-side edge.
type PatternEdge struct {
	Eid    Eid          `json:"eid"`
	SrcVid Vid          `json:"src_vid"`
	DstVid Vid          `json:"dst_vid"`
	Label  Label        `json:"label"`
	Attr   *PatternAttr `json:"attr,omitempty"`
}

func (e PatternEdge) EdgeID() Eid      { return e.Eid }
func (e PatternEdge) EdgeLabel() Label { return e.Label }
func (e PatternEdge) Src() Vid         { return e.SrcVid }
func (e PatternEdge) Dst() Vid         { return e.DstVid }

// DataVertex is a vertex as returned by the storage adapter.
type DataVertex struct {
	Vid   Vid                  `json:"vid"`
	Label Label                `json:"label"`
	Attrs map[string]AttrValue `json:"attrs"`
}

func (v DataVertex) VertexID() Vid      { return v.Vid }
func (v DataVertex) VertexLabel() Label { return v.Label }

// DataEdge is an edge as returned by the storage adapter.
type DataEdge struct {
	Eid    Eid                  `json:"eid"`
	SrcVid Vid                  `json:"src_vid"`
	DstVid Vid                  `json:"dst_vid"`
	Label  Label                `json:"label"`
	Attrs  map[string]AttrValue `json:"attrs"`
}

func (e DataEdge) EdgeID() Eid      { return e.Eid }
func (e DataEdge) EdgeLabel() Label { return e.Label }
func (e DataEdge) Src() Vid         { return e.SrcVid }
func (e DataEdge) Dst() Vid         { return e.DstVid }
