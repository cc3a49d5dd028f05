package ctx

import (
	"fmt"
	"sync"

	"github.com/wbrown/graphmatch/schemas"
)

// MatchingCtx is the mutable execution state for one query: bucket
// blocks, pattern lookups, and the grouped_partial_matches collector
// (spec §3). Lives for one query (spec §3 "MatchingCtx lives for one
// query"). Mutations are serialised behind mu; producers may only
// append (spec §5).
type MatchingCtx struct {
	mu sync.Mutex

	planData schemas.PlanData

	expandedDataVids map[schemas.Vid]struct{}

	fBlock map[string]*FBucket
	aBlock map[string]*ABucket
	cBlock map[string]*CBucket
	tBlock map[string]*TBucket

	groupedPartialMatches [][]*Graph
}

// New builds a fresh MatchingCtx over a compiled plan.
func New(plan schemas.PlanData) *MatchingCtx {
	return &MatchingCtx{
		planData:         plan.Clone(),
		expandedDataVids: map[schemas.Vid]struct{}{},
		fBlock:           map[string]*FBucket{},
		aBlock:           map[string]*ABucket{},
		cBlock:           map[string]*CBucket{},
		tBlock:           map[string]*TBucket{},
	}
}

func resolveVarName(targetVar string) (string, error) {
	_, name, err := schemas.SplitVar(targetVar)
	if err != nil {
		return "", fmt.Errorf("%w: %s", schemas.ErrInvalidPlan, err)
	}
	return name, nil
}

// PatternVs/PatternEs expose the plan's pattern graph.
func (c *MatchingCtx) PatternVs() map[schemas.Vid]schemas.PatternVertex { return c.planData.PatternVs }
func (c *MatchingCtx) PatternEs() map[schemas.Eid]schemas.PatternEdge   { return c.planData.PatternEs }

func (c *MatchingCtx) GetPatternV(vid schemas.Vid) (schemas.PatternVertex, error) {
	v, ok := c.planData.PatternVs[vid]
	if !ok {
		return schemas.PatternVertex{}, fmt.Errorf("%w: no pattern vertex %q", schemas.ErrInvariantViolation, vid)
	}
	return v, nil
}

func (c *MatchingCtx) GetPatternE(eid schemas.Eid) (schemas.PatternEdge, error) {
	e, ok := c.planData.PatternEs[eid]
	if !ok {
		return schemas.PatternEdge{}, fmt.Errorf("%w: no pattern edge %q", schemas.ErrInvariantViolation, eid)
	}
	return e, nil
}

// FetchPatternEBatch resolves a list of eids into pattern edges,
// skipping any that aren't found.
func (c *MatchingCtx) FetchPatternEBatch(eids []schemas.Eid) []schemas.PatternEdge {
	out := make([]schemas.PatternEdge, 0, len(eids))
	for _, eid := range eids {
		if e, ok := c.planData.PatternEs[eid]; ok {
			out = append(out, e)
		}
	}
	return out
}

// UpdateExpandedDataVids records data vids that have already been
// expanded through. Nothing reads this set back; GetAdj skips edges
// already present in a partial match by checking the matched graph's
// own eids.
func (c *MatchingCtx) UpdateExpandedDataVids(vids map[schemas.Vid]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for v := range vids {
		c.expandedDataVids[v] = struct{}{}
	}
}

// --- F block ---

func (c *MatchingCtx) InitFBlock(targetVar string) error {
	key, err := resolveVarName(targetVar)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fBlock[key] = NewFBucket()
	return nil
}

// AppendToFBlock appends a matched DynGraph and its frontier vid to the
// target F bucket (used by Init, spec §4.4.1).
func (c *MatchingCtx) AppendToFBlock(targetVar string, matched *Graph, frontierVid schemas.Vid) error {
	key, err := resolveVarName(targetVar)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.fBlock[key]
	if !ok {
		return fmt.Errorf("%w: f-block %q not initialized", schemas.ErrInvariantViolation, key)
	}
	idx := len(bucket.AllMatched)
	bucket.AllMatched = append(bucket.AllMatched, matched)
	bucket.MatchedWithFrontiers[idx] = append(bucket.MatchedWithFrontiers[idx], frontierVid)
	return nil
}

func (c *MatchingCtx) UpdateFBlock(targetVar string, bucket *FBucket) error {
	key, err := resolveVarName(targetVar)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fBlock[key] = bucket
	return nil
}

// PopFromFBlock removes and returns the named F bucket (used by
// GetAdj, spec §4.4.2).
func (c *MatchingCtx) PopFromFBlock(singleOp string) (*FBucket, error) {
	_, key, err := schemas.SplitVar(singleOp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schemas.ErrInvalidPlan, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.fBlock[key]
	if !ok {
		return nil, fmt.Errorf("%w: f-block %q missing", schemas.ErrInvariantViolation, key)
	}
	delete(c.fBlock, key)
	return bucket, nil
}

// --- A block ---

func (c *MatchingCtx) UpdateABlock(targetVar string, bucket *ABucket) error {
	key, err := resolveVarName(targetVar)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aBlock[key] = bucket
	return nil
}

// PopGroupByPatFromABlock removes and returns the ExpandGraph group for
// the given consuming pattern vid from the A bucket named by singleOp
// (used by Intersect, spec §4.4.3).
func (c *MatchingCtx) PopGroupByPatFromABlock(singleOp string, currPatVid schemas.Vid) ([]*Expand, error) {
	_, key, err := schemas.SplitVar(singleOp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schemas.ErrInvalidPlan, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.aBlock[key]
	if !ok {
		return nil, fmt.Errorf("%w: a-block %q missing", schemas.ErrInvariantViolation, key)
	}
	group := bucket.NextPatGroupedExpanding[currPatVid]
	delete(bucket.NextPatGroupedExpanding, currPatVid)
	return group, nil
}

// --- C block ---

func (c *MatchingCtx) UpdateCBlock(targetVar string, bucket *CBucket) error {
	key, err := resolveVarName(targetVar)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cBlock[key] = bucket
	return nil
}

// PopFromCBlock removes and returns the named C bucket (used by
// Foreach, spec §4.4.4).
func (c *MatchingCtx) PopFromCBlock(singleOp string) (*CBucket, error) {
	_, key, err := schemas.SplitVar(singleOp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schemas.ErrInvalidPlan, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.cBlock[key]
	if !ok {
		return nil, fmt.Errorf("%w: c-block %q missing", schemas.ErrInvariantViolation, key)
	}
	delete(c.cBlock, key)
	return bucket, nil
}

// --- T block ---

func (c *MatchingCtx) UpdateTBlock(targetVar string, bucket *TBucket) error {
	key, err := resolveVarName(targetVar)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tBlock[key] = bucket
	return nil
}

// PopFromTBlock removes and returns the named T bucket (used by
// Intersect(Tx), spec §4.4.3 mode 3).
func (c *MatchingCtx) PopFromTBlock(singleOp string) (*TBucket, error) {
	_, key, err := schemas.SplitVar(singleOp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schemas.ErrInvalidPlan, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.tBlock[key]
	if !ok {
		return nil, fmt.Errorf("%w: t-block %q missing", schemas.ErrInvariantViolation, key)
	}
	delete(c.tBlock, key)
	return bucket, nil
}

// --- report ---

// AppendGroupedPartialMatches pushes one F bucket's surviving matches
// as a single group (spec §4.4.5 Report).
func (c *MatchingCtx) AppendGroupedPartialMatches(group []*Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groupedPartialMatches = append(c.groupedPartialMatches, group)
}

// DrainGroupedPartialMatches empties and returns the collector.
func (c *MatchingCtx) DrainGroupedPartialMatches() [][]*Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.groupedPartialMatches
	c.groupedPartialMatches = nil
	return out
}

// AllFBucketKeys returns every currently-live F-block variable name,
// used by Report to drain every f^v (spec §4.4.5).
func (c *MatchingCtx) AllFBucketKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.fBlock))
	for k := range c.fBlock {
		keys = append(keys, k)
	}
	return keys
}
