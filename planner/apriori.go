package planner

import "sort"

// itemset is a canonical (sorted, deduplicated) set of variable names,
// used as both a value and a comparable map key via itemsetKey.
type itemset []string

const itemsetKeySep = "\x00"

func itemsetKey(items itemset) string {
	key := ""
	for i, it := range items {
		if i > 0 {
			key += itemsetKeySep
		}
		key += it
	}
	return key
}

func newItemset(items []string) itemset {
	dedup := map[string]struct{}{}
	for _, it := range items {
		dedup[it] = struct{}{}
	}
	out := make(itemset, 0, len(dedup))
	for it := range dedup {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

func (s itemset) contains(item string) bool {
	for _, it := range s {
		if it == item {
			return true
		}
	}
	return false
}

func (s itemset) isSubsetOf(other itemset) bool {
	for _, it := range s {
		if !other.contains(it) {
			return false
		}
	}
	return true
}

// apriori mines the maximum-size frequent itemset from dataList: the
// set of itemsets of the largest size whose support (occurrence count
// across dataList) is at least minSupport, direct port of
// original_source's utils/apriori.rs Apriori::gen_max_size_freq_set.
type apriori struct {
	dataList   []itemset
	minSupport int
}

// newApriori builds an Apriori miner; minSupport defaults to 2 when <= 0,
// mirroring AprioriBuilder's default.
func newApriori(dataList []itemset, minSupport int) *apriori {
	if minSupport <= 0 {
		minSupport = 2
	}
	return &apriori{dataList: dataList, minSupport: minSupport}
}

// genMaxSizeFreqSet returns the last non-empty frequent itemset
// generation (the maximum-size one), keyed by itemsetKey so the caller
// can still recover the itemset value alongside its support count.
func (a *apriori) genMaxSizeFreqSet() map[string]itemsetSupport {
	maxFreqSet := map[string]itemsetSupport{}
	c1 := a.findCandidates1()
	tempFreqSet := a.findFreqSet(c1)

	for len(tempFreqSet) > 0 {
		maxFreqSet = tempFreqSet
		lk := make([]itemset, 0, len(maxFreqSet))
		for _, is := range maxFreqSet {
			lk = append(lk, is.items)
		}
		ck := a.aprioriGen(lk)
		tempFreqSet = a.findFreqSet(ck)
	}

	return maxFreqSet
}

type itemsetSupport struct {
	items   itemset
	support int
}

func (a *apriori) findCandidates1() []itemset {
	seen := map[string]struct{}{}
	var items []string
	for _, data := range a.dataList {
		for _, it := range data {
			if _, ok := seen[it]; !ok {
				seen[it] = struct{}{}
				items = append(items, it)
			}
		}
	}
	c1 := make([]itemset, 0, len(items))
	for _, it := range items {
		c1 = append(c1, itemset{it})
	}
	return c1
}

// aprioriGen joins every pair of (k)-itemsets in lk that differ by
// exactly one item into a candidate (k+1)-itemset.
func (a *apriori) aprioriGen(lk []itemset) []itemset {
	seen := map[string]struct{}{}
	var ck []itemset
	for i, s1 := range lk {
		for _, s2 := range lk[i+1:] {
			merged := newItemset(append(append([]string{}, s1...), s2...))
			if len(merged) != len(s1)+1 {
				continue
			}
			key := itemsetKey(merged)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			ck = append(ck, merged)
		}
	}
	return ck
}

// findFreqSet filters ck down to the itemsets appearing as a subset of
// at least minSupport entries of dataList.
func (a *apriori) findFreqSet(ck []itemset) map[string]itemsetSupport {
	freqSet := map[string]itemsetSupport{}
	for _, c := range ck {
		count := 0
		for _, data := range a.dataList {
			if c.isSubsetOf(data) {
				count++
			}
		}
		if count >= a.minSupport {
			freqSet[itemsetKey(c)] = itemsetSupport{items: c, support: count}
		}
	}
	return freqSet
}
