package matching

import (
	"bytes"
	"container/heap"
	"sort"
)

// Ranker orders results and keeps the best k. k <= 0 keeps everything.
// Implementations must agree on order.
type Ranker interface {
	Rank(results []MatchResult, k int) []MatchResult
}

// RankedBefore is the ranking order: score desc, matched skills desc, id asc.
func RankedBefore(a, b MatchResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if len(a.MatchedSkills) != len(b.MatchedSkills) {
		return len(a.MatchedSkills) > len(b.MatchedSkills)
	}
	if c := bytes.Compare(a.CandidateID[:], b.CandidateID[:]); c != 0 {
		return c < 0
	}
	return a.Kind < b.Kind
}

type SortRanker struct{}

func (SortRanker) Rank(results []MatchResult, k int) []MatchResult {
	out := make([]MatchResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool { return RankedBefore(out[i], out[j]) })
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}

// HeapRanker keeps a bounded heap of the k best results, for k much smaller
// than the batch.
type HeapRanker struct{}

func (HeapRanker) Rank(results []MatchResult, k int) []MatchResult {
	if k <= 0 || k >= len(results) {
		return SortRanker{}.Rank(results, k)
	}

	h := &worstFirst{}
	for _, r := range results {
		if h.Len() < k {
			heap.Push(h, r)
			continue
		}
		if RankedBefore(r, (*h)[0]) {
			(*h)[0] = r
			heap.Fix(h, 0)
		}
	}

	out := make([]MatchResult, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(MatchResult)
	}
	return out
}

// worstFirst is a heap whose root is the lowest ranked result.
type worstFirst []MatchResult

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return RankedBefore(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(MatchResult)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Paginate returns the page [offset, offset+limit) of ranked results.
func Paginate(results []MatchResult, offset, limit int) []MatchResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []MatchResult{}
	}
	end := len(results)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return results[offset:end]
}
