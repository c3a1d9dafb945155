package retrieve

import "sort"

// fusedHit is one chunk's combined standing across the two ranked lists.
type fusedHit struct {
	id      int64
	score   float64
	lexRank int // 1-based, 0 when absent from the keyword list
	vecRank int // 1-based, 0 when absent from the vector list
}

// fuse combines two ranked ID lists with weighted reciprocal rank
// fusion: each list contributes weight/(K+rank) for the IDs it holds,
// and a chunk present in both lists gets the sum. Chunks absent from a
// list simply receive no contribution from it, so a fused score is never
// below either of its parts.
//
// Ordering is deterministic: descending fused score, ties broken by
// keyword rank, then vector rank, then chunk ID.
func fuse(lexical, vector []int64, cfg Config) []fusedHit {
	k := float64(cfg.RankConstant)

	hits := make(map[int64]*fusedHit)
	var order []int64

	add := func(id int64) *fusedHit {
		h, ok := hits[id]
		if !ok {
			h = &fusedHit{id: id}
			hits[id] = h
			order = append(order, id)
		}
		return h
	}

	for i, id := range lexical {
		h := add(id)
		h.lexRank = i + 1
		h.score += cfg.LexicalWeight / (k + float64(i+1))
	}
	for i, id := range vector {
		h := add(id)
		h.vecRank = i + 1
		h.score += cfg.VectorWeight / (k + float64(i+1))
	}

	out := make([]fusedHit, 0, len(order))
	for _, id := range order {
		out = append(out, *hits[id])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		if ri, rj := rankKey(out[i].lexRank), rankKey(out[j].lexRank); ri != rj {
			return ri < rj
		}
		if ri, rj := rankKey(out[i].vecRank), rankKey(out[j].vecRank); ri != rj {
			return ri < rj
		}
		return out[i].id < out[j].id
	})
	return out
}

// rankKey orders present ranks before absent ones (0 means absent).
func rankKey(rank int) int {
	if rank == 0 {
		return int(^uint(0) >> 1)
	}
	return rank
}
