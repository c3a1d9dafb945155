// Package ann provides approximate nearest-neighbor search over chunk
// embeddings using an HNSW graph (Malkov & Yashunin 2018,
// https://arxiv.org/abs/1603.09320). Pure Go, no CGO.
//
// One index is built per retrieval session and never mutated afterwards.
// Chunk sets here are small (hundreds to low thousands of vectors), so
// the defaults favor recall over build speed.
package ann

import (
	"math"
	"math/rand"
	"sort"
	"sync"
)

// Default tuning parameters.
const (
	DefaultM              = 16  // max connections per layer
	DefaultEfConstruction = 200 // build-time beam width
	DefaultEfSearch       = 50  // query-time beam width
)

// Index is an in-memory HNSW graph keyed by chunk ID.
type Index struct {
	mu         sync.RWMutex
	vertices   []vertex
	idToVertex map[int64]int
	entry      int // entry vertex index, -1 while empty
	maxLevel   int
	dims       int

	m         int
	mMax0     int // layer-0 connection cap (2*m)
	efBuild   int
	efSearch  int
	levelMult float64

	rng *rand.Rand
}

type vertex struct {
	id      int64
	vector  []float32
	friends [][]int // friends[layer] = neighbor vertex indices
	level   int
}

// Result is one neighbor: chunk ID plus cosine distance
// (1 - similarity, lower = more similar).
type Result struct {
	ChunkID  int64
	Distance float32
}

type candidate struct {
	idx  int
	dist float32
}

// New creates an index for vectors of the given dimensionality with
// default parameters.
func New(dims int) *Index {
	return NewWithParams(dims, DefaultM, DefaultEfConstruction, DefaultEfSearch)
}

// NewWithParams creates an index with custom HNSW parameters. The RNG is
// seeded so repeated builds over the same chunk set produce the same
// graph, keeping queries deterministic.
func NewWithParams(dims, m, efBuild, efSearch int) *Index {
	if m < 2 {
		m = 2
	}
	return &Index{
		dims:       dims,
		m:          m,
		mMax0:      2 * m,
		efBuild:    efBuild,
		efSearch:   efSearch,
		levelMult:  1.0 / math.Log(float64(m)),
		entry:      -1,
		maxLevel:   -1,
		idToVertex: make(map[int64]int),
		rng:        rand.New(rand.NewSource(1)),
	}
}

// Dims returns the vector dimensionality the index was built for.
func (ix *Index) Dims() int { return ix.dims }

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vertices)
}

// Insert adds a vector under the given chunk ID. Inserting an existing
// ID is a no-op.
func (ix *Index) Insert(id int64, vec []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.idToVertex[id]; exists {
		return
	}

	vIdx := len(ix.vertices)
	level := ix.randomLevel()
	ix.vertices = append(ix.vertices, vertex{
		id:      id,
		vector:  vec,
		friends: make([][]int, level+1),
		level:   level,
	})
	ix.idToVertex[id] = vIdx

	if ix.entry == -1 {
		ix.entry = vIdx
		ix.maxLevel = level
		return
	}

	// Descend greedily through the layers above the new vertex's level.
	ep := ix.entry
	for l := ix.maxLevel; l > level; l-- {
		ep = ix.greedyClosest(vec, ep, l)
	}

	top := level
	if top > ix.maxLevel {
		top = ix.maxLevel
	}
	for l := top; l >= 0; l-- {
		candidates := ix.searchLayer(vec, ep, ix.efBuild, l)

		maxConn := ix.m
		if l == 0 {
			maxConn = ix.mMax0
		}
		neighbors := selectClosest(candidates, maxConn)
		ix.vertices[vIdx].friends[l] = neighbors

		// Bidirectional links, pruned when a neighbor overfills.
		for _, n := range neighbors {
			ix.vertices[n].friends[l] = append(ix.vertices[n].friends[l], vIdx)
			if len(ix.vertices[n].friends[l]) > maxConn {
				ix.vertices[n].friends[l] = ix.pruneNeighbors(n, ix.vertices[n].friends[l], maxConn)
			}
		}

		if len(candidates) > 0 {
			ep = candidates[0].idx
		}
	}

	if level > ix.maxLevel {
		ix.entry = vIdx
		ix.maxLevel = level
	}
}

// Search returns the k nearest neighbors of query, closest first.
func (ix *Index) Search(query []float32, k int) []Result {
	return ix.SearchEf(query, k, ix.efSearch)
}

// SearchEf searches with a custom beam width. ef is raised to k when
// smaller.
func (ix *Index) SearchEf(query []float32, k, ef int) []Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vertices) == 0 || ix.entry == -1 || k <= 0 {
		return nil
	}
	if ef < k {
		ef = k
	}

	ep := ix.entry
	for l := ix.maxLevel; l > 0; l-- {
		ep = ix.greedyClosest(query, ep, l)
	}

	candidates := ix.searchLayer(query, ep, ef, 0)
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{ChunkID: ix.vertices[c.idx].id, Distance: c.dist}
	}
	return results
}

func (ix *Index) randomLevel() int {
	r := ix.rng.Float64()
	if r == 0 {
		r = 1e-10
	}
	return int(math.Floor(-math.Log(r) * ix.levelMult))
}

// greedyClosest walks a single layer toward query until no neighbor
// improves the distance.
func (ix *Index) greedyClosest(query []float32, ep, layer int) int {
	dist := cosineDistance(query, ix.vertices[ep].vector)
	for {
		improved := false
		if layer < len(ix.vertices[ep].friends) {
			for _, f := range ix.vertices[ep].friends[layer] {
				if d := cosineDistance(query, ix.vertices[f].vector); d < dist {
					ep, dist = f, d
					improved = true
				}
			}
		}
		if !improved {
			return ep
		}
	}
}

// searchLayer runs beam search at one layer, returning up to ef
// candidates sorted ascending by distance.
func (ix *Index) searchLayer(query []float32, ep, ef, layer int) []candidate {
	visited := map[int]bool{ep: true}

	epDist := cosineDistance(query, ix.vertices[ep].vector)
	frontier := []candidate{{idx: ep, dist: epDist}}
	results := []candidate{{idx: ep, dist: epDist}}

	for len(frontier) > 0 {
		closest := frontier[0]
		frontier = frontier[1:]

		if closest.dist > results[len(results)-1].dist && len(results) >= ef {
			break
		}

		if layer >= len(ix.vertices[closest.idx].friends) {
			continue
		}
		for _, n := range ix.vertices[closest.idx].friends[layer] {
			if visited[n] {
				continue
			}
			visited[n] = true

			d := cosineDistance(query, ix.vertices[n].vector)
			if d < results[len(results)-1].dist || len(results) < ef {
				frontier = insertSorted(frontier, candidate{idx: n, dist: d})
				results = insertSorted(results, candidate{idx: n, dist: d})
				if len(results) > ef {
					results = results[:ef]
				}
			}
		}
	}
	return results
}

// selectClosest takes up to maxConn candidate indices, closest first.
func selectClosest(candidates []candidate, maxConn int) []int {
	n := len(candidates)
	if n > maxConn {
		n = maxConn
	}
	neighbors := make([]int, n)
	for i := 0; i < n; i++ {
		neighbors[i] = candidates[i].idx
	}
	return neighbors
}

// pruneNeighbors trims an over-full neighbor list to the maxConn closest.
func (ix *Index) pruneNeighbors(vIdx int, neighbors []int, maxConn int) []int {
	if len(neighbors) <= maxConn {
		return neighbors
	}
	vec := ix.vertices[vIdx].vector
	scored := make([]candidate, len(neighbors))
	for i, n := range neighbors {
		scored[i] = candidate{idx: n, dist: cosineDistance(vec, ix.vertices[n].vector)}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].dist < scored[j].dist })

	out := make([]int, maxConn)
	for i := 0; i < maxConn; i++ {
		out[i] = scored[i].idx
	}
	return out
}

// insertSorted inserts c into a distance-ascending slice.
func insertSorted(s []candidate, c candidate) []candidate {
	i := sort.Search(len(s), func(i int) bool { return s[i].dist >= c.dist })
	s = append(s, candidate{})
	copy(s[i+1:], s[i:])
	s[i] = c
	return s
}

// cosineDistance returns 1 - cosine similarity, in [0, 2]. Mismatched or
// zero vectors are treated as maximally distant.
func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}
	sim := dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
	return 1.0 - sim
}
