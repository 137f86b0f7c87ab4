// Package offsetgen implements the per-slot offset generator (C5):
// sequential wrap or seeded uniform random, one independent generator per
// slot so concurrent slots never collide on the same offset sequence.
package offsetgen

import "math/rand"

// Pattern selects the access pattern.
type Pattern int

const (
	// Sequential yields 0, blockSize, 2*blockSize, ..., wrapping to 0.
	Sequential Pattern = iota
	// Random yields uniform(0, floor(fileSize/blockSize))*blockSize.
	Random
)

// Generator produces the next file offset for one slot.
type Generator struct {
	pattern    Pattern
	blockSize  int64
	numBlocks  int64
	sectorSize int64
	stride     int64 // Sequential advance per Next(), one per concurrently in-flight slot
	next       int64 // Sequential cursor
	rng        *rand.Rand
}

// New builds a generator for one slot. seed derives the slot's own
// pseudo-random stream as baseSeed XOR slotIndex (§4.5), so different
// slots never share the same random sequence. For Sequential, the cursor
// starts at slotIndex and advances by queueDepth blocks per Next() call,
// so the queueDepth slots concurrently in flight stripe across distinct
// offsets instead of all racing the same block each round.
func New(pattern Pattern, fileSize, blockSize, sectorSize int64, baseSeed int64, slotIndex, queueDepth int) *Generator {
	numBlocks := fileSize / blockSize
	if numBlocks < 1 {
		numBlocks = 1
	}
	if queueDepth < 1 {
		queueDepth = 1
	}
	seed := baseSeed ^ int64(slotIndex)
	return &Generator{
		pattern:    pattern,
		blockSize:  blockSize,
		numBlocks:  numBlocks,
		sectorSize: sectorSize,
		stride:     int64(queueDepth),
		next:       int64(slotIndex) % numBlocks,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next offset, always a multiple of blockSize (and, by
// construction, of sectorSize since direct I/O requires block sizes that
// are themselves sector multiples).
func (g *Generator) Next() int64 {
	switch g.pattern {
	case Random:
		return g.rng.Int63n(g.numBlocks) * g.blockSize
	default:
		off := g.next * g.blockSize
		g.next = (g.next + g.stride) % g.numBlocks
		return off
	}
}

// NumBlocks exposes the addressable block count, used by tests asserting
// the distinct-offsets invariant.
func (g *Generator) NumBlocks() int64 { return g.numBlocks }
