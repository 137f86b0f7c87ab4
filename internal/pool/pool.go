// Package pool implements the aligned buffer pool (C1): a single
// contiguous, anonymously-mapped region sliced into N sector-aligned
// fixed-size buffers, grounded on the unix.Mmap pattern jolt's
// pkg/engine/{uring,libaio}.go use for their per-worker buffers.
package pool

import (
	"fmt"
	"math/rand"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Pool owns a single mmap'd region partitioned into n buffers, each at
// least blockSize bytes and aligned to alignment. Release frees the whole
// region; individual buffers cannot be freed independently (§4.1).
type Pool struct {
	region    []byte
	slotSize  int
	alignment int
	n         int
}

// ErrResourceExhausted is returned when the backing allocation fails; it
// is fatal for the trial (§4.1, §7 ResourceExhausted).
var ErrResourceExhausted = fmt.Errorf("pool: resource exhausted")

// New allocates ceil(blockSize, alignment)*n + alignment bytes and returns
// a Pool whose buffer(i) calls are alignment-rounded slices into it.
// alignment is normally the physical sector size reported by the file
// preparer; fallback is 4096 per §4.1.
func New(n, blockSize, alignment int) (*Pool, error) {
	if alignment <= 0 {
		alignment = 4096
	}
	if n <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("%w: invalid pool dimensions n=%d blockSize=%d", ErrResourceExhausted, n, blockSize)
	}
	slotSize := roundUp(blockSize, alignment)
	total := slotSize*n + alignment

	region, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrResourceExhausted, total, err)
	}

	return &Pool{
		region:    region,
		slotSize:  slotSize,
		alignment: alignment,
		n:         n,
	}, nil
}

func roundUp(size, alignment int) int {
	if size%alignment == 0 {
		return size
	}
	return (size/alignment + 1) * alignment
}

func (p *Pool) alignedOffset() int {
	base := uintptr(unsafe.Pointer(&p.region[0]))
	rem := base % uintptr(p.alignment)
	if rem == 0 {
		return 0
	}
	return int(uintptr(p.alignment) - rem)
}

// Buffer returns the backing slice for slot i, slotSize bytes long
// (blockSize rounded up to alignment); callers should only use the first
// blockSize bytes they configured the slot with.
func (p *Pool) Buffer(i int) []byte {
	start := p.alignedOffset() + i*p.slotSize
	return p.region[start : start+p.slotSize]
}

// SlotSize returns the per-slot capacity after alignment rounding.
func (p *Pool) SlotSize() int { return p.slotSize }

// FillPattern fills buffer i with a repeated byte value.
func (p *Pool) FillPattern(i int, b byte) {
	buf := p.Buffer(i)
	for j := range buf {
		buf[j] = b
	}
}

// FillRandom fills buffer i with seeded pseudo-random bytes, used to avoid
// compressible all-zero test data skewing drive-side dedup/compression.
func (p *Pool) FillRandom(i int, seed int64) {
	r := rand.New(rand.NewSource(seed))
	buf := p.Buffer(i)
	r.Read(buf)
}

// Release frees the whole mmap'd region. Individual buffers cannot be
// freed independently.
func (p *Pool) Release() error {
	if p.region == nil {
		return nil
	}
	err := unix.Munmap(p.region)
	p.region = nil
	return err
}
