// Package pool provides bucketed sync.Pool instances for the buffers a
// decoder keeps per stream: reference frame planes and coefficient blocks.
// Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed byte pools. A 4:2:0 frame with its border
// lands in the class just above 1.5x its luma area.
const (
	Size64K  = 1 << 16
	Size256K = 1 << 18
	Size1M   = 1 << 20
	Size4M   = 1 << 22
	Size16M  = 1 << 24
	Size64M  = 1 << 26
)

var sizes = [...]int{Size64K, Size256K, Size1M, Size4M, Size16M, Size64M}

// bucketIndex returns the pool index for a given size, or -1 when the size
// exceeds every class.
func bucketIndex(size int) int {
	for i, sz := range sizes {
		if size <= sz {
			return i
		}
	}
	return -1
}

var pools [len(sizes)]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of length size. Its contents are unspecified:
// callers must overwrite every byte they read back. The caller should call
// Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	bp := pools[idx].Get().(*[]byte)
	return (*bp)[:size]
}

// Put returns a byte slice obtained from Get to its pool. Slices outside
// the size classes are dropped.
func Put(b []byte) {
	c := cap(b)
	idx := bucketIndex(c)
	if idx < 0 || c != sizes[idx] {
		return
	}
	b = b[:c]
	pools[idx].Put(&b)
}

// Block is one 8x8 coefficient block.
type Block = [64]int16

var blockPool sync.Pool

// GetBlocks returns a zeroed slice of n coefficient blocks.
func GetBlocks(n int) []Block {
	if v := blockPool.Get(); v != nil {
		bp := v.(*[]Block)
		if cap(*bp) >= n {
			b := (*bp)[:n]
			clear(b)
			return b
		}
	}
	return make([]Block, n)
}

// PutBlocks returns a slice obtained from GetBlocks to the pool.
func PutBlocks(b []Block) {
	if cap(b) == 0 {
		return
	}
	blockPool.Put(&b)
}
