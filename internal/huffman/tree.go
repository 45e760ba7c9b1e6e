// Package huffman implements the binary code trees used for DCT token
// coding: bit-serial deserialization from a setup header, the inverse
// serialization, tree-walk decoding, and canonical construction from symbol
// frequencies.
package huffman

import (
	"errors"

	"github.com/deepteams/theora/internal/bitio"
)

// MaxDepth is the deepest tree a setup header may describe.
const MaxDepth = 32

// LeafBits is the width of a serialized leaf symbol.
const LeafBits = 5

var (
	ErrDepth     = errors.New("huffman: tree deeper than 32 levels")
	ErrEmpty     = errors.New("huffman: no symbols")
	ErrTruncated = errors.New("huffman: tree data truncated")
)

// node is a tree node. Internal nodes have value -1 and two children;
// leaves hold a symbol in value.
type node struct {
	value int32
	child [2]int32
}

// Tree is a binary code tree stored as a node arena. Node 0 is the root.
type Tree struct {
	nodes []node
}

// Read deserializes a tree from c. A 0 bit introduces an internal node
// whose left then right subtrees follow; a 1 bit is followed by a 5-bit
// leaf symbol. Bits are read MSB-first.
func Read(c *bitio.Cursor) (*Tree, error) {
	t := &Tree{nodes: make([]node, 0, 64)}
	if _, err := t.read(c, 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) read(c *bitio.Cursor, depth int) (int32, error) {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{value: -1})

	switch c.ReadBitMSB() {
	case bitio.Exhausted:
		return 0, ErrTruncated
	case 0:
		depth++
		if depth > MaxDepth {
			return 0, ErrDepth
		}
		for i := 0; i < 2; i++ {
			ch, err := t.read(c, depth)
			if err != nil {
				return 0, err
			}
			t.nodes[idx].child[i] = ch
		}
	default:
		v := c.ReadBitsMSB(LeafBits)
		if v == bitio.Exhausted {
			return 0, ErrTruncated
		}
		t.nodes[idx].value = int32(v)
	}
	return idx, nil
}

// Write serializes the tree to c in the format Read accepts. Symbols must
// fit in LeafBits bits.
func (t *Tree) Write(c *bitio.Cursor) {
	t.write(c, 0)
}

func (t *Tree) write(c *bitio.Cursor, idx int32) {
	n := t.nodes[idx]
	if n.value >= 0 {
		c.WriteBitsMSB(1, 1)
		c.WriteBitsMSB(uint32(n.value), LeafBits)
		return
	}
	c.WriteBitsMSB(0, 1)
	t.write(c, n.child[0])
	t.write(c, n.child[1])
}

// Decode walks the tree from the root, consuming one bit per internal node,
// and returns the leaf symbol. It returns bitio.Exhausted if the data runs
// out first. A single-leaf tree consumes no bits.
func (t *Tree) Decode(c *bitio.Cursor) int {
	n := &t.nodes[0]
	for n.value < 0 {
		b := c.ReadBitMSB()
		if b == bitio.Exhausted {
			return bitio.Exhausted
		}
		n = &t.nodes[n.child[b]]
	}
	return int(n.value)
}

// Code is a codeword: the low Len bits of Bits, most significant first.
type Code struct {
	Bits uint32
	Len  int
}

// Codes returns the codeword of every symbol below numSymbols. Symbols that
// do not appear in the tree get a zero-length code.
func (t *Tree) Codes(numSymbols int) []Code {
	codes := make([]Code, numSymbols)
	t.codes(codes, 0, 0, 0)
	return codes
}

func (t *Tree) codes(out []Code, idx int32, bits uint32, length int) {
	n := t.nodes[idx]
	if n.value >= 0 {
		if int(n.value) < len(out) {
			out[n.value] = Code{Bits: bits, Len: length}
		}
		return
	}
	t.codes(out, n.child[0], bits<<1, length+1)
	t.codes(out, n.child[1], bits<<1|1, length+1)
}

// Encode writes the codeword for sym using codes produced by Codes.
func Encode(c *bitio.Cursor, codes []Code, sym int) {
	c.WriteBitsMSB(codes[sym].Bits, codes[sym].Len)
}

// Depth returns the length of the longest codeword.
func (t *Tree) Depth() int {
	return t.depth(0)
}

func (t *Tree) depth(idx int32) int {
	n := t.nodes[idx]
	if n.value >= 0 {
		return 0
	}
	return 1 + max(t.depth(n.child[0]), t.depth(n.child[1]))
}

// Leaves returns the leaf symbols in left-to-right order.
func (t *Tree) Leaves() []int {
	var out []int
	var walk func(int32)
	walk = func(idx int32) {
		n := t.nodes[idx]
		if n.value >= 0 {
			out = append(out, int(n.value))
			return
		}
		walk(n.child[0])
		walk(n.child[1])
	}
	walk(0)
	return out
}

// Single returns a tree with one leaf, which decodes sym from zero bits.
func Single(sym int) *Tree {
	return &Tree{nodes: []node{{value: int32(sym)}}}
}
