package huffman

import "container/heap"

// buildNode is a node of the pool used during canonical construction.
type buildNode struct {
	freq  int
	value int32 // symbol for leaves, -1 for internal nodes
	child [2]int32
}

// ---------------------------------------------------------------------------
// Priority queue for tree construction
// ---------------------------------------------------------------------------

// nodeHeap orders pool indices by ascending frequency. Among equal
// frequencies the most recently created node comes first, so a merged node
// sorts ahead of older nodes of the same weight.
type nodeHeap struct {
	pool    []buildNode
	indices []int32
}

func (h *nodeHeap) Len() int { return len(h.indices) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.indices[i], h.indices[j]
	if fa, fb := h.pool[a].freq, h.pool[b].freq; fa != fb {
		return fa < fb
	}
	return a > b
}

func (h *nodeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }

func (h *nodeHeap) Push(x any) { h.indices = append(h.indices, x.(int32)) }

func (h *nodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	idx := old[n-1]
	h.indices = old[:n-1]
	return idx
}

// Build constructs a Huffman tree over symbols 0..len(freqs)-1. Zero
// frequencies are raised to 1 so every symbol gets a code and the depth
// stays bounded. The two lightest nodes are merged repeatedly, the lighter
// becoming the 0 branch.
func Build(freqs []int) (*Tree, error) {
	if len(freqs) == 0 {
		return nil, ErrEmpty
	}

	h := &nodeHeap{
		pool:    make([]buildNode, 0, 2*len(freqs)),
		indices: make([]int32, 0, len(freqs)),
	}
	for sym, f := range freqs {
		if f <= 0 {
			f = 1
		}
		h.pool = append(h.pool, buildNode{freq: f, value: int32(sym)})
		h.indices = append(h.indices, int32(sym))
	}
	heap.Init(h)

	for h.Len() > 1 {
		c0 := heap.Pop(h).(int32)
		c1 := heap.Pop(h).(int32)
		parent := int32(len(h.pool))
		h.pool = append(h.pool, buildNode{
			freq:  h.pool[c0].freq + h.pool[c1].freq,
			value: -1,
			child: [2]int32{c0, c1},
		})
		heap.Push(h, parent)
	}

	// Re-home the pool into a root-first arena.
	t := &Tree{nodes: make([]node, 0, len(h.pool))}
	var place func(int32) int32
	place = func(p int32) int32 {
		idx := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{value: h.pool[p].value})
		if h.pool[p].value < 0 {
			l := place(h.pool[p].child[0])
			r := place(h.pool[p].child[1])
			t.nodes[idx].child = [2]int32{l, r}
		}
		return idx
	}
	place(h.indices[0])
	return t, nil
}
