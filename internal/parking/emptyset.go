package parking

// emptySet tracks which slots are empty with a Fenwick tree of 0/1 counts,
// so drawing the k-th empty slot and marking a slot taken are O(log n).
type emptySet struct {
	tree []int // 1-based
	size int
	top  int // highest power of two <= len(tree)-1
}

func newEmptySet(n int) *emptySet {
	s := &emptySet{tree: make([]int, n+1), size: n, top: 1}
	// every slot starts empty: node i covers i&-i ones
	for i := 1; i <= n; i++ {
		s.tree[i] = i & -i
	}
	for s.top<<1 <= n {
		s.top <<= 1
	}
	return s
}

func (s *emptySet) len() int {
	return s.size
}

func (s *emptySet) remove(index int) {
	for i := index + 1; i < len(s.tree); i += i & -i {
		s.tree[i]--
	}
	s.size--
}

// nth returns the slot index of the k-th empty slot in ascending order,
// 0 <= k < len().
func (s *emptySet) nth(k int) int {
	pos, rem := 0, k+1
	for step := s.top; step > 0; step >>= 1 {
		if next := pos + step; next < len(s.tree) && s.tree[next] < rem {
			pos = next
			rem -= s.tree[next]
		}
	}
	return pos
}
