package merkle

// Tree keeps every level of a sorted-pair merkle tree. An odd node at the end of
// a level is promoted to the next level as is.
type Tree struct {
	levels [][]Hash
}

func BuildTree(leaves []Hash) *Tree {
	if len(leaves) == 0 {
		return &Tree{}
	}

	level := make([]Hash, len(leaves))
	copy(level, leaves)
	levels := [][]Hash{level}

	for len(level) > 1 {
		next := make([]Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels}
}

// Root returns hex root, or empty string for an empty tree
func (t *Tree) Root() string {
	if len(t.levels) == 0 {
		return ""
	}
	return t.levels[len(t.levels)-1][0].String()
}

// Proof returns hex siblings of leaf index, bottom up
func (t *Tree) Proof(index int) []string {
	if len(t.levels) == 0 || index < 0 || index >= len(t.levels[0]) {
		return nil
	}

	proof := make([]string, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling].String())
		}
		index /= 2
	}

	return proof
}
