package merkle

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	address string
	private uint64
	public  uint64
}

var entries = []entry{
	{"presale1alice", 100, 200},
	{"presale1bob", 0, 500},
	{"presale1carol", 1000, 0},
	{"presale1dave", 7, 7},
	{"presale1erin", 42, 4200},
}

func buildTestTree() *Tree {
	leaves := make([]Hash, 0, len(entries))
	for _, e := range entries {
		leaves = append(leaves, LeafHash(e.address, e.private, e.public))
	}
	return BuildTree(leaves)
}

func TestLeafHash(t *testing.T) {
	t.Parallel()

	expected := sha256.Sum256([]byte("presale1alice100200"))
	assert.Equal(t, Hash(expected), LeafHash("presale1alice", 100, 200))
}

func TestVerify_AllLeaves(t *testing.T) {
	t.Parallel()

	tree := buildTestTree()
	root := tree.Root()
	require.Len(t, root, 64)

	for i, e := range entries {
		err := Verify(root, e.address, e.private, e.public, tree.Proof(i))
		assert.NoError(t, err, "leaf %d", i)
	}
}

func TestVerify_SingleLeaf(t *testing.T) {
	t.Parallel()

	tree := BuildTree([]Hash{LeafHash("presale1alice", 1, 2)})
	assert.Empty(t, tree.Proof(0))
	assert.NoError(t, Verify(tree.Root(), "presale1alice", 1, 2, nil))
}

func TestVerify_Mismatch(t *testing.T) {
	t.Parallel()

	tree := buildTestTree()
	root := tree.Root()
	proof := tree.Proof(0)

	err := Verify(root, "presale1alice", 100, 201, proof)
	assert.ErrorIs(t, err, code.ErrProofMismatch)

	err = Verify(root, "presale1alice", 200, 100, proof)
	assert.ErrorIs(t, err, code.ErrProofMismatch)

	err = Verify(root, "presale1bob", 100, 200, proof)
	assert.ErrorIs(t, err, code.ErrProofMismatch)

	// flip one bit of the first sibling
	flipped := append([]string{}, proof...)
	sibling, err := DecodeHash(flipped[0])
	require.NoError(t, err)
	sibling[0] ^= 1
	flipped[0] = sibling.String()
	err = Verify(root, "presale1alice", 100, 200, flipped)
	assert.ErrorIs(t, err, code.ErrProofMismatch)

	c, _ := code.FromError(err)
	assert.Equal(t, code.ProofMismatch, c)
}

func TestVerify_DecodeError(t *testing.T) {
	t.Parallel()

	tree := buildTestTree()
	root := tree.Root()
	proof := tree.Proof(1)

	bad := append([]string{}, proof...)
	bad[0] = "zz" + bad[0][2:]
	assert.ErrorIs(t, Verify(root, "presale1bob", 0, 500, bad), code.ErrProofDecode)

	short := append([]string{}, proof...)
	short[0] = short[0][:62]
	assert.ErrorIs(t, Verify(root, "presale1bob", 0, 500, short), code.ErrProofDecode)

	assert.ErrorIs(t, Verify(strings.Repeat("g", 64), "presale1bob", 0, 500, proof), code.ErrProofDecode)
	assert.ErrorIs(t, ValidateRoot("abc"), code.ErrProofDecode)
	assert.NoError(t, ValidateRoot(""))
	assert.NoError(t, ValidateRoot(root))
}

func TestVerify_EmptyRoot(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Verify("", "anyone", 1, 2, []string{"not even hex"}))
}

func TestProof_OutOfRange(t *testing.T) {
	t.Parallel()

	tree := buildTestTree()
	assert.Nil(t, tree.Proof(-1))
	assert.Nil(t, tree.Proof(len(entries)))
	assert.Equal(t, "", BuildTree(nil).Root())
}

func TestVerify_OrderIndependentPairs(t *testing.T) {
	t.Parallel()

	a := LeafHash("presale1a", 1, 1)
	b := LeafHash("presale1b", 2, 2)
	assert.Equal(t, hashPair(a, b), hashPair(b, a))
	assert.Equal(t, BuildTree([]Hash{a, b}).Root(), BuildTree([]Hash{b, a}).Root())
	assert.Equal(t, hashPair(a, b).String(), BuildTree([]Hash{a, b}).Root())
}
