package whitelist

import (
	"testing"

	"github.com/MinterTeam/minter-presale/core/state/bus"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func newWhitelist(t *testing.T) (*Whitelist, tree.MTree) {
	t.Helper()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	return NewWhitelist(bus.NewBus(), mutableTree.GetLastImmutable()), mutableTree
}

func wallet(i byte) types.Address {
	return types.BytesToAddress([]byte{i})
}

func checkIndex(t *testing.T, w *Whitelist) {
	t.Helper()

	for i, address := range w.List(0, w.Count()) {
		entry := w.Get(address)
		require.NotNil(t, entry, "wallet %s", address.String())
		assert.Equal(t, uint64(i), entry.Index)
		assert.Equal(t, address, entry.Wallet())
	}
}

func TestWhitelist_UpsertKeepsSlot(t *testing.T) {
	t.Parallel()

	w, _ := newWhitelist(t)
	w.Upsert(wallet(1), 100, 10)
	w.Upsert(wallet(2), 200, 20)
	w.Upsert(wallet(1), 300, 30)

	assert.Equal(t, uint64(2), w.Count())
	assert.Equal(t, []types.Address{wallet(1), wallet(2)}, w.List(0, 10))

	entry := w.Get(wallet(1))
	require.NotNil(t, entry)
	assert.Equal(t, uint64(300), entry.PublicAllocation)
	assert.Equal(t, uint64(30), entry.PrivateAllocation)
	assert.Equal(t, uint64(0), entry.Index)
}

func TestWhitelist_SwapDelete(t *testing.T) {
	t.Parallel()

	w, mutableTree := newWhitelist(t)
	for i := byte(1); i <= 6; i++ {
		w.Upsert(wallet(i), uint64(i)*100, uint64(i)*10)
	}
	_, _, err := mutableTree.Commit(w)
	require.NoError(t, err)

	w.Remove(wallet(2))
	w.Remove(wallet(42))
	checkIndex(t, w)
	assert.Equal(t, []types.Address{wallet(1), wallet(6), wallet(3), wallet(4), wallet(5)}, w.List(0, 10))

	_, _, err = mutableTree.Commit(w)
	require.NoError(t, err)

	reloaded := NewWhitelist(bus.NewBus(), mutableTree.GetLastImmutable())
	reloaded.Remove(wallet(5))
	reloaded.Remove(wallet(1))
	checkIndex(t, reloaded)
	assert.Equal(t, uint64(3), reloaded.Count())
	assert.Nil(t, reloaded.Get(wallet(1)))
	assert.Nil(t, reloaded.Get(wallet(2)))

	_, _, err = mutableTree.Commit(reloaded)
	require.NoError(t, err)

	final := NewWhitelist(bus.NewBus(), mutableTree.GetLastImmutable())
	checkIndex(t, final)
	assert.ElementsMatch(t, []types.Address{wallet(3), wallet(4), wallet(6)}, final.List(0, 10))
	_, value := mutableTree.GetLastImmutable().Get(userPath(3))
	assert.Nil(t, value)
}

func TestWhitelist_RemoveLastAndReAdd(t *testing.T) {
	t.Parallel()

	w, _ := newWhitelist(t)
	w.Upsert(wallet(1), 1, 1)
	w.Upsert(wallet(2), 2, 2)
	w.Remove(wallet(2))
	w.Upsert(wallet(2), 5, 5)

	checkIndex(t, w)
	assert.Equal(t, uint64(2), w.Count())
	assert.Equal(t, uint64(5), w.Get(wallet(2)).PublicAllocation)
}

func TestWhitelist_List(t *testing.T) {
	t.Parallel()

	w, _ := newWhitelist(t)
	for i := byte(1); i <= 5; i++ {
		w.Upsert(wallet(i), 1, 1)
	}

	assert.Equal(t, []types.Address{wallet(3), wallet(4)}, w.List(1, 2))
	assert.Equal(t, []types.Address{wallet(5)}, w.List(2, 2))
	assert.Empty(t, w.List(3, 2))
	assert.Empty(t, w.List(1<<63, 4))
}

func TestWhitelist_BusAndDiscard(t *testing.T) {
	t.Parallel()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	b := bus.NewBus()
	w := NewWhitelist(b, mutableTree.GetLastImmutable())
	w.SetConfig(wallet(0xee), wallet(0xff))
	w.Upsert(wallet(1), 100, 10)
	_, _, err = mutableTree.Commit(w)
	require.NoError(t, err)

	privateCap, publicCap, ok := b.Whitelist().Allocation(wallet(1))
	assert.True(t, ok)
	assert.Equal(t, uint64(10), privateCap)
	assert.Equal(t, uint64(100), publicCap)

	_, _, ok = b.Whitelist().Allocation(wallet(2))
	assert.False(t, ok)

	w.Upsert(wallet(2), 1, 1)
	w.SetOwner(wallet(3))
	w.Discard()

	assert.Equal(t, uint64(1), w.Count())
	assert.Equal(t, wallet(0xff), w.Owner())
	assert.Nil(t, w.Get(wallet(2)))

	state := &types.AppState{}
	w.Export(state)
	assert.Equal(t, wallet(0xee), state.Whitelist.Contract)
	require.Len(t, state.Whitelist.Users, 1)
	assert.Equal(t, wallet(1), state.Whitelist.Users[0].Wallet)
}
