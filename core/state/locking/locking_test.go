package locking

import (
	"testing"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestLocking_InfoAndConfig(t *testing.T) {
	t.Parallel()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	locking := NewLocking(mutableTree.GetLastImmutable())
	locking.SetConfig(Model{
		Owner:         types.BytesToAddress([]byte{0x0f}),
		Token:         types.BytesToAddress([]byte{0xaa}),
		PenaltyPeriod: 30,
		Dead:          types.BytesToAddress([]byte{0xde}),
	})

	alice := types.BytesToAddress([]byte{1})
	locking.SetInfo(alice, 0, 5)
	_, _, err = mutableTree.Commit(locking)
	require.NoError(t, err)

	reloaded := NewLocking(mutableTree.GetLastImmutable())
	info := reloaded.GetInfo(alice)
	require.NotNil(t, info, "zero amount record exists")
	assert.Equal(t, uint64(0), info.Amount)
	assert.Equal(t, uint64(5), info.LastLockedTime)
	assert.Nil(t, reloaded.GetInfo(types.BytesToAddress([]byte{2})))

	reloaded.SetInfo(alice, 1000, 10)
	reloaded.SetAmount(alice, 400)
	assert.Equal(t, uint64(400), reloaded.GetInfo(alice).Amount)
	assert.Equal(t, uint64(10), reloaded.GetInfo(alice).LastLockedTime)

	reloaded.UpdateConfig(types.Address{}, types.BytesToAddress([]byte{0xbb}), 0, types.Address{})
	config := reloaded.Config()
	assert.Equal(t, types.BytesToAddress([]byte{0x0f}), config.Owner)
	assert.Equal(t, types.BytesToAddress([]byte{0xbb}), config.Token)
	assert.Equal(t, uint64(30), config.PenaltyPeriod)
	assert.Equal(t, types.BytesToAddress([]byte{0xde}), config.Dead)

	reloaded.Discard()
	assert.Equal(t, types.BytesToAddress([]byte{0xaa}), reloaded.Config().Token)
	assert.Equal(t, uint64(0), reloaded.GetInfo(alice).Amount)
}

func TestLocking_LockedAccounts(t *testing.T) {
	t.Parallel()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	locking := NewLocking(mutableTree.GetLastImmutable())
	for i := byte(1); i <= 40; i++ {
		locking.SetInfo(types.BytesToAddress([]byte{i}), uint64(i), 0)
	}
	_, _, err = mutableTree.Commit(locking)
	require.NoError(t, err)

	page := locking.LockedAccounts(nil, 0, false)
	require.Len(t, page, DefaultLimit)
	assert.Equal(t, uint64(1), page[0].Amount)
	assert.Equal(t, uint64(10), page[9].Amount)

	startAfter := page[9].Address()
	page = locking.LockedAccounts(&startAfter, 3, false)
	require.Len(t, page, 3)
	assert.Equal(t, uint64(11), page[0].Amount)

	assert.Len(t, locking.LockedAccounts(nil, 100, false), MaxLimit)

	page = locking.LockedAccounts(&startAfter, 5, true)
	require.Len(t, page, 5)
	assert.Equal(t, uint64(9), page[0].Amount)
	assert.Equal(t, uint64(5), page[4].Amount)

	last := types.BytesToAddress([]byte{40})
	assert.Empty(t, locking.LockedAccounts(&last, 5, false))

	state := &types.AppState{}
	locking.Export(state)
	assert.Len(t, state.Locking.Locks, 40)
}
