package vesting

import (
	"testing"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestVesting_VestedAndWithdrawable(t *testing.T) {
	t.Parallel()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	vesting := NewVesting(mutableTree.GetLastImmutable())
	vesting.SetConfig(Model{
		Owner:           types.BytesToAddress([]byte{0x0f}),
		Operator:        types.BytesToAddress([]byte{0x51}),
		LockPeriod:      600,
		ReleaseInterval: 60,
		ReleaseRate:     100,
		InitialUnlock:   100,
	})

	alice := types.BytesToAddress([]byte{1})
	vesting.SetRecipient(alice, 1000)
	assert.Equal(t, uint64(0), vesting.Vested(alice, 10000))

	vesting.SetStartTime(1)
	_, _, err = mutableTree.Commit(vesting)
	require.NoError(t, err)

	reloaded := NewVesting(mutableTree.GetLastImmutable())
	assert.Equal(t, uint64(0), reloaded.Vested(alice, 1))
	assert.Equal(t, uint64(100), reloaded.Vested(alice, 601))
	assert.Equal(t, uint64(200), reloaded.Vested(alice, 661))
	assert.Equal(t, uint64(500), reloaded.Vested(alice, 900))
	assert.Equal(t, uint64(1000), reloaded.Vested(alice, 6601))

	reloaded.SetWithdrawn(alice, 200)
	assert.Equal(t, uint64(0), reloaded.Withdrawable(alice, 661))
	assert.Equal(t, uint64(300), reloaded.Withdrawable(alice, 900))

	reloaded.SetRecipient(alice, 100)
	assert.Equal(t, uint64(0), reloaded.Withdrawable(alice, 6601))
	assert.Equal(t, uint64(200), reloaded.GetRecipient(alice).Withdrawn)

	assert.Equal(t, uint64(0), reloaded.Withdrawable(types.BytesToAddress([]byte{2}), 6601))
	assert.True(t, reloaded.Config().IsAuthorized(types.BytesToAddress([]byte{0x51})))
	assert.False(t, reloaded.Config().IsAuthorized(alice))
}

func TestVesting_ExportAndDiscard(t *testing.T) {
	t.Parallel()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	vesting := NewVesting(mutableTree.GetLastImmutable())
	vesting.SetConfig(Model{Contract: types.BytesToAddress([]byte{0xee}), ReleaseRate: 10})
	vesting.SetRecipient(types.BytesToAddress([]byte{1}), 10)
	vesting.SetRecipient(types.BytesToAddress([]byte{2}), 20)
	_, _, err = mutableTree.Commit(vesting)
	require.NoError(t, err)

	vesting.SetRecipient(types.BytesToAddress([]byte{3}), 30)
	vesting.SetOwner(types.BytesToAddress([]byte{4}))
	vesting.Discard()

	state := &types.AppState{}
	vesting.Export(state)
	assert.Equal(t, types.BytesToAddress([]byte{0xee}), state.Vesting.Contract)
	assert.True(t, state.Vesting.Owner.IsZero())
	require.Len(t, state.Vesting.Recipients, 2)
	assert.Equal(t, uint64(10), state.Vesting.Recipients[0].Amount)
	assert.Equal(t, uint64(20), state.Vesting.Recipients[1].Amount)
}
