package sale

import (
	"testing"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func TestSale_ConfigAndParticipants(t *testing.T) {
	t.Parallel()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	sale := NewSale(mutableTree.GetLastImmutable())
	sale.SetConfig(Model{
		Contract:        types.BytesToAddress([]byte{0x51}),
		Owner:           types.BytesToAddress([]byte{0x0f}),
		ExchangeRate:    types.Accuracy,
		PublicStartTime: 100,
		PresalePeriod:   50,
		Count:           42,
	})
	assert.Equal(t, uint64(0), sale.ParticipantsCount())
	assert.Equal(t, uint64(150), sale.Config().EndTime())

	alice := types.BytesToAddress([]byte{1})
	bob := types.BytesToAddress([]byte{2})

	sale.SetParticipant(alice, 10, 100, 10)
	sale.SetParticipant(bob, 5, 50, 0)
	sale.SetParticipant(alice, 20, 200, 10)
	sale.SetSoldAmounts(100, 150)

	_, _, err = mutableTree.Commit(sale)
	require.NoError(t, err)

	reloaded := NewSale(mutableTree.GetLastImmutable())
	assert.Equal(t, uint64(2), reloaded.ParticipantsCount())
	assert.Equal(t, []types.Address{alice, bob}, reloaded.Participants(0, 10))
	assert.Equal(t, []types.Address{bob}, reloaded.Participants(1, 1))
	assert.Empty(t, reloaded.Participants(2, 1))

	participant := reloaded.GetParticipant(alice)
	require.NotNil(t, participant)
	assert.Equal(t, uint64(20), participant.FundBalance)
	assert.Equal(t, uint64(200), participant.RewardBalance)
	assert.Equal(t, alice, participant.Address())
	assert.Nil(t, reloaded.GetParticipant(types.BytesToAddress([]byte{3})))

	state := &types.AppState{}
	reloaded.Export(state)
	assert.Equal(t, uint64(100), state.Sale.PrivateSoldAmount)
	assert.Equal(t, uint64(150), state.Sale.PublicSoldAmount)
	require.Len(t, state.Sale.Participants, 2)
	assert.Equal(t, bob, state.Sale.Participants[1].Address)
}

func TestSale_Discard(t *testing.T) {
	t.Parallel()

	mutableTree, err := tree.NewMutableTree(0, db.NewMemDB(), 1024, 0)
	require.NoError(t, err)

	sale := NewSale(mutableTree.GetLastImmutable())
	sale.SetConfig(Model{MerkleRoot: "aa"})
	_, _, err = mutableTree.Commit(sale)
	require.NoError(t, err)

	sale.SetMerkleRoot("bb")
	sale.SetPresaleInfo(1, 2, 3)
	sale.SetParticipant(types.BytesToAddress([]byte{1}), 1, 1, 0)
	sale.Discard()

	config := sale.Config()
	assert.Equal(t, "aa", config.MerkleRoot)
	assert.Equal(t, uint64(0), config.PresalePeriod)
	assert.Equal(t, uint64(0), sale.ParticipantsCount())
	assert.Nil(t, sale.GetParticipant(types.BytesToAddress([]byte{1})))
}
