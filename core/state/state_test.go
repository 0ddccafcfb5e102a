package state

import (
	"testing"

	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func address(b byte) types.Address {
	return types.BytesToAddress([]byte{b})
}

func testAppState() types.AppState {
	fund, reward := address(0xf1), address(0xf2)
	return types.AppState{
		Note:     "test",
		Accounts: []types.Account{{Address: address(1), Nonce: 3}},
		Tokens: []types.Token{
			{
				Address:     fund,
				Name:        "Fund",
				Symbol:      "FUND",
				Decimals:    6,
				TotalSupply: 1000,
				Balances:    []types.Balance{{Holder: address(1), Amount: 1000}},
				Allowances:  []types.Allowance{{Owner: address(1), Spender: address(0x51), Amount: 500}},
			},
			{
				Address:     reward,
				Name:        "Reward",
				Symbol:      "RWD",
				Decimals:    9,
				TotalSupply: 1e12,
				Balances:    []types.Balance{{Holder: address(0x52), Amount: 1e12}},
			},
		},
		Sale: types.Sale{
			Contract:     address(0x51),
			Owner:        address(0x0f),
			FundToken:    fund,
			RewardToken:  reward,
			Vesting:      address(0x52),
			ExchangeRate: types.Accuracy,
			Participants: []types.Participant{{Address: address(2), FundBalance: 10, RewardBalance: 10000}},
		},
		Whitelist: types.Whitelist{
			Contract: address(0x53),
			Owner:    address(0x0f),
			Users:    []types.AllowlistEntry{{Wallet: address(1), PublicAllocation: 100, PrivateAllocation: 50}},
		},
		Vesting: types.Vesting{
			Contract:    address(0x52),
			Owner:       address(0x0f),
			Operator:    address(0x51),
			RewardToken: reward,
			Recipients:  []types.Recipient{{Address: address(2), Amount: 10000, Withdrawn: 0}},
		},
		Locking: types.Locking{
			Contract: address(0x54),
			Owner:    address(0x0f),
			Token:    reward,
			Dead:     address(0xde),
			Locks:    []types.Lock{{Address: address(3), Amount: 0, LastLockedTime: 7}},
		},
	}
}

func TestState_ImportExport(t *testing.T) {
	t.Parallel()

	state, err := NewState(0, db.NewMemDB(), eventsdb.NewDisabledEventsStore(), 1024, 2, 0)
	require.NoError(t, err)

	genesis := testAppState()
	require.NoError(t, state.Import(genesis))
	_, err = state.Commit()
	require.NoError(t, err)

	exported, err := state.Export()
	require.NoError(t, err)

	genesis.Note = ""
	assert.Equal(t, genesis, exported)
}

func TestState_ImportRejectsZeroRate(t *testing.T) {
	t.Parallel()

	state, err := NewState(0, db.NewMemDB(), eventsdb.NewDisabledEventsStore(), 1024, 2, 0)
	require.NoError(t, err)

	genesis := testAppState()
	genesis.Sale.ExchangeRate = 0
	assert.Error(t, state.Import(genesis))
}

func TestState_DiscardAndPruning(t *testing.T) {
	t.Parallel()

	state, err := NewState(0, db.NewMemDB(), eventsdb.NewDisabledEventsStore(), 1024, 1, 0)
	require.NoError(t, err)
	require.NoError(t, state.Import(testAppState()))
	_, err = state.Commit()
	require.NoError(t, err)

	state.Tokens.SetBalance(address(0xf1), address(1), 1)
	state.Discard()
	assert.Equal(t, uint64(1000), state.Tokens.GetBalance(address(0xf1), address(1)))

	for i := 0; i < 3; i++ {
		state.Accounts.SetNonce(address(1), uint64(10+i))
		_, err = state.Commit()
		require.NoError(t, err)
	}

	assert.Equal(t, int64(4), state.Height())
	assert.Equal(t, []int{3, 4}, state.Tree().AvailableVersions())

	checkState, err := NewCheckStateAtHeight(4, state.db)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), checkState.Accounts().GetNonce(address(1)))
	assert.Equal(t, uint64(1), checkState.Whitelist().Count())
}
