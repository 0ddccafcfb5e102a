package query

import (
	"encoding/json"
	"testing"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	db "github.com/tendermint/tm-db"
)

func address(b byte) types.Address {
	return types.BytesToAddress([]byte{b})
}

func testState(t *testing.T) *state.CheckState {
	t.Helper()

	fund, reward := address(0xf1), address(0xf2)
	genesis := types.AppState{
		Tokens: []types.Token{
			{Address: fund, Name: "Fund", Symbol: "FUND", Decimals: 6, TotalSupply: 100, Balances: []types.Balance{{Holder: address(1), Amount: 100}}},
			{Address: reward, Name: "Reward", Symbol: "RWD", Decimals: 9, TotalSupply: 1000, Balances: []types.Balance{{Holder: address(0x52), Amount: 1000}}},
		},
		Sale: types.Sale{
			Contract:          address(0x51),
			Owner:             address(0x0f),
			FundToken:         fund,
			RewardToken:       reward,
			Vesting:           address(0x52),
			ExchangeRate:      types.Accuracy,
			PrivateStartTime:  100,
			PublicStartTime:   200,
			PresalePeriod:     100,
			PrivateSoldAmount: 7,
			Participants: []types.Participant{
				{Address: address(1), FundBalance: 10, RewardBalance: 10000},
				{Address: address(2), FundBalance: 20, RewardBalance: 20000},
			},
		},
		Whitelist: types.Whitelist{
			Contract: address(0x53),
			Owner:    address(0x0f),
			Users:    []types.AllowlistEntry{{Wallet: address(1), PublicAllocation: 100, PrivateAllocation: 50}},
		},
		Vesting: types.Vesting{
			Contract:        address(0x52),
			Owner:           address(0x0f),
			RewardToken:     reward,
			StartTime:       1,
			LockPeriod:      600,
			ReleaseInterval: 60,
			ReleaseRate:     100,
			InitialUnlock:   100,
			Recipients:      []types.Recipient{{Address: address(1), Amount: 1000, Withdrawn: 100}},
		},
		Locking: types.Locking{
			Contract: address(0x54),
			Owner:    address(0x0f),
			Token:    reward,
			Dead:     address(0xde),
			Locks: []types.Lock{
				{Address: address(3), Amount: 30, LastLockedTime: 3},
				{Address: address(4), Amount: 40, LastLockedTime: 4},
				{Address: address(5), Amount: 50, LastLockedTime: 5},
			},
		},
	}

	s, err := state.NewState(0, db.NewMemDB(), eventsdb.NewDisabledEventsStore(), 1024, 1, 0)
	require.NoError(t, err)
	require.NoError(t, s.Import(genesis))
	_, err = s.Commit()
	require.NoError(t, err)

	return state.NewCheckState(s)
}

func run(t *testing.T, cState *state.CheckState, raw string, now uint64) (interface{}, error) {
	t.Helper()

	q, err := Decode([]byte(raw))
	if err != nil {
		return nil, err
	}

	return Run(q, cState, now)
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{}`,
		`not json`,
		`{"unknown":{}}`,
		`{"sale_config":{},"sale_status":{}}`,
		`{"participant":{"user":"bad"}}`,
		`{"locked_accounts":{"order_by":"sideways"}}`,
	} {
		_, err := Decode([]byte(raw))
		require.Error(t, err, raw)
		c, _ := code.FromError(err)
		assert.Equal(t, code.InvalidInput, c, raw)
	}
}

func TestDecode_Name(t *testing.T) {
	t.Parallel()

	q, err := Decode([]byte(`{"users":{"page":"0","limit":"10"}}`))
	require.NoError(t, err)
	assert.Equal(t, "users", q.Name())
	assert.Equal(t, uint64(10), q.Users.Limit)
}

func TestRun_Sale(t *testing.T) {
	t.Parallel()

	cState := testState(t)

	for now, phase := range map[uint64]string{50: PhaseNotStarted, 150: PhasePrivate, 250: PhasePublic, 301: PhaseFinished} {
		result, err := run(t, cState, `{"sale_status":{}}`, now)
		require.NoError(t, err)
		status := result.(SaleStatusResponse)
		assert.Equal(t, phase, status.Phase, "now %d", now)
		assert.Equal(t, uint64(7), status.PrivateSoldAmount)
		assert.Equal(t, uint64(2), status.ParticipantsCount)
	}

	result, err := run(t, cState, `{"participants":{"page":"1","limit":"1"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Address{address(2)}, result.(ParticipantsResponse).Participants)

	result, err = run(t, cState, `{"participants":{"page":"5","limit":"1"}}`, 0)
	require.NoError(t, err)
	assert.Empty(t, result.(ParticipantsResponse).Participants)

	result, err = run(t, cState, `{"participant":{"user":"`+address(2).String()+`"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(20000), result.(*ParticipantResponse).RewardBalance)

	_, err = run(t, cState, `{"participant":{"user":"`+address(9).String()+`"}}`, 0)
	assert.True(t, sdkerrors.IsOf(err, code.ErrInvalidInput))

	result, err = run(t, cState, `{"sale_config":{}}`, 0)
	require.NoError(t, err)
	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"exchange_rate":"100000000"`)
}

func TestRun_Whitelist(t *testing.T) {
	t.Parallel()

	cState := testState(t)

	result, err := run(t, cState, `{"users_count":{}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.(CountResponse).Count)

	result, err = run(t, cState, `{"user":{"user":"`+address(1).String()+`"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, UserResponse{Wallet: address(1).String(), PublicAllocation: 100, PrivateAllocation: 50}, result)

	result, err = run(t, cState, `{"user":{"user":"`+address(2).String()+`"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, UserResponse{}, result)
}

func TestRun_Vesting(t *testing.T) {
	t.Parallel()

	cState := testState(t)
	user := address(1).String()

	result, err := run(t, cState, `{"vested":{"user":"`+user+`"}}`, 1+660)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), result.(AmountResponse).Amount)

	result, err = run(t, cState, `{"withdrawable":{"user":"`+user+`"}}`, 1+660)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), result.(AmountResponse).Amount)

	result, err = run(t, cState, `{"recipient":{"user":"`+user+`"}}`, 1+6600)
	require.NoError(t, err)
	assert.Equal(t, RecipientResponse{Address: address(1), Amount: 1000, Withdrawn: 100, Vested: 1000, Withdrawable: 900}, result)
}

func TestRun_LockedAccounts(t *testing.T) {
	t.Parallel()

	cState := testState(t)

	result, err := run(t, cState, `{"locked_accounts":{}}`, 0)
	require.NoError(t, err)
	require.Len(t, result.(LockedAccountsResponse).Accounts, 3)

	result, err = run(t, cState, `{"locked_accounts":{"start_after":"`+address(3).String()+`","limit":"1"}}`, 0)
	require.NoError(t, err)
	accounts := result.(LockedAccountsResponse).Accounts
	require.Len(t, accounts, 1)
	assert.Equal(t, address(4), accounts[0].Address)

	result, err = run(t, cState, `{"locked_accounts":{"order_by":"desc"}}`, 0)
	require.NoError(t, err)
	accounts = result.(LockedAccountsResponse).Accounts
	require.Len(t, accounts, 3)
	assert.Equal(t, address(5), accounts[0].Address)

	result, err = run(t, cState, `{"lock_info":{"user":"`+address(9).String()+`"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.(LockInfoResponse).Amount)
}

func TestRun_Tokens(t *testing.T) {
	t.Parallel()

	cState := testState(t)

	result, err := run(t, cState, `{"token_info":{"token":"`+address(0xf1).String()+`"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, "FUND", result.(*TokenInfoResponse).Symbol)

	_, err = run(t, cState, `{"token_info":{"token":"`+address(0xaa).String()+`"}}`, 0)
	assert.True(t, sdkerrors.IsOf(err, code.ErrUnknownToken))

	result, err = run(t, cState, `{"balance":{"token":"`+address(0xf1).String()+`","address":"`+address(1).String()+`"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), result.(AmountResponse).Amount)
}
