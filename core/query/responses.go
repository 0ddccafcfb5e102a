package query

import (
	"strings"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// Sale phases reported by sale_status
const (
	PhaseNotStarted = "not_started"
	PhasePrivate    = "private"
	PhasePublic     = "public"
	PhaseFinished   = "finished"
)

type CountResponse struct {
	Count uint64 `json:"count,string"`
}

type AmountResponse struct {
	Amount uint64 `json:"amount,string"`
}

type ParticipantsResponse struct {
	Participants []types.Address `json:"participants"`
}

type UsersResponse struct {
	Users []types.Address `json:"users"`
}

type SaleConfigResponse struct {
	Contract           types.Address `json:"contract"`
	Owner              types.Address `json:"owner"`
	FundToken          types.Address `json:"fund_token"`
	RewardToken        types.Address `json:"reward_token"`
	Vesting            types.Address `json:"vesting"`
	MerkleRoot         string        `json:"merkle_root"`
	UseRegistry        bool          `json:"use_registry"`
	ExchangeRate       uint64        `json:"exchange_rate,string"`
	PrivateStartTime   uint64        `json:"private_start_time,string"`
	PublicStartTime    uint64        `json:"public_start_time,string"`
	PresalePeriod      uint64        `json:"presale_period,string"`
	DistributionAmount uint64        `json:"distribution_amount,string"`
}

type SaleStatusResponse struct {
	Phase              string `json:"phase"`
	PrivateSoldAmount  uint64 `json:"private_sold_amount,string"`
	PublicSoldAmount   uint64 `json:"public_sold_amount,string"`
	DistributionAmount uint64 `json:"distribution_amount,string"`
	ParticipantsCount  uint64 `json:"participants_count,string"`
	EndTime            uint64 `json:"end_time,string"`
}

type ParticipantResponse struct {
	Address         types.Address `json:"address"`
	FundBalance     uint64        `json:"fund_balance,string"`
	RewardBalance   uint64        `json:"reward_balance,string"`
	PrivateSoldFund uint64        `json:"private_sold_fund,string"`
}

// UserResponse of an unknown wallet has an empty wallet and zero allocations
type UserResponse struct {
	Wallet            string `json:"wallet"`
	PublicAllocation  uint64 `json:"public_allocation,string"`
	PrivateAllocation uint64 `json:"private_allocation,string"`
}

type VestingConfigResponse struct {
	Contract        types.Address `json:"contract"`
	Owner           types.Address `json:"owner"`
	Operator        types.Address `json:"operator"`
	RewardToken     types.Address `json:"reward_token"`
	StartTime       uint64        `json:"start_time,string"`
	LockPeriod      uint64        `json:"lock_period,string"`
	ReleaseInterval uint64        `json:"release_interval,string"`
	ReleaseRate     uint64        `json:"release_rate,string"`
	InitialUnlock   uint64        `json:"initial_unlock,string"`
	VestingPeriod   uint64        `json:"vesting_period,string"`
}

type RecipientResponse struct {
	Address      types.Address `json:"address"`
	Amount       uint64        `json:"amount,string"`
	Withdrawn    uint64        `json:"withdrawn,string"`
	Vested       uint64        `json:"vested,string"`
	Withdrawable uint64        `json:"withdrawable,string"`
}

type LockingConfigResponse struct {
	Contract      types.Address `json:"contract"`
	Owner         types.Address `json:"owner"`
	Token         types.Address `json:"token"`
	PenaltyPeriod uint64        `json:"penalty_period,string"`
	Dead          types.Address `json:"dead"`
}

type LockInfoResponse struct {
	Address        types.Address `json:"address"`
	Amount         uint64        `json:"amount,string"`
	LastLockedTime uint64        `json:"last_locked_time,string"`
}

type LockedAccountsResponse struct {
	Accounts []LockInfoResponse `json:"accounts"`
}

type TokenInfoResponse struct {
	Address     types.Address `json:"address"`
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint8         `json:"decimals"`
	TotalSupply uint64        `json:"total_supply,string"`
}

func saleConfig(cState *state.CheckState) SaleConfigResponse {
	config := cState.Sale().Config()
	return SaleConfigResponse{
		Contract:           config.Contract,
		Owner:              config.Owner,
		FundToken:          config.FundToken,
		RewardToken:        config.RewardToken,
		Vesting:            config.Vesting,
		MerkleRoot:         config.MerkleRoot,
		UseRegistry:        config.UseRegistry,
		ExchangeRate:       config.ExchangeRate,
		PrivateStartTime:   config.PrivateStartTime,
		PublicStartTime:    config.PublicStartTime,
		PresalePeriod:      config.PresalePeriod,
		DistributionAmount: config.DistributionAmount,
	}
}

func saleStatus(cState *state.CheckState, now uint64) SaleStatusResponse {
	config := cState.Sale().Config()

	phase := PhaseNotStarted
	switch {
	case now > config.EndTime():
		phase = PhaseFinished
	case now >= config.PublicStartTime:
		phase = PhasePublic
	case now >= config.PrivateStartTime:
		phase = PhasePrivate
	}

	return SaleStatusResponse{
		Phase:              phase,
		PrivateSoldAmount:  config.PrivateSoldAmount,
		PublicSoldAmount:   config.PublicSoldAmount,
		DistributionAmount: config.DistributionAmount,
		ParticipantsCount:  cState.Sale().ParticipantsCount(),
		EndTime:            config.EndTime(),
	}
}

func participant(cState *state.CheckState, address types.Address) (*ParticipantResponse, error) {
	p := cState.Sale().GetParticipant(address)
	if p == nil {
		return nil, sdkerrors.Wrapf(code.ErrInvalidInput, "participant %s not found", address.String())
	}

	return &ParticipantResponse{
		Address:         address,
		FundBalance:     p.FundBalance,
		RewardBalance:   p.RewardBalance,
		PrivateSoldFund: p.PrivateSoldFund,
	}, nil
}

func user(cState *state.CheckState, address types.Address) UserResponse {
	entry := cState.Whitelist().Get(address)
	if entry == nil {
		return UserResponse{}
	}

	return UserResponse{
		Wallet:            address.String(),
		PublicAllocation:  entry.PublicAllocation,
		PrivateAllocation: entry.PrivateAllocation,
	}
}

func vestingConfig(cState *state.CheckState) VestingConfigResponse {
	config := cState.Vesting().Config()
	return VestingConfigResponse{
		Contract:        config.Contract,
		Owner:           config.Owner,
		Operator:        config.Operator,
		RewardToken:     config.RewardToken,
		StartTime:       config.StartTime,
		LockPeriod:      config.LockPeriod,
		ReleaseInterval: config.ReleaseInterval,
		ReleaseRate:     config.ReleaseRate,
		InitialUnlock:   config.InitialUnlock,
		VestingPeriod:   config.VestingPeriod,
	}
}

func recipient(cState *state.CheckState, address types.Address, now uint64) RecipientResponse {
	response := RecipientResponse{Address: address}
	if r := cState.Vesting().GetRecipient(address); r != nil {
		response.Amount = r.Amount
		response.Withdrawn = r.Withdrawn
		response.Vested = cState.Vesting().Vested(address, now)
		response.Withdrawable = cState.Vesting().Withdrawable(address, now)
	}

	return response
}

func lockingConfig(cState *state.CheckState) LockingConfigResponse {
	config := cState.Locking().Config()
	return LockingConfigResponse{
		Contract:      config.Contract,
		Owner:         config.Owner,
		Token:         config.Token,
		PenaltyPeriod: config.PenaltyPeriod,
		Dead:          config.Dead,
	}
}

func lockInfo(cState *state.CheckState, address types.Address) LockInfoResponse {
	response := LockInfoResponse{Address: address}
	if info := cState.Locking().GetInfo(address); info != nil {
		response.Amount = info.Amount
		response.LastLockedTime = info.LastLockedTime
	}

	return response
}

func lockedAccounts(cState *state.CheckState, req *LockedRequest) LockedAccountsResponse {
	descending := strings.ToLower(req.OrderBy) == OrderDesc

	response := LockedAccountsResponse{Accounts: []LockInfoResponse{}}
	for _, info := range cState.Locking().LockedAccounts(req.StartAfter, req.Limit, descending) {
		response.Accounts = append(response.Accounts, LockInfoResponse{
			Address:        info.Address(),
			Amount:         info.Amount,
			LastLockedTime: info.LastLockedTime,
		})
	}

	return response
}

func tokenInfo(cState *state.CheckState, address types.Address) (*TokenInfoResponse, error) {
	token := cState.Tokens().GetToken(address)
	if token == nil {
		return nil, sdkerrors.Wrapf(code.ErrUnknownToken, "token %s", address.String())
	}

	return &TokenInfoResponse{
		Address:     address,
		Name:        token.Name(),
		Symbol:      token.Symbol(),
		Decimals:    token.Decimals(),
		TotalSupply: token.TotalSupply(),
	}, nil
}
