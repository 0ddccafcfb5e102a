package eventsdb

import (
	"encoding/json"
	"strconv"

	"github.com/MinterTeam/minter-presale/core/types"
)

// Event type names
const (
	TypeDepositEvent         = "presale/DepositEvent"
	TypeVestingWithdrawEvent = "presale/VestingWithdrawEvent"
	TypeLockEvent            = "presale/LockEvent"
	TypeUnlockEvent          = "presale/UnlockEvent"
	TypeTransferEvent        = "presale/TransferEvent"
)

type Event interface {
	Type() string
}

type Events []Event

type DepositEvent struct {
	Address       types.Address
	Private       bool
	FundAmount    uint64
	RewardAmount  uint64
	FundBalance   uint64
	RewardBalance uint64
}

func (e DepositEvent) Type() string {
	return TypeDepositEvent
}

func (e DepositEvent) MarshalJSON() ([]byte, error) {
	phase := "public"
	if e.Private {
		phase = "private"
	}
	return json.Marshal(struct {
		Address       string `json:"address"`
		Phase         string `json:"phase"`
		FundAmount    string `json:"fund_amount"`
		RewardAmount  string `json:"reward_amount"`
		FundBalance   string `json:"fund_balance"`
		RewardBalance string `json:"reward_balance"`
	}{
		Address:       e.Address.String(),
		Phase:         phase,
		FundAmount:    strconv.FormatUint(e.FundAmount, 10),
		RewardAmount:  strconv.FormatUint(e.RewardAmount, 10),
		FundBalance:   strconv.FormatUint(e.FundBalance, 10),
		RewardBalance: strconv.FormatUint(e.RewardBalance, 10),
	})
}

type VestingWithdrawEvent struct {
	Address   types.Address
	Amount    uint64
	Withdrawn uint64
}

func (e VestingWithdrawEvent) Type() string {
	return TypeVestingWithdrawEvent
}

func (e VestingWithdrawEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Address   string `json:"address"`
		Amount    string `json:"amount"`
		Withdrawn string `json:"withdrawn"`
	}{
		Address:   e.Address.String(),
		Amount:    strconv.FormatUint(e.Amount, 10),
		Withdrawn: strconv.FormatUint(e.Withdrawn, 10),
	})
}

type LockEvent struct {
	Address        types.Address
	Amount         uint64
	LastLockedTime uint64
}

func (e LockEvent) Type() string {
	return TypeLockEvent
}

func (e LockEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Address        string `json:"address"`
		Amount         string `json:"amount"`
		LastLockedTime string `json:"last_locked_time"`
	}{
		Address:        e.Address.String(),
		Amount:         strconv.FormatUint(e.Amount, 10),
		LastLockedTime: strconv.FormatUint(e.LastLockedTime, 10),
	})
}

type UnlockEvent struct {
	Address types.Address
	Amount  uint64
	Penalty uint64
}

func (e UnlockEvent) Type() string {
	return TypeUnlockEvent
}

func (e UnlockEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Address string `json:"address"`
		Amount  string `json:"amount"`
		Penalty string `json:"penalty"`
	}{
		Address: e.Address.String(),
		Amount:  strconv.FormatUint(e.Amount, 10),
		Penalty: strconv.FormatUint(e.Penalty, 10),
	})
}

type TransferEvent struct {
	Token  types.Address
	From   types.Address
	To     types.Address
	Amount uint64
}

func (e TransferEvent) Type() string {
	return TypeTransferEvent
}

func (e TransferEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Token  string `json:"token"`
		From   string `json:"from"`
		To     string `json:"to"`
		Amount string `json:"amount"`
	}{
		Token:  e.Token.String(),
		From:   e.From.String(),
		To:     e.To.String(),
		Amount: strconv.FormatUint(e.Amount, 10),
	})
}
