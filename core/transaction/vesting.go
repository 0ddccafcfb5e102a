package transaction

import (
	"fmt"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

// UpdateRecipientData sets the total entitlement of Recipient.
// The total is expected to only grow, a smaller value is accepted as is.
type UpdateRecipientData struct {
	Recipient types.Address
	Amount    uint64
}

func (data UpdateRecipientData) TxType() TxType {
	return TypeUpdateRecipient
}

func (data UpdateRecipientData) String() string {
	return fmt.Sprintf("UPDATE RECIPIENT recipient:%s amount:%d", data.Recipient.String(), data.Amount)
}

func (data UpdateRecipientData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if config := checkState.Vesting().Config(); !config.IsAuthorized(sender) {
		return unauthorizedResponse(sender, config.Owner)
	}

	if deliverState != nil {
		deliverState.Vesting.SetRecipient(data.Recipient, data.Amount)
	}

	return Response{Code: code.OK}
}

type SetStartTimeData struct {
	StartTime uint64
}

func (data SetStartTimeData) TxType() TxType {
	return TypeSetStartTime
}

func (data SetStartTimeData) String() string {
	return fmt.Sprintf("SET START TIME start_time:%d", data.StartTime)
}

func (data SetStartTimeData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if config := checkState.Vesting().Config(); !config.IsAuthorized(sender) {
		return unauthorizedResponse(sender, config.Owner)
	}

	if deliverState != nil {
		deliverState.Vesting.SetStartTime(data.StartTime)
	}

	return Response{Code: code.OK}
}

type TransferVestingOwnershipData struct {
	NewOwner types.Address
}

func (data TransferVestingOwnershipData) TxType() TxType {
	return TypeTransferVestingOwnership
}

func (data TransferVestingOwnershipData) String() string {
	return fmt.Sprintf("TRANSFER VESTING OWNERSHIP new_owner:%s", data.NewOwner.String())
}

func (data TransferVestingOwnershipData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Vesting().Config().Owner; sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if deliverState != nil {
		deliverState.Vesting.SetOwner(data.NewOwner)
	}

	return Response{Code: code.OK}
}

// WithdrawData releases everything vested so far to the sender
type WithdrawData struct{}

func (data WithdrawData) TxType() TxType {
	return TypeWithdraw
}

func (data WithdrawData) String() string {
	return "WITHDRAW"
}

func (data WithdrawData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	recipient := checkState.Vesting().GetRecipient(sender)
	if recipient == nil {
		return nothingToWithdrawResponse(sender)
	}

	amount := checkState.Vesting().Withdrawable(sender, currentTime)
	if amount == 0 {
		return nothingToWithdrawResponse(sender)
	}

	withdrawn := recipient.Withdrawn + amount
	if deliverState != nil {
		deliverState.Vesting.SetWithdrawn(sender, withdrawn)
	}

	config := checkState.Vesting().Config()

	return Response{
		Code: code.OK,
		Messages: []Message{{
			Sender: config.Contract,
			Data: TransferData{
				Token:  config.RewardToken,
				To:     sender,
				Amount: amount,
			},
		}},
		Events: eventsdb.Events{eventsdb.VestingWithdrawEvent{
			Address:   sender,
			Amount:    amount,
			Withdrawn: withdrawn,
		}},
		Tags: []abcTypes.EventAttribute{
			{Key: []byte("tx.withdraw_amount"), Value: []byte(formatUint(amount))},
		},
	}
}
