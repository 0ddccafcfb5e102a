package transaction

import (
	"fmt"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	"github.com/MinterTeam/minter-presale/formula"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

// LockData replaces the locked amount of the sender and restarts the penalty clock.
// Tokens are pulled with TransferFrom, so the locking contract should be approved first.
type LockData struct {
	Amount uint64
}

func (data LockData) TxType() TxType {
	return TypeLock
}

func (data LockData) String() string {
	return fmt.Sprintf("LOCK amount:%d", data.Amount)
}

func (data LockData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if deliverState != nil {
		deliverState.Locking.SetInfo(sender, data.Amount, currentTime)
	}

	config := checkState.Locking().Config()

	var messages []Message
	if data.Amount > 0 {
		messages = append(messages, Message{
			Sender: config.Contract,
			Data: TransferFromData{
				Token:     config.Token,
				Owner:     sender,
				Recipient: config.Contract,
				Amount:    data.Amount,
			},
		})
	}

	return Response{
		Code:     code.OK,
		Messages: messages,
		Events: eventsdb.Events{eventsdb.LockEvent{
			Address:        sender,
			Amount:         data.Amount,
			LastLockedTime: currentTime,
		}},
	}
}

type UnlockData struct {
	Amount uint64
}

func (data UnlockData) TxType() TxType {
	return TypeUnlock
}

func (data UnlockData) String() string {
	return fmt.Sprintf("UNLOCK amount:%d", data.Amount)
}

func (data UnlockData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	config := checkState.Locking().Config()

	info := checkState.Locking().GetInfo(sender)
	if info == nil {
		return insufficientBalanceResponse(sender, config.Token, data.Amount, 0)
	}
	if info.Amount < data.Amount {
		return insufficientBalanceResponse(sender, config.Token, data.Amount, info.Amount)
	}

	penalty := formula.CalculatePenalty(data.Amount, info.LastLockedTime, currentTime)

	if deliverState != nil {
		deliverState.Locking.SetAmount(sender, info.Amount-data.Amount)
	}

	var messages []Message
	if penalty > 0 {
		messages = append(messages, Message{
			Sender: config.Contract,
			Data: TransferData{
				Token:  config.Token,
				To:     config.Dead,
				Amount: penalty,
			},
		})
	}
	messages = append(messages, Message{
		Sender: config.Contract,
		Data: TransferData{
			Token:  config.Token,
			To:     sender,
			Amount: data.Amount - penalty,
		},
	})

	return Response{
		Code:     code.OK,
		Messages: messages,
		Events: eventsdb.Events{eventsdb.UnlockEvent{
			Address: sender,
			Amount:  data.Amount,
			Penalty: penalty,
		}},
		Tags: []abcTypes.EventAttribute{
			{Key: []byte("tx.penalty"), Value: []byte(formatUint(penalty))},
		},
	}
}

// UpdateLockingConfigData changes the non-zero fields only
type UpdateLockingConfigData struct {
	Owner         types.Address
	Token         types.Address
	PenaltyPeriod uint64
	Dead          types.Address
}

func (data UpdateLockingConfigData) TxType() TxType {
	return TypeUpdateLockingConfig
}

func (data UpdateLockingConfigData) String() string {
	return fmt.Sprintf("UPDATE LOCKING CONFIG owner:%s token:%s penalty_period:%d dead:%s",
		data.Owner.String(), data.Token.String(), data.PenaltyPeriod, data.Dead.String())
}

func (data UpdateLockingConfigData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Locking().Config().Owner; sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if !data.Token.IsZero() && !checkState.Tokens().Exists(data.Token) {
		return unknownTokenResponse(data.Token)
	}

	if deliverState != nil {
		deliverState.Locking.UpdateConfig(data.Owner, data.Token, data.PenaltyPeriod, data.Dead)
	}

	return Response{Code: code.OK}
}
