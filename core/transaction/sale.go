package transaction

import (
	"fmt"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/merkle"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/formula"
)

type TransferSaleOwnershipData struct {
	NewOwner types.Address
}

func (data TransferSaleOwnershipData) TxType() TxType {
	return TypeTransferSaleOwnership
}

func (data TransferSaleOwnershipData) String() string {
	return fmt.Sprintf("TRANSFER SALE OWNERSHIP new_owner:%s", data.NewOwner.String())
}

func (data TransferSaleOwnershipData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Sale().Config().Owner; sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if deliverState != nil {
		deliverState.Sale.SetOwner(data.NewOwner)
	}

	return Response{Code: code.OK}
}

type SetMerkleRootData struct {
	MerkleRoot string
}

func (data SetMerkleRootData) TxType() TxType {
	return TypeSetMerkleRoot
}

func (data SetMerkleRootData) String() string {
	return fmt.Sprintf("SET MERKLE ROOT root:%s", data.MerkleRoot)
}

func (data SetMerkleRootData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Sale().Config().Owner; sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if data.MerkleRoot != "" {
		if err := merkle.ValidateRoot(data.MerkleRoot); err != nil {
			return errorResponse(err)
		}
	}

	if deliverState != nil {
		deliverState.Sale.SetMerkleRoot(data.MerkleRoot)
	}

	return Response{Code: code.OK}
}

type UpdatePresaleInfoData struct {
	PrivateStartTime uint64
	PublicStartTime  uint64
	PresalePeriod    uint64
}

func (data UpdatePresaleInfoData) TxType() TxType {
	return TypeUpdatePresaleInfo
}

func (data UpdatePresaleInfoData) String() string {
	return fmt.Sprintf("UPDATE PRESALE INFO private_start:%d public_start:%d period:%d",
		data.PrivateStartTime, data.PublicStartTime, data.PresalePeriod)
}

func (data UpdatePresaleInfoData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Sale().Config().Owner; sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if _, err := formula.SafeAdd(data.PublicStartTime, data.PresalePeriod); err != nil {
		return errorResponse(err)
	}

	if deliverState != nil {
		deliverState.Sale.SetPresaleInfo(data.PrivateStartTime, data.PublicStartTime, data.PresalePeriod)
	}

	return Response{Code: code.OK}
}

// WithdrawFundsData moves the whole fund token balance of the sale to Receiver.
// Zero receiver means the owner.
type WithdrawFundsData struct {
	Receiver types.Address
}

func (data WithdrawFundsData) TxType() TxType {
	return TypeWithdrawFunds
}

func (data WithdrawFundsData) String() string {
	return fmt.Sprintf("WITHDRAW FUNDS receiver:%s", data.Receiver.String())
}

func (data WithdrawFundsData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, _ := contexts(context)

	config := checkState.Sale().Config()
	if errResp := checkSaleFinished(config.Owner, config.EndTime(), sender, currentTime); errResp != nil {
		return *errResp
	}

	balance := checkState.Tokens().GetBalance(config.FundToken, config.Contract)
	if balance == 0 {
		return nothingToWithdrawResponse(config.Contract)
	}

	return Response{
		Code: code.OK,
		Messages: []Message{{
			Sender: config.Contract,
			Data: TransferData{
				Token:  config.FundToken,
				To:     receiverOrSender(data.Receiver, sender),
				Amount: balance,
			},
		}},
	}
}

// WithdrawUnsoldTokenData pulls reward tokens which are not sold from the vesting contract
type WithdrawUnsoldTokenData struct {
	Receiver types.Address
}

func (data WithdrawUnsoldTokenData) TxType() TxType {
	return TypeWithdrawUnsoldToken
}

func (data WithdrawUnsoldTokenData) String() string {
	return fmt.Sprintf("WITHDRAW UNSOLD TOKEN receiver:%s", data.Receiver.String())
}

func (data WithdrawUnsoldTokenData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, _ := contexts(context)

	config := checkState.Sale().Config()
	if errResp := checkSaleFinished(config.Owner, config.EndTime(), sender, currentTime); errResp != nil {
		return *errResp
	}

	sold, err := formula.SafeAdd(config.PrivateSoldAmount, config.PublicSoldAmount)
	if err != nil {
		return errorResponse(err)
	}

	balance := checkState.Tokens().GetBalance(config.RewardToken, config.Vesting)
	if balance < sold {
		return insufficientBalanceResponse(config.Vesting, config.RewardToken, sold, balance)
	}
	if balance == sold {
		return nothingToWithdrawResponse(config.Vesting)
	}

	return Response{
		Code: code.OK,
		Messages: []Message{{
			Sender: config.Contract,
			Data: TransferFromData{
				Token:     config.RewardToken,
				Owner:     config.Vesting,
				Recipient: receiverOrSender(data.Receiver, sender),
				Amount:    balance - sold,
			},
		}},
	}
}

// StartVestingData sets the vesting start to the next second
type StartVestingData struct{}

func (data StartVestingData) TxType() TxType {
	return TypeStartVesting
}

func (data StartVestingData) String() string {
	return "START VESTING"
}

func (data StartVestingData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, _ := contexts(context)

	config := checkState.Sale().Config()
	if errResp := checkSaleFinished(config.Owner, config.EndTime(), sender, currentTime); errResp != nil {
		return *errResp
	}

	return Response{
		Code: code.OK,
		Messages: []Message{{
			Sender: config.Contract,
			Data:   SetStartTimeData{StartTime: currentTime + 1},
		}},
	}
}

func checkSaleFinished(owner types.Address, endTime uint64, sender types.Address, now uint64) *Response {
	if sender != owner {
		errResp := unauthorizedResponse(sender, owner)
		return &errResp
	}

	if now <= endTime {
		errResp := stillInProgressResponse(endTime, now)
		return &errResp
	}

	return nil
}

func receiverOrSender(receiver types.Address, sender types.Address) types.Address {
	if receiver.IsZero() {
		return sender
	}
	return receiver
}
