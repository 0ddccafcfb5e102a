package transaction

import (
	"fmt"
	"math/big"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/merkle"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
	"github.com/MinterTeam/minter-presale/formula"
	abcTypes "github.com/tendermint/tendermint/abci/types"
)

// DepositData buys reward entitlement in the public phase. Funds are pulled from
// the sender with TransferFrom, so the sale contract should be approved first.
type DepositData struct {
	Amount     uint64
	PublicCap  uint64
	PrivateCap uint64
	Proof      []string
}

func (data DepositData) TxType() TxType {
	return TypeDeposit
}

func (data DepositData) String() string {
	return fmt.Sprintf("DEPOSIT amount:%d public_cap:%d private_cap:%d", data.Amount, data.PublicCap, data.PrivateCap)
}

func (data DepositData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	return depositRequest{
		participant: sender,
		amount:      data.Amount,
		publicCap:   data.PublicCap,
		privateCap:  data.PrivateCap,
		proof:       data.Proof,
	}.run(checkState, deliverState, currentTime)
}

type DepositPrivateSaleData struct {
	Amount     uint64
	PublicCap  uint64
	PrivateCap uint64
	Proof      []string
}

func (data DepositPrivateSaleData) TxType() TxType {
	return TypeDepositPrivateSale
}

func (data DepositPrivateSaleData) String() string {
	return fmt.Sprintf("DEPOSIT PRIVATE amount:%d public_cap:%d private_cap:%d", data.Amount, data.PublicCap, data.PrivateCap)
}

func (data DepositPrivateSaleData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	return depositRequest{
		participant: sender,
		amount:      data.Amount,
		publicCap:   data.PublicCap,
		privateCap:  data.PrivateCap,
		proof:       data.Proof,
		private:     true,
	}.run(checkState, deliverState, currentTime)
}

type depositRequest struct {
	participant   types.Address
	amount        uint64
	publicCap     uint64
	privateCap    uint64
	proof         []string
	private       bool
	fundsReceived bool
}

func (r depositRequest) run(checkState *state.CheckState, deliverState *state.State, now uint64) Response {
	config := checkState.Sale().Config()

	if r.private {
		if now < config.PrivateStartTime {
			return Response{
				Code: code.PrivateNotInProgress,
				Log:  "Private sale is not in progress",
				Info: code.EncodeError(code.NewPrivateNotInProgress(formatUint(config.PrivateStartTime), formatUint(now))),
			}
		}
	} else if now < config.PublicStartTime || now > config.EndTime() {
		return Response{
			Code: code.PublicNotInProgress,
			Log:  "Public sale is not in progress",
			Info: code.EncodeError(code.NewPublicNotInProgress(formatUint(config.PublicStartTime), formatUint(config.EndTime()), formatUint(now))),
		}
	}

	publicCap, privateCap := r.publicCap, r.privateCap
	switch {
	case config.MerkleRoot != "":
		if err := merkle.Verify(config.MerkleRoot, r.participant.String(), privateCap, publicCap, r.proof); err != nil {
			if c, _ := code.FromError(err); c == code.ProofMismatch {
				return notWhitelistedResponse(r.participant)
			}
			return errorResponse(err)
		}
	case config.UseRegistry:
		var ok bool
		privateCap, publicCap, ok = checkState.Bus().Whitelist().Allocation(r.participant)
		if !ok {
			return notWhitelistedResponse(r.participant)
		}
	}

	var fundBalance, rewardBalance, privateSoldFund uint64
	if participant := checkState.Sale().GetParticipant(r.participant); participant != nil {
		fundBalance = participant.FundBalance
		rewardBalance = participant.RewardBalance
		privateSoldFund = participant.PrivateSoldFund
	}

	newFundBalance, err := formula.SafeAdd(fundBalance, r.amount)
	if err != nil {
		return errorResponse(err)
	}

	allocation := new(big.Int).SetUint64(privateCap)
	if !r.private {
		allocation.Add(allocation, new(big.Int).SetUint64(publicCap))
		allocation.Sub(allocation, new(big.Int).SetUint64(privateSoldFund))
	}
	if allocation.Cmp(new(big.Int).SetUint64(newFundBalance)) == -1 {
		return Response{
			Code: code.ExceedAllocation,
			Log:  fmt.Sprintf("Deposit exceeds allocation of %s", r.participant.String()),
			Info: code.EncodeError(code.NewExceedAllocation(r.participant.String(), allocation.String(), formatUint(newFundBalance))),
		}
	}

	fundInfo := checkState.Bus().Tokens().Info(config.FundToken)
	if fundInfo == nil {
		return invalidInputResponse("fund_token", "token info not found")
	}
	rewardInfo := checkState.Bus().Tokens().Info(config.RewardToken)
	if rewardInfo == nil {
		return invalidInputResponse("reward_token", "token info not found")
	}

	reward, err := formula.CalculateReward(r.amount, config.ExchangeRate, fundInfo.Decimals, rewardInfo.Decimals)
	if err != nil {
		return errorResponse(err)
	}

	newRewardBalance, err := formula.SafeAdd(rewardBalance, reward)
	if err != nil {
		return errorResponse(err)
	}

	privateSold, publicSold := config.PrivateSoldAmount, config.PublicSoldAmount
	if r.private {
		if privateSoldFund, err = formula.SafeAdd(privateSoldFund, r.amount); err != nil {
			return errorResponse(err)
		}
		if privateSold, err = formula.SafeAdd(privateSold, reward); err != nil {
			return errorResponse(err)
		}
	} else if publicSold, err = formula.SafeAdd(publicSold, reward); err != nil {
		return errorResponse(err)
	}

	if deliverState != nil {
		deliverState.Sale.SetParticipant(r.participant, newFundBalance, newRewardBalance, privateSoldFund)
		deliverState.Sale.SetSoldAmounts(privateSold, publicSold)
	}

	var messages []Message
	if !r.fundsReceived {
		messages = append(messages, Message{
			Sender: config.Contract,
			Data: TransferFromData{
				Token:     config.FundToken,
				Owner:     r.participant,
				Recipient: config.Contract,
				Amount:    r.amount,
			},
		})
	}
	messages = append(messages, Message{
		Sender: config.Contract,
		Data: UpdateRecipientData{
			Recipient: r.participant,
			Amount:    newRewardBalance,
		},
	})

	phase := "public"
	if r.private {
		phase = "private"
	}

	return Response{
		Code:     code.OK,
		Messages: messages,
		Events: eventsdb.Events{eventsdb.DepositEvent{
			Address:       r.participant,
			Private:       r.private,
			FundAmount:    r.amount,
			RewardAmount:  reward,
			FundBalance:   newFundBalance,
			RewardBalance: newRewardBalance,
		}},
		Tags: []abcTypes.EventAttribute{
			{Key: []byte("tx.sale_phase"), Value: []byte(phase), Index: true},
			{Key: []byte("tx.reward_amount"), Value: []byte(formatUint(reward))},
		},
	}
}

func notWhitelistedResponse(address types.Address) Response {
	return Response{
		Code: code.NotWhitelisted,
		Log:  fmt.Sprintf("Address %s is not whitelisted", address.String()),
		Info: code.EncodeError(code.NewNotWhitelisted(address.String())),
	}
}
