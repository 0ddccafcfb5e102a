package transaction

import (
	"encoding/json"
	"fmt"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/eventsdb"
)

type TransferData struct {
	Token  types.Address
	To     types.Address
	Amount uint64
}

func (data TransferData) TxType() TxType {
	return TypeTransfer
}

func (data TransferData) String() string {
	return fmt.Sprintf("TRANSFER token:%s to:%s amount:%d", data.Token.String(), data.To.String(), data.Amount)
}

func (data TransferData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	var response Response
	if errResp := transfer(checkState, deliverState, &response, data.Token, sender, data.To, data.Amount); errResp != nil {
		return *errResp
	}

	return response
}

type TransferFromData struct {
	Token     types.Address
	Owner     types.Address
	Recipient types.Address
	Amount    uint64
}

func (data TransferFromData) TxType() TxType {
	return TypeTransferFrom
}

func (data TransferFromData) String() string {
	return fmt.Sprintf("TRANSFER FROM token:%s owner:%s recipient:%s amount:%d",
		data.Token.String(), data.Owner.String(), data.Recipient.String(), data.Amount)
}

func (data TransferFromData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if !checkState.Tokens().Exists(data.Token) {
		return unknownTokenResponse(data.Token)
	}

	allowance := checkState.Tokens().GetAllowance(data.Token, data.Owner, sender)
	if allowance < data.Amount {
		return Response{
			Code: code.InsufficientAllowance,
			Log:  fmt.Sprintf("Insufficient allowance of %s for %s. Wanted %d, has %d", data.Owner.String(), sender.String(), data.Amount, allowance),
			Info: code.EncodeError(code.NewInsufficientAllowance(data.Owner.String(), sender.String(), data.Token.String(), formatUint(data.Amount), formatUint(allowance))),
		}
	}

	var response Response
	if errResp := transfer(checkState, deliverState, &response, data.Token, data.Owner, data.Recipient, data.Amount); errResp != nil {
		return *errResp
	}

	if deliverState != nil {
		deliverState.Tokens.SetAllowance(data.Token, data.Owner, sender, allowance-data.Amount)
	}

	return response
}

type ApproveData struct {
	Token   types.Address
	Spender types.Address
	Amount  uint64
}

func (data ApproveData) TxType() TxType {
	return TypeApprove
}

func (data ApproveData) String() string {
	return fmt.Sprintf("APPROVE token:%s spender:%s amount:%d", data.Token.String(), data.Spender.String(), data.Amount)
}

func (data ApproveData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if !checkState.Tokens().Exists(data.Token) {
		return unknownTokenResponse(data.Token)
	}

	if deliverState != nil {
		deliverState.Tokens.SetAllowance(data.Token, sender, data.Spender, data.Amount)
	}

	return Response{Code: code.OK}
}

// SendData transfers tokens to a contract and invokes its receive hook in the same call
type SendData struct {
	Token    types.Address
	Contract types.Address
	Amount   uint64
	Msg      []byte
}

// ReceiveMsg is the payload of the sale receive hook. Exactly one field is set.
type ReceiveMsg struct {
	Deposit            *DepositHook `json:"deposit,omitempty"`
	DepositPrivateSale *DepositHook `json:"deposit_private_sale,omitempty"`
}

type DepositHook struct {
	PublicCap  uint64   `json:"public_allocation,string"`
	PrivateCap uint64   `json:"private_allocation,string"`
	Proof      []string `json:"proof"`
}

func (data SendData) TxType() TxType {
	return TypeSend
}

func (data SendData) String() string {
	return fmt.Sprintf("SEND token:%s contract:%s amount:%d", data.Token.String(), data.Contract.String(), data.Amount)
}

func (data SendData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	saleConfig := checkState.Sale().Config()
	if data.Contract != saleConfig.Contract {
		return invalidInputResponse("contract", fmt.Sprintf("%s has no receive hook", data.Contract.String()))
	}

	if data.Token != saleConfig.FundToken {
		return unauthorizedResponse(data.Token, saleConfig.FundToken)
	}

	var msg ReceiveMsg
	if err := json.Unmarshal(data.Msg, &msg); err != nil {
		return invalidInputResponse("msg", err.Error())
	}

	var hook *DepositHook
	var private bool
	switch {
	case msg.Deposit != nil && msg.DepositPrivateSale == nil:
		hook = msg.Deposit
	case msg.DepositPrivateSale != nil && msg.Deposit == nil:
		hook, private = msg.DepositPrivateSale, true
	default:
		return invalidInputResponse("msg", "exactly one hook message expected")
	}

	var response Response
	if errResp := transfer(checkState, deliverState, &response, data.Token, sender, data.Contract, data.Amount); errResp != nil {
		return *errResp
	}

	request := depositRequest{
		participant:   sender,
		amount:        data.Amount,
		publicCap:     hook.PublicCap,
		privateCap:    hook.PrivateCap,
		proof:         hook.Proof,
		private:       private,
		fundsReceived: true,
	}

	hookResponse := request.run(checkState, deliverState, currentTime)
	if !hookResponse.IsOK() {
		return hookResponse
	}

	hookResponse.Events = append(response.Events, hookResponse.Events...)
	hookResponse.Tags = append(response.Tags, hookResponse.Tags...)

	return hookResponse
}

// transfer moves amount of token, recording the event into response.
// Nothing is changed when deliverState is nil.
func transfer(checkState *state.CheckState, deliverState *state.State, response *Response, token types.Address, from types.Address, to types.Address, amount uint64) *Response {
	if !checkState.Tokens().Exists(token) {
		errResp := unknownTokenResponse(token)
		return &errResp
	}

	balance := checkState.Tokens().GetBalance(token, from)
	if balance < amount {
		errResp := insufficientBalanceResponse(from, token, amount, balance)
		return &errResp
	}

	if from != to && checkState.Tokens().GetBalance(token, to)+amount < amount {
		errResp := overflowResponse("transfer")
		return &errResp
	}

	if deliverState != nil {
		deliverState.Tokens.SubBalance(token, from, amount)
		deliverState.Tokens.AddBalance(token, to, amount)
	}

	response.Code = code.OK
	response.Events = append(response.Events, eventsdb.TransferEvent{
		Token:  token,
		From:   from,
		To:     to,
		Amount: amount,
	})

	return nil
}

func unknownTokenResponse(token types.Address) Response {
	return Response{
		Code: code.UnknownToken,
		Log:  fmt.Sprintf("Token %s not exists", token.String()),
		Info: code.EncodeError(code.NewUnknownToken(token.String())),
	}
}
