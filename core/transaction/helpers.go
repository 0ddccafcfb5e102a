package transaction

import (
	"fmt"
	"strconv"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
)

// contexts returns the read view and, for deliver calls, the mutable state
func contexts(context state.Interface) (*state.CheckState, *state.State) {
	if checkState, isCheck := context.(*state.CheckState); isCheck {
		return checkState, nil
	}

	deliverState := context.(*state.State)
	return state.NewCheckState(deliverState), deliverState
}

func errorResponse(err error) Response {
	c, log := code.FromError(err)
	return Response{
		Code: c,
		Log:  log,
		Info: code.EncodeError(code.NewCustomCode(c)),
	}
}

func unauthorizedResponse(sender types.Address, expected types.Address) Response {
	return Response{
		Code: code.Unauthorized,
		Log:  fmt.Sprintf("Sender %s is not allowed to call this method", sender.String()),
		Info: code.EncodeError(code.NewUnauthorized(sender.String(), expected.String())),
	}
}

func invalidInputResponse(field string, reason string) Response {
	return Response{
		Code: code.InvalidInput,
		Log:  fmt.Sprintf("Invalid %s: %s", field, reason),
		Info: code.EncodeError(code.NewInvalidInput(field, reason)),
	}
}

func overflowResponse(operation string) Response {
	return Response{
		Code: code.AmountOverflow,
		Log:  fmt.Sprintf("Amount overflow in %s", operation),
		Info: code.EncodeError(code.NewAmountOverflow(operation)),
	}
}

func insufficientBalanceResponse(holder types.Address, token types.Address, needed uint64, balance uint64) Response {
	return Response{
		Code: code.InsufficientBalance,
		Log:  fmt.Sprintf("Insufficient balance of %s in token %s. Wanted %d, has %d", holder.String(), token.String(), needed, balance),
		Info: code.EncodeError(code.NewInsufficientBalance(holder.String(), token.String(), strconv.FormatUint(needed, 10), strconv.FormatUint(balance, 10))),
	}
}

func stillInProgressResponse(endTime uint64, now uint64) Response {
	return Response{
		Code: code.StillInProgress,
		Log:  fmt.Sprintf("Presale is in progress until %d", endTime),
		Info: code.EncodeError(code.NewStillInProgress(strconv.FormatUint(endTime, 10), strconv.FormatUint(now, 10))),
	}
}

func nothingToWithdrawResponse(address types.Address) Response {
	return Response{
		Code: code.NothingToWithdraw,
		Log:  fmt.Sprintf("Nothing to withdraw for %s", address.String()),
		Info: code.EncodeError(code.NewNothingToWithdraw(address.String())),
	}
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
