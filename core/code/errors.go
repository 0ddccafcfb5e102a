package code

import (
	"encoding/json"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// Codespace of every error registered by the node
const Codespace = "presale"

// Errors returned by the pure layers (merkle, formula, genesis checks). Each one
// carries the same numeric code as the matching response constant.
var (
	ErrInvalidInput          = sdkerrors.Register(Codespace, InvalidInput, "invalid input")
	ErrAmountOverflow        = sdkerrors.Register(Codespace, AmountOverflow, "amount overflow")
	ErrUnauthorized          = sdkerrors.Register(Codespace, Unauthorized, "unauthorized")
	ErrInsufficientBalance   = sdkerrors.Register(Codespace, InsufficientBalance, "insufficient balance")
	ErrNotWhitelisted        = sdkerrors.Register(Codespace, NotWhitelisted, "not whitelisted")
	ErrProofMismatch         = sdkerrors.Register(Codespace, ProofMismatch, "merkle proof mismatch")
	ErrProofDecode           = sdkerrors.Register(Codespace, ProofDecodeError, "merkle proof decode error")
	ErrExceedAllocation      = sdkerrors.Register(Codespace, ExceedAllocation, "exceed allocation")
	ErrNothingToWithdraw     = sdkerrors.Register(Codespace, NothingToWithdraw, "nothing to withdraw")
	ErrUnknownToken          = sdkerrors.Register(Codespace, UnknownToken, "unknown token")
	ErrInsufficientAllowance = sdkerrors.Register(Codespace, InsufficientAllowance, "insufficient allowance")
)

// FromError converts an error into response code and log. Errors which were not
// registered in the presale codespace are reported as DecodeError.
func FromError(err error) (uint32, string) {
	if err == nil {
		return OK, ""
	}

	codespace, c, log := sdkerrors.ABCIInfo(err, false)
	if codespace != Codespace {
		return DecodeError, err.Error()
	}

	return c, log
}

// EncodeError returns json of the info struct, or empty map on failure
func EncodeError(data interface{}) string {
	marshaled, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(marshaled)
}
