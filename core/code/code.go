package code

import (
	"strconv"
)

// Codes for transaction checks and delivers responses
const (
	// general
	OK                  uint32 = 0
	WrongNonce          uint32 = 101
	TxTooLarge          uint32 = 105
	DecodeError         uint32 = 106
	InsufficientBalance uint32 = 107
	WrongChainID        uint32 = 115
	InvalidSignature    uint32 = 116
	InvalidInput        uint32 = 117
	AmountOverflow      uint32 = 118
	Unauthorized        uint32 = 119

	// tokens
	UnknownToken          uint32 = 200
	InsufficientAllowance uint32 = 201

	// sale
	NotWhitelisted       uint32 = 300
	ProofMismatch        uint32 = 301
	ProofDecodeError     uint32 = 302
	ExceedAllocation     uint32 = 303
	PublicNotInProgress  uint32 = 304
	PrivateNotInProgress uint32 = 305
	StillInProgress      uint32 = 306

	// vesting
	NothingToWithdraw uint32 = 400
)

func NewWrongNonce(expected string, got string) *wrongNonce {
	return &wrongNonce{Code: strconv.Itoa(int(WrongNonce)), ExpectedNonce: expected, GotNonce: got}
}

type wrongNonce struct {
	Code          string `json:"code,omitempty"`
	ExpectedNonce string `json:"expected_nonce,omitempty"`
	GotNonce      string `json:"got_nonce,omitempty"`
}

func NewTxTooLarge(maxTxLength string, gotLength string) *txTooLarge {
	return &txTooLarge{Code: strconv.Itoa(int(TxTooLarge)), MaxTxLength: maxTxLength, GotLength: gotLength}
}

type txTooLarge struct {
	Code        string `json:"code,omitempty"`
	MaxTxLength string `json:"max_tx_length,omitempty"`
	GotLength   string `json:"got_length,omitempty"`
}

func NewDecodeError() *decodeError {
	return &decodeError{Code: strconv.Itoa(int(DecodeError))}
}

type decodeError struct {
	Code string `json:"code,omitempty"`
}

func NewInsufficientBalance(holder string, token string, neededValue string, balance string) *insufficientBalance {
	return &insufficientBalance{Code: strconv.Itoa(int(InsufficientBalance)), Holder: holder, Token: token, NeededValue: neededValue, Balance: balance}
}

type insufficientBalance struct {
	Code        string `json:"code,omitempty"`
	Holder      string `json:"holder,omitempty"`
	Token       string `json:"token,omitempty"`
	NeededValue string `json:"needed_value,omitempty"`
	Balance     string `json:"balance,omitempty"`
}

func NewWrongChainID(currentChainId string, txChainID string) *wrongChainID {
	return &wrongChainID{Code: strconv.Itoa(int(WrongChainID)), CurrentChainId: currentChainId, TxChainId: txChainID}
}

type wrongChainID struct {
	Code           string `json:"code,omitempty"`
	CurrentChainId string `json:"current_chain_id,omitempty"`
	TxChainId      string `json:"tx_chain_id,omitempty"`
}

func NewInvalidSignature() *invalidSignature {
	return &invalidSignature{Code: strconv.Itoa(int(InvalidSignature))}
}

type invalidSignature struct {
	Code string `json:"code,omitempty"`
}

func NewInvalidInput(field string, reason string) *invalidInput {
	return &invalidInput{Code: strconv.Itoa(int(InvalidInput)), Field: field, Reason: reason}
}

type invalidInput struct {
	Code   string `json:"code,omitempty"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func NewAmountOverflow(operation string) *amountOverflow {
	return &amountOverflow{Code: strconv.Itoa(int(AmountOverflow)), Operation: operation}
}

type amountOverflow struct {
	Code      string `json:"code,omitempty"`
	Operation string `json:"operation,omitempty"`
}

func NewUnauthorized(sender string, expected string) *unauthorized {
	return &unauthorized{Code: strconv.Itoa(int(Unauthorized)), Sender: sender, Expected: expected}
}

type unauthorized struct {
	Code     string `json:"code,omitempty"`
	Sender   string `json:"sender,omitempty"`
	Expected string `json:"expected,omitempty"`
}

func NewUnknownToken(token string) *unknownToken {
	return &unknownToken{Code: strconv.Itoa(int(UnknownToken)), Token: token}
}

type unknownToken struct {
	Code  string `json:"code,omitempty"`
	Token string `json:"token,omitempty"`
}

func NewInsufficientAllowance(owner string, spender string, token string, neededValue string, allowance string) *insufficientAllowance {
	return &insufficientAllowance{Code: strconv.Itoa(int(InsufficientAllowance)), Owner: owner, Spender: spender, Token: token, NeededValue: neededValue, Allowance: allowance}
}

type insufficientAllowance struct {
	Code        string `json:"code,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Spender     string `json:"spender,omitempty"`
	Token       string `json:"token,omitempty"`
	NeededValue string `json:"needed_value,omitempty"`
	Allowance   string `json:"allowance,omitempty"`
}

func NewNotWhitelisted(address string) *notWhitelisted {
	return &notWhitelisted{Code: strconv.Itoa(int(NotWhitelisted)), Address: address}
}

type notWhitelisted struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

func NewProofMismatch(root string, computed string) *proofMismatch {
	return &proofMismatch{Code: strconv.Itoa(int(ProofMismatch)), Root: root, Computed: computed}
}

type proofMismatch struct {
	Code     string `json:"code,omitempty"`
	Root     string `json:"root,omitempty"`
	Computed string `json:"computed,omitempty"`
}

func NewProofDecodeError(reason string) *proofDecodeError {
	return &proofDecodeError{Code: strconv.Itoa(int(ProofDecodeError)), Reason: reason}
}

type proofDecodeError struct {
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func NewExceedAllocation(address string, allocation string, requested string) *exceedAllocation {
	return &exceedAllocation{Code: strconv.Itoa(int(ExceedAllocation)), Address: address, Allocation: allocation, Requested: requested}
}

type exceedAllocation struct {
	Code       string `json:"code,omitempty"`
	Address    string `json:"address,omitempty"`
	Allocation string `json:"allocation,omitempty"`
	Requested  string `json:"requested,omitempty"`
}

func NewPublicNotInProgress(startTime string, endTime string, now string) *publicNotInProgress {
	return &publicNotInProgress{Code: strconv.Itoa(int(PublicNotInProgress)), StartTime: startTime, EndTime: endTime, Now: now}
}

type publicNotInProgress struct {
	Code      string `json:"code,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Now       string `json:"now,omitempty"`
}

func NewPrivateNotInProgress(startTime string, now string) *privateNotInProgress {
	return &privateNotInProgress{Code: strconv.Itoa(int(PrivateNotInProgress)), StartTime: startTime, Now: now}
}

type privateNotInProgress struct {
	Code      string `json:"code,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	Now       string `json:"now,omitempty"`
}

func NewStillInProgress(endTime string, now string) *stillInProgress {
	return &stillInProgress{Code: strconv.Itoa(int(StillInProgress)), EndTime: endTime, Now: now}
}

type stillInProgress struct {
	Code    string `json:"code,omitempty"`
	EndTime string `json:"end_time,omitempty"`
	Now     string `json:"now,omitempty"`
}

func NewNothingToWithdraw(address string) *nothingToWithdraw {
	return &nothingToWithdraw{Code: strconv.Itoa(int(NothingToWithdraw)), Address: address}
}

type nothingToWithdraw struct {
	Code    string `json:"code,omitempty"`
	Address string `json:"address,omitempty"`
}

type customCode struct {
	Code string `json:"code,omitempty"`
}

func NewCustomCode(code uint32) *customCode {
	return &customCode{Code: strconv.Itoa(int(code))}
}
