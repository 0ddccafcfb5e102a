package query

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// Order of LockedAccounts
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Query is a closed set of read requests. Exactly one field is set, e.g.
// {"participant":{"user":"presale1..."}}.
type Query struct {
	SaleConfig        *Empty          `json:"sale_config,omitempty"`
	SaleStatus        *Empty          `json:"sale_status,omitempty"`
	ParticipantsCount *Empty          `json:"participants_count,omitempty"`
	Participants      *PageRequest    `json:"participants,omitempty"`
	Participant       *UserRequest    `json:"participant,omitempty"`
	User              *UserRequest    `json:"user,omitempty"`
	Users             *PageRequest    `json:"users,omitempty"`
	UsersCount        *Empty          `json:"users_count,omitempty"`
	VestingConfig     *Empty          `json:"vesting_config,omitempty"`
	Vested            *UserRequest    `json:"vested,omitempty"`
	Withdrawable      *UserRequest    `json:"withdrawable,omitempty"`
	Recipient         *UserRequest    `json:"recipient,omitempty"`
	LockingConfig     *Empty          `json:"locking_config,omitempty"`
	LockInfo          *UserRequest    `json:"lock_info,omitempty"`
	LockedAccounts    *LockedRequest  `json:"locked_accounts,omitempty"`
	TokenInfo         *TokenRequest   `json:"token_info,omitempty"`
	Balance           *BalanceRequest `json:"balance,omitempty"`
	Allowance         *AllowRequest   `json:"allowance,omitempty"`
}

type Empty struct{}

type PageRequest struct {
	Page  uint64 `json:"page,string"`
	Limit uint64 `json:"limit,string"`
}

type UserRequest struct {
	User types.Address `json:"user"`
}

type LockedRequest struct {
	StartAfter *types.Address `json:"start_after,omitempty"`
	Limit      uint64         `json:"limit,string,omitempty"`
	OrderBy    string         `json:"order_by,omitempty"`
}

type TokenRequest struct {
	Token types.Address `json:"token"`
}

type BalanceRequest struct {
	Token   types.Address `json:"token"`
	Address types.Address `json:"address"`
}

type AllowRequest struct {
	Token   types.Address `json:"token"`
	Owner   types.Address `json:"owner"`
	Spender types.Address `json:"spender"`
}

// Decode parses a query and checks that exactly one variant is set
func Decode(data []byte) (*Query, error) {
	q := &Query{}
	if err := json.Unmarshal(data, q); err != nil {
		return nil, sdkerrors.Wrap(code.ErrInvalidInput, err.Error())
	}

	if name, err := q.variant(); err != nil {
		return nil, err
	} else if name == "locked_accounts" {
		order := strings.ToLower(q.LockedAccounts.OrderBy)
		if order != "" && order != OrderAsc && order != OrderDesc {
			return nil, sdkerrors.Wrapf(code.ErrInvalidInput, "unknown order %q", q.LockedAccounts.OrderBy)
		}
	}

	return q, nil
}

// Name returns the json name of the set variant
func (q *Query) Name() string {
	name, _ := q.variant()
	return name
}

func (q *Query) variant() (string, error) {
	var name string
	value := reflect.ValueOf(q).Elem()
	for i := 0; i < value.NumField(); i++ {
		if value.Field(i).IsNil() {
			continue
		}
		if name != "" {
			return "", sdkerrors.Wrap(code.ErrInvalidInput, "more than one query variant is set")
		}
		name = strings.Split(value.Type().Field(i).Tag.Get("json"), ",")[0]
	}

	if name == "" {
		return "", sdkerrors.Wrap(code.ErrInvalidInput, "unknown query")
	}

	return name, nil
}

// Run answers the query against the given state. now is used by schedule queries.
func Run(q *Query, cState *state.CheckState, now uint64) (interface{}, error) {
	switch {
	case q.SaleConfig != nil:
		return saleConfig(cState), nil
	case q.SaleStatus != nil:
		return saleStatus(cState, now), nil
	case q.ParticipantsCount != nil:
		return CountResponse{Count: cState.Sale().ParticipantsCount()}, nil
	case q.Participants != nil:
		return ParticipantsResponse{Participants: cState.Sale().Participants(q.Participants.Page, q.Participants.Limit)}, nil
	case q.Participant != nil:
		return participant(cState, q.Participant.User)
	case q.User != nil:
		return user(cState, q.User.User), nil
	case q.Users != nil:
		return UsersResponse{Users: cState.Whitelist().List(q.Users.Page, q.Users.Limit)}, nil
	case q.UsersCount != nil:
		return CountResponse{Count: cState.Whitelist().Count()}, nil
	case q.VestingConfig != nil:
		return vestingConfig(cState), nil
	case q.Vested != nil:
		return AmountResponse{Amount: cState.Vesting().Vested(q.Vested.User, now)}, nil
	case q.Withdrawable != nil:
		return AmountResponse{Amount: cState.Vesting().Withdrawable(q.Withdrawable.User, now)}, nil
	case q.Recipient != nil:
		return recipient(cState, q.Recipient.User, now), nil
	case q.LockingConfig != nil:
		return lockingConfig(cState), nil
	case q.LockInfo != nil:
		return lockInfo(cState, q.LockInfo.User), nil
	case q.LockedAccounts != nil:
		return lockedAccounts(cState, q.LockedAccounts), nil
	case q.TokenInfo != nil:
		return tokenInfo(cState, q.TokenInfo.Token)
	case q.Balance != nil:
		return AmountResponse{Amount: cState.Tokens().GetBalance(q.Balance.Token, q.Balance.Address)}, nil
	case q.Allowance != nil:
		return AmountResponse{Amount: cState.Tokens().GetAllowance(q.Allowance.Token, q.Allowance.Owner, q.Allowance.Spender)}, nil
	default:
		return nil, sdkerrors.Wrap(code.ErrInvalidInput, "unknown query")
	}
}
