package transaction

import (
	"fmt"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/state"
	"github.com/MinterTeam/minter-presale/core/types"
)

type AddToWhitelistData struct {
	Entries []types.AllowlistEntry
}

func (data AddToWhitelistData) TxType() TxType {
	return TypeAddToWhitelist
}

func (data AddToWhitelistData) String() string {
	return fmt.Sprintf("ADD TO WHITELIST entries:%d", len(data.Entries))
}

func (data AddToWhitelistData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Whitelist().Owner(); sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if deliverState != nil {
		for _, entry := range data.Entries {
			deliverState.Whitelist.Upsert(entry.Wallet, entry.PublicAllocation, entry.PrivateAllocation)
		}
	}

	return Response{Code: code.OK}
}

type RemoveFromWhitelistData struct {
	Addresses []types.Address
}

func (data RemoveFromWhitelistData) TxType() TxType {
	return TypeRemoveFromWhitelist
}

func (data RemoveFromWhitelistData) String() string {
	return fmt.Sprintf("REMOVE FROM WHITELIST addresses:%d", len(data.Addresses))
}

func (data RemoveFromWhitelistData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Whitelist().Owner(); sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if deliverState != nil {
		for _, address := range data.Addresses {
			deliverState.Whitelist.Remove(address)
		}
	}

	return Response{Code: code.OK}
}

type TransferWhitelistOwnershipData struct {
	NewOwner types.Address
}

func (data TransferWhitelistOwnershipData) TxType() TxType {
	return TypeTransferWhitelistOwnership
}

func (data TransferWhitelistOwnershipData) String() string {
	return fmt.Sprintf("TRANSFER WHITELIST OWNERSHIP new_owner:%s", data.NewOwner.String())
}

func (data TransferWhitelistOwnershipData) Run(sender types.Address, context state.Interface, currentTime uint64) Response {
	checkState, deliverState := contexts(context)

	if owner := checkState.Whitelist().Owner(); sender != owner {
		return unauthorizedResponse(sender, owner)
	}

	if deliverState != nil {
		deliverState.Whitelist.SetOwner(data.NewOwner)
	}

	return Response{Code: code.OK}
}
