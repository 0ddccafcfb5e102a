package whitelist

import (
	"github.com/MinterTeam/minter-presale/core/types"
)

// Model is the registry configuration
type Model struct {
	Contract types.Address
	Owner    types.Address
	Count    uint64
}

// Entry is an allocation of a wallet and its position in the user list
type Entry struct {
	PublicAllocation  uint64
	PrivateAllocation uint64
	Index             uint64

	wallet  types.Address
	removed bool
}

func (e *Entry) Wallet() types.Address {
	return e.wallet
}

type user struct {
	wallet  types.Address
	removed bool
}
