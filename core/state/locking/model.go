package locking

import "github.com/MinterTeam/minter-presale/core/types"

type Model struct {
	Contract      types.Address
	Owner         types.Address
	Token         types.Address
	PenaltyPeriod uint64
	Dead          types.Address
}

// Info is a single locked balance
type Info struct {
	Amount         uint64
	LastLockedTime uint64

	address types.Address
}

func (i *Info) Address() types.Address {
	return i.address
}
