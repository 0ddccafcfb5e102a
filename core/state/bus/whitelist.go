package bus

import "github.com/MinterTeam/minter-presale/core/types"

type Whitelist interface {
	Allocation(address types.Address) (privateCap uint64, publicCap uint64, ok bool)
}
