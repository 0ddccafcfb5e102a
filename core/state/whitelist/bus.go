package whitelist

import "github.com/MinterTeam/minter-presale/core/types"

type Bus struct {
	whitelist *Whitelist
}

func NewBus(whitelist *Whitelist) *Bus {
	return &Bus{whitelist: whitelist}
}

func (b *Bus) Allocation(address types.Address) (privateCap uint64, publicCap uint64, ok bool) {
	entry := b.whitelist.Get(address)
	if entry == nil {
		return 0, 0, false
	}

	return entry.PrivateAllocation, entry.PublicAllocation, true
}
