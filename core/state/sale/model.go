package sale

import "github.com/MinterTeam/minter-presale/core/types"

// Model is the sale configuration together with sold totals
type Model struct {
	Contract           types.Address
	Owner              types.Address
	FundToken          types.Address
	RewardToken        types.Address
	Vesting            types.Address
	MerkleRoot         string
	UseRegistry        bool
	ExchangeRate       uint64
	PrivateStartTime   uint64
	PublicStartTime    uint64
	PresalePeriod      uint64
	DistributionAmount uint64
	PrivateSoldAmount  uint64
	PublicSoldAmount   uint64
	Count              uint64
}

// EndTime is the last second of the public phase
func (m Model) EndTime() uint64 {
	return m.PublicStartTime + m.PresalePeriod
}

type Participant struct {
	FundBalance     uint64
	RewardBalance   uint64
	PrivateSoldFund uint64

	address types.Address
}

func (p *Participant) Address() types.Address {
	return p.address
}
