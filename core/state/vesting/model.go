package vesting

import (
	"github.com/MinterTeam/minter-presale/core/types"
	"github.com/MinterTeam/minter-presale/formula"
)

type Model struct {
	Contract        types.Address
	Owner           types.Address
	Operator        types.Address
	RewardToken     types.Address
	StartTime       uint64
	LockPeriod      uint64
	ReleaseInterval uint64
	ReleaseRate     uint64
	InitialUnlock   uint64
	VestingPeriod   uint64
}

func (m Model) Schedule() formula.Schedule {
	return formula.Schedule{
		StartTime:       m.StartTime,
		LockPeriod:      m.LockPeriod,
		ReleaseInterval: m.ReleaseInterval,
		ReleaseRate:     m.ReleaseRate,
		InitialUnlock:   m.InitialUnlock,
	}
}

// IsAuthorized reports whether sender may change recipients and start time
func (m Model) IsAuthorized(sender types.Address) bool {
	return sender == m.Owner || sender == m.Operator
}

type Recipient struct {
	Amount    uint64
	Withdrawn uint64

	address types.Address
}

func (r *Recipient) Address() types.Address {
	return r.address
}
