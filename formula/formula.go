package formula

import (
	"math/big"

	"github.com/MinterTeam/minter-presale/core/code"
	"github.com/MinterTeam/minter-presale/core/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

var (
	big10       = big.NewInt(10)
	bigAccuracy = new(big.Int).SetUint64(types.Accuracy)
	bigPermille = new(big.Int).SetUint64(types.PermilleBase)
)

// Penalty steps of the locking ledger
const (
	firstPenaltyStep  = 10 * types.SecondsPerDay
	secondPenaltyStep = 20 * types.SecondsPerDay
	thirdPenaltyStep  = 30 * types.SecondsPerDay
)

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big10, big.NewInt(int64(n)), nil)
}

// CalculateReward converts deposited fund token amount to the reward token amount
// reward = amount * accuracy / rate * 10^rewardDecimals / 10^fundDecimals
func CalculateReward(amount uint64, exchangeRate uint64, fundDecimals uint8, rewardDecimals uint8) (uint64, error) {
	// a zero rate is a configuration error, genesis Verify rejects it
	if exchangeRate == 0 {
		return 0, sdkerrors.Wrap(code.ErrAmountOverflow, "exchange rate is zero")
	}

	result := new(big.Int).SetUint64(amount)
	result.Mul(result, bigAccuracy)                          // amount * accuracy
	result.Quo(result, new(big.Int).SetUint64(exchangeRate)) // amount * accuracy / rate
	result.Mul(result, pow10(rewardDecimals))                // * 10^rewardDecimals
	result.Quo(result, pow10(fundDecimals))                  // / 10^fundDecimals

	if !result.IsUint64() {
		return 0, sdkerrors.Wrapf(code.ErrAmountOverflow, "reward %s does not fit into uint64", result.String())
	}

	return result.Uint64(), nil
}

// Schedule is the release curve of the vesting ledger
type Schedule struct {
	StartTime       uint64
	LockPeriod      uint64
	ReleaseInterval uint64
	ReleaseRate     uint64 // per mille per interval
	InitialUnlock   uint64 // per mille
}

// CalculateVested returns the amount of total which is released at now
// vested = min(total, total * initial / 1000 + total * rate / 1000 * ticks)
func CalculateVested(total uint64, schedule Schedule, now uint64) uint64 {
	if schedule.StartTime == 0 {
		return 0
	}

	unlockTime := schedule.StartTime + schedule.LockPeriod
	if unlockTime < schedule.StartTime {
		// lock never ends
		return 0
	}
	if now < unlockTime {
		return 0
	}

	var ticks uint64
	if schedule.ReleaseInterval != 0 {
		ticks = (now - unlockTime) / schedule.ReleaseInterval
	}

	bigTotal := new(big.Int).SetUint64(total)

	initial := new(big.Int).Mul(bigTotal, new(big.Int).SetUint64(schedule.InitialUnlock))
	initial.Quo(initial, bigPermille)

	released := new(big.Int).Mul(bigTotal, new(big.Int).SetUint64(schedule.ReleaseRate))
	released.Quo(released, bigPermille)
	released.Mul(released, new(big.Int).SetUint64(ticks))

	vested := initial.Add(initial, released)
	if vested.Cmp(bigTotal) == 1 {
		return total
	}

	return vested.Uint64()
}

// CalculateWithdrawable returns vested - withdrawn, saturating at zero
func CalculateWithdrawable(total, withdrawn uint64, schedule Schedule, now uint64) uint64 {
	vested := CalculateVested(total, schedule, now)
	if vested <= withdrawn {
		return 0
	}
	return vested - withdrawn
}

// CalculatePenalty returns the part of amount burned on early unlock
func CalculatePenalty(amount uint64, lastLockedTime uint64, now uint64) uint64 {
	var passed uint64
	if now > lastLockedTime {
		passed = now - lastLockedTime
	}

	switch {
	case passed < firstPenaltyStep:
		return amount / 10
	case passed < secondPenaltyStep:
		return amount / 20
	case passed < thirdPenaltyStep:
		return amount / 30
	default:
		return 0
	}
}

// SafeAdd returns a + b or ErrAmountOverflow
func SafeAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, sdkerrors.Wrapf(code.ErrAmountOverflow, "%d + %d", a, b)
	}
	return sum, nil
}
