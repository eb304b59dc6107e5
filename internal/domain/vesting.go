package domain

import "math/big"

// VestingSchedule mirrors the schedule arithmetic of the generated vesting
// contract, so the pipeline can preview and test the behavior it deploys.
// All times are unix seconds.
type VestingSchedule struct {
	Start    uint64
	Cliff    uint64 // seconds after Start during which nothing vests
	Duration uint64 // total vesting length in seconds, > 0
}

// Vested returns the amount vested at time t out of totalEverHeld.
//
// totalEverHeld is the holder's current token balance plus everything
// already released. Computing against that moving total (rather than a
// grant fixed at construction) means deposits made after deployment speed
// up the effective vesting rate, matching the deployed contract.
func (s VestingSchedule) Vested(totalEverHeld *big.Int, t uint64) *big.Int {
	if s.Duration == 0 || t < s.Start+s.Cliff {
		return new(big.Int)
	}
	if t >= s.Start+s.Duration {
		return new(big.Int).Set(totalEverHeld)
	}
	elapsed := new(big.Int).SetUint64(t - s.Start)
	vested := new(big.Int).Mul(totalEverHeld, elapsed)
	return vested.Quo(vested, new(big.Int).SetUint64(s.Duration))
}

// Releasable returns the amount that release() would transfer at time t:
// vested minus what was already released. The result is never negative.
func (s VestingSchedule) Releasable(balance, released *big.Int, t uint64) *big.Int {
	total := new(big.Int).Add(balance, released)
	releasable := s.Vested(total, t)
	releasable.Sub(releasable, released)
	if releasable.Sign() < 0 {
		return new(big.Int)
	}
	return releasable
}
