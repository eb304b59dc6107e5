package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVestingScheduleBoundaries(t *testing.T) {
	s := VestingSchedule{Start: 1_700_000_000, Cliff: 2_592_000, Duration: 31_536_000}
	total := big.NewInt(1_000_000)

	t.Run("nothing vests before the cliff", func(t *testing.T) {
		assert.Zero(t, s.Vested(total, s.Start).Sign())
		assert.Zero(t, s.Vested(total, s.Start+s.Cliff-1).Sign())
		assert.Zero(t, s.Vested(total, 0).Sign())
	})

	t.Run("everything vests at and after duration", func(t *testing.T) {
		assert.Equal(t, total, s.Vested(total, s.Start+s.Duration))
		assert.Equal(t, total, s.Vested(total, s.Start+s.Duration+1))
	})

	t.Run("linear in between with truncating division", func(t *testing.T) {
		half := s.Start + s.Duration/2
		got := s.Vested(total, half)
		want := new(big.Int).Div(total, big.NewInt(2))
		assert.Equal(t, want, got)

		// 1/3 of the way through: 1000000*10512000/31536000 = 333333 (truncated)
		third := s.Start + s.Duration/3
		assert.Equal(t, big.NewInt(333333), s.Vested(total, third))
	})

	t.Run("zero duration vests nothing", func(t *testing.T) {
		z := VestingSchedule{Start: 0, Cliff: 0, Duration: 0}
		assert.Zero(t, z.Vested(total, 10).Sign())
	})
}

func TestVestingScheduleMonotonic(t *testing.T) {
	s := VestingSchedule{Start: 1000, Cliff: 500, Duration: 10_000}
	total := big.NewInt(999_999_937)

	prev := new(big.Int)
	for t0 := uint64(0); t0 <= s.Start+s.Duration+1000; t0 += 97 {
		v := s.Vested(total, t0)
		require.GreaterOrEqual(t, v.Cmp(prev), 0, "vested decreased at t=%d", t0)
		require.LessOrEqual(t, v.Cmp(total), 0, "vested exceeded total at t=%d", t0)
		prev = v
	}
}

func TestVestingScheduleReleasable(t *testing.T) {
	s := VestingSchedule{Start: 0, Cliff: 0, Duration: 100}

	t.Run("subtracts released amount", func(t *testing.T) {
		// balance 60, released 40: total ever held 100, half vested at t=50.
		got := s.Releasable(big.NewInt(60), big.NewInt(40), 50)
		assert.Equal(t, big.NewInt(10), got)
	})

	t.Run("never negative", func(t *testing.T) {
		// Released more than currently vested (possible after a withdrawal
		// pattern the schedule does not model); clamp to zero.
		got := s.Releasable(big.NewInt(0), big.NewInt(100), 10)
		assert.Zero(t, got.Sign())
	})

	t.Run("late deposits accelerate vesting", func(t *testing.T) {
		before := s.Releasable(big.NewInt(100), big.NewInt(0), 50)
		after := s.Releasable(big.NewInt(200), big.NewInt(0), 50)
		assert.Equal(t, big.NewInt(50), before)
		assert.Equal(t, big.NewInt(100), after)
	})
}
