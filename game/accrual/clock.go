// Package accrual turns elapsed wall-clock time into claimable packs.
//
// The clock is pure elapsed-time accounting over (packCount, lastTick): it
// holds no timer of its own, so offline time accrues retroactively the next
// time Advance is evaluated.
package accrual

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMaxPacks = 5
	DefaultCooldown = time.Hour
)

// Rules configures the cap and the time needed per pack.
type Rules struct {
	MaxPacks int
	Cooldown time.Duration
}

// DefaultRules returns the shipped accrual settings.
func DefaultRules() Rules {
	return Rules{MaxPacks: DefaultMaxPacks, Cooldown: DefaultCooldown}
}

var ErrInvalidRules = errors.New("accrual: invalid rules")

// Validate rejects a non-positive cap or cooldown.
func (r Rules) Validate() error {
	if r.MaxPacks <= 0 {
		return fmt.Errorf("%w: max packs must be >= 1, got %d", ErrInvalidRules, r.MaxPacks)
	}
	if r.Cooldown <= 0 {
		return fmt.Errorf("%w: cooldown must be > 0, got %s", ErrInvalidRules, r.Cooldown)
	}
	return nil
}

// Advance applies the accrual transition at now.
//
// While full the anchor is pinned to now and the count is left alone. Below
// the cap, whole cooldown periods are converted into packs and the anchor
// moves forward by exactly those periods so partial progress survives.
// Reaching the cap pins the anchor as well.
func (r Rules) Advance(packCount int, lastTick, now time.Time) (int, time.Time) {
	if packCount >= r.MaxPacks {
		return packCount, now
	}
	elapsed := now.Sub(lastTick)
	if elapsed < r.Cooldown {
		return packCount, lastTick
	}
	accrued := int(elapsed / r.Cooldown)
	next := packCount + accrued
	if next >= r.MaxPacks {
		return r.MaxPacks, now
	}
	return next, lastTick.Add(time.Duration(accrued) * r.Cooldown)
}

// TimeRemaining reports the time until the next pack. full is true when the
// count is capped, in which case the duration is zero.
func (r Rules) TimeRemaining(packCount int, lastTick, now time.Time) (d time.Duration, full bool) {
	if packCount >= r.MaxPacks {
		return 0, true
	}
	elapsed := now.Sub(lastTick)
	if elapsed < 0 {
		elapsed = 0
	}
	return r.Cooldown - elapsed%r.Cooldown, false
}

// CanClaim reports whether at least one pack is available.
func CanClaim(packCount int) bool { return packCount > 0 }

// Status is the timer view handed to the rendering layer.
type Status struct {
	PackCount int           `json:"pack_count"`
	MaxPacks  int           `json:"max_packs"`
	CanClaim  bool          `json:"can_claim"`
	Full      bool          `json:"full"`
	Remaining time.Duration `json:"remaining_ns"`
	Display   string        `json:"display"`
}

// FullDisplay is shown instead of a countdown while capped.
const FullDisplay = "FULL"

// StatusAt builds the timer view for a state at now.
func (r Rules) StatusAt(packCount int, lastTick, now time.Time) Status {
	d, full := r.TimeRemaining(packCount, lastTick, now)
	s := Status{
		PackCount: packCount,
		MaxPacks:  r.MaxPacks,
		CanClaim:  CanClaim(packCount),
		Full:      full,
		Remaining: d,
		Display:   FormatRemaining(d),
	}
	if full {
		s.Display = FullDisplay
	}
	return s
}

// FormatRemaining renders a countdown as HH:MM:SS, rounding seconds up.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64((d + time.Second - 1) / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
