// Package player owns the authoritative player state: pack accrual, coins
// and the backpack. Every mutation is one serialized read-modify-write that
// is persisted before it becomes visible.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kasuganosora/cardpack/game/accrual"
	"github.com/kasuganosora/cardpack/game/catalog"
	"github.com/kasuganosora/cardpack/game/fusion"
	"github.com/kasuganosora/cardpack/game/inventory"
	"github.com/kasuganosora/cardpack/persist"
	"go.uber.org/zap"
)

// Options configures a Controller.
type Options struct {
	Store   persist.Store
	Key     string // profile key inside Store
	Rules   accrual.Rules
	Economy Economy
	Roller  Roller
	Now     func() time.Time // nil = time.Now
	Logger  *zap.Logger
}

// Controller is the single writer of one profile.
type Controller struct {
	mu       sync.Mutex
	state    State
	store    persist.Store
	key      string
	rules    accrual.Rules
	econ     Economy
	roller   Roller
	now      func() time.Time
	logger   *zap.Logger
	onChange []func(State)
}

// Open loads the profile, migrates it to the current schema, applies the
// accrual owed for offline time and writes the result back, all before the
// Controller is returned. A missing or corrupt profile starts fresh.
func Open(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("player: nil store")
	}
	if opts.Roller == nil {
		return nil, errors.New("player: nil roller")
	}
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Key == "" {
		opts.Key = "default"
	}
	c := &Controller{
		store:  opts.Store,
		key:    opts.Key,
		rules:  opts.Rules,
		econ:   opts.Economy,
		roller: opts.Roller,
		now:    opts.Now,
		logger: opts.Logger.With(zap.String("profile", opts.Key)),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	st, err := c.load(ctx, now)
	if err != nil {
		return nil, err
	}
	st.PackCount, st.LastPackTick = c.rules.Advance(st.PackCount, st.LastPackTick, now)
	if err := c.save(ctx, st); err != nil {
		return nil, err
	}
	c.state = st
	c.logger.Info("profile opened",
		zap.Int("packs", st.PackCount),
		zap.Int("coins", st.Coins),
		zap.Int("slots", len(st.Slots)))
	return c, nil
}

func (c *Controller) load(ctx context.Context, now time.Time) (State, error) {
	raw, err := c.store.Load(ctx, c.key)
	if errors.Is(err, persist.ErrNotFound) {
		c.logger.Info("no saved profile, starting fresh")
		return persist.DefaultState(now, c.rules), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("player: load profile: %w", err)
	}
	st, err := persist.Decode(raw, persist.Env{Now: now, Rules: c.rules, Logger: c.logger})
	if errors.Is(err, persist.ErrCorrupt) {
		c.logger.Warn("corrupt profile replaced with a fresh one", zap.Error(err))
		return persist.DefaultState(now, c.rules), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("player: decode profile: %w", err)
	}
	return st, nil
}

func (c *Controller) save(ctx context.Context, st State) error {
	payload, err := persist.Encode(st)
	if err != nil {
		return fmt.Errorf("player: encode profile: %w", err)
	}
	if err := c.store.Save(ctx, c.key, payload); err != nil {
		c.logger.Error("save profile failed", zap.Error(err))
		return fmt.Errorf("player: save profile: %w", err)
	}
	return nil
}

// OnChange registers fn to receive every committed state. Hooks run while
// the Controller is locked and must not call back into it.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// apply runs one transition. The state handed to op has already been
// advanced to now and is a private copy; op reports whether to commit it.
// Nothing is committed unless the save succeeds.
func (c *Controller) apply(ctx context.Context, op func(next *State) bool) (State, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Clone()
	next.PackCount, next.LastPackTick = c.rules.Advance(next.PackCount, next.LastPackTick, c.now())
	if !op(&next) {
		return c.state.Clone(), false, nil
	}
	if err := c.save(ctx, next); err != nil {
		return c.state.Clone(), false, err
	}
	c.state = next
	for _, fn := range c.onChange {
		fn(next.Clone())
	}
	return next.Clone(), true, nil
}

// State returns a snapshot of the committed state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Timer reports the accrual countdown as of now without mutating anything.
func (c *Controller) Timer() accrual.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	count, tick := c.rules.Advance(c.state.PackCount, c.state.LastPackTick, now)
	return c.rules.StatusAt(count, tick, now)
}

// Rules returns the accrual rules in effect.
func (c *Controller) Rules() accrual.Rules { return c.rules }

// Economy returns the prices in effect.
func (c *Controller) Economy() Economy { return c.econ }

// Tick applies elapsed-time accrual. It only writes when the accrual
// actually changed the state.
func (c *Controller) Tick(ctx context.Context) (State, error) {
	st, _, err := c.apply(ctx, func(next *State) bool {
		// op runs under c.mu, so c.state is the committed state.
		return next.PackCount != c.state.PackCount || !next.LastPackTick.Equal(c.state.LastPackTick)
	})
	return st, err
}

// AddCards appends one lowest-tier slot per card, optionally consuming a
// pack (never below zero) and crediting the per-pack reward.
func (c *Controller) AddCards(ctx context.Context, cards []catalog.CardDefinition, opts AddCardsOptions) (State, error) {
	st, _, err := c.apply(ctx, func(next *State) bool {
		c.addCards(next, cards, opts)
		return true
	})
	return st, err
}

func (c *Controller) addCards(next *State, cards []catalog.CardDefinition, opts AddCardsOptions) {
	for _, card := range cards {
		next.Slots = append(next.Slots, inventory.Slot{CardID: card.ID, Tier: inventory.LowestTier})
	}
	if opts.DecrementPack && next.PackCount > 0 {
		next.PackCount--
	}
	if opts.GrantCoins {
		next.Coins += c.econ.PerPackReward
	}
}

// SpendCoins deducts amount when the balance covers it. Non-positive
// amounts are refused.
func (c *Controller) SpendCoins(ctx context.Context, amount int) (bool, error) {
	_, ok, err := c.apply(ctx, func(next *State) bool {
		return spend(next, amount)
	})
	return ok, err
}

func spend(next *State, amount int) bool {
	if amount <= 0 || next.Coins < amount {
		return false
	}
	next.Coins -= amount
	return true
}

// BuyPack deducts the pack price. It grants no cards.
func (c *Controller) BuyPack(ctx context.Context) (bool, error) {
	return c.SpendCoins(ctx, c.econ.PackPrice)
}

// FuseSlots fuses the three slots at indices. Invalid selections are a
// silent no-op returning the unchanged state.
func (c *Controller) FuseSlots(ctx context.Context, indices []int) (State, bool, error) {
	return c.apply(ctx, func(next *State) bool {
		res, ok := fusion.Fuse(inventory.New(next.Slots), indices)
		if !ok {
			return false
		}
		next.Slots = res.Inventory.Slots()
		return true
	})
}

// Reset replaces the profile with a fresh one.
func (c *Controller) Reset(ctx context.Context) (State, error) {
	st, _, err := c.apply(ctx, func(next *State) bool {
		*next = persist.DefaultState(c.now(), c.rules)
		return true
	})
	if err == nil {
		c.logger.Info("profile reset")
	}
	return st, err
}

// ClaimPack opens one accrued pack: roll, add, consume the pack and credit
// the reward as a single transition. ok is false when no pack is available.
func (c *Controller) ClaimPack(ctx context.Context) (Opened, bool, error) {
	var cards []catalog.CardDefinition
	st, ok, err := c.apply(ctx, func(next *State) bool {
		if !accrual.CanClaim(next.PackCount) {
			return false
		}
		cards = c.roller.OpenPack()
		c.addCards(next, cards, ClaimOptions)
		return true
	})
	return opened(cards, st, ok), ok, err
}

// BuySingleCard spends the card price on one roll.
func (c *Controller) BuySingleCard(ctx context.Context) (Opened, bool, error) {
	return c.buy(ctx, c.econ.CardPrice, func() []catalog.CardDefinition {
		return []catalog.CardDefinition{c.roller.OpenSingleCard()}
	})
}

// BuyAndOpenPack spends the pack price and opens the pack at once.
func (c *Controller) BuyAndOpenPack(ctx context.Context) (Opened, bool, error) {
	return c.buy(ctx, c.econ.PackPrice, c.roller.OpenPack)
}

// BuyBulkPacks spends the bulk price on BulkPackCount packs.
func (c *Controller) BuyBulkPacks(ctx context.Context) (Opened, bool, error) {
	return c.buy(ctx, c.econ.BulkPackPrice, func() []catalog.CardDefinition {
		return c.roller.OpenPacks(c.econ.BulkPackCount)
	})
}

func (c *Controller) buy(ctx context.Context, price int, roll func() []catalog.CardDefinition) (Opened, bool, error) {
	var cards []catalog.CardDefinition
	st, ok, err := c.apply(ctx, func(next *State) bool {
		if !spend(next, price) {
			return false
		}
		cards = roll()
		c.addCards(next, cards, AddCardsOptions{})
		return true
	})
	return opened(cards, st, ok), ok, err
}

func opened(cards []catalog.CardDefinition, st State, ok bool) Opened {
	if !ok {
		cards = nil
	}
	return Opened{Cards: cards, State: st}
}
