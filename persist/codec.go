package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kasuganosora/cardpack/game/inventory"
	"go.uber.org/zap"
)

// CurrentVersion is the schema written by Encode.
const CurrentVersion = 3

var (
	// ErrCorrupt marks a payload that cannot be read as a profile at all.
	ErrCorrupt = errors.New("persist: corrupt profile")
	// ErrUnsupportedVersion marks a profile written by a newer schema.
	ErrUnsupportedVersion = errors.New("persist: unsupported profile version")
)

type wireDoc struct {
	Version       int              `json:"version"`
	PackCount     int              `json:"packCount"`
	LastPackTick  int64            `json:"lastPackTick"`
	Coins         int              `json:"coins"`
	BackpackSlots []inventory.Slot `json:"backpackSlots"`
}

// Encode writes s in the current schema.
func Encode(s State) ([]byte, error) {
	slots := s.Slots
	if slots == nil {
		slots = []inventory.Slot{}
	}
	return json.Marshal(wireDoc{
		Version:       CurrentVersion,
		PackCount:     s.PackCount,
		LastPackTick:  s.LastPackTick.UnixMilli(),
		Coins:         s.Coins,
		BackpackSlots: slots,
	})
}

// Decode reads a profile of any known schema, migrating it to the current
// one. Values outside their domain are clamped: packCount into
// [0, MaxPacks], coins to >= 0.
func Decode(raw []byte, env Env) (State, error) {
	doc, err := parse(raw)
	if err != nil {
		return State{}, err
	}
	if v, ok := number(doc["version"]); ok && v > CurrentVersion {
		return State{}, fmt.Errorf("%w: %v", ErrUnsupportedVersion, v)
	}
	if applied := Migrate(doc, env); len(applied) > 0 {
		env.logger().Info("profile migrated", zap.Strings("migrations", applied))
	}
	return bind(doc, env), nil
}

func parse(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, want object", ErrCorrupt, v)
	}
	return Document(m), nil
}

// bind maps a fully migrated document onto State.
func bind(doc Document, env Env) State {
	s := State{PackCount: env.Rules.MaxPacks, LastPackTick: env.Now}
	if n, ok := number(doc["packCount"]); ok {
		s.PackCount = int(math.Max(0, math.Min(math.Floor(n), float64(env.Rules.MaxPacks))))
	}
	if n, ok := number(doc["lastPackTick"]); ok {
		s.LastPackTick = time.UnixMilli(int64(n))
	}
	if n, ok := number(doc["coins"]); ok && n > 0 {
		s.Coins = int(math.Min(math.Floor(n), math.MaxInt32))
	}
	raw, _ := doc["backpackSlots"].([]any)
	s.Slots = make([]inventory.Slot, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["cardId"].(string)
		tier, _ := m["tier"].(string)
		s.Slots = append(s.Slots, inventory.Slot{CardID: id, Tier: inventory.Tier(tier)})
	}
	return s
}
