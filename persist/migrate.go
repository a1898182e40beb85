package persist

import (
	"encoding/json"
	"math"
	"time"

	"github.com/kasuganosora/cardpack/game/accrual"
	"github.com/kasuganosora/cardpack/game/inventory"
	"go.uber.org/zap"
)

// Document is a decoded profile before it is bound to State. Numbers are
// json.Number as read from disk, or int64 once a migration has written them.
type Document map[string]any

// Env is the context a migration runs in.
type Env struct {
	Now    time.Time
	Rules  accrual.Rules
	Logger *zap.Logger
}

func (e Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Migration recognises one older document shape and rewrites it in place.
// Apply reports whether it changed anything. Every migration is idempotent.
type Migration struct {
	Name  string
	Apply func(doc Document, env Env) bool
}

// maxStackExpand caps how many slots a single stacked entry may expand to.
const maxStackExpand = 9999

// Chain lists the migrations in the order they run.
var Chain = []Migration{
	{Name: "legacy-claim", Apply: migrateLegacyClaim},
	{Name: "stacked-inventory", Apply: migrateStackedInventory},
	{Name: "sparse-slots", Apply: migrateSparseSlots},
	{Name: "tier-aliases", Apply: migrateTierAliases},
}

// Migrate runs the whole chain and stamps the current version. It returns
// the names of the migrations that changed the document.
func Migrate(doc Document, env Env) []string {
	var applied []string
	for _, m := range Chain {
		if m.Apply(doc, env) {
			applied = append(applied, m.Name)
		}
	}
	doc["version"] = int64(CurrentVersion)
	return applied
}

// migrateLegacyClaim rebuilds the pack counter from the single-timestamp
// cooldown model. A document with neither model starts full.
func migrateLegacyClaim(doc Document, env Env) bool {
	_, hasCount := number(doc["packCount"])
	_, hasTick := number(doc["lastPackTick"])
	if hasCount && hasTick {
		return false
	}

	rules := env.Rules
	count, tick := rules.MaxPacks, env.Now
	if claim, ok := number(doc["lastPackClaim"]); ok {
		claimAt := time.UnixMilli(int64(claim))
		accrued := 0
		if elapsed := env.Now.Sub(claimAt); elapsed > 0 {
			accrued = int(elapsed / rules.Cooldown)
		}
		count = min(rules.MaxPacks, max(1, accrued))
		if count < rules.MaxPacks {
			tick = claimAt.Add(time.Duration(accrued) * rules.Cooldown)
		}
	}
	doc["packCount"] = int64(count)
	doc["lastPackTick"] = tick.UnixMilli()
	delete(doc, "lastPackClaim")
	return true
}

// migrateStackedInventory expands {cardId, tier, quantity} entries into one
// slot per copy. It replaces any backpackSlots already present.
func migrateStackedInventory(doc Document, env Env) bool {
	items, ok := doc["inventory"].([]any)
	if !ok {
		if _, present := doc["inventory"]; present {
			delete(doc, "inventory")
			return true
		}
		return false
	}
	slots := make([]any, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["cardId"].(string)
		if id == "" {
			continue
		}
		tier, _ := m["tier"].(string)
		if tier == "" {
			tier = string(inventory.LowestTier)
		}
		qty := 1
		if n, ok := number(m["quantity"]); ok && n >= 1 {
			qty = int(math.Min(n, maxStackExpand))
		}
		for i := 0; i < qty; i++ {
			slots = append(slots, map[string]any{"cardId": id, "tier": tier})
		}
	}
	doc["backpackSlots"] = slots
	delete(doc, "inventory")
	return true
}

// migrateSparseSlots drops holes left by the fixed-size slot array, along
// with any entry that has no card id.
func migrateSparseSlots(doc Document, env Env) bool {
	raw, ok := doc["backpackSlots"].([]any)
	if !ok {
		doc["backpackSlots"] = []any{}
		return true
	}
	kept := make([]any, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if id, _ := m["cardId"].(string); id == "" {
			continue
		}
		kept = append(kept, m)
	}
	doc["backpackSlots"] = kept
	return len(kept) != len(raw)
}

// migrateTierAliases normalises tier names. Unknown tiers are demoted to the
// lowest tier so the slot stays usable.
func migrateTierAliases(doc Document, env Env) bool {
	slots, _ := doc["backpackSlots"].([]any)
	changed := false
	for _, v := range slots {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["tier"].(string)
		tier, ok := inventory.ParseTier(name)
		if !ok {
			id, _ := m["cardId"].(string)
			env.logger().Warn("unknown tier, using lowest",
				zap.String("card_id", id),
				zap.String("tier", name))
			tier = inventory.LowestTier
		}
		if string(tier) != name {
			m["tier"] = string(tier)
			changed = true
		}
	}
	return changed
}

// number accepts any JSON number. NaN and infinities are not numbers.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
