package inventory

import "sort"

// DefaultPageSize matches the backpack grid.
const DefaultPageSize = 30

// Entry is a slot together with its position in the unsorted inventory, so
// that a sorted view can still address slots for fusion.
type Entry struct {
	Index int  `json:"index"`
	Slot  Slot `json:"slot"`
}

// RankFunc reports the rarity rank of a card id, higher is rarer. Unknown
// ids should rank below every real rarity (e.g. -1).
type RankFunc func(cardID string) int

// Sorted returns the display order of the backpack: rarity descending, then
// card id ascending, then tier descending.
func (inv *Inventory) Sorted(rank RankFunc) []Entry {
	out := make([]Entry, len(inv.slots))
	ranks := make(map[string]int)
	for i, s := range inv.slots {
		out[i] = Entry{Index: i, Slot: s}
		if _, ok := ranks[s.CardID]; !ok {
			ranks[s.CardID] = rank(s.CardID)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Slot, out[j].Slot
		if ra, rb := ranks[a.CardID], ranks[b.CardID]; ra != rb {
			return ra > rb
		}
		if a.CardID != b.CardID {
			return a.CardID < b.CardID
		}
		return a.Tier.Index() > b.Tier.Index()
	})
	return out
}

// Page is one page of a view. Pages are numbered from 1.
type Page struct {
	Entries    []Entry `json:"entries"`
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Total      int     `json:"total"`
}

// Paginate slices a view. The page number is clamped into range and an
// empty view still has one (empty) page.
func Paginate(view []Entry, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	total := (len(view) + perPage - 1) / perPage
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > len(view) {
		end = len(view)
	}
	return Page{
		Entries:    append([]Entry{}, view[start:end]...),
		Page:       page,
		TotalPages: total,
		Total:      len(view),
	}
}
