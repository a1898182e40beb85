package player

import (
	"github.com/kasuganosora/cardpack/game/accrual"
	"github.com/kasuganosora/cardpack/game/fusion"
	"github.com/kasuganosora/cardpack/game/inventory"
)

// View is what a renderer needs to draw the main screen.
type View struct {
	State      State          `json:"state"`
	Timer      accrual.Status `json:"timer"`
	HasFusable bool           `json:"has_fusable"`
}

// View snapshots the committed state.
func (c *Controller) View() View {
	return c.ViewOf(c.State())
}

// ViewOf derives the view of st as of now. It takes no lock, so OnChange
// hooks may call it.
func (c *Controller) ViewOf(st State) View {
	now := c.now()
	count, tick := c.rules.Advance(st.PackCount, st.LastPackTick, now)
	return View{
		State:      st,
		Timer:      c.rules.StatusAt(count, tick, now),
		HasFusable: fusion.HasFusable(inventory.New(st.Slots)),
	}
}
