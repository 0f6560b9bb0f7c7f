package sim

import (
	"image/color"

	"github.com/milk9111/navsim/nav"
)

// NavigationSystem ticks every agent against one snapshot taken at the start
// of the step, in registration order.
type NavigationSystem struct{}

func (NavigationSystem) Update(w *World) {
	snap := w.Snapshot()
	for _, a := range w.agents {
		if err := a.Tick(snap); err != nil {
			w.logger.Error("sim: agent tick", "id", a.ID, "err", err)
		}
	}
}

// ContactSystem converts an agent that touches something it runs from into
// that species. All contacts are judged on the state before any conversion
// of this step, and each agent converts at most once.
type ContactSystem struct{}

func (ContactSystem) Update(w *World) {
	reach := 2 * w.arena.AgentRadius
	reachSq := reach * reach
	before := w.Snapshot()
	colors := make([]color.NRGBA, len(w.agents))
	for i, a := range w.agents {
		colors[i] = a.Color
	}

	for i, a := range w.agents {
		self := before[i]
		for j, other := range before {
			if i == j || !self.RunAwayTypes.Has(other.Type) {
				continue
			}
			if nav.SquaredDistance(self.Position, other.Position) > reachSq {
				continue
			}
			a.Adopt(other, colors[j])
			w.events.Push(Event{
				Kind:  EventConversion,
				Tick:  w.tick,
				Agent: a.ID,
				From:  self.Type,
				To:    other.Type,
			})
			w.logger.Info("sim: converted",
				"tick", w.tick,
				"id", a.ID.String()[:8],
				"from", w.registry.Name(self.Type),
				"to", w.registry.Name(other.Type),
				"runs_from", w.registry.SetNames(a.RunAwayTypes),
			)
			break
		}
	}
}

// OutcomeSystem ends the game once every agent belongs to one species.
type OutcomeSystem struct{}

func (OutcomeSystem) Update(w *World) {
	if w.over || len(w.agents) == 0 {
		return
	}
	first := w.agents[0].Type
	for _, a := range w.agents[1:] {
		if a.Type != first {
			return
		}
	}
	w.over = true
	w.winner = first
	w.events.Push(Event{Kind: EventGameOver, Tick: w.tick, Winner: first})
	w.logger.Info("sim: game over", "tick", w.tick, "winner", w.registry.Name(first))
}
