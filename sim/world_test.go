package sim

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/milk9111/navsim/nav"
	"github.com/milk9111/navsim/obstacle"
	"github.com/milk9111/navsim/prefabs"
	"github.com/stretchr/testify/require"
)

func quiet() Option {
	return WithLogger(log.New(io.Discard))
}

func decodeArena(t *testing.T, src string) *prefabs.ArenaSpec {
	t.Helper()
	arena, err := prefabs.DecodeArenaSpec([]byte(src))
	require.NoError(t, err)
	return arena
}

// a runs from b, b runs from c, c runs from nobody
const chainArena = `
navigator:
  target_policy: strict
species:
  - name: a
    color: "#ff0000"
    count: 1
    run_away: [b]
  - name: b
    color: "#00ff00"
    count: 1
    run_away: [c]
  - name: c
    color: "#0000ff"
    count: 1
`

func TestNewWorldFromDefaultArena(t *testing.T) {
	arena, err := prefabs.LoadArenaSpec("arena.yaml")
	require.NoError(t, err)

	w, err := NewWorld(arena, quiet())
	require.NoError(t, err)
	require.NoError(t, w.Spawn())
	require.Len(t, w.Agents(), 60)
	require.Equal(t, []string{"rock", "scissors", "paper"}, w.Species().Names())
	// four walls, two rects and a circle
	require.Equal(t, 7, w.Space().Len())

	for _, a := range w.Agents() {
		p := a.Position()
		require.Equal(t, float64(int(p.X)), p.X)
		require.GreaterOrEqual(t, p.X, -5.0)
		require.Less(t, p.X, 5.0)
		require.GreaterOrEqual(t, p.Y, -5.0)
		require.Less(t, p.Y, 5.0)
		require.Equal(t, 1, a.AttackTypes.Len())
		require.Equal(t, 1, a.RunAwayTypes.Len())
	}
}

func TestSpawnIsSeeded(t *testing.T) {
	positions := func(seed int64) []nav.Point {
		arena, err := prefabs.LoadArenaSpec("arena.yaml")
		require.NoError(t, err)
		w, err := NewWorld(arena, quiet(), WithSeed(seed))
		require.NoError(t, err)
		require.NoError(t, w.Spawn())
		var out []nav.Point
		for _, a := range w.Agents() {
			out = append(out, a.Position())
		}
		return out
	}
	require.Equal(t, positions(7), positions(7))
	require.NotEqual(t, positions(7), positions(8))
}

func TestNewWorldRejectsUnknownRuleSpecies(t *testing.T) {
	arena := decodeArena(t, "species:\n  - name: a\n    attack: [ghost]\n")
	_, err := NewWorld(arena, quiet())
	require.ErrorIs(t, err, ErrUnknownSpecies)
}

func TestArenaOracleSelection(t *testing.T) {
	const src = `
clearance: 0.5
bounds: {min_x: -10, min_y: -10, max_x: 10, max_y: 10}
obstacles:
  rects: [{x: 5, y: 0, w: 2, h: 2}]
species:
  - name: a
`
	chipmunk, err := NewWorld(decodeArena(t, src), quiet())
	require.NoError(t, err)
	require.Same(t, chipmunk.Space(), chipmunk.Oracle())

	arena := decodeArena(t, "oracle: analytic\n"+src)
	w, err := NewWorld(arena, quiet())
	require.NoError(t, err)
	shapes, ok := w.Oracle().(obstacle.Shapes)
	require.True(t, ok)
	require.Len(t, shapes.Rects, 5)

	cases := []struct {
		name    string
		a, b    nav.Point
		blocked bool
	}{
		{"through_box", nav.Point{X: 0, Y: 0}, nav.Point{X: 8, Y: 0}, true},
		{"inside_clearance", nav.Point{X: 0, Y: 1.3}, nav.Point{X: 8, Y: 1.3}, true},
		{"clear_of_box", nav.Point{X: 0, Y: 2}, nav.Point{X: 8, Y: 2}, false},
		{"through_wall", nav.Point{X: 0, Y: 0}, nav.Point{X: 0, Y: 12}, true},
		{"starts_in_box", nav.Point{X: 5, Y: 0}, nav.Point{X: 0, Y: -3}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.blocked, w.Oracle().Blocked(c.a, c.b))
		})
	}
}

func TestSpawnAvoidsObstacles(t *testing.T) {
	// covers cells (0,0) and (1,0) of the 2x2 spawn range
	arena := decodeArena(t, `
spawn: {count: 30, min: 0, max: 2}
obstacles:
  rects: [{x: 0.5, y: 0, w: 1.4, h: 0.4}]
species:
  - name: a
`)
	w, err := NewWorld(arena, quiet())
	require.NoError(t, err)
	require.NoError(t, w.Spawn())
	require.Len(t, w.Agents(), 30)
	for _, a := range w.Agents() {
		require.Equal(t, 1.0, a.Position().Y)
	}

	full := decodeArena(t, `
spawn: {min: 0, max: 2}
obstacles:
  circles: [{x: 0.5, y: 0.5, radius: 2}]
species:
  - name: a
`)
	w, err = NewWorld(full, quiet())
	require.NoError(t, err)
	require.ErrorIs(t, w.Spawn(), ErrSpawnBlocked)
}

func TestAddAgentUnknownSpecies(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	_, err = w.AddAgent("z", nav.Point{})
	require.ErrorIs(t, err, ErrUnknownSpecies)
}

func TestContactUsesPreConversionState(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	a, err := w.AddAgent("a", nav.Point{})
	require.NoError(t, err)
	b, err := w.AddAgent("b", nav.Point{X: 0.4})
	require.NoError(t, err)
	c, err := w.AddAgent("c", nav.Point{X: 0.8})
	require.NoError(t, err)
	reg := w.Species()
	idB, _ := reg.Lookup("b")
	idC, _ := reg.Lookup("c")
	green := b.Color

	ContactSystem{}.Update(w)

	// a took b's old identity even though b itself turned into c
	require.Equal(t, idB, a.Type)
	require.Equal(t, green, a.Color)
	require.Equal(t, idC, a.RunAwayTypes.IDs()[0])
	require.Equal(t, idC, b.Type)
	require.Equal(t, idC, c.Type)
	require.Zero(t, b.RunAwayTypes.Len())

	events := w.events.Drain()
	require.Len(t, events, 2)
	require.Equal(t, EventConversion, events[0].Kind)
	require.Equal(t, a.ID, events[0].Agent)
	require.Equal(t, b.ID, events[1].Agent)
}

func TestContactLogsNewRunAwaySet(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWorld(decodeArena(t, chainArena), WithLogger(log.New(&buf)))
	require.NoError(t, err)
	_, err = w.AddAgent("a", nav.Point{})
	require.NoError(t, err)
	_, err = w.AddAgent("b", nav.Point{X: 0.4})
	require.NoError(t, err)

	ContactSystem{}.Update(w)

	out := buf.String()
	require.Contains(t, out, "sim: converted")
	require.Contains(t, out, "runs_from")
	require.Contains(t, out, "[c]")
}

type tickRecorder struct {
	ticks []int
}

func (r *tickRecorder) Update(w *World) {
	r.ticks = append(r.ticks, w.Tick())
}

func TestWithSystemRunsAfterBuiltins(t *testing.T) {
	rec := &tickRecorder{}
	w, err := NewWorld(decodeArena(t, chainArena), quiet(), WithSystem(rec), WithSystem(nil))
	require.NoError(t, err)

	w.Step()
	w.Step()
	require.Equal(t, []int{1, 2}, rec.ticks)
}

func TestContactOutOfReach(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	a, err := w.AddAgent("a", nav.Point{})
	require.NoError(t, err)
	_, err = w.AddAgent("b", nav.Point{X: 0.51})
	require.NoError(t, err)

	before := a.Type
	ContactSystem{}.Update(w)
	require.Equal(t, before, a.Type)
	require.Zero(t, w.events.Len())
}

func TestOutcome(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)

	OutcomeSystem{}.Update(w)
	_, over := w.GameOver()
	require.False(t, over, "empty world never ends")

	_, err = w.AddAgent("c", nav.Point{})
	require.NoError(t, err)
	_, err = w.AddAgent("b", nav.Point{X: 3})
	require.NoError(t, err)
	OutcomeSystem{}.Update(w)
	_, over = w.GameOver()
	require.False(t, over)

	w.agents[1].Type = w.agents[0].Type
	OutcomeSystem{}.Update(w)
	winner, over := w.GameOver()
	require.True(t, over)
	require.Equal(t, "c", w.Species().Name(winner))
}

func TestRunStopsAtGameOver(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	_, err = w.AddAgent("a", nav.Point{})
	require.NoError(t, err)
	_, err = w.AddAgent("b", nav.Point{X: 0.3})
	require.NoError(t, err)

	var seen []Event
	steps, err := w.Run(context.Background(), 50, func(e Event) { seen = append(seen, e) })
	require.NoError(t, err)
	require.Equal(t, 1, steps)
	require.Len(t, seen, 2)
	require.Equal(t, EventConversion, seen[0].Kind)
	require.Equal(t, EventGameOver, seen[1].Kind)
	require.Equal(t, "b", w.Species().Name(seen[1].Winner))
	require.Nil(t, w.Step())
	require.Equal(t, 1, w.Tick())
}

func TestRunTickLimitAndCancel(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	_, err = w.AddAgent("a", nav.Point{X: -3})
	require.NoError(t, err)
	_, err = w.AddAgent("c", nav.Point{X: 3})
	require.NoError(t, err)

	steps, err := w.Run(context.Background(), 10, nil)
	require.NoError(t, err)
	require.Equal(t, 10, steps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	steps, err = w.Run(ctx, 0, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, steps)
}

func TestNavigationMovesAgents(t *testing.T) {
	w, err := NewWorld(decodeArena(t, `
navigator:
  target_policy: strict
species:
  - name: hunter
    attack: [prey]
  - name: prey
`), quiet())
	require.NoError(t, err)
	h, err := w.AddAgent("hunter", nav.Point{})
	require.NoError(t, err)
	_, err = w.AddAgent("prey", nav.Point{X: 2})
	require.NoError(t, err)

	NavigationSystem{}.Update(w)
	require.Equal(t, nav.Attack, h.Decision().Kind)
	require.InDelta(t, 0.05, h.Position().X, 1e-12)
}

func TestApplyNavigator(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	a, err := w.AddAgent("a", nav.Point{})
	require.NoError(t, err)

	require.Error(t, w.ApplyNavigator(prefabs.NavigatorSpec{GridSize: -1}))
	require.Equal(t, 0.5, a.Config().GridSize)

	require.NoError(t, w.ApplyNavigator(prefabs.NavigatorSpec{GridSize: 1, Speed: 0.1}))
	require.Equal(t, 1.0, a.Config().GridSize)
	require.Equal(t, 0.1, a.Config().Speed)

	b, err := w.AddAgent("b", nav.Point{})
	require.NoError(t, err)
	require.Equal(t, 1.0, b.Config().GridSize)
}

func TestCensus(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	for _, name := range []string{"c", "a", "c"} {
		_, err := w.AddAgent(name, nav.Point{})
		require.NoError(t, err)
	}
	require.Equal(t, []Count{{Species: "a", Agents: 1}, {Species: "c", Agents: 2}}, w.Census())
}

func TestApplyRules(t *testing.T) {
	w, err := NewWorld(decodeArena(t, chainArena), quiet())
	require.NoError(t, err)
	a, err := w.AddAgent("a", nav.Point{})
	require.NoError(t, err)
	idC, _ := w.Species().Lookup("c")

	swapped := decodeArena(t, `
species:
  - name: a
    attack: [c]
  - name: b
  - name: c
`)
	require.NoError(t, w.ApplyRules(swapped))
	require.True(t, a.AttackTypes.Has(idC))
	require.Zero(t, a.RunAwayTypes.Len())

	renamed := decodeArena(t, "species:\n  - name: a\n  - name: x\n  - name: c\n")
	require.ErrorIs(t, w.ApplyRules(renamed), ErrUnknownSpecies)
}
