package sim

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/milk9111/navsim/agent"
	"github.com/milk9111/navsim/nav"
	"github.com/milk9111/navsim/obstacle"
	"github.com/milk9111/navsim/prefabs"
	"github.com/milk9111/navsim/species"
)

var (
	ErrUnknownSpecies = errors.New("sim: unknown species")
	ErrSpawnBlocked   = errors.New("sim: no free spawn cell")
)

type rules struct {
	attack  species.Set
	runAway species.Set
}

// World owns the agents of one arena and advances them tick by tick.
type World struct {
	arena     *prefabs.ArenaSpec
	registry  *species.Registry
	rules     map[species.ID]rules
	colors    map[species.ID]color.NRGBA
	cfg       agent.Config
	oracle    nav.Oracle
	space     *obstacle.Space
	solids    obstacle.Shapes
	rng       *rand.Rand
	agents    []*agent.Agent
	events    EventQueue
	scheduler *Scheduler
	logger    *log.Logger

	tick   int
	over   bool
	winner species.ID
}

type Option func(*World)

func WithLogger(l *log.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithSeed overrides the arena seed.
func WithSeed(seed int64) Option {
	return func(w *World) { w.rng = newRand(seed) }
}

// WithOracle replaces the oracle built from the arena.
func WithOracle(o nav.Oracle) Option {
	return func(w *World) { w.oracle = o }
}

// WithSystem runs system after the built-in navigation, contact and outcome
// systems on every step.
func WithSystem(system System) Option {
	return func(w *World) { w.scheduler.Add(system) }
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// NewWorld builds an empty world for arena. Call Spawn to populate it.
func NewWorld(arena *prefabs.ArenaSpec, opts ...Option) (*World, error) {
	if arena == nil {
		return nil, fmt.Errorf("sim: nil arena")
	}
	if err := arena.Validate(); err != nil {
		return nil, err
	}
	cfg, err := agent.ConfigFromSpec(arena.Navigator)
	if err != nil {
		return nil, err
	}
	registry, err := species.NewRegistry(arena.SpeciesNames()...)
	if err != nil {
		return nil, fmt.Errorf("sim: species: %w", err)
	}

	w := &World{
		arena:    arena,
		registry: registry,
		rules:    make(map[species.ID]rules, len(arena.Species)),
		colors:   make(map[species.ID]color.NRGBA, len(arena.Species)),
		cfg:      cfg,
		rng:      newRand(arena.Seed),
		scheduler: NewScheduler(
			NavigationSystem{},
			ContactSystem{},
			OutcomeSystem{},
		),
	}
	if err := w.loadRules(); err != nil {
		return nil, err
	}
	w.space = buildSpace(arena)
	w.solids = buildShapes(arena, 0)

	for _, opt := range opts {
		opt(w)
	}
	if w.oracle == nil {
		w.oracle = w.arenaOracle()
	}
	if w.logger == nil {
		w.logger = log.Default().WithPrefix("sim")
	}
	return w, nil
}

func (w *World) loadRules() error {
	table, err := w.arena.ResolveRules()
	if err != nil {
		return err
	}
	for _, s := range w.arena.Species {
		id, _ := w.registry.Lookup(s.Name)
		r := table[w.registry.Name(id)]
		attack, err := w.registry.SetOfNames(r.Attack)
		if err != nil {
			return fmt.Errorf("%w: %s attacks: %w", ErrUnknownSpecies, s.Name, err)
		}
		runAway, err := w.registry.SetOfNames(r.RunAway)
		if err != nil {
			return fmt.Errorf("%w: %s runs from: %w", ErrUnknownSpecies, s.Name, err)
		}
		w.rules[id] = rules{attack: attack, runAway: runAway}
		w.colors[id] = s.Color.NRGBA()
	}
	return nil
}

func buildSpace(arena *prefabs.ArenaSpec) *obstacle.Space {
	space := obstacle.NewSpace(arena.Clearance)
	if b := arena.Bounds; b != nil {
		space.AddBounds(nav.Point{X: b.MinX, Y: b.MinY}, nav.Point{X: b.MaxX, Y: b.MaxY})
	}
	for _, r := range arena.Obstacles.Rects {
		space.AddRect(obstacle.RectAt(nav.Point{X: r.X, Y: r.Y}, r.W, r.H))
	}
	for _, c := range arena.Obstacles.Circles {
		space.AddCircle(obstacle.Circle{Center: nav.Point{X: c.X, Y: c.Y}, Radius: c.Radius})
	}
	return space
}

// buildShapes lists the arena obstacles for analytic tests, each grown by
// grow. Walls are not included.
func buildShapes(arena *prefabs.ArenaSpec, grow float64) obstacle.Shapes {
	var shapes obstacle.Shapes
	for _, r := range arena.Obstacles.Rects {
		shapes.Rects = append(shapes.Rects, obstacle.RectAt(nav.Point{X: r.X, Y: r.Y}, r.W, r.H).Inflate(grow))
	}
	for _, c := range arena.Obstacles.Circles {
		shapes.Circles = append(shapes.Circles, obstacle.Circle{Center: nav.Point{X: c.X, Y: c.Y}, Radius: c.Radius + grow})
	}
	return shapes
}

// arenaOracle picks the line-of-sight backend named by the arena. The
// analytic one approximates clearance by growing every obstacle.
func (w *World) arenaOracle() nav.Oracle {
	if w.arena.Oracle != prefabs.OracleAnalytic {
		return w.space
	}
	shapes := buildShapes(w.arena, w.arena.Clearance)
	if b := w.arena.Bounds; b != nil {
		shapes.Rects = append(shapes.Rects, obstacle.Walls(nav.Point{X: b.MinX, Y: b.MinY}, nav.Point{X: b.MaxX, Y: b.MaxY})...)
	}
	return shapes
}

const spawnAttempts = 64

// Spawn places every species' count of agents at integer positions drawn
// from the arena spawn range, redrawing positions that fall inside an
// obstacle.
func (w *World) Spawn() error {
	for _, s := range w.arena.Species {
		for i := 0; i < s.Count; i++ {
			pos, err := w.spawnPoint()
			if err != nil {
				return fmt.Errorf("%w: %s", err, s.Name)
			}
			if _, err := w.AddAgent(s.Name, pos); err != nil {
				return err
			}
		}
	}
	w.logger.Info("sim: spawned", "arena", w.arena.Name, "agents", len(w.agents))
	return nil
}

func (w *World) spawnPoint() (nav.Point, error) {
	lo, hi := w.arena.Spawn.Min, w.arena.Spawn.Max
	for range spawnAttempts {
		pos := nav.Point{
			X: float64(lo + w.rng.IntN(hi-lo)),
			Y: float64(lo + w.rng.IntN(hi-lo)),
		}
		if !w.solids.Contains(pos) {
			return pos, nil
		}
	}
	return nav.Point{}, fmt.Errorf("%w after %d draws", ErrSpawnBlocked, spawnAttempts)
}

// AddAgent places one agent of the named species at pos.
func (w *World) AddAgent(name string, pos nav.Point) (*agent.Agent, error) {
	id, ok := w.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	r := w.rules[id]
	a, err := agent.New(w.cfg, id, pos, w.oracle,
		agent.WithRules(r.attack, r.runAway),
		agent.WithColor(w.colors[id]),
		agent.WithLogger(w.logger),
	)
	if err != nil {
		return nil, err
	}
	w.agents = append(w.agents, a)
	return a, nil
}

func (w *World) Agents() []*agent.Agent {
	return append([]*agent.Agent(nil), w.agents...)
}

func (w *World) Species() *species.Registry {
	return w.registry
}

func (w *World) Space() *obstacle.Space {
	return w.space
}

// Oracle is the line-of-sight test agents plan against.
func (w *World) Oracle() nav.Oracle {
	return w.oracle
}

func (w *World) Tick() int {
	return w.tick
}

// Snapshot is the read-only agent enumeration for the current tick.
func (w *World) Snapshot() []nav.Snapshot {
	out := make([]nav.Snapshot, len(w.agents))
	for i, a := range w.agents {
		out[i] = a.Snapshot()
	}
	return out
}

// GameOver reports whether one species has taken over, and which.
func (w *World) GameOver() (species.ID, bool) {
	return w.winner, w.over
}

// Step runs every system once and returns the events they raised. After
// game over it does nothing.
func (w *World) Step() []Event {
	if w.over {
		return nil
	}
	w.tick++
	w.scheduler.Update(w)
	return w.events.Drain()
}

// Run steps until game over, maxTicks steps (0 for no limit) or ctx is
// done. onEvent may be nil. It returns the number of steps taken.
func (w *World) Run(ctx context.Context, maxTicks int, onEvent func(Event)) (int, error) {
	steps := 0
	for !w.over && (maxTicks <= 0 || steps < maxTicks) {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		events := w.Step()
		steps++
		if onEvent != nil {
			for _, evt := range events {
				onEvent(evt)
			}
		}
	}
	return steps, nil
}

// ApplyNavigator reconfigures every agent from spec. Nothing changes when
// spec is invalid.
func (w *World) ApplyNavigator(spec prefabs.NavigatorSpec) error {
	cfg, err := agent.ConfigFromSpec(spec)
	if err != nil {
		return err
	}
	for _, a := range w.agents {
		if err := a.Reconfigure(cfg); err != nil {
			return err
		}
	}
	w.cfg = cfg
	w.arena.Navigator = spec
	w.logger.Info("sim: navigator reloaded", "grid", cfg.GridSize, "speed", cfg.Speed, "patience", cfg.Patience)
	return nil
}

// Census counts agents per species name, sorted by name.
func (w *World) Census() []Count {
	counts := make(map[species.ID]int)
	for _, a := range w.agents {
		counts[a.Type]++
	}
	out := make([]Count, 0, len(counts))
	for id, n := range counts {
		out = append(out, Count{Species: w.registry.Name(id), Agents: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Species < out[j].Species })
	return out
}

type Count struct {
	Species string
	Agents  int
}

// ApplyRules re-reads the rule table of arena and hands the new attack and
// run-away sets to every agent by its current species. arena must declare
// the same species as the running world.
func (w *World) ApplyRules(arena *prefabs.ArenaSpec) error {
	names := arena.SpeciesNames()
	if len(names) != w.registry.Len() {
		return fmt.Errorf("%w: species list changed", ErrUnknownSpecies)
	}
	for i, n := range names {
		if w.registry.Name(species.ID(i)) != n {
			return fmt.Errorf("%w: species list changed at %q", ErrUnknownSpecies, n)
		}
	}

	next := &World{arena: arena, registry: w.registry, rules: map[species.ID]rules{}, colors: map[species.ID]color.NRGBA{}}
	if err := next.loadRules(); err != nil {
		return err
	}
	w.rules = next.rules
	for _, a := range w.agents {
		r := w.rules[a.Type]
		a.AttackTypes = r.attack
		a.RunAwayTypes = r.runAway
	}
	w.logger.Info("sim: rules reloaded", "species", len(names))
	return nil
}
