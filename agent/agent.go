package agent

import (
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/milk9111/navsim/nav"
	"github.com/milk9111/navsim/species"
)

// Agent is one navigator: it picks a target among the other agents every
// tick, replans a path to it and walks the path at constant speed.
type Agent struct {
	ID           uuid.UUID
	Type         species.ID
	AttackTypes  species.Set
	RunAwayTypes species.Set
	Color        color.NRGBA

	position nav.Point
	cfg      Config
	grid     nav.GridSpec
	oracle   nav.Oracle
	queue    *nav.WaypointQueue
	mover    nav.Mover
	logger   *log.Logger
	tree     bt.Node

	// set by the tree during a tick
	agents   []nav.Snapshot
	decision nav.Decision
	search   SearchResult
}

// SearchResult records the last replan.
type SearchResult struct {
	Stats nav.SearchStats
	Err   error
}

type Option func(*Agent)

func WithID(id uuid.UUID) Option {
	return func(a *Agent) { a.ID = id }
}

func WithLogger(l *log.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

func WithColor(c color.NRGBA) Option {
	return func(a *Agent) { a.Color = c }
}

func WithRules(attack, runAway species.Set) Option {
	return func(a *Agent) {
		a.AttackTypes = attack
		a.RunAwayTypes = runAway
	}
}

// New validates cfg and builds an agent at pos. A nil oracle means open
// space.
func New(cfg Config, typ species.ID, pos nav.Point, oracle nav.Oracle, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		oracle = nav.Open
	}
	a := &Agent{
		ID:       uuid.New(),
		Type:     typ,
		position: pos,
		cfg:      cfg,
		grid:     cfg.Grid(),
		oracle:   oracle,
		queue:    nav.NewWaypointQueue(),
		mover:    nav.Mover{Speed: cfg.Speed},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.Default().WithPrefix("agent")
	}
	a.logger = a.logger.With("id", a.ID.String()[:8])
	a.tree = a.buildTree()
	return a, nil
}

func (a *Agent) Position() nav.Point {
	return a.position
}

func (a *Agent) Config() Config {
	return a.cfg
}

// Waypoints returns a copy of the remaining path.
func (a *Agent) Waypoints() []nav.Point {
	return a.queue.Points()
}

// Decision is the target choice made on the last tick.
func (a *Agent) Decision() nav.Decision {
	return a.decision
}

func (a *Agent) LastSearch() SearchResult {
	return a.search
}

func (a *Agent) Snapshot() nav.Snapshot {
	return nav.Snapshot{
		ID:           a.ID,
		Position:     a.position,
		Type:         a.Type,
		AttackTypes:  a.AttackTypes,
		RunAwayTypes: a.RunAwayTypes,
	}
}

// Tick runs one frame: choose a target among agents, replan toward it and
// take one step. agents may include this agent.
func (a *Agent) Tick(agents []nav.Snapshot) error {
	a.agents = agents
	defer func() { a.agents = nil }()
	_, err := a.tree.Tick()
	return err
}

// Adopt turns this agent into the species of other, taking over its rule
// sets and colour. The current path is kept.
func (a *Agent) Adopt(other nav.Snapshot, c color.NRGBA) {
	a.Type = other.Type
	a.AttackTypes = other.AttackTypes
	a.RunAwayTypes = other.RunAwayTypes
	a.Color = c
}

// Reconfigure swaps the tunables of a live agent. The queue is kept.
func (a *Agent) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.grid = cfg.Grid()
	a.mover = nav.Mover{Speed: cfg.Speed}
	return nil
}
