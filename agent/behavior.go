package agent

import (
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/milk9111/navsim/nav"
)

// buildTree wires the per-tick pipeline:
//
//	sequence
//	├── decide
//	├── selector
//	│   ├── attack
//	│   ├── flee
//	│   └── idle
//	└── move
func (a *Agent) buildTree() bt.Node {
	return bt.New(
		bt.Sequence,
		bt.New(a.decide),
		bt.New(
			bt.Selector,
			bt.New(a.commandFor(nav.Attack)),
			bt.New(a.commandFor(nav.Flee)),
			bt.New(a.idle),
		),
		bt.New(a.move),
	)
}

func (a *Agent) decide([]bt.Node) (bt.Status, error) {
	a.decision = nav.Select(a.Snapshot(), a.agents, a.cfg.SafeDistance, a.cfg.TargetPolicy)
	return bt.Success, nil
}

// commandFor succeeds when the tick's decision is kind, after replanning.
// A failed search still succeeds; the old path is kept.
func (a *Agent) commandFor(kind nav.DecisionKind) bt.Tick {
	return func([]bt.Node) (bt.Status, error) {
		if a.decision.Kind != kind {
			return bt.Failure, nil
		}
		a.Command(a.decision.Target)
		return bt.Success, nil
	}
}

func (a *Agent) idle([]bt.Node) (bt.Status, error) {
	return bt.Success, nil
}

func (a *Agent) move([]bt.Node) (bt.Status, error) {
	a.position, _ = a.mover.Step(a.position, a.queue)
	return bt.Success, nil
}
