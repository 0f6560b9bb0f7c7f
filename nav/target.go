package nav

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/milk9111/navsim/species"
)

// Snapshot is a read-only view of one agent for the current tick.
type Snapshot struct {
	ID           uuid.UUID
	Position     Point
	Type         species.ID
	AttackTypes  species.Set
	RunAwayTypes species.Set
}

// DecisionKind is what an agent does this tick.
type DecisionKind uint8

const (
	Idle DecisionKind = iota
	Attack
	Flee
)

func (k DecisionKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Attack:
		return "attack"
	case Flee:
		return "flee"
	default:
		return fmt.Sprintf("DecisionKind(%d)", k)
	}
}

// Decision is the outcome of target selection. Target is where to go; for a
// flee it is the computed flee point and Threat is what is being fled from.
type Decision struct {
	Kind   DecisionKind
	Target Point
	Threat Point
}

// TargetPolicy controls how an empty candidate bucket is treated.
type TargetPolicy uint8

const (
	// PolicyOriginSentinel treats an empty bucket as a target at the origin.
	// With no candidates at all the agent flees from the origin.
	PolicyOriginSentinel TargetPolicy = iota
	// PolicyStrict ignores empty buckets and idles when both are empty.
	PolicyStrict
)

func (p TargetPolicy) String() string {
	switch p {
	case PolicyOriginSentinel:
		return "origin-sentinel"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("TargetPolicy(%d)", p)
	}
}

// ParseTargetPolicy accepts "origin-sentinel" (or empty) and "strict".
func ParseTargetPolicy(s string) (TargetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "origin-sentinel", "origin":
		return PolicyOriginSentinel, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, fmt.Errorf("nav: unknown target policy %q", s)
	}
}

// Candidates splits agents into attack and flee buckets for self. Attack
// membership wins when a type is in both sets; self is skipped by ID.
func Candidates(self Snapshot, agents []Snapshot) (attack, flee []Point) {
	for _, a := range agents {
		if a.ID == self.ID {
			continue
		}
		switch {
		case self.AttackTypes.Has(a.Type):
			attack = append(attack, a.Position)
		case self.RunAwayTypes.Has(a.Type):
			flee = append(flee, a.Position)
		}
	}
	return attack, flee
}

// Closest returns the candidate nearest to from. The first of equally near
// candidates wins. With no candidates it returns the origin and false.
func Closest(from Point, candidates []Point) (Point, bool) {
	var best Point
	bestDist := math.Inf(1)
	found := false
	for _, c := range candidates {
		if d := Distance(from, c); d < bestDist {
			bestDist = d
			best = c
			found = true
		}
	}
	return best, found
}

// Select decides whether self chases its closest prey or flees its closest
// threat. The nearer of the two wins; a tie flees.
func Select(self Snapshot, agents []Snapshot, safeDistance float64, policy TargetPolicy) Decision {
	attack, flee := Candidates(self, agents)
	prey, hasPrey := Closest(self.Position, attack)
	threat, hasThreat := Closest(self.Position, flee)

	if policy == PolicyStrict {
		switch {
		case !hasPrey && !hasThreat:
			return Decision{Kind: Idle, Target: self.Position}
		case !hasThreat:
			return Decision{Kind: Attack, Target: prey}
		case !hasPrey:
			return fleeDecision(self.Position, threat, safeDistance)
		}
	}

	if Distance(self.Position, prey) < Distance(self.Position, threat) {
		return Decision{Kind: Attack, Target: prey}
	}
	return fleeDecision(self.Position, threat, safeDistance)
}

func fleeDecision(self, threat Point, safeDistance float64) Decision {
	return Decision{
		Kind:   Flee,
		Target: FleePoint(self, threat, safeDistance),
		Threat: threat,
	}
}
