package nav

// FallbackFleeDirection is used when the agent sits exactly on its threat and
// no away direction exists.
var FallbackFleeDirection = Point{X: 1, Y: 0}

// FleePoint returns the point safeDistance away from self, directly away from
// threat.
func FleePoint(self, threat Point, safeDistance float64) Point {
	away := self.Sub(threat)
	length := away.Length()
	if length == 0 {
		return self.Add(FallbackFleeDirection.Mult(safeDistance))
	}
	return self.Add(away.Mult(safeDistance / length))
}
