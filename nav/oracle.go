package nav

import "sync/atomic"

// Oracle reports whether the straight segment a->b is obstructed.
// Implementations used from several goroutines must be safe for concurrent
// reads; the navigator itself only queries from one goroutine per agent.
type Oracle interface {
	Blocked(a, b Point) bool
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(a, b Point) bool

func (f OracleFunc) Blocked(a, b Point) bool {
	return f(a, b)
}

// Open is an oracle with no obstacles.
var Open Oracle = OracleFunc(func(a, b Point) bool { return false })

// CountingOracle wraps an Oracle and counts queries.
type CountingOracle struct {
	Oracle Oracle
	calls  atomic.Int64
}

func NewCountingOracle(o Oracle) *CountingOracle {
	if o == nil {
		o = Open
	}
	return &CountingOracle{Oracle: o}
}

func (c *CountingOracle) Blocked(a, b Point) bool {
	c.calls.Add(1)
	return c.Oracle.Blocked(a, b)
}

// Calls returns the number of Blocked queries so far.
func (c *CountingOracle) Calls() int64 {
	return c.calls.Load()
}
