package nav

import (
	"fmt"
	"strings"
)

// ShortcutMode picks a path simplification variant.
type ShortcutMode uint8

const (
	// ShortcutLegacy emits the anchor and the chosen node at every step and
	// appends the goal once more at the end. Consecutive duplicates are
	// expected in its output.
	ShortcutLegacy ShortcutMode = iota
	// ShortcutCompact emits each kept node once.
	ShortcutCompact
)

func (m ShortcutMode) String() string {
	switch m {
	case ShortcutLegacy:
		return "legacy"
	case ShortcutCompact:
		return "compact"
	default:
		return fmt.Sprintf("ShortcutMode(%d)", m)
	}
}

// ParseShortcutMode accepts "legacy" (or empty) and "compact".
func ParseShortcutMode(s string) (ShortcutMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return ShortcutLegacy, nil
	case "compact":
		return ShortcutCompact, nil
	default:
		return 0, fmt.Errorf("nav: unknown shortcut mode %q", s)
	}
}

// Simplify dispatches to the variant selected by mode.
func (m ShortcutMode) Simplify(path []Point, oracle Oracle) []Point {
	if m == ShortcutCompact {
		return ShortcutCompactPath(path, oracle)
	}
	return Shortcut(path, oracle)
}

// Shortcut greedily replaces runs of nodes with line-of-sight jumps. From each
// anchor the farthest visible node is chosen, scanning from the end inward.
func Shortcut(path []Point, oracle Oracle) []Point {
	if len(path) == 0 {
		return nil
	}
	if oracle == nil {
		oracle = Open
	}
	out := make([]Point, 0, len(path)+2)
	for i := 0; i < len(path); {
		out = append(out, path[i])
		next := i
		for j := len(path) - 1; j > i; j-- {
			if !oracle.Blocked(path[i], path[j]) {
				next = j
				break
			}
		}
		out = append(out, path[next])
		i = next + 1
	}
	return append(out, path[len(path)-1])
}

// ShortcutCompactPath is Shortcut without repeated nodes. The result is a
// subsequence of path with the same first and last node.
func ShortcutCompactPath(path []Point, oracle Oracle) []Point {
	if len(path) == 0 {
		return nil
	}
	if oracle == nil {
		oracle = Open
	}
	out := []Point{path[0]}
	for i := 0; i < len(path)-1; {
		next := i + 1
		for j := len(path) - 1; j > i+1; j-- {
			if !oracle.Blocked(path[i], path[j]) {
				next = j
				break
			}
		}
		out = append(out, path[next])
		i = next
	}
	return out
}
