// Package species interns agent type names so per-tick attack and run-away
// checks are bitmask tests instead of string comparisons.
package species

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// MaxSpecies is the number of distinct types a Registry can hold.
const MaxSpecies = 64

var (
	ErrRegistryFull = errors.New("species: registry full")
	ErrEmptyName    = errors.New("species: empty name")
	ErrUnknown      = errors.New("species: unknown name")
)

// ID identifies an interned species name.
type ID uint8

// Set is a membership bitmask over IDs.
type Set uint64

// SetOf builds a set from ids.
func SetOf(ids ...ID) Set {
	var s Set
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

func (s Set) Add(id ID) Set {
	return s | 1<<id
}

func (s Set) Has(id ID) bool {
	return s&(1<<id) != 0
}

func (s Set) Len() int {
	return bits.OnesCount64(uint64(s))
}

// IDs returns the members in ascending order.
func (s Set) IDs() []ID {
	out := make([]ID, 0, s.Len())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, ID(bits.TrailingZeros64(v)))
	}
	return out
}

// Registry maps names to IDs in registration order.
type Registry struct {
	names []string
	ids   map[string]ID
}

func NewRegistry(names ...string) (*Registry, error) {
	r := &Registry{ids: make(map[string]ID)}
	for _, n := range names {
		if _, err := r.Intern(n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Intern returns the ID for name, registering it if new.
func (r *Registry) Intern(name string) (ID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}
	if id, ok := r.ids[name]; ok {
		return id, nil
	}
	if len(r.names) >= MaxSpecies {
		return 0, fmt.Errorf("%w: cannot add %q", ErrRegistryFull, name)
	}
	if r.ids == nil {
		r.ids = make(map[string]ID)
	}
	id := ID(len(r.names))
	r.names = append(r.names, name)
	r.ids[name] = id
	return id, nil
}

// Lookup returns the ID of an already registered name.
func (r *Registry) Lookup(name string) (ID, bool) {
	if r == nil {
		return 0, false
	}
	id, ok := r.ids[strings.TrimSpace(name)]
	return id, ok
}

// Name returns the registered name for id, or "" if unknown.
func (r *Registry) Name(id ID) string {
	if r == nil || int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Names returns all registered names in ID order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// SetOfNames resolves names against the registry. Unknown names are an error.
func (r *Registry) SetOfNames(names []string) (Set, error) {
	var s Set
	for _, n := range names {
		id, ok := r.Lookup(n)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknown, n)
		}
		s = s.Add(id)
	}
	return s, nil
}

// SetNames renders a set as sorted names.
func (r *Registry) SetNames(s Set) []string {
	out := make([]string, 0, s.Len())
	for _, id := range s.IDs() {
		out = append(out, r.Name(id))
	}
	sort.Strings(out)
	return out
}
