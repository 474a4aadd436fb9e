package domain

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Group is an ordered pairing of 2 members, or 3 when the member count was
// odd. Produced once per run and consumed immediately by the formatter.
type Group []Member

// PairKey returns the canonical unordered key for two member IDs. The same
// two members always map to the same key regardless of order.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Keys lists the unordered pair keys covered by the group: one for a pair,
// three for a trio.
func (g Group) Keys() []string {
	var keys []string
	for i := 0; i < len(g); i++ {
		for j := i + 1; j < len(g); j++ {
			keys = append(keys, PairKey(g[i].ID, g[j].ID))
		}
	}
	return keys
}

// Names returns the group's member names joined for log output.
func (g Group) Names() []string {
	names := make([]string, len(g))
	for i, m := range g {
		names[i] = m.Name
	}
	return names
}

// Pair shuffles members uniformly and partitions them into groups of two.
// A leftover member is merged into the last group, making it a trio.
//
// Zero members yield zero groups; a single member cannot be paired and
// yields ErrInsufficientMembers.
func Pair(members []Member, rng *rand.Rand) ([]Group, error) {
	switch len(members) {
	case 0:
		return nil, nil
	case 1:
		return nil, fmt.Errorf("%w: found 1", ErrInsufficientMembers)
	}

	shuffled := slices.Clone(members)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	groups := make([]Group, 0, (len(shuffled)+1)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		groups = append(groups, Group{shuffled[i], shuffled[i+1]})
	}
	if len(shuffled)%2 == 1 {
		last := len(groups) - 1
		groups[last] = append(groups[last], shuffled[len(shuffled)-1])
	}
	return groups, nil
}

// PairAvoiding pairs like Pair but makes up to attempts tries to avoid the
// blocked pair keys (pairs posted recently), keeping the try with the
// fewest conflicts. Avoidance is best-effort: when every permutation within
// the budget repeats some pair, the least-repeating one is returned.
func PairAvoiding(members []Member, blocked map[string]bool, attempts int, rng *rand.Rand) ([]Group, error) {
	if len(blocked) == 0 || attempts < 2 {
		return Pair(members, rng)
	}

	var best []Group
	bestConflicts := -1
	for i := 0; i < attempts; i++ {
		groups, err := Pair(members, rng)
		if err != nil {
			return nil, err
		}
		c := conflicts(groups, blocked)
		if bestConflicts == -1 || c < bestConflicts {
			best, bestConflicts = groups, c
		}
		if bestConflicts == 0 {
			break
		}
	}
	return best, nil
}

func conflicts(groups []Group, blocked map[string]bool) int {
	n := 0
	for _, g := range groups {
		for _, k := range g.Keys() {
			if blocked[k] {
				n++
			}
		}
	}
	return n
}

// Summary returns a one-line description of the groups for logging,
// e.g. "Alice & Bob (pair); Carol, Dave & Eve (trio)".
func Summary(groups []Group) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		kind := "pair"
		if len(g) == 3 {
			kind = "trio"
		}
		parts[i] = joinNames(g.Names()) + " (" + kind + ")"
	}
	return strings.Join(parts, "; ")
}

// joinNames joins names as "A & B" or "A, B & C".
func joinNames(names []string) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " & " + names[len(names)-1]
}
