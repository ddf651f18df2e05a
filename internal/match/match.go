// Package match implements the track/take matching engine and the merge
// plan it produces. Matching is pure index bookkeeping over two name
// lists: exact-name first, positional index as a fallback, and explicit
// creation for everything unmatched. The engine never errors; absence of
// a match is a normal output state.
package match

import "sort"

// Unmatched marks a source index with no destination match.
const Unmatched = -1

// Strategy configures the matching chain. Both toggles off means every
// source entity is unmatched.
type Strategy struct {
	ExactName     bool
	IndexFallback bool
}

// DefaultStrategy matches by exact name with index fallback.
func DefaultStrategy() Strategy {
	return Strategy{ExactName: true, IndexFallback: true}
}

// Tracks computes a mapping from source track index to destination track
// index. Source indices are processed in ascending order; each source
// name is matched against the first unused destination with an equal
// name (case-sensitive, no normalization), then against the same index
// if unused. Unmatched sources are absent from the result. No
// destination index is consumed twice.
func Tracks(src, dst []string, s Strategy) map[int]int {
	return matchNames(src, dst, s)
}

// Takes matches one item's take names against a destination item's take
// names. Structurally identical to Tracks but scoped independently.
func Takes(src, dst []string, s Strategy) map[int]int {
	return matchNames(src, dst, s)
}

func matchNames(src, dst []string, s Strategy) map[int]int {
	mapping := make(map[int]int, len(src))
	used := make(map[int]bool, len(dst))

	for i := 0; i < len(src); i++ {
		j := matchOne(src[i], i, dst, used, s)
		if j == Unmatched {
			continue
		}
		mapping[i] = j
		used[j] = true
	}

	return mapping
}

// matchOne applies the strategy chain for a single source entity.
// First match wins.
func matchOne(name string, idx int, dst []string, used map[int]bool, s Strategy) int {
	if s.ExactName && name != "" {
		for j := 0; j < len(dst); j++ {
			if !used[j] && dst[j] == name {
				return j
			}
		}
	}
	if s.IndexFallback {
		if idx < len(dst) && !used[idx] {
			return idx
		}
	}
	return Unmatched
}

// Plan is the merge plan for one track-matching invocation.
//
// Mappings maps every surviving source index to a destination index.
// ToCreate lists, in ascending source order, the source indices that had
// no pre-existing destination match; the k-th entry is assigned
// destination index destCount+k and that assignment is already present
// in Mappings when the plan is built with fallbackCreate enabled.
type Plan struct {
	Mappings map[int]int
	ToCreate []int
}

// Matched reports whether src was matched to a pre-existing destination
// track rather than scheduled for creation.
func (p *Plan) Matched(src int) bool {
	if _, ok := p.Mappings[src]; !ok {
		return false
	}
	for _, c := range p.ToCreate {
		if c == src {
			return false
		}
	}
	return true
}

// SourceIndices returns the mapped source indices in ascending order.
func (p *Plan) SourceIndices() []int {
	out := make([]int, 0, len(p.Mappings))
	for src := range p.Mappings {
		out = append(out, src)
	}
	sort.Ints(out)
	return out
}

// BuildPlan matches source track names against destination track names
// and assigns sequential destination indices (destCount, destCount+1, …)
// to unmatched sources in ascending source order. With fallbackCreate
// disabled, unmatched sources are dropped: neither mapped nor created.
func BuildPlan(src, dst []string, s Strategy, fallbackCreate bool) *Plan {
	plan := &Plan{Mappings: matchNames(src, dst, s)}

	if !fallbackCreate {
		return plan
	}

	next := len(dst)
	for i := 0; i < len(src); i++ {
		if _, ok := plan.Mappings[i]; ok {
			continue
		}
		plan.Mappings[i] = next
		plan.ToCreate = append(plan.ToCreate, i)
		next++
	}

	return plan
}
