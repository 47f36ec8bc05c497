// Package puzzle holds collaborators that sit upstream of the CORE
// (pkg/grid, pkg/bank, pkg/fill): grid feasibility pre-filtering before a
// full Filler run is attempted.
package puzzle

import (
	"github.com/xwordcore/autofill/pkg/bank"
	"github.com/xwordcore/autofill/pkg/grid"
)

// arc is a crossing between two slots: the cell index and each slot's
// position within it.
type arc struct {
	slotA, slotB         int
	indexInA, indexInB   int
}

// buildArcs derives one arc per crossing cell from a Grid's Crossings
// table. A cell crossed by exactly two slots yields one arc; single-slot
// or unlit cells yield none.
func buildArcs(g *grid.Grid) []arc {
	var arcs []arc
	for cell, slots := range g.Crossings {
		if len(slots) != 2 {
			continue
		}
		a, b := slots[0], slots[1]
		arcs = append(arcs, arc{
			slotA:    a,
			slotB:    b,
			indexInA: indexOf(g.Slots[a], cell),
			indexInB: indexOf(g.Slots[b], cell),
		})
	}
	return arcs
}

func indexOf(s *grid.Slot, cell int) int {
	for i, c := range s.Cells {
		if c == cell {
			return i
		}
	}
	return -1
}

// ValidateFillable runs AC-3 over every slot's initial bank domain (every
// word of matching length and unconstrained pattern) and reports whether
// any domain would be wiped out before a full fill.Filler search is
// attempted. A false result means the grid cannot possibly be filled from
// this bank; a true result is necessary but not sufficient, since AC-3
// only enforces pairwise crossing consistency, not a global assignment.
func ValidateFillable(g *grid.Grid, b *bank.Bank) bool {
	domains := make(map[int][]bank.Item, len(g.Slots))
	for i, s := range g.Slots {
		pattern := emptyPattern(s.Length())
		domains[i] = b.Filter(pattern)
		if len(domains[i]) == 0 {
			return false
		}
	}

	arcs := buildArcs(g)
	neighbors := make(map[int][]arc)
	for _, a := range arcs {
		neighbors[a.slotA] = append(neighbors[a.slotA], a)
		neighbors[a.slotB] = append(neighbors[a.slotB], a)
	}

	queue := make([]arc, 0, len(arcs)*2)
	for _, a := range arcs {
		queue = append(queue, a, arc{slotA: a.slotB, slotB: a.slotA, indexInA: a.indexInB, indexInB: a.indexInA})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if revise(domains, cur) {
			if len(domains[cur.slotA]) == 0 {
				return false
			}
			for _, next := range neighbors[cur.slotA] {
				other := next.slotA
				otherIdx, curIdx := next.indexInA, next.indexInB
				if other == cur.slotA {
					other = next.slotB
					otherIdx, curIdx = next.indexInB, next.indexInA
				}
				if other == cur.slotB {
					continue
				}
				queue = append(queue, arc{slotA: other, slotB: cur.slotA, indexInA: otherIdx, indexInB: curIdx})
			}
		}
	}

	return true
}

// revise removes every word from domains[a.slotA] that has no supporting
// word in domains[a.slotB] at the crossing position; reports whether it
// changed anything.
func revise(domains map[int][]bank.Item, a arc) bool {
	kept := domains[a.slotA][:0:0]
	changed := false
	for _, word := range domains[a.slotA] {
		if hasSupport(word.Word, a.indexInA, domains[a.slotB], a.indexInB) {
			kept = append(kept, word)
		} else {
			changed = true
		}
	}
	if changed {
		domains[a.slotA] = kept
	}
	return changed
}

func hasSupport(word string, idx int, others []bank.Item, otherIdx int) bool {
	if idx < 0 || idx >= len(word) {
		return false
	}
	for _, other := range others {
		if otherIdx >= 0 && otherIdx < len(other.Word) && other.Word[otherIdx] == word[idx] {
			return true
		}
	}
	return false
}

func emptyPattern(length int) string {
	out := make([]byte, length)
	for i := range out {
		out[i] = '_'
	}
	return string(out)
}
