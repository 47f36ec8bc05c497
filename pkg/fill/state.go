package fill

import (
	"sort"

	"github.com/xwordcore/autofill/pkg/bank"
	"github.com/xwordcore/autofill/pkg/grid"
)

// SortKey orders unfilled slots for provide_unfilled. The default,
// most-constrained-first key is (-normalized_strength, length).
type SortKey func(a Answer) (negNormStrength float64, length int)

// DefaultSortKey implements spec.md §4.4's "most-constrained first, with
// ties broken by shorter slot first".
func DefaultSortKey(a Answer) (float64, int) {
	return -a.NormalizedStrength(), a.Length()
}

// AnswerChangeset is the result of walking every slot a commitment would
// touch (spec.md §4.4 list_new_entries_using_updates): the slots that
// became fully defined, and the mean evaluator rank across every slot
// touched (origin included when requested).
type AnswerChangeset struct {
	NewEntries map[int]Answer
	Rank       float64
}

// deadChangeset is the sentinel spec.md §9's early-abort Open Question
// resolves to: as soon as any crossing evaluates to a dead end, the walk
// stops and reports rank 0 without completing the remaining crossings.
var deadChangeset = AnswerChangeset{Rank: 0}

// Suggestion is a proposed commitment: the cell->letter map it would
// install, and the changeset it induces (spec.md GLOSSARY).
type Suggestion struct {
	LetterMap map[int]byte
	Changeset AnswerChangeset
}

// FillState is the immutable search-node snapshot of spec.md §3: every
// slot's current Answer, the crossings table (shared unchanged for the
// life of a search), which slots are fully resolved, and how many remain
// incomplete.
type FillState struct {
	Answers       []Answer
	Crossings     map[int][]int
	Used          []string // "" means not yet complete
	NumIncomplete int
}

// FromGrid builds the initial state: every slot fully uncommitted.
func FromGrid(g *grid.Grid) *FillState {
	answers := make([]Answer, len(g.Slots))
	for i, s := range g.Slots {
		answers[i] = NewAnswer(s)
	}
	return &FillState{
		Answers:       answers,
		Crossings:     g.Crossings,
		Used:          make([]string, len(answers)),
		NumIncomplete: len(answers),
	}
}

// IsComplete reports num_incomplete == 0.
func (s *FillState) IsComplete() bool {
	return s.NumIncomplete == 0
}

// ProvideUnfilled yields the indices of incomplete slots ordered by key
// (DefaultSortKey when key is nil).
func (s *FillState) ProvideUnfilled(key SortKey) []int {
	if key == nil {
		key = DefaultSortKey
	}
	idxs := make([]int, 0, s.NumIncomplete)
	for i, u := range s.Used {
		if u == "" {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		aNeg, aLen := key(s.Answers[idxs[i]])
		bNeg, bLen := key(s.Answers[idxs[j]])
		if aNeg != bNeg {
			return aNeg < bNeg
		}
		return aLen < bLen
	})
	return idxs
}

// ListNewEntriesUsingUpdates walks every slot that crosses a cell in
// letterMap (excluding originSlot unless includeOrigin), forms the
// updated Answer, and scores it with evaluator. It accumulates the mean
// evaluator score as Rank. Per spec.md §4.2, the evaluator has three
// distinct outcomes: a dead end (0) or a completed crossing the bank
// rejects (bank.RankReject) aborts the walk immediately; a pattern too
// long to be indexed (bank.RankUnknown) cannot be ranked and is treated
// as neutral — it neither aborts the walk nor enters the rank average.
func (s *FillState) ListNewEntriesUsingUpdates(letterMap map[int]byte, originSlot int, includeOrigin bool, evaluator func(pattern string) int) AnswerChangeset {
	cells := make([]int, 0, len(letterMap))
	for cell := range letterMap {
		cells = append(cells, cell)
	}
	sort.Ints(cells)

	visited := make(map[int]bool)
	newEntries := make(map[int]Answer)
	sum, n := 0, 0

	for _, cell := range cells {
		for _, slotIdx := range s.Crossings[cell] {
			if slotIdx == originSlot && !includeOrigin {
				continue
			}
			if visited[slotIdx] {
				continue
			}
			visited[slotIdx] = true

			updated := s.Answers[slotIdx].Update(letterMap)
			score := evaluator(updated.Pattern())
			switch {
			case score == bank.RankUnknown:
				// cannot rank; neutral per spec.md §4.2 — fall through
				// to the completion check without touching sum/n.
			case score <= 0:
				return deadChangeset
			default:
				sum += score
				n++
			}

			if updated.IsComplete() && !s.Answers[slotIdx].IsComplete() {
				newEntries[slotIdx] = updated
			}
		}
	}

	rank := 0.0
	if n > 0 {
		rank = float64(sum) / float64(n)
	}
	return AnswerChangeset{NewEntries: newEntries, Rank: rank}
}

// Advance constructs the successor state per spec.md §4.4: install every
// slot the suggestion newly completed, then tighten every other crossing
// slot's pattern, then recompute num_incomplete. The crossings table is
// shared unchanged.
func (s *FillState) Advance(sugg Suggestion) *FillState {
	answers := make([]Answer, len(s.Answers))
	copy(answers, s.Answers)
	used := make([]string, len(s.Used))
	copy(used, s.Used)
	numIncomplete := s.NumIncomplete

	completedNow := make(map[int]bool, len(sugg.Changeset.NewEntries))
	for slotIdx, newAnswer := range sugg.Changeset.NewEntries {
		if !answers[slotIdx].IsComplete() {
			answers[slotIdx] = newAnswer
			used[slotIdx] = newAnswer.Rendering()
			numIncomplete--
		}
		completedNow[slotIdx] = true
	}

	cells := make([]int, 0, len(sugg.LetterMap))
	for cell := range sugg.LetterMap {
		cells = append(cells, cell)
	}
	sort.Ints(cells)

	touched := make(map[int]bool)
	for _, cell := range cells {
		for _, slotIdx := range s.Crossings[cell] {
			if completedNow[slotIdx] || touched[slotIdx] {
				continue
			}
			touched[slotIdx] = true
			updated := answers[slotIdx].Update(sugg.LetterMap)
			if updated.Strength == answers[slotIdx].Strength {
				continue
			}
			answers[slotIdx] = updated
			if updated.IsComplete() && used[slotIdx] == "" {
				used[slotIdx] = updated.Rendering()
				numIncomplete--
			}
		}
	}

	return &FillState{Answers: answers, Crossings: s.Crossings, Used: used, NumIncomplete: numIncomplete}
}

// Render produces the R-line text rendering spec.md §6 describes: '.' for
// dark cells, the committed letter for light cells.
func (s *FillState) Render(g *grid.Grid) string {
	letters := make(map[int]rune, len(s.Answers)*4)
	for cell, b := range s.CommittedLetters() {
		letters[cell] = rune(b)
	}
	return g.Render(letters)
}

// CommittedLetters flattens every slot's committed content into a single
// cell-index -> letter map, for callers outside the CORE (pkg/puzzle,
// pkg/output) that need per-cell letters rather than per-slot Answers.
func (s *FillState) CommittedLetters() map[int]byte {
	letters := make(map[int]byte, len(s.Answers)*4)
	for _, a := range s.Answers {
		for i, cell := range a.Cells {
			if a.Content[i] != 0 {
				letters[cell] = a.Content[i]
			}
		}
	}
	return letters
}

// usedSet lifts the Used slice into a set of complete renderings, the form
// Bank predicates and RankCandidate expect.
func usedSet(used []string) map[string]bool {
	m := make(map[string]bool, len(used))
	for _, u := range used {
		if u != "" {
			m[u] = true
		}
	}
	return m
}
