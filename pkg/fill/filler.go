package fill

import (
	"sort"
	"time"

	"github.com/xwordcore/autofill/pkg/bank"
)

// Tracer is invoked on every visited node, before the listener, for
// diagnostics/progress streaming (spec.md §5). It must not block.
type Tracer func(state *FillState)

// Filler is the recursive backtracker (spec.md §4.5). Construct with New;
// a Filler holds no mutable search state of its own, so the same value
// can drive multiple independent fills against the same Bank.
type Filler struct {
	Bank    *bank.Bank
	SortKey SortKey
	Tracer  Tracer
}

// New builds a Filler over bank. sortKey may be nil to use DefaultSortKey.
func New(b *bank.Bank, sortKey SortKey) *Filler {
	return &Filler{Bank: b, SortKey: sortKey}
}

// Result reports the exit conditions spec.md §6 fixes: how many nodes a
// fill visited and how long it took.
type Result struct {
	NodeCount int
	Elapsed   time.Duration
}

// Fill runs the backtracker from state, reporting every visited node to
// listener, and returns CONTINUE or STOP per spec.md §4.5's pseudocode.
func (f *Filler) Fill(state *FillState, listener Listener) Signal {
	if f.Tracer != nil {
		f.Tracer(state)
	}
	if listener.Accept(state) == Stop {
		return Stop
	}

	unfilled := state.ProvideUnfilled(f.SortKey)
	if len(unfilled) == 0 {
		return Continue
	}

	// Single-slot-per-level: branch on which word fills the most-constrained
	// slot, never on which slot to try next (spec.md §4.5).
	slotIdx := unfilled[0]
	for _, sugg := range f.suggest(state, slotIdx) {
		child := state.Advance(sugg)
		if f.Fill(child, listener) == Stop {
			return Stop
		}
	}
	return Continue
}

// FillFirstComplete runs Fill with a FirstCompleteListener and returns its
// outcome: the solution (nil if none was found within budget) plus node
// count and elapsed time.
func (f *Filler) FillFirstComplete(state *FillState, nodeThreshold *int, durationThreshold *time.Duration) (*FillState, Result) {
	listener := NewFirstComplete(nodeThreshold, durationThreshold)
	f.Fill(state, listener)
	return listener.Solution, Result{NodeCount: listener.Budget.Count, Elapsed: listener.Budget.Elapsed()}
}

// FillAllComplete runs Fill with an AllCompleteListener and returns every
// complete state found within budget.
func (f *Filler) FillAllComplete(state *FillState, nodeThreshold *int, durationThreshold *time.Duration) ([]*FillState, Result) {
	listener := NewAllComplete(nodeThreshold, durationThreshold)
	f.Fill(state, listener)
	return listener.Solutions, Result{NodeCount: listener.Budget.Count, Elapsed: listener.Budget.Elapsed()}
}

// suggest builds, for every bank item matching the slot's current pattern
// and not already used, the Suggestion that item would produce, in
// descending rank order (spec.md §4.5 "bank.suggest").
func (f *Filler) suggest(state *FillState, slotIdx int) []Suggestion {
	answer := state.Answers[slotIdx]
	pattern := answer.Pattern()
	used := usedSet(state.Used)

	candidates := f.Bank.Filter(pattern)
	suggestions := make([]Suggestion, 0, len(candidates))

	for _, item := range candidates {
		if used[item.Word] {
			continue
		}
		letterMap := answer.ToUpdates(item.Word)
		changeset := state.ListNewEntriesUsingUpdates(letterMap, slotIdx, true, func(p string) int {
			return f.Bank.RankCandidate(p, used)
		})

		// Reject a dead branch (spec.md §4.5 step 3) or a changeset whose
		// completed slots duplicate a rendering among themselves (step 4;
		// spec.md §9's "reject self-crossing duplicates" Open Question).
		if changeset.Rank <= 0 {
			continue
		}
		if hasDuplicateRenderings(changeset.NewEntries) {
			continue
		}

		suggestions = append(suggestions, Suggestion{LetterMap: letterMap, Changeset: changeset})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Changeset.Rank > suggestions[j].Changeset.Rank
	})
	return suggestions
}

func hasDuplicateRenderings(newEntries map[int]Answer) bool {
	seen := make(map[string]bool, len(newEntries))
	for _, a := range newEntries {
		r := a.Rendering()
		if seen[r] {
			return true
		}
		seen[r] = true
	}
	return false
}
