package fill

import "time"

// Signal is a listener's decision after visiting a node.
type Signal int

const (
	Continue Signal = iota
	Stop
)

// Listener observes every visited FillState and decides termination
// (spec.md §4.5 "Listener contract").
type Listener interface {
	Accept(state *FillState) Signal
}

// Budget is the node-count / wall-clock threshold machinery shared by the
// standard listeners (spec.md §5 "Cancellation and timeouts are
// implemented exclusively through the listener"). A nil threshold means
// no limit.
type Budget struct {
	NodeThreshold     *int
	DurationThreshold *time.Duration
	Count             int
	Start             time.Time
}

// NewBudget starts the wall-clock timer immediately, matching the
// reference semantics of "now - start >= duration_threshold".
func NewBudget(nodeThreshold *int, durationThreshold *time.Duration) *Budget {
	return &Budget{NodeThreshold: nodeThreshold, DurationThreshold: durationThreshold, Start: time.Now()}
}

// tick records a visited node and returns Stop once either threshold is
// met. Precision is one node (spec.md §5).
func (b *Budget) tick() Signal {
	b.Count++
	if b.NodeThreshold != nil && b.Count >= *b.NodeThreshold {
		return Stop
	}
	if b.DurationThreshold != nil && time.Since(b.Start) >= *b.DurationThreshold {
		return Stop
	}
	return Continue
}

// Elapsed is the wall-clock time since the budget started.
func (b *Budget) Elapsed() time.Duration {
	return time.Since(b.Start)
}

// FirstCompleteListener captures the first complete state and stops the
// search (spec.md §4.5).
type FirstCompleteListener struct {
	Budget   *Budget
	Solution *FillState
}

// NewFirstComplete builds a FirstCompleteListener with the given budget.
func NewFirstComplete(nodeThreshold *int, durationThreshold *time.Duration) *FirstCompleteListener {
	return &FirstCompleteListener{Budget: NewBudget(nodeThreshold, durationThreshold)}
}

func (l *FirstCompleteListener) Accept(state *FillState) Signal {
	if l.Budget.tick() == Stop {
		return Stop
	}
	if state.IsComplete() {
		l.Solution = state
		return Stop
	}
	return Continue
}

// AllCompleteListener accumulates every complete state and always
// continues (spec.md §4.5).
type AllCompleteListener struct {
	Budget    *Budget
	Solutions []*FillState
}

// NewAllComplete builds an AllCompleteListener with the given budget.
func NewAllComplete(nodeThreshold *int, durationThreshold *time.Duration) *AllCompleteListener {
	return &AllCompleteListener{Budget: NewBudget(nodeThreshold, durationThreshold)}
}

func (l *AllCompleteListener) Accept(state *FillState) Signal {
	if l.Budget.tick() == Stop {
		return Stop
	}
	if state.IsComplete() {
		l.Solutions = append(l.Solutions, state)
	}
	return Continue
}
