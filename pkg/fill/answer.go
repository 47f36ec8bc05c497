// Package fill implements the Slot/Answer model, the immutable FillState,
// and the recursive backtracking Filler (spec.md §§3, 4.3, 4.4, 4.5).
package fill

import "github.com/xwordcore/autofill/pkg/grid"

// Answer is a slot's current content: a committed letter or, at an
// uncommitted position, the sentinel value 0 tagged implicitly by Cells[i]
// (spec.md §3 "Answer (slot state)"). Answer is immutable; Update returns
// a new value.
type Answer struct {
	SlotIndex int
	Cells     []int // shared by reference with the originating grid.Slot
	Content   []byte
	Strength  int
}

// NewAnswer builds the fully-uncommitted Answer for a slot.
func NewAnswer(slot *grid.Slot) Answer {
	return Answer{
		SlotIndex: slot.Index,
		Cells:     slot.Cells,
		Content:   make([]byte, len(slot.Cells)),
	}
}

// Length is N, the slot length.
func (a Answer) Length() int {
	return len(a.Cells)
}

// NormalizedStrength is strength/length, used by the default sort key.
func (a Answer) NormalizedStrength() float64 {
	if len(a.Cells) == 0 {
		return 0
	}
	return float64(a.Strength) / float64(len(a.Cells))
}

// IsComplete reports strength == length.
func (a Answer) IsComplete() bool {
	return a.Strength == a.Length()
}

// Pattern renders the answer as a letters-and-'_' string, the form the
// Bank's index is keyed on.
func (a Answer) Pattern() string {
	buf := make([]byte, len(a.Content))
	for i, c := range a.Content {
		if c == 0 {
			buf[i] = '_'
		} else {
			buf[i] = c
		}
	}
	return string(buf)
}

// Rendering is the complete word this answer spells. Only meaningful when
// IsComplete(); a partial answer's rendering still contains '_' markers.
func (a Answer) Rendering() string {
	return a.Pattern()
}

// Update returns a new Answer in which every previously uncommitted
// position whose cell is a key of letterMap becomes committed to the
// mapped letter. Already-committed positions are left alone. Calling
// Update twice with the same map is idempotent (spec.md §8 property 2):
// the second call finds no uncommitted position left to touch and hands
// back the identical receiver.
func (a Answer) Update(letterMap map[int]byte) Answer {
	changed := false
	newContent := a.Content
	strength := a.Strength
	for i, cell := range a.Cells {
		if a.Content[i] != 0 {
			continue
		}
		letter, ok := letterMap[cell]
		if !ok {
			continue
		}
		if !changed {
			newContent = make([]byte, len(a.Content))
			copy(newContent, a.Content)
			changed = true
		}
		newContent[i] = letter
		strength++
	}
	if !changed {
		return a
	}
	return Answer{SlotIndex: a.SlotIndex, Cells: a.Cells, Content: newContent, Strength: strength}
}

// ToUpdates produces the cell_index -> letter map for every position that
// is currently uncommitted, given a bank item whose length equals the
// answer's length. The caller guarantees already-committed positions
// already match word (spec.md §4.3).
func (a Answer) ToUpdates(word string) map[int]byte {
	updates := make(map[int]byte)
	for i, cell := range a.Cells {
		if a.Content[i] == 0 {
			updates[cell] = word[i]
		}
	}
	return updates
}
