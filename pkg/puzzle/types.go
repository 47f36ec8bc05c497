// Package puzzle assembles a parsed grid.Grid and a solved fill.FillState
// into the form pkg/output serializes. Clue text is out of scope (spec.md
// Non-goals, "producing clues"): Puzzle carries none, and output writers
// that need clue text accept it as a separate argument.
package puzzle

import (
	"time"

	"github.com/xwordcore/autofill/pkg/fill"
	"github.com/xwordcore/autofill/pkg/grid"
)

// Metadata is the descriptive information carried alongside a puzzle's
// grid and fill, independent of the solving process that produced it.
type Metadata struct {
	ID         string
	Title      string
	Author     string
	Difficulty grid.Difficulty
	Theme      string
	CreatedAt  time.Time
}

// Puzzle pairs a parsed Grid with the FillState of a completed solve.
// Letter content always comes from Fill; Grid carries shape and slots
// only, per the CORE's separation of structure from content.
type Puzzle struct {
	Grid     *grid.Grid
	Fill     *fill.FillState
	Metadata Metadata
}

// NewPuzzle assembles a Puzzle from its parts.
func NewPuzzle(g *grid.Grid, solved *fill.FillState, metadata Metadata) *Puzzle {
	return &Puzzle{Grid: g, Fill: solved, Metadata: metadata}
}
