package puzzle

import (
	"fmt"

	"github.com/xwordcore/autofill/internal/models"
	"github.com/xwordcore/autofill/pkg/fill"
	"github.com/xwordcore/autofill/pkg/grid"
)

// ToModelsPuzzle converts a pkg/puzzle.Puzzle into models.Puzzle for the
// output writers in pkg/output. clues is an optional number+direction ->
// clue text map; pass nil to emit puzzles with no clue text (clue
// generation is out of CORE scope).
func ToModelsPuzzle(p *Puzzle, clues map[string]string) *models.Puzzle {
	g := p.Grid
	letters := answerLetters(p.Fill)

	gridCells := make([][]models.GridCell, g.Rows)
	for row := 0; row < g.Rows; row++ {
		gridCells[row] = make([]models.GridCell, g.Cols)
		for col := 0; col < g.Cols; col++ {
			idx := g.CellIndex(row, col)
			cell := models.GridCell{}
			if !g.Dark[idx] {
				if b, ok := letters[idx]; ok && b != 0 {
					s := string(b)
					cell.Letter = &s
				}
			}
			if g.Number[idx] > 0 {
				n := g.Number[idx]
				cell.Number = &n
			}
			gridCells[row][col] = cell
		}
	}

	var acrossClues, downClues []models.Clue
	for _, slot := range g.Slots {
		row, col := g.RowCol(slot.Cells[0])
		entry := models.Clue{
			Number:    slot.Number,
			Text:      clueText(clues, slot),
			Answer:    slotAnswer(slot, letters),
			PositionX: col,
			PositionY: row,
			Length:    slot.Length(),
			Direction: slot.Direction.String(),
		}
		if slot.Direction == grid.Across {
			acrossClues = append(acrossClues, entry)
		} else {
			downClues = append(downClues, entry)
		}
	}

	var difficulty models.Difficulty
	switch p.Metadata.Difficulty {
	case grid.Easy:
		difficulty = models.DifficultyEasy
	case grid.Hard, grid.Expert:
		difficulty = models.DifficultyHard
	default:
		difficulty = models.DifficultyMedium
	}

	var theme *string
	if p.Metadata.Theme != "" {
		theme = &p.Metadata.Theme
	}

	return &models.Puzzle{
		ID:          p.Metadata.ID,
		Title:       p.Metadata.Title,
		Author:      p.Metadata.Author,
		Difficulty:  difficulty,
		GridWidth:   g.Cols,
		GridHeight:  g.Rows,
		Grid:        gridCells,
		CluesAcross: acrossClues,
		CluesDown:   downClues,
		Theme:       theme,
		CreatedAt:   p.Metadata.CreatedAt,
		Status:      "draft",
	}
}

// answerLetters flattens a FillState's committed content into a
// cell-index -> letter map. Callers holding no FillState (an unsolved
// grid) pass nil, in which case every cell renders empty.
func answerLetters(fs *fill.FillState) map[int]byte {
	if fs == nil {
		return nil
	}
	return fs.CommittedLetters()
}

func clueKey(number int, dir grid.Direction) string {
	return fmt.Sprintf("%d-%s", number, dir.String())
}

func clueText(clues map[string]string, slot *grid.Slot) string {
	if clues == nil {
		return ""
	}
	if text, ok := clues[clueKey(slot.Number, slot.Direction)]; ok {
		return text
	}
	return ""
}

func slotAnswer(slot *grid.Slot, letters map[int]byte) string {
	out := make([]byte, len(slot.Cells))
	for i, cell := range slot.Cells {
		out[i] = letters[cell]
	}
	return string(out)
}
