package grid

import "math"

// Parse consumes a row-major string of rows*cols characters ('.' is dark,
// anything else is light) and produces a Grid with its slots and crossings
// table already computed. Malformed input (wrong length, non-positive
// dimensions) fails with ErrInvalidGrid.
func Parse(layout string, rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidGrid
	}
	if len(layout) != rows*cols {
		return nil, ErrInvalidGrid
	}

	g := &Grid{
		Rows: rows,
		Cols: cols,
		Dark: make([]bool, rows*cols),
	}
	for i, ch := range layout {
		g.Dark[i] = ch == '.'
	}

	g.Number = make([]int, rows*cols)
	g.computeSlots()
	g.buildCrossings()
	return g, nil
}

// ParseSquare infers rows and cols as sqrt(len(layout)), for callers (such
// as the square-grid generator) that only ever produce square layouts.
func ParseSquare(layout string) (*Grid, error) {
	n := len(layout)
	if n == 0 {
		return nil, ErrInvalidGrid
	}
	size := int(math.Sqrt(float64(n)))
	if size*size != n {
		return nil, ErrInvalidGrid
	}
	return Parse(layout, size, size)
}

func (g *Grid) light(row, col int) bool {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return false
	}
	return !g.Dark[g.CellIndex(row, col)]
}

// computeSlots performs the two-pass scan from spec.md §4.1: number cells
// that start an across or down slot, then build the across slots followed
// by the down slots, in row-major start order within each direction.
func (g *Grid) computeSlots() {
	g.Slots = nil
	clueNumber := 1
	numberAt := make(map[int]int)

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.light(row, col) {
				continue
			}
			startsAcross := (col == 0 || !g.light(row, col-1)) && g.light(row, col+1)
			startsDown := (row == 0 || !g.light(row-1, col)) && g.light(row+1, col)
			if startsAcross || startsDown {
				idx := g.CellIndex(row, col)
				numberAt[idx] = clueNumber
				g.Number[idx] = clueNumber
				clueNumber++
			}
		}
	}

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.light(row, col) || !(col == 0 || !g.light(row, col-1)) {
				continue
			}
			var cells []int
			for c := col; g.light(row, c); c++ {
				cells = append(cells, g.CellIndex(row, c))
			}
			if len(cells) < 2 {
				continue
			}
			g.Slots = append(g.Slots, &Slot{
				Index:     len(g.Slots),
				Number:    numberAt[g.CellIndex(row, col)],
				Direction: Across,
				Cells:     cells,
			})
		}
	}

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.light(row, col) || !(row == 0 || !g.light(row-1, col)) {
				continue
			}
			var cells []int
			for r := row; g.light(r, col); r++ {
				cells = append(cells, g.CellIndex(r, col))
			}
			if len(cells) < 2 {
				continue
			}
			g.Slots = append(g.Slots, &Slot{
				Index:     len(g.Slots),
				Number:    numberAt[g.CellIndex(row, col)],
				Direction: Down,
				Cells:     cells,
			})
		}
	}

	for i, s := range g.Slots {
		s.Index = i
	}
}

// buildCrossings populates the cell→slots table. Shared by reference for
// the lifetime of a search per spec.md §3 ("Crossings table").
func (g *Grid) buildCrossings() {
	g.Crossings = make(map[int][]int)
	for _, s := range g.Slots {
		for _, cell := range s.Cells {
			g.Crossings[cell] = append(g.Crossings[cell], s.Index)
		}
	}
}

// Render writes a complete letter assignment back into the R-line text
// form spec.md §6 describes: one line per row, '.' for dark cells, the
// assigned letter for light cells. letters is keyed by cell index.
func (g *Grid) Render(letters map[int]rune) string {
	out := make([]byte, 0, g.Rows*(g.Cols+1))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := g.CellIndex(row, col)
			if g.Dark[idx] {
				out = append(out, '.')
				continue
			}
			if r, ok := letters[idx]; ok && r != 0 {
				out = append(out, byte(r))
			} else {
				out = append(out, '_')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}
