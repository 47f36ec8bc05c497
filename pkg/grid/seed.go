package grid

import "math/rand"

// SeedConfig holds configuration for black square seeding.
type SeedConfig struct {
	Seed         int64
	BlackDensity float64
}

// seedBlackSquares randomly places black squares in the top-left quadrant
// of a rows x cols layout. The black squares are later mirrored by
// enforceSymmetry to produce 180-degree rotational symmetry. The center
// cell (for an odd dimension) is never seeded black, so connectivity
// validation always has a white cell to flood-fill from.
func seedBlackSquares(dark []bool, rows, cols int, cfg SeedConfig) {
	r := rand.New(rand.NewSource(cfg.Seed))

	totalCells := rows * cols
	targetBlack := int(float64(totalCells) * cfg.BlackDensity)
	blacksToPlace := targetBlack / 2

	quadRows := rows / 2
	quadCols := cols / 2

	type pos struct{ row, col int }
	positions := make([]pos, 0, quadRows*quadCols)
	for row := 0; row < quadRows; row++ {
		for col := 0; col < quadCols; col++ {
			positions = append(positions, pos{row, col})
		}
	}

	r.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})

	placed := 0
	for i := 0; i < len(positions) && placed < blacksToPlace; i++ {
		p := positions[i]
		dark[p.row*cols+p.col] = true
		placed++
	}

	if rows%2 == 1 && cols%2 == 1 {
		center := (rows / 2) * cols + (cols / 2)
		dark[center] = false
	}
}
