package puzzle

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xwordcore/autofill/pkg/bank"
	"github.com/xwordcore/autofill/pkg/fill"
	"github.com/xwordcore/autofill/pkg/grid"
)

var (
	// ErrGridGenerationFailed is returned when grid generation fails.
	ErrGridGenerationFailed = errors.New("grid generation failed")
	// ErrFillFailed is returned when the Filler exhausts its budget without
	// reaching a complete FillState.
	ErrFillFailed = errors.New("grid fill failed")
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds configuration for puzzle generation.
type Config struct {
	// Grid generation config
	Size       int             // Grid size (e.g., 15 for 15x15)
	Difficulty grid.Difficulty // Difficulty level (Easy/Medium/Hard/Expert)
	Seed       int64           // Random seed for reproducibility (0 = random)

	// Fill budget, per pkg/fill.Budget. Nil means unbounded.
	NodeThreshold     *int
	DurationThreshold *time.Duration

	// Metadata
	Title  string // Puzzle title (optional, will use default if empty)
	Author string // Puzzle author (optional, will use default if empty)
	Theme  string // Puzzle theme (optional)
}

// Generator orchestrates the grid-generation-then-fill pipeline: produce a
// valid layout, then run the Filler against a word bank to completion.
// Clue generation is out of CORE scope and is not part of this pipeline.
type Generator struct {
	bank    *bank.Bank
	sortKey fill.SortKey
}

// NewGenerator creates a puzzle generator backed by the given word bank.
// sortKey may be nil to use fill.DefaultSortKey.
func NewGenerator(b *bank.Bank, sortKey fill.SortKey) *Generator {
	return &Generator{bank: b, sortKey: sortKey}
}

// GeneratePuzzle orchestrates the pipeline:
//  1. Generate a valid grid layout (symmetric, connected, no short words).
//  2. Run the Filler to the first complete FillState within budget.
//  3. Assemble a Puzzle from the grid and the resulting FillState.
func (g *Generator) GeneratePuzzle(config Config) (*Puzzle, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	config = setDefaults(config)

	generatedGrid, err := grid.Generate(grid.GeneratorConfig{
		Rows:       config.Size,
		Cols:       config.Size,
		Difficulty: config.Difficulty,
		Seed:       config.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGridGenerationFailed, err)
	}

	filler := fill.New(g.bank, g.sortKey)
	solution, _ := filler.FillFirstComplete(fill.FromGrid(generatedGrid), config.NodeThreshold, config.DurationThreshold)
	if solution == nil {
		return nil, ErrFillFailed
	}

	metadata := Metadata{
		ID:         uuid.New().String(),
		Title:      config.Title,
		Author:     config.Author,
		Difficulty: config.Difficulty,
		Theme:      config.Theme,
		CreatedAt:  time.Now(),
	}

	return NewPuzzle(generatedGrid, solution, metadata), nil
}

// validateConfig validates the puzzle generation configuration.
func validateConfig(config Config) error {
	if config.Size != 0 && (config.Size < 5 || config.Size > 25) {
		return errors.New("grid size must be between 5 and 25")
	}

	if config.Difficulty != "" {
		validDifficulty := false
		for _, d := range []grid.Difficulty{grid.Easy, grid.Medium, grid.Hard, grid.Expert} {
			if config.Difficulty == d {
				validDifficulty = true
				break
			}
		}
		if !validDifficulty {
			return errors.New("invalid difficulty level")
		}
	}

	return nil
}

// setDefaults fills in default values for optional configuration fields.
func setDefaults(config Config) Config {
	if config.Size == 0 {
		config.Size = 15
	}
	if config.Difficulty == "" {
		config.Difficulty = grid.Medium
	}
	if config.Title == "" {
		config.Title = fmt.Sprintf("Crossword Puzzle - %s", time.Now().Format("2006-01-02"))
	}
	if config.Author == "" {
		config.Author = "xwordcore autofill"
	}
	return config
}
