package grid

import (
	"errors"
	"time"
)

// Difficulty is a black-square density preset for generated layouts.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Expert Difficulty = "expert"
)

// ErrGenerationFailed is returned when no valid layout was found within
// MaxGenerationAttempts.
var ErrGenerationFailed = errors.New("grid: failed to generate valid layout after maximum attempts")

// MaxGenerationAttempts bounds the retry loop in Generate.
const MaxGenerationAttempts = 1000

// GeneratorConfig parameterizes Generate. Rows and Cols must both be set;
// most crossword layouts set them equal.
type GeneratorConfig struct {
	Rows, Cols   int
	Difficulty   Difficulty
	BlackDensity float64 // overrides Difficulty when non-zero
	Seed         int64   // 0 means derive a seed from the current time
}

func difficultyDensity(d Difficulty) float64 {
	switch d {
	case Easy:
		return 0.06
	case Hard:
		return 0.10
	case Expert:
		return 0.12
	default:
		return 0.08
	}
}

// Generate produces a symmetric, connected, minimum-word-length-respecting
// empty layout and parses it into a Grid. This is upstream of the CORE
// (spec.md §1 places layout construction out of scope) but is kept as the
// collaborator that produces the strings Parse consumes.
func Generate(config GeneratorConfig) (*Grid, error) {
	blackDensity := config.BlackDensity
	if blackDensity == 0 {
		blackDensity = difficultyDensity(config.Difficulty)
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	for attempt := 0; attempt < MaxGenerationAttempts; attempt++ {
		dark := make([]bool, config.Rows*config.Cols)
		seedBlackSquares(dark, config.Rows, config.Cols, SeedConfig{
			Seed:         seed + int64(attempt),
			BlackDensity: blackDensity,
		})
		enforceSymmetry(dark, config.Rows, config.Cols)

		if !isConnected(dark, config.Rows, config.Cols) {
			continue
		}
		if hasShortWords(dark, config.Rows, config.Cols) {
			continue
		}

		return Parse(layoutString(dark), config.Rows, config.Cols)
	}

	return nil, ErrGenerationFailed
}

func layoutString(dark []bool) string {
	out := make([]byte, len(dark))
	for i, d := range dark {
		if d {
			out[i] = '.'
		} else {
			out[i] = '_'
		}
	}
	return string(out)
}
