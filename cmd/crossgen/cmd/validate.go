package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xwordcore/autofill/pkg/grid"
	"github.com/spf13/cobra"
)

// clueData represents a clue in the JSON file
type clueData struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Length int    `json:"length"`
}

var (
	validateInput string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate crossword puzzle files",
	Long: `Validate one or more crossword puzzle files for correctness.

Checks include:
  - Grid symmetry (180-degree rotational)
  - Grid connectivity (all light cells reachable)
  - Minimum word length requirements
  - Clue completeness
  - Format correctness

Examples:
  # Validate a single puzzle file
  crossgen validate --input puzzle.json

  # Validate all puzzles in a directory
  crossgen validate --input ./puzzles`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "input file or directory to validate (required)")
	validateCmd.MarkFlagRequired("input")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if verbosity > 0 {
		fmt.Printf("Validating: %s\n", validateInput)
	}

	info, err := os.Stat(validateInput)
	if err != nil {
		return fmt.Errorf("failed to access input path: %w", err)
	}

	var filesToValidate []string

	if info.IsDir() {
		files, err := filepath.Glob(filepath.Join(validateInput, "*.json"))
		if err != nil {
			return fmt.Errorf("failed to list directory: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no .json files found in directory: %s", validateInput)
		}
		filesToValidate = files
	} else {
		filesToValidate = []string{validateInput}
	}

	totalFiles := len(filesToValidate)
	invalidFiles := 0
	validFiles := 0

	for _, filePath := range filesToValidate {
		if verbosity > 0 {
			fmt.Printf("\nValidating: %s\n", filePath)
		}

		valid, err := validatePuzzleFile(filePath)
		if err != nil {
			fmt.Printf("FAIL %s: ERROR - %v\n", filepath.Base(filePath), err)
			invalidFiles++
		} else if !valid {
			invalidFiles++
		} else {
			if verbosity > 0 {
				fmt.Printf("OK %s: VALID\n", filepath.Base(filePath))
			}
			validFiles++
		}
	}

	fmt.Printf("\n")
	fmt.Printf("Validation Summary:\n")
	fmt.Printf("  Total files:   %d\n", totalFiles)
	fmt.Printf("  Valid:         %d\n", validFiles)
	fmt.Printf("  Invalid:       %d\n", invalidFiles)

	if invalidFiles > 0 {
		os.Exit(1)
	}

	return nil
}

// validatePuzzleFile validates a single puzzle file.
// Returns true if valid, false if invalid, and an error if the file can't be processed.
func validatePuzzleFile(filePath string) (bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}

	var puzzleData struct {
		Grid   [][]string `json:"grid"`
		Across []clueData `json:"across"`
		Down   []clueData `json:"down"`
	}

	if err := json.Unmarshal(data, &puzzleData); err != nil {
		return false, fmt.Errorf("invalid JSON format: %w", err)
	}

	if len(puzzleData.Grid) == 0 {
		fmt.Printf("FAIL %s: INVALID - empty grid\n", filepath.Base(filePath))
		return false, nil
	}

	g, err := gridFromCells(puzzleData.Grid)
	if err != nil {
		return false, fmt.Errorf("failed to parse grid: %w", err)
	}

	var errors []string

	if !symmetric(g) {
		errors = append(errors, "grid lacks 180-degree rotational symmetry")
	}
	if !connected(g) {
		errors = append(errors, "grid has disconnected light cells")
	}
	if hasShortSlots(g) {
		errors = append(errors, "grid contains entries shorter than minimum length (3)")
	}
	errors = append(errors, validateClueCompleteness(g, puzzleData.Across, puzzleData.Down)...)

	if len(errors) > 0 {
		fmt.Printf("FAIL %s: INVALID\n", filepath.Base(filePath))
		for _, errMsg := range errors {
			fmt.Printf("   - %s\n", errMsg)
		}
		return false, nil
	}

	return true, nil
}

// gridFromCells parses a PuzzleJSON-style letter grid into a grid.Grid,
// using '.' (or an empty string) as the dark-cell marker.
func gridFromCells(cells [][]string) (*grid.Grid, error) {
	rows := len(cells)
	cols := 0
	if rows > 0 {
		cols = len(cells[0])
	}

	var layout strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(cells[r]) {
				cell = cells[r][c]
			}
			if cell == "." || cell == "" {
				layout.WriteByte('.')
			} else {
				layout.WriteByte('_')
			}
		}
	}

	return grid.Parse(layout.String(), rows, cols)
}

// validateClueCompleteness checks that all grid entries have corresponding clues.
func validateClueCompleteness(g *grid.Grid, acrossClues, downClues []clueData) []string {
	var errors []string

	expectedAcross := make(map[int]int)
	expectedDown := make(map[int]int)
	for _, slot := range g.Slots {
		if slot.Direction == grid.Across {
			expectedAcross[slot.Number] = slot.Length()
		} else {
			expectedDown[slot.Number] = slot.Length()
		}
	}

	errors = append(errors, checkClueSet("across", acrossClues, expectedAcross)...)
	errors = append(errors, checkClueSet("down", downClues, expectedDown)...)

	return errors
}

func checkClueSet(direction string, clues []clueData, expected map[int]int) []string {
	var errors []string
	provided := make(map[int]bool)

	for _, clue := range clues {
		provided[clue.Number] = true

		if strings.TrimSpace(clue.Text) == "" {
			errors = append(errors, fmt.Sprintf("%s clue %d has empty text", direction, clue.Number))
		}
		if strings.TrimSpace(clue.Answer) == "" {
			errors = append(errors, fmt.Sprintf("%s clue %d has empty answer", direction, clue.Number))
		}

		if expectedLen, exists := expected[clue.Number]; exists {
			if clue.Length != expectedLen {
				errors = append(errors, fmt.Sprintf("%s clue %d: answer length mismatch (expected %d, got %d)", direction, clue.Number, expectedLen, clue.Length))
			}
		} else {
			errors = append(errors, fmt.Sprintf("%s clue %d has no corresponding entry in grid", direction, clue.Number))
		}
	}

	for number := range expected {
		if !provided[number] {
			errors = append(errors, fmt.Sprintf("missing %s clue for entry %d", direction, number))
		}
	}

	return errors
}

// symmetric reports whether g has 180-degree rotational symmetry.
func symmetric(g *grid.Grid) bool {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			mirror := g.CellIndex(g.Rows-1-row, g.Cols-1-col)
			if g.Dark[g.CellIndex(row, col)] != g.Dark[mirror] {
				return false
			}
		}
	}
	return true
}

// connected reports whether every light cell is reachable from any other
// via orthogonal light-cell steps.
func connected(g *grid.Grid) bool {
	total := len(g.Dark)
	if total == 0 {
		return false
	}

	start := -1
	lightCount := 0
	for i, dark := range g.Dark {
		if !dark {
			lightCount++
			if start == -1 {
				start = i
			}
		}
	}
	if lightCount == 0 {
		return false
	}

	visited := make([]bool, total)
	queue := []int{start}
	visited[start] = true
	reached := 1

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		row, col := g.RowCol(idx)

		for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nr, nc := row+d[0], col+d[1]
			if nr < 0 || nr >= g.Rows || nc < 0 || nc >= g.Cols {
				continue
			}
			ni := g.CellIndex(nr, nc)
			if visited[ni] || g.Dark[ni] {
				continue
			}
			visited[ni] = true
			reached++
			queue = append(queue, ni)
		}
	}

	return reached == lightCount
}

// hasShortSlots reports whether any entry has fewer than 3 cells. grid.Parse
// already requires slots to have at least 2 cells; this enforces the
// stricter minimum puzzle-quality bound.
func hasShortSlots(g *grid.Grid) bool {
	for _, slot := range g.Slots {
		if slot.Length() < 3 {
			return true
		}
	}
	return false
}
