package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xwordcore/autofill/internal/models"
	"github.com/xwordcore/autofill/pkg/bank"
	"github.com/xwordcore/autofill/pkg/grid"
	"github.com/xwordcore/autofill/pkg/output"
	"github.com/xwordcore/autofill/pkg/puzzle"
	"github.com/xwordcore/autofill/pkg/wordlist"
	"github.com/spf13/cobra"
)

var (
	genCount        int
	genDifficulty   string
	genOutput       string
	genFormat       string
	genWordlist     string
	genRegistryCap  int
	genNodeBudget   int
	genDurationSecs int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate crossword puzzles",
	Long: `Generate one or more crossword puzzles by constructing a symmetric grid
layout and filling it from a word bank via constraint propagation. Clue
text is out of scope: generated puzzles carry grid, answers, and metadata
only.

Examples:
  # Generate 10 easy puzzles in JSON format
  crossgen generate --count 10 --difficulty easy --format json --output ./puzzles

  # Generate a single hard puzzle in all formats
  crossgen generate --difficulty hard --format all --output ./puzzles`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of puzzles to generate")
	generateCmd.Flags().StringVarP(&genDifficulty, "difficulty", "d", "medium", "puzzle difficulty (easy, medium, hard, expert)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", ".", "output directory (created if missing)")
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", "json", "output format (json, puz, ipuz, all)")
	generateCmd.Flags().StringVarP(&genWordlist, "wordlist", "w", "", "path to wordlist file (Peter Broda format)")
	generateCmd.Flags().IntVar(&genRegistryCap, "registry-cap", bank.DefaultRegistryCap, "max word length fully sub-pattern indexed")
	generateCmd.Flags().IntVar(&genNodeBudget, "node-budget", 0, "max search nodes per puzzle (0 = unbounded)")
	generateCmd.Flags().IntVar(&genDurationSecs, "duration-budget", 30, "max seconds spent filling per puzzle (0 = unbounded)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	difficulty, err := parseDifficulty(genDifficulty)
	if err != nil {
		return fmt.Errorf("invalid difficulty: %w", err)
	}

	formats, err := parseFormats(genFormat)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	if genWordlist == "" {
		return fmt.Errorf("--wordlist flag is required")
	}

	if verbosity > 0 {
		fmt.Printf("Loading wordlist from: %s\n", genWordlist)
	}

	wl, err := wordlist.LoadBrodaWordlist(genWordlist)
	if err != nil {
		return fmt.Errorf("failed to load wordlist: %w", err)
	}

	if verbosity > 0 {
		fmt.Printf("Loaded %d words\n", len(wl.Words))
	}

	items := make([]bank.Item, len(wl.Words))
	for i, w := range wl.Words {
		items[i] = bank.Item{Word: w.Text, Score: w.Score}
	}
	b, err := bank.New(items, genRegistryCap)
	if err != nil {
		return fmt.Errorf("failed to build word bank: %w", err)
	}

	puzzleGen := puzzle.NewGenerator(b, nil)

	if err := os.MkdirAll(genOutput, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var nodeThreshold *int
	if genNodeBudget > 0 {
		nodeThreshold = &genNodeBudget
	}
	var durationThreshold *time.Duration
	if genDurationSecs > 0 {
		d := time.Duration(genDurationSecs) * time.Second
		durationThreshold = &d
	}

	fmt.Printf("Generating %d puzzle(s) with difficulty: %s\n", genCount, genDifficulty)

	for i := 1; i <= genCount; i++ {
		startTime := time.Now()
		fmt.Printf("[%d/%d] Generating puzzle... ", i, genCount)

		puzzleConfig := puzzle.Config{
			Size:              15,
			Difficulty:        difficulty,
			Seed:              0, // Random
			NodeThreshold:     nodeThreshold,
			DurationThreshold: durationThreshold,
			Title:             fmt.Sprintf("Crossword Puzzle %d - %s", i, time.Now().Format("2006-01-02")),
			Author:            "crossgen",
		}

		puz, err := puzzleGen.GeneratePuzzle(puzzleConfig)
		if err != nil {
			fmt.Printf("FAILED\n")
			return fmt.Errorf("failed to generate puzzle %d: %w", i, err)
		}

		modelsPuzzle := puzzle.ToModelsPuzzle(puz, nil)

		if err := writeOutputFiles(modelsPuzzle, genOutput, i, formats); err != nil {
			fmt.Printf("FAILED\n")
			return fmt.Errorf("failed to write output files for puzzle %d: %w", i, err)
		}

		elapsed := time.Since(startTime)
		fmt.Printf("OK (%.1fs)\n", elapsed.Seconds())
	}

	fmt.Printf("\nSuccessfully generated %d puzzle(s) in %s\n", genCount, genOutput)
	return nil
}

// parseDifficulty converts string difficulty to grid.Difficulty
func parseDifficulty(diff string) (grid.Difficulty, error) {
	switch strings.ToLower(diff) {
	case "easy":
		return grid.Easy, nil
	case "medium":
		return grid.Medium, nil
	case "hard":
		return grid.Hard, nil
	case "expert":
		return grid.Expert, nil
	default:
		return grid.Medium, fmt.Errorf("invalid difficulty: %s (must be easy, medium, hard, or expert)", diff)
	}
}

// parseFormats converts format string to list of formats
func parseFormats(format string) ([]string, error) {
	format = strings.ToLower(format)
	if format == "all" {
		return []string{"json", "puz", "ipuz"}, nil
	}

	validFormats := map[string]bool{
		"json":  true,
		"puz":   true,
		"ipuz":  true,
	}

	if !validFormats[format] {
		return nil, fmt.Errorf("invalid format: %s (must be json, puz, ipuz, or all)", format)
	}

	return []string{format}, nil
}

// writeOutputFiles writes puzzle to disk in the specified formats
func writeOutputFiles(puz *models.Puzzle, outputDir string, puzzleNum int, formats []string) error {
	baseName := fmt.Sprintf("puzzle_%03d", puzzleNum)

	for _, format := range formats {
		var filePath string
		var data []byte
		var err error

		switch format {
		case "json":
			filePath = filepath.Join(outputDir, baseName+".json")
			data, err = output.ToJSON(puz)
		case "puz":
			filePath = filepath.Join(outputDir, baseName+".puz")
			data, err = output.FormatPuz(puz)
		case "ipuz":
			filePath = filepath.Join(outputDir, baseName+".ipuz")
			data, err = output.ToIPuz(puz)
		default:
			return fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return fmt.Errorf("failed to format puzzle as %s: %w", format, err)
		}

		if err := os.WriteFile(filePath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s file: %w", format, err)
		}
	}

	return nil
}
