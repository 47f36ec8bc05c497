package cmd

import (
	"fmt"
	"sort"

	"github.com/xwordcore/autofill/pkg/bank"
	"github.com/xwordcore/autofill/pkg/wordlist"
	"github.com/spf13/cobra"
)

var (
	statsWordlist    string
	statsRegistryCap int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display word bank statistics",
	Long: `Display statistics about a word bank built from a wordlist file.

Shows information about:
  - Total word count and length distribution
  - How many words fall within the sub-pattern registry cap
  - Score distribution (if the source wordlist carries scores)

Examples:
  # Show stats for a wordlist
  crossgen stats --wordlist ./broda.txt

  # Show stats with a custom registry cap
  crossgen stats --wordlist ./broda.txt --registry-cap 7`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsWordlist, "wordlist", "w", "", "path to wordlist file (required, Peter Broda format)")
	statsCmd.Flags().IntVar(&statsRegistryCap, "registry-cap", bank.DefaultRegistryCap, "max word length fully sub-pattern indexed")
	statsCmd.MarkFlagRequired("wordlist")
}

func runStats(cmd *cobra.Command, args []string) error {
	wl, err := wordlist.LoadBrodaWordlist(statsWordlist)
	if err != nil {
		return fmt.Errorf("failed to load wordlist: %w", err)
	}

	items := make([]bank.Item, len(wl.Words))
	for i, w := range wl.Words {
		items[i] = bank.Item{Word: w.Text, Score: w.Score}
	}
	b, err := bank.New(items, statsRegistryCap)
	if err != nil {
		return fmt.Errorf("failed to build word bank: %w", err)
	}

	fmt.Printf("\nWord Bank Statistics\n")
	fmt.Printf("====================\n")
	fmt.Printf("Wordlist: %s\n", statsWordlist)
	fmt.Printf("Registry cap: %d\n\n", b.RegistryCap())

	displayWordCounts(wl)
	displayLengthDistribution(wl, b.RegistryCap())
	displayScoreDistribution(wl)

	return nil
}

func displayWordCounts(wl *wordlist.Wordlist) {
	fmt.Println("Totals:")
	fmt.Println("-------")
	fmt.Printf("  %-20s: %d\n", "raw entries", len(wl.Words))

	seen := make(map[string]bool, len(wl.Words))
	for _, w := range wl.Words {
		seen[w.Text] = true
	}
	fmt.Printf("  %-20s: %d\n", "unique words", len(seen))
	fmt.Println()
}

func displayLengthDistribution(wl *wordlist.Wordlist, registryCap int) {
	fmt.Println("Length Distribution:")
	fmt.Println("--------------------")

	byLength := make(map[int]int)
	indexed := 0
	for _, w := range wl.Words {
		byLength[len(w.Text)]++
		if len(w.Text) <= registryCap {
			indexed++
		}
	}

	lengths := make([]int, 0, len(byLength))
	for l := range byLength {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	for _, l := range lengths {
		fmt.Printf("  length %-3d: %d\n", l, byLength[l])
	}
	fmt.Printf("\n  %d/%d words (%.1f%%) fall within the registry cap and are fully sub-pattern indexed\n",
		indexed, len(wl.Words), 100*float64(indexed)/float64(len(wl.Words)))
	fmt.Println()
}

func displayScoreDistribution(wl *wordlist.Wordlist) {
	fmt.Println("Score Distribution:")
	fmt.Println("--------------------")

	if len(wl.Words) == 0 {
		fmt.Println("  No words loaded")
		fmt.Println()
		return
	}

	min, max, total := wl.Words[0].Score, wl.Words[0].Score, 0
	for _, w := range wl.Words {
		if w.Score < min {
			min = w.Score
		}
		if w.Score > max {
			max = w.Score
		}
		total += w.Score
	}
	avg := float64(total) / float64(len(wl.Words))

	fmt.Printf("  %-10s: %d\n", "min", min)
	fmt.Printf("  %-10s: %d\n", "max", max)
	fmt.Printf("  %-10s: %.1f\n", "average", avg)
	fmt.Println()
}
