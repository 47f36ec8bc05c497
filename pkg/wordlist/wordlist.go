// Package wordlist is the word-list preprocessor spec.md §1 names as an
// external collaborator: it loads a scored word file and canonicalizes it
// into the uppercase strings the CORE's pkg/bank indexes.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xwordcore/autofill/pkg/bank"
)

// Word is a single entry read from a scored word list.
type Word struct {
	Text  string
	Score int
}

// Wordlist is a flat collection of scored words, as read from disk. It
// does no pattern indexing of its own; that is pkg/bank's job.
type Wordlist struct {
	Words []Word
}

// LoadBrodaWordlist loads a wordlist in Peter Broda's WORD;SCORE format,
// one entry per line. Words are upper-cased; blank lines are skipped.
func LoadBrodaWordlist(path string) (*Wordlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wordlist: open %s: %w", path, err)
	}
	defer file.Close()

	wl := &Wordlist{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ";", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("wordlist: malformed line %d: expected 'WORD;SCORE', got %q", lineNum, line)
		}

		text := canonicalize(parts[0])
		if text == "" {
			return nil, fmt.Errorf("wordlist: malformed line %d: empty word", lineNum)
		}

		score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("wordlist: malformed line %d: invalid score %q: %w", lineNum, parts[1], err)
		}

		wl.Words = append(wl.Words, Word{Text: text, Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("wordlist: reading %s: %w", path, err)
	}

	return wl, nil
}

// canonicalize upper-cases a raw token and strips whitespace and
// apostrophes, per spec.md §6's "Word list input" contract.
func canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "'", "")
	raw = strings.ReplaceAll(raw, " ", "")
	return strings.ToUpper(raw)
}

// Size returns the number of entries loaded.
func (wl *Wordlist) Size() int {
	return len(wl.Words)
}

// AtOrAbove filters to words scored at or above minScore.
func (wl *Wordlist) AtOrAbove(minScore int) []Word {
	var out []Word
	for _, w := range wl.Words {
		if w.Score >= minScore {
			out = append(out, w)
		}
	}
	return out
}

// ToBankItems converts every loaded word (optionally filtered by
// minScore) into the bank.Item form pkg/bank.New consumes.
func (wl *Wordlist) ToBankItems(minScore int) []bank.Item {
	items := make([]bank.Item, 0, len(wl.Words))
	for _, w := range wl.Words {
		if w.Score < minScore {
			continue
		}
		items = append(items, bank.Item{Word: w.Text, Score: w.Score})
	}
	return items
}

// Bank builds a pkg/bank.Bank directly from the loaded words at or above
// minScore, using registryCap as the sub-pattern indexing cap.
func (wl *Wordlist) Bank(minScore, registryCap int) (*bank.Bank, error) {
	return bank.New(wl.ToBankItems(minScore), registryCap)
}
