// Package bank implements the immutable, pattern-indexed word pool that
// the Filler queries during search (spec.md §4.2).
package bank

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidWord is returned when constructing a Bank from a word that is
// not a canonical uppercase string of length >= 2 (spec.md §6 guarantees
// canonicalization happens upstream; the Bank still validates its input).
var ErrInvalidWord = errors.New("bank: word must be uppercase A-Z of length >= 2")

// ErrEmptyBank is returned when New is given no words at all (spec.md §7
// "input validation... empty word list").
var ErrEmptyBank = errors.New("bank: word list is empty")

// DefaultRegistryCap is K from spec.md §4.2: words no longer than this are
// fully sub-pattern indexed; longer words fall back to a linear scan.
const DefaultRegistryCap = 9

// Unknown rank value: the pattern was too long for the index, so no count
// could be produced. Reject is the value for a fully-defined pattern whose
// rendering is absent from the bank or already in use.
const (
	RankUnknown = -2
	RankReject  = -1
)

// Item is a single candidate word plus the score its source word list
// assigned it (used by downstream selection/quality heuristics; the CORE
// itself only needs Item.Word).
type Item struct {
	Word  string
	Score int
}

// Bank is the immutable pool of candidate words plus the sub-pattern index
// described in spec.md §4.2. Construct with New; a Bank is never mutated
// after that.
type Bank struct {
	registryCap int
	items       []Item
	words       map[string]bool
	byLength    map[int][]Item
	byPattern   map[string][]Item
}

// New builds a Bank from items, deduplicating by Word (spec.md §6:
// "Duplicates are collapsed") and constructing the 2^N sub-pattern index
// for every word of length <= registryCap. A registryCap below 2 is
// replaced by DefaultRegistryCap.
func New(items []Item, registryCap int) (*Bank, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBank
	}
	if registryCap < 2 {
		registryCap = DefaultRegistryCap
	}

	b := &Bank{
		registryCap: registryCap,
		words:       make(map[string]bool),
		byLength:    make(map[int][]Item),
		byPattern:   make(map[string][]Item),
	}

	seen := make(map[string]bool, len(items))
	for _, it := range items {
		w := it.Word
		if len(w) < 2 || !isCanonical(w) {
			return nil, ErrInvalidWord
		}
		if seen[w] {
			continue
		}
		seen[w] = true

		b.items = append(b.items, it)
		b.words[w] = true
		b.byLength[len(w)] = append(b.byLength[len(w)], it)

		if len(w) <= registryCap {
			for mask := 0; mask < (1 << len(w)); mask++ {
				pat := make([]byte, len(w))
				for i := range pat {
					if mask&(1<<i) != 0 {
						pat[i] = w[i]
					} else {
						pat[i] = '_'
					}
				}
				key := string(pat)
				b.byPattern[key] = append(b.byPattern[key], it)
			}
		}
	}

	for _, bucket := range b.byPattern {
		sortItems(bucket)
	}
	for _, bucket := range b.byLength {
		sortItems(bucket)
	}

	return b, nil
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].Word < items[j].Word })
}

func isCanonical(w string) bool {
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// RegistryCap returns K, the indexing cap this Bank was built with.
func (b *Bank) RegistryCap() int {
	return b.registryCap
}

// HasWord reports membership against the tableau set.
func (b *Bank) HasWord(w string) bool {
	return b.words[w]
}

// Filter returns every bank item matching pattern (a string of letters and
// '_' for UNKNOWN). For patterns no longer than the registry cap this is
// an O(1) index lookup; otherwise it falls back to a linear scan over
// words of the same length.
func (b *Bank) Filter(pattern string) []Item {
	if len(pattern) <= b.registryCap {
		return b.byPattern[pattern]
	}
	return b.filterSlowly(pattern)
}

func (b *Bank) filterSlowly(pattern string) []Item {
	var out []Item
	for _, it := range b.byLength[len(pattern)] {
		if Matches(pattern, it.Word) {
			out = append(out, it)
		}
	}
	return out
}

// Matches reports whether word satisfies pattern: every non-'_' position
// must equal the corresponding letter in word.
func Matches(pattern, word string) bool {
	if len(pattern) != len(word) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '_' && pattern[i] != word[i] {
			return false
		}
	}
	return true
}

// CountFilter returns the exact match count when pattern is answerable
// from the index (length <= registry cap); ok is false when it would
// require a scan, per spec.md §4.2.
func (b *Bank) CountFilter(pattern string) (count int, ok bool) {
	if len(pattern) > b.registryCap {
		return 0, false
	}
	return len(b.byPattern[pattern]), true
}

// NotAlreadyUsedPredicate lifts a set of current renderings into a
// predicate that rejects any item whose rendering is already in use.
func NotAlreadyUsedPredicate(used map[string]bool) func(Item) bool {
	return func(it Item) bool {
		return !used[it.Word]
	}
}

// RankCandidate scores a hypothetical pattern per spec.md §4.2:
//   - if the pattern is fully defined (no '_') but its rendering is absent
//     from the bank or already in used, returns RankReject.
//   - otherwise returns the bank's match count for the pattern, or
//     RankUnknown if the pattern is too long to be indexed.
func (b *Bank) RankCandidate(pattern string, used map[string]bool) int {
	if !strings.ContainsRune(pattern, '_') {
		if !b.HasWord(pattern) || used[pattern] {
			return RankReject
		}
	}
	count, ok := b.CountFilter(pattern)
	if !ok {
		return RankUnknown
	}
	return count
}

// Len returns the number of distinct words in the bank.
func (b *Bank) Len() int {
	return len(b.items)
}
