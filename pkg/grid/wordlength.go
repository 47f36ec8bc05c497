package grid

import "errors"

// ErrShortWords is returned when a grid would contain slots shorter than
// MinWordLength.
var ErrShortWords = errors.New("grid contains slots shorter than minimum allowed length")

// MinWordLength is the minimum allowed slot length for a generated grid.
// Slots of length 1 are not slots at all (spec.md §4.1) and are ignored
// here, not counted as "short".
const MinWordLength = 3

// hasShortWords reports whether the rows x cols layout contains any run of
// light cells with 1 < length < MinWordLength, in either direction.
func hasShortWords(dark []bool, rows, cols int) bool {
	for row := 0; row < rows; row++ {
		run := 0
		for col := 0; col < cols; col++ {
			if dark[row*cols+col] {
				if run > 1 && run < MinWordLength {
					return true
				}
				run = 0
			} else {
				run++
			}
		}
		if run > 1 && run < MinWordLength {
			return true
		}
	}

	for col := 0; col < cols; col++ {
		run := 0
		for row := 0; row < rows; row++ {
			if dark[row*cols+col] {
				if run > 1 && run < MinWordLength {
					return true
				}
				run = 0
			} else {
				run++
			}
		}
		if run > 1 && run < MinWordLength {
			return true
		}
	}

	return false
}
