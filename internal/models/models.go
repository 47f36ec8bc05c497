package models

import (
	"time"
)

// User represents an API client account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Password    string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserStats tracks a user's puzzle-solving activity.
type UserStats struct {
	UserID        string     `json:"userId"`
	PuzzlesSolved int        `json:"puzzlesSolved"`
	AvgSolveTime  float64    `json:"avgSolveTime"` // seconds
	LastPlayedAt  *time.Time `json:"lastPlayedAt,omitempty"`
}

// UserWithStats combines a user and its stats.
type UserWithStats struct {
	User  User      `json:"user"`
	Stats UserStats `json:"stats"`
}

// Difficulty levels for generated puzzles.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Puzzle represents a crossword puzzle as exposed over the API and by
// pkg/output's writers.
type Puzzle struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author"`
	Difficulty  Difficulty   `json:"difficulty"`
	GridWidth   int          `json:"gridWidth"`
	GridHeight  int          `json:"gridHeight"`
	Grid        [][]GridCell `json:"grid"`
	CluesAcross []Clue       `json:"cluesAcross"`
	CluesDown   []Clue       `json:"cluesDown"`
	Theme       *string      `json:"theme,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
	Status      string       `json:"status"` // draft, approved, published
}

// GridCell represents a single cell in the puzzle grid.
type GridCell struct {
	Letter    *string `json:"letter"` // null = black square or uncommitted
	Number    *int    `json:"number,omitempty"`
	IsCircled bool    `json:"isCircled,omitempty"`
	Rebus     *string `json:"rebus,omitempty"`
}

// Clue represents a single slot's number, position, and (optional) text.
type Clue struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	Answer    string `json:"answer"`
	PositionX int    `json:"positionX"`
	PositionY int    `json:"positionY"`
	Length    int    `json:"length"`
	Direction string `json:"direction"` // "across" or "down"
}

// PuzzleHistory records one completed puzzle solve for a user.
type PuzzleHistory struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	PuzzleID    string     `json:"puzzleId"`
	SolveTime   int        `json:"solveTime"` // seconds
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// BankRecord is the persisted record of an uploaded word bank: its
// fingerprint (pkg/bank.Fingerprint) identifies the cached binary blob in
// Redis; the Postgres row is the record of ownership and word count.
type BankRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Fingerprint string    `json:"fingerprint"`
	RegistryCap int       `json:"registryCap"`
	WordCount   int       `json:"wordCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FillJobStatus is the lifecycle state of an asynchronous fill job.
type FillJobStatus string

const (
	FillJobPending FillJobStatus = "pending"
	FillJobRunning FillJobStatus = "running"
	FillJobDone    FillJobStatus = "done"
	FillJobFailed  FillJobStatus = "failed"
)

// FillJob is a persisted autofill request: the grid it was asked to fill,
// which bank it drew from, and (once finished) the resulting render.
type FillJob struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	BankID      string        `json:"bankId"`
	Layout      string        `json:"layout"` // the R-line layout string, '.'/'_'
	Rows        int           `json:"rows"`
	Cols        int           `json:"cols"`
	Status      FillJobStatus `json:"status"`
	Result      *string       `json:"result,omitempty"` // R-line rendering of the solution
	NodeCount   int           `json:"nodeCount"`
	Error       *string       `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}
