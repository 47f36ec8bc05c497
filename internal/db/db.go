package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xwordcore/autofill/internal/models"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Database struct {
	DB    *sql.DB
	Redis *redis.Client
}

func New(postgresURL, redisURL string) (*Database, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Configure connection pool for optimal performance
	db.SetMaxOpenConns(25)                 // Maximum number of open connections
	db.SetMaxIdleConns(10)                 // Maximum number of idle connections
	db.SetConnMaxLifetime(5 * time.Minute) // Maximum lifetime of a connection

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Database{DB: db, Redis: rdb}, nil
}

func (d *Database) Close() error {
	if err := d.DB.Close(); err != nil {
		return err
	}
	return d.Redis.Close()
}

// InitSchema creates all database tables
func (d *Database) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) UNIQUE,
		display_name VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS user_stats (
		user_id VARCHAR(36) PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		puzzles_solved INTEGER DEFAULT 0,
		avg_solve_time FLOAT DEFAULT 0,
		last_played_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS puzzles (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		author VARCHAR(100) NOT NULL,
		difficulty VARCHAR(20) NOT NULL,
		grid_width INTEGER NOT NULL,
		grid_height INTEGER NOT NULL,
		grid JSONB NOT NULL,
		clues_across JSONB NOT NULL,
		clues_down JSONB NOT NULL,
		theme VARCHAR(255),
		status VARCHAR(20) DEFAULT 'draft',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		published_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_puzzles_difficulty ON puzzles(difficulty);
	CREATE INDEX IF NOT EXISTS idx_puzzles_status ON puzzles(status);

	CREATE TABLE IF NOT EXISTS banks (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(36) REFERENCES users(id) ON DELETE CASCADE,
		fingerprint VARCHAR(64) UNIQUE NOT NULL,
		registry_cap INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_banks_owner_id ON banks(owner_id);
	CREATE INDEX IF NOT EXISTS idx_banks_fingerprint ON banks(fingerprint);

	CREATE TABLE IF NOT EXISTS fill_jobs (
		id VARCHAR(36) PRIMARY KEY,
		owner_id VARCHAR(36) REFERENCES users(id) ON DELETE CASCADE,
		bank_id VARCHAR(36) NOT NULL REFERENCES banks(id) ON DELETE CASCADE,
		layout TEXT NOT NULL,
		rows INTEGER NOT NULL,
		cols INTEGER NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		result TEXT,
		node_count INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_fill_jobs_owner_id ON fill_jobs(owner_id);
	CREATE INDEX IF NOT EXISTS idx_fill_jobs_status ON fill_jobs(status);

	CREATE TABLE IF NOT EXISTS puzzle_history (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) REFERENCES users(id) ON DELETE CASCADE,
		puzzle_id VARCHAR(36) REFERENCES puzzles(id) ON DELETE CASCADE,
		solve_time INTEGER DEFAULT 0,
		completed BOOLEAN DEFAULT FALSE,
		completed_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_puzzle_history_user_id ON puzzle_history(user_id);
	CREATE INDEX IF NOT EXISTS idx_puzzle_history_puzzle_id ON puzzle_history(puzzle_id);
	CREATE INDEX IF NOT EXISTS idx_puzzle_history_completed_at ON puzzle_history(completed_at);
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`

	_, err := d.DB.Exec(schema)
	return err
}

// User operations
func (d *Database) CreateUser(user *models.User) error {
	_, err := d.DB.Exec(`
		INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, user.Email, user.DisplayName, user.Password, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		return err
	}

	// Create initial stats
	_, err = d.DB.Exec(`
		INSERT INTO user_stats (user_id) VALUES ($1)
	`, user.ID)

	return err
}

func (d *Database) GetUserByID(id string) (*models.User, error) {
	user := &models.User{}
	err := d.DB.QueryRow(`
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.DisplayName, &user.Password, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (d *Database) GetUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := d.DB.QueryRow(`
		SELECT id, email, display_name, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.DisplayName, &user.Password, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (d *Database) GetUserStats(userID string) (*models.UserStats, error) {
	stats := &models.UserStats{}
	err := d.DB.QueryRow(`
		SELECT user_id, puzzles_solved, avg_solve_time, last_played_at
		FROM user_stats WHERE user_id = $1
	`, userID).Scan(&stats.UserID, &stats.PuzzlesSolved, &stats.AvgSolveTime, &stats.LastPlayedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return stats, err
}

func (d *Database) UpdateUserStats(stats *models.UserStats) error {
	_, err := d.DB.Exec(`
		UPDATE user_stats SET
			puzzles_solved = $2,
			avg_solve_time = $3,
			last_played_at = $4
		WHERE user_id = $1
	`, stats.UserID, stats.PuzzlesSolved, stats.AvgSolveTime, stats.LastPlayedAt)
	return err
}

// Puzzle operations
func (d *Database) CreatePuzzle(puzzle *models.Puzzle) error {
	gridJSON, _ := json.Marshal(puzzle.Grid)
	cluesAcrossJSON, _ := json.Marshal(puzzle.CluesAcross)
	cluesDownJSON, _ := json.Marshal(puzzle.CluesDown)

	_, err := d.DB.Exec(`
		INSERT INTO puzzles (id, title, author, difficulty, grid_width, grid_height,
							 grid, clues_across, clues_down, theme, status, created_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, puzzle.ID, puzzle.Title, puzzle.Author, puzzle.Difficulty, puzzle.GridWidth, puzzle.GridHeight,
		gridJSON, cluesAcrossJSON, cluesDownJSON, puzzle.Theme, puzzle.Status, puzzle.CreatedAt, puzzle.PublishedAt)
	return err
}

func (d *Database) GetPuzzleByID(id string) (*models.Puzzle, error) {
	puzzle := &models.Puzzle{}
	var gridJSON, cluesAcrossJSON, cluesDownJSON []byte

	err := d.DB.QueryRow(`
		SELECT id, title, author, difficulty, grid_width, grid_height,
			   grid, clues_across, clues_down, theme, status, created_at, published_at
		FROM puzzles WHERE id = $1
	`, id).Scan(&puzzle.ID, &puzzle.Title, &puzzle.Author, &puzzle.Difficulty,
		&puzzle.GridWidth, &puzzle.GridHeight, &gridJSON, &cluesAcrossJSON, &cluesDownJSON,
		&puzzle.Theme, &puzzle.Status, &puzzle.CreatedAt, &puzzle.PublishedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal(gridJSON, &puzzle.Grid)
	json.Unmarshal(cluesAcrossJSON, &puzzle.CluesAcross)
	json.Unmarshal(cluesDownJSON, &puzzle.CluesDown)

	return puzzle, nil
}

// GetPuzzleArchive returns puzzles with an optional status filter, sorted by creation time.
func (d *Database) GetPuzzleArchive(status string, limit, offset int) ([]*models.Puzzle, error) {
	query := `
		SELECT id, title, author, difficulty, grid_width, grid_height,
			   grid, clues_across, clues_down, theme, status, created_at, published_at
		FROM puzzles WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, status)
		argNum++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var puzzles []*models.Puzzle
	for rows.Next() {
		puzzle := &models.Puzzle{}
		var gridJSON, cluesAcrossJSON, cluesDownJSON []byte

		err := rows.Scan(&puzzle.ID, &puzzle.Title, &puzzle.Author, &puzzle.Difficulty,
			&puzzle.GridWidth, &puzzle.GridHeight, &gridJSON, &cluesAcrossJSON, &cluesDownJSON,
			&puzzle.Theme, &puzzle.Status, &puzzle.CreatedAt, &puzzle.PublishedAt)
		if err != nil {
			return nil, err
		}

		json.Unmarshal(gridJSON, &puzzle.Grid)
		json.Unmarshal(cluesAcrossJSON, &puzzle.CluesAcross)
		json.Unmarshal(cluesDownJSON, &puzzle.CluesDown)

		puzzles = append(puzzles, puzzle)
	}

	return puzzles, nil
}

// GetPuzzleArchiveCount returns the total count of published puzzles with optional difficulty filter
func (d *Database) GetPuzzleArchiveCount(difficulty string) (int, error) {
	query := `SELECT COUNT(*) FROM puzzles WHERE status = 'published'`
	args := []interface{}{}

	if difficulty != "" {
		query += " AND difficulty = $1"
		args = append(args, difficulty)
	}

	var count int
	err := d.DB.QueryRow(query, args...).Scan(&count)
	return count, err
}

func (d *Database) UpdatePuzzleStatus(id, status string) error {
	query := `UPDATE puzzles SET status = $2`
	if status == "published" {
		query += ", published_at = CURRENT_TIMESTAMP"
	}
	query += " WHERE id = $1"

	_, err := d.DB.Exec(query, id, status)
	return err
}

func (d *Database) UpdatePuzzle(puzzle *models.Puzzle) error {
	gridJSON, _ := json.Marshal(puzzle.Grid)
	cluesAcrossJSON, _ := json.Marshal(puzzle.CluesAcross)
	cluesDownJSON, _ := json.Marshal(puzzle.CluesDown)

	_, err := d.DB.Exec(`
		UPDATE puzzles SET
			title = $2, author = $3, difficulty = $4,
			grid_width = $5, grid_height = $6, grid = $7,
			clues_across = $8, clues_down = $9, theme = $10,
			status = $11, published_at = $12
		WHERE id = $1
	`, puzzle.ID, puzzle.Title, puzzle.Author, puzzle.Difficulty,
		puzzle.GridWidth, puzzle.GridHeight, gridJSON,
		cluesAcrossJSON, cluesDownJSON, puzzle.Theme,
		puzzle.Status, puzzle.PublishedAt)
	return err
}

// Bank operations. The Postgres row tracks ownership and size; the encoded
// pkg/bank.Bank itself lives in Redis under its fingerprint so that two
// uploads of the same word list plus registry cap share one cached blob
// (spec.md §6).
func (d *Database) CreateBankRecord(bank *models.BankRecord) error {
	_, err := d.DB.Exec(`
		INSERT INTO banks (id, owner_id, fingerprint, registry_cap, word_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fingerprint) DO NOTHING
	`, bank.ID, bank.OwnerID, bank.Fingerprint, bank.RegistryCap, bank.WordCount, bank.CreatedAt)
	return err
}

func (d *Database) GetBankRecordByID(id string) (*models.BankRecord, error) {
	b := &models.BankRecord{}
	err := d.DB.QueryRow(`
		SELECT id, owner_id, fingerprint, registry_cap, word_count, created_at
		FROM banks WHERE id = $1
	`, id).Scan(&b.ID, &b.OwnerID, &b.Fingerprint, &b.RegistryCap, &b.WordCount, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (d *Database) GetBankRecordByFingerprint(fingerprint string) (*models.BankRecord, error) {
	b := &models.BankRecord{}
	err := d.DB.QueryRow(`
		SELECT id, owner_id, fingerprint, registry_cap, word_count, created_at
		FROM banks WHERE fingerprint = $1
	`, fingerprint).Scan(&b.ID, &b.OwnerID, &b.Fingerprint, &b.RegistryCap, &b.WordCount, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

func (d *Database) ListBankRecordsForOwner(ownerID string) ([]*models.BankRecord, error) {
	rows, err := d.DB.Query(`
		SELECT id, owner_id, fingerprint, registry_cap, word_count, created_at
		FROM banks WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.BankRecord
	for rows.Next() {
		b := &models.BankRecord{}
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Fingerprint, &b.RegistryCap, &b.WordCount, &b.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, b)
	}
	return records, nil
}

// bankCacheKey namespaces the fingerprint so it doesn't collide with other
// Redis key families (such as session keys).
func bankCacheKey(fingerprint string) string {
	return "bank:" + fingerprint
}

// CacheBankBlob stores an encoded Bank (pkg/bank.Encode) under its
// fingerprint. Cached indefinitely: a fingerprint is a content hash, so the
// blob it names never changes.
func (d *Database) CacheBankBlob(ctx context.Context, fingerprint string, blob []byte) error {
	return d.Redis.Set(ctx, bankCacheKey(fingerprint), blob, 0).Err()
}

// GetCachedBankBlob returns the encoded Bank for a fingerprint, or
// (nil, nil) on a cache miss.
func (d *Database) GetCachedBankBlob(ctx context.Context, fingerprint string) ([]byte, error) {
	blob, err := d.Redis.Get(ctx, bankCacheKey(fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return blob, err
}

// Fill job operations
func (d *Database) CreateFillJob(job *models.FillJob) error {
	_, err := d.DB.Exec(`
		INSERT INTO fill_jobs (id, owner_id, bank_id, layout, rows, cols, status, result, node_count, error, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, job.ID, job.OwnerID, job.BankID, job.Layout, job.Rows, job.Cols, job.Status,
		job.Result, job.NodeCount, job.Error, job.CreatedAt, job.CompletedAt)
	return err
}

func (d *Database) GetFillJobByID(id string) (*models.FillJob, error) {
	job := &models.FillJob{}
	err := d.DB.QueryRow(`
		SELECT id, owner_id, bank_id, layout, rows, cols, status, result, node_count, error, created_at, completed_at
		FROM fill_jobs WHERE id = $1
	`, id).Scan(&job.ID, &job.OwnerID, &job.BankID, &job.Layout, &job.Rows, &job.Cols, &job.Status,
		&job.Result, &job.NodeCount, &job.Error, &job.CreatedAt, &job.CompletedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return job, err
}

// UpdateFillJobResult transitions a job to its terminal "done" state.
func (d *Database) UpdateFillJobResult(id string, result string, nodeCount int, completedAt time.Time) error {
	_, err := d.DB.Exec(`
		UPDATE fill_jobs SET status = $2, result = $3, node_count = $4, completed_at = $5
		WHERE id = $1
	`, id, models.FillJobDone, result, nodeCount, completedAt)
	return err
}

// UpdateFillJobFailure transitions a job to its terminal "failed" state.
func (d *Database) UpdateFillJobFailure(id string, failure string, nodeCount int, completedAt time.Time) error {
	_, err := d.DB.Exec(`
		UPDATE fill_jobs SET status = $2, error = $3, node_count = $4, completed_at = $5
		WHERE id = $1
	`, id, models.FillJobFailed, failure, nodeCount, completedAt)
	return err
}

func (d *Database) UpdateFillJobStatus(id string, status models.FillJobStatus) error {
	_, err := d.DB.Exec(`UPDATE fill_jobs SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (d *Database) ListFillJobsForOwner(ownerID string, limit, offset int) ([]*models.FillJob, error) {
	rows, err := d.DB.Query(`
		SELECT id, owner_id, bank_id, layout, rows, cols, status, result, node_count, error, created_at, completed_at
		FROM fill_jobs WHERE owner_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.FillJob
	for rows.Next() {
		job := &models.FillJob{}
		err := rows.Scan(&job.ID, &job.OwnerID, &job.BankID, &job.Layout, &job.Rows, &job.Cols, &job.Status,
			&job.Result, &job.NodeCount, &job.Error, &job.CreatedAt, &job.CompletedAt)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Puzzle history operations
func (d *Database) CreatePuzzleHistory(history *models.PuzzleHistory) error {
	_, err := d.DB.Exec(`
		INSERT INTO puzzle_history (id, user_id, puzzle_id, solve_time, completed, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, history.ID, history.UserID, history.PuzzleID, history.SolveTime,
		history.Completed, history.CompletedAt, history.CreatedAt)
	return err
}

func (d *Database) GetUserPuzzleHistory(userID string, limit, offset int) ([]models.PuzzleHistory, error) {
	rows, err := d.DB.Query(`
		SELECT id, user_id, puzzle_id, solve_time, completed, completed_at, created_at
		FROM puzzle_history WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.PuzzleHistory
	for rows.Next() {
		var h models.PuzzleHistory
		err := rows.Scan(&h.ID, &h.UserID, &h.PuzzleID, &h.SolveTime,
			&h.Completed, &h.CompletedAt, &h.CreatedAt)
		if err != nil {
			return nil, err
		}
		history = append(history, h)
	}

	return history, nil
}

// Redis session operations
func (d *Database) SetSession(ctx context.Context, userID, token string, expiration time.Duration) error {
	return d.Redis.Set(ctx, "session:"+token, userID, expiration).Err()
}

func (d *Database) GetSession(ctx context.Context, token string) (string, error) {
	return d.Redis.Get(ctx, "session:"+token).Result()
}

func (d *Database) DeleteSession(ctx context.Context, token string) error {
	return d.Redis.Del(ctx, "session:"+token).Err()
}
