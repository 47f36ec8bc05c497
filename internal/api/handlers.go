package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/xwordcore/autofill/internal/auth"
	"github.com/xwordcore/autofill/internal/db"
	"github.com/xwordcore/autofill/internal/middleware"
	"github.com/xwordcore/autofill/internal/models"
	"github.com/xwordcore/autofill/internal/realtime"
	"github.com/xwordcore/autofill/pkg/bank"
	"github.com/xwordcore/autofill/pkg/fill"
	"github.com/xwordcore/autofill/pkg/grid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handlers struct {
	db          *db.Database
	authService *auth.AuthService
	hub         HubInterface
}

// HubInterface is the fill-progress broadcast surface internal/realtime
// provides to the API: one event stream per async job ID.
type HubInterface interface {
	PublishFillEvent(jobID string, event realtime.FillEvent)
	CloseJobTopic(jobID string)
}

func NewHandlers(database *db.Database, authService *auth.AuthService) *Handlers {
	return &Handlers{
		db:          database,
		authService: authService,
		hub:         nil, // Will be set via SetHub
	}
}

// SetHub sets the fill-progress hub used to stream async job events.
func (h *Handlers) SetHub(hub HubInterface) {
	h.hub = hub
}

// Auth Handlers

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existingUser, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if existingUser != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hashedPassword, err := h.authService.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := &models.User{
		ID:          uuid.New().String(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    hashedPassword,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.db.CreateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Email, user.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: *user, Token: token})
}

func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !h.authService.CheckPassword(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID, user.Email, user.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: *user, Token: token})
}

// User Handlers

func (h *Handlers) GetMe(c *gin.Context) {
	claims := middleware.GetAuthUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user, err := h.db.GetUserByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handlers) GetMyStats(c *gin.Context) {
	claims := middleware.GetAuthUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	stats, err := h.db.GetUserStats(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if stats == nil {
		stats = &models.UserStats{UserID: claims.UserID}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handlers) GetMyHistory(c *gin.Context) {
	claims := middleware.GetAuthUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	history, err := h.db.GetUserPuzzleHistory(claims.UserID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *Handlers) SavePuzzleHistory(c *gin.Context) {
	claims := middleware.GetAuthUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		PuzzleID  string `json:"puzzleId" binding:"required"`
		SolveTime int    `json:"solveTime" binding:"required"`
		Completed bool   `json:"completed"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	puzzle, err := h.db.GetPuzzleByID(req.PuzzleID)
	if err != nil || puzzle == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "puzzle not found"})
		return
	}

	now := time.Now()
	history := &models.PuzzleHistory{
		ID:          uuid.New().String(),
		UserID:      claims.UserID,
		PuzzleID:    req.PuzzleID,
		SolveTime:   req.SolveTime,
		Completed:   req.Completed,
		CompletedAt: &now,
		CreatedAt:   now,
	}

	if err := h.db.CreatePuzzleHistory(history); err != nil {
		log.Printf("failed to save puzzle history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save history"})
		return
	}

	if req.Completed {
		h.updateUserStatsAfterPuzzle(claims.UserID, req.SolveTime)
	}

	c.JSON(http.StatusCreated, history)
}

// updateUserStatsAfterPuzzle rolls a completed puzzle solve into a user's
// running average solve time.
func (h *Handlers) updateUserStatsAfterPuzzle(userID string, solveTime int) {
	stats, err := h.db.GetUserStats(userID)
	if err != nil {
		log.Printf("error getting user stats for %s: %v", userID, err)
		return
	}
	if stats == nil {
		stats = &models.UserStats{UserID: userID}
	}

	stats.PuzzlesSolved++
	totalTime := stats.AvgSolveTime * float64(stats.PuzzlesSolved-1)
	stats.AvgSolveTime = (totalTime + float64(solveTime)) / float64(stats.PuzzlesSolved)
	now := time.Now()
	stats.LastPlayedAt = &now

	if err := h.db.UpdateUserStats(stats); err != nil {
		log.Printf("error updating user stats for %s: %v", userID, err)
	}
}

// Bank Handlers

type RegisterBankRequest struct {
	Words       []string `json:"words" binding:"required,min=1"`
	RegistryCap int      `json:"registryCap"`
}

func (h *Handlers) RegisterBank(c *gin.Context) {
	claims := middleware.GetAuthUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req RegisterBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registryCap := req.RegistryCap
	if registryCap < 2 {
		registryCap = bank.DefaultRegistryCap
	}

	fingerprint := bank.Fingerprint(req.Words, registryCap)

	ctx := c.Request.Context()
	if existing, err := h.db.GetBankRecordByFingerprint(fingerprint); err == nil && existing != nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	items := make([]bank.Item, len(req.Words))
	for i, w := range req.Words {
		items[i] = bank.Item{Word: w}
	}

	b, err := bank.New(items, registryCap)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blob, err := bank.Encode(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode bank"})
		return
	}
	if err := h.db.CacheBankBlob(ctx, fingerprint, blob); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cache bank"})
		return
	}

	record := &models.BankRecord{
		ID:          uuid.New().String(),
		OwnerID:     claims.UserID,
		Fingerprint: fingerprint,
		RegistryCap: registryCap,
		WordCount:   b.Len(),
		CreatedAt:   time.Now(),
	}
	if err := h.db.CreateBankRecord(record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist bank record"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *Handlers) GetBank(c *gin.Context) {
	id := c.Param("id")
	record, err := h.db.GetBankRecordByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bank not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// loadBank resolves a bank record to a live *bank.Bank by fetching its
// encoded blob from the Redis cache (spec.md §6, always present since
// RegisterBank caches with no expiration).
func (h *Handlers) loadBank(ctx context.Context, bankID string) (*bank.Bank, error) {
	record, err := h.db.GetBankRecordByID(bankID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("bank %s not found", bankID)
	}

	blob, err := h.db.GetCachedBankBlob(ctx, record.Fingerprint)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, fmt.Errorf("bank %s cache blob missing", bankID)
	}
	return bank.Decode(blob)
}

// Fill Handlers

type FillRequest struct {
	BankID            string `json:"bankId" binding:"required"`
	Layout            string `json:"layout" binding:"required"`
	Rows              int    `json:"rows" binding:"required"`
	Cols              int    `json:"cols" binding:"required"`
	AllComplete       bool   `json:"allComplete"`
	Async             bool   `json:"async"`
	NodeThreshold     *int   `json:"nodeThreshold"`
	DurationThreshold *int   `json:"durationThresholdMs"`
}

type FillResponse struct {
	JobID     string `json:"jobId,omitempty"`
	Status    string `json:"status"`
	Result    string `json:"result,omitempty"`
	NodeCount int    `json:"nodeCount"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// defaultSyncDeadline bounds a synchronous fill request so a pathological
// grid/bank pairing cannot hang the request goroutine forever.
const defaultSyncDeadline = 10 * time.Second

func (h *Handlers) SubmitFill(c *gin.Context) {
	claims := middleware.GetAuthUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req FillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := grid.Parse(req.Layout, req.Rows, req.Cols)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid layout: " + err.Error()})
		return
	}

	if req.Async {
		h.submitAsyncFill(c, claims.UserID, req, g)
		return
	}
	h.submitSyncFill(c, req, g)
}

func thresholds(req FillRequest) (*int, *time.Duration) {
	var duration *time.Duration
	if req.DurationThreshold != nil {
		d := time.Duration(*req.DurationThreshold) * time.Millisecond
		duration = &d
	} else {
		d := defaultSyncDeadline
		duration = &d
	}
	return req.NodeThreshold, duration
}

func (h *Handlers) submitSyncFill(c *gin.Context, req FillRequest, g *grid.Grid) {
	b, err := h.loadBank(c.Request.Context(), req.BankID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	filler := fill.New(b, nil)
	state := fill.FromGrid(g)
	nodeThreshold, durationThreshold := thresholds(req)

	if req.AllComplete {
		solutions, result := filler.FillAllComplete(state, nodeThreshold, durationThreshold)
		renders := make([]string, len(solutions))
		for i, s := range solutions {
			renders[i] = s.Render(g)
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "done",
			"results":   renders,
			"nodeCount": result.NodeCount,
			"elapsedMs": result.Elapsed.Milliseconds(),
		})
		return
	}

	solution, result := filler.FillFirstComplete(state, nodeThreshold, durationThreshold)
	resp := FillResponse{
		Status:    "done",
		NodeCount: result.NodeCount,
		ElapsedMs: result.Elapsed.Milliseconds(),
	}
	if solution == nil {
		resp.Status = "unsolved"
	} else {
		resp.Result = solution.Render(g)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) submitAsyncFill(c *gin.Context, ownerID string, req FillRequest, g *grid.Grid) {
	job := &models.FillJob{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		BankID:    req.BankID,
		Layout:    req.Layout,
		Rows:      req.Rows,
		Cols:      req.Cols,
		Status:    models.FillJobPending,
		CreatedAt: time.Now(),
	}
	if err := h.db.CreateFillJob(job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	go h.runAsyncFill(job.ID, req, g)

	c.JSON(http.StatusAccepted, FillResponse{JobID: job.ID, Status: string(models.FillJobPending)})
}

// runAsyncFill executes a fill job in the background, attaching a tracer
// that streams progress events (spec.md §5) if a hub is wired, and
// persisting the outcome when done.
func (h *Handlers) runAsyncFill(jobID string, req FillRequest, g *grid.Grid) {
	ctx := context.Background()
	if err := h.db.UpdateFillJobStatus(jobID, models.FillJobRunning); err != nil {
		log.Printf("fill job %s: failed to mark running: %v", jobID, err)
	}

	b, err := h.loadBank(ctx, req.BankID)
	if err != nil {
		h.failFillJob(jobID, err.Error(), 0)
		return
	}

	filler := fill.New(b, nil)
	if h.hub != nil {
		visited := 0
		filler.Tracer = func(state *fill.FillState) {
			visited++
			h.hub.PublishFillEvent(jobID, realtime.FillEvent{
				NodeCount:      visited,
				BestIncomplete: state.Render(g),
			})
		}
	}

	state := fill.FromGrid(g)
	nodeThreshold, durationThreshold := thresholds(req)
	solution, result := filler.FillFirstComplete(state, nodeThreshold, durationThreshold)

	if h.hub != nil {
		h.hub.PublishFillEvent(jobID, realtime.FillEvent{NodeCount: result.NodeCount, Done: true})
		h.hub.CloseJobTopic(jobID)
	}

	if solution == nil {
		h.failFillJob(jobID, "no solution found within budget", result.NodeCount)
		return
	}

	if err := h.db.UpdateFillJobResult(jobID, solution.Render(g), result.NodeCount, time.Now()); err != nil {
		log.Printf("fill job %s: failed to persist result: %v", jobID, err)
	}
}

func (h *Handlers) failFillJob(jobID, reason string, nodeCount int) {
	if err := h.db.UpdateFillJobFailure(jobID, reason, nodeCount, time.Now()); err != nil {
		log.Printf("fill job %s: failed to persist failure: %v", jobID, err)
	}
}

func (h *Handlers) GetFillJob(c *gin.Context) {
	id := c.Param("id")
	job, err := h.db.GetFillJobByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// Puzzle Handlers

func (h *Handlers) GetPuzzle(c *gin.Context) {
	id := c.Param("id")
	puzzle, err := h.db.GetPuzzleByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if puzzle == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "puzzle not found"})
		return
	}
	c.JSON(http.StatusOK, puzzle)
}

func (h *Handlers) GetPuzzleArchive(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	difficulty := c.Query("difficulty")

	total, err := h.db.GetPuzzleArchiveCount(difficulty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	puzzles, err := h.db.GetPuzzleArchive("published", limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"puzzles": puzzles,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
