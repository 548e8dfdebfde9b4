package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/generator"
	"github.com/uniplanner/uniplanner-api/internal/models"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
)

type plannerTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

type plannerCourseLister interface {
	ListByTermWithSections(ctx context.Context, termID string) ([]models.Course, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// PlannerService runs the combination engine over a term's catalog and keeps
// generated result sets addressable for rescoring, pinning and export.
type PlannerService struct {
	terms     plannerTermReader
	courses   plannerCourseLister
	engine    *generator.Engine
	cache     scheduleCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	store     *resultStore
	cfg       PlannerConfig
}

// PlannerConfig governs planner behaviour.
type PlannerConfig struct {
	DefaultMaxResults int
	MaxResultsCeiling int
	ResultTTL         time.Duration
	CacheTTL          time.Duration
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	terms plannerTermReader,
	courses plannerCourseLister,
	engine *generator.Engine,
	cache scheduleCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = generator.New(generator.Config{})
	}
	if cfg.DefaultMaxResults <= 0 {
		cfg.DefaultMaxResults = generator.DefaultMaxResults
	}
	if cfg.MaxResultsCeiling <= 0 {
		cfg.MaxResultsCeiling = 5000
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &PlannerService{
		terms:     terms,
		courses:   courses,
		engine:    engine,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newResultStore(cfg.ResultTTL),
		cfg:       cfg,
	}
}

// Generate enumerates conflict-free schedules for the term and stores the
// ranked result set under a fresh identifier.
func (s *PlannerService) Generate(ctx context.Context, req dto.GenerateRequest) (*dto.GenerateResponse, error) {
	if req.Weights != nil {
		if err := s.validator.Struct(req.Weights); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "score weights must be between 0 and 100")
		}
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	term, err := s.terms.FindByID(ctx, req.TermID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}

	weights := models.DefaultScoreWeights()
	if req.Weights != nil {
		weights = req.Weights.ToModel()
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.DefaultMaxResults
	}
	if maxResults > s.cfg.MaxResultsCeiling {
		maxResults = s.cfg.MaxResultsCeiling
	}
	filters := req.Filters.ToModel()

	courses, err := s.courses.ListByTermWithSections(ctx, req.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term courses")
	}

	key := generationCacheKey(req.TermID, filters, weights, maxResults)

	var schedules []models.GeneratedSchedule
	var durationMs int64
	cached := false
	truncated := false
	if s.cache != nil {
		var payload cachedGeneration
		hit, cacheErr := s.cache.Get(ctx, key, &payload)
		if cacheErr != nil {
			s.logger.Warn("generation cache lookup failed", zap.String("key", key), zap.Error(cacheErr))
		}
		if hit {
			schedules = payload.Schedules
			truncated = payload.Truncated
			cached = true
		}
	}

	if !cached {
		start := time.Now()
		schedules, truncated = s.engine.Generate(courses, filters, weights, maxResults)
		elapsed := time.Since(start)
		durationMs = elapsed.Milliseconds()
		if s.metrics != nil {
			s.metrics.ObserveGeneration(elapsed, len(schedules))
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, cachedGeneration{Schedules: schedules, Truncated: truncated}, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("generation cache store failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	set := resultSet{
		ID:          uuid.NewString(),
		TermID:      term.ID,
		TermName:    term.Name,
		Weights:     weights,
		Schedules:   schedules,
		Courses:     courses,
		Truncated:   truncated,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(set)

	return &dto.GenerateResponse{
		ResultSetID: set.ID,
		TermID:      set.TermID,
		Total:       len(set.Schedules),
		Truncated:   set.Truncated,
		Cached:      cached,
		DurationMs:  durationMs,
		Schedules:   set.Schedules,
	}, nil
}

// Rescore re-ranks a stored result set under new weights without re-running
// the combination search. Pins and stats are preserved.
func (s *PlannerService) Rescore(ctx context.Context, req dto.RescoreRequest) (*dto.ResultSetResponse, error) {
	if err := s.validator.Struct(req.Weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "score weights must be between 0 and 100")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rescore payload")
	}
	set, ok := s.store.Get(req.ResultSetID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrResultSetExpired, "result set not found or expired")
	}

	weights := req.Weights.ToModel()
	set.Weights = weights
	set.Schedules = s.engine.Rescore(set.Schedules, weights)
	s.store.Save(set)

	return s.resultSetResponse(set), nil
}

// GetResultSet returns a page of a stored result set. A pageSize of zero
// returns the whole set.
func (s *PlannerService) GetResultSet(ctx context.Context, id string, page, pageSize int) (*dto.ResultSetResponse, *models.Pagination, error) {
	if id == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "result set id is required")
	}
	set, ok := s.store.Get(id)
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrResultSetExpired, "result set not found or expired")
	}

	resp := s.resultSetResponse(set)
	total := len(set.Schedules)
	if pageSize <= 0 {
		return resp, &models.Pagination{Page: 1, PageSize: total, TotalCount: total}, nil
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset >= total {
		resp.Schedules = []models.GeneratedSchedule{}
	} else {
		end := offset + pageSize
		if end > total {
			end = total
		}
		resp.Schedules = set.Schedules[offset:end]
	}
	return resp, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListResultSets returns summaries of the result sets still held in memory.
func (s *PlannerService) ListResultSets(ctx context.Context) ([]dto.ResultSetSummary, error) {
	sets := s.store.List()
	summaries := make([]dto.ResultSetSummary, 0, len(sets))
	for _, set := range sets {
		summaries = append(summaries, dto.ResultSetSummary{
			ResultSetID: set.ID,
			TermID:      set.TermID,
			TermName:    set.TermName,
			Total:       len(set.Schedules),
			Truncated:   set.Truncated,
			RequestedAt: set.RequestedAt,
		})
	}
	return summaries, nil
}

// ExpireResultSet drops a stored result set ahead of its TTL.
func (s *PlannerService) ExpireResultSet(ctx context.Context, id string) error {
	if _, ok := s.store.Get(id); !ok {
		return appErrors.Clone(appErrors.ErrResultSetExpired, "result set not found or expired")
	}
	s.store.Delete(id)
	return nil
}

// TogglePin flips the pin flag of one schedule in a stored result set.
func (s *PlannerService) TogglePin(ctx context.Context, resultSetID, scheduleID string) (*models.GeneratedSchedule, error) {
	set, ok := s.store.Get(resultSetID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrResultSetExpired, "result set not found or expired")
	}
	for i := range set.Schedules {
		if set.Schedules[i].ID == scheduleID {
			set.Schedules[i].Pinned = !set.Schedules[i].Pinned
			s.store.Save(set)
			schedule := set.Schedules[i]
			return &schedule, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found in result set")
}

// ScheduleDetail resolves one schedule plus the course snapshot it was
// generated from, for export rendering.
func (s *PlannerService) ScheduleDetail(ctx context.Context, resultSetID, scheduleID string) (models.GeneratedSchedule, []models.Course, string, error) {
	set, ok := s.store.Get(resultSetID)
	if !ok {
		return models.GeneratedSchedule{}, nil, "", appErrors.Clone(appErrors.ErrResultSetExpired, "result set not found or expired")
	}
	for _, schedule := range set.Schedules {
		if schedule.ID == scheduleID {
			return schedule, set.Courses, set.TermName, nil
		}
	}
	return models.GeneratedSchedule{}, nil, "", appErrors.Clone(appErrors.ErrNotFound, "schedule not found in result set")
}

func (s *PlannerService) resultSetResponse(set resultSet) *dto.ResultSetResponse {
	return &dto.ResultSetResponse{
		ResultSetID: set.ID,
		TermID:      set.TermID,
		Total:       len(set.Schedules),
		Truncated:   set.Truncated,
		Schedules:   set.Schedules,
	}
}

type cachedGeneration struct {
	Schedules []models.GeneratedSchedule `json:"schedules"`
	Truncated bool                       `json:"truncated"`
}

func generationCacheKey(termID string, filters models.ScheduleFilters, weights models.ScoreWeights, maxResults int) string {
	payload, _ := json.Marshal(struct {
		TermID     string                 `json:"termId"`
		Filters    models.ScheduleFilters `json:"filters"`
		Weights    models.ScoreWeights    `json:"weights"`
		MaxResults int                    `json:"maxResults"`
	}{termID, filters, weights, maxResults})
	sum := sha256.Sum256(payload)
	return "planner:generate:" + hex.EncodeToString(sum[:])
}

// --- Result set cache ---

type resultSet struct {
	ID          string
	TermID      string
	TermName    string
	Weights     models.ScoreWeights
	Schedules   []models.GeneratedSchedule
	Courses     []models.Course
	Truncated   bool
	RequestedAt time.Time
}

type resultStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]resultSet
}

func newResultStore(ttl time.Duration) *resultStore {
	return &resultStore{
		ttl:   ttl,
		items: make(map[string]resultSet),
	}
}

func (s *resultStore) Save(set resultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set.RequestedAt.IsZero() {
		set.RequestedAt = time.Now().UTC()
	}
	s.items[set.ID] = set
}

func (s *resultStore) Get(id string) (resultSet, bool) {
	s.mu.RLock()
	set, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return resultSet{}, false
	}
	if time.Since(set.RequestedAt) > s.ttl {
		s.Delete(id)
		return resultSet{}, false
	}
	// Every caller gets its own schedule slice. A pin flip on one copy
	// must never reach pages already handed out to concurrent readers.
	schedules := make([]models.GeneratedSchedule, len(set.Schedules))
	copy(schedules, set.Schedules)
	set.Schedules = schedules
	return set, true
}

func (s *resultStore) List() []resultSet {
	s.mu.RLock()
	sets := make([]resultSet, 0, len(s.items))
	for _, set := range s.items {
		if time.Since(set.RequestedAt) > s.ttl {
			continue
		}
		sets = append(sets, set)
	}
	s.mu.RUnlock()
	sort.Slice(sets, func(i, j int) bool { return sets[i].RequestedAt.After(sets[j].RequestedAt) })
	return sets
}

func (s *resultStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
