package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"leadengine_backend/internal/adapters/storage"
	"leadengine_backend/internal/leads/domain"
	"leadengine_backend/internal/leads/forecast"
	"leadengine_backend/internal/leads/repository"
	"leadengine_backend/internal/leads/scoring"
	"leadengine_backend/internal/leads/transport"
	"leadengine_backend/platform/apperr"
	"leadengine_backend/platform/httpkit"
	"leadengine_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	defaultForecastHistory = 20
)

// ScoreRunner is the lead scoring entry point.
type ScoreRunner interface {
	Run(ctx context.Context, opts scoring.RunOptions) (scoring.ScoreRunSummary, error)
	ScoreLead(ctx context.Context, leadID uuid.UUID, enabled bool) (scoring.Result, error)
}

// ForecastRunner is the forecast entry point.
type ForecastRunner interface {
	Run(ctx context.Context, opts forecast.RunOptions) (forecast.ForecastRunSummary, error)
}

// EnableFlag resolves and stores the engine enable flag.
type EnableFlag interface {
	ScoringEnabled(ctx context.Context) bool
	SetScoringEnabled(ctx context.Context, enabled bool) error
}

// ScoreTaskEnqueuer queues a scoring run for the background worker.
type ScoreTaskEnqueuer interface {
	EnqueueLeadScoring(ctx context.Context, leadIDs []uuid.UUID) (string, error)
}

// ArchiveLinker signs download links for archived forecast runs.
type ArchiveLinker interface {
	DownloadURL(ctx context.Context, object string) (*storage.PresignedURL, error)
}

// ResultReader reads persisted engine output.
type ResultReader interface {
	repository.ScoreReader
	repository.PredictionReader
	repository.ForecastReader
	repository.MetricsReader
}

type Handler struct {
	scores    ScoreRunner
	forecasts ForecastRunner
	flag      EnableFlag
	reader    ResultReader
	enqueuer  ScoreTaskEnqueuer
	archive   ArchiveLinker
	val       *validator.Validator
}

// New creates the handler. enqueuer may be nil when no task queue is
// configured; async runs then answer 503.
func New(scores ScoreRunner, forecasts ForecastRunner, flag EnableFlag, reader ResultReader, enqueuer ScoreTaskEnqueuer, val *validator.Validator) *Handler {
	return &Handler{
		scores:    scores,
		forecasts: forecasts,
		flag:      flag,
		reader:    reader,
		enqueuer:  enqueuer,
		val:       val,
	}
}

// SetEnqueuer enables async scoring runs.
func (h *Handler) SetEnqueuer(enqueuer ScoreTaskEnqueuer) {
	h.enqueuer = enqueuer
}

// SetArchiveLinker enables GET /forecasts/archive-url.
func (h *Handler) SetArchiveLinker(archive ArchiveLinker) {
	h.archive = archive
}

// RegisterRoutes mounts read routes on protected and run/settings routes
// on admin. runLimit wraps every route that starts a batch.
func (h *Handler) RegisterRoutes(protected, admin *gin.RouterGroup, runLimit gin.HandlerFunc) {
	protected.GET("/lead-scores/:leadId", h.GetLeadScore)
	protected.GET("/lead-predictions/:leadId", h.GetLeadPrediction)
	protected.GET("/lead-scoring/metrics", h.GetScoreMetrics)
	protected.GET("/lead-scoring/settings", h.GetSettings)
	protected.GET("/forecasts/latest", h.GetLatestForecast)
	protected.GET("/forecasts", h.ListForecasts)

	admin.PUT("/lead-scoring/settings", h.UpdateSettings)
	admin.GET("/forecasts/archive-url", h.GetArchiveURL)
	admin.POST("/lead-scoring/runs", runLimit, h.RunScoring)
	admin.POST("/lead-scoring/runs/async", runLimit, h.EnqueueScoring)
	admin.POST("/lead-scores/:leadId/recalculate", runLimit, h.RecalculateLead)
	admin.POST("/forecasts/runs", runLimit, h.RunForecast)
}

func (h *Handler) RunScoring(c *gin.Context) {
	ids, ok := h.bindLeadIDs(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	summary, err := h.scores.Run(ctx, scoring.RunOptions{LeadIDs: ids, Enabled: h.flag.ScoringEnabled(ctx)})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

func (h *Handler) EnqueueScoring(c *gin.Context) {
	if h.enqueuer == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "task queue not configured", nil)
		return
	}
	ids, ok := h.bindLeadIDs(c)
	if !ok {
		return
	}

	taskID, err := h.enqueuer.EnqueueLeadScoring(c.Request.Context(), ids)
	if err != nil {
		httpkit.HandleError(c, apperr.Unavailable("failed to enqueue scoring run", err))
		return
	}
	httpkit.JSON(c, http.StatusAccepted, transport.EnqueueRunResponse{TaskID: taskID})
}

func (h *Handler) RecalculateLead(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := h.scores.ScoreLead(ctx, leadID, h.flag.ScoringEnabled(ctx))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) RunForecast(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.forecasts.Run(ctx, forecast.RunOptions{Enabled: h.flag.ScoringEnabled(ctx)})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summary)
}

func (h *Handler) GetLeadScore(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	score, err := h.reader.GetLeadScore(c.Request.Context(), leadID)
	if httpkit.HandleError(c, mapReadError(err, "lead score not found")) {
		return
	}
	httpkit.OK(c, transport.ToLeadScoreResponse(score))
}

func (h *Handler) GetLeadPrediction(c *gin.Context) {
	leadID, ok := parseLeadID(c)
	if !ok {
		return
	}

	prediction, err := h.reader.GetLeadPrediction(c.Request.Context(), leadID)
	if httpkit.HandleError(c, mapReadError(err, "lead prediction not found")) {
		return
	}
	httpkit.OK(c, transport.ToLeadPredictionResponse(prediction))
}

func (h *Handler) GetLatestForecast(c *gin.Context) {
	latest, err := h.reader.GetLatestPipelineForecast(c.Request.Context())
	if httpkit.HandleError(c, mapReadError(err, "no forecast generated yet")) {
		return
	}
	httpkit.OK(c, transport.ToPipelineForecastResponse(latest))
}

func (h *Handler) ListForecasts(c *gin.Context) {
	var query transport.ListForecastsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultForecastHistory
	}

	items, err := h.reader.ListPipelineForecasts(c.Request.Context(), query.Limit)
	if httpkit.HandleError(c, mapReadError(err, "")) {
		return
	}

	resp := transport.PipelineForecastListResponse{Items: make([]transport.PipelineForecastResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, transport.ToPipelineForecastResponse(item))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetArchiveURL(c *gin.Context) {
	if h.archive == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "forecast archive not configured", nil)
		return
	}
	var query transport.ArchiveLinkQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	link, err := h.archive.DownloadURL(c.Request.Context(), query.Object)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, link)
}

func (h *Handler) GetScoreMetrics(c *gin.Context) {
	metrics, err := h.reader.GetScoreMetrics(c.Request.Context(), domain.HotLeadScore)
	if httpkit.HandleError(c, mapReadError(err, "")) {
		return
	}
	httpkit.OK(c, transport.ScoreMetricsResponse{
		ActiveLeads:         metrics.ActiveLeads,
		ScoredLeads:         metrics.ScoredLeads,
		HotLeads:            metrics.HotLeads,
		AverageOverallScore: metrics.AverageOverallScore,
	})
}

func (h *Handler) GetSettings(c *gin.Context) {
	httpkit.OK(c, transport.EngineSettingsResponse{ScoringEnabled: h.flag.ScoringEnabled(c.Request.Context())})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req transport.UpdateEngineSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	if httpkit.HandleError(c, h.flag.SetScoringEnabled(c.Request.Context(), *req.ScoringEnabled)) {
		return
	}
	httpkit.OK(c, transport.EngineSettingsResponse{ScoringEnabled: *req.ScoringEnabled})
}

// bindLeadIDs accepts an empty body as "all active leads".
func (h *Handler) bindLeadIDs(c *gin.Context) ([]uuid.UUID, bool) {
	var req transport.RunScoringRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return nil, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return nil, false
	}

	ids := make([]uuid.UUID, 0, len(req.LeadIDs))
	for _, raw := range req.LeadIDs {
		ids = append(ids, uuid.MustParse(raw))
	}
	return ids, true
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest))
		return uuid.Nil, false
	}
	return id, true
}

func mapReadError(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) && notFoundMessage != "" {
		return apperr.NotFound(notFoundMessage)
	}
	return apperr.Unavailable("failed to read engine results", err)
}
