package metricshttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/Amazpen/amazpen-app-sub007/internal/metrics"
	"github.com/Amazpen/amazpen-app-sub007/internal/platform/httpx"
	"github.com/Amazpen/amazpen-app-sub007/jobs"
)

const (
	defaultRefreshTimeout = 20 * time.Second
	modeAsync             = "async"
)

// MetricsService defines the engine contract used by the handler.
type MetricsService interface {
	RefreshMetrics(ctx context.Context, businessID uuid.UUID, year, month int) (metrics.MetricsRow, error)
	GetMetrics(ctx context.Context, businessID uuid.UUID, year, month int) (metrics.MetricsRow, error)
	ListYear(ctx context.Context, businessID uuid.UUID, year int) ([]metrics.MetricsRow, error)
}

// RefreshEnqueuer submits asynchronous refresh tasks.
type RefreshEnqueuer interface {
	EnqueueMetricsRefresh(ctx context.Context, payload jobs.MetricsRefreshPayload, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Config tunes the refresh endpoint.
type Config struct {
	RefreshTimeout time.Duration
	RefreshLimit   int
	MaxRetry       int
}

// Handler serves the monthly metrics API.
type Handler struct {
	logger   *slog.Logger
	service  MetricsService
	enqueuer RefreshEnqueuer
	validate *validator.Validate
	cfg      Config
}

// NewHandler constructs the metrics HTTP handler. enqueuer may be nil, which disables async mode.
func NewHandler(logger *slog.Logger, service MetricsService, enqueuer RefreshEnqueuer, cfg Config) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = defaultRefreshTimeout
	}
	if cfg.RefreshLimit <= 0 {
		cfg.RefreshLimit = 10
	}
	return &Handler{
		logger:   logger,
		service:  service,
		enqueuer: enqueuer,
		validate: validator.New(),
		cfg:      cfg,
	}
}

type keyRequest struct {
	BusinessID string `validate:"required,uuid"`
	Year       int    `validate:"gte=2000,lte=2100"`
	Month      int    `validate:"gte=1,lte=12"`
}

type refreshAccepted struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

func (h *Handler) parseKey(r *http.Request, withMonth bool) (keyRequest, uuid.UUID, error) {
	req := keyRequest{BusinessID: chi.URLParam(r, "businessID"), Month: 1}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return keyRequest{}, uuid.Nil, fmt.Errorf("%w: year", httpx.ErrValidation)
	}
	req.Year = year
	if withMonth {
		month, err := strconv.Atoi(chi.URLParam(r, "month"))
		if err != nil {
			return keyRequest{}, uuid.Nil, fmt.Errorf("%w: month", httpx.ErrValidation)
		}
		req.Month = month
	}
	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return keyRequest{}, uuid.Nil, fmt.Errorf("%w: %s", httpx.ErrValidation, fieldErrs[0].Field())
		}
		return keyRequest{}, uuid.Nil, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		return keyRequest{}, uuid.Nil, fmt.Errorf("%w: business id", httpx.ErrValidation)
	}
	return req, businessID, nil
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	req, businessID, err := h.parseKey(r, true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if r.URL.Query().Get("mode") == modeAsync {
		h.enqueueRefresh(w, r, req)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RefreshTimeout)
	defer cancel()
	row, err := h.service.RefreshMetrics(ctx, businessID, req.Year, req.Month)
	if err != nil {
		h.respondServiceError(w, "refresh metrics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *Handler) enqueueRefresh(w http.ResponseWriter, r *http.Request, req keyRequest) {
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "async refresh is not configured")
		return
	}
	var opts []asynq.Option
	if h.cfg.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(h.cfg.MaxRetry))
	}
	info, err := h.enqueuer.EnqueueMetricsRefresh(r.Context(), jobs.MetricsRefreshPayload{
		BusinessID: req.BusinessID,
		Year:       req.Year,
		Month:      req.Month,
	}, opts...)
	if err != nil {
		h.logger.Error("enqueue metrics refresh", slog.String("business_id", req.BusinessID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	accepted := refreshAccepted{Queue: jobs.QueueDefault}
	if info != nil {
		accepted.TaskID = info.ID
		accepted.Queue = info.Queue
	}
	httpx.JSON(w, http.StatusAccepted, accepted)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, businessID, err := h.parseKey(r, true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	key := fmt.Sprintf("row:%s:%d:%d", businessID, req.Year, req.Month)
	val, err, _ := singleflightRead(r.Context(), key, func(ctx context.Context) (interface{}, error) {
		return h.service.GetMetrics(ctx, businessID, req.Year, req.Month)
	})
	if err != nil {
		h.respondServiceError(w, "get metrics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, val)
}

func (h *Handler) handleListYear(w http.ResponseWriter, r *http.Request) {
	req, businessID, err := h.parseKey(r, false)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	key := fmt.Sprintf("year:%s:%d", businessID, req.Year)
	val, err, _ := singleflightRead(r.Context(), key, func(ctx context.Context) (interface{}, error) {
		return h.service.ListYear(ctx, businessID, req.Year)
	})
	if err != nil {
		h.respondServiceError(w, "list metrics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, val)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	mapped := mapError(err)
	if !errors.Is(mapped, httpx.ErrValidation) && !errors.Is(mapped, httpx.ErrNotFound) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, mapped)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, metrics.ErrConfigurationMissing):
		return fmt.Errorf("%w: %v", httpx.ErrUnprocessable, err)
	case errors.Is(err, metrics.ErrInvalidPeriod), errors.Is(err, metrics.ErrInvalidBusiness):
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	case errors.Is(err, metrics.ErrMetricsNotFound):
		return fmt.Errorf("%w: %v", httpx.ErrNotFound, err)
	default:
		return err
	}
}
