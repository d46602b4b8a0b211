package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitlive/transit-notifier/internal/db"
	"github.com/orbitlive/transit-notifier/internal/metrics"
)

// Analytics is the slice of the analytics recorder the handlers need.
type Analytics interface {
	Opened(ctx context.Context, userID uuid.UUID, category string, at time.Time) error
	Summary(ctx context.Context, windowDays int) (map[string]db.CategorySummary, error)
}

// OpenRequest is the body of POST /v1/notifications/open.
type OpenRequest struct {
	UserID    string          `json:"user_id"`
	Category  string          `json:"category"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// Handler holds dependencies for API handlers.
type Handler struct {
	logger    *zap.Logger
	analytics Analytics
}

// NewHandler creates a new API handler.
func NewHandler(logger *zap.Logger, analytics Analytics) *Handler {
	return &Handler{
		logger:    logger,
		analytics: analytics,
	}
}

// TrackOpen handles POST /v1/notifications/open. Mobile clients call
// this when the user taps a notification; responses always carry HTTP
// 200 with success/error encoded in the body.
func (h *Handler) TrackOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(w, "malformed JSON body")
		return
	}

	if req.UserID == "" || req.Category == "" {
		h.writeFailure(w, "user_id and category are required")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.writeFailure(w, "user_id must be a valid UUID")
		return
	}

	openedAt, err := parseTimestamp(req.Timestamp)
	if err != nil {
		h.writeFailure(w, "timestamp must be RFC 3339 or epoch milliseconds")
		return
	}

	if err := h.analytics.Opened(ctx, userID, req.Category, openedAt); err != nil {
		h.logger.Error("failed to record notification open",
			zap.Error(err),
			zap.String("user_id", req.UserID),
			zap.String("category", req.Category),
		)
		metrics.RecordAnalyticsEvent("failure")
		h.writeFailure(w, "failed to record open")
		return
	}

	h.logger.Info("notification open recorded",
		zap.String("user_id", req.UserID),
		zap.String("category", req.Category),
	)
	metrics.RecordAnalyticsEvent("success")

	h.writeSuccess(w, nil)
}

// GetAnalytics handles GET /v1/analytics?days=30.
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		d, err := strconv.Atoi(daysStr)
		if err != nil || d <= 0 {
			h.writeFailure(w, "days must be a positive integer")
			return
		}
		days = d
	}

	summary, err := h.analytics.Summary(ctx, days)
	if err != nil {
		h.logger.Error("failed to load analytics summary", zap.Error(err))
		h.writeFailure(w, "failed to load analytics")
		return
	}

	h.writeSuccess(w, map[string]any{"analytics": summary})
}

// parseTimestamp accepts RFC 3339 strings or epoch milliseconds; an
// absent timestamp falls back to the server clock.
func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Now().UTC(), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return time.Parse(time.RFC3339, s)
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis).UTC(), nil
}

func (h *Handler) writeSuccess(w http.ResponseWriter, extra map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range extra {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// writeFailure reports an error in the body while keeping HTTP 200,
// matching what the mobile clients expect.
func (h *Handler) writeFailure(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg,
	})
}
