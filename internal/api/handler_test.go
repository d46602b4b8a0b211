package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitlive/transit-notifier/internal/db"
)

type mockAnalytics struct {
	openedUser     uuid.UUID
	openedCategory string
	openedAt       time.Time
	openedErr      error
	openedCalls    int

	summary     map[string]db.CategorySummary
	summaryDays int
	summaryErr  error
}

func (m *mockAnalytics) Opened(_ context.Context, userID uuid.UUID, category string, at time.Time) error {
	m.openedCalls++
	if m.openedErr != nil {
		return m.openedErr
	}
	m.openedUser = userID
	m.openedCategory = category
	m.openedAt = at
	return nil
}

func (m *mockAnalytics) Summary(_ context.Context, windowDays int) (map[string]db.CategorySummary, error) {
	m.summaryDays = windowDays
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return m.summary, nil
}

type envelope struct {
	Success   bool                          `json:"success"`
	Error     string                        `json:"error"`
	Analytics map[string]db.CategorySummary `json:"analytics"`
}

func doTrackOpen(t *testing.T, analytics *mockAnalytics, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	h := NewHandler(zap.NewNop(), analytics)

	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/open", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.TrackOpen(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w, env
}

func TestTrackOpenRFC3339Timestamp(t *testing.T) {
	analytics := &mockAnalytics{}
	userID := uuid.New()

	w, env := doTrackOpen(t, analytics, `{
		"user_id": "`+userID.String()+`",
		"category": "discount",
		"timestamp": "2026-08-01T10:30:00Z"
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if analytics.openedUser != userID || analytics.openedCategory != "discount" {
		t.Errorf("recorded %s/%s", analytics.openedUser, analytics.openedCategory)
	}
	want := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	if !analytics.openedAt.Equal(want) {
		t.Errorf("recorded at %v, want %v", analytics.openedAt, want)
	}
}

func TestTrackOpenEpochMillisTimestamp(t *testing.T) {
	analytics := &mockAnalytics{}
	userID := uuid.New()

	_, env := doTrackOpen(t, analytics, `{
		"user_id": "`+userID.String()+`",
		"category": "reminder",
		"timestamp": 1754044200000
	}`)

	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	want := time.UnixMilli(1754044200000).UTC()
	if !analytics.openedAt.Equal(want) {
		t.Errorf("recorded at %v, want %v", analytics.openedAt, want)
	}
}

func TestTrackOpenMissingTimestampUsesServerClock(t *testing.T) {
	analytics := &mockAnalytics{}
	before := time.Now().UTC()

	_, env := doTrackOpen(t, analytics, `{
		"user_id": "`+uuid.NewString()+`",
		"category": "travel_tip"
	}`)

	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if analytics.openedAt.Before(before) || analytics.openedAt.After(time.Now().UTC()) {
		t.Errorf("server-stamped time %v out of range", analytics.openedAt)
	}
}

func TestTrackOpenValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"missing user_id", `{"category": "discount"}`},
		{"missing category", `{"user_id": "` + uuid.NewString() + `"}`},
		{"bad uuid", `{"user_id": "not-a-uuid", "category": "discount"}`},
		{"bad timestamp", `{"user_id": "` + uuid.NewString() + `", "category": "discount", "timestamp": "yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analytics := &mockAnalytics{}
			w, env := doTrackOpen(t, analytics, tt.body)

			if w.Code != http.StatusOK {
				t.Errorf("status %d, want 200 even on errors", w.Code)
			}
			if env.Success {
				t.Errorf("expected failure envelope")
			}
			if env.Error == "" {
				t.Errorf("expected error message in body")
			}
			if analytics.openedCalls != 0 {
				t.Errorf("invalid request must not reach the recorder")
			}
		})
	}
}

func TestTrackOpenRecorderFailure(t *testing.T) {
	analytics := &mockAnalytics{openedErr: errors.New("connection refused")}

	w, env := doTrackOpen(t, analytics, `{
		"user_id": "`+uuid.NewString()+`",
		"category": "discount"
	}`)

	if w.Code != http.StatusOK {
		t.Errorf("status %d, want 200", w.Code)
	}
	if env.Success {
		t.Errorf("expected failure envelope")
	}
}

func TestGetAnalytics(t *testing.T) {
	analytics := &mockAnalytics{
		summary: map[string]db.CategorySummary{
			"discount": {Delivered: 12, Opened: 4},
			"reminder": {Delivered: 7, Opened: 7},
		},
	}
	h := NewHandler(zap.NewNop(), analytics)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics?days=7", nil)
	w := httptest.NewRecorder()
	h.GetAnalytics(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if analytics.summaryDays != 7 {
		t.Errorf("window %d days, want 7", analytics.summaryDays)
	}
	if got := env.Analytics["discount"]; got.Delivered != 12 || got.Opened != 4 {
		t.Errorf("discount summary %+v", got)
	}
}

func TestGetAnalyticsDefaultWindow(t *testing.T) {
	analytics := &mockAnalytics{summary: map[string]db.CategorySummary{}}
	h := NewHandler(zap.NewNop(), analytics)

	req := httptest.NewRequest(http.MethodGet, "/v1/analytics", nil)
	w := httptest.NewRecorder()
	h.GetAnalytics(w, req)

	if analytics.summaryDays != 0 {
		t.Errorf("expected zero days passed through so the recorder applies its default, got %d", analytics.summaryDays)
	}
}

func TestGetAnalyticsBadDays(t *testing.T) {
	analytics := &mockAnalytics{}
	h := NewHandler(zap.NewNop(), analytics)

	for _, days := range []string{"-1", "0", "soon"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/analytics?days="+days, nil)
		w := httptest.NewRecorder()
		h.GetAnalytics(w, req)

		var env envelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if env.Success {
			t.Errorf("days=%s should be rejected", days)
		}
	}
}
