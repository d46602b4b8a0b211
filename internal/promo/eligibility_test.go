package promo

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orbitlive/transit-notifier/internal/db"
)

func strPtr(s string) *string { return &s }

func testFilter(draw float64) *Filter {
	return &Filter{
		DailyCap:    3,
		Probability: 0.3,
		Draw:        func() float64 { return draw },
	}
}

func TestEligible_NoTokenIsIneligible(t *testing.T) {
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	counters := make(Counters)

	tests := []struct {
		name string
		user *db.User
	}{
		{"nil_token", &db.User{ID: uuid.New()}},
		{"empty_token", &db.User{ID: uuid.New(), PushToken: strPtr("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Draw of 0.0 would otherwise always pass the sampling check
			f := testFilter(0.0)
			if got := f.Eligible(tt.user, counters, day); got != SkipNoToken {
				t.Errorf("expected SkipNoToken, got %q", got)
			}
			if len(counters) != 0 {
				t.Errorf("filter must not mutate counters, got %v", counters)
			}
		})
	}
}

func TestEligible_DailyCapBeatsRandomDraw(t *testing.T) {
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	user := &db.User{ID: uuid.New(), PushToken: strPtr("tok")}

	counters := Counters{CounterKey(user.ID, day): 3}

	// Even a guaranteed-send draw must not override the cap
	f := testFilter(0.0)
	if got := f.Eligible(user, counters, day); got != SkipDailyCap {
		t.Errorf("expected SkipDailyCap, got %q", got)
	}
}

func TestEligible_UnderCapUsesSampling(t *testing.T) {
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	user := &db.User{ID: uuid.New(), PushToken: strPtr("tok")}

	tests := []struct {
		name  string
		count int
		draw  float64
		want  SkipReason
	}{
		{"zero_count_low_draw", 0, 0.1, SkipNone},
		{"zero_count_boundary_draw", 0, 0.3, SkipSampledOut},
		{"zero_count_high_draw", 0, 0.9, SkipSampledOut},
		{"two_count_low_draw", 2, 0.29, SkipNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counters := Counters{CounterKey(user.ID, day): tt.count}
			f := testFilter(tt.draw)
			if got := f.Eligible(user, counters, day); got != tt.want {
				t.Errorf("Eligible(count=%d, draw=%f) = %q, want %q", tt.count, tt.draw, got, tt.want)
			}
		})
	}
}

func TestCounterKey_SeparatesUsersAndDays(t *testing.T) {
	u1 := uuid.New()
	u2 := uuid.New()
	day1 := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)

	if CounterKey(u1, day1) == CounterKey(u2, day1) {
		t.Error("different users must have different keys")
	}
	if CounterKey(u1, day1) == CounterKey(u1, day2) {
		t.Error("different days must have different keys")
	}
	if CounterKey(u1, day1) != CounterKey(u1, day1.Add(-time.Hour)) {
		t.Error("same calendar day must share a key")
	}
}
