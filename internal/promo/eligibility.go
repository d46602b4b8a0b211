package promo

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orbitlive/transit-notifier/internal/db"
)

// Counters tracks notifications sent per (user, day) within a single
// dispatch pass. It lives for one run only; overlapping or subsequent
// runs do not share this state.
type Counters map[string]int

// CounterKey builds the per-user-per-day key. The day is the calendar
// date at the dispatch pass's local clock.
func CounterKey(userID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s_%s", userID, day.Format("2006-01-02"))
}

// Filter decides whether a user receives anything this pass.
type Filter struct {
	DailyCap    int
	Probability float64        // chance of sending to an under-cap user
	Draw        func() float64 // uniform sample in [0,1)
}

// SkipReason explains why a user was passed over.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipNoToken    SkipReason = "no_token"
	SkipDailyCap   SkipReason = "daily_cap"
	SkipSampledOut SkipReason = "sampled_out"
)

// Eligible decides whether the user gets a notification this pass. It
// reads the counters but never writes them; the dispatch loop increments
// after a successful send. Users without a push token are ineligible
// before any counter or random check.
func (f *Filter) Eligible(user *db.User, counters Counters, day time.Time) SkipReason {
	if !user.HasPushToken() {
		return SkipNoToken
	}

	if counters[CounterKey(user.ID, day)] >= f.DailyCap {
		return SkipDailyCap
	}

	if f.Draw() >= f.Probability {
		return SkipSampledOut
	}

	return SkipNone
}
