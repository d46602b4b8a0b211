package promo

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitlive/transit-notifier/internal/db"
	"github.com/orbitlive/transit-notifier/internal/metrics"
	"github.com/orbitlive/transit-notifier/internal/push"
)

// Repository is the subset of database operations the dispatch pass needs.
type Repository interface {
	ListUsers(ctx context.Context) ([]*db.User, error)
	ClearPushToken(ctx context.Context, userID uuid.UUID) error
}

// Recorder receives one delivery event per successful send.
type Recorder interface {
	Delivered(ctx context.Context, userID uuid.UUID, category string) error
}

type Config struct {
	Interval        time.Duration
	WindowStartHour int // local hour, inclusive
	WindowEndHour   int // local hour, exclusive
	Location        *time.Location
	BatchSize       int
	BatchPause      time.Duration
	DailyCap        int
	SendProbability float64
}

// Dispatcher runs the time-triggered promotional pass.
type Dispatcher struct {
	repo     Repository
	sender   push.Sender
	recorder Recorder
	catalog  Catalog
	filter   *Filter
	config   Config
	logger   *zap.Logger
	now      func() time.Time
	rng      *rand.Rand
}

func New(repo Repository, sender push.Sender, recorder Recorder, cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.WindowEndHour == 0 {
		cfg.WindowStartHour = 9
		cfg.WindowEndHour = 21
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchPause == 0 {
		cfg.BatchPause = 1 * time.Second
	}
	if cfg.DailyCap == 0 {
		cfg.DailyCap = 3
	}
	if cfg.SendProbability == 0 {
		cfg.SendProbability = 0.3
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return &Dispatcher{
		repo:     repo,
		sender:   sender,
		recorder: recorder,
		catalog:  DefaultCatalog(),
		filter: &Filter{
			DailyCap:    cfg.DailyCap,
			Probability: cfg.SendProbability,
			Draw:        rng.Float64,
		},
		config: cfg,
		logger: logger,
		now:    time.Now,
		rng:    rng,
	}
}

// Start runs passes on the configured interval until ctx is cancelled.
// Ticks outside the daily active window are skipped.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	d.logger.Info("promotional dispatcher started",
		zap.Duration("interval", d.config.Interval),
		zap.Int("window_start_hour", d.config.WindowStartHour),
		zap.Int("window_end_hour", d.config.WindowEndHour),
		zap.String("timezone", d.config.Location.String()),
	)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("promotional dispatcher stopping")
			return
		case <-ticker.C:
			now := d.now().In(d.config.Location)
			if !d.withinWindow(now) {
				d.logger.Debug("outside active window, skipping pass",
					zap.Int("hour", now.Hour()),
				)
				continue
			}
			if err := d.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("promotional pass failed", zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) withinWindow(t time.Time) bool {
	h := t.Hour()
	return h >= d.config.WindowStartHour && h < d.config.WindowEndHour
}

// RunOnce executes one full pass over all users. Eligibility counters are
// scoped to this call; a single user's failure never stops the pass.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	users, err := d.repo.ListUsers(ctx)
	if err != nil {
		return err
	}

	counters := make(Counters)
	sent := 0

	for start := 0; start < len(users); start += d.config.BatchSize {
		end := start + d.config.BatchSize
		if end > len(users) {
			end = len(users)
		}

		for _, user := range users[start:end] {
			if d.processUser(ctx, user, counters) {
				sent++
			}
		}

		// Fixed pause between batches to stay under the push provider's
		// rate limits. Not applied after the final batch.
		if end < len(users) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.config.BatchPause):
			}
		}
	}

	d.logger.Info("promotional pass completed",
		zap.Int("users", len(users)),
		zap.Int("sent", sent),
	)

	return nil
}

// processUser decides, sends and records for one user. Returns true when
// a notification was delivered.
func (d *Dispatcher) processUser(ctx context.Context, user *db.User, counters Counters) bool {
	day := d.now().In(d.config.Location)

	if reason := d.filter.Eligible(user, counters, day); reason != SkipNone {
		metrics.RecordPromoSkipped(string(reason))
		d.logger.Debug("user skipped",
			zap.String("user_id", user.ID.String()),
			zap.String("reason", string(reason)),
		)
		return false
	}

	tmpl := d.catalog.Pick(d.rng)

	firstName := ""
	if user.FirstName != nil {
		firstName = *user.FirstName
	}
	title, body := Personalize(tmpl, firstName)

	msg := push.Message{
		Token: *user.PushToken,
		Title: title,
		Body:  body,
		Data: map[string]string{
			"click_action": "FLUTTER_NOTIFICATION_CLICK",
			"screen":       ScreenForCategory(tmpl.Category),
			"category":     tmpl.Category,
		},
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		metrics.RecordPromoSendFailure()

		if errors.Is(err, push.ErrInvalidToken) {
			if clearErr := d.repo.ClearPushToken(ctx, user.ID); clearErr != nil {
				d.logger.Error("failed to clear invalid push token",
					zap.Error(clearErr),
					zap.String("user_id", user.ID.String()),
				)
			} else {
				metrics.RecordPushTokenRemoved()
				d.logger.Info("cleared invalid push token",
					zap.String("user_id", user.ID.String()),
				)
			}
			return false
		}

		d.logger.Error("push send failed",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
			zap.String("category", tmpl.Category),
		)
		return false
	}

	counters[CounterKey(user.ID, day)]++

	if err := d.recorder.Delivered(ctx, user.ID, tmpl.Category); err != nil {
		d.logger.Error("failed to record delivery",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
			zap.String("category", tmpl.Category),
		)
	}

	metrics.RecordPromoSent(tmpl.Category)
	d.logger.Info("promotional notification sent",
		zap.String("user_id", user.ID.String()),
		zap.String("category", tmpl.Category),
		zap.String("title", title),
	)

	return true
}
