package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitlive/transit-notifier/internal/db"
	"github.com/orbitlive/transit-notifier/internal/email"
	"github.com/orbitlive/transit-notifier/internal/metrics"
	"github.com/orbitlive/transit-notifier/internal/sms"
)

// Repository is the slice of storage the notifier needs.
type Repository interface {
	UnnotifiedBookings(ctx context.Context, limit int) ([]*db.Booking, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	MarkBookingNotified(ctx context.Context, id uuid.UUID) error
}

// Config controls the notifier's poll loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// Notifier watches for freshly created bookings and sends the
// confirmation SMS and email for each one. Each booking is claimed
// exactly once; failed channel sends are logged and counted but not
// retried.
type Notifier struct {
	repo        Repository
	smsSender   sms.Sender
	emailSender email.Sender
	cfg         Config
	logger      *zap.Logger
}

func New(repo Repository, smsSender sms.Sender, emailSender email.Sender, cfg Config, logger *zap.Logger) *Notifier {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Notifier{
		repo:        repo,
		smsSender:   smsSender,
		emailSender: emailSender,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start polls for unnotified bookings until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	n.logger.Info("booking notifier started",
		zap.Duration("poll_interval", n.cfg.PollInterval),
		zap.Int("batch_size", n.cfg.BatchSize))

	ticker := time.NewTicker(n.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("booking notifier stopped")
			return
		case <-ticker.C:
			if err := n.RunOnce(ctx); err != nil {
				n.logger.Error("booking poll failed", zap.Error(err))
			}
		}
	}
}

// RunOnce processes a single batch of unnotified bookings.
func (n *Notifier) RunOnce(ctx context.Context) error {
	bookings, err := n.repo.UnnotifiedBookings(ctx, n.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, b := range bookings {
		n.processBooking(ctx, b)
	}
	return nil
}

func (n *Notifier) processBooking(ctx context.Context, b *db.Booking) {
	logger := n.logger.With(
		zap.String("booking_id", b.ID.String()),
		zap.String("user_id", b.UserID.String()))

	user, err := n.repo.GetUser(ctx, b.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("booking references unknown user, skipping")
			n.markNotified(ctx, b, logger)
			return
		}
		logger.Error("load user failed", zap.Error(err))
		return
	}

	if user.Phone != "" {
		smsErr := n.smsSender.Send(ctx, sms.Message{
			PhoneNumber: user.Phone,
			Text:        ConfirmationSMS(user, b),
		})
		if smsErr != nil {
			logger.Error("confirmation sms failed", zap.Error(smsErr))
			metrics.RecordBookingNotification("sms", "failure")
		} else {
			metrics.RecordBookingNotification("sms", "success")
		}
	} else {
		logger.Warn("user has no phone number, skipping sms")
	}

	if user.Email != "" {
		html, renderErr := ConfirmationEmailHTML(user, b)
		if renderErr != nil {
			logger.Error("render confirmation email failed", zap.Error(renderErr))
			metrics.RecordBookingNotification("email", "failure")
		} else {
			emailErr := n.emailSender.Send(ctx, email.Message{
				To:      user.Email,
				Subject: ConfirmationSubject(b),
				HTML:    html,
			})
			if emailErr != nil {
				logger.Error("confirmation email failed", zap.Error(emailErr))
				metrics.RecordBookingNotification("email", "failure")
			} else {
				metrics.RecordBookingNotification("email", "success")
			}
		}
	} else {
		logger.Warn("user has no email address, skipping email")
	}

	n.markNotified(ctx, b, logger)
}

func (n *Notifier) markNotified(ctx context.Context, b *db.Booking, logger *zap.Logger) {
	if err := n.repo.MarkBookingNotified(ctx, b.ID); err != nil {
		logger.Error("mark booking notified failed", zap.Error(err))
	}
}
