package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// Repository handles database operations for users, bookings and analytics
type Repository struct {
	db     *DB
	logger *zap.Logger
}

// NewRepository creates a new repository
func NewRepository(db *DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetUser retrieves a user by ID. Returns ErrNotFound if absent.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, phone, first_name, push_token, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.FirstName,
		&user.PushToken,
		&user.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if err != nil {
		r.logger.Error("failed to get user",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ListUsers retrieves the full user set, oldest first. The promotional
// pass partitions the result into batches itself.
func (r *Repository) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, email, phone, first_name, push_token, created_at
		FROM users
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Phone,
			&user.FirstName,
			&user.PushToken,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return users, nil
}

// ClearPushToken removes a user's push token. Called only after a send
// attempt reported the token as permanently invalid.
func (r *Repository) ClearPushToken(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET push_token = NULL WHERE id = $1`

	result, err := r.db.Pool().Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to clear push token",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("clear push token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	r.logger.Info("push token removed",
		zap.String("user_id", userID.String()),
	)

	return nil
}

// UnnotifiedBookings retrieves bookings that have not had confirmation
// messages sent yet, oldest first.
func (r *Repository) UnnotifiedBookings(ctx context.Context, limit int) ([]*Booking, error) {
	query := `
		SELECT id, user_id, transit_type, source, destination,
		       travel_date, fare, qr_code, notified_at, created_at
		FROM bookings
		WHERE notified_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unnotified bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.TransitType,
			&b.Source,
			&b.Destination,
			&b.TravelDate,
			&b.Fare,
			&b.QRCode,
			&b.NotifiedAt,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return bookings, nil
}

// MarkBookingNotified stamps a booking so it is not picked up again.
func (r *Repository) MarkBookingNotified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE bookings SET notified_at = NOW() WHERE id = $1 AND notified_at IS NULL`

	result, err := r.db.Pool().Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to mark booking notified",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("mark booking notified: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}

	return nil
}

// InsertAnalyticsEvent appends one delivery/open event.
func (r *Repository) InsertAnalyticsEvent(ctx context.Context, event *AnalyticsEvent) error {
	query := `
		INSERT INTO notification_analytics (id, user_id, category, ts, delivered, opened)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool().Exec(
		ctx,
		query,
		event.ID,
		event.UserID,
		event.Category,
		event.Timestamp,
		event.Delivered,
		event.Opened,
	)

	if err != nil {
		r.logger.Error("failed to insert analytics event",
			zap.Error(err),
			zap.String("user_id", event.UserID.String()),
			zap.String("category", event.Category),
		)
		return fmt.Errorf("insert analytics event: %w", err)
	}

	return nil
}

// AnalyticsSummarySince aggregates events with ts >= cutoff (inclusive)
// by category. Categories with no events in the window are absent.
func (r *Repository) AnalyticsSummarySince(ctx context.Context, cutoff time.Time) (map[string]CategorySummary, error) {
	query := `
		SELECT category,
		       COUNT(*) FILTER (WHERE delivered) AS delivered,
		       COUNT(*) FILTER (WHERE opened) AS opened
		FROM notification_analytics
		WHERE ts >= $1
		GROUP BY category
	`

	rows, err := r.db.Pool().Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query analytics summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]CategorySummary)
	for rows.Next() {
		var category string
		var s CategorySummary
		if err := rows.Scan(&category, &s.Delivered, &s.Opened); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		summary[category] = s
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summary, nil
}
