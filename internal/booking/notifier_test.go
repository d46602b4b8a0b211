package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitlive/transit-notifier/internal/db"
	"github.com/orbitlive/transit-notifier/internal/email"
	"github.com/orbitlive/transit-notifier/internal/sms"
)

type mockRepository struct {
	bookings   []*db.Booking
	users      map[uuid.UUID]*db.User
	userErr    error
	notified   []uuid.UUID
	notifyErr  error
	listCalled int
}

func (m *mockRepository) UnnotifiedBookings(_ context.Context, _ int) ([]*db.Booking, error) {
	m.listCalled++
	return m.bookings, nil
}

func (m *mockRepository) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) MarkBookingNotified(_ context.Context, id uuid.UUID) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notified = append(m.notified, id)
	return nil
}

type mockSMSSender struct {
	sent []sms.Message
	err  error
}

func (m *mockSMSSender) Send(_ context.Context, msg sms.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type mockEmailSender struct {
	sent []email.Message
	err  error
}

func (m *mockEmailSender) Send(_ context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func testUser() *db.User {
	first := "Asha"
	return &db.User{
		ID:        uuid.New(),
		Email:     "asha@example.com",
		Phone:     "+919800000000",
		FirstName: &first,
	}
}

func testBooking(userID uuid.UUID) *db.Booking {
	qr := "ORBIT-7F3A"
	return &db.Booking{
		ID:          uuid.New(),
		UserID:      userID,
		TransitType: "bus ticket",
		Source:      "Majestic",
		Destination: "Whitefield",
		TravelDate:  time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Fare:        145.50,
		QRCode:      &qr,
	}
}

func newTestNotifier(repo *mockRepository, smsSender *mockSMSSender, emailSender *mockEmailSender) *Notifier {
	return New(repo, smsSender, emailSender, Config{}, zap.NewNop())
}

func TestRunOnceSendsBothChannels(t *testing.T) {
	user := testUser()
	b := testBooking(user.ID)
	repo := &mockRepository{
		bookings: []*db.Booking{b},
		users:    map[uuid.UUID]*db.User{user.ID: user},
	}
	smsSender := &mockSMSSender{}
	emailSender := &mockEmailSender{}

	n := newTestNotifier(repo, smsSender, emailSender)
	if err := n.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(smsSender.sent) != 1 {
		t.Fatalf("expected 1 sms, got %d", len(smsSender.sent))
	}
	msg := smsSender.sent[0]
	if msg.PhoneNumber != user.Phone {
		t.Errorf("sms to %q, want %q", msg.PhoneNumber, user.Phone)
	}
	if !strings.Contains(msg.Text, "Hi Asha, your bus ticket from Majestic to Whitefield") {
		t.Errorf("unexpected sms text: %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "₹145.50") {
		t.Errorf("sms missing fare: %q", msg.Text)
	}

	if len(emailSender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(emailSender.sent))
	}
	em := emailSender.sent[0]
	if em.To != user.Email {
		t.Errorf("email to %q, want %q", em.To, user.Email)
	}
	if em.Subject != "Your bus ticket is confirmed!" {
		t.Errorf("unexpected subject: %q", em.Subject)
	}
	if !strings.Contains(em.HTML, "Majestic to Whitefield") {
		t.Errorf("email body missing route")
	}
	if !strings.Contains(em.HTML, "api.qrserver.com") {
		t.Errorf("email body missing qr image")
	}

	if len(repo.notified) != 1 || repo.notified[0] != b.ID {
		t.Errorf("booking not marked notified: %v", repo.notified)
	}
}

func TestRunOnceUnknownUserSkipsSends(t *testing.T) {
	b := testBooking(uuid.New())
	repo := &mockRepository{
		bookings: []*db.Booking{b},
		users:    map[uuid.UUID]*db.User{},
	}
	smsSender := &mockSMSSender{}
	emailSender := &mockEmailSender{}

	n := newTestNotifier(repo, smsSender, emailSender)
	if err := n.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(smsSender.sent) != 0 || len(emailSender.sent) != 0 {
		t.Errorf("expected no sends for unknown user")
	}
	if len(repo.notified) != 1 {
		t.Errorf("booking should still be marked notified to stop retries")
	}
}

func TestRunOnceTransientUserErrorLeavesBooking(t *testing.T) {
	b := testBooking(uuid.New())
	repo := &mockRepository{
		bookings: []*db.Booking{b},
		userErr:  errors.New("connection reset"),
	}
	smsSender := &mockSMSSender{}
	emailSender := &mockEmailSender{}

	n := newTestNotifier(repo, smsSender, emailSender)
	if err := n.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(repo.notified) != 0 {
		t.Errorf("booking must stay unnotified after transient lookup failure")
	}
	if len(smsSender.sent) != 0 || len(emailSender.sent) != 0 {
		t.Errorf("expected no sends after lookup failure")
	}
}

func TestRunOnceSMSFailureStillSendsEmail(t *testing.T) {
	user := testUser()
	b := testBooking(user.ID)
	repo := &mockRepository{
		bookings: []*db.Booking{b},
		users:    map[uuid.UUID]*db.User{user.ID: user},
	}
	smsSender := &mockSMSSender{err: errors.New("sns throttled")}
	emailSender := &mockEmailSender{}

	n := newTestNotifier(repo, smsSender, emailSender)
	if err := n.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(emailSender.sent) != 1 {
		t.Errorf("email should send despite sms failure")
	}
	if len(repo.notified) != 1 {
		t.Errorf("booking should be marked notified after one attempt")
	}
}

func TestRunOnceMissingContactDetails(t *testing.T) {
	user := testUser()
	user.Phone = ""
	b := testBooking(user.ID)
	repo := &mockRepository{
		bookings: []*db.Booking{b},
		users:    map[uuid.UUID]*db.User{user.ID: user},
	}
	smsSender := &mockSMSSender{}
	emailSender := &mockEmailSender{}

	n := newTestNotifier(repo, smsSender, emailSender)
	if err := n.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if len(smsSender.sent) != 0 {
		t.Errorf("should not attempt sms without a phone number")
	}
	if len(emailSender.sent) != 1 {
		t.Errorf("email should still send")
	}
}

func TestConfirmationEmailWithoutQR(t *testing.T) {
	user := testUser()
	b := testBooking(user.ID)
	b.QRCode = nil

	html, err := ConfirmationEmailHTML(user, b)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "api.qrserver.com") {
		t.Errorf("qr block should be absent without a qr payload")
	}
	if !strings.Contains(html, "Hello Asha,") {
		t.Errorf("greeting missing: %q", html)
	}
}

func TestConfirmationSMSFallbackName(t *testing.T) {
	user := testUser()
	user.FirstName = nil
	b := testBooking(user.ID)

	text := ConfirmationSMS(user, b)
	if !strings.HasPrefix(text, "Hi there, ") {
		t.Errorf("expected fallback greeting, got %q", text)
	}
}
