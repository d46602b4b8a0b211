// Package push delivers mobile notifications through Firebase Cloud
// Messaging's HTTP v1 API.
package push

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrInvalidToken indicates the device token is permanently invalid or
// unregistered. Callers should clear the stored token when they see it.
var ErrInvalidToken = errors.New("push: invalid device token")

// Message is one notification addressed to a single device token.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender is the outbound push channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs sends instead of delivering them (development mode).
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("push send (development mode)",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data),
	)
	return nil
}
