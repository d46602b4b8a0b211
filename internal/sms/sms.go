// Package sms delivers SMS either through AWS SNS or a logging
// placeholder, matching how the mobile app environment is provisioned.
package sms

import (
	"context"

	"go.uber.org/zap"
)

// Message is one outbound SMS.
type Message struct {
	PhoneNumber string
	Text        string
}

// Sender is the outbound SMS channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs the rendered SMS instead of delivering it. This is the
// default: environments without an SMS provider still want the message
// visible in logs.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("sms send (placeholder)",
		zap.String("phone_number", msg.PhoneNumber),
		zap.String("text", msg.Text),
	)
	return nil
}
