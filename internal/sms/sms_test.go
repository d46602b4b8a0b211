package sms

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestSNSSenderRejectsEmptyFields(t *testing.T) {
	sender := &SNSSender{logger: zap.NewNop()}

	if err := sender.Send(context.Background(), Message{Text: "hello"}); err == nil {
		t.Error("expected error for missing phone number")
	}
	if err := sender.Send(context.Background(), Message{PhoneNumber: "+911234567890"}); err == nil {
		t.Error("expected error for missing text")
	}
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	sender := NewLogSender(zap.NewNop())

	err := sender.Send(context.Background(), Message{
		PhoneNumber: "+911234567890",
		Text:        "Hi Asha, your bus ticket is confirmed.",
	})
	if err != nil {
		t.Fatalf("log sender should never fail: %v", err)
	}
}
