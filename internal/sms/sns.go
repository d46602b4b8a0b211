package sms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSSender sends SMS via AWS SNS.
type SNSSender struct {
	client *sns.Client
	logger *zap.Logger
}

type SNSConfig struct {
	Region string
}

func NewSNSSender(ctx context.Context, cfg SNSConfig, logger *zap.Logger) (*SNSSender, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load default AWS config for SNS: %w", err)
	}

	return &SNSSender{
		client: sns.NewFromConfig(awsCfg),
		logger: logger,
	}, nil
}

func (s *SNSSender) Send(ctx context.Context, msg Message) error {
	if msg.PhoneNumber == "" {
		return fmt.Errorf("sms missing phone number")
	}
	if msg.Text == "" {
		return fmt.Errorf("sms missing text")
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(msg.PhoneNumber),
		Message:     aws.String(msg.Text),
	}

	result, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}

	s.logger.Info("sms sent via SNS",
		zap.String("phone_number", msg.PhoneNumber),
		zap.String("message_id", *result.MessageId),
	)

	return nil
}
