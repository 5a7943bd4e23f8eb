package mail

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer delivers raw MIME messages through Amazon SES.
type SESMailer struct {
	client *ses.Client
	sender string
	logger *slog.Logger
}

func NewSESMailer(ctx context.Context, region, sender string, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESMailer{
		client: ses.NewFromConfig(cfg),
		sender: sender,
		logger: logger,
	}, nil
}

func (m *SESMailer) Send(ctx context.Context, to []string, subject, body string) error {
	return m.SendMessage(ctx, Message{
		To:      to,
		Subject: subject,
		Text:    body,
	})
}

func (m *SESMailer) SendMessage(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.sender
	}

	raw, err := BuildRaw(msg)
	if err != nil {
		return err
	}

	res, err := m.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{
			Data: raw.Bytes(),
		},
	})
	if err != nil {
		m.logger.Error("ses delivery failed", "error", err, "to", msg.To, "subject", msg.Subject)
		return err
	}

	m.logger.Info("mail sent", "message_id", *res.MessageId, "to", msg.To, "subject", msg.Subject)
	return nil
}

// NopMailer drops messages; used when mail is disabled in config.
type NopMailer struct {
	logger *slog.Logger
}

func NewNopMailer(logger *slog.Logger) *NopMailer {
	return &NopMailer{logger: logger}
}

func (m *NopMailer) Send(_ context.Context, to []string, subject, _ string) error {
	m.logger.Info("mail disabled, dropping message", "to", to, "subject", subject)
	return nil
}

func (m *NopMailer) SendMessage(_ context.Context, msg Message) error {
	m.logger.Info("mail disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	return nil
}
