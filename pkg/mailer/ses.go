package mailer

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog"
)

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer dispatches transactional email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SESConfig configures the SES-backed mailer.
type SESConfig struct {
	Region string
	From   string
	Logger zerolog.Logger
}

// SESMailer sends email through AWS SES. Constructed once at process start
// and shared by reference.
type SESMailer struct {
	client *ses.Client
	from   string
	logger zerolog.Logger
}

// NewSESMailer builds the mailer using the default AWS credential chain.
func NewSESMailer(ctx context.Context, cfg SESConfig) (*SESMailer, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESMailer{
		client: ses.NewFromConfig(awsCfg),
		from:   cfg.From,
		logger: cfg.Logger.With().Str("component", "ses_mailer").Logger(),
	}, nil
}

// Send implements Mailer.
func (m *SESMailer) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return fmt.Errorf("recipient address is required")
	}

	charset := "UTF-8"
	input := &ses.SendEmailInput{
		Source: &m.from,
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: &email.Subject, Charset: &charset},
			Body: &types.Body{
				Html: &types.Content{Data: &email.HTMLBody, Charset: &charset},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}

	m.logger.Debug().Str("to", email.To).Str("subject", email.Subject).Msg("email sent")
	return nil
}
