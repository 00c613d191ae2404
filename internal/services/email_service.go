package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	pkglogger "github.com/BradenHooton/elecpower/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailService delivers account notifications.
type EmailService interface {
	SendTemporaryPassword(ctx context.Context, email, firstName, password string) error
}

// sesSender is the part of the SES client used here.
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   sesSender
	fromAddress string
	loginURL    string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(ctx context.Context, region, fromAddress, loginURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		loginURL:    loginURL,
		logger:      logger,
	}, nil
}

// SendTemporaryPassword mails the generated password of an account created
// by an administrator.
func (s *AWSSESEmailService) SendTemporaryPassword(ctx context.Context, email, firstName, password string) error {
	input := s.temporaryPasswordInput(email, firstName, password)

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send temporary password via SES",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}

	s.logger.Info("temporary password email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("message_id", messageID))

	return nil
}

func (s *AWSSESEmailService) temporaryPasswordInput(email, firstName, password string) *ses.SendEmailInput {
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .password { font-family: monospace; font-size: 18px; background-color: #f1f3f5; padding: 8px 12px; border-radius: 4px; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your ElecPower account</h1>
        </div>
        <p>Hello %s,</p>
        <p>An administrator created an account for you. Sign in with this temporary password:</p>
        <p><span class="password">%s</span></p>
        <p>You will be asked to choose a new password after signing in: <a href="%s">%s</a></p>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>
`, html.EscapeString(firstName), html.EscapeString(password), s.loginURL, s.loginURL)

	textBody := fmt.Sprintf(`Your ElecPower account

Hello %s,

An administrator created an account for you. Sign in with this temporary password:

%s

You will be asked to choose a new password after signing in: %s

This is an automated message. Please do not reply to this email.
`, firstName, password, s.loginURL)

	return &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Your temporary password"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}
}

// LogEmailService stands in for SES when email delivery is disabled. The
// password itself is never logged.
type LogEmailService struct {
	logger *slog.Logger
}

func NewLogEmailService(logger *slog.Logger) *LogEmailService {
	return &LogEmailService{logger: logger}
}

func (s *LogEmailService) SendTemporaryPassword(ctx context.Context, email, firstName, password string) error {
	s.logger.WarnContext(ctx, "email delivery disabled, temporary password not sent",
		slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}
