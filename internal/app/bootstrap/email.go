package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/telepsych-site/internal/config"
	"github.com/wolfman30/telepsych-site/internal/notify"
	"github.com/wolfman30/telepsych-site/pkg/logging"
)

// LoadAWSConfig builds the SDK config from the region and optional static
// keys, which LocalStack setups rely on.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// BuildEmailSender picks the notification transport from EMAIL_PROVIDER:
// "sendgrid", "ses", "stub", or "auto" (SendGrid when keyed, else SES when
// AWS keys are set, else the logging stub).
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	provider := cfg.EmailProvider
	if provider == "" || provider == "auto" {
		switch {
		case cfg.SendGridAPIKey != "":
			provider = "sendgrid"
		case cfg.AWSAccessKeyID != "" && cfg.EmailFrom != "":
			provider = "ses"
		default:
			provider = "stub"
		}
	}

	switch provider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: sendgrid selected but SENDGRID_API_KEY is empty")
		}
		logger.Info("email provider configured", "provider", "sendgrid")
		return sender, nil
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
		logger.Info("email provider configured", "provider", "ses", "region", cfg.AWSRegion)
		return notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.SendGridFromName,
		}, logger), nil
	case "stub":
		logger.Info("email provider configured", "provider", "stub")
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", provider)
	}
}
