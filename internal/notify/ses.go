package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"mailroom/internal/config"
)

type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESNotifier sends notifications through AWS SES v2.
type SESNotifier struct {
	client sesAPI
	from   string
	log    *zap.Logger
}

// NewSES builds an SES notifier. Static credentials are used when configured,
// otherwise the default AWS credential chain applies.
func NewSES(ctx context.Context, cfg config.SESConfig, log *zap.Logger) (*SESNotifier, error) {
	if cfg.Region == "" || cfg.FromEmail == "" {
		return nil, fmt.Errorf("ses region and from address are required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESNotifier{client: sesv2.NewFromConfig(awsCfg), from: cfg.FromEmail, log: log}, nil
}

func (n *SESNotifier) Notify(ctx context.Context, msg Message) error {
	out, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	n.log.Info("notification",
		zap.String("channel", "ses"),
		zap.String("to", redact(msg.To)),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

// New picks SES when it is configured and falls back to logging.
func New(ctx context.Context, cfg config.SESConfig, log *zap.Logger) Notifier {
	if cfg.Region == "" {
		return NewLogNotifier(log)
	}
	n, err := NewSES(ctx, cfg, log)
	if err != nil {
		log.Warn("ses_init_failed", zap.Error(err))
		return NewLogNotifier(log)
	}
	return n
}
