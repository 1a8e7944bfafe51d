package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends through Amazon SES v2.
type SESSender struct {
	client sesAPI
}

// NewSESSender uses static credentials when both keys are set and the default AWS chain otherwise.
func NewSESSender(ctx context.Context, region, accessKey, secretKey string) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESSender{client: sesv2.NewFromConfig(cfg)}, nil
}

func (s *SESSender) Send(ctx context.Context, n Notification) error {
	body := &types.Body{}
	if n.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(n.HTMLBody), Charset: aws.String("UTF-8")}
	}
	if n.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(n.TextBody), Charset: aws.String("UTF-8")}
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.From),
		Destination:      &types.Destination{ToAddresses: n.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(n.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	})
	if err == nil {
		return nil
	}

	var rejected *types.MessageRejected
	var badRequest *types.BadRequestException
	if errors.As(err, &rejected) || errors.As(err, &badRequest) {
		return fmt.Errorf("%w: ses: %v", ErrPermanent, err)
	}
	return fmt.Errorf("ses send: %w", err)
}
