package notify

import (
	"context"

	apperrors "dining-concierge/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends plain-text email from a verified sender.
type SESNotifier struct {
	api  SESAPI
	from string
}

func NewSESNotifier(api SESAPI, from string) *SESNotifier {
	return &SESNotifier{api: api, from: from}
}

func (n *SESNotifier) Send(ctx context.Context, to, subject, body string) error {
	_, err := n.api.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("ses", err).WithMetadata("to", to)
	}
	return nil
}
