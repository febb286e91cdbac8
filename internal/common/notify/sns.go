package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	apperrors "dining-concierge/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	recipientAttribute  = "recipient"
	pendingSubscription = "pending confirmation"
)

// ErrSubscriptionPending means the recipient has not confirmed the topic
// subscription yet; nothing published now would reach them.
var ErrSubscriptionPending = errors.New("sns: recipient subscription pending confirmation")

type SNSAPI interface {
	Subscribe(ctx context.Context, params *sns.SubscribeInput, optFns ...func(*sns.Options)) (*sns.SubscribeOutput, error)
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier routes each message to its recipient through one topic. Every
// recipient gets an email subscription filtered on the "recipient" message
// attribute, so a publish reaches only the address it names.
type SNSNotifier struct {
	api        SNSAPI
	topicARN   string
	subscribed sync.Map // recipient -> subscription arn
}

func NewSNSNotifier(api SNSAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{api: api, topicARN: topicARN}
}

func (n *SNSNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := n.ensureSubscribed(ctx, to); err != nil {
		return apperrors.NewNotificationSendFailedError("sns", err).WithMetadata("to", to)
	}

	_, err := n.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			recipientAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(to),
			},
		},
	})
	if err != nil {
		return apperrors.NewNotificationSendFailedError("sns", err).WithMetadata("to", to)
	}
	return nil
}

// ensureSubscribed subscribes to with a filter policy matching only its own
// address. SNS returns the existing subscription for a repeated request, and
// confirmed recipients are remembered so steady state costs no extra call.
func (n *SNSNotifier) ensureSubscribed(ctx context.Context, to string) error {
	if _, ok := n.subscribed.Load(to); ok {
		return nil
	}

	policy, err := json.Marshal(map[string][]string{recipientAttribute: {to}})
	if err != nil {
		return err
	}
	out, err := n.api.Subscribe(ctx, &sns.SubscribeInput{
		TopicArn: aws.String(n.topicARN),
		Protocol: aws.String("email"),
		Endpoint: aws.String(to),
		Attributes: map[string]string{
			"FilterPolicy":      string(policy),
			"FilterPolicyScope": "MessageAttributes",
		},
	})
	if err != nil {
		return err
	}

	arn := aws.ToString(out.SubscriptionArn)
	if arn == "" || arn == pendingSubscription {
		return ErrSubscriptionPending
	}
	n.subscribed.Store(to, arn)
	return nil
}
