package queue

import (
	"context"
	"strconv"
	"time"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client used here.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSQueue struct {
	api        SQSAPI
	url        string
	visibility time.Duration
}

// NewSQSQueue binds to one queue URL. A zero visibility keeps the queue's own
// default.
func NewSQSQueue(api SQSAPI, url string, visibility time.Duration) *SQSQueue {
	return &SQSQueue{api: api, url: url, visibility: visibility}
}

func (q *SQSQueue) Enqueue(ctx context.Context, req models.CanonicalRequest) (string, error) {
	body, err := encode(req)
	if err != nil {
		return "", apperrors.NewQueueUnavailableError("enqueue", err)
	}

	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.url),
		MessageBody: aws.String(string(body)),
	}
	if req.RequestID != "" {
		in.MessageAttributes = map[string]types.MessageAttributeValue{
			"RequestID": {DataType: aws.String("String"), StringValue: aws.String(req.RequestID)},
		}
	}

	out, err := q.api.SendMessage(ctx, in)
	if err != nil {
		return "", apperrors.NewQueueUnavailableError("enqueue", err)
	}
	return aws.ToString(out.MessageId), nil
}

func (q *SQSQueue) ReceiveOne(ctx context.Context, wait time.Duration) (*Message, error) {
	in := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.url),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     int32(wait / time.Second),
		AttributeNames:      []types.QueueAttributeName{"ApproximateReceiveCount"},
	}
	if q.visibility > 0 {
		in.VisibilityTimeout = int32(q.visibility / time.Second)
	}

	out, err := q.api.ReceiveMessage(ctx, in)
	if err != nil {
		return nil, apperrors.NewQueueUnavailableError("receive", err)
	}
	if len(out.Messages) == 0 {
		return nil, ErrEmpty
	}

	m := out.Messages[0]
	count, _ := strconv.Atoi(m.Attributes["ApproximateReceiveCount"])
	return &Message{
		ID:            aws.ToString(m.MessageId),
		Body:          []byte(aws.ToString(m.Body)),
		ReceiptHandle: aws.ToString(m.ReceiptHandle),
		ReceiveCount:  count,
	}, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return apperrors.NewQueueUnavailableError("delete", err)
	}
	return nil
}
