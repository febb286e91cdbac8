package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSQSService struct {
	SendMessageFunc    func(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *MockSQSService) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	return m.SendMessageFunc(ctx, params, optFns...)
}

func (m *MockSQSService) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return m.ReceiveMessageFunc(ctx, params, optFns...)
}

func (m *MockSQSService) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	return m.DeleteMessageFunc(ctx, params, optFns...)
}

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/DiningRequestsQueue"

// ==========================
// Core Functionality Tests
// ==========================

func TestSQSQueue_Enqueue(t *testing.T) {
	var sent *sqs.SendMessageInput
	api := &MockSQSService{
		SendMessageFunc: func(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
			sent = params
			return &sqs.SendMessageOutput{MessageId: aws.String("msg-42")}, nil
		},
	}
	q := NewSQSQueue(api, testQueueURL, 0)

	id, err := q.Enqueue(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "msg-42", id)

	require.NotNil(t, sent)
	assert.Equal(t, testQueueURL, aws.ToString(sent.QueueUrl))
	assert.Equal(t, "req-1", aws.ToString(sent.MessageAttributes["RequestID"].StringValue))

	var body models.CanonicalRequest
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(sent.MessageBody)), &body))
	assert.Equal(t, sampleRequest(), body)
}

func TestSQSQueue_ReceiveOne(t *testing.T) {
	var got *sqs.ReceiveMessageInput
	api := &MockSQSService{
		ReceiveMessageFunc: func(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			got = params
			return &sqs.ReceiveMessageOutput{Messages: []types.Message{{
				MessageId:     aws.String("msg-1"),
				ReceiptHandle: aws.String("rh-1"),
				Body:          aws.String(`{"Cuisine":"thai"}`),
				Attributes:    map[string]string{"ApproximateReceiveCount": "3"},
			}}}, nil
		},
	}
	q := NewSQSQueue(api, testQueueURL, 45*time.Second)

	msg, err := q.ReceiveOne(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, int32(1), got.MaxNumberOfMessages)
	assert.Equal(t, int32(0), got.WaitTimeSeconds)
	assert.Equal(t, int32(45), got.VisibilityTimeout)

	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "rh-1", msg.ReceiptHandle)
	assert.Equal(t, `{"Cuisine":"thai"}`, string(msg.Body))
	assert.Equal(t, 3, msg.ReceiveCount)
}

func TestSQSQueue_ReceiveEmpty(t *testing.T) {
	api := &MockSQSService{
		ReceiveMessageFunc: func(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			assert.Equal(t, int32(5), params.WaitTimeSeconds)
			return &sqs.ReceiveMessageOutput{}, nil
		},
	}
	q := NewSQSQueue(api, testQueueURL, 0)

	_, err := q.ReceiveOne(context.Background(), 5*time.Second)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSQSQueue_Delete(t *testing.T) {
	var handle string
	api := &MockSQSService{
		DeleteMessageFunc: func(ctx context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
			handle = aws.ToString(params.ReceiptHandle)
			return &sqs.DeleteMessageOutput{}, nil
		},
	}
	q := NewSQSQueue(api, testQueueURL, 0)

	require.NoError(t, q.Delete(context.Background(), "rh-9"))
	assert.Equal(t, "rh-9", handle)
}

// ==========================
// Error Handling Tests
// ==========================

func TestSQSQueue_ErrorsAreQueueUnavailable(t *testing.T) {
	boom := errors.New("throttled")
	api := &MockSQSService{
		SendMessageFunc: func(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
			return nil, boom
		},
		ReceiveMessageFunc: func(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			return nil, boom
		},
		DeleteMessageFunc: func(context.Context, *sqs.DeleteMessageInput, ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
			return nil, boom
		},
	}
	q := NewSQSQueue(api, testQueueURL, 0)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, sampleRequest())
	assertQueueUnavailable(t, err, boom)

	_, err = q.ReceiveOne(ctx, 0)
	assertQueueUnavailable(t, err, boom)

	err = q.Delete(ctx, "rh")
	assertQueueUnavailable(t, err, boom)
}

func assertQueueUnavailable(t *testing.T, err, cause error) {
	t.Helper()
	require.Error(t, err)
	code, ok := apperrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeQueueUnavailable, code)
	assert.ErrorIs(t, err, cause)
}
