package suggestions

import (
	"context"
	"errors"
	"testing"
	"time"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/common/validation"
	"dining-concierge/internal/models"
	dialoghook "dining-concierge/internal/workers/conversation/dialog-hook"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The dialog hook enqueues onto a Redis-backed queue and the worker drains it.

func newPipeline(t *testing.T, visibility time.Duration, n *fakeNotifier) (*dialoghook.Controller, *Worker, *queue.RedisQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	q := queue.NewRedisQueue(rdb, "test:requests", visibility)

	hookCfg := &dialoghook.Config{
		DiningIntent:   "DiningSuggestionsIntent",
		GreetingIntent: "GreetingIntent",
		ThankYouIntent: "ThankYouIntent",
		Locations:      []string{"manhattan"},
		LocationLabel:  "Manhattan",
		Cuisines:       []string{"italian", "thai"},
		MinPartySize:   1,
		MaxPartySize:   20,
		TimeZone:       time.UTC,
		EnqueueTimeout: time.Second,
	}
	now := func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	controller := dialoghook.NewController(hookCfg, dialoghook.NewValidator(hookCfg, now), q, logger.NewTestLogger(t))

	entries, byID := restaurantsFixture(5)
	v, err := validation.NewCanonicalRequestValidator()
	require.NoError(t, err)
	worker := NewWorker(createTestConfig(), Dependencies{
		Queue:     q,
		Index:     searchReturning(entries),
		Records:   &fakeStore{records: byID},
		Notifier:  n,
		Validator: v,
		Logger:    logger.NewTestLogger(t),
	})
	return controller, worker, q
}

func completeConversation(t *testing.T, c *dialoghook.Controller) {
	t.Helper()
	action := c.Handle(context.Background(), models.DialogTurn{
		IntentName: "DiningSuggestionsIntent",
		Phase:      models.PhaseCompleting,
		Slots: models.SlotSet{
			models.SlotLocation:       {InterpretedValue: "Manhattan"},
			models.SlotCuisine:        {InterpretedValue: "Italian"},
			models.SlotDiningDate:     {InterpretedValue: "2025-03-02"},
			models.SlotDiningTime:     {InterpretedValue: "19:30"},
			models.SlotNumberOfPeople: {InterpretedValue: "3"},
			models.SlotEmail:          {InterpretedValue: "diner@example.com"},
		},
	})
	require.Equal(t, dialoghook.MsgConfirmation, action.Message)
}

func TestPipeline_ConversationToEmail(t *testing.T) {
	n := &fakeNotifier{}
	controller, worker, q := newPipeline(t, time.Minute, n)
	ctx := context.Background()

	assert.Equal(t, StatusNoWork, worker.RunOnce(ctx).Status)

	completeConversation(t, controller)

	out := worker.RunOnce(ctx)
	assert.Equal(t, StatusSucceeded, out.Status)
	assert.Equal(t, 3, out.SuggestionsSent)
	assert.NotEmpty(t, out.RequestID)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "diner@example.com", n.sent[0].To)
	assert.Equal(t, "Your Italian Restaurant Suggestions", n.sent[0].Subject)
	assert.Contains(t, n.sent[0].Body, "for 3 people on 2025-03-02 at 19:30")

	pending, inflight, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Zero(t, inflight)

	assert.Equal(t, StatusNoWork, worker.RunOnce(ctx).Status)
}

func TestPipeline_FailedSendIsRedelivered(t *testing.T) {
	n := &fakeNotifier{err: errors.New("ses throttled")}
	controller, worker, q := newPipeline(t, 50*time.Millisecond, n)
	ctx := context.Background()

	completeConversation(t, controller)

	out := worker.RunOnce(ctx)
	require.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, ReasonNotificationFailed, out.Reason)

	// Invisible until the visibility timeout lapses.
	assert.Equal(t, StatusNoWork, worker.RunOnce(ctx).Status)

	n.err = nil
	require.Eventually(t, func() bool {
		return worker.RunOnce(ctx).Status == StatusSucceeded
	}, 2*time.Second, 20*time.Millisecond)

	assert.Len(t, n.sent, 1)
	pending, inflight, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending+inflight)
}
