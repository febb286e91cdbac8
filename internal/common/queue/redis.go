package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// claimScript moves expired in-flight ids back to the head of the pending
// list, then pops one id, marks it in flight until ARGV[2] and records
// ARGV[3] as the token of this delivery.
//
// KEYS: pending list, in-flight zset, bodies hash, receive-count hash, token hash
// ARGV: now (unix ms), visibility deadline (unix ms), delivery token
var claimScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, id in ipairs(expired) do
  if redis.call('ZREM', KEYS[2], id) == 1 then
    redis.call('HDEL', KEYS[5], id)
    redis.call('RPUSH', KEYS[1], id)
  end
end
local id = redis.call('RPOP', KEYS[1])
if not id then
  return false
end
local body = redis.call('HGET', KEYS[3], id)
if not body then
  return false
end
redis.call('ZADD', KEYS[2], ARGV[2], id)
redis.call('HSET', KEYS[5], id, ARGV[3])
local n = redis.call('HINCRBY', KEYS[4], id, 1)
return {id, body, n}
`)

// deleteScript removes a message only while ARGV[2] is its current delivery
// token. Returns 1 when deleted, 0 when the message is already gone and -1
// when another delivery owns it.
//
// KEYS: pending list, in-flight zset, bodies hash, receive-count hash, token hash
// ARGV: message id, delivery token
var deleteScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[3], ARGV[1]) == 0 then
  return 0
end
if redis.call('HGET', KEYS[5], ARGV[1]) ~= ARGV[2] then
  return -1
end
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('LREM', KEYS[1], 0, ARGV[1])
redis.call('HDEL', KEYS[3], ARGV[1])
redis.call('HDEL', KEYS[4], ARGV[1])
redis.call('HDEL', KEYS[5], ARGV[1])
return 1
`)

// ErrStaleReceipt is returned by Delete when the message was redelivered
// after the handle was issued. The newer delivery decides its fate.
var ErrStaleReceipt = errors.New("queue: receipt handle is no longer current")

const pollStep = 100 * time.Millisecond

// RedisQueue is a local stand-in for SQS: a pending list plus an in-flight
// sorted set scored by visibility deadline. Every delivery gets a fresh
// receipt handle "<id>:<token>", so a consumer whose window expired cannot
// delete a message another consumer has since claimed.
type RedisQueue struct {
	rdb        redis.UniversalClient
	prefix     string
	visibility time.Duration
	now        func() time.Time
}

func NewRedisQueue(rdb redis.UniversalClient, prefix string, visibility time.Duration) *RedisQueue {
	return &RedisQueue{rdb: rdb, prefix: prefix, visibility: visibility, now: time.Now}
}

func (q *RedisQueue) pendingKey() string  { return q.prefix + ":pending" }
func (q *RedisQueue) inflightKey() string { return q.prefix + ":inflight" }
func (q *RedisQueue) bodiesKey() string   { return q.prefix + ":bodies" }
func (q *RedisQueue) receivesKey() string { return q.prefix + ":receives" }
func (q *RedisQueue) tokensKey() string   { return q.prefix + ":tokens" }

func (q *RedisQueue) keys() []string {
	return []string{q.pendingKey(), q.inflightKey(), q.bodiesKey(), q.receivesKey(), q.tokensKey()}
}

func (q *RedisQueue) Enqueue(ctx context.Context, req models.CanonicalRequest) (string, error) {
	body, err := encode(req)
	if err != nil {
		return "", apperrors.NewQueueUnavailableError("enqueue", err)
	}
	id := uuid.NewString()
	if err := q.push(ctx, id, body); err != nil {
		return "", err
	}
	return id, nil
}

func (q *RedisQueue) push(ctx context.Context, id string, body []byte) error {
	_, err := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, q.bodiesKey(), id, body)
		p.LPush(ctx, q.pendingKey(), id)
		return nil
	})
	if err != nil {
		return apperrors.NewQueueUnavailableError("enqueue", err)
	}
	return nil
}

func (q *RedisQueue) ReceiveOne(ctx context.Context, wait time.Duration) (*Message, error) {
	deadline := time.Now().Add(wait)
	for {
		msg, err := q.claim(ctx)
		if !errors.Is(err, ErrEmpty) {
			return msg, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrEmpty
		}

		t := time.NewTimer(min(pollStep, remaining))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, apperrors.NewQueueUnavailableError("receive", ctx.Err())
		case <-t.C:
		}
	}
}

func (q *RedisQueue) claim(ctx context.Context) (*Message, error) {
	now := q.now()
	token := uuid.NewString()
	res, err := claimScript.Run(ctx, q.rdb, q.keys(), now.UnixMilli(), now.Add(q.visibility).UnixMilli(), token).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, apperrors.NewQueueUnavailableError("receive", err)
	}
	if len(res) != 3 {
		return nil, apperrors.NewQueueUnavailableError("receive", fmt.Errorf("unexpected claim reply of %d items", len(res)))
	}
	id, _ := res[0].(string)
	body, _ := res[1].(string)
	count, _ := res[2].(int64)
	return &Message{
		ID:            id,
		Body:          []byte(body),
		ReceiptHandle: id + ":" + token,
		ReceiveCount:  int(count),
	}, nil
}

// Delete removes the message claimed with receiptHandle. Deleting a message
// that is already gone is not an error; a handle from an earlier delivery
// returns ErrStaleReceipt and leaves the message alone.
func (q *RedisQueue) Delete(ctx context.Context, receiptHandle string) error {
	id, token, ok := strings.Cut(receiptHandle, ":")
	if !ok || id == "" || token == "" {
		return fmt.Errorf("%w: malformed handle %q", ErrStaleReceipt, receiptHandle)
	}
	n, err := deleteScript.Run(ctx, q.rdb, q.keys(), id, token).Int()
	if err != nil {
		return apperrors.NewQueueUnavailableError("delete", err)
	}
	if n < 0 {
		return ErrStaleReceipt
	}
	return nil
}

// Depth reports pending and in-flight counts.
func (q *RedisQueue) Depth(ctx context.Context) (pending, inflight int64, err error) {
	pending, err = q.rdb.LLen(ctx, q.pendingKey()).Result()
	if err != nil {
		return 0, 0, apperrors.NewQueueUnavailableError("depth", err)
	}
	inflight, err = q.rdb.ZCard(ctx, q.inflightKey()).Result()
	if err != nil {
		return 0, 0, apperrors.NewQueueUnavailableError("depth", err)
	}
	return pending, inflight, nil
}
