// internal/workers/fulfillment/dining-suggestions/service.go
package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"dining-concierge/internal/common/config"
	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/metrics"
	"dining-concierge/internal/common/notify"
	"dining-concierge/internal/common/observability"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/common/records"
	"dining-concierge/internal/common/search"
	"dining-concierge/internal/common/validation"
	"dining-concierge/internal/models"

	"golang.org/x/sync/errgroup"
)

type Dependencies struct {
	Queue         queue.Consumer
	Index         search.Index
	Records       records.Store
	Notifier      notify.Notifier
	Validator     *validation.Validator
	Rand          RandSource
	Observability *observability.Observability
	Logger        logger.Logger
}

// Worker turns one queued request into a suggestion email. It holds no
// state between runs, so several can share a queue.
type Worker struct {
	config    *Config
	queue     queue.Consumer
	index     search.Index
	records   records.Store
	notifier  notify.Notifier
	validator *validation.Validator
	rng       RandSource
	obs       *observability.Observability
	logger    logger.Logger
}

// NewWorker clamps cfg.SampleSize to [1, config.MaxSampleSize].
func NewWorker(cfg *Config, deps Dependencies) *Worker {
	c := *cfg
	c.SampleSize = min(max(c.SampleSize, 1), config.MaxSampleSize)

	rng := deps.Rand
	if rng == nil {
		rng = globalRand{}
	}
	return &Worker{
		config:    &c,
		queue:     deps.Queue,
		index:     deps.Index,
		records:   deps.Records,
		notifier:  deps.Notifier,
		validator: deps.Validator,
		rng:       rng,
		obs:       deps.Observability,
		logger: deps.Logger.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// RunOnce processes at most one queued request.
//
// The message is deleted only after the email is sent or when the search
// finds nothing. A crash between send and delete causes a second email on
// redelivery; delivery is at-least-once.
func (w *Worker) RunOnce(ctx context.Context) Outcome {
	start := time.Now()
	metrics.FulfillmentActive.Inc()
	defer metrics.FulfillmentActive.Dec()

	ctx, span := w.obs.StartSpan(ctx, "fulfillment.run")
	defer span.End()

	out := w.run(ctx)

	if out.Status != StatusNoWork {
		metrics.FulfillmentDuration.WithLabelValues(string(out.Status)).Observe(time.Since(start).Seconds())
	}
	metrics.FulfillmentRuns.WithLabelValues(string(out.Status), out.Reason).Inc()

	fields := map[string]interface{}{
		"status":          string(out.Status),
		"reason":          out.Reason,
		"messageId":       out.MessageID,
		"requestId":       out.RequestID,
		"suggestionsSent": out.SuggestionsSent,
		"duration_ms":     time.Since(start).Milliseconds(),
	}
	switch out.Status {
	case StatusFailed:
		if code, ok := apperrors.CodeOf(out.Err); ok {
			fields["errorCode"] = string(code)
			fields["category"] = apperrors.GetErrorCategory(code)
			fields["retryable"] = apperrors.IsRetryableErrorCode(code)
		}
		w.logger.WithError(out.Err).Error("fulfillment failed", fields)
	case StatusSucceeded:
		w.logger.Info("fulfillment completed", fields)
	default:
		w.logger.Debug("no pending requests", nil)
	}
	return out
}

func (w *Worker) run(ctx context.Context) Outcome {
	msg, err := w.receive(ctx)
	if errors.Is(err, queue.ErrEmpty) {
		return Outcome{Status: StatusNoWork}
	}
	if err != nil {
		return failed(ReasonQueueUnavailable, err)
	}

	out := Outcome{MessageID: msg.ID}

	req, err := w.decode(ctx, msg)
	if err != nil {
		// Left on the queue for inspection; the redrive policy decides its fate.
		return out.fail(ReasonMalformedMessage, err)
	}
	out.RequestID = req.RequestID

	entries, err := w.search(ctx, req.Cuisine)
	if err != nil {
		return out.fail(ReasonSearchUnavailable, err)
	}
	if len(entries) == 0 {
		w.logger.Warn("no restaurants matched", map[string]interface{}{
			"requestId": req.RequestID,
			"cuisine":   req.Cuisine,
		})
		if err := w.delete(ctx, msg); err != nil {
			return out.fail(ReasonDeleteFailed, err)
		}
		out.Status, out.Reason = StatusSucceeded, ReasonNoMatches
		return out
	}

	picked := sample(entries, w.config.SampleSize, w.rng)
	resolved, err := w.lookup(ctx, req.RequestID, picked)
	if err != nil {
		return out.fail(ReasonRecordStoreUnavailable, err)
	}

	if err := w.notify(ctx, req, resolved); err != nil {
		return out.fail(ReasonNotificationFailed, err)
	}
	metrics.SuggestionsSent.Observe(float64(len(resolved)))

	if err := w.delete(ctx, msg); err != nil {
		// The email went out; redelivery will send it again.
		return out.fail(ReasonDeleteFailed, err)
	}

	out.Status, out.Reason, out.SuggestionsSent = StatusSucceeded, ReasonSent, len(resolved)
	return out
}

func (w *Worker) receive(ctx context.Context) (*queue.Message, error) {
	var msg *queue.Message
	err := w.stage(ctx, "receive", func(ctx context.Context) error {
		var err error
		msg, err = w.queue.ReceiveOne(ctx, w.config.ReceiveWait)
		return err
	}, w.config.ReceiveWait)
	return msg, err
}

func (w *Worker) decode(ctx context.Context, msg *queue.Message) (models.CanonicalRequest, error) {
	var req models.CanonicalRequest
	err := w.stage(ctx, "decode", func(context.Context) error {
		if w.validator != nil {
			result, err := w.validator.ValidateJSON(msg.Body)
			if err != nil {
				return apperrors.NewMalformedMessageError(msg.ID, err)
			}
			if !result.Valid {
				return apperrors.NewMalformedMessageError(msg.ID, result)
			}
		}
		if err := json.Unmarshal(msg.Body, &req); err != nil {
			return apperrors.NewMalformedMessageError(msg.ID, err)
		}
		return nil
	}, 0)
	if err != nil {
		w.logger.Warn("malformed queue message", map[string]interface{}{
			"messageId":    msg.ID,
			"receiveCount": msg.ReceiveCount,
			"error":        err.Error(),
		})
	}
	return req, err
}

func (w *Worker) search(ctx context.Context, cuisine string) ([]models.IndexEntry, error) {
	var entries []models.IndexEntry
	err := w.stage(ctx, "search", func(ctx context.Context) error {
		var err error
		entries, err = w.index.SearchByCuisine(ctx, cuisine, w.config.MaxResults)
		return err
	}, 0)
	return entries, err
}

// lookup resolves the sampled ids concurrently, keeping sample order. Misses
// are skipped. Upstream errors are tolerated as long as at least one record
// resolves; with nothing resolved the run fails so the message is retried.
func (w *Worker) lookup(ctx context.Context, requestID string, picked []models.IndexEntry) ([]*models.Restaurant, error) {
	found := make([]*models.Restaurant, len(picked))
	var (
		mu      sync.Mutex
		lastErr error
		misses  int
	)

	err := w.stage(ctx, "lookup", func(ctx context.Context) error {
		var g errgroup.Group
		for i, entry := range picked {
			g.Go(func() error {
				callCtx, cancel := w.callContext(ctx)
				defer cancel()

				r, err := w.records.GetByID(callCtx, entry.ID)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case errors.Is(err, records.ErrNotFound):
					misses++
				case err != nil:
					lastErr = err
				default:
					found[i] = r
				}
				return nil
			})
		}
		_ = g.Wait()

		resolved := 0
		for _, r := range found {
			if r != nil {
				resolved++
			}
		}
		if resolved == 0 && lastErr != nil {
			return lastErr
		}
		return nil
	}, -1)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Restaurant, 0, len(found))
	for _, r := range found {
		if r != nil {
			out = append(out, r)
		}
	}
	if misses > 0 || lastErr != nil {
		w.logger.Warn("some suggestions could not be resolved", map[string]interface{}{
			"requestId": requestID,
			"sampled":   len(picked),
			"resolved":  len(out),
			"misses":    misses,
			"error":     errString(lastErr),
		})
	}
	return out, nil
}

func (w *Worker) notify(ctx context.Context, req models.CanonicalRequest, resolved []*models.Restaurant) error {
	subject, body := compose(req, resolved)
	err := w.stage(ctx, "notify", func(ctx context.Context) error {
		return w.notifier.Send(ctx, req.Email, subject, body)
	}, 0)
	if err == nil {
		w.logger.Info("suggestions sent", map[string]interface{}{
			"requestId": req.RequestID,
			"email":     req.Email,
			"count":     len(resolved),
		})
	}
	return err
}

func (w *Worker) delete(ctx context.Context, msg *queue.Message) error {
	return w.stage(ctx, "delete", func(ctx context.Context) error {
		return w.queue.Delete(ctx, msg.ReceiptHandle)
	}, 0)
}

// stage runs fn under its own span and deadline. extra widens the deadline
// for calls that wait by design; a negative extra leaves the deadline to fn.
func (w *Worker) stage(ctx context.Context, name string, fn func(context.Context) error, extra time.Duration) error {
	ctx, span := w.obs.StartSpan(ctx, "fulfillment."+name)
	defer span.End()

	if extra >= 0 && w.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.CallTimeout+extra)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil && !errors.Is(err, queue.ErrEmpty) {
		status = "error"
		span.RecordError(err)
	}
	w.obs.RecordStage(ctx, name, status, time.Since(start))
	return err
}

func (w *Worker) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.config.CallTimeout)
}

func failed(reason string, err error) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason, Err: err}
}

func (o Outcome) fail(reason string, err error) Outcome {
	o.Status, o.Reason, o.Err = StatusFailed, reason, err
	return o
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
