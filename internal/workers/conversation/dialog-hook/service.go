// internal/workers/conversation/dialog-hook/service.go
package dialoghook

import (
	"context"
	"errors"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/metrics"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/models"
)

const (
	MsgGreeting        = "Hi there, how can I help?"
	MsgThankYou        = "You're welcome! Have a great day."
	MsgConfirmation    = "You're all set. My suggestions are on the way! Have a good day."
	MsgEnqueueFailed   = "Sorry, I couldn't submit your request right now. Please try again in a few minutes."
	MsgNotUnderstood   = "Sorry, I didn't understand that."
	MsgSomethingWrong  = "Something went wrong. Please try again."
	MsgMissingSlotHint = "I still need a bit more information before I can look for restaurants."
)

// Controller decides the reply for one dialog turn. It keeps no per
// conversation state; everything it needs arrives with the turn.
type Controller struct {
	config    *Config
	validator *Validator
	producer  queue.Producer
	logger    logger.Logger
}

func NewController(cfg *Config, validator *Validator, producer queue.Producer, log logger.Logger) *Controller {
	return &Controller{
		config:    cfg,
		validator: validator,
		producer:  producer,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Handle never returns an error: every failure becomes a user-facing action.
func (c *Controller) Handle(ctx context.Context, turn models.DialogTurn) models.DialogAction {
	action := c.decide(ctx, turn)

	metrics.DialogActions.WithLabelValues(turn.IntentName, string(action.Type)).Inc()
	c.logger.Info("dialog turn handled", map[string]interface{}{
		"intent": turn.IntentName,
		"phase":  string(turn.Phase),
		"action": string(action.Type),
		"slot":   action.SlotToElicit,
	})
	return action
}

func (c *Controller) decide(ctx context.Context, turn models.DialogTurn) models.DialogAction {
	switch turn.IntentName {
	case c.config.GreetingIntent:
		return models.Close(MsgGreeting)
	case c.config.ThankYouIntent:
		return models.Close(MsgThankYou)
	case c.config.DiningIntent:
		switch turn.Phase {
		case models.PhaseCollecting:
			return c.collect(turn.Slots)
		case models.PhaseCompleting:
			return c.complete(ctx, turn.Slots)
		}
		c.logger.Warn("unknown dialog phase", map[string]interface{}{
			"intent": turn.IntentName,
			"phase":  string(turn.Phase),
		})
		return models.Close(MsgNotUnderstood)
	default:
		err := apperrors.NewUnknownIntentError(turn.IntentName)
		c.logger.Warn("unknown intent", map[string]interface{}{
			"intent": turn.IntentName,
			"error":  err.Error(),
		})
		return models.Close(MsgNotUnderstood)
	}
}

func (c *Controller) collect(slots models.SlotSet) models.DialogAction {
	result := c.validator.Validate(slots)
	if result.Valid {
		return models.Delegate()
	}
	return c.reject(result)
}

// reject re-prompts for the violated slot.
func (c *Controller) reject(result ValidationResult) models.DialogAction {
	err := apperrors.NewSlotValidationError(result.ViolatedSlot, result.Message)
	metrics.SlotValidationFailures.WithLabelValues(result.ViolatedSlot).Inc()
	c.logger.WithError(err).Debug("slot rejected", map[string]interface{}{
		"slot":     result.ViolatedSlot,
		"category": apperrors.GetErrorCategory(err.Code),
	})
	return models.ElicitSlot(result.ViolatedSlot, result.Message)
}

// complete re-checks the slots before enqueueing. Lex only completes after
// every collecting pass was delegated, so a rejection here means the bot
// definition and this hook disagree; the user is re-prompted rather than
// sent a confirmation for a request that was never captured.
func (c *Controller) complete(ctx context.Context, slots models.SlotSet) models.DialogAction {
	if result := c.validator.Validate(slots); !result.Valid {
		return c.reject(result)
	}

	req, err := models.NewCanonicalRequest(slots)
	if err != nil {
		var missing *models.MissingSlotError
		if errors.As(err, &missing) {
			c.logger.Warn("completion with missing slot", map[string]interface{}{
				"error": apperrors.NewRequestIncompleteError(missing.Slot).Error(),
			})
			return models.ElicitSlot(missing.Slot, MsgMissingSlotHint)
		}
		c.logger.Error("build request failed", map[string]interface{}{"error": err.Error()})
		return models.CloseFailed(MsgSomethingWrong)
	}

	if c.config.EnqueueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.EnqueueTimeout)
		defer cancel()
	}

	messageID, err := c.producer.Enqueue(ctx, req)
	if err != nil {
		metrics.RequestsEnqueued.WithLabelValues("failed").Inc()
		c.logger.Error("enqueue failed", map[string]interface{}{
			"requestId": req.RequestID,
			"cuisine":   req.Cuisine,
			"error":     err.Error(),
			"retryable": apperrors.IsRetryable(err),
		})
		return models.CloseFailed(MsgEnqueueFailed)
	}

	metrics.RequestsEnqueued.WithLabelValues("success").Inc()
	c.logger.Info("request enqueued", map[string]interface{}{
		"requestId": req.RequestID,
		"messageId": messageID,
		"cuisine":   req.Cuisine,
	})
	return models.Close(MsgConfirmation)
}
