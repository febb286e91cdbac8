// internal/workers/conversation/chat-relay/handler.go
package chatrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
)

const (
	MsgNotUnderstood  = "Sorry, I didn't understand that."
	MsgSomethingWrong = "Something went wrong. Please try again."
)

// LexAPI is the subset of the Lex V2 runtime client used by the relay.
type LexAPI interface {
	RecognizeText(ctx context.Context, params *lexruntimev2.RecognizeTextInput, optFns ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error)
}

// Handler forwards chat text to the language engine and relays the first
// reply. It always answers 200 with a chat envelope; failures become a
// canned message.
type Handler struct {
	config *Config
	lex    LexAPI
	logger logger.Logger
}

func NewHandler(cfg *Config, lex LexAPI, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		lex:    lex,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// ServeHTTP POST /chatbot and OPTIONS /chatbot
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	writeJSON(w, newChatResponse(h.reply(r)))
}

func (h *Handler) reply(r *http.Request) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("chat relay panic", map[string]interface{}{"panic": fmt.Sprint(rec)})
			metrics.RelayRequests.WithLabelValues("error").Inc()
			text = MsgSomethingWrong
		}
	}()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("decode chat request failed", map[string]interface{}{"error": err.Error()})
		metrics.RelayRequests.WithLabelValues("error").Inc()
		return MsgSomethingWrong
	}

	userText := strings.TrimSpace(req.text())
	if userText == "" {
		metrics.RelayRequests.WithLabelValues("empty").Inc()
		return MsgNotUnderstood
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.config.DefaultSessionID
	}

	ctx := r.Context()
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	out, err := h.lex.RecognizeText(ctx, &lexruntimev2.RecognizeTextInput{
		BotId:      aws.String(h.config.BotID),
		BotAliasId: aws.String(h.config.BotAliasID),
		LocaleId:   aws.String(h.config.LocaleID),
		SessionId:  aws.String(sessionID),
		Text:       aws.String(userText),
	})
	if err != nil {
		err = apperrors.NewNLUUnavailableError(err)
		h.logger.Error("recognize text failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		metrics.RelayRequests.WithLabelValues("error").Inc()
		return MsgSomethingWrong
	}

	if len(out.Messages) == 0 || aws.ToString(out.Messages[0].Content) == "" {
		metrics.RelayRequests.WithLabelValues("no_reply").Inc()
		return MsgNotUnderstood
	}

	metrics.RelayRequests.WithLabelValues("success").Inc()
	return aws.ToString(out.Messages[0].Content)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "OPTIONS,POST")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
