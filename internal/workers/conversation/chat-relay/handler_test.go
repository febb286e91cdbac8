package chatrelay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dining-concierge/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimev2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockLexService struct {
	RecognizeTextFunc func(ctx context.Context, params *lexruntimev2.RecognizeTextInput, optFns ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error)
	calls             int
}

func (m *MockLexService) RecognizeText(ctx context.Context, params *lexruntimev2.RecognizeTextInput, optFns ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error) {
	m.calls++
	return m.RecognizeTextFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		BotID:            "BOT123",
		BotAliasID:       "TSTALIASID",
		LocaleID:         "en_US",
		DefaultSessionID: "web-user",
		Timeout:          time.Second,
	}
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chatbot", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, MessageTypeUnstructured, resp.Messages[0].Type)
	return w, resp.Messages[0].Unstructured.Text
}

func replying(text string) *MockLexService {
	return &MockLexService{
		RecognizeTextFunc: func(context.Context, *lexruntimev2.RecognizeTextInput, ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error) {
			return &lexruntimev2.RecognizeTextOutput{
				Messages: []types.Message{{Content: aws.String(text), ContentType: types.MessageContentTypePlainText}},
			}, nil
		},
	}
}

// ==========================
// Handler
// ==========================

func TestHandler_RelaysFirstReply(t *testing.T) {
	var got *lexruntimev2.RecognizeTextInput
	lex := &MockLexService{
		RecognizeTextFunc: func(ctx context.Context, params *lexruntimev2.RecognizeTextInput, _ ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error) {
			got = params
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return &lexruntimev2.RecognizeTextOutput{
				Messages: []types.Message{
					{Content: aws.String("What city are you looking to dine in?")},
					{Content: aws.String("ignored")},
				},
			}, nil
		},
	}
	h := NewHandler(createTestConfig(), lex, logger.NewTestLogger(t))

	w, text := post(t, h, `{"messages":[{"type":"unstructured","unstructured":{"text":"I need restaurant suggestions"}}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "What city are you looking to dine in?", text)

	require.NotNil(t, got)
	assert.Equal(t, "BOT123", aws.ToString(got.BotId))
	assert.Equal(t, "TSTALIASID", aws.ToString(got.BotAliasId))
	assert.Equal(t, "en_US", aws.ToString(got.LocaleId))
	assert.Equal(t, "web-user", aws.ToString(got.SessionId))
	assert.Equal(t, "I need restaurant suggestions", aws.ToString(got.Text))
}

func TestHandler_SessionIDFromRequest(t *testing.T) {
	var session string
	lex := &MockLexService{
		RecognizeTextFunc: func(_ context.Context, params *lexruntimev2.RecognizeTextInput, _ ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error) {
			session = aws.ToString(params.SessionId)
			return &lexruntimev2.RecognizeTextOutput{}, nil
		},
	}
	h := NewHandler(createTestConfig(), lex, logger.NewTestLogger(t))

	post(t, h, `{"sessionId":"abc-123","messages":[{"type":"unstructured","unstructured":{"text":"hi"}}]}`)
	assert.Equal(t, "abc-123", session)
}

func TestHandler_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		lex       *MockLexService
		want      string
		wantCalls int
	}{
		{
			name:      "empty text skips the engine",
			body:      `{"messages":[{"type":"unstructured","unstructured":{"text":"   "}}]}`,
			lex:       replying("unused"),
			want:      MsgNotUnderstood,
			wantCalls: 0,
		},
		{
			name:      "no messages skips the engine",
			body:      `{"messages":[]}`,
			lex:       replying("unused"),
			want:      MsgNotUnderstood,
			wantCalls: 0,
		},
		{
			name: "engine returns no messages",
			body: `{"messages":[{"type":"unstructured","unstructured":{"text":"hmm"}}]}`,
			lex: &MockLexService{RecognizeTextFunc: func(context.Context, *lexruntimev2.RecognizeTextInput, ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error) {
				return &lexruntimev2.RecognizeTextOutput{}, nil
			}},
			want:      MsgNotUnderstood,
			wantCalls: 1,
		},
		{
			name: "engine error",
			body: `{"messages":[{"type":"unstructured","unstructured":{"text":"hello"}}]}`,
			lex: &MockLexService{RecognizeTextFunc: func(context.Context, *lexruntimev2.RecognizeTextInput, ...func(*lexruntimev2.Options)) (*lexruntimev2.RecognizeTextOutput, error) {
				return nil, errors.New("ThrottlingException")
			}},
			want:      MsgSomethingWrong,
			wantCalls: 1,
		},
		{
			name:      "malformed body",
			body:      `{"messages":`,
			lex:       replying("unused"),
			want:      MsgSomethingWrong,
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(), tt.lex, logger.NewTestLogger(t))
			w, text := post(t, h, tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, text)
			assert.Equal(t, tt.wantCalls, tt.lex.calls)
		})
	}
}

func TestHandler_Preflight(t *testing.T) {
	lex := replying("unused")
	h := NewHandler(createTestConfig(), lex, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodOptions, "/chatbot", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "OPTIONS,POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, w.Body.String())
	assert.Zero(t, lex.calls)
}
