// internal/workers/conversation/dialog-hook/models.go
package dialoghook

import (
	"dining-concierge/internal/models"
)

// Lex V2 invocation sources.
const (
	SourceDialogCodeHook      = "DialogCodeHook"
	SourceFulfillmentCodeHook = "FulfillmentCodeHook"
)

// Lex V2 intent states set on Close.
const (
	IntentStateFulfilled = "Fulfilled"
	IntentStateFailed    = "Failed"
)

const ContentTypePlainText = "PlainText"

// LexEvent is the code hook input sent by Lex V2.
type LexEvent struct {
	SessionID        string          `json:"sessionId,omitempty"`
	InputTranscript  string          `json:"inputTranscript,omitempty"`
	InvocationSource string          `json:"invocationSource"`
	SessionState     LexSessionState `json:"sessionState"`
}

type LexSessionState struct {
	DialogAction      *LexDialogAction  `json:"dialogAction,omitempty"`
	Intent            LexIntent         `json:"intent"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}

type LexDialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

type LexIntent struct {
	Name              string              `json:"name"`
	Slots             map[string]*LexSlot `json:"slots"`
	State             string              `json:"state,omitempty"`
	ConfirmationState string              `json:"confirmationState,omitempty"`
}

type LexSlot struct {
	Value *LexSlotValue `json:"value,omitempty"`
}

type LexSlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

type LexMessage struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// LexResponse is the code hook reply.
type LexResponse struct {
	SessionState LexSessionState `json:"sessionState"`
	Messages     []LexMessage    `json:"messages,omitempty"`
}

// ToTurn maps the Lex event onto a dialog turn. Slots without an interpreted
// value are treated as not yet collected.
func (e *LexEvent) ToTurn() models.DialogTurn {
	slots := make(models.SlotSet, len(e.SessionState.Intent.Slots))
	for name, s := range e.SessionState.Intent.Slots {
		if s == nil || s.Value == nil || s.Value.InterpretedValue == "" {
			slots[name] = nil
			continue
		}
		slots[name] = &models.SlotValue{InterpretedValue: s.Value.InterpretedValue}
	}

	var phase models.Phase
	switch e.InvocationSource {
	case SourceDialogCodeHook:
		phase = models.PhaseCollecting
	case SourceFulfillmentCodeHook:
		phase = models.PhaseCompleting
	}

	return models.DialogTurn{
		IntentName: e.SessionState.Intent.Name,
		Phase:      phase,
		Slots:      slots,
	}
}

// BuildResponse renders action for Lex, echoing the intent and its slots
// exactly as received.
func BuildResponse(event *LexEvent, action models.DialogAction) *LexResponse {
	intent := LexIntent{
		Name:  event.SessionState.Intent.Name,
		Slots: event.SessionState.Intent.Slots,
	}
	if action.Type == models.ActionClose {
		intent.State = IntentStateFulfilled
		if action.Failed {
			intent.State = IntentStateFailed
		}
	}

	resp := &LexResponse{
		SessionState: LexSessionState{
			DialogAction: &LexDialogAction{
				Type:         string(action.Type),
				SlotToElicit: action.SlotToElicit,
			},
			Intent:            intent,
			SessionAttributes: event.SessionState.SessionAttributes,
		},
	}
	if action.Message != "" {
		resp.Messages = []LexMessage{{ContentType: ContentTypePlainText, Content: action.Message}}
	}
	return resp
}
