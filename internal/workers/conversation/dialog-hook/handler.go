// internal/workers/conversation/dialog-hook/handler.go
package dialoghook

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"
)

// Handler serves the Lex V2 code hook over HTTP.
type Handler struct {
	controller *Controller
	logger     logger.Logger
}

func NewHandler(controller *Controller, log logger.Logger) *Handler {
	return &Handler{
		controller: controller,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// ServeHTTP POST /dialog-hook
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var event LexEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Warn("decode lex event failed", map[string]interface{}{"error": err.Error()})
		http.Error(w, "invalid lex event", http.StatusBadRequest)
		return
	}

	writeJSON(w, BuildResponse(&event, h.handle(r, &event)))
}

// handle runs the controller, turning a panic into a generic apology so the
// chat surface never sees a raw fault.
func (h *Handler) handle(r *http.Request, event *LexEvent) (action models.DialogAction) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("dialog hook panic", map[string]interface{}{
				"intent": event.SessionState.Intent.Name,
				"panic":  fmt.Sprint(rec),
			})
			action = models.CloseFailed(MsgSomethingWrong)
		}
	}()
	return h.controller.Handle(r.Context(), event.ToTurn())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
