package models

// Slot names collected by the dining suggestions intent.
const (
	SlotLocation       = "Location"
	SlotCuisine        = "Cuisine"
	SlotDiningDate     = "DiningDate"
	SlotDiningTime     = "DiningTime"
	SlotNumberOfPeople = "NumberOfPeople"
	SlotEmail          = "Email"
)

// SlotOrder lists every slot in collection order.
var SlotOrder = []string{
	SlotLocation,
	SlotCuisine,
	SlotDiningDate,
	SlotDiningTime,
	SlotNumberOfPeople,
	SlotEmail,
}

// SlotValue is the engine-normalized value of one slot.
type SlotValue struct {
	InterpretedValue string `json:"interpretedValue"`
}

// SlotSet maps slot name to value. A nil entry means the slot has not been
// collected yet.
type SlotSet map[string]*SlotValue

// Get returns the interpreted value of name and whether it is present.
func (s SlotSet) Get(name string) (string, bool) {
	v, ok := s[name]
	if !ok || v == nil {
		return "", false
	}
	return v.InterpretedValue, true
}

// Phase is the point in the conversation at which the hook was invoked.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseCompleting Phase = "completing"
)

// DialogTurn is one invocation of the dialog hook.
type DialogTurn struct {
	IntentName string
	Phase      Phase
	Slots      SlotSet
}

// ActionType enumerates the hook's possible replies.
type ActionType string

const (
	ActionElicitSlot ActionType = "ElicitSlot"
	ActionDelegate   ActionType = "Delegate"
	ActionClose      ActionType = "Close"
)

// DialogAction is the hook's decision for a turn. SlotToElicit is set only for
// ElicitSlot; Message is empty only for Delegate. Failed marks Close replies
// that apologise rather than confirm.
type DialogAction struct {
	Type         ActionType
	SlotToElicit string
	Message      string
	Failed       bool
}

func ElicitSlot(slot, message string) DialogAction {
	return DialogAction{Type: ActionElicitSlot, SlotToElicit: slot, Message: message}
}

func Delegate() DialogAction {
	return DialogAction{Type: ActionDelegate}
}

func Close(message string) DialogAction {
	return DialogAction{Type: ActionClose, Message: message}
}

func CloseFailed(message string) DialogAction {
	return DialogAction{Type: ActionClose, Message: message, Failed: true}
}
