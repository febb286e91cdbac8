package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CanonicalRequest is the queue record for one completed conversation. The
// JSON keys match the slot names so the queue body reads like the dialog.
type CanonicalRequest struct {
	RequestID      string `json:"RequestID,omitempty"`
	Location       string `json:"Location"`
	Cuisine        string `json:"Cuisine"`
	DiningDate     string `json:"DiningDate"`
	DiningTime     string `json:"DiningTime"`
	NumberOfPeople int    `json:"NumberOfPeople"`
	Email          string `json:"Email"`
}

// NewCanonicalRequest builds a request from a fully collected slot set and
// stamps it with a fresh request id.
func NewCanonicalRequest(slots SlotSet) (CanonicalRequest, error) {
	values := make(map[string]string, len(SlotOrder))
	for _, name := range SlotOrder {
		v, ok := slots.Get(name)
		if !ok {
			return CanonicalRequest{}, &MissingSlotError{Slot: name}
		}
		values[name] = strings.TrimSpace(v)
	}

	people, err := ParsePartySize(values[SlotNumberOfPeople])
	if err != nil {
		return CanonicalRequest{}, fmt.Errorf("slot %s: %w", SlotNumberOfPeople, err)
	}

	return CanonicalRequest{
		RequestID:      uuid.NewString(),
		Location:       values[SlotLocation],
		Cuisine:        values[SlotCuisine],
		DiningDate:     values[SlotDiningDate],
		DiningTime:     values[SlotDiningTime],
		NumberOfPeople: people,
		Email:          values[SlotEmail],
	}, nil
}

// ParsePartySize reads a NumberOfPeople slot value. Surrounding whitespace
// is ignored; range checks belong to the caller.
func ParsePartySize(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// MissingSlotError reports a slot absent at completion time.
type MissingSlotError struct {
	Slot string
}

func (e *MissingSlotError) Error() string {
	return fmt.Sprintf("slot %s is missing", e.Slot)
}
