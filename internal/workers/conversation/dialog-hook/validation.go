// internal/workers/conversation/dialog-hook/validation.go
package dialoghook

import (
	"fmt"
	"strings"
	"time"

	"dining-concierge/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

// ValidationResult is either valid or names the first rejected slot.
type ValidationResult struct {
	Valid        bool
	ViolatedSlot string
	Message      string
}

func valid() ValidationResult { return ValidationResult{Valid: true} }

func invalid(slot, message string) ValidationResult {
	return ValidationResult{ViolatedSlot: slot, Message: message}
}

// Validator checks the slots collected so far. It holds no mutable state and
// is safe for concurrent use.
type Validator struct {
	locations map[string]struct{}
	cuisines  map[string]struct{}

	locationMsg  string
	cuisineMsg   string
	partySizeMsg string
	minPartySize int
	maxPartySize int
	loc          *time.Location
	now          func() time.Time
}

// NewValidator builds a validator that reads "today" from now in the
// configured time zone.
func NewValidator(cfg *Config, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	loc := cfg.TimeZone
	if loc == nil {
		loc = time.UTC
	}

	title := cases.Title(language.English)
	labels := make([]string, 0, len(cfg.Cuisines))
	for _, c := range cfg.Cuisines {
		labels = append(labels, title.String(c))
	}

	return &Validator{
		locations:    toSet(cfg.Locations),
		cuisines:     toSet(cfg.Cuisines),
		locationMsg:  fmt.Sprintf("Sorry, we only support %s at the moment. Please enter a valid location.", cfg.LocationLabel),
		cuisineMsg:   fmt.Sprintf("We don't support that cuisine yet. Please choose from: %s.", strings.Join(labels, ", ")),
		partySizeMsg: fmt.Sprintf("Please enter a valid number of people (%d-%d).", cfg.MinPartySize, cfg.MaxPartySize),
		minPartySize: cfg.MinPartySize,
		maxPartySize: cfg.MaxPartySize,
		loc:          loc,
		now:          now,
	}
}

// Validate applies the rules in order Location, Cuisine, DiningDate,
// NumberOfPeople and stops at the first violation. Absent slots pass.
func (v *Validator) Validate(slots models.SlotSet) ValidationResult {
	if s, ok := slots.Get(models.SlotLocation); ok {
		if _, allowed := v.locations[normalize(s)]; !allowed {
			return invalid(models.SlotLocation, v.locationMsg)
		}
	}

	if s, ok := slots.Get(models.SlotCuisine); ok {
		if _, allowed := v.cuisines[normalize(s)]; !allowed {
			return invalid(models.SlotCuisine, v.cuisineMsg)
		}
	}

	if s, ok := slots.Get(models.SlotDiningDate); ok {
		if r := v.validateDate(s); !r.Valid {
			return r
		}
	}

	if s, ok := slots.Get(models.SlotNumberOfPeople); ok {
		n, err := models.ParsePartySize(s)
		if err != nil {
			return invalid(models.SlotNumberOfPeople, "Please enter a valid number.")
		}
		if n < v.minPartySize || n > v.maxPartySize {
			return invalid(models.SlotNumberOfPeople, v.partySizeMsg)
		}
	}

	return valid()
}

func (v *Validator) validateDate(s string) ValidationResult {
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), v.loc)
	if err != nil {
		return invalid(models.SlotDiningDate, "Please enter a valid date.")
	}

	y, m, d := v.now().In(v.loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, v.loc)
	if date.Before(today) {
		return invalid(models.SlotDiningDate, "You cannot book for a past date. Please enter a future date.")
	}
	return valid()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[normalize(v)] = struct{}{}
	}
	return set
}
