package dialoghook

import (
	"testing"
	"time"

	"dining-concierge/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func createTestConfig() *Config {
	return &Config{
		DiningIntent:   "DiningSuggestionsIntent",
		GreetingIntent: "GreetingIntent",
		ThankYouIntent: "ThankYouIntent",
		Locations:      []string{"manhattan", "new york", "new york city", "nyc"},
		LocationLabel:  "Manhattan",
		Cuisines:       []string{"american", "chinese", "indian", "italian", "japanese", "mexican", "thai"},
		MinPartySize:   1,
		MaxPartySize:   20,
		TimeZone:       time.UTC,
		EnqueueTimeout: time.Second,
	}
}

func slots(kv ...string) models.SlotSet {
	s := models.SlotSet{}
	for i := 0; i+1 < len(kv); i += 2 {
		s[kv[i]] = &models.SlotValue{InterpretedValue: kv[i+1]}
	}
	return s
}

func fullSlots() models.SlotSet {
	return slots(
		models.SlotLocation, "Manhattan",
		models.SlotCuisine, "Italian",
		models.SlotDiningDate, "2025-03-12",
		models.SlotDiningTime, "19:00",
		models.SlotNumberOfPeople, "4",
		models.SlotEmail, "diner@example.com",
	)
}

// ==========================
// Validator
// ==========================

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(createTestConfig(), fixedClock)

	tests := []struct {
		name     string
		slots    models.SlotSet
		wantSlot string
		wantMsg  string
	}{
		{
			name:  "empty slot set",
			slots: models.SlotSet{},
		},
		{
			name:  "absent slots are not validated",
			slots: models.SlotSet{models.SlotCuisine: nil, models.SlotNumberOfPeople: nil},
		},
		{
			name:  "fully valid",
			slots: fullSlots(),
		},
		{
			name:  "location alias is case-insensitive",
			slots: slots(models.SlotLocation, "  NYC "),
		},
		{
			name:     "unsupported location",
			slots:    slots(models.SlotLocation, "Brooklyn"),
			wantSlot: models.SlotLocation,
			wantMsg:  "Sorry, we only support Manhattan at the moment. Please enter a valid location.",
		},
		{
			name:     "unsupported cuisine",
			slots:    slots(models.SlotCuisine, "french"),
			wantSlot: models.SlotCuisine,
			wantMsg:  "We don't support that cuisine yet. Please choose from: American, Chinese, Indian, Italian, Japanese, Mexican, Thai.",
		},
		{
			name:     "past date",
			slots:    slots(models.SlotDiningDate, "2000-01-01"),
			wantSlot: models.SlotDiningDate,
			wantMsg:  "You cannot book for a past date. Please enter a future date.",
		},
		{
			name:  "today is accepted",
			slots: slots(models.SlotDiningDate, "2025-03-10"),
		},
		{
			name:     "yesterday is rejected",
			slots:    slots(models.SlotDiningDate, "2025-03-09"),
			wantSlot: models.SlotDiningDate,
			wantMsg:  "You cannot book for a past date. Please enter a future date.",
		},
		{
			name:     "unparsable date",
			slots:    slots(models.SlotDiningDate, "next tuesday"),
			wantSlot: models.SlotDiningDate,
			wantMsg:  "Please enter a valid date.",
		},
		{
			name:     "party too large",
			slots:    slots(models.SlotNumberOfPeople, "25"),
			wantSlot: models.SlotNumberOfPeople,
			wantMsg:  "Please enter a valid number of people (1-20).",
		},
		{
			name:     "party of zero",
			slots:    slots(models.SlotNumberOfPeople, "0"),
			wantSlot: models.SlotNumberOfPeople,
			wantMsg:  "Please enter a valid number of people (1-20).",
		},
		{
			name:  "party bounds are inclusive",
			slots: slots(models.SlotNumberOfPeople, "20"),
		},
		{
			name:     "party not a number",
			slots:    slots(models.SlotNumberOfPeople, "a few"),
			wantSlot: models.SlotNumberOfPeople,
			wantMsg:  "Please enter a valid number.",
		},
		{
			name:  "email and time are not content checked",
			slots: slots(models.SlotEmail, "not-an-email", models.SlotDiningTime, "whenever"),
		},
		{
			name: "location wins over later violations",
			slots: slots(
				models.SlotLocation, "Boston",
				models.SlotCuisine, "french",
				models.SlotNumberOfPeople, "99",
			),
			wantSlot: models.SlotLocation,
			wantMsg:  "Sorry, we only support Manhattan at the moment. Please enter a valid location.",
		},
		{
			name: "cuisine wins over date and party size",
			slots: slots(
				models.SlotCuisine, "french",
				models.SlotDiningDate, "2000-01-01",
				models.SlotNumberOfPeople, "99",
			),
			wantSlot: models.SlotCuisine,
			wantMsg:  "We don't support that cuisine yet. Please choose from: American, Chinese, Indian, Italian, Japanese, Mexican, Thai.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.slots)
			if tt.wantSlot == "" {
				assert.True(t, got.Valid, "unexpected violation: %+v", got)
				return
			}
			assert.False(t, got.Valid)
			assert.Equal(t, tt.wantSlot, got.ViolatedSlot)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestValidator_SingleViolationNamedRegardlessOfOtherSlots(t *testing.T) {
	v := NewValidator(createTestConfig(), fixedClock)

	bad := map[string]string{
		models.SlotLocation:       "Queens",
		models.SlotCuisine:        "korean",
		models.SlotDiningDate:     "2024-12-31",
		models.SlotNumberOfPeople: "21",
	}

	for slot, value := range bad {
		t.Run(slot, func(t *testing.T) {
			withAll := fullSlots()
			withAll[slot] = &models.SlotValue{InterpretedValue: value}
			assert.Equal(t, slot, v.Validate(withAll).ViolatedSlot)

			alone := slots(slot, value)
			assert.Equal(t, slot, v.Validate(alone).ViolatedSlot)
		})
	}
}

func TestValidator_Idempotent(t *testing.T) {
	v := NewValidator(createTestConfig(), fixedClock)
	s := slots(models.SlotCuisine, "french")

	assert.Equal(t, v.Validate(s), v.Validate(s))
}

func TestValidator_TodayUsesConfiguredTimeZone(t *testing.T) {
	cfg := createTestConfig()
	cfg.TimeZone = time.FixedZone("EST", -5*60*60)

	// 02:00 UTC on the 11th is still the 10th in New York.
	now := func() time.Time { return time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC) }
	v := NewValidator(cfg, now)

	assert.True(t, v.Validate(slots(models.SlotDiningDate, "2025-03-10")).Valid)
	assert.False(t, v.Validate(slots(models.SlotDiningDate, "2025-03-09")).Valid)
}

func TestValidator_AllowListsAreData(t *testing.T) {
	cfg := createTestConfig()
	cfg.Cuisines = append(cfg.Cuisines, "korean")
	v := NewValidator(cfg, fixedClock)

	assert.True(t, v.Validate(slots(models.SlotCuisine, "Korean")).Valid)
	assert.Contains(t, v.Validate(slots(models.SlotCuisine, "french")).Message, "Thai, Korean.")
}
