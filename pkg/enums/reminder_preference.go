package enums

import "fmt"

// ReminderPreference maps to the reminder_preference enum in Postgres.
type ReminderPreference string

const (
	ReminderPreferenceOneDay   ReminderPreference = "1d"
	ReminderPreferenceOneWeek  ReminderPreference = "7d"
	ReminderPreferenceOneMonth ReminderPreference = "30d"
	ReminderPreferenceNone     ReminderPreference = "none"
)

var validReminderPreferences = []ReminderPreference{
	ReminderPreferenceOneDay,
	ReminderPreferenceOneWeek,
	ReminderPreferenceOneMonth,
	ReminderPreferenceNone,
}

// IsValid checks whether the given preference matches the canonical enum.
func (r ReminderPreference) IsValid() bool {
	for _, candidate := range validReminderPreferences {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReminderPreference converts raw strings into ReminderPreference.
func ParseReminderPreference(value string) (ReminderPreference, error) {
	for _, candidate := range validReminderPreferences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reminder preference %q", value)
}
