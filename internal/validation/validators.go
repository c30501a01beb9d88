package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/timeutil"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// These should never fail in normal operation
	if err := Validate.RegisterValidation("clock", validateClock); err != nil {
		panic(fmt.Sprintf("failed to register clock validator: %v", err))
	}
	if err := Validate.RegisterValidation("day_tag", validateDayTag); err != nil {
		panic(fmt.Sprintf("failed to register day_tag validator: %v", err))
	}
}

// validateClock validates that a string is a HH:MM 24-hour clock value
func validateClock(fl validator.FieldLevel) bool {
	return timeutil.Valid(fl.Field().String())
}

// validateDayTag validates that a string is a weekday tag or the "today" sentinel
func validateDayTag(fl validator.FieldLevel) bool {
	return IsDayTag(fl.Field().String())
}

// IsDayTag reports whether value is one of the weekday tags or "today"
func IsDayTag(value string) bool {
	if value == models.DayToday {
		return true
	}
	for _, day := range models.WeekdayTags {
		if value == day {
			return true
		}
	}
	return false
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// NormalizeDays lowercases and de-duplicates day tags, preserving order.
// It returns an error naming the first tag that is not a weekday or "today".
func NormalizeDays(days []string) ([]string, error) {
	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, day := range days {
		tag := strings.ToLower(strings.TrimSpace(day))
		if len(tag) > 3 && tag != models.DayToday {
			tag = tag[:3]
		}
		if !IsDayTag(tag) {
			return nil, fmt.Errorf("invalid day: %s (must be one of sun, mon, tue, wed, thu, fri, sat, today)", day)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out, nil
}

// ValidateClock validates a HH:MM clock value
func ValidateClock(value string) error {
	if !timeutil.Valid(value) {
		return fmt.Errorf("invalid time: %s (must be HH:MM, 00:00-23:59)", value)
	}
	return nil
}
