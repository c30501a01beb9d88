package scheduler

import (
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/timeutil"
)

// TrackUsage adds one minute of screen time for now's date, resetting the counter on a new date.
// It returns true exactly once per date, when the daily limit is first reached.
func TrackUsage(usage *models.Usage, now time.Time, limitHours float64) bool {
	date := timeutil.DateKey(now)
	if usage.Date != date {
		*usage = models.Usage{Date: date}
	}

	usage.Minutes++

	if limitHours <= 0 {
		limitHours = models.DefaultDailyLimitHours
	}
	limitMinutes := int(limitHours * 60)

	if usage.Minutes >= limitMinutes && !usage.Warned {
		usage.Warned = true
		return true
	}
	return false
}
