package stores

import (
	"time"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/db/models"
)

// lookaheadDays bounds the open-day scan past the collection window.
const lookaheadDays = 7

// DeadlineCalculator resolves when a recalled item must be collected by,
// anchored to the hosting store's weekly opening hours.
type DeadlineCalculator struct {
	windowDays   int
	fallbackHour int
}

// NewDeadlineCalculator builds a calculator from the recall config.
func NewDeadlineCalculator(cfg config.RecallConfig) *DeadlineCalculator {
	windowDays := cfg.CollectionWindowDays
	if windowDays <= 0 {
		windowDays = 21
	}
	fallbackHour := cfg.FallbackDeadlineHour
	if fallbackHour <= 0 || fallbackHour > 23 {
		fallbackHour = 17
	}
	return &DeadlineCalculator{windowDays: windowDays, fallbackHour: fallbackHour}
}

// CollectionDeadline returns the closing time of the first open day at or
// after the collection window's end. Days the calendar omits count as closed.
// If every day in the lookahead is closed, the deadline falls back to the
// configured hour on the window's last day.
func (c *DeadlineCalculator) CollectionDeadline(hours []models.OpeningHours, from time.Time) time.Time {
	target := from.AddDate(0, 0, c.windowDays)

	byDay := make(map[int]models.OpeningHours, len(hours))
	for _, h := range hours {
		byDay[h.DayOfWeek] = h
	}

	for offset := 0; offset < lookaheadDays; offset++ {
		day := target.AddDate(0, 0, offset)
		h, ok := byDay[weekdayIndex(day)]
		if !ok || h.Closed {
			continue
		}
		if deadline, err := atClock(day, h.ClosesAt); err == nil {
			return deadline
		}
	}

	return time.Date(target.Year(), target.Month(), target.Day(), c.fallbackHour, 0, 0, 0, from.Location())
}

// weekdayIndex maps time.Weekday (Sunday=0) onto the calendar's Monday=0 scheme.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func atClock(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}
