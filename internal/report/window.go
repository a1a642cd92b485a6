package report

import (
	"fmt"
	"time"
)

// DateLayout is the only accepted report date format.
const DateLayout = "2006-01-02"

// DayWindow covers one calendar day, both ends inclusive.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// NewDayWindow returns the window from 00:00:00.000 to 23:59:59.999 of date in loc.
// A nil loc means time.Local.
func NewDayWindow(date string, loc *time.Location) (DayWindow, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return DayWindow{}, fmt.Errorf("parse report date %q: %w", date, err)
	}

	y, m, d := day.Date()
	return DayWindow{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc),
	}, nil
}
