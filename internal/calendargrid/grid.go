// Package calendargrid provides the date arithmetic used to render
// month views: weekday of the first day, month length, and the padded
// day grid a calendar UI consumes.
//
// Weekdays are numbered Monday=0 through Sunday=6 throughout.
package calendargrid

import (
	"errors"
	"time"
)

// ErrInvalidMonth indicates a month outside the 1..12 range. Passing such a
// value is a caller contract violation; valid inputs never fail.
var ErrInvalidMonth = errors.New("calendargrid: month must be between 1 and 12")

// EmptyCell is the sentinel grid value marking a cell before day 1.
const EmptyCell = 0

// WeekdayOfFirst returns the weekday (Monday=0 .. Sunday=6) of the first
// day of the given month.
func WeekdayOfFirst(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return FromTimeWeekday(first.Weekday()), nil
}

// LastDayOfMonth returns the number of days in the given month (28..31).
//
// The value is computed as the day before the first day of the following
// month, which handles leap-year February and the December to January
// rollover without a month-length table.
func LastDayOfMonth(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, ErrInvalidMonth
	}
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1).Day(), nil
}

// MonthGrid returns the padded day sequence for the given month: a run of
// EmptyCell values followed by 1, 2, ... up to the last day of the month.
//
// The leading padding count is (WeekdayOfFirst(year, month) + 1) mod 7.
// The tail is not padded to a multiple of seven; callers that render full
// week rows append trailing cells themselves.
func MonthGrid(year, month int) ([]int, error) {
	startWeekday, err := WeekdayOfFirst(year, month)
	if err != nil {
		return nil, err
	}
	lastDay, err := LastDayOfMonth(year, month)
	if err != nil {
		return nil, err
	}

	padding := (startWeekday + 1) % 7

	grid := make([]int, padding, padding+lastDay)
	for day := 1; day <= lastDay; day++ {
		grid = append(grid, day)
	}
	return grid, nil
}

// FromTimeWeekday converts a time.Weekday (Sunday=0) to the Monday=0
// numbering used across the booking domain.
func FromTimeWeekday(day time.Weekday) int {
	return (int(day) + 6) % 7
}
