package reco

import (
	"errors"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrRangeIncomplete = errors.New("from/to required")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRange    = errors.New("invalid range")
)

// Window is a half-open time interval [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// DayWindow returns the UTC calendar day containing now.
func DayWindow(now time.Time) Window {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

// ParseDateRange turns an inclusive YYYY-MM-DD pair into a half-open window
// ending at midnight after "to". Both empty means no window (nil, nil).
func ParseDateRange(from, to string) (*Window, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, ErrRangeIncomplete
	}

	start, err := time.ParseInLocation(DateLayout, from, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := time.ParseInLocation(DateLayout, to, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	return &Window{From: start, To: end.AddDate(0, 0, 1)}, nil
}

// Days lists every calendar day in the window as YYYY-MM-DD, ascending.
func (w Window) Days() []string {
	var days []string
	for cursor := w.From; cursor.Before(w.To); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, cursor.Format(DateLayout))
	}
	return days
}
