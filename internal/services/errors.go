package services

import (
	"errors"
	"time"
)

// Sentinel errors. Handlers map them to response codes with errors.Is;
// services wrap them with context via fmt.Errorf("...: %w").
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConfig       = errors.New("configuration error")
)

// Clock lets tests move "today" without touching the database.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}
