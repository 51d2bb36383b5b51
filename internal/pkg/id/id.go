package id

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ulid.Make draws from a process-wide
// monotonic source, so ids sort in creation order even within one millisecond.
func New() string {
	return ulid.Make().String()
}

// Time returns the creation time encoded in a ULID produced by New.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
