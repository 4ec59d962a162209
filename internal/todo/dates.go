package todo

import (
	"fmt"
	"time"
)

// DateKey formats t as a bucket key, dropping the time of day.
func DateKey(t time.Time) string {
	return t.Format(DateKeyFormat)
}

// ParseDateKey validates and parses a bucket key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyFormat, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date key %q: %w", key, err)
	}

	return t, nil
}

// AddDays returns the key days after key. Passing an invalid key returns
// the key unchanged; callers validate keys at the engine boundary.
func AddDays(key string, days int) string {
	t, err := ParseDateKey(key)
	if err != nil {
		return key
	}

	return DateKey(t.AddDate(0, 0, days))
}

// KeysBetween returns every date key from start to end inclusive.
func KeysBetween(start, end string) ([]string, error) {
	from, err := ParseDateKey(start)
	if err != nil {
		return nil, err
	}

	to, err := ParseDateKey(end)
	if err != nil {
		return nil, err
	}

	if to.Before(from) {
		return nil, fmt.Errorf("date range %s..%s is reversed", start, end)
	}

	var keys []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		keys = append(keys, DateKey(d))
	}

	return keys, nil
}

// Window returns numDays date keys centered on anchor, matching the
// day-view modes (1, 3, 5 or 7 columns).
func Window(anchor string, numDays int) []string {
	half := numDays / 2

	keys := make([]string, 0, numDays)
	for i := -half; i <= half; i++ {
		keys = append(keys, AddDays(anchor, i))
	}

	return keys
}
