package lizechat

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrEmptyDate       = errors.New("empty date")
	ErrUncoercibleDate = errors.New("value is not a date")
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dateLayout,
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006年1月2日",
	"2006年01月02日",
}

// CoerceDate converts a front-matter value to a date. Strings are parsed with
// the common ISO and slash layouts plus the CJK year/month/day form; numbers
// are Unix epoch milliseconds. Values without a zone are taken as UTC.
func CoerceDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case *time.Time:
		if x == nil {
			return time.Time{}, ErrEmptyDate
		}
		return x.UTC(), nil
	case string:
		return parseDateString(x)
	case int:
		return fromMillis(int64(x))
	case int64:
		return fromMillis(x)
	case uint64:
		if x > maxDateMillis {
			return time.Time{}, fmt.Errorf("%w: %d out of range", ErrUncoercibleDate, x)
		}
		return fromMillis(int64(x))
	case float64:
		if math.IsNaN(x) || math.Abs(x) > maxDateMillis {
			return time.Time{}, fmt.Errorf("%w: %v out of range", ErrUncoercibleDate, x)
		}
		return fromMillis(int64(x))
	}
	return time.Time{}, fmt.Errorf("%w: %T", ErrUncoercibleDate, v)
}

// maxDateMillis is the largest epoch offset a JavaScript Date can hold.
const maxDateMillis = 8.64e15

func fromMillis(ms int64) (time.Time, error) {
	if ms > maxDateMillis || ms < -maxDateMillis {
		return time.Time{}, fmt.Errorf("%w: %d out of range", ErrUncoercibleDate, ms)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUncoercibleDate, s)
}
