// Package temporal parses the dd-mm-yyyy hh:mm[:ss] timestamps carried by
// ping records and matches records against phone/date/time criteria.
package temporal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical calendar date form used for comparisons
	DateLayout = "02-01-2006"
	// ClockLayout is the canonical time-of-day form used for comparisons
	ClockLayout = "15:04"

	isoLayout = "2006-01-02T15:04:05"
)

var (
	errMissingTime = errors.New("missing time segment")
	errDateShape   = errors.New("date must be dd-mm-yyyy")
	errTimeShape   = errors.New("time must be hh:mm or hh:mm:ss")
	errNotNumeric  = errors.New("component is not numeric")
)

// DateParseError reports a datetime value that does not decompose into a
// valid calendar instant.
type DateParseError struct {
	Raw string
	Err error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid datetime %q: %v", e.Raw, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// ParseInstant converts "dd-mm-yyyy hh:mm[:ss]" into a UTC instant.
// Seconds default to 00. No offset other than UTC is ever applied.
func ParseInstant(raw string) (time.Time, error) {
	fail := func(err error) (time.Time, error) {
		return time.Time{}, &DateParseError{Raw: raw, Err: err}
	}

	datePart, timePart, ok := strings.Cut(strings.TrimSpace(raw), " ")
	if !ok {
		return fail(errMissingTime)
	}

	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return fail(errDateShape)
	}
	day, month, year := dateFields[0], dateFields[1], dateFields[2]

	timeFields := strings.Split(strings.TrimSpace(timePart), ":")
	if len(timeFields) < 2 || len(timeFields) > 3 {
		return fail(errTimeShape)
	}
	seconds := "00"
	if len(timeFields) == 3 {
		seconds = timeFields[2]
	}

	parts := []string{day, month, timeFields[0], timeFields[1], seconds}
	for i, p := range parts {
		padded, err := pad2(p)
		if err != nil {
			return fail(err)
		}
		parts[i] = padded
	}
	if !isDigits(year) {
		return fail(errNotNumeric)
	}

	iso := fmt.Sprintf("%s-%s-%sT%s:%s:%s", year, parts[1], parts[0], parts[2], parts[3], parts[4])
	t, err := time.ParseInLocation(isoLayout, iso, time.UTC)
	if err != nil {
		return fail(err)
	}
	return t, nil
}

// FormatDate renders the UTC calendar date of t as dd-mm-yyyy
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatClock renders the UTC hour and minute of t as hh:mm
func FormatClock(t time.Time) string {
	return t.UTC().Format(ClockLayout)
}

// pad2 left-pads a numeric component to two digits
func pad2(s string) (string, error) {
	if !isDigits(s) {
		return "", errNotNumeric
	}
	if len(s) == 1 {
		return "0" + s, nil
	}
	return s, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
