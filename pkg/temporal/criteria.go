package temporal

import (
	"fmt"
	"strings"
	"time"
)

// dateInputLayouts are accepted for the date criterion: the yyyy-mm-dd form
// produced by HTML date inputs and the dd-mm-yyyy form of the records.
var dateInputLayouts = []string{
	"2006-01-02",
	DateLayout,
}

// Criteria selects ping records. An empty field matches everything for that
// dimension.
type Criteria struct {
	Callers map[string]struct{}
	Date    string // dd-mm-yyyy
	Time    string // hh:mm
}

// NewCriteria builds criteria from already canonical values
func NewCriteria(callers []string, date, clock string) Criteria {
	c := Criteria{Date: date, Time: clock}
	for _, caller := range callers {
		caller = strings.TrimSpace(caller)
		if caller == "" {
			continue
		}
		if c.Callers == nil {
			c.Callers = make(map[string]struct{})
		}
		c.Callers[caller] = struct{}{}
	}
	return c
}

// ParseCriteria reads the raw filter inputs: a comma separated list of phone
// numbers, a calendar date and a time of day. Empty strings leave the
// dimension unset.
func ParseCriteria(phones, date, clock string) (Criteria, error) {
	c := NewCriteria(strings.Split(phones, ","), "", "")

	if date = strings.TrimSpace(date); date != "" {
		d, err := parseDateInput(date)
		if err != nil {
			return Criteria{}, err
		}
		c.Date = d
	}

	if clock = strings.TrimSpace(clock); clock != "" {
		hm, err := parseClockInput(clock)
		if err != nil {
			return Criteria{}, err
		}
		c.Time = hm
	}

	return c, nil
}

// IsEmpty reports whether no criterion is set
func (c Criteria) IsEmpty() bool {
	return len(c.Callers) == 0 && c.Date == "" && c.Time == ""
}

// needsInstant reports whether matching has to parse the record datetime
func (c Criteria) needsInstant() bool {
	return c.Date != "" || c.Time != ""
}

func (c Criteria) String() string {
	callers := make([]string, 0, len(c.Callers))
	for caller := range c.Callers {
		callers = append(callers, caller)
	}
	return fmt.Sprintf("callers=%v date=%q time=%q", callers, c.Date, c.Time)
}

func parseDateInput(value string) (string, error) {
	for _, layout := range dateInputLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return FormatDate(t), nil
		}
	}
	return "", fmt.Errorf("invalid date filter %q: want yyyy-mm-dd or dd-mm-yyyy", value)
}

func parseClockInput(value string) (string, error) {
	fields := strings.Split(value, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return "", fmt.Errorf("invalid time filter %q: want hh:mm", value)
	}
	hh, err := pad2(fields[0])
	if err != nil {
		return "", fmt.Errorf("invalid time filter %q: %w", value, err)
	}
	mm, err := pad2(fields[1])
	if err != nil {
		return "", fmt.Errorf("invalid time filter %q: %w", value, err)
	}
	t, err := time.ParseInLocation(ClockLayout, hh+":"+mm, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid time filter %q: %w", value, err)
	}
	return FormatClock(t), nil
}
