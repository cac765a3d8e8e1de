package temporal

import (
	"log"
	"strings"
	"time"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
)

// Engine matches ping records against criteria.
//
// In strict mode (the zero value) a record whose datetime cannot be parsed
// never satisfies a date or time criterion. With Lenient set the current
// instant is substituted instead. Either way the DateParseError is logged and
// returned to the caller.
type Engine struct {
	Lenient bool
	Now     func() time.Time
	Logger  *log.Logger
}

// Result is the outcome of a filter pass
type Result struct {
	Records []models.PingRecord
	Errors  []error
}

// NewEngine creates an engine that logs to logger, or to the standard logger
// when nil
func NewEngine(lenient bool, logger *log.Logger) *Engine {
	return &Engine{Lenient: lenient, Logger: logger}
}

// Instant parses raw. On failure a lenient engine returns the current UTC
// instant together with the error.
func (e *Engine) Instant(raw string) (time.Time, error) {
	t, err := ParseInstant(raw)
	if err == nil {
		return t, nil
	}
	e.logf("temporal: %v", err)
	if e.Lenient {
		return e.now(), err
	}
	return time.Time{}, err
}

// Matches reports whether rec satisfies every set criterion. The error is a
// *DateParseError when the record datetime had to be parsed and could not be.
func (e *Engine) Matches(rec models.PingRecord, c Criteria) (bool, error) {
	if len(c.Callers) > 0 {
		if _, ok := c.Callers[strings.TrimSpace(rec.Caller)]; !ok {
			return false, nil
		}
	}

	if !c.needsInstant() {
		return true, nil
	}

	t, err := e.Instant(rec.Datetime)
	if err != nil && !e.Lenient {
		return false, err
	}

	if c.Date != "" && FormatDate(t) != c.Date {
		return false, err
	}
	if c.Time != "" && FormatClock(t) != c.Time {
		return false, err
	}
	return true, err
}

// Filter returns the records satisfying c, in their original order
func (e *Engine) Filter(records []models.PingRecord, c Criteria) Result {
	if c.IsEmpty() {
		out := make([]models.PingRecord, len(records))
		copy(out, records)
		return Result{Records: out}
	}

	res := Result{Records: make([]models.PingRecord, 0, len(records))}
	for _, rec := range records {
		ok, err := e.Matches(rec, c)
		if err != nil {
			res.Errors = append(res.Errors, err)
		}
		if ok {
			res.Records = append(res.Records, rec)
		}
	}
	return res
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
