package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

var (
	errMissing   = errors.New("missing")
	errNotNumber = errors.New("not a number")
	errType      = errors.New("unsupported value type")
)

// NormalizeRow validates a raw row against the ping schema: every field must
// be present, numeric fields must parse, coordinates, aperture and radius must
// be in range and datetime must be a valid dd-mm-yyyy hh:mm[:ss] instant.
func NormalizeRow(values map[string]any) (models.PingRecord, error) {
	var rec models.PingRecord
	var err error

	if rec.AntennaID, err = stringField(values, models.FieldAntennaID); err != nil {
		return models.PingRecord{}, err
	}
	if rec.Caller, err = stringField(values, models.FieldCaller); err != nil {
		return models.PingRecord{}, err
	}
	if rec.Datetime, err = stringField(values, models.FieldDatetime); err != nil {
		return models.PingRecord{}, err
	}
	if _, err := temporal.ParseInstant(rec.Datetime); err != nil {
		return models.PingRecord{}, &fieldError{field: models.FieldDatetime, err: err}
	}

	numbers := []struct {
		field    string
		dst      *float64
		min, max float64
	}{
		{models.FieldLatitude, &rec.Latitude, -90, 90},
		{models.FieldLongitude, &rec.Longitude, -180, 180},
		{models.FieldAzimuth, &rec.Azimuth, math.Inf(-1), math.Inf(1)},
		{models.FieldHorizontalAperture, &rec.HorizontalAperture, 0, 360},
		{models.FieldCoverageRadius, &rec.CoverageRadius, 0, math.Inf(1)},
	}
	for _, n := range numbers {
		v, err := numberField(values, n.field)
		if err != nil {
			return models.PingRecord{}, err
		}
		if v < n.min || v > n.max {
			return models.PingRecord{}, &fieldError{
				field: n.field,
				err:   fmt.Errorf("value %g outside [%g, %g]", v, n.min, n.max),
			}
		}
		*n.dst = v
	}

	return rec, nil
}

// stringField returns the canonical string form of a field. Numbers are
// rendered without exponent or trailing zeros, so a caller stored as a numeric
// cell compares equal to the same number typed as text.
func stringField(values map[string]any, field string) (string, error) {
	raw, ok := values[field]
	if !ok {
		return "", &fieldError{field: field, err: errMissing}
	}

	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	case json.Number:
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", &fieldError{field: field, err: fmt.Errorf("%w %T", errType, raw)}
}

func numberField(values map[string]any, field string) (float64, error) {
	raw, ok := values[field]
	if !ok {
		return 0, &fieldError{field: field, err: errMissing}
	}

	var (
		f   float64
		err error
	)
	switch v := raw.(type) {
	case json.Number:
		f, err = v.Float64()
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, &fieldError{field: field, err: errMissing}
		}
		if strings.Contains(s, ",") {
			var ok bool
			if s, ok = decimalComma(s); !ok {
				return 0, &fieldError{field: field, err: fmt.Errorf("%w: %q", errNotNumber, v)}
			}
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, &fieldError{field: field, err: fmt.Errorf("%w %T", errType, raw)}
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &fieldError{field: field, err: fmt.Errorf("%w: %v", errNotNumber, raw)}
	}
	return f, nil
}

// decimalComma rewrites "12,5" or "12,75" to use a decimal point. Any other
// comma, such as the thousands separator in "1,500", is ambiguous and refused.
func decimalComma(s string) (string, bool) {
	if strings.Contains(s, ".") || strings.Count(s, ",") != 1 {
		return "", false
	}
	whole, frac, _ := strings.Cut(s, ",")
	if whole == "" || whole == "-" || whole == "+" || len(frac) < 1 || len(frac) > 2 {
		return "", false
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return whole + "." + frac, true
}
