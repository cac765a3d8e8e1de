package ingest

import "fmt"

// IngestionError reports a source that could not be fetched or decoded, or a
// row that does not describe a valid ping. Row is 1-based and zero when the
// failure is not tied to a row.
type IngestionError struct {
	Source string
	Row    int
	Field  string
	Err    error
}

func (e *IngestionError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("ingest %s: row %d: field %s: %v", e.Source, e.Row, e.Field, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("ingest %s: row %d: %v", e.Source, e.Row, e.Err)
	default:
		return fmt.Sprintf("ingest %s: %v", e.Source, e.Err)
	}
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// fieldError ties a validation failure to a record field
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.field, e.err)
}

func (e *fieldError) Unwrap() error {
	return e.err
}
