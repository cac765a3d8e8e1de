// Package ingest loads ping data sets from spreadsheets or JSON documents,
// local or remote, and turns them into validated ping records.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
)

// Normalizer loads one source into ping records
type Normalizer struct {
	Source      Source
	Format      Format
	Sheet       string // empty selects the first sheet
	SkipInvalid bool   // drop invalid rows instead of failing the load
	Logger      *log.Logger
}

// Load fetches, decodes and validates the source. Records keep source order.
//
// On failure the result is nil and the error is an *IngestionError, so "no
// data" stays distinguishable from a successfully loaded empty set, which is
// returned as a non-nil empty slice.
func (n *Normalizer) Load(ctx context.Context) ([]models.PingRecord, error) {
	if n.Source == nil {
		return nil, n.fail(&IngestionError{Source: "<nil>", Err: errors.New("no source configured")})
	}
	name := n.Source.Name()
	start := time.Now()

	rows, err := n.decode(ctx)
	if err != nil {
		return nil, n.fail(&IngestionError{Source: name, Err: err})
	}

	records := make([]models.PingRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		rec, err := NormalizeRow(row.Values)
		if err == nil {
			records = append(records, rec)
			continue
		}

		ierr := &IngestionError{Source: name, Row: row.Line, Err: err}
		var fe *fieldError
		if errors.As(err, &fe) {
			ierr.Field = fe.field
			ierr.Err = fe.err
		}
		if !n.SkipInvalid {
			return nil, n.fail(ierr)
		}
		skipped++
		n.logf("skipping invalid row: %v", ierr)
	}

	n.logf("loaded %d pings from %s in %v (%d skipped)", len(records), name, time.Since(start), skipped)
	return records, nil
}

func (n *Normalizer) decode(ctx context.Context) ([]Row, error) {
	rc, err := n.Source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyDocument
	}

	format := n.Format
	if format == FormatAuto {
		if format, err = DetectFormat(n.Source.Name(), data); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatSheet:
		return DecodeSheet(bytes.NewReader(data), n.Sheet)
	case FormatJSON:
		return DecodeJSON(bytes.NewReader(data))
	}
	return nil, errUnknownFormat
}

func (n *Normalizer) fail(err *IngestionError) error {
	n.logf("%v", err)
	return err
}

func (n *Normalizer) logf(format string, args ...any) {
	if n.Logger != nil {
		n.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
