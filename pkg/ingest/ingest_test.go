package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

const pingsJSON = `[
  {"antennaId": 1001, "caller": 600111222, "datetime": "31-01-2024 23:59:59",
   "latitude": 40.4168, "longitude": -3.7038, "azimuth": 90, "horizontalAperture": 120, "coverageRadius": 1500},
  {"antennaId": "B-2", "caller": "600333444", "datetime": "1-2-2024 8:05",
   "latitude": "41.3874", "longitude": "2.1686", "azimuth": "270", "horizontalAperture": "65,5", "coverageRadius": "800"}
]`

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeSheet(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func sheetHeader() []any {
	header := make([]any, len(models.Fields))
	for i, f := range models.Fields {
		header[i] = f
	}
	return header
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoadJSONFile(t *testing.T) {
	n := &Normalizer{Source: FileSource{Path: writeTemp(t, "pings.json", []byte(pingsJSON))}, Logger: quietLogger()}

	records, err := n.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.PingRecord{
		AntennaID:          "1001",
		Caller:             "600111222",
		Datetime:           "31-01-2024 23:59:59",
		Latitude:           40.4168,
		Longitude:          -3.7038,
		Azimuth:            90,
		HorizontalAperture: 120,
		CoverageRadius:     1500,
	}, records[0])

	assert.Equal(t, "B-2", records[1].AntennaID)
	assert.Equal(t, "600333444", records[1].Caller)
	assert.Equal(t, 65.5, records[1].HorizontalAperture)
	assert.Equal(t, 2.1686, records[1].Longitude)
}

func TestLoadSheet(t *testing.T) {
	data := writeSheet(t, [][]any{
		sheetHeader(),
		{"A1", 600111222, "31-01-2024 23:59:59", 40.4168, -3.7038, 90, 120, 1500},
		{"", "", "", "", "", "", "", ""},
		{"A2", "600333444", "01-02-2024 10:15", 41.3874, 2.1686, 270, 65, 800},
	})

	n := &Normalizer{Source: FileSource{Path: writeTemp(t, "pings.xlsx", data)}, Logger: quietLogger()}
	records, err := n.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A1", records[0].AntennaID)
	assert.Equal(t, "600111222", records[0].Caller)
	assert.Equal(t, 40.4168, records[0].Latitude)
	assert.Equal(t, "A2", records[1].AntennaID)
	assert.Equal(t, 800.0, records[1].CoverageRadius)
}

func TestLoadSheetMissingCellFails(t *testing.T) {
	data := writeSheet(t, [][]any{
		sheetHeader(),
		{"A1", "600111222", "31-01-2024 23:59:59", 40.4, -3.7, 90, 120},
	})

	n := &Normalizer{Source: FileSource{Path: writeTemp(t, "short.xlsx", data)}, Logger: quietLogger()}
	records, err := n.Load(context.Background())
	assert.Nil(t, records)

	var ierr *IngestionError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, 2, ierr.Row)
	assert.Equal(t, models.FieldCoverageRadius, ierr.Field)
	assert.True(t, errors.Is(err, errMissing))
}

func TestLoadDetectsFormatFromContent(t *testing.T) {
	sheet := writeSheet(t, [][]any{
		sheetHeader(),
		{"A1", "1", "01-01-2024 00:00", 0, 0, 0, 0, 0},
	})

	for name, data := range map[string][]byte{"json": []byte(pingsJSON), "sheet": sheet} {
		t.Run(name, func(t *testing.T) {
			n := &Normalizer{Source: FileSource{Path: writeTemp(t, "pings.bin", data)}, Logger: quietLogger()}
			records, err := n.Load(context.Background())
			require.NoError(t, err)
			assert.NotEmpty(t, records)
		})
	}
}

func TestLoadHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, pingsJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	n := &Normalizer{Source: NewSource(server.URL+"/data.json", server.Client()), Logger: quietLogger()}
	records, err := n.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	n.Source = NewSource(server.URL+"/missing.json", server.Client())
	records, err = n.Load(context.Background())
	assert.Nil(t, records)

	var ierr *IngestionError
	require.True(t, errors.As(err, &ierr))
	assert.Contains(t, ierr.Error(), "404")
}

func TestLoadFailures(t *testing.T) {
	testCases := []struct {
		name   string
		file   string
		data   string
		format Format
	}{
		{"empty file", "empty.json", "", FormatAuto},
		{"not an array", "object.json", `{"caller": "1"}`, FormatAuto},
		{"malformed json", "broken.json", `[{"caller": }]`, FormatAuto},
		{"unknown format", "pings.txt", "caller,datetime", FormatAuto},
		{"not a workbook", "fake.xlsx", "not a zip", FormatAuto},
		{"forced json on text", "pings.txt", "hello", FormatJSON},
		{"trailing text", "junk.json", `[] junk`, FormatAuto},
		{"second array", "twice.json", "[]\n[]", FormatAuto},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := &Normalizer{
				Source: FileSource{Path: writeTemp(t, tc.file, []byte(tc.data))},
				Format: tc.format,
				Logger: quietLogger(),
			}
			records, err := n.Load(context.Background())
			assert.Nil(t, records)

			var ierr *IngestionError
			require.True(t, errors.As(err, &ierr), "got %v", err)
			assert.Equal(t, 0, ierr.Row)
		})
	}

	n := &Normalizer{Source: FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}, Logger: quietLogger()}
	_, err := n.Load(context.Background())
	var ierr *IngestionError
	require.True(t, errors.As(err, &ierr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadEmptyArrayIsNotNil(t *testing.T) {
	n := &Normalizer{Source: FileSource{Path: writeTemp(t, "empty.json", []byte("[]"))}, Logger: quietLogger()}
	records, err := n.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestLoadSkipInvalid(t *testing.T) {
	doc := `[
	  {"antennaId": "ok", "caller": "1", "datetime": "01-01-2024 00:00", "latitude": 1, "longitude": 1, "azimuth": 0, "horizontalAperture": 90, "coverageRadius": 10},
	  {"antennaId": "bad-date", "caller": "1", "datetime": "32-01-2024 00:00", "latitude": 1, "longitude": 1, "azimuth": 0, "horizontalAperture": 90, "coverageRadius": 10},
	  {"antennaId": "ok-2", "caller": "2", "datetime": "02-01-2024 00:00", "latitude": 1, "longitude": 1, "azimuth": 0, "horizontalAperture": 90, "coverageRadius": 10}
	]`
	path := writeTemp(t, "mixed.json", []byte(doc))

	var logs bytes.Buffer
	n := &Normalizer{Source: FileSource{Path: path}, SkipInvalid: true, Logger: log.New(&logs, "", 0)}
	records, err := n.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ok", records[0].AntennaID)
	assert.Equal(t, "ok-2", records[1].AntennaID)
	assert.Contains(t, logs.String(), "row 2")

	n.SkipInvalid = false
	n.Logger = quietLogger()
	_, err = n.Load(context.Background())
	var ierr *IngestionError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, models.FieldDatetime, ierr.Field)

	var dpe *temporal.DateParseError
	assert.True(t, errors.As(err, &dpe))
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := &Normalizer{Source: FileSource{Path: writeTemp(t, "pings.json", []byte(pingsJSON))}, Logger: quietLogger()}
	_, err := n.Load(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNormalizeRowValidation(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"antennaId": "A", "caller": "1", "datetime": "01-01-2024 00:00",
			"latitude": "0", "longitude": "0", "azimuth": "0",
			"horizontalAperture": "90", "coverageRadius": "100",
		}
	}

	_, err := NormalizeRow(valid())
	require.NoError(t, err)

	testCases := []struct {
		field string
		value any
	}{
		{"latitude", "90.5"},
		{"longitude", "-181"},
		{"horizontalAperture", "-1"},
		{"horizontalAperture", "400"},
		{"coverageRadius", "-10"},
		{"azimuth", "north"},
		{"latitude", ""},
		{"caller", []any{"1"}},
		{"datetime", "2024-01-01 00:00"},
		{"coverageRadius", "1,500"},
		{"coverageRadius", "1,500.5"},
		{"coverageRadius", "1,2,3"},
		{"latitude", ",5"},
	}

	for _, tc := range testCases {
		t.Run(tc.field, func(t *testing.T) {
			values := valid()
			values[tc.field] = tc.value
			_, err := NormalizeRow(values)

			var fe *fieldError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tc.field, fe.field)
		})
	}

	numbers := []struct {
		field string
		raw   string
		want  float64
	}{
		{"coverageRadius", "12,5", 12.5},
		{"coverageRadius", "1500", 1500},
		{"longitude", "-3,75", -3.75},
	}
	for _, tc := range numbers {
		values := valid()
		values[tc.field] = tc.raw
		rec, err := NormalizeRow(values)
		require.NoError(t, err, tc.raw)
		got := rec.CoverageRadius
		if tc.field == "longitude" {
			got = rec.Longitude
		}
		assert.Equal(t, tc.want, got, tc.raw)
	}

	for _, field := range models.Fields {
		values := valid()
		delete(values, field)
		_, err := NormalizeRow(values)
		assert.True(t, errors.Is(err, errMissing), "field %s", field)
	}
}

func TestDecodeJSONTrailingData(t *testing.T) {
	rows, err := DecodeJSON(strings.NewReader("[{\"caller\": 1}]\n\t "))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	for _, doc := range []string{`[{"caller": 1}] junk`, `[{"caller": 1}]]`, `[] {}`} {
		_, err := DecodeJSON(strings.NewReader(doc))
		assert.ErrorIs(t, err, errTrailingData, doc)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "AUTO": FormatAuto, "xlsx": FormatSheet, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("https://example.com/data/pings.XLSX?token=1", nil)
	require.NoError(t, err)
	assert.Equal(t, FormatSheet, f)

	f, err = DetectFormat("pings", []byte("  \n[{}]"))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = DetectFormat("pings.csv", []byte("a,b"))
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "detect"))
}
