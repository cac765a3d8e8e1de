package main

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/antenna-coverage-map/pkg/models"
	"github.com/1F47E/antenna-coverage-map/pkg/sector"
	"github.com/1F47E/antenna-coverage-map/pkg/state"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

func TestParseBBox(t *testing.T) {
	box, err := parseBBox("40.1, -3.9,40.6,-3.2")
	require.NoError(t, err)
	assert.Equal(t, models.BoundingBox{
		BottomLeft: models.Location{Lat: 40.1, Lon: -3.9},
		TopRight:   models.Location{Lat: 40.6, Lon: -3.2},
	}, box)

	for _, bad := range []string{"", "1,2,3", "1,2,3,x", "1,2,3,4,5"} {
		_, err := parseBBox(bad)
		assert.Error(t, err, bad)
	}
}

func TestSummarize(t *testing.T) {
	records := []models.PingRecord{
		{AntennaID: "A", Caller: "1", Datetime: "02-01-2024 10:00"},
		{AntennaID: "A", Caller: "2", Datetime: "01-01-2024 09:00"},
		{AntennaID: "B", Caller: "1", Datetime: "not a date"},
		{AntennaID: "C", Caller: "1", Datetime: "03-01-2024 08:30"},
	}

	s := summarize(records)
	assert.Equal(t, 2, s.callers)
	assert.Equal(t, 3, s.antennas)
	require.True(t, s.hasSpan)
	assert.Equal(t, "01-01-2024 09:00", s.first.Format("02-01-2006 15:04"))
	assert.Equal(t, "03-01-2024 08:30", s.last.Format("02-01-2006 15:04"))

	assert.False(t, summarize(nil).hasSpan)
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"load", "filter", "render", "browse"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, newBrowseModel(context.Background(), sector.DefaultGradient).Init())
	assert.NotNil(t, loadDataCmd(context.Background()))
}

func TestBrowseApplyFilter(t *testing.T) {
	m := newBrowseModel(context.Background(), sector.DefaultGradient)
	assert.False(t, m.view.Loaded())

	records := []models.PingRecord{
		{AntennaID: "A", Caller: "600", Datetime: "01-01-2024 10:00", CoverageRadius: 100},
		{AntennaID: "B", Caller: "700", Datetime: "01-01-2024 11:00", CoverageRadius: 200},
		{AntennaID: "C", Caller: "600", Datetime: "02-01-2024 10:00", CoverageRadius: 300},
	}
	msg := loadedMsg{view: state.Load(records, temporal.NewEngine(false, log.New(io.Discard, "", 0)))}
	next, _ := m.Update(msg)
	m = next.(browseModel)
	require.True(t, m.view.Loaded())
	assert.Len(t, m.view.Visible(), 3)

	m.inputs[inputPhones].SetValue("600")
	m.applyFilter()
	assert.NoError(t, m.filterErr)
	assert.Len(t, m.view.Visible(), 2)

	m.inputs[inputDate].SetValue("31-02-2024x")
	m.applyFilter()
	assert.Error(t, m.filterErr)
	assert.Len(t, m.view.Visible(), 2, "a rejected filter keeps the previous result")
}
