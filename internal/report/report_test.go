package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoreline/internal/dataset"
	"shoreline/internal/shoreline"
)

func TestLevelSummaries(t *testing.T) {
	series := map[shoreline.Level][]shoreline.BinValue{
		shoreline.LevelArabia: {{Longitude: 0, Value: 100}, {Longitude: 0.25, Value: 300}},
	}

	stats := LevelSummaries(series, shoreline.ModeMin)
	require.Len(t, stats, 2)

	assert.Equal(t, shoreline.LevelArabia, stats[0].Level)
	assert.Equal(t, 2, stats[0].Summary.Count)
	assert.Equal(t, 200.0, stats[0].Summary.Mean)
	assert.Equal(t, shoreline.BinValue{Longitude: 0.25, Value: 300}, stats[0].Summary.Max)

	assert.Equal(t, shoreline.LevelDeuteronilus, stats[1].Level)
	assert.True(t, stats[1].Summary.Empty())
}

func TestDiscrepancySeries(t *testing.T) {
	series := DiscrepancySeries([]shoreline.Discrepancy{
		{Longitude: 1, DistanceKm: 10},
		{Longitude: 2, DistanceKm: 0},
	})
	assert.Equal(t, []shoreline.BinValue{{Longitude: 1, Value: 10}, {Longitude: 2, Value: 0}}, series)
	assert.Empty(t, DiscrepancySeries(nil))
}

func TestWriteText(t *testing.T) {
	disc := shoreline.Describe([]shoreline.BinValue{{Longitude: 5, Value: 117.86}})
	r := Report{
		Generated: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		RunID:     "run-1",
		Tolerance: 0.25,
		RadiusKm:  shoreline.MarsMeanRadiusKm,
		Inputs: []InputStats{
			{Collection: "offsets/Arabia", Datasets: 2, Report: dataset.LoadReport{Files: 2, Rows: 40, SkippedRows: 1}},
		},
		Levels: LevelSummaries(map[shoreline.Level][]shoreline.BinValue{
			shoreline.LevelArabia: {{Longitude: 0, Value: 100}, {Longitude: 0.25, Value: 300}},
		}, shoreline.ModeMin),
		Discrepancy: &disc,
	}

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "Shoreline Comparison - Summary Report")
	assert.Contains(t, out, "Generated: 2024-03-01 12:00:00")
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "Longitude tolerance: 0.25 deg")
	assert.Contains(t, out, "Sphere radius: 3376.2 km")
	assert.Contains(t, out, "offsets/Arabia: 2 datasets, 40 rows (1 rows skipped, 0 files skipped)")
	assert.Contains(t, out, "Arabia Stats:\nMin offset mean: 200.0 km\nMin offset std:  141.4 km\n")
	assert.Contains(t, out, "Min offset max:  300.0 km at 0.25 deg E")
	assert.Contains(t, out, "Deuteronilus Stats:\nMin offset: no data\n")
	assert.Contains(t, out, "Discrepancy mean: 117.9 km")
	assert.Contains(t, out, "Discrepancy std:  0.0 km")
}

func TestWriteText_Minimal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report{Title: "Offsets"}.WriteText(&buf))
	assert.Equal(t, "Offsets\n=======\n\n\n", buf.String())
}

func TestModeLabel(t *testing.T) {
	assert.Equal(t, "Min", modeLabel(shoreline.ModeMin))
	assert.Equal(t, "Mean", modeLabel(shoreline.ModeMean))
	assert.Equal(t, "Max", modeLabel(shoreline.ModeMax))
	assert.Equal(t, "Offset", modeLabel(shoreline.ModeUnknown))
}

func TestSaveSummaryReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", SummaryFile)
	require.NoError(t, SaveSummaryReport(Report{Title: "Offsets"}, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Offsets")
}
