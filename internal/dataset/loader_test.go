package dataset

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "shoreline/internal/errors"
	"shoreline/internal/files"
	"shoreline/internal/shoreline"
)

const offsetColumn = "Geodesic Length [km]"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeGzip(t *testing.T, dir, name, content string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return writeFile(t, dir, name, buf.String())
}

func writeWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func offsetLoader(exts ...string) *Loader {
	if len(exts) == 0 {
		exts = []string{".csv", ".txt"}
	}
	return NewLoader(Options{
		Schema: OffsetSchema(offsetColumn),
		Grid:   shoreline.MustGrid(0.25),
		Filter: files.Filter{Extensions: exts, Exclude: []string{"2007"}, Recursive: true},
	}, discardLogger())
}

func TestLoadDir_OffsetExports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Parker1993_Arabia.csv", "Lon,Lat,Geodesic Length [km]\n-180.0,10,5\n179.9,11,7\n0.13,12,Null\n")
	writeFile(t, dir, "Carr2003_Arabia.txt", "Lon,Geodesic Length [km]\n10.1,100\n")
	writeFile(t, dir, "Perron2007_Arabia.csv", "Lon,Geodesic Length [km]\n10,1\n")
	writeFile(t, dir, "notes.md", "ignored")

	datasets, report, err := offsetLoader().LoadDir(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	// lexical order decides source ids
	carr, parker := datasets[0], datasets[1]
	assert.Equal(t, "Carr2003", carr.Label)
	assert.Equal(t, 0, carr.Source)
	assert.Equal(t, "Parker1993", parker.Label)
	assert.Equal(t, 1, parker.Source)
	assert.Equal(t, shoreline.LevelArabia, parker.Level)
	assert.Equal(t, "Parker1993_Arabia.csv", parker.Name)

	require.Len(t, parker.Points, 3)
	assert.Equal(t, 180.0, parker.Points[0].Longitude)
	assert.Equal(t, 180.0, parker.Points[1].Longitude)
	assert.Equal(t, 0.25, parker.Points[2].Longitude)
	assert.Equal(t, 11.0, parker.Points[1].Latitude)
	assert.True(t, math.IsNaN(parker.Points[2].Value), "Null reads as missing")
	for _, p := range parker.Points {
		assert.Equal(t, 1, p.Source)
	}

	require.Len(t, carr.Points, 1)
	assert.False(t, carr.Points[0].HasLatitude())
	assert.Equal(t, 10.0, carr.Points[0].Longitude)

	assert.Equal(t, LoadReport{Files: 2, Rows: 4}, report)
}

func TestLoadDir_SkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Ivanov2017_Deuteronilus.csv", "Lon,Lat,Geodesic Length [km]\n"+
		"10,5,1\n"+
		"abc,5,1\n"+ // non-numeric longitude
		"200,5,1\n"+ // longitude out of range
		"10,95,1\n"+ // latitude out of range
		"10\n"+ // too short
		",,\n"+ // blank
		",5,1\n"+ // null longitude
		"10,5,oops\n"+ // non-numeric value
		"11,,2\n")

	datasets, report, err := offsetLoader().LoadDir(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Len(t, datasets, 1)

	points := datasets[0].Points
	require.Len(t, points, 2)
	assert.Equal(t, 10.0, points[0].Longitude)
	assert.True(t, math.IsNaN(points[1].Latitude))
	assert.Equal(t, 2.0, points[1].Value)

	assert.Equal(t, LoadReport{Files: 1, Rows: 2, SkippedRows: 7}, report)
}

func TestLoadDir_SkipsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_Arabia.csv", "Lon,Lat\n10,5\n")
	writeFile(t, dir, "b_Arabia.csv", "")
	writeFile(t, dir, "c_Arabia.csv", "Lon,Geodesic Length [km]\n10,3\n")

	datasets, report, err := offsetLoader().LoadDir(context.Background(), dir, 5)
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "c_Arabia.csv", datasets[0].Name)
	assert.Equal(t, 5, datasets[0].Source, "skipped files do not consume source ids")
	assert.Equal(t, 2, report.SkippedFiles)
	assert.Equal(t, 1, report.Files)
}

func TestLoadDir_EmptyAndMissing(t *testing.T) {
	datasets, report, err := offsetLoader().LoadDir(context.Background(), t.TempDir(), 0)
	require.NoError(t, err)
	assert.Empty(t, datasets)
	assert.Equal(t, LoadReport{}, report)

	_, _, err = offsetLoader().LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"), 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestLoadDir_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "Lon,Geodesic Length [km]\n10,3\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := offsetLoader().LoadDir(ctx, dir, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadDir_CompressedAndWorkbook(t *testing.T) {
	dir := t.TempDir()
	writeGzip(t, dir, "Carr2003_Deuteronilus.csv.gz", "Lon,Geodesic Length [km]\n20.2,300\n")
	writeWorkbook(t, dir, "Parker1989_Deuteronilus.xlsx", [][]interface{}{
		{"Lon", "Lat", offsetColumn},
		{30.1, 40.5, 12.5},
		{"bad", 40, 1},
	})

	datasets, report, err := offsetLoader(".csv", ".xlsx").LoadDir(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	assert.Equal(t, "Carr2003", datasets[0].Label)
	require.Len(t, datasets[0].Points, 1)
	assert.Equal(t, 20.25, datasets[0].Points[0].Longitude)
	assert.Equal(t, 300.0, datasets[0].Points[0].Value)

	assert.Equal(t, "Parker1989", datasets[1].Label)
	require.Len(t, datasets[1].Points, 1)
	assert.Equal(t, 30.0, datasets[1].Points[0].Longitude)
	assert.Equal(t, 40.5, datasets[1].Points[0].Latitude)
	assert.Equal(t, 12.5, datasets[1].Points[0].Value)

	assert.Equal(t, 1, report.SkippedRows)
}

func TestLoadFile_PositionalPoints(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "remap.csv", "OBJECTID,NAME,Y,X\n1,shore,12.5,-179.95\n2,shore,13,45.1\n")

	loader := NewLoader(Options{Schema: PointsSchema(), Grid: shoreline.MustGrid(0.25)}, discardLogger())
	ds, report, err := loader.LoadFile(context.Background(), path, 3)
	require.NoError(t, err)

	require.Len(t, ds.Points, 2)
	assert.Equal(t, 12.5, ds.Points[0].Latitude)
	assert.Equal(t, 180.0, ds.Points[0].Longitude)
	assert.Equal(t, 3, ds.Points[0].Source)
	assert.False(t, ds.Points[0].HasValue())
	assert.Equal(t, 45.0, ds.Points[1].Longitude)
	assert.Equal(t, shoreline.LevelUnknown, ds.Level)
	assert.Equal(t, "remap", ds.Label)
	assert.Equal(t, 1, report.Files)
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := offsetLoader().LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestLoadFile_ErrorLocation(t *testing.T) {
	dir := t.TempDir()

	t.Run("header mismatch points at the header line", func(t *testing.T) {
		path := writeFile(t, dir, "a_Arabia.csv", "Lon,Lat\n10,5\n")
		_, _, err := offsetLoader().LoadFile(context.Background(), path, 0)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, path+":1", appErr.Location())
		assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
	})

	t.Run("empty file names the file", func(t *testing.T) {
		path := writeFile(t, dir, "b_Arabia.csv", "")
		_, _, err := offsetLoader().LoadFile(context.Background(), path, 0)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, path, appErr.Location())
	})

	t.Run("skipped rows are logged with file and line", func(t *testing.T) {
		path := writeFile(t, dir, "c_Arabia.csv", "Lon,Geodesic Length [km]\n10,3\nabc,4\n")
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
		loader := NewLoader(Options{Schema: OffsetSchema(offsetColumn)}, logger)

		_, report, err := loader.LoadFile(context.Background(), path, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, report.SkippedRows)
		assert.Contains(t, logs.String(), "location="+path+":3")
		assert.Contains(t, logs.String(), "malformed row")
	})
}

func TestNewLoader_DefaultGrid(t *testing.T) {
	loader := NewLoader(Options{Schema: PointsSchema()}, nil)
	assert.Equal(t, shoreline.DefaultTolerance, loader.opts.Grid.Tolerance())
	assert.Equal(t, DefaultNullValues, loader.opts.NullValues)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Parker1993_Arabia.csv", "Parker1993"},
		{"Offsets_Carr2003_Deuteronilus.txt", "Carr2003"},
		{"DiAchille2010_Deltas_Z.csv", "DiAchille2010"},
		{"mapping.csv.gz", "mapping"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.name), tt.name)
	}
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, shoreline.LevelArabia, LevelOf("/x/Parker1993_Arabia.csv"))
	assert.Equal(t, shoreline.LevelDeuteronilus, LevelOf("/x/Deuteronilus/Parker1993.csv"))
	assert.Equal(t, shoreline.LevelArabia, LevelOf("/Deuteronilus/Carr2003_Arabia.csv"), "file name wins")
	assert.Equal(t, shoreline.LevelUnknown, LevelOf("/x/y/z.csv"))
}
