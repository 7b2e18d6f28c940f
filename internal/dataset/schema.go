package dataset

import (
	"fmt"
	"strings"

	apperrors "shoreline/internal/errors"
)

const bom = "\uFEFF"

// Column describes how one field is located in a row. Names are matched
// against the header case-insensitively; when none matches, a non-zero
// Position counts from the end of the row (-1 is the last cell).
type Column struct {
	Names    []string
	Position int
	Required bool
}

// Schema maps the header of an export to point fields
type Schema struct {
	Longitude Column
	Latitude  Column
	Value     Column
}

// OffsetSchema reads lateral-offset exports: Lon plus the offset column
func OffsetSchema(valueColumn string) Schema {
	return Schema{
		Longitude: Column{Names: []string{"Lon", "Longitude"}, Required: true},
		Latitude:  Column{Names: []string{"Lat", "Latitude"}},
		Value:     Column{Names: []string{valueColumn}, Required: true},
	}
}

// ElevationSchema reads elevation exports, whose header capitalization varies
func ElevationSchema(valueColumn string) Schema {
	return Schema{
		Longitude: Column{Names: []string{"Lon", "Longitude"}, Required: true},
		Latitude:  Column{Names: []string{"Lat", "Latitude"}},
		Value:     Column{Names: []string{valueColumn, "Elevation", "Elev", "Z"}, Required: true},
	}
}

// PointsSchema reads vertex exports ending in "..., lat, lon". Named Lat and
// Lon headers win over the trailing positions.
func PointsSchema() Schema {
	return Schema{
		Longitude: Column{Names: []string{"Lon", "Longitude"}, Position: -1, Required: true},
		Latitude:  Column{Names: []string{"Lat", "Latitude"}, Position: -2, Required: true},
	}
}

// VertexSchema reads remapped vertex exports ending in "..., lat, lon, elev"
func VertexSchema() Schema {
	return Schema{
		Longitude: Column{Names: []string{"Lon", "Longitude"}, Position: -2, Required: true},
		Latitude:  Column{Names: []string{"Lat", "Latitude"}, Position: -3, Required: true},
		Value:     Column{Names: []string{"Elev", "Elevation", "Elevation [m]"}, Position: -1, Required: true},
	}
}

// index is a resolved column: 1-based from the row start when positive,
// counted from the row end when negative, zero when absent
type index int

const absent index = 0

// at returns the cell an index refers to
func (i index) at(row []string) (string, bool) {
	pos := int(i)
	if i < 0 {
		pos = len(row) + int(i)
	} else {
		pos--
	}
	if pos < 0 || pos >= len(row) {
		return "", false
	}
	return row[pos], true
}

func (i index) present() bool {
	return i != absent
}

// layout is a schema resolved against one header
type layout struct {
	lon, lat, value index
}

func (s Schema) resolve(header []string) (layout, error) {
	normalized := make(map[string]int, len(header))
	for i, name := range header {
		key := normalizeHeader(name)
		if _, dup := normalized[key]; !dup {
			normalized[key] = i
		}
	}

	var l layout
	var missing []string
	for _, c := range []struct {
		name   string
		column Column
		dst    *index
	}{
		{"longitude", s.Longitude, &l.lon},
		{"latitude", s.Latitude, &l.lat},
		{"value", s.Value, &l.value},
	} {
		idx := c.column.lookup(normalized, len(header))
		if !idx.present() && c.column.Required {
			missing = append(missing, c.name)
		}
		*c.dst = idx
	}

	if len(missing) > 0 {
		return layout{}, apperrors.NewParsingError(
			fmt.Sprintf("no column for %s", strings.Join(missing, ", ")),
			apperrors.ErrSchemaMismatch).WithContext("header", header)
	}

	return l, nil
}

func (c Column) lookup(header map[string]int, width int) index {
	for _, name := range c.Names {
		if i, ok := header[normalizeHeader(name)]; ok {
			return index(i + 1)
		}
	}
	if c.Position < 0 && -c.Position <= width {
		return index(c.Position)
	}
	return absent
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, bom)))
}
