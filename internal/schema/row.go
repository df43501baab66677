package schema

import (
	"strconv"

	"github.com/sakif/township/internal/model"
)

// Row is one positional line of a table.
type Row []string

// IsBlank reports whether r should be skipped on read. An empty leading
// cell means the row has no identity.
func IsBlank(r Row) bool {
	return len(r) == 0 || r[0] == ""
}

// Flatten projects rec onto fields in order. Fields rec does not carry
// become "".
func Flatten(fields []string, rec model.FieldReader) Row {
	row := make(Row, len(fields))
	for i, f := range fields {
		if v, ok := rec.Field(f); ok {
			row[i] = v
		}
	}
	return row
}

// recordPtr constrains P to be a pointer to R that can have fields set.
type recordPtr[R any] interface {
	*R
	model.Record
}

// Parse rebuilds a typed record from a row. Missing trailing columns read
// as "".
func Parse[R any, P recordPtr[R]](fields []string, row Row) R {
	var rec R
	p := P(&rec)
	for i, f := range fields {
		v := ""
		if i < len(row) {
			v = row[i]
		}
		p.SetField(f, v)
	}
	return rec
}

// FlattenAll flattens every record of a collection.
func FlattenAll[R model.FieldReader](fields []string, recs []R) []Row {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, Flatten(fields, rec))
	}
	return rows
}

// ParseAll parses rows into records, skipping blank rows.
func ParseAll[R any, P recordPtr[R]](fields []string, rows []Row) []R {
	recs := make([]R, 0, len(rows))
	for _, row := range rows {
		if IsBlank(row) {
			continue
		}
		recs = append(recs, Parse[R, P](fields, row))
	}
	return recs
}

// RowFromObject turns a loosely-typed JSON object into a row. Numbers are
// written without an exponent, booleans as "true"/"false", null and absent
// keys as "". Nested values are not expected and read as "".
func RowFromObject(fields []string, obj map[string]any) Row {
	row := make(Row, len(fields))
	for i, f := range fields {
		row[i] = Cell(obj[f])
	}
	return row
}

// Cell renders a single decoded JSON scalar as a table cell.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// ObjectFromRow is the inverse of RowFromObject for string cells: it maps
// header names to cell values, defaulting missing columns to "".
func ObjectFromRow(header []string, row Row) map[string]string {
	obj := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(row) {
			obj[h] = row[i]
		} else {
			obj[h] = ""
		}
	}
	return obj
}
