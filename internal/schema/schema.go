// Package schema holds the fixed column layout of every collection and the
// mapping between typed records and positional rows.
//
// ROW FORMAT:
// A table stores one header row (the field names, in schema order) followed
// by one row per record. Cells are strings. When a record is flattened, any
// field the record does not carry becomes "". When a row is parsed, any
// missing column becomes "".
//
// That means a field that was absent and a field explicitly set to "" come
// back identical after a round trip. Existing sheets rely on this, so it is
// kept as-is.
package schema

import (
	"fmt"
	"slices"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
)

var fields = map[model.Collection][]string{
	model.Users:         {"username", "password", "role", "flatNumber", "name", "email", "phone"},
	model.Payments:      {"id", "flatNumber", "residentName", "amount", "dueDate", "paymentDate", "status", "month", "year"},
	model.Issues:        {"id", "flatNumber", "residentName", "issueType", "description", "status", "priority", "createdDate", "updatedDate", "adminNotes"},
	model.Notifications: {"id", "title", "message", "type", "sentBy", "sentDate", "recipients", "isRead"},
}

var tables = map[model.Collection]string{
	model.Users:         "Users",
	model.Payments:      "Payments",
	model.Issues:        "Issues",
	model.Notifications: "Notifications",
}

// For returns the ordered field list of a collection. The returned slice is
// a copy. An unknown collection is a configuration error.
func For(c model.Collection) ([]string, error) {
	f, ok := fields[c]
	if !ok {
		return nil, apperror.ConfigurationMissing(fmt.Sprintf("schema for collection %q", c))
	}
	return slices.Clone(f), nil
}

// MustFor is For for the four known collections; it panics on anything else.
func MustFor(c model.Collection) []string {
	f, err := For(c)
	if err != nil {
		panic(err)
	}
	return f
}

// TableName returns the title of the remote table backing c.
func TableName(c model.Collection) (string, error) {
	t, ok := tables[c]
	if !ok {
		return "", apperror.ConfigurationMissing(fmt.Sprintf("table for collection %q", c))
	}
	return t, nil
}

// CollectionForTable is the inverse of TableName.
func CollectionForTable(table string) (model.Collection, bool) {
	for c, t := range tables {
		if t == table {
			return c, true
		}
	}
	return "", false
}
