// Package model defines the records held by the four collections and the
// dataset that bundles them.
//
// Records are plain value types. The only relationship between collections
// is the flatNumber foreign key, which no store enforces.
package model

// Collection names one of the four fixed record sets.
type Collection string

const (
	Users         Collection = "users"
	Payments      Collection = "payments"
	Issues        Collection = "issues"
	Notifications Collection = "notifications"
)

// Collections lists every collection in wire order.
func Collections() []Collection {
	return []Collection{Users, Payments, Issues, Notifications}
}

// FieldReader exposes a record's fields by their wire name so rows can be
// built positionally. Field reports ok=false for names the record does not
// carry.
type FieldReader interface {
	Field(name string) (value string, ok bool)
}

// Record is implemented by pointers to every record type. Unknown names
// passed to SetField are ignored.
type Record interface {
	FieldReader
	SetField(name, value string)
}
