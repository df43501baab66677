package model

import "slices"

// Dataset is one snapshot of all four collections.
//
// A Dataset is a value: the coordinator owns exactly one and hands out
// copies made with Clone, so callers can never alias its slices.
type Dataset struct {
	Users         []User         `json:"users"`
	Payments      []Payment      `json:"payments"`
	Issues        []Issue        `json:"issues"`
	Notifications []Notification `json:"notifications"`
}

// Normalize replaces nil collections with empty ones so a dataset always
// encodes as four JSON arrays, never null.
func (d *Dataset) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Payments == nil {
		d.Payments = []Payment{}
	}
	if d.Issues == nil {
		d.Issues = []Issue{}
	}
	if d.Notifications == nil {
		d.Notifications = []Notification{}
	}
}

// Clone returns a deep copy. Records hold only scalars, so copying the
// slices is enough.
func (d Dataset) Clone() Dataset {
	c := Dataset{
		Users:         slices.Clone(d.Users),
		Payments:      slices.Clone(d.Payments),
		Issues:        slices.Clone(d.Issues),
		Notifications: slices.Clone(d.Notifications),
	}
	c.Normalize()
	return c
}

// HasUsers reports whether the Users collection is non-empty. A dataset
// without users is treated as "no data".
func (d Dataset) HasUsers() bool {
	return len(d.Users) > 0
}

// Len returns the number of records in the named collection.
func (d Dataset) Len(c Collection) int {
	switch c {
	case Users:
		return len(d.Users)
	case Payments:
		return len(d.Payments)
	case Issues:
		return len(d.Issues)
	case Notifications:
		return len(d.Notifications)
	}
	return 0
}

// Subset carries any combination of collections for a remote write. A nil
// pointer means "leave that collection untouched"; a pointer to an empty
// slice clears it.
type Subset struct {
	Users         *[]User         `json:"users,omitempty"`
	Payments      *[]Payment      `json:"payments,omitempty"`
	Issues        *[]Issue        `json:"issues,omitempty"`
	Notifications *[]Notification `json:"notifications,omitempty"`
}

// All returns a Subset carrying every collection of d.
func (d Dataset) All() Subset {
	c := d.Clone()
	return Subset{
		Users:         &c.Users,
		Payments:      &c.Payments,
		Issues:        &c.Issues,
		Notifications: &c.Notifications,
	}
}

// Names lists the collections present in s, in wire order.
func (s Subset) Names() []Collection {
	var names []Collection
	if s.Users != nil {
		names = append(names, Users)
	}
	if s.Payments != nil {
		names = append(names, Payments)
	}
	if s.Issues != nil {
		names = append(names, Issues)
	}
	if s.Notifications != nil {
		names = append(names, Notifications)
	}
	return names
}

// FindUser returns the index of the user with the given username, or -1.
func (d Dataset) FindUser(username string) int {
	return slices.IndexFunc(d.Users, func(u User) bool { return u.Username == username })
}

// FindUserByFlat returns the index of the resident living in flat, or -1.
func (d Dataset) FindUserByFlat(flat string) int {
	if flat == "" {
		return -1
	}
	return slices.IndexFunc(d.Users, func(u User) bool { return u.FlatNumber == flat })
}

// RemoveFlat drops every payment and issue carrying the given flat number
// and returns how many records were removed from each collection.
func (d *Dataset) RemoveFlat(flat string) (payments, issues int) {
	if flat == "" {
		return 0, 0
	}
	before := len(d.Payments)
	d.Payments = slices.DeleteFunc(d.Payments, func(p Payment) bool { return p.FlatNumber == flat })
	payments = before - len(d.Payments)

	before = len(d.Issues)
	d.Issues = slices.DeleteFunc(d.Issues, func(i Issue) bool { return i.FlatNumber == flat })
	issues = before - len(d.Issues)
	return payments, issues
}
