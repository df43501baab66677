package model

// Role is either admin or resident.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleResident Role = "resident"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleResident
}

// AdminUsername identifies the built-in administrator. That record always
// exists and can never be deleted.
const AdminUsername = "admin"

// User is a login identity. Residents carry a unique FlatNumber; admins don't.
//
// PASSWORDS ARE STORED IN CLEAR TEXT.
// That is how the backing sheet has always held them and both stores
// round-trip the value unchanged. It is a known weakness, kept on purpose
// so existing data keeps working; see DESIGN.md.
type User struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	FlatNumber string `json:"flatNumber,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// IsResident reports whether u is a resident with a flat assigned.
func (u User) IsResident() bool {
	return u.Role == RoleResident && u.FlatNumber != ""
}

func (u User) Field(name string) (string, bool) {
	switch name {
	case "username":
		return u.Username, true
	case "password":
		return u.Password, true
	case "role":
		return string(u.Role), true
	case "flatNumber":
		return u.FlatNumber, true
	case "name":
		return u.Name, true
	case "email":
		return u.Email, true
	case "phone":
		return u.Phone, true
	}
	return "", false
}

func (u *User) SetField(name, value string) {
	switch name {
	case "username":
		u.Username = value
	case "password":
		u.Password = value
	case "role":
		u.Role = Role(value)
	case "flatNumber":
		u.FlatNumber = value
	case "name":
		u.Name = value
	case "email":
		u.Email = value
	case "phone":
		u.Phone = value
	}
}
