package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
)

func TestFor_KnownCollections(t *testing.T) {
	tests := []struct {
		collection model.Collection
		first      string
		length     int
	}{
		{model.Users, "username", 7},
		{model.Payments, "id", 9},
		{model.Issues, "id", 10},
		{model.Notifications, "id", 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.collection), func(t *testing.T) {
			f, err := For(tt.collection)
			require.NoError(t, err)
			assert.Len(t, f, tt.length)
			assert.Equal(t, tt.first, f[0])
		})
	}
}

func TestFor_UnknownCollectionIsConfigurationError(t *testing.T) {
	_, err := For("residents")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConfigurationMissing))
}

func TestFor_ReturnsCopy(t *testing.T) {
	f := MustFor(model.Users)
	f[0] = "mutated"

	assert.Equal(t, "username", MustFor(model.Users)[0])
}

func TestTableName(t *testing.T) {
	name, err := TableName(model.Notifications)
	require.NoError(t, err)
	assert.Equal(t, "Notifications", name)

	c, ok := CollectionForTable("Payments")
	assert.True(t, ok)
	assert.Equal(t, model.Payments, c)

	_, ok = CollectionForTable("Residents")
	assert.False(t, ok)
}

func TestFlatten_SchemaOrder(t *testing.T) {
	p := model.Payment{
		ID: "PAY-1", FlatNumber: "A101", ResidentName: "John Doe", Amount: 5000,
		DueDate: "2026-10-05", Status: model.PaymentPending, Month: "2026-10", Year: "2026",
	}

	row := Flatten(MustFor(model.Payments), p)

	assert.Equal(t, Row{"PAY-1", "A101", "John Doe", "5000", "2026-10-05", "", "pending", "2026-10", "2026"}, row)
}

func TestFlatten_UnknownFieldBecomesEmpty(t *testing.T) {
	row := Flatten([]string{"username", "shoeSize"}, model.User{Username: "admin"})

	assert.Equal(t, Row{"admin", ""}, row)
}

func TestParse_MissingColumnsDefaultToEmpty(t *testing.T) {
	u := Parse[model.User](MustFor(model.Users), Row{"resident1", "pass123", "resident"})

	assert.Equal(t, "resident1", u.Username)
	assert.Equal(t, model.RoleResident, u.Role)
	assert.Empty(t, u.FlatNumber)
	assert.Empty(t, u.Phone)
}

func TestParseAll_SkipsBlankRows(t *testing.T) {
	rows := []Row{
		{"NOT-1", "Welcome", "hi", "general", "Admin", "2026-01-26", "all", "false"},
		{"", "orphan title", "", "", "", "", "", ""},
		{},
	}

	got := ParseAll[model.Notification](MustFor(model.Notifications), rows)

	require.Len(t, got, 1)
	assert.Equal(t, "NOT-1", got[0].ID)
	assert.False(t, got[0].IsRead)
}

// The row mapping cannot tell an absent field from an empty one. The
// round trip must reproduce everything else exactly.
func TestRoundTrip_IsLossyOnlyForEmptyFields(t *testing.T) {
	fields := MustFor(model.Users)
	admin := model.User{
		Username: "admin", Password: "admin123", Role: model.RoleAdmin,
		Name: "Admin User", Email: "admin@township.com", Phone: "9876543210",
	}
	explicitEmpty := admin
	explicitEmpty.FlatNumber = ""

	got := Parse[model.User](fields, Flatten(fields, admin))

	assert.Equal(t, admin, got)
	assert.Equal(t, Flatten(fields, admin), Flatten(fields, explicitEmpty),
		"absent and explicit-empty flatNumber flatten to the same row")
}

func TestRoundTrip_AllCollections(t *testing.T) {
	issue := model.Issue{
		ID: "ISS-1", FlatNumber: "A101", ResidentName: "John Doe", IssueType: "maintenance",
		Description: "Water leakage in bathroom", Status: model.IssueInProgress, Priority: model.PriorityHigh,
		CreatedDate: "2026-01-20", UpdatedDate: "2026-01-22", AdminNotes: "Plumber assigned",
	}
	n := model.Notification{ID: "NOT-2", Title: "Water", Recipients: "all", IsRead: true}
	p := model.Payment{ID: "PAY-9", Amount: 4999.5, Status: model.PaymentPaid}

	assert.Equal(t, issue, Parse[model.Issue](MustFor(model.Issues), Flatten(MustFor(model.Issues), issue)))
	assert.Equal(t, n, Parse[model.Notification](MustFor(model.Notifications), Flatten(MustFor(model.Notifications), n)))
	assert.Equal(t, p, Parse[model.Payment](MustFor(model.Payments), Flatten(MustFor(model.Payments), p)))
}

func TestRowFromObject_LooseScalars(t *testing.T) {
	obj := map[string]any{
		"id":          "PAY-1",
		"amount":      float64(5000),
		"paymentDate": nil,
		"year":        float64(2026),
	}

	row := RowFromObject(MustFor(model.Payments), obj)

	assert.Equal(t, "PAY-1", row[0])
	assert.Equal(t, "5000", row[3])
	assert.Equal(t, "", row[5])
	assert.Equal(t, "2026", row[8])
	assert.Equal(t, "", row[1], "absent key reads as empty")
}

func TestCell(t *testing.T) {
	assert.Equal(t, "false", Cell(false))
	assert.Equal(t, "0.25", Cell(0.25))
	assert.Equal(t, "", Cell(map[string]any{"x": 1}))
}

func TestObjectFromRow(t *testing.T) {
	obj := ObjectFromRow([]string{"a", "b", "c"}, Row{"1", "2"})

	assert.Equal(t, map[string]string{"a": "1", "b": "2", "c": ""}, obj)
}
