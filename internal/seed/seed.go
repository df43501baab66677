// Package seed provides the bootstrap dataset used on first run, when
// neither the remote store nor the local cache has any users.
package seed

import (
	"time"

	"github.com/sakif/township/internal/model"
)

// MonthlyDue is the maintenance amount charged to every flat each month.
const MonthlyDue = 5000

// MonthLabel formats t as YYYY-MM.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}

// Dataset returns the seed records. It performs no I/O. Only the month
// labels of the payments depend on now (current and previous month, in
// UTC); every other value is fixed.
func Dataset(now time.Time) model.Dataset {
	now = now.UTC()
	current := MonthLabel(now)
	// First of this month minus one day is always inside the previous month.
	previous := MonthLabel(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))

	return model.Dataset{
		Users:         users(),
		Payments:      payments(current, previous),
		Issues:        issues(),
		Notifications: notifications(),
	}
}

func users() []model.User {
	return []model.User{
		{Username: model.AdminUsername, Password: "admin123", Role: model.RoleAdmin, Name: "Admin User", Email: "admin@township.com", Phone: "9876543210"},
		{Username: "resident1", Password: "pass123", Role: model.RoleResident, FlatNumber: "A101", Name: "John Doe", Email: "john@example.com", Phone: "9876543211"},
		{Username: "resident2", Password: "pass123", Role: model.RoleResident, FlatNumber: "A102", Name: "Jane Smith", Email: "jane@example.com", Phone: "9876543212"},
		{Username: "resident3", Password: "pass123", Role: model.RoleResident, FlatNumber: "B201", Name: "Bob Johnson", Email: "bob@example.com", Phone: "9876543213"},
	}
}

func payments(current, previous string) []model.Payment {
	due := func(id, flat, name, month, paidOn string) model.Payment {
		p := model.Payment{
			ID:           id,
			FlatNumber:   flat,
			ResidentName: name,
			Amount:       MonthlyDue,
			DueDate:      month + "-05",
			Status:       model.PaymentPending,
			Month:        month,
			Year:         month[:4],
		}
		if paidOn != "" {
			p.PaymentDate = month + "-" + paidOn
			p.Status = model.PaymentPaid
		}
		return p
	}

	return []model.Payment{
		due("PAY-1", "A101", "John Doe", current, "03"),
		due("PAY-2", "A102", "Jane Smith", current, ""),
		due("PAY-3", "B201", "Bob Johnson", current, ""),
		due("PAY-4", "A101", "John Doe", previous, "04"),
	}
}

func issues() []model.Issue {
	return []model.Issue{
		{ID: "ISS-1", FlatNumber: "A101", ResidentName: "John Doe", IssueType: "maintenance", Description: "Water leakage in bathroom", Status: model.IssueInProgress, Priority: model.PriorityHigh, CreatedDate: "2026-01-20", UpdatedDate: "2026-01-22", AdminNotes: "Plumber assigned"},
		{ID: "ISS-2", FlatNumber: "A102", ResidentName: "Jane Smith", IssueType: "complaint", Description: "Noise from neighboring flat", Status: model.IssueOpen, Priority: model.PriorityMedium, CreatedDate: "2026-01-24", UpdatedDate: "2026-01-24"},
		{ID: "ISS-3", FlatNumber: "B201", ResidentName: "Bob Johnson", IssueType: "request", Description: "Request for parking space", Status: model.IssueResolved, Priority: model.PriorityLow, CreatedDate: "2026-01-15", UpdatedDate: "2026-01-18", AdminNotes: "Parking space allocated"},
	}
}

func notifications() []model.Notification {
	return []model.Notification{
		{ID: "NOT-1", Title: "Monthly Maintenance Due", Message: "Please pay your monthly maintenance fee by 5th of this month.", Type: "payment", SentBy: "Admin User", SentDate: "2026-01-01", Recipients: model.RecipientsAll},
		{ID: "NOT-2", Title: "Water Supply Interruption", Message: "Water supply will be interrupted tomorrow from 10 AM to 2 PM for maintenance work.", Type: "urgent", SentBy: "Admin User", SentDate: "2026-01-20", Recipients: model.RecipientsAll},
	}
}
