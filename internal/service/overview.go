package service

import (
	"cmp"
	"slices"

	"github.com/sakif/township/internal/model"
)

// recentLimit is how many rows the dashboard lists show.
const recentLimit = 5

// OverviewService computes the dashboard figures from one snapshot.
type OverviewService struct {
	store Store
	clock Clock
}

func NewOverviewService(store Store, clock Clock) *OverviewService {
	return &OverviewService{store: store, clock: clock}
}

// AdminOverview is the admin dashboard. Payment counts cover the current
// month only; OpenIssues counts everything not yet resolved.
type AdminOverview struct {
	Month           string          `json:"month"`
	TotalResidents  int             `json:"totalResidents"`
	PaymentsPaid    int             `json:"paymentsPaid"`
	PaymentsPending int             `json:"paymentsPending"`
	Collected       float64         `json:"collected"`
	OpenIssues      int             `json:"openIssues"`
	RecentPayments  []model.Payment `json:"recentPayments"`
	RecentIssues    []model.Issue   `json:"recentIssues"`
}

func (s *OverviewService) Admin() AdminOverview {
	d := s.store.Snapshot()
	o := AdminOverview{
		Month:          s.clock.month(),
		RecentPayments: []model.Payment{},
		RecentIssues:   []model.Issue{},
	}

	for _, u := range d.Users {
		if u.Role == model.RoleResident {
			o.TotalResidents++
		}
	}
	for _, p := range d.Payments {
		if p.Status == model.PaymentPaid {
			o.RecentPayments = append(o.RecentPayments, p)
		}
		if p.Month != o.Month {
			continue
		}
		switch p.Status {
		case model.PaymentPaid:
			o.PaymentsPaid++
			o.Collected += p.Amount
		case model.PaymentPending:
			o.PaymentsPending++
		}
	}
	for _, i := range d.Issues {
		if i.Status != model.IssueResolved {
			o.OpenIssues++
		}
	}

	// Dates are YYYY-MM-DD, so string order is date order.
	slices.SortStableFunc(o.RecentPayments, func(a, b model.Payment) int {
		return cmp.Compare(b.PaymentDate, a.PaymentDate)
	})
	o.RecentPayments = o.RecentPayments[:min(recentLimit, len(o.RecentPayments))]

	o.RecentIssues = append(o.RecentIssues, d.Issues...)
	slices.SortStableFunc(o.RecentIssues, func(a, b model.Issue) int {
		return cmp.Compare(b.CreatedDate, a.CreatedDate)
	})
	o.RecentIssues = o.RecentIssues[:min(recentLimit, len(o.RecentIssues))]

	return o
}

// ResidentOverview is one flat's dashboard.
type ResidentOverview struct {
	Month               string              `json:"month"`
	PaymentStatus       model.PaymentStatus `json:"paymentStatus"`
	OpenIssues          int                 `json:"openIssues"`
	UnreadNotifications int                 `json:"unreadNotifications"`
}

// Resident reports on u's flat. Without a paid payment for the current
// month the status is pending.
func (s *OverviewService) Resident(u model.User) ResidentOverview {
	d := s.store.Snapshot()
	o := ResidentOverview{Month: s.clock.month(), PaymentStatus: model.PaymentPending}

	for _, p := range d.Payments {
		if p.FlatNumber == u.FlatNumber && p.Month == o.Month && p.Status == model.PaymentPaid {
			o.PaymentStatus = model.PaymentPaid
			break
		}
	}
	for _, i := range d.Issues {
		if i.FlatNumber == u.FlatNumber && i.Status != model.IssueResolved {
			o.OpenIssues++
		}
	}
	for _, n := range d.Notifications {
		if n.VisibleTo(u.FlatNumber) && !n.IsRead {
			o.UnreadNotifications++
		}
	}
	return o
}
