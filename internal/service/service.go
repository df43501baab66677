// Package service holds the business rules of the township app.
//
// LAYERING:
//
//	handler (HTTP) → service (business rules) → coordinator (dataset + sync)
//
// Services never touch a store directly. Every read is taken from a
// snapshot and every write goes through Store.Mutate, which persists to the
// local cache and schedules the remote push. That keeps one rule true for
// the whole app: there is exactly one owner of the data.
//
// Services accept primitives and model types, never *http.Request, and
// return apperror values the handler layer maps to status codes.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/township/internal/coordinator"
	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/seed"
)

// Store is the part of the coordinator the services use.
type Store interface {
	Load(ctx context.Context) coordinator.Source
	Snapshot() model.Dataset
	Mutate(ctx context.Context, fn func(d *model.Dataset) error) error
	DeleteUser(ctx context.Context, username string) error

	Session(ctx context.Context) (*model.User, error)
	SetSession(ctx context.Context, u model.User) error
	ClearSession(ctx context.Context) error
}

// compile-time check that the coordinator satisfies Store
var _ Store = (*coordinator.Coordinator)(nil)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// today is the calendar date in YYYY-MM-DD form, as stored in date fields.
func (c Clock) today() string {
	return c.now().Format("2006-01-02")
}

func (c Clock) month() string {
	return seed.MonthLabel(c.now())
}

// newID builds record ids like PAY-cv37img2b7pg00cg4oeg. xid values sort by
// creation time, so ids stay roughly ordered like the old timestamp ids.
func newID(prefix string) string {
	return prefix + "-" + xid.New().String()
}

const (
	paymentPrefix      = "PAY"
	issuePrefix        = "ISS"
	notificationPrefix = "NOT"
)

// containsFold reports whether substr is within s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// filterAll is the value list filters use for "no filter".
const filterAll = "all"

func matches(filter, value string) bool {
	return filter == "" || filter == filterAll || filter == value
}
