package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/seed"
)

// UserService manages the Users collection. Only admins reach it.
type UserService struct {
	store  Store
	clock  Clock
	logger *slog.Logger
}

func NewUserService(store Store, clock Clock, logger *slog.Logger) *UserService {
	return &UserService{store: store, clock: clock, logger: logger}
}

// List returns all users in stored order.
func (s *UserService) List() []model.User {
	return s.store.Snapshot().Users
}

// Residents returns only users with the resident role.
func (s *UserService) Residents() []model.User {
	var out []model.User
	for _, u := range s.store.Snapshot().Users {
		if u.Role == model.RoleResident {
			out = append(out, u)
		}
	}
	if out == nil {
		out = []model.User{}
	}
	return out
}

// normalize trims input and drops the flat number of non-residents.
func normalizeUser(u model.User) model.User {
	u.Username = strings.TrimSpace(u.Username)
	u.FlatNumber = strings.TrimSpace(u.FlatNumber)
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	u.Phone = strings.TrimSpace(u.Phone)
	if u.Role != model.RoleResident {
		u.FlatNumber = ""
	}
	return u
}

func validateUser(u model.User) error {
	if u.Username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if u.Password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}
	if !u.Role.Valid() {
		return apperror.ValidationFailed("role", "role must be admin or resident")
	}
	if u.Role == model.RoleResident && u.FlatNumber == "" {
		return apperror.ValidationFailed("flatNumber", "residents need a flat number")
	}
	if u.Name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	return nil
}

// Create adds a user. A new resident also gets a pending maintenance
// payment for the current month, due on the 5th.
func (s *UserService) Create(ctx context.Context, u model.User) (model.User, error) {
	u = normalizeUser(u)
	if err := validateUser(u); err != nil {
		return model.User{}, err
	}

	err := s.store.Mutate(ctx, func(d *model.Dataset) error {
		if d.FindUser(u.Username) >= 0 {
			return apperror.Conflict("user", "username", u.Username)
		}
		if u.Role == model.RoleResident && d.FindUserByFlat(u.FlatNumber) >= 0 {
			return apperror.Conflict("resident", "flat number", u.FlatNumber)
		}

		d.Users = append(d.Users, u)
		if u.Role == model.RoleResident {
			month := s.clock.month()
			d.Payments = append(d.Payments, model.Payment{
				ID:           newID(paymentPrefix),
				FlatNumber:   u.FlatNumber,
				ResidentName: u.Name,
				Amount:       seed.MonthlyDue,
				DueDate:      month + "-05",
				Status:       model.PaymentPending,
				Month:        month,
				Year:         month[:4],
			})
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("user created",
		slog.String("username", u.Username),
		slog.String("role", string(u.Role)),
		slog.String("flatNumber", u.FlatNumber),
	)
	return u, nil
}

// Update replaces every field of an existing user except the username.
// The flat number must stay unique among residents, and the admin account
// keeps its role.
func (s *UserService) Update(ctx context.Context, username string, u model.User) (model.User, error) {
	u.Username = username
	u = normalizeUser(u)
	if err := validateUser(u); err != nil {
		return model.User{}, err
	}
	if username == model.AdminUsername && u.Role != model.RoleAdmin {
		return model.User{}, apperror.Forbidden("the admin user must keep the admin role")
	}

	err := s.store.Mutate(ctx, func(d *model.Dataset) error {
		idx := d.FindUser(username)
		if idx < 0 {
			return apperror.NotFound("user", username)
		}
		if u.Role == model.RoleResident {
			if other := d.FindUserByFlat(u.FlatNumber); other >= 0 && other != idx {
				return apperror.Conflict("resident", "flat number", u.FlatNumber)
			}
		}
		d.Users[idx] = u
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("user updated", slog.String("username", username))
	return u, nil
}

// Delete removes a user together with their flat's payments and issues.
func (s *UserService) Delete(ctx context.Context, username string) error {
	return s.store.DeleteUser(ctx, username)
}
