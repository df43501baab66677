package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
)

func newResident(username, flat string) model.User {
	return model.User{Username: username, Password: "pw", Role: model.RoleResident, FlatNumber: flat, Name: "New " + strings.TrimSpace(flat)}
}

func TestCreateUser_ResidentGetsPendingPayment(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, fixedClock, testLogger())

	u, err := svc.Create(context.Background(), newResident("resident4", " C301 "))

	require.NoError(t, err)
	assert.Equal(t, "C301", u.FlatNumber, "input is trimmed")

	var created []model.Payment
	for _, p := range store.Snapshot().Payments {
		if p.FlatNumber == "C301" {
			created = append(created, p)
		}
	}
	require.Len(t, created, 1)
	p := created[0]
	assert.True(t, strings.HasPrefix(p.ID, "PAY-"))
	assert.Equal(t, model.PaymentPending, p.Status)
	assert.Equal(t, float64(5000), p.Amount)
	assert.Equal(t, "2026-03", p.Month)
	assert.Equal(t, "2026-03-05", p.DueDate)
	assert.Equal(t, "2026", p.Year)
	assert.Empty(t, p.PaymentDate)
	assert.Equal(t, "New C301", p.ResidentName)
}

func TestCreateUser_AdminGetsNoPaymentOrFlat(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, fixedClock, testLogger())
	before := len(store.Snapshot().Payments)

	u, err := svc.Create(context.Background(), model.User{
		Username: "manager", Password: "pw", Role: model.RoleAdmin, FlatNumber: "Z9", Name: "Manager",
	})

	require.NoError(t, err)
	assert.Empty(t, u.FlatNumber)
	assert.Len(t, store.Snapshot().Payments, before)
}

func TestCreateUser_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		user    model.User
		wantErr error
	}{
		{"duplicate username", newResident("resident1", "C301"), apperror.ErrConflict},
		{"duplicate flat", newResident("resident9", "A101"), apperror.ErrConflict},
		{"resident without flat", newResident("resident9", ""), apperror.ErrValidation},
		{"missing password", model.User{Username: "x", Role: model.RoleAdmin, Name: "X"}, apperror.ErrValidation},
		{"bad role", model.User{Username: "x", Password: "p", Role: "owner", Name: "X"}, apperror.ErrValidation},
		{"missing name", model.User{Username: "x", Password: "p", Role: model.RoleAdmin}, apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			svc := NewUserService(store, fixedClock, testLogger())
			before := store.Snapshot()

			_, err := svc.Create(context.Background(), tt.user)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, store.Snapshot())
		})
	}
}

func TestUpdateUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, fixedClock, testLogger())
	changed := newResident("ignored", "A101")
	changed.Name = "John Q. Doe"

	u, err := svc.Update(context.Background(), "resident1", changed)

	require.NoError(t, err)
	assert.Equal(t, "resident1", u.Username, "username can't change")
	snap := store.Snapshot()
	assert.Equal(t, "John Q. Doe", snap.Users[snap.FindUser("resident1")].Name)
}

func TestUpdateUser_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		username string
		user     model.User
		wantErr  error
	}{
		{"unknown", "ghost", newResident("", "Z1"), apperror.ErrNotFound},
		{"flat taken", "resident1", newResident("", "A102"), apperror.ErrConflict},
		{"demote admin", "admin", model.User{Password: "p", Role: model.RoleResident, FlatNumber: "Z1", Name: "A"}, apperror.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(newTestStore(t), fixedClock, testLogger())

			_, err := svc.Update(context.Background(), tt.username, tt.user)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDeleteUser_Cascade(t *testing.T) {
	store := newTestStore(t)
	svc := NewUserService(store, fixedClock, testLogger())

	require.NoError(t, svc.Delete(context.Background(), "resident2"))

	snap := store.Snapshot()
	assert.Len(t, snap.Users, 3)
	for _, p := range snap.Payments {
		assert.NotEqual(t, "A102", p.FlatNumber)
	}
	for _, i := range snap.Issues {
		assert.NotEqual(t, "A102", i.FlatNumber)
	}
	assert.ErrorIs(t, svc.Delete(context.Background(), "admin"), apperror.ErrForbidden)
}

func TestResidents(t *testing.T) {
	svc := NewUserService(newTestStore(t), fixedClock, testLogger())

	residents := svc.Residents()

	assert.Len(t, residents, 3)
	for _, r := range residents {
		assert.Equal(t, model.RoleResident, r.Role)
	}
}
