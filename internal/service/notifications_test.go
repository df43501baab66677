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

var adminUser = model.User{Username: "admin", Role: model.RoleAdmin, Name: "Admin User"}

func TestSendNotification(t *testing.T) {
	store := newTestStore(t)
	svc := NewNotificationService(store, fixedClock, testLogger())

	n, err := svc.Send(context.Background(), adminUser, SendInput{
		Title: "Lift service", Message: "Lift B is down on Friday.", Type: "general", Recipients: "B201",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(n.ID, "NOT-"))
	assert.Equal(t, "Admin User", n.SentBy)
	assert.Equal(t, "2026-03-14", n.SentDate)
	assert.False(t, n.IsRead)
	assert.Len(t, svc.List(), 3)
}

func TestSendNotification_Defaults(t *testing.T) {
	svc := NewNotificationService(newTestStore(t), fixedClock, testLogger())

	n, err := svc.Send(context.Background(), adminUser, SendInput{Title: "Hi", Message: "Hello all"})

	require.NoError(t, err)
	assert.Equal(t, model.RecipientsAll, n.Recipients)
	assert.Equal(t, "general", n.Type)
}

func TestSendNotification_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		in      SendInput
		wantErr error
	}{
		{"no title", SendInput{Message: "m"}, apperror.ErrValidation},
		{"no message", SendInput{Title: "t"}, apperror.ErrValidation},
		{"unknown flat", SendInput{Title: "t", Message: "m", Recipients: "Z9"}, apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewNotificationService(newTestStore(t), fixedClock, testLogger())

			_, err := svc.Send(context.Background(), adminUser, tt.in)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListFor_OnlyOwnFlatAndBroadcasts(t *testing.T) {
	svc := NewNotificationService(newTestStore(t), fixedClock, testLogger())
	_, err := svc.Send(context.Background(), adminUser, SendInput{Title: "For B201", Message: "m", Recipients: "B201"})
	require.NoError(t, err)

	assert.Len(t, svc.ListFor(jane), 2)
	assert.Len(t, svc.ListFor(model.User{Username: "resident3", FlatNumber: "B201"}), 3)
}
