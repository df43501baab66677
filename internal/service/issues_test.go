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

var jane = model.User{Username: "resident2", Role: model.RoleResident, FlatNumber: "A102", Name: "Jane Smith"}

func issueIDs(is []model.Issue) []string {
	ids := make([]string, 0, len(is))
	for _, i := range is {
		ids = append(ids, i.ID)
	}
	return ids
}

func TestListIssues_Filters(t *testing.T) {
	svc := NewIssueService(newTestStore(t), fixedClock, testLogger())

	tests := []struct {
		name   string
		filter IssueFilter
		want   []string
	}{
		{"no filter", IssueFilter{}, []string{"ISS-1", "ISS-2", "ISS-3"}},
		{"status", IssueFilter{Status: "open"}, []string{"ISS-2"}},
		{"type", IssueFilter{Type: "request"}, []string{"ISS-3"}},
		{"search description", IssueFilter{Search: "LEAKAGE"}, []string{"ISS-1"}},
		{"search flat", IssueFilter{Search: "b2"}, []string{"ISS-3"}},
		{"all combined", IssueFilter{Search: "a10", Status: "all", Type: "complaint"}, []string{"ISS-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, issueIDs(svc.List(tt.filter)))
		})
	}
}

func TestRaiseIssue(t *testing.T) {
	store := newTestStore(t)
	svc := NewIssueService(store, fixedClock, testLogger())

	issue, err := svc.Raise(context.Background(), jane, "maintenance", "  Broken window  ")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(issue.ID, "ISS-"))
	assert.Equal(t, "A102", issue.FlatNumber)
	assert.Equal(t, "Jane Smith", issue.ResidentName)
	assert.Equal(t, "Broken window", issue.Description)
	assert.Equal(t, model.IssueOpen, issue.Status)
	assert.Equal(t, model.PriorityMedium, issue.Priority)
	assert.Equal(t, "2026-03-14", issue.CreatedDate)
	assert.Equal(t, "2026-03-14", issue.UpdatedDate)
	assert.Len(t, svc.ListForFlat("A102"), 2)
}

func TestRaiseIssue_Rejected(t *testing.T) {
	admin := model.User{Username: "admin", Role: model.RoleAdmin, Name: "Admin User"}
	tests := []struct {
		name        string
		by          model.User
		issueType   string
		description string
		wantErr     error
	}{
		{"admin", admin, "maintenance", "x", apperror.ErrForbidden},
		{"no type", jane, "", "x", apperror.ErrValidation},
		{"no description", jane, "maintenance", "   ", apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIssueService(newTestStore(t), fixedClock, testLogger())

			_, err := svc.Raise(context.Background(), tt.by, tt.issueType, tt.description)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateIssue(t *testing.T) {
	svc := NewIssueService(newTestStore(t), fixedClock, testLogger())

	issue, err := svc.Update(context.Background(), "ISS-2", IssueUpdate{
		Status: model.IssueResolved, Priority: model.PriorityLow, AdminNotes: "Spoke to neighbour",
	})

	require.NoError(t, err)
	assert.Equal(t, model.IssueResolved, issue.Status)
	assert.Equal(t, model.PriorityLow, issue.Priority)
	assert.Equal(t, "Spoke to neighbour", issue.AdminNotes)
	assert.Equal(t, "Noise from neighboring flat", issue.Description, "empty fields are kept")
	assert.Equal(t, "2026-01-24", issue.CreatedDate)
	assert.Equal(t, "2026-03-14", issue.UpdatedDate)
}

func TestUpdateIssue_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		in      IssueUpdate
		wantErr error
	}{
		{"unknown", "ISS-404", IssueUpdate{}, apperror.ErrNotFound},
		{"bad status", "ISS-1", IssueUpdate{Status: "closed"}, apperror.ErrValidation},
		{"bad priority", "ISS-1", IssueUpdate{Priority: "urgent"}, apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIssueService(newTestStore(t), fixedClock, testLogger())

			_, err := svc.Update(context.Background(), tt.id, tt.in)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
