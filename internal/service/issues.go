package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
)

// IssueService manages maintenance requests and complaints.
type IssueService struct {
	store  Store
	clock  Clock
	logger *slog.Logger
}

func NewIssueService(store Store, clock Clock, logger *slog.Logger) *IssueService {
	return &IssueService{store: store, clock: clock, logger: logger}
}

// IssueFilter narrows List. Search matches description or flat number.
type IssueFilter struct {
	Search string
	Status string
	Type   string
}

func (s *IssueService) List(f IssueFilter) []model.Issue {
	out := []model.Issue{}
	for _, i := range s.store.Snapshot().Issues {
		if !matches(f.Status, string(i.Status)) || !matches(f.Type, i.IssueType) {
			continue
		}
		if f.Search != "" && !containsFold(i.Description, f.Search) && !containsFold(i.FlatNumber, f.Search) {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (s *IssueService) ListForFlat(flat string) []model.Issue {
	out := []model.Issue{}
	for _, i := range s.store.Snapshot().Issues {
		if i.FlatNumber == flat {
			out = append(out, i)
		}
	}
	return out
}

// Raise files a new issue for the resident's own flat. It starts open with
// medium priority.
func (s *IssueService) Raise(ctx context.Context, by model.User, issueType, description string) (model.Issue, error) {
	issueType = strings.TrimSpace(issueType)
	description = strings.TrimSpace(description)
	if !by.IsResident() {
		return model.Issue{}, apperror.Forbidden("only residents can raise issues")
	}
	if issueType == "" {
		return model.Issue{}, apperror.ValidationFailed("issueType", "issue type is required")
	}
	if description == "" {
		return model.Issue{}, apperror.ValidationFailed("description", "description is required")
	}

	today := s.clock.today()
	issue := model.Issue{
		ID:           newID(issuePrefix),
		FlatNumber:   by.FlatNumber,
		ResidentName: by.Name,
		IssueType:    issueType,
		Description:  description,
		Status:       model.IssueOpen,
		Priority:     model.PriorityMedium,
		CreatedDate:  today,
		UpdatedDate:  today,
	}
	err := s.store.Mutate(ctx, func(d *model.Dataset) error {
		d.Issues = append(d.Issues, issue)
		return nil
	})
	if err != nil {
		return model.Issue{}, err
	}

	s.logger.Info("issue raised", slog.String("id", issue.ID), slog.String("flatNumber", issue.FlatNumber))
	return issue, nil
}

// IssueUpdate carries the admin-editable fields. Empty fields are left as
// they are, except AdminNotes, which is always replaced.
type IssueUpdate struct {
	IssueType   string            `json:"issueType"`
	Description string            `json:"description"`
	Status      model.IssueStatus `json:"status"`
	Priority    model.Priority    `json:"priority"`
	AdminNotes  string            `json:"adminNotes"`
}

// Update applies an admin's changes and stamps UpdatedDate.
func (s *IssueService) Update(ctx context.Context, id string, in IssueUpdate) (model.Issue, error) {
	if in.Status != "" && !in.Status.Valid() {
		return model.Issue{}, apperror.ValidationFailed("status", "status must be open, in-progress or resolved")
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return model.Issue{}, apperror.ValidationFailed("priority", "priority must be low, medium or high")
	}

	var issue model.Issue
	err := s.store.Mutate(ctx, func(d *model.Dataset) error {
		for i := range d.Issues {
			if d.Issues[i].ID != id {
				continue
			}
			cur := &d.Issues[i]
			if v := strings.TrimSpace(in.IssueType); v != "" {
				cur.IssueType = v
			}
			if v := strings.TrimSpace(in.Description); v != "" {
				cur.Description = v
			}
			if in.Status != "" {
				cur.Status = in.Status
			}
			if in.Priority != "" {
				cur.Priority = in.Priority
			}
			cur.AdminNotes = in.AdminNotes
			cur.UpdatedDate = s.clock.today()
			issue = *cur
			return nil
		}
		return apperror.NotFound("issue", id)
	})
	if err != nil {
		return model.Issue{}, err
	}

	s.logger.Info("issue updated", slog.String("id", id), slog.String("status", string(issue.Status)))
	return issue, nil
}
