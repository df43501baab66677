package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
)

// NotificationService sends announcements to all residents or one flat.
type NotificationService struct {
	store  Store
	clock  Clock
	logger *slog.Logger
}

func NewNotificationService(store Store, clock Clock, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: store, clock: clock, logger: logger}
}

// List returns every notification, for the admin.
func (s *NotificationService) List() []model.Notification {
	return s.store.Snapshot().Notifications
}

// ListFor returns the notifications addressed to u's flat or to everyone.
func (s *NotificationService) ListFor(u model.User) []model.Notification {
	out := []model.Notification{}
	for _, n := range s.store.Snapshot().Notifications {
		if n.VisibleTo(u.FlatNumber) {
			out = append(out, n)
		}
	}
	return out
}

// SendInput is a new announcement. Recipients is "all" or a flat number.
type SendInput struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Recipients string `json:"recipients"`
}

// Send stores a new unread notification signed with the sender's name.
func (s *NotificationService) Send(ctx context.Context, from model.User, in SendInput) (model.Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	in.Recipients = strings.TrimSpace(in.Recipients)
	if in.Title == "" {
		return model.Notification{}, apperror.ValidationFailed("title", "title is required")
	}
	if in.Message == "" {
		return model.Notification{}, apperror.ValidationFailed("message", "message is required")
	}
	if in.Recipients == "" {
		in.Recipients = model.RecipientsAll
	}
	if in.Type == "" {
		in.Type = "general"
	}

	n := model.Notification{
		ID:         newID(notificationPrefix),
		Title:      in.Title,
		Message:    in.Message,
		Type:       in.Type,
		SentBy:     from.Name,
		SentDate:   s.clock.today(),
		Recipients: in.Recipients,
	}
	err := s.store.Mutate(ctx, func(d *model.Dataset) error {
		if n.Recipients != model.RecipientsAll && d.FindUserByFlat(n.Recipients) < 0 {
			return apperror.NotFound("resident", n.Recipients)
		}
		d.Notifications = append(d.Notifications, n)
		return nil
	})
	if err != nil {
		return model.Notification{}, err
	}

	s.logger.Info("notification sent", slog.String("id", n.ID), slog.String("recipients", n.Recipients))
	return n, nil
}
