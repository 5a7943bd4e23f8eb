package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/user"
)

// UserLookup resolves event user ids to deliverable addresses.
type UserLookup interface {
	GetByID(id int64) (*user.User, error)
}

// ReminderSource lists the users who opted into the weekly reminder.
type ReminderSource interface {
	ListWeeklyReminderUserIDs() ([]int64, error)
}

// Mailer matches the delivery half of the mail package.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type ComplianceNoticeDTO struct {
	UserIDs []int64 `json:"userIds"`
	Message string  `json:"message"`
}

func (d *ComplianceNoticeDTO) Validate() *internal.AppError {
	if len(d.UserIDs) == 0 {
		return internal.NewValidationFieldError("userIds", "at least one user is required", internal.ErrCodeValidationFailed)
	}
	d.Message = strings.TrimSpace(d.Message)
	if d.Message == "" {
		return internal.NewValidationFieldError("message", "message is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Service routes notification events to the mailer.
type Service struct {
	bus       *events.EventBus
	mailer    Mailer
	users     UserLookup
	reminders ReminderSource
	logger    *slog.Logger
}

func NewService(bus *events.EventBus, mailer Mailer, users UserLookup, reminders ReminderSource, logger *slog.Logger) *Service {
	return &Service{
		bus:       bus,
		mailer:    mailer,
		users:     users,
		reminders: reminders,
		logger:    logger,
	}
}

// Register wires the event subscriptions. Call once at startup.
func (s *Service) Register() {
	s.bus.Subscribe(events.EventTypeComplianceNotice, s.handleComplianceNotice)
	s.bus.Subscribe(events.EventTypeWeeklyReminder, s.handleWeeklyReminder)
}

// NotifyCompliance publishes a compliance notice on behalf of an admin.
// Delivery runs synchronously so the caller learns about failures.
func (s *Service) NotifyCompliance(ctx context.Context, caller *auth.User, dto ComplianceNoticeDTO) error {
	if !caller.IsAdmin() {
		return internal.ErrUnauthorizedAccess
	}
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}

	event := events.NewComplianceNoticeEvent(dto.UserIDs, dto.Message, caller.ID)
	return s.bus.PublishSync(ctx, event)
}

func (s *Service) handleComplianceNotice(ctx context.Context, event events.Event) error {
	notice, ok := event.(*events.ComplianceNoticeEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	var failed int
	for _, id := range notice.UserIDs {
		u, err := s.users.GetByID(id)
		if err != nil || u == nil {
			s.logger.Warn("compliance notice skipped unknown user", "user_id", id)
			failed++
			continue
		}
		if !u.IsActive {
			continue
		}

		body := fmt.Sprintf("Hello %s,\n\n%s", u.Name, notice.Message)
		if err := s.mailer.Send(ctx, []string{u.Email}, "Timesheet compliance notice", body); err != nil {
			s.logger.Error("compliance notice delivery failed", "error", err, "user_id", id)
			failed++
		}
	}

	if failed > 0 {
		msg := fmt.Sprintf("compliance notice failed for %d of %d users", failed, len(notice.UserIDs))
		return internal.NewExternalError(msg, internal.ErrCodeMailDelivery, nil)
	}
	return nil
}

// SendWeeklyReminders publishes one reminder event per opted-in user.
// Called from the worker loop.
func (s *Service) SendWeeklyReminders(ctx context.Context) error {
	ids, err := s.reminders.ListWeeklyReminderUserIDs()
	if err != nil {
		s.logger.Error("failed to list reminder users", "error", err)
		return err
	}

	for _, id := range ids {
		if err := s.bus.Publish(ctx, events.NewWeeklyReminderEvent(id)); err != nil {
			s.logger.Error("failed to publish weekly reminder", "error", err, "user_id", id)
		}
	}
	return nil
}

func (s *Service) handleWeeklyReminder(ctx context.Context, event events.Event) error {
	reminder, ok := event.(*events.WeeklyReminderEvent)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.EventType())
	}

	u, err := s.users.GetByID(reminder.UserID)
	if err != nil || u == nil || !u.IsActive {
		return nil
	}

	body := fmt.Sprintf("Hello %s,\n\nThis is your weekly reminder to submit your timesheet entries.", u.Name)
	return s.mailer.Send(ctx, []string{u.Email}, "Timesheet reminder", body)
}
