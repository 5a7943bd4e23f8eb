package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeComplianceNotice = "notification.compliance"
	EventTypeWeeklyReminder   = "notification.weekly_reminder"
)

// ComplianceNoticeEvent asks the notifier to nudge users who are behind
// on their timesheets.
type ComplianceNoticeEvent struct {
	BaseEvent
	UserIDs []int64 `json:"user_ids"`
	Message string  `json:"message"`
	SentBy  int64   `json:"sent_by"`
}

func NewComplianceNoticeEvent(userIDs []int64, message string, sentBy int64) *ComplianceNoticeEvent {
	return &ComplianceNoticeEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeComplianceNotice,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_ids": userIDs,
				"message":  message,
				"sent_by":  sentBy,
			},
		},
		UserIDs: userIDs,
		Message: message,
		SentBy:  sentBy,
	}
}

// WeeklyReminderEvent is published for each user who opted into the
// weekly submission reminder.
type WeeklyReminderEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

func NewWeeklyReminderEvent(userID int64) *WeeklyReminderEvent {
	return &WeeklyReminderEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeWeeklyReminder,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
			},
		},
		UserID: userID,
	}
}
