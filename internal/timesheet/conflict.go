package timesheet

import (
	"github.com/frahmantamala/timesheet-management/internal"
)

// TimeGranularityMinutes is the slot size entries must align to.
const TimeGranularityMinutes = 15

// ValidateTimes checks the preconditions for a candidate time range: the
// start must be strictly before the end and both must sit on a 15-minute
// boundary. An entry ending where another begins is not a conflict, so a
// zero-length range has no meaning here.
func ValidateTimes(start, end TimeOfDay) *internal.AppError {
	if start.Minutes() >= end.Minutes() {
		return internal.NewValidationError("start time must be before end time", internal.ErrCodeInvalidTimeRange)
	}
	if start.Minutes()%TimeGranularityMinutes != 0 || end.Minutes()%TimeGranularityMinutes != 0 {
		return internal.NewValidationError("times must align to 15-minute increments", internal.ErrCodeInvalidTimeGranularity)
	}
	return nil
}

// Overlaps reports whether two half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart.Minutes() < bEnd.Minutes() && bStart.Minutes() < aEnd.Minutes()
}

// FindConflict scans same-day entries for the first one overlapping the
// candidate range. excludeID skips the entry being updated; pass 0 on create.
func FindConflict(existing []*Entry, start, end TimeOfDay, excludeID int64) *Entry {
	for _, e := range existing {
		if excludeID != 0 && e.ID == excludeID {
			continue
		}
		if Overlaps(start, end, e.StartTime, e.EndTime) {
			return e
		}
	}
	return nil
}

// ConflictDetail is the payload returned with an overlap rejection so the
// caller can see what they collided with.
type ConflictDetail struct {
	EntryID          int64  `json:"entryId"`
	Date             string `json:"date"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
	ClientFileNumber string `json:"clientFileNumber"`
	Task             string `json:"task"`
	Activity         string `json:"activity"`
}

// NewOverlapError builds the conflict response for a rejected write.
func NewOverlapError(conflict *Entry) *internal.AppError {
	return internal.NewConflictError("entry overlaps an existing entry", internal.ErrCodeOverlappingEntry).
		WithDetails(ConflictDetail{
			EntryID:          conflict.ID,
			Date:             conflict.Date.String(),
			StartTime:        conflict.StartTime.String(),
			EndTime:          conflict.EndTime.String(),
			ClientFileNumber: conflict.ClientFileNumber,
			Task:             conflict.Task,
			Activity:         conflict.Activity,
		})
}
