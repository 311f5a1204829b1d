package assignment

import (
	"time"

	"github.com/google/uuid"

	"live-ai-photo-backend/internal/models"
)

// Candidate is an available designer with their current active task count
// (tasks in PENDING, ASSIGNED or IN_PROGRESS).
type Candidate struct {
	DesignerID  uuid.UUID
	ActiveTasks int
}

// Select picks the next designer for a pending task. Candidates must already
// be filtered to currently-available designers and arrive in stable id order.
//
// round_robin picks the first candidate in enumeration order (no rotation
// cursor is persisted). least_loaded picks the candidate with the fewest
// active tasks, first-in-order on ties. priority currently selects the same
// way as round_robin.
func Select(mode models.QueueMode, candidates []Candidate, exclude map[uuid.UUID]bool) (uuid.UUID, bool) {
	switch mode {
	case models.QueueModeLeastLoaded:
		var best *Candidate
		for i := range candidates {
			if exclude[candidates[i].DesignerID] {
				continue
			}
			if best == nil || candidates[i].ActiveTasks < best.ActiveTasks {
				best = &candidates[i]
			}
		}
		if best == nil {
			return uuid.Nil, false
		}
		return best.DesignerID, true
	default:
		for _, c := range candidates {
			if exclude[c.DesignerID] {
				continue
			}
			return c.DesignerID, true
		}
		return uuid.Nil, false
	}
}

// WindowContains reports whether the window is open at the given wall-clock
// time. Times are zero-padded HH:MM strings, so lexicographic comparison
// matches chronological order. The store's ListAvailableDesigners filter is
// the SQL form of this rule; change both together.
func WindowContains(w models.AvailabilityWindow, hhmm string) bool {
	return w.IsAvailable && w.StartTime <= hhmm && w.EndTime >= hhmm
}

// Deadline is the instant a pending assignment lapses.
func Deadline(assignedAt time.Time, timeoutMinutes int) time.Time {
	return assignedAt.Add(time.Duration(timeoutMinutes) * time.Minute)
}

// IsExpired reports whether the confirmation window has closed. The server
// makes this check itself on every confirm/reject; a client-side countdown
// reaching zero never mutates state.
func IsExpired(assignedAt time.Time, timeoutMinutes int, now time.Time) bool {
	return now.After(Deadline(assignedAt, timeoutMinutes))
}
