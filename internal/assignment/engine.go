// Package assignment routes pending tasks to available designers and tracks
// each proposal through the PENDING → CONFIRMED/REJECTED/EXPIRED confirmation
// state machine. A rejected or lapsed proposal returns the task to the
// assignable pool and retries selection, excluding the designer who lapsed.
package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/models"
)

var (
	// ErrNoDesignerAvailable means no designer has an open availability
	// window right now. Not a failure: the task stays PENDING and is retried
	// later.
	ErrNoDesignerAvailable = errors.New("no designer currently available")

	// ErrAlreadyResolved means the assignment was confirmed, rejected or
	// expired by another request before this one.
	ErrAlreadyResolved = errors.New("assignment already resolved")

	// ErrExpired means the confirmation window had already closed when the
	// designer acted. The assignment is driven to EXPIRED, never silently
	// accepted.
	ErrExpired = errors.New("assignment expired")

	// ErrNotOwner means the assignment belongs to a different designer.
	ErrNotOwner = errors.New("assignment belongs to another designer")
)

// Store is the persistence surface the engine needs. *database.Client
// implements it.
type Store interface {
	ListAvailableDesigners(ctx context.Context, date, hhmm string) ([]uuid.UUID, error)
	CountActiveTasks(ctx context.Context, designerIDs []uuid.UUID) (map[uuid.UUID]int, error)
	CreateAssignment(ctx context.Context, taskID, designerID uuid.UUID, now time.Time) (*models.TaskAssignment, error)
	GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.TaskAssignment, error)
	ConfirmAssignment(ctx context.Context, assignmentID uuid.UUID) error
	ReleaseAssignment(ctx context.Context, assignmentID uuid.UUID, to models.AssignmentStatus) error
	ListOverduePendingAssignments(ctx context.Context, cutoff time.Time) ([]models.TaskAssignment, error)
}

type Engine struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewEngine(store Store, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log, now: time.Now}
}

// Assign selects a designer for the pending task per the configured queue
// mode and creates the PENDING proposal. Designers in exclude are skipped for
// this round.
func (e *Engine) Assign(ctx context.Context, taskID uuid.UUID, settings models.Settings, exclude ...uuid.UUID) (*models.TaskAssignment, error) {
	now := e.now()
	available, err := e.store.ListAvailableDesigners(ctx, now.Format("2006-01-02"), now.Format("15:04"))
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, ErrNoDesignerAvailable
	}

	candidates := make([]Candidate, len(available))
	for i, id := range available {
		candidates[i] = Candidate{DesignerID: id}
	}
	if settings.QueueMode == models.QueueModeLeastLoaded {
		counts, err := e.store.CountActiveTasks(ctx, available)
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			candidates[i].ActiveTasks = counts[candidates[i].DesignerID]
		}
	}

	excluded := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	designerID, ok := Select(settings.QueueMode, candidates, excluded)
	if !ok {
		return nil, ErrNoDesignerAvailable
	}

	assignment, err := e.store.CreateAssignment(ctx, taskID, designerID, now)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			// The task left PENDING under us. Nothing to do.
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}

	e.log.Info("task assigned",
		zap.String("task_id", taskID.String()),
		zap.String("designer_id", designerID.String()),
		zap.String("queue_mode", string(settings.QueueMode)))
	return assignment, nil
}

// Confirm accepts a pending proposal within the confirmation window. The
// window is re-checked server-side: a late confirm drives the assignment to
// EXPIRED, triggers a reassignment attempt and returns ErrExpired.
func (e *Engine) Confirm(ctx context.Context, assignmentID, designerID uuid.UUID, settings models.Settings) error {
	assignment, err := e.checkActionable(ctx, assignmentID, designerID, settings)
	if err != nil {
		return err
	}

	if err := e.store.ConfirmAssignment(ctx, assignment.ID); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return ErrAlreadyResolved
		}
		return err
	}
	return nil
}

// Reject declines a pending proposal and immediately retries assignment,
// excluding the rejecting designer for this round.
func (e *Engine) Reject(ctx context.Context, assignmentID, designerID uuid.UUID, settings models.Settings) error {
	assignment, err := e.checkActionable(ctx, assignmentID, designerID, settings)
	if err != nil {
		return err
	}

	if err := e.store.ReleaseAssignment(ctx, assignment.ID, models.AssignmentStatusRejected); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return ErrAlreadyResolved
		}
		return err
	}

	e.retryAssign(ctx, assignment, settings)
	return nil
}

func (e *Engine) checkActionable(ctx context.Context, assignmentID, designerID uuid.UUID, settings models.Settings) (*models.TaskAssignment, error) {
	assignment, err := e.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.DesignerID != designerID {
		return nil, ErrNotOwner
	}
	if assignment.Status != models.AssignmentStatusPending {
		return nil, ErrAlreadyResolved
	}
	if IsExpired(assignment.AssignedAt, settings.ConfirmationTimeoutMinutes, e.now()) {
		e.Expire(ctx, assignment, settings)
		return nil, ErrExpired
	}
	return assignment, nil
}

// Expire lapses an overdue pending proposal, returning the task to PENDING
// and retrying assignment without the lapsed designer. Safe to call
// concurrently: only one caller wins the status guard.
func (e *Engine) Expire(ctx context.Context, assignment *models.TaskAssignment, settings models.Settings) {
	err := e.store.ReleaseAssignment(ctx, assignment.ID, models.AssignmentStatusExpired)
	if err != nil {
		if !errors.Is(err, database.ErrConflict) {
			e.log.Error("failed to expire assignment",
				zap.String("assignment_id", assignment.ID.String()), zap.Error(err))
		}
		return
	}

	e.log.Info("assignment expired",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("designer_id", assignment.DesignerID.String()))
	e.retryAssign(ctx, assignment, settings)
}

func (e *Engine) retryAssign(ctx context.Context, lapsed *models.TaskAssignment, settings models.Settings) {
	_, err := e.Assign(ctx, lapsed.TaskID, settings, lapsed.DesignerID)
	if err != nil {
		if errors.Is(err, ErrNoDesignerAvailable) {
			e.log.Info("no replacement designer available, task left pending",
				zap.String("task_id", lapsed.TaskID.String()))
			return
		}
		e.log.Error("reassignment attempt failed",
			zap.String("task_id", lapsed.TaskID.String()), zap.Error(err))
	}
}

// ExpireOverdue lapses every pending assignment whose window has closed and
// retries each one. Returns the number of assignments expired.
func (e *Engine) ExpireOverdue(ctx context.Context, settings models.Settings) (int, error) {
	cutoff := e.now().Add(-time.Duration(settings.ConfirmationTimeoutMinutes) * time.Minute)
	overdue, err := e.store.ListOverduePendingAssignments(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	for i := range overdue {
		e.Expire(ctx, &overdue[i], settings)
	}
	return len(overdue), nil
}
