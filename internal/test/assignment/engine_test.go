package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"live-ai-photo-backend/internal/assignment"
	"live-ai-photo-backend/internal/database"
	"live-ai-photo-backend/internal/models"
)

// fakeStore drives the engine in memory with the same contracts as the
// database layer: resolving a non-PENDING assignment or assigning a
// non-PENDING task yields ErrConflict.
type fakeStore struct {
	available     []uuid.UUID
	counts        map[uuid.UUID]int
	assignments   map[uuid.UUID]*models.TaskAssignment
	taskPending   map[uuid.UUID]bool
	taskComplaint map[uuid.UUID]bool
	proposedTo    []uuid.UUID
}

func newFakeStore(available ...uuid.UUID) *fakeStore {
	return &fakeStore{
		available:     available,
		counts:        map[uuid.UUID]int{},
		assignments:   map[uuid.UUID]*models.TaskAssignment{},
		taskPending:   map[uuid.UUID]bool{},
		taskComplaint: map[uuid.UUID]bool{},
	}
}

func (s *fakeStore) ListAvailableDesigners(ctx context.Context, date, hhmm string) ([]uuid.UUID, error) {
	return s.available, nil
}

func (s *fakeStore) CountActiveTasks(ctx context.Context, designerIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return s.counts, nil
}

func (s *fakeStore) CreateAssignment(ctx context.Context, taskID, designerID uuid.UUID, now time.Time) (*models.TaskAssignment, error) {
	if !s.taskPending[taskID] {
		return nil, database.ErrConflict
	}
	s.taskPending[taskID] = false
	a := &models.TaskAssignment{
		ID:         uuid.New(),
		TaskID:     taskID,
		DesignerID: designerID,
		Status:     models.AssignmentStatusPending,
		AssignedAt: now,
	}
	s.assignments[a.ID] = a
	s.proposedTo = append(s.proposedTo, designerID)
	return a, nil
}

func (s *fakeStore) GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.TaskAssignment, error) {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) ConfirmAssignment(ctx context.Context, assignmentID uuid.UUID) error {
	return s.resolve(assignmentID, models.AssignmentStatusConfirmed, false)
}

func (s *fakeStore) ReleaseAssignment(ctx context.Context, assignmentID uuid.UUID, to models.AssignmentStatus) error {
	return s.resolve(assignmentID, to, true)
}

func (s *fakeStore) resolve(assignmentID uuid.UUID, to models.AssignmentStatus, releaseTask bool) error {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return database.ErrNotFound
	}
	if a.Status != models.AssignmentStatusPending {
		return database.ErrConflict
	}
	// Confirming rolls back entirely when the task left ASSIGNED on its own,
	// same as the SQL guard.
	if !releaseTask && s.taskComplaint[a.TaskID] {
		return database.ErrConflict
	}
	a.Status = to
	if releaseTask {
		s.taskPending[a.TaskID] = true
	}
	return nil
}

func (s *fakeStore) ListOverduePendingAssignments(ctx context.Context, cutoff time.Time) ([]models.TaskAssignment, error) {
	var overdue []models.TaskAssignment
	for _, a := range s.assignments {
		if a.Status == models.AssignmentStatusPending && a.AssignedAt.Before(cutoff) {
			overdue = append(overdue, *a)
		}
	}
	return overdue, nil
}

func testSettings() models.Settings {
	s := models.DefaultSettings()
	return s
}

func TestEngine_AssignProposesToAvailableDesigner(t *testing.T) {
	store := newFakeStore(designerA, designerB)
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, testSettings())

	assert.NoError(t, err)
	assert.Equal(t, designerA, a.DesignerID)
	assert.Equal(t, models.AssignmentStatusPending, a.Status)
	assert.False(t, store.taskPending[taskID])
}

func TestEngine_AssignNoDesignerAvailable(t *testing.T) {
	store := newFakeStore()
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	_, err := engine.Assign(context.Background(), taskID, testSettings())

	assert.ErrorIs(t, err, assignment.ErrNoDesignerAvailable)
	assert.True(t, store.taskPending[taskID])
}

func TestEngine_AssignLeastLoaded(t *testing.T) {
	store := newFakeStore(designerA, designerB)
	store.counts[designerA] = 3
	store.counts[designerB] = 1
	taskID := uuid.New()
	store.taskPending[taskID] = true

	settings := testSettings()
	settings.QueueMode = models.QueueModeLeastLoaded

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, settings)

	assert.NoError(t, err)
	assert.Equal(t, designerB, a.DesignerID)
}

func TestEngine_AssignTaskAlreadyTaken(t *testing.T) {
	store := newFakeStore(designerA)
	taskID := uuid.New()
	store.taskPending[taskID] = false

	engine := assignment.NewEngine(store, zap.NewNop())
	_, err := engine.Assign(context.Background(), taskID, testSettings())

	assert.ErrorIs(t, err, assignment.ErrAlreadyResolved)
}

func TestEngine_ConfirmWithinWindow(t *testing.T) {
	store := newFakeStore(designerA)
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, testSettings())
	assert.NoError(t, err)

	err = engine.Confirm(context.Background(), a.ID, designerA, testSettings())
	assert.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusConfirmed, store.assignments[a.ID].Status)
}

func TestEngine_ConfirmWrongDesigner(t *testing.T) {
	store := newFakeStore(designerA)
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, testSettings())
	assert.NoError(t, err)

	err = engine.Confirm(context.Background(), a.ID, designerB, testSettings())
	assert.ErrorIs(t, err, assignment.ErrNotOwner)
	assert.Equal(t, models.AssignmentStatusPending, store.assignments[a.ID].Status)
}

func TestEngine_LateConfirmExpiresAndReassigns(t *testing.T) {
	store := newFakeStore(designerA, designerB)
	taskID := uuid.New()

	// A proposal to designer A that lapsed 10 minutes ago with a 5 minute
	// window.
	lapsed := &models.TaskAssignment{
		ID:         uuid.New(),
		TaskID:     taskID,
		DesignerID: designerA,
		Status:     models.AssignmentStatusPending,
		AssignedAt: time.Now().Add(-10 * time.Minute),
	}
	store.assignments[lapsed.ID] = lapsed

	engine := assignment.NewEngine(store, zap.NewNop())
	err := engine.Confirm(context.Background(), lapsed.ID, designerA, testSettings())

	assert.ErrorIs(t, err, assignment.ErrExpired)
	assert.Equal(t, models.AssignmentStatusExpired, store.assignments[lapsed.ID].Status)
	// Reassignment skipped the lapsed designer.
	assert.Equal(t, []uuid.UUID{designerB}, store.proposedTo)
}

func TestEngine_RejectReassignsToAnotherDesigner(t *testing.T) {
	store := newFakeStore(designerA, designerB)
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, testSettings())
	assert.NoError(t, err)

	err = engine.Reject(context.Background(), a.ID, designerA, testSettings())
	assert.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusRejected, store.assignments[a.ID].Status)
	assert.Equal(t, []uuid.UUID{designerA, designerB}, store.proposedTo)
}

func TestEngine_RejectSoleDesignerLeavesTaskPending(t *testing.T) {
	store := newFakeStore(designerA)
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, testSettings())
	assert.NoError(t, err)

	err = engine.Reject(context.Background(), a.ID, designerA, testSettings())
	assert.NoError(t, err)
	assert.True(t, store.taskPending[taskID])
}

func TestEngine_ConfirmAfterComplaintConflicts(t *testing.T) {
	store := newFakeStore(designerA)
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, testSettings())
	assert.NoError(t, err)

	// A complaint takes the task away while the proposal is still open.
	store.taskComplaint[taskID] = true

	err = engine.Confirm(context.Background(), a.ID, designerA, testSettings())
	assert.ErrorIs(t, err, assignment.ErrAlreadyResolved)
	// The failed confirm leaves the assignment row untouched.
	assert.Equal(t, models.AssignmentStatusPending, store.assignments[a.ID].Status)
}

func TestEngine_DoubleResolveConflicts(t *testing.T) {
	store := newFakeStore(designerA)
	taskID := uuid.New()
	store.taskPending[taskID] = true

	engine := assignment.NewEngine(store, zap.NewNop())
	a, err := engine.Assign(context.Background(), taskID, testSettings())
	assert.NoError(t, err)

	assert.NoError(t, engine.Confirm(context.Background(), a.ID, designerA, testSettings()))
	err = engine.Confirm(context.Background(), a.ID, designerA, testSettings())
	assert.ErrorIs(t, err, assignment.ErrAlreadyResolved)
}

func TestEngine_ExpireOverdue(t *testing.T) {
	store := newFakeStore(designerA, designerB)
	taskID := uuid.New()

	lapsed := &models.TaskAssignment{
		ID:         uuid.New(),
		TaskID:     taskID,
		DesignerID: designerA,
		Status:     models.AssignmentStatusPending,
		AssignedAt: time.Now().Add(-10 * time.Minute),
	}
	store.assignments[lapsed.ID] = lapsed

	fresh := &models.TaskAssignment{
		ID:         uuid.New(),
		TaskID:     uuid.New(),
		DesignerID: designerB,
		Status:     models.AssignmentStatusPending,
		AssignedAt: time.Now(),
	}
	store.assignments[fresh.ID] = fresh

	engine := assignment.NewEngine(store, zap.NewNop())
	expired, err := engine.ExpireOverdue(context.Background(), testSettings())

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, models.AssignmentStatusExpired, store.assignments[lapsed.ID].Status)
	assert.Equal(t, models.AssignmentStatusPending, store.assignments[fresh.ID].Status)
}
