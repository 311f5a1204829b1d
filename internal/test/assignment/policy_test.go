package assignment_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"live-ai-photo-backend/internal/assignment"
	"live-ai-photo-backend/internal/models"
)

var (
	designerA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	designerB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	designerC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func TestSelect_RoundRobinPicksFirst(t *testing.T) {
	candidates := []assignment.Candidate{
		{DesignerID: designerA},
		{DesignerID: designerB},
	}

	id, ok := assignment.Select(models.QueueModeRoundRobin, candidates, nil)
	assert.True(t, ok)
	assert.Equal(t, designerA, id)
}

func TestSelect_RoundRobinSkipsExcluded(t *testing.T) {
	candidates := []assignment.Candidate{
		{DesignerID: designerA},
		{DesignerID: designerB},
	}

	id, ok := assignment.Select(models.QueueModeRoundRobin, candidates, map[uuid.UUID]bool{designerA: true})
	assert.True(t, ok)
	assert.Equal(t, designerB, id)
}

func TestSelect_LeastLoadedPicksFewestActiveTasks(t *testing.T) {
	candidates := []assignment.Candidate{
		{DesignerID: designerA, ActiveTasks: 3},
		{DesignerID: designerB, ActiveTasks: 0},
		{DesignerID: designerC, ActiveTasks: 1},
	}

	id, ok := assignment.Select(models.QueueModeLeastLoaded, candidates, nil)
	assert.True(t, ok)
	assert.Equal(t, designerB, id)
}

func TestSelect_LeastLoadedTieBreaksOnOrder(t *testing.T) {
	candidates := []assignment.Candidate{
		{DesignerID: designerA, ActiveTasks: 1},
		{DesignerID: designerB, ActiveTasks: 1},
	}

	id, ok := assignment.Select(models.QueueModeLeastLoaded, candidates, nil)
	assert.True(t, ok)
	assert.Equal(t, designerA, id)
}

func TestSelect_PrioritySelectsLikeRoundRobin(t *testing.T) {
	candidates := []assignment.Candidate{
		{DesignerID: designerB},
		{DesignerID: designerA},
	}

	id, ok := assignment.Select(models.QueueModePriority, candidates, nil)
	assert.True(t, ok)
	assert.Equal(t, designerB, id)
}

func TestSelect_NoCandidates(t *testing.T) {
	_, ok := assignment.Select(models.QueueModeRoundRobin, nil, nil)
	assert.False(t, ok)

	_, ok = assignment.Select(models.QueueModeLeastLoaded, nil, nil)
	assert.False(t, ok)
}

func TestSelect_AllExcluded(t *testing.T) {
	candidates := []assignment.Candidate{
		{DesignerID: designerA},
	}

	_, ok := assignment.Select(models.QueueModeRoundRobin, candidates, map[uuid.UUID]bool{designerA: true})
	assert.False(t, ok)
}

func TestWindowContains(t *testing.T) {
	window := models.AvailabilityWindow{
		StartTime:   "09:00",
		EndTime:     "17:00",
		IsAvailable: true,
	}

	assert.True(t, assignment.WindowContains(window, "10:00"))
	assert.True(t, assignment.WindowContains(window, "09:00"))
	assert.True(t, assignment.WindowContains(window, "17:00"))
	assert.False(t, assignment.WindowContains(window, "08:59"))
	assert.False(t, assignment.WindowContains(window, "17:01"))

	window.IsAvailable = false
	assert.False(t, assignment.WindowContains(window, "10:00"))
}

func TestIsExpired(t *testing.T) {
	assignedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.False(t, assignment.IsExpired(assignedAt, 5, assignedAt.Add(4*time.Minute)))
	assert.False(t, assignment.IsExpired(assignedAt, 5, assignedAt.Add(5*time.Minute)))
	assert.True(t, assignment.IsExpired(assignedAt, 5, assignedAt.Add(6*time.Minute)))
}

func TestDeadline(t *testing.T) {
	assignedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, assignedAt.Add(5*time.Minute), assignment.Deadline(assignedAt, 5))
}
