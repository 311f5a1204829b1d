package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"live-ai-photo-backend/internal/models"
)

func TestTaskTransitions(t *testing.T) {
	tests := []struct {
		from    models.TaskStatus
		to      models.TaskStatus
		allowed bool
	}{
		{models.TaskStatusPending, models.TaskStatusAssigned, true},
		{models.TaskStatusAssigned, models.TaskStatusInProgress, true},
		{models.TaskStatusAssigned, models.TaskStatusPending, true},
		{models.TaskStatusInProgress, models.TaskStatusQAPending, true},
		{models.TaskStatusQAPending, models.TaskStatusCompleted, true},
		{models.TaskStatusQAPending, models.TaskStatusQAFailed, true},
		{models.TaskStatusQAFailed, models.TaskStatusInProgress, true},

		{models.TaskStatusPending, models.TaskStatusInProgress, false},
		{models.TaskStatusPending, models.TaskStatusCompleted, false},
		{models.TaskStatusInProgress, models.TaskStatusCompleted, false},
		{models.TaskStatusCompleted, models.TaskStatusInProgress, false},
		{models.TaskStatusCompleted, models.TaskStatusPending, false},
		{models.TaskStatusComplaint, models.TaskStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestComplaintAllowedFromEveryStateButComplaint(t *testing.T) {
	froms := []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusAssigned,
		models.TaskStatusInProgress,
		models.TaskStatusQAPending,
		models.TaskStatusQAFailed,
		models.TaskStatusCompleted,
	}
	for _, from := range froms {
		assert.True(t, from.CanTransitionTo(models.TaskStatusComplaint), string(from))
	}

	assert.False(t, models.TaskStatusComplaint.CanTransitionTo(models.TaskStatusComplaint))
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, models.PriorityExpress, models.ParsePriority("EXPRESS"))
	assert.Equal(t, models.PriorityUrgent, models.ParsePriority("URGENT"))
	assert.Equal(t, models.PriorityNormal, models.ParsePriority("NORMAL"))
	assert.Equal(t, models.PriorityNormal, models.ParsePriority(""))
	assert.Equal(t, models.PriorityNormal, models.ParsePriority("express"))
}
