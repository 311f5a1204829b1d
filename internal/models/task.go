package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusAssigned   TaskStatus = "ASSIGNED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusQAPending  TaskStatus = "QA_PENDING"
	TaskStatusQAFailed   TaskStatus = "QA_FAILED"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusComplaint  TaskStatus = "COMPLAINT"
)

// Task is the unit of design work derived from an order. At most one active
// assignment exists per task at any time.
type Task struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Status      TaskStatus
	AssignedTo  uuid.NullUUID
	AssignedAt  sql.NullTime
	CompletedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusAssigned, TaskStatusComplaint},
	TaskStatusAssigned:   {TaskStatusInProgress, TaskStatusPending, TaskStatusComplaint},
	TaskStatusInProgress: {TaskStatusQAPending, TaskStatusComplaint},
	TaskStatusQAPending:  {TaskStatusCompleted, TaskStatusQAFailed, TaskStatusComplaint},
	TaskStatusQAFailed:   {TaskStatusInProgress, TaskStatusComplaint},
	TaskStatusCompleted:  {TaskStatusComplaint},
	TaskStatusComplaint:  {},
}

// CanTransitionTo reports whether moving the task to next is a valid lifecycle
// step.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
