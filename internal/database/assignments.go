package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"live-ai-photo-backend/internal/models"
)

const assignmentColumns = `id, task_id, designer_id, status, assigned_at, resolved_at`

func scanAssignment(row interface{ Scan(...any) error }) (*models.TaskAssignment, error) {
	var a models.TaskAssignment
	err := row.Scan(&a.ID, &a.TaskID, &a.DesignerID, &a.Status, &a.AssignedAt, &a.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAssignment proposes the task to the designer: the task moves
// PENDING → ASSIGNED and a PENDING assignment row is inserted, atomically.
// Returns ErrConflict if the task is no longer PENDING (another request got
// there first). The partial unique index on task_assignments backstops the
// one-pending-per-task invariant.
func (c *Client) CreateAssignment(ctx context.Context, taskID, designerID uuid.UUID, now time.Time) (*models.TaskAssignment, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks SET status = $1, assigned_to = $2, assigned_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, models.TaskStatusAssigned, designerID, now, taskID, models.TaskStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrConflict
	}

	assignment, err := scanAssignment(tx.QueryRowContext(ctx, `
		INSERT INTO task_assignments (id, task_id, designer_id, status, assigned_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+assignmentColumns+`
	`, uuid.New(), taskID, designerID, models.AssignmentStatusPending, now))
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return assignment, nil
}

func (c *Client) GetAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.TaskAssignment, error) {
	assignment, err := scanAssignment(c.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+` FROM task_assignments WHERE id = $1
	`, assignmentID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

// GetPendingAssignmentForDesigner returns the designer's current PENDING
// proposal joined with its task and order, or ErrNotFound.
func (c *Client) GetPendingAssignmentForDesigner(ctx context.Context, designerID uuid.UUID) (*models.TaskAssignment, *models.Task, *models.Order, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT a.id, a.task_id, a.designer_id, a.status, a.assigned_at, a.resolved_at,
		       t.id, t.order_id, t.status, t.assigned_to, t.assigned_at, t.completed_at, t.created_at, t.updated_at,
		       o.id, o.quantity, o.priority
		FROM task_assignments a
		JOIN tasks t ON t.id = a.task_id
		JOIN orders o ON o.id = t.order_id
		WHERE a.designer_id = $1 AND a.status = $2
		ORDER BY a.assigned_at ASC
		LIMIT 1
	`, designerID, models.AssignmentStatusPending)

	var a models.TaskAssignment
	var t models.Task
	var o models.Order
	err := row.Scan(
		&a.ID, &a.TaskID, &a.DesignerID, &a.Status, &a.AssignedAt, &a.ResolvedAt,
		&t.ID, &t.OrderID, &t.Status, &t.AssignedTo, &t.AssignedAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
		&o.ID, &o.Quantity, &o.Priority,
	)
	if err == sql.ErrNoRows {
		return nil, nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get pending assignment: %w", err)
	}
	return &a, &t, &o, nil
}

// ConfirmAssignment resolves a PENDING assignment to CONFIRMED and moves the
// task to IN_PROGRESS. ErrConflict means the assignment was already resolved.
func (c *Client) ConfirmAssignment(ctx context.Context, assignmentID uuid.UUID) error {
	return c.resolveAssignment(ctx, assignmentID, models.AssignmentStatusConfirmed, models.TaskStatusInProgress, false)
}

// ReleaseAssignment resolves a PENDING assignment to REJECTED or EXPIRED and
// returns the task to the assignable PENDING state with the designer cleared.
func (c *Client) ReleaseAssignment(ctx context.Context, assignmentID uuid.UUID, to models.AssignmentStatus) error {
	if to != models.AssignmentStatusRejected && to != models.AssignmentStatusExpired {
		return fmt.Errorf("invalid release status %q", to)
	}
	return c.resolveAssignment(ctx, assignmentID, to, models.TaskStatusPending, true)
}

func (c *Client) resolveAssignment(ctx context.Context, assignmentID uuid.UUID, to models.AssignmentStatus, taskStatus models.TaskStatus, clearDesigner bool) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Re-read-and-guard in one statement: only a still-PENDING row resolves.
	var taskID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		UPDATE task_assignments SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING task_id
	`, to, assignmentID, models.AssignmentStatusPending).Scan(&taskID)
	if err == sql.ErrNoRows {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to resolve assignment: %w", err)
	}

	if clearDesigner {
		// The task may have left ASSIGNED on its own (a complaint); the
		// assignment row still resolves so it is not re-swept forever.
		_, err = tx.ExecContext(ctx, `
			UPDATE tasks SET status = $1, assigned_to = NULL, assigned_at = NULL, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, taskStatus, taskID, models.TaskStatusAssigned)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
	} else {
		// A confirm must not succeed if the task left ASSIGNED under us
		// (e.g. a complaint raced it): roll the whole resolution back.
		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, taskStatus, taskID, models.TaskStatusAssigned)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrConflict
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListOverduePendingAssignments returns PENDING assignments whose confirmation
// window closed before the given cutoff.
func (c *Client) ListOverduePendingAssignments(ctx context.Context, cutoff time.Time) ([]models.TaskAssignment, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM task_assignments
		WHERE status = $1 AND assigned_at < $2
		ORDER BY assigned_at ASC
	`, models.AssignmentStatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.TaskAssignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, *assignment)
	}
	return assignments, rows.Err()
}
