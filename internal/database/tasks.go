package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"live-ai-photo-backend/internal/models"
)

const taskColumns = `id, order_id, status, assigned_to, assigned_at, completed_at, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.OrderID, &task.Status, &task.AssignedTo,
		&task.AssignedAt, &task.CompletedAt, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) GetTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := scanTask(c.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, taskID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (c *Client) GetTaskByOrder(ctx context.Context, orderID uuid.UUID) (*models.Task, error) {
	task, err := scanTask(c.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE order_id = $1 ORDER BY created_at ASC LIMIT 1
	`, orderID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// TransitionTask moves the task from one status to another with an optimistic
// guard: the update applies only if the task is still in the expected status.
func (c *Client) TransitionTask(ctx context.Context, taskID uuid.UUID, from, to models.TaskStatus) error {
	query := `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	if to == models.TaskStatusCompleted {
		query = `UPDATE tasks SET status = $1, completed_at = NOW(), updated_at = NOW() WHERE id = $2 AND status = $3`
	}
	result, err := c.db.ExecContext(ctx, query, to, taskID, from)
	if err != nil {
		return fmt.Errorf("failed to transition task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// CountActiveTasks returns, per designer, the number of tasks currently in
// PENDING, ASSIGNED or IN_PROGRESS. Designers with no active tasks are absent
// from the map.
func (c *Client) CountActiveTasks(ctx context.Context, designerIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(designerIDs))
	if len(designerIDs) == 0 {
		return counts, nil
	}

	ids := make([]string, len(designerIDs))
	for i, id := range designerIDs {
		ids[i] = id.String()
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT assigned_to, COUNT(*)
		FROM tasks
		WHERE assigned_to = ANY($1)
		  AND status IN ('PENDING', 'ASSIGNED', 'IN_PROGRESS')
		GROUP BY assigned_to
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to count active tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

// ListDesignerOverview returns every designer with their active task count.
func (c *Client) ListDesignerOverview(ctx context.Context) ([]models.DesignerOverview, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT u.id, u.name, COUNT(t.id) FILTER (WHERE t.status IN ('PENDING', 'ASSIGNED', 'IN_PROGRESS'))
		FROM users u
		LEFT JOIN tasks t ON t.assigned_to = u.id
		WHERE u.role = 'DESIGNER'
		GROUP BY u.id, u.name
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list designers: %w", err)
	}
	defer rows.Close()

	var overview []models.DesignerOverview
	for rows.Next() {
		var d models.DesignerOverview
		var id uuid.UUID
		if err := rows.Scan(&id, &d.Name, &d.ActiveTasks); err != nil {
			return nil, fmt.Errorf("failed to scan designer: %w", err)
		}
		d.DesignerID = id.String()
		overview = append(overview, d)
	}
	return overview, rows.Err()
}
