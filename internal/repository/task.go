// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SolveTask 求解任务持久化记录
type SolveTask struct {
	ID           uuid.UUID  `json:"id"`
	Mode         string     `json:"mode"`
	State        string     `json:"state"` // pending/running/completed/failed/cancelled
	StudentCount int        `json:"student_count"`
	TeacherCount int        `json:"teacher_count"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	HardScore    int        `json:"hard_score"`
	SoftScore    int        `json:"soft_score"`
	Success      bool       `json:"success"`
	Message      string     `json:"message,omitempty"`
	ErrMessage   string     `json:"err_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	DoneAt       *time.Time `json:"done_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskRepositoryInterface 求解任务仓储接口
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *SolveTask) error
	GetByID(ctx context.Context, id uuid.UUID) (*SolveTask, error)
	Update(ctx context.Context, task *SolveTask) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*SolveTask, int, error)

	UpdateState(ctx context.Context, id uuid.UUID, state string) error
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// TaskRepository 求解任务仓储实现
type TaskRepository struct {
	db DB
}

// NewTaskRepository 创建求解任务仓储
func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create 创建任务记录
func (r *TaskRepository) Create(ctx context.Context, task *SolveTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
		INSERT INTO solve_tasks (
			id, mode, state, student_count, teacher_count, start_date, end_date,
			hard_score, soft_score, success, message, err_message,
			started_at, done_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Mode, task.State, task.StudentCount, task.TeacherCount, task.StartDate, task.EndDate,
		task.HardScore, task.SoftScore, task.Success, task.Message, task.ErrMessage,
		task.StartedAt, task.DoneAt, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建求解任务失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取任务
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*SolveTask, error) {
	query := `
		SELECT id, mode, state, student_count, teacher_count, start_date, end_date,
			hard_score, soft_score, success, message, err_message,
			started_at, done_at, created_at, updated_at
		FROM solve_tasks
		WHERE id = $1
	`

	return r.scanTask(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新任务记录
func (r *TaskRepository) Update(ctx context.Context, task *SolveTask) error {
	task.UpdatedAt = time.Now()

	query := `
		UPDATE solve_tasks SET
			state = $2, hard_score = $3, soft_score = $4, success = $5,
			message = $6, err_message = $7, started_at = $8, done_at = $9, updated_at = $10
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.State, task.HardScore, task.SoftScore, task.Success,
		task.Message, task.ErrMessage, task.StartedAt, task.DoneAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新求解任务失败: %w", err)
	}

	return nil
}

// Delete 删除任务及其安排
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// 先删除安排
	_, err := r.db.ExecContext(ctx, "DELETE FROM exam_assignments WHERE task_id = $1", id)
	if err != nil {
		return fmt.Errorf("删除考核安排失败: %w", err)
	}

	// 再删除任务
	_, err = r.db.ExecContext(ctx, "DELETE FROM solve_tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("删除求解任务失败: %w", err)
	}

	return nil
}

// List 列出任务
func (r *TaskRepository) List(ctx context.Context, filter ListFilter) ([]*SolveTask, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("state = $%d", argNum))
		args = append(args, filter.State)
		argNum++
	}

	if filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("start_date >= $%d", argNum))
		args = append(args, filter.StartDate)
		argNum++
	}

	if filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("end_date <= $%d", argNum))
		args = append(args, filter.EndDate)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// 计数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM solve_tasks %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计求解任务数量失败: %w", err)
	}

	// 查询
	query := fmt.Sprintf(`
		SELECT id, mode, state, student_count, teacher_count, start_date, end_date,
			hard_score, soft_score, success, message, err_message,
			started_at, done_at, created_at, updated_at
		FROM solve_tasks %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, filter.OrderBy, filter.OrderDir, argNum, argNum+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询求解任务列表失败: %w", err)
	}
	defer rows.Close()

	var tasks []*SolveTask
	for rows.Next() {
		t, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}

	return tasks, total, nil
}

// UpdateState 更新任务状态
func (r *TaskRepository) UpdateState(ctx context.Context, id uuid.UUID, state string) error {
	query := "UPDATE solve_tasks SET state = $2, updated_at = $3 WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id, state, time.Now())
	if err != nil {
		return fmt.Errorf("更新任务状态失败: %w", err)
	}
	return nil
}

// PurgeBefore 清理截止时间之前的终态任务及其安排
func (r *TaskRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM exam_assignments WHERE task_id IN (
			SELECT id FROM solve_tasks
			WHERE state IN ('completed', 'failed', 'cancelled') AND updated_at < $1
		)
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理历史安排失败: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM solve_tasks
		WHERE state IN ('completed', 'failed', 'cancelled') AND updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理历史任务失败: %w", err)
	}

	affected, _ := result.RowsAffected()
	return int(affected), nil
}

// scanTask 扫描单行任务
func (r *TaskRepository) scanTask(row *sql.Row) (*SolveTask, error) {
	t := &SolveTask{}
	err := row.Scan(
		&t.ID, &t.Mode, &t.State, &t.StudentCount, &t.TeacherCount, &t.StartDate, &t.EndDate,
		&t.HardScore, &t.SoftScore, &t.Success, &t.Message, &t.ErrMessage,
		&t.StartedAt, &t.DoneAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描求解任务失败: %w", err)
	}
	return t, nil
}

// scanTaskRow 从多行结果扫描
func (r *TaskRepository) scanTaskRow(rows *sql.Rows) (*SolveTask, error) {
	t := &SolveTask{}
	err := rows.Scan(
		&t.ID, &t.Mode, &t.State, &t.StudentCount, &t.TeacherCount, &t.StartDate, &t.EndDate,
		&t.HardScore, &t.SoftScore, &t.Success, &t.Message, &t.ErrMessage,
		&t.StartedAt, &t.DoneAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描求解任务失败: %w", err)
	}
	return t, nil
}
