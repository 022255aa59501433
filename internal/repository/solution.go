// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kaopai/kaopai/pkg/model"
)

// SolutionRepositoryInterface 求解结果仓储接口
type SolutionRepositoryInterface interface {
	SaveAssignments(ctx context.Context, taskID uuid.UUID, records []*model.AssignmentRecord) error
	GetAssignments(ctx context.Context, taskID uuid.UUID) ([]*model.AssignmentRecord, error)
	GetAssignmentsByTeacher(ctx context.Context, teacherID, startDate, endDate string) ([]*model.AssignmentRecord, error)
	DeleteAssignments(ctx context.Context, taskID uuid.UUID) error
}

// SolutionRepository 求解结果仓储实现
type SolutionRepository struct {
	db DB
}

// NewSolutionRepository 创建求解结果仓储
func NewSolutionRepository(db DB) *SolutionRepository {
	return &SolutionRepository{db: db}
}

// RecordsOf 把解中的安排转换为扁平化记录，姓名从学员列表解析
func RecordsOf(solution *model.Solution, students []*model.Student) []*model.AssignmentRecord {
	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.ID.String()] = s.Name
	}

	records := make([]*model.AssignmentRecord, 0, len(solution.Assignments))
	for _, a := range solution.Assignments {
		records = append(records, a.ToRecord(names[a.StudentID.String()]))
	}
	return records
}

// SaveAssignments 批量保存考核安排
func (r *SolutionRepository) SaveAssignments(ctx context.Context, taskID uuid.UUID, records []*model.AssignmentRecord) error {
	query := `
		INSERT INTO exam_assignments (
			id, task_id, student_id, student_name, exam_type, date, subjects,
			examiner1_id, examiner1_name, examiner1_dept, examiner1_group,
			examiner2_id, examiner2_name, examiner2_dept, examiner2_group,
			backup_id, backup_name, backup_dept, backup_group,
			pinned, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	now := time.Now()
	for _, rec := range records {
		_, err := r.db.ExecContext(ctx, query,
			rec.ID, taskID, rec.StudentID, rec.StudentName, rec.ExamType, rec.Date, rec.Subjects,
			rec.Examiner1ID, rec.Examiner1Name, rec.Examiner1Dept, rec.Examiner1Group,
			rec.Examiner2ID, rec.Examiner2Name, rec.Examiner2Dept, rec.Examiner2Group,
			rec.BackupID, rec.BackupName, rec.BackupDept, rec.BackupGroup,
			rec.Pinned, now,
		)
		if err != nil {
			return fmt.Errorf("保存考核安排失败: %w", err)
		}
	}

	return nil
}

// GetAssignments 获取某任务的全部考核安排
func (r *SolutionRepository) GetAssignments(ctx context.Context, taskID uuid.UUID) ([]*model.AssignmentRecord, error) {
	query := `
		SELECT id, student_id, student_name, exam_type, date, subjects,
			examiner1_id, examiner1_name, examiner1_dept, examiner1_group,
			examiner2_id, examiner2_name, examiner2_dept, examiner2_group,
			backup_id, backup_name, backup_dept, backup_group, pinned
		FROM exam_assignments
		WHERE task_id = $1
		ORDER BY date, student_name
	`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("查询考核安排失败: %w", err)
	}
	defer rows.Close()

	var records []*model.AssignmentRecord
	for rows.Next() {
		rec, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// GetAssignmentsByTeacher 获取某考官在日期范围内担任任意角色的安排
func (r *SolutionRepository) GetAssignmentsByTeacher(ctx context.Context, teacherID, startDate, endDate string) ([]*model.AssignmentRecord, error) {
	query := `
		SELECT id, student_id, student_name, exam_type, date, subjects,
			examiner1_id, examiner1_name, examiner1_dept, examiner1_group,
			examiner2_id, examiner2_name, examiner2_dept, examiner2_group,
			backup_id, backup_name, backup_dept, backup_group, pinned
		FROM exam_assignments
		WHERE (examiner1_id = $1 OR examiner2_id = $1 OR backup_id = $1)
			AND date >= $2 AND date <= $3
		ORDER BY date, student_name
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询考官安排失败: %w", err)
	}
	defer rows.Close()

	var records []*model.AssignmentRecord
	for rows.Next() {
		rec, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// DeleteAssignments 删除某任务的全部考核安排
func (r *SolutionRepository) DeleteAssignments(ctx context.Context, taskID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM exam_assignments WHERE task_id = $1", taskID)
	if err != nil {
		return fmt.Errorf("删除考核安排失败: %w", err)
	}
	return nil
}

// scanAssignment 扫描一行安排记录
func scanAssignment(s Scanner) (*model.AssignmentRecord, error) {
	rec := &model.AssignmentRecord{}
	err := s.Scan(
		&rec.ID, &rec.StudentID, &rec.StudentName, &rec.ExamType, &rec.Date, &rec.Subjects,
		&rec.Examiner1ID, &rec.Examiner1Name, &rec.Examiner1Dept, &rec.Examiner1Group,
		&rec.Examiner2ID, &rec.Examiner2Name, &rec.Examiner2Dept, &rec.Examiner2Group,
		&rec.BackupID, &rec.BackupName, &rec.BackupDept, &rec.BackupGroup, &rec.Pinned,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描考核安排失败: %w", err)
	}
	return rec, nil
}
