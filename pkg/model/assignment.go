// Package model 定义考官排班引擎的核心数据模型
package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role 考官角色
type Role string

const (
	RoleExaminer1 Role = "examiner1" // 考官一（主考，必须同科室）
	RoleExaminer2 Role = "examiner2" // 考官二（跨科室主考）
	RoleBackup    Role = "backup"    // 备用考官（可选）
)

// RolePriority 角色优先级，数值越小优先级越高
// 修复同日多角色冲突时保留优先级最高的角色
func RolePriority(r Role) int {
	switch r {
	case RoleExaminer1:
		return 0
	case RoleExaminer2:
		return 1
	default:
		return 2
	}
}

// ExamAssignment 一名学员一天的考核安排
// 构造阶段为每名学员每个考核日创建一条；日期在构造后固定，
// 考官字段可被优化器改写，除非 Pinned 为 true
type ExamAssignment struct {
	BaseModel
	StudentID uuid.UUID `json:"student_id" db:"student_id"`
	ExamType  ExamType  `json:"exam_type" db:"exam_type"`
	Subjects  []string  `json:"subjects,omitempty" db:"-"`
	Date      string    `json:"date" db:"date"` // YYYY-MM-DD

	Examiner1 *TeacherRef `json:"examiner1" db:"-"`
	Examiner2 *TeacherRef `json:"examiner2" db:"-"`
	Backup    *TeacherRef `json:"backup,omitempty" db:"-"`

	// 锁定的安排，优化器不得改动其考官字段
	Pinned bool `json:"pinned" db:"pinned"`

	// 锁定时的原始考官快照，用于校验锁定字段未被悄悄改动
	Original *AssignmentSnapshot `json:"original,omitempty" db:"-"`
}

// AssignmentSnapshot 锁定安排的原始考官快照
type AssignmentSnapshot struct {
	Examiner1ID string `json:"examiner1_id"`
	Examiner2ID string `json:"examiner2_id"`
	BackupID    string `json:"backup_id,omitempty"`
}

// Pin 锁定安排并记录当前考官快照
func (a *ExamAssignment) Pin() {
	a.Pinned = true
	a.Original = a.Snapshot()
}

// Snapshot 生成当前考官快照
func (a *ExamAssignment) Snapshot() *AssignmentSnapshot {
	snap := &AssignmentSnapshot{}
	if a.Examiner1 != nil {
		snap.Examiner1ID = a.Examiner1.ID
	}
	if a.Examiner2 != nil {
		snap.Examiner2ID = a.Examiner2.ID
	}
	if a.Backup != nil {
		snap.BackupID = a.Backup.ID
	}
	return snap
}

// MatchesSnapshot 校验当前考官与快照一致
func (a *ExamAssignment) MatchesSnapshot() bool {
	if a.Original == nil {
		return true
	}
	return a.Snapshot().Equal(a.Original)
}

// Equal 比较两个快照
func (s *AssignmentSnapshot) Equal(other *AssignmentSnapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Examiner1ID == other.Examiner1ID &&
		s.Examiner2ID == other.Examiner2ID &&
		s.BackupID == other.BackupID
}

// RoleOf 返回某考官在此安排中担任的角色
// 未参与时返回 ("", false)
func (a *ExamAssignment) RoleOf(teacherID string) (Role, bool) {
	if a.Examiner1 != nil && a.Examiner1.ID == teacherID {
		return RoleExaminer1, true
	}
	if a.Examiner2 != nil && a.Examiner2.ID == teacherID {
		return RoleExaminer2, true
	}
	if a.Backup != nil && a.Backup.ID == teacherID {
		return RoleBackup, true
	}
	return "", false
}

// RoleRef 返回某角色当前的考官
func (a *ExamAssignment) RoleRef(role Role) *TeacherRef {
	switch role {
	case RoleExaminer1:
		return a.Examiner1
	case RoleExaminer2:
		return a.Examiner2
	default:
		return a.Backup
	}
}

// SetRole 设置某角色的考官
func (a *ExamAssignment) SetRole(role Role, ref *TeacherRef) {
	switch role {
	case RoleExaminer1:
		a.Examiner1 = ref
	case RoleExaminer2:
		a.Examiner2 = ref
	default:
		a.Backup = ref
	}
}

// IsComplete 检查两名主考官是否齐备
func (a *ExamAssignment) IsComplete() bool {
	return a.Examiner1 != nil && a.Examiner2 != nil
}

// Clone 深拷贝安排
func (a *ExamAssignment) Clone() *ExamAssignment {
	clone := *a
	clone.Subjects = append([]string(nil), a.Subjects...)
	if a.Examiner1 != nil {
		ref := *a.Examiner1
		clone.Examiner1 = &ref
	}
	if a.Examiner2 != nil {
		ref := *a.Examiner2
		clone.Examiner2 = &ref
	}
	if a.Backup != nil {
		ref := *a.Backup
		clone.Backup = &ref
	}
	if a.Original != nil {
		snap := *a.Original
		clone.Original = &snap
	}
	return &clone
}

// AssignmentRecord 安排的扁平化持久化形式
// 全部为标量字段，可直接落库或导出
type AssignmentRecord struct {
	ID             string `json:"id" db:"id"`
	StudentID      string `json:"student_id" db:"student_id"`
	StudentName    string `json:"student_name" db:"student_name"`
	ExamType       string `json:"exam_type" db:"exam_type"`
	Date           string `json:"date" db:"date"`
	Subjects       string `json:"subjects" db:"subjects"` // 分号分隔
	Examiner1ID    string `json:"examiner1_id" db:"examiner1_id"`
	Examiner1Name  string `json:"examiner1_name" db:"examiner1_name"`
	Examiner1Dept  string `json:"examiner1_dept" db:"examiner1_dept"`
	Examiner1Group string `json:"examiner1_group,omitempty" db:"examiner1_group"`
	Examiner2ID    string `json:"examiner2_id" db:"examiner2_id"`
	Examiner2Name  string `json:"examiner2_name" db:"examiner2_name"`
	Examiner2Dept  string `json:"examiner2_dept" db:"examiner2_dept"`
	Examiner2Group string `json:"examiner2_group,omitempty" db:"examiner2_group"`
	BackupID       string `json:"backup_id,omitempty" db:"backup_id"`
	BackupName     string `json:"backup_name,omitempty" db:"backup_name"`
	BackupDept     string `json:"backup_dept,omitempty" db:"backup_dept"`
	BackupGroup    string `json:"backup_group,omitempty" db:"backup_group"`
	Pinned         bool   `json:"pinned" db:"pinned"`
}

// ToRecord 转换为扁平化记录，学员姓名由调用方提供
func (a *ExamAssignment) ToRecord(studentName string) *AssignmentRecord {
	r := &AssignmentRecord{
		ID:          a.ID.String(),
		StudentID:   a.StudentID.String(),
		StudentName: studentName,
		ExamType:    string(a.ExamType),
		Date:        a.Date,
		Subjects:    strings.Join(a.Subjects, ";"),
		Pinned:      a.Pinned,
	}
	if a.Examiner1 != nil {
		r.Examiner1ID = a.Examiner1.ID
		r.Examiner1Name = a.Examiner1.Name
		r.Examiner1Dept = a.Examiner1.Department
		r.Examiner1Group = string(a.Examiner1.DutyGroup)
	}
	if a.Examiner2 != nil {
		r.Examiner2ID = a.Examiner2.ID
		r.Examiner2Name = a.Examiner2.Name
		r.Examiner2Dept = a.Examiner2.Department
		r.Examiner2Group = string(a.Examiner2.DutyGroup)
	}
	if a.Backup != nil {
		r.BackupID = a.Backup.ID
		r.BackupName = a.Backup.Name
		r.BackupDept = a.Backup.Department
		r.BackupGroup = string(a.Backup.DutyGroup)
	}
	return r
}

// ToAssignment 从扁平化记录重建安排
func (r *AssignmentRecord) ToAssignment() (*ExamAssignment, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("安排记录ID无效: %w", err)
	}
	studentID, err := uuid.Parse(r.StudentID)
	if err != nil {
		return nil, fmt.Errorf("安排记录学员ID无效: %w", err)
	}
	a := &ExamAssignment{
		BaseModel: BaseModel{ID: id},
		StudentID: studentID,
		ExamType:  ExamType(r.ExamType),
		Date:      r.Date,
		Pinned:    r.Pinned,
	}
	if r.Subjects != "" {
		a.Subjects = strings.Split(r.Subjects, ";")
	}
	if r.Examiner1ID != "" {
		a.Examiner1 = &TeacherRef{ID: r.Examiner1ID, Name: r.Examiner1Name, Department: r.Examiner1Dept, DutyGroup: DutyGroup(r.Examiner1Group)}
	}
	if r.Examiner2ID != "" {
		a.Examiner2 = &TeacherRef{ID: r.Examiner2ID, Name: r.Examiner2Name, Department: r.Examiner2Dept, DutyGroup: DutyGroup(r.Examiner2Group)}
	}
	if r.BackupID != "" {
		a.Backup = &TeacherRef{ID: r.BackupID, Name: r.BackupName, Department: r.BackupDept, DutyGroup: DutyGroup(r.BackupGroup)}
	}
	if a.Pinned {
		a.Original = a.Snapshot()
	}
	return a, nil
}
