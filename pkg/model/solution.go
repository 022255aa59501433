// Package model 定义考官排班引擎的核心数据模型
package model

import "fmt"

// Score 两级评分
// Hard 为非正整数，0 表示完全可行；Soft 为待最大化的有符号整数
type Score struct {
	Hard int `json:"hard"`
	Soft int `json:"soft"`
}

// Feasible 检查硬约束是否全部满足
func (s Score) Feasible() bool {
	return s.Hard == 0
}

// Better 按字典序比较：先比硬分，再比软分
func (s Score) Better(other Score) bool {
	if s.Hard != other.Hard {
		return s.Hard > other.Hard
	}
	return s.Soft > other.Soft
}

// String 格式化评分
func (s Score) String() string {
	return fmt.Sprintf("%dhard/%dsoft", s.Hard, s.Soft)
}

// Severity 冲突严重程度
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Conflict 结构化冲突
type Conflict struct {
	ConstraintID string   `json:"constraint_id"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	EntityIDs    []string `json:"entity_ids,omitempty"`
	// 可行性诊断建议（如增加考官、放宽日期范围）
	Suggestion string `json:"suggestion,omitempty"`
}

// UnresolvedStudent 未能安排的学员及其资源诊断
type UnresolvedStudent struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Reason      string `json:"reason"`
	// 按排除原因拆分的候选考官计数
	Diagnostic *ResourceDiagnostic `json:"diagnostic,omitempty"`
}

// ResourceDiagnostic 资源诊断：候选考官按排除原因的计数
// TotalTeachers 为考官名册人数，其余字段按 考官×工作日 累计
type ResourceDiagnostic struct {
	TotalTeachers   int `json:"total_teachers"`
	WrongDepartment int `json:"wrong_department"`
	DayShiftBlocked int `json:"day_shift_blocked"`
	Unavailable     int `json:"unavailable"`
	AlreadyAssigned int `json:"already_assigned"`
	Eligible        int `json:"eligible"`
}

// Statistics 排考统计
type Statistics struct {
	TotalStudents      int     `json:"total_students"`
	ScheduledStudents  int     `json:"scheduled_students"`
	UnresolvedStudents int     `json:"unresolved_students"`
	TotalAssignments   int     `json:"total_assignments"`
	CompleteCount      int     `json:"complete_count"`
	IncompleteCount    int     `json:"incomplete_count"`
	CompletionRate     float64 `json:"completion_rate"` // 百分比
}

// Solution 一次求解的完整结果
type Solution struct {
	Assignments []*ExamAssignment   `json:"assignments"`
	Score       Score               `json:"score"`
	Conflicts   []Conflict          `json:"conflicts,omitempty"`
	Unresolved  []UnresolvedStudent `json:"unresolved,omitempty"`
	Statistics  *Statistics         `json:"statistics,omitempty"`

	// 成功要求硬分为 0 且校验器确认无残余冲突
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Clone 深拷贝解（安排逐条拷贝，统计与冲突共享只读数据）
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		Assignments: make([]*ExamAssignment, len(s.Assignments)),
		Score:       s.Score,
		Success:     s.Success,
		Message:     s.Message,
	}
	for i, a := range s.Assignments {
		clone.Assignments[i] = a.Clone()
	}
	clone.Conflicts = append([]Conflict(nil), s.Conflicts...)
	clone.Unresolved = append([]UnresolvedStudent(nil), s.Unresolved...)
	if s.Statistics != nil {
		st := *s.Statistics
		clone.Statistics = &st
	}
	return clone
}

// AssignmentsByDate 按日期分组安排
func (s *Solution) AssignmentsByDate() map[string][]*ExamAssignment {
	byDate := make(map[string][]*ExamAssignment)
	for _, a := range s.Assignments {
		byDate[a.Date] = append(byDate[a.Date], a)
	}
	return byDate
}
