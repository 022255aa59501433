// Package constraint 定义约束接口、排考上下文与约束管理器
package constraint

import (
	"github.com/google/uuid"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足，硬分非 0 即不可行）
	CategorySoft Category = "soft" // 软约束（加权偏好，待最大化）
)

// Constraint 约束接口
type Constraint interface {
	// ID 返回约束标识（HC1/SC5 等）
	ID() string

	// Name 返回约束名称
	Name() string

	// Category 返回约束类别
	Category() Category

	// Weight 返回约束权重
	Weight() int

	// Evaluate 评估整个排考方案
	// 返回对所属评分级别的贡献值（硬约束 ≤0，软约束有符号）与明细
	Evaluate(ctx *Context) (delta int, details []Detail)
}

// Detail 约束评估明细
type Detail struct {
	ConstraintID string   `json:"constraint_id"`
	Message      string   `json:"message"`
	EntityIDs    []string `json:"entity_ids,omitempty"`
	Delta        int      `json:"delta"`
	Suggestion   string   `json:"suggestion,omitempty"`
}

// Context 排考上下文
// 每个求解任务持有自己的一份，不跨任务共享
type Context struct {
	Students []*model.Student
	Teachers []*model.Teacher
	Dates    []string // 可用日期（升序）
	Workday  model.WorkdayFn
	Config   *model.ConstraintConfiguration

	// 当前安排
	Assignments []*model.ExamAssignment

	// 索引缓存
	studentMap    map[uuid.UUID]*model.Student
	teacherMap    map[string]*model.Teacher
	byDate        map[string][]*model.ExamAssignment
	byStudent     map[uuid.UUID][]*model.ExamAssignment
	dutySchedules map[string]duty.Schedule
}

// NewContext 创建排考上下文
func NewContext(students []*model.Student, teachers []*model.Teacher, dates []string, workday model.WorkdayFn, cfg *model.ConstraintConfiguration) *Context {
	if workday == nil {
		workday = model.DefaultWorkdayFn()
	}
	if cfg == nil {
		cfg = model.DefaultConstraintConfiguration()
	}
	ctx := &Context{
		Students:      students,
		Teachers:      teachers,
		Dates:         dates,
		Workday:       workday,
		Config:        cfg,
		Assignments:   make([]*model.ExamAssignment, 0),
		studentMap:    make(map[uuid.UUID]*model.Student, len(students)),
		teacherMap:    make(map[string]*model.Teacher, len(teachers)),
		byDate:        make(map[string][]*model.ExamAssignment),
		byStudent:     make(map[uuid.UUID][]*model.ExamAssignment),
		dutySchedules: make(map[string]duty.Schedule, len(dates)),
	}
	for _, s := range students {
		ctx.studentMap[s.ID] = s
	}
	for _, t := range teachers {
		ctx.teacherMap[t.ID.String()] = t
	}
	for _, d := range dates {
		if sched, ok := duty.ShiftsForDate(d); ok {
			ctx.dutySchedules[d] = sched
		}
	}
	return ctx
}

// SetAssignments 整体替换当前安排并重建索引
func (c *Context) SetAssignments(assignments []*model.ExamAssignment) {
	c.Assignments = assignments
	c.rebuildIndexes()
}

// AddAssignment 追加一条安排
func (c *Context) AddAssignment(a *model.ExamAssignment) {
	c.Assignments = append(c.Assignments, a)
	c.byDate[a.Date] = append(c.byDate[a.Date], a)
	c.byStudent[a.StudentID] = append(c.byStudent[a.StudentID], a)
}

// RemoveAssignment 移除一条安排
func (c *Context) RemoveAssignment(id uuid.UUID) {
	for i, a := range c.Assignments {
		if a.ID == id {
			c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
			break
		}
	}
	c.rebuildIndexes()
}

// rebuildIndexes 重建安排索引
func (c *Context) rebuildIndexes() {
	c.byDate = make(map[string][]*model.ExamAssignment)
	c.byStudent = make(map[uuid.UUID][]*model.ExamAssignment)
	for _, a := range c.Assignments {
		c.byDate[a.Date] = append(c.byDate[a.Date], a)
		c.byStudent[a.StudentID] = append(c.byStudent[a.StudentID], a)
	}
}

// GetStudent 获取学员
func (c *Context) GetStudent(id uuid.UUID) *model.Student {
	return c.studentMap[id]
}

// GetTeacher 按字符串 ID 获取老师
func (c *Context) GetTeacher(id string) *model.Teacher {
	return c.teacherMap[id]
}

// DateAssignments 获取某日期的所有安排
func (c *Context) DateAssignments(date string) []*model.ExamAssignment {
	return c.byDate[date]
}

// StudentAssignments 获取某学员的所有安排
func (c *Context) StudentAssignments(id uuid.UUID) []*model.ExamAssignment {
	return c.byStudent[id]
}

// DutySchedule 获取某日期的值班安排
func (c *Context) DutySchedule(date string) duty.Schedule {
	if sched, ok := c.dutySchedules[date]; ok {
		return sched
	}
	sched, _ := duty.ShiftsForDate(date)
	return sched
}

// TeacherRoleCount 统计某老师在某日期已担任的角色数
func (c *Context) TeacherRoleCount(teacherID, date string) int {
	count := 0
	for _, a := range c.byDate[date] {
		if _, ok := a.RoleOf(teacherID); ok {
			count++
		}
	}
	return count
}

// TeacherWorkloads 统计全部安排中每名老师担任角色的总次数
// 工作量为派生值，每次求解重新计算，不落库
func (c *Context) TeacherWorkloads() map[string]int {
	loads := make(map[string]int, len(c.Teachers))
	for _, t := range c.Teachers {
		loads[t.ID.String()] = 0
	}
	for _, a := range c.Assignments {
		for _, ref := range []*model.TeacherRef{a.Examiner1, a.Examiner2, a.Backup} {
			if ref != nil {
				loads[ref.ID]++
			}
		}
	}
	return loads
}

// DateUsage 统计每个可用日期被安排的场次
func (c *Context) DateUsage() map[string]int {
	usage := make(map[string]int, len(c.Dates))
	for _, d := range c.Dates {
		usage[d] = len(c.byDate[d])
	}
	return usage
}

// Clone 拷贝上下文（安排深拷贝，输入表共享只读引用）
func (c *Context) Clone() *Context {
	clone := NewContext(c.Students, c.Teachers, c.Dates, c.Workday, c.Config)
	assignments := make([]*model.ExamAssignment, len(c.Assignments))
	for i, a := range c.Assignments {
		assignments[i] = a.Clone()
	}
	clone.SetAssignments(assignments)
	return clone
}
