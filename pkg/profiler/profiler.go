// Package profiler 在构造前对每名学员做资源可行性画像
//
// 对每名学员枚举可行的单日/连续两日考核窗口，统计每个日期的
// 合格考官一候选数，归并为四级风险分级，用于贪心构造的排序
// 与不可行学员的资源诊断
package profiler

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/rules"
)

// RiskTier 资源风险分级
type RiskTier int

const (
	RiskLow      RiskTier = iota // 低风险
	RiskMedium                   // 中风险
	RiskHigh                     // 高风险
	RiskCritical                 // 极高风险
)

// String 返回风险分级名称
func (r RiskTier) String() string {
	switch r {
	case RiskCritical:
		return "critical"
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

// Window 一个可行的考核窗口
// 单日学员为一个日期，两日学员为相邻日期对
type Window struct {
	Dates      []string `json:"dates"`
	Candidates []int    `json:"candidates"` // 各日期的考官一候选数
}

// MinCandidates 返回窗口内最少的候选数
func (w Window) MinCandidates() int {
	min := -1
	for _, n := range w.Candidates {
		if min < 0 || n < min {
			min = n
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// Profile 单名学员的资源画像
type Profile struct {
	Student       *model.Student `json:"-"`
	StudentID     string         `json:"student_id"`
	StudentName   string         `json:"student_name"`
	Windows       []Window       `json:"windows"`
	WindowCount   int            `json:"window_count"`
	MinCandidates int            `json:"min_candidates"` // 所有窗口中的最小候选数
	DeptTeachers  int            `json:"dept_teachers"`  // 本科室（含互通）可用考官总数
	DeptStudents  int            `json:"dept_students"`  // 本科室待考学员数
	Risk          RiskTier       `json:"risk"`

	// 候选考官按排除原因的计数（跨全部日期累计）
	Diagnostic model.ResourceDiagnostic `json:"diagnostic"`
}

// Pressure 科室压力：学员数与考官数之比
func (p *Profile) Pressure() float64 {
	if p.DeptTeachers == 0 {
		return float64(p.DeptStudents)
	}
	return float64(p.DeptStudents) / float64(p.DeptTeachers)
}

// DiagnosticMessage 生成人可读的资源诊断
func (p *Profile) DiagnosticMessage() string {
	d := p.Diagnostic
	return fmt.Sprintf(
		"可行窗口 %d 个; 候选排除按考官×工作日累计: 科室不符 %d, 白班冲突 %d, 请假 %d, 已有安排 %d (考官总数 %d)",
		p.WindowCount, d.WrongDepartment, d.DayShiftBlocked, d.Unavailable, d.AlreadyAssigned, d.TotalTeachers)
}

// ConsumedFn 查询某老师在某日期是否已被占用
// 构造过程中由建造器的日标记表提供；预分析阶段可为 nil
type ConsumedFn func(teacherID, date string) bool

// Profiler 资源画像分析器
type Profiler struct {
	teachers []*model.Teacher
	dates    []string
	workday  model.WorkdayFn
}

// New 创建资源画像分析器
func New(teachers []*model.Teacher, dates []string, workday model.WorkdayFn) *Profiler {
	if workday == nil {
		workday = model.DefaultWorkdayFn()
	}
	return &Profiler{teachers: teachers, dates: dates, workday: workday}
}

// ProfileStudent 生成单名学员的资源画像
func (p *Profiler) ProfileStudent(student *model.Student, all []*model.Student, consumed ConsumedFn) *Profile {
	profile := &Profile{
		Student:     student,
		StudentID:   student.ID.String(),
		StudentName: student.Name,
	}

	// 本科室（含互通科室）考官与学员规模
	profile.DeptTeachers = lo.CountBy(p.teachers, func(t *model.Teacher) bool {
		return rules.ValidExaminer1(student.Department, t.Department)
	})
	profile.DeptStudents = lo.CountBy(all, func(s *model.Student) bool {
		return s.Department == student.Department
	})

	// 逐工作日统计考官一候选数并累计排除原因
	profile.Diagnostic.TotalTeachers = len(p.teachers)
	counts := make(map[string]int, len(p.dates))
	for _, date := range p.dates {
		if !p.workday(date) {
			continue
		}
		counts[date] = p.countExaminer1Candidates(student, date, consumed, &profile.Diagnostic)
	}

	if student.NeedsTwoDays() {
		profile.Windows = p.pairWindows(student, counts)
	} else {
		profile.Windows = p.singleWindows(student, counts)
	}

	profile.WindowCount = len(profile.Windows)
	profile.MinCandidates = 0
	for i, w := range profile.Windows {
		mc := w.MinCandidates()
		if i == 0 || mc < profile.MinCandidates {
			profile.MinCandidates = mc
		}
	}

	profile.Risk = classify(profile)
	return profile
}

// ProfileAll 生成全部学员的画像，按构造顺序排序：
// 两天学员在前；组内按风险降序、窗口数升序、最小候选数升序、
// 科室压力降序，最后按姓名保证确定性
func (p *Profiler) ProfileAll(students []*model.Student) []*Profile {
	profiles := lo.Map(students, func(s *model.Student, _ int) *Profile {
		return p.ProfileStudent(s, students, nil)
	})

	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.Student.NeedsTwoDays() != b.Student.NeedsTwoDays() {
			return a.Student.NeedsTwoDays()
		}
		if a.Risk != b.Risk {
			return a.Risk > b.Risk
		}
		if a.WindowCount != b.WindowCount {
			return a.WindowCount < b.WindowCount
		}
		if a.MinCandidates != b.MinCandidates {
			return a.MinCandidates < b.MinCandidates
		}
		if a.Pressure() != b.Pressure() {
			return a.Pressure() > b.Pressure()
		}
		return a.StudentName < b.StudentName
	})

	return profiles
}

// countExaminer1Candidates 统计某学员某日期的考官一候选数
// diag 非空时累计排除原因
func (p *Profiler) countExaminer1Candidates(student *model.Student, date string, consumed ConsumedFn, diag *model.ResourceDiagnostic) int {
	sched, ok := duty.ShiftsForDate(date)
	if !ok {
		return 0
	}

	count := 0
	for _, t := range p.teachers {
		if !rules.ValidExaminer1(student.Department, t.Department) {
			if diag != nil {
				diag.WrongDepartment++
			}
			continue
		}
		avail, reason := rules.TeacherAvailableReason(t, date, sched)
		if !avail {
			if diag != nil {
				if reason == rules.ReasonDayShift {
					diag.DayShiftBlocked++
				} else {
					diag.Unavailable++
				}
			}
			continue
		}
		if consumed != nil && consumed(t.ID.String(), date) {
			if diag != nil {
				diag.AlreadyAssigned++
			}
			continue
		}
		count++
		if diag != nil {
			diag.Eligible++
		}
	}
	return count
}

// singleWindows 枚举单日学员的可行窗口
func (p *Profiler) singleWindows(student *model.Student, counts map[string]int) []Window {
	var windows []Window
	for _, date := range p.dates {
		if p.blocked(student, date, model.ExamDay1) {
			continue
		}
		if counts[date] < 1 {
			continue
		}
		windows = append(windows, Window{Dates: []string{date}, Candidates: []int{counts[date]}})
	}
	return windows
}

// pairWindows 枚举两日学员的可行连续日期对
// 两天都至少有一名考官一候选时窗口才可行
func (p *Profiler) pairWindows(student *model.Student, counts map[string]int) []Window {
	var windows []Window
	for i := 0; i+1 < len(p.dates); i++ {
		d1, d2 := p.dates[i], p.dates[i+1]
		if !model.IsConsecutive(d1, d2) {
			continue
		}
		if p.blocked(student, d1, model.ExamDay1) || p.blocked(student, d2, model.ExamDay2) {
			continue
		}
		if counts[d1] < 1 || counts[d2] < 1 {
			continue
		}
		windows = append(windows, Window{
			Dates:      []string{d1, d2},
			Candidates: []int{counts[d1], counts[d2]},
		})
	}
	return windows
}

// blocked 检查学员在某日期是否禁止排考
func (p *Profiler) blocked(student *model.Student, date string, examType model.ExamType) bool {
	sched, ok := duty.ShiftsForDate(date)
	if !ok {
		return true
	}
	return rules.StudentBlockedOnDate(student, sched, examType)
}

// classify 按窗口数与候选数归并风险分级
func classify(p *Profile) RiskTier {
	switch {
	case p.WindowCount <= 2 || p.MinCandidates <= 1:
		return RiskCritical
	case p.WindowCount <= 5 || p.MinCandidates <= 2 || p.DeptTeachers <= 3:
		return RiskHigh
	case p.WindowCount <= 10:
		return RiskMedium
	default:
		return RiskLow
	}
}
