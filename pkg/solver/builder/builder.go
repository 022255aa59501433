package builder

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/profiler"
)

// Result 初始解构造结果
// 无解学员被跳过而非失败，调用方据 Unresolved 给出资源诊断
type Result struct {
	Assignments []*model.ExamAssignment
	Unresolved  []model.UnresolvedStudent
	Profiles    []*profiler.Profile
}

// Builder 贪心初始解构造器
// 按资源紧张度排序学员，为每名学员挑选日期并依次补齐
// 考官一、考官二与备用考官；单名学员失败时整体回滚该学员
type Builder struct {
	students []*model.Student
	teachers []*model.Teacher
	dates    []string
	workday  model.WorkdayFn

	marks    *DayMarks
	byDate   map[string][]*model.ExamAssignment
	existing []*model.ExamAssignment
	seeded   map[string]bool // 已有安排覆盖的学员
	logger   *logger.SolverLogger
}

// New 创建初始解构造器
func New(students []*model.Student, teachers []*model.Teacher, dates []string, workday model.WorkdayFn) *Builder {
	if workday == nil {
		workday = model.DefaultWorkdayFn()
	}
	return &Builder{
		students: students,
		teachers: teachers,
		dates:    dates,
		workday:  workday,
		marks:    NewDayMarks(),
		byDate:   make(map[string][]*model.ExamAssignment),
		seeded:   make(map[string]bool),
		logger:   logger.NewSolverLogger(),
	}
}

// Seed 预置已有安排（重排时已锁定的部分）
// 其考官占用被登记为不可再用，涉及的学员不再重新排期
func (b *Builder) Seed(existing []*model.ExamAssignment) {
	for _, a := range existing {
		for _, role := range []model.Role{model.RoleExaminer1, model.RoleExaminer2, model.RoleBackup} {
			ref := a.RoleRef(role)
			if ref == nil {
				continue
			}
			if err := b.marks.Mark(a.Date, ref.ID, role); err != nil {
				// 预置数据自身冲突，保留先登记的占用
				continue
			}
		}
		b.byDate[a.Date] = append(b.byDate[a.Date], a)
		b.seeded[a.StudentID.String()] = true
		b.existing = append(b.existing, a)
	}
}

// Build 构造初始解
// 两天学员优先，其后按风险等级降序处理；返回的安排
// 保证无日内重复占用，但软约束质量交由优化器提升
func (b *Builder) Build() *Result {
	prof := profiler.New(b.teachers, b.dates, b.workday)
	profiles := prof.ProfileAll(b.students)

	result := &Result{Profiles: profiles}
	result.Assignments = append(result.Assignments, b.existing...)
	for _, p := range profiles {
		if b.seeded[p.StudentID] {
			continue
		}
		assignments, err := b.scheduleStudent(p.Student)
		if err != nil {
			b.logger.InfeasibleStudent(p.StudentName, err.Error())
			// 用当前占用状态重算诊断，反映真实资源缺口
			diag := prof.ProfileStudent(p.Student, b.students, b.marks.Consumed).Diagnostic
			result.Unresolved = append(result.Unresolved, model.UnresolvedStudent{
				StudentID:   p.StudentID,
				StudentName: p.StudentName,
				Reason:      err.Error(),
				Diagnostic:  &diag,
			})
			continue
		}
		result.Assignments = append(result.Assignments, assignments...)
	}
	return result
}

// scheduleStudent 为单名学员构造全部安排，失败时回滚
func (b *Builder) scheduleStudent(student *model.Student) ([]*model.ExamAssignment, error) {
	var dates []string
	if student.NeedsTwoDays() {
		dates = b.pickDatePair(student)
	} else {
		dates = b.pickSingleDate(student)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("考核窗口内无可用日期")
	}

	examTypes := []model.ExamType{model.ExamDay1, model.ExamDay2}
	var built []*model.ExamAssignment
	for i, date := range dates {
		assignment, err := b.buildAssignment(student, date, examTypes[i])
		if err != nil {
			b.rollback(built)
			return nil, fmt.Errorf("%s 安排失败: %w", date, err)
		}
		built = append(built, assignment)
	}
	return built, nil
}

// buildAssignment 构造学员单日的安排并占用考官
func (b *Builder) buildAssignment(student *model.Student, date string, examType model.ExamType) (*model.ExamAssignment, error) {
	sched, ok := duty.ShiftsForDate(date)
	if !ok {
		return nil, fmt.Errorf("日期非法: %s", date)
	}

	assignment := &model.ExamAssignment{
		BaseModel: model.NewBaseModel(),
		StudentID: student.ID,
		ExamType:  examType,
		Subjects:  student.SubjectsFor(examType),
		Date:      date,
	}

	e1 := b.rankCandidates(b.examiner1Candidates(student, date, sched), date, sched, nil)
	if len(e1) == 0 {
		return nil, fmt.Errorf("无考官一候选")
	}
	if err := b.assignRole(assignment, model.RoleExaminer1, e1[0]); err != nil {
		return nil, err
	}

	e2 := b.rankCandidates(
		b.examiner2Candidates(student, e1[0].Department, date, sched),
		date, sched, recommendBonus(student, examiner2PoolBonus))
	if len(e2) == 0 {
		b.releaseAssignment(assignment)
		return nil, fmt.Errorf("无考官二候选")
	}
	if err := b.assignRole(assignment, model.RoleExaminer2, e2[0]); err != nil {
		b.releaseAssignment(assignment)
		return nil, err
	}

	// 备用考官尽力而为，缺失不阻断构造
	backup := b.rankCandidates(
		b.backupCandidates(assignment, date, sched),
		date, sched, recommendBonus(student, backupPoolBonus))
	if len(backup) > 0 {
		if err := b.assignRole(assignment, model.RoleBackup, backup[0]); err != nil {
			b.releaseAssignment(assignment)
			return nil, err
		}
	}

	b.byDate[date] = append(b.byDate[date], assignment)
	return assignment, nil
}

// assignRole 占用考官并写入安排的角色字段
func (b *Builder) assignRole(assignment *model.ExamAssignment, role model.Role, teacher *model.Teacher) error {
	if err := b.marks.Mark(assignment.Date, teacher.ID.String(), role); err != nil {
		return err
	}
	assignment.SetRole(role, teacher.Ref())
	return nil
}

// releaseAssignment 释放单条安排已占用的全部考官
func (b *Builder) releaseAssignment(assignment *model.ExamAssignment) {
	for _, ref := range []*model.TeacherRef{assignment.Examiner1, assignment.Examiner2, assignment.Backup} {
		if ref != nil {
			b.marks.Release(assignment.Date, ref.ID)
		}
	}
	assignment.Examiner1 = nil
	assignment.Examiner2 = nil
	assignment.Backup = nil
}

// rollback 撤销学员已构造的安排
func (b *Builder) rollback(built []*model.ExamAssignment) {
	for _, a := range built {
		b.releaseAssignment(a)
		kept := b.byDate[a.Date][:0]
		for _, other := range b.byDate[a.Date] {
			if other != a {
				kept = append(kept, other)
			}
		}
		b.byDate[a.Date] = kept
	}
}
