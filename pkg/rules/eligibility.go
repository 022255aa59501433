// Package rules 提供科室匹配与值班可用性的无状态判定
package rules

import (
	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
)

// ValidExaminer1 检查考官一的科室是否合法
// 同科室合法；唯一的例外是授权互通的一对科室
func ValidExaminer1(studentDept, teacherDept string) bool {
	if studentDept == teacherDept {
		return true
	}
	return model.IsInterchangeablePair(studentDept, teacherDept)
}

// UnavailableReason 老师在某日期不可用的原因
type UnavailableReason string

const (
	ReasonNone        UnavailableReason = ""            // 可用
	ReasonOnLeave     UnavailableReason = "on_leave"    // 明确标记的不可用时间段
	ReasonDayShift    UnavailableReason = "day_shift"   // 当天白班
)

// TeacherAvailable 检查老师在某日期是否可担任考官
// 不可用时间段覆盖该日期、或其值班组当天为白班时不可用；
// 行政班（无值班组）老师只受不可用时间段限制
func TeacherAvailable(teacher *model.Teacher, date string, sched duty.Schedule) bool {
	ok, _ := TeacherAvailableReason(teacher, date, sched)
	return ok
}

// TeacherAvailableReason 同 TeacherAvailable，并返回不可用原因
func TeacherAvailableReason(teacher *model.Teacher, date string, sched duty.Schedule) (bool, UnavailableReason) {
	if blocked, _ := teacher.IsUnavailableOn(date); blocked {
		return false, ReasonOnLeave
	}
	if !teacher.IsAdministrative() && teacher.DutyGroup == sched.DayShift {
		return false, ReasonDayShift
	}
	return true, ReasonNone
}

// StudentBlockedOnDate 检查学员在某日期是否禁止排考
// 考核类型要求到场且学员值班组当天为白班时禁止
func StudentBlockedOnDate(student *model.Student, sched duty.Schedule, examType model.ExamType) bool {
	if !examType.RequiresOnSite() {
		return false
	}
	if student.DutyGroup.IsAdministrative() {
		return false
	}
	return student.DutyGroup == sched.DayShift
}

// ValidExaminer2 检查考官二的科室是否合法
// 考官二必须与考官一、学员均不同科室
func ValidExaminer2(studentDept, examiner1Dept, teacherDept string) bool {
	return teacherDept != studentDept && teacherDept != examiner1Dept
}

// ValidBackup 检查备用考官是否合法
// 备用考官与两名主考官不同人且不同科室
func ValidBackup(examiner1, examiner2 *model.TeacherRef, teacher *model.Teacher) bool {
	id := teacher.ID.String()
	if examiner1 != nil && (examiner1.ID == id || examiner1.Department == teacher.Department) {
		return false
	}
	if examiner2 != nil && (examiner2.ID == id || examiner2.Department == teacher.Department) {
		return false
	}
	return true
}
