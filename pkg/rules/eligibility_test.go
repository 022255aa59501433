package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
)

func TestValidExaminer1(t *testing.T) {
	assert.True(t, ValidExaminer1("5", "5"), "同科室应当合法")
	assert.True(t, ValidExaminer1("3", "7"), "互通科室对应当合法")
	assert.True(t, ValidExaminer1("7", "3"), "互通科室对无序")
	assert.False(t, ValidExaminer1("3", "5"))
	assert.False(t, ValidExaminer1("5", "7"))
}

func TestTeacherAvailable_DayShift(t *testing.T) {
	sched, ok := duty.ShiftsForDate("2024-01-01") // 白班 group2
	require.True(t, ok)

	dayTeacher := &model.Teacher{BaseModel: model.NewBaseModel(), Name: "白班老师", DutyGroup: model.GroupTwo}
	nightTeacher := &model.Teacher{BaseModel: model.NewBaseModel(), Name: "夜班老师", DutyGroup: model.GroupOne}

	ok, reason := TeacherAvailableReason(dayTeacher, "2024-01-01", sched)
	assert.False(t, ok)
	assert.Equal(t, ReasonDayShift, reason)

	assert.True(t, TeacherAvailable(nightTeacher, "2024-01-01", sched))
}

func TestTeacherAvailable_UnavailablePeriod(t *testing.T) {
	sched, _ := duty.ShiftsForDate("2024-01-02")
	teacher := &model.Teacher{
		BaseModel: model.NewBaseModel(),
		DutyGroup: model.GroupOne,
		UnavailablePeriods: []model.UnavailablePeriod{
			{StartDate: "2024-01-01", EndDate: "2024-01-03", Reason: "进修"},
		},
	}

	ok, reason := TeacherAvailableReason(teacher, "2024-01-02", sched)
	assert.False(t, ok)
	assert.Equal(t, ReasonOnLeave, reason)

	sched2, _ := duty.ShiftsForDate("2024-01-04")
	assert.True(t, TeacherAvailable(teacher, "2024-01-04", sched2))
}

func TestTeacherAvailable_Administrative(t *testing.T) {
	// 行政班老师只受不可用时间段限制
	sched, _ := duty.ShiftsForDate("2024-01-01")
	admin := &model.Teacher{BaseModel: model.NewBaseModel(), DutyGroup: model.GroupNone}
	assert.True(t, TeacherAvailable(admin, "2024-01-01", sched))
}

func TestStudentBlockedOnDate(t *testing.T) {
	sched, _ := duty.ShiftsForDate("2024-01-01") // 白班 group2

	blocked := &model.Student{BaseModel: model.NewBaseModel(), DutyGroup: model.GroupTwo}
	free := &model.Student{BaseModel: model.NewBaseModel(), DutyGroup: model.GroupThree}
	admin := &model.Student{BaseModel: model.NewBaseModel(), DutyGroup: model.GroupNone}

	assert.True(t, StudentBlockedOnDate(blocked, sched, model.ExamDay1))
	assert.False(t, StudentBlockedOnDate(free, sched, model.ExamDay1))
	assert.False(t, StudentBlockedOnDate(admin, sched, model.ExamDay2))
}

func TestValidExaminer2(t *testing.T) {
	assert.False(t, ValidExaminer2("3", "3", "3"), "与学员同科室不合法")
	assert.False(t, ValidExaminer2("3", "5", "5"), "与考官一同科室不合法")
	assert.True(t, ValidExaminer2("3", "3", "5"))
}

func TestValidBackup(t *testing.T) {
	e1 := &model.TeacherRef{ID: "t1", Department: "3"}
	e2 := &model.TeacherRef{ID: "t2", Department: "5"}

	same := &model.Teacher{BaseModel: model.NewBaseModel(), Department: "5"}
	assert.False(t, ValidBackup(e1, e2, same), "与考官二同科室不合法")

	distinct := &model.Teacher{BaseModel: model.NewBaseModel(), Department: "9"}
	assert.True(t, ValidBackup(e1, e2, distinct))
}
