package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaopai/kaopai/pkg/model"
)

func newTeacher(name, dept string, group model.DutyGroup) *model.Teacher {
	return &model.Teacher{
		BaseModel:  model.NewBaseModel(),
		Name:       name,
		Department: dept,
		DutyGroup:  group,
	}
}

func newStudent(name, dept string, days int) *model.Student {
	return &model.Student{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Department:   dept,
		DutyGroup:    model.GroupNone,
		ExamDays:     days,
		Day1Subjects: []string{"理论"},
		Day2Subjects: []string{"操作"},
	}
}

// 2024-01-01 为周一，01-05 连续五个工作日
func weekDates() []string {
	return []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
}

func TestDayMarks_ConflictDetection(t *testing.T) {
	marks := NewDayMarks()

	require.NoError(t, marks.Mark("2024-01-01", "t1", model.RoleExaminer1))
	assert.True(t, marks.Consumed("t1", "2024-01-01"))
	assert.False(t, marks.Consumed("t1", "2024-01-02"))

	// 同日重复标记必须报错且不覆盖
	err := marks.Mark("2024-01-01", "t1", model.RoleBackup)
	require.Error(t, err)
	role := marks.marks[markKey{date: "2024-01-01", teacherID: "t1"}]
	assert.Equal(t, model.RoleExaminer1, role)

	marks.Release("2024-01-01", "t1")
	assert.False(t, marks.Consumed("t1", "2024-01-01"))
	require.NoError(t, marks.Mark("2024-01-01", "t1", model.RoleBackup))
}

func TestDayMarks_LoadCounting(t *testing.T) {
	marks := NewDayMarks()
	require.NoError(t, marks.Mark("2024-01-01", "t1", model.RoleExaminer1))
	require.NoError(t, marks.Mark("2024-01-02", "t1", model.RoleExaminer2))
	require.NoError(t, marks.Mark("2024-01-01", "t2", model.RoleBackup))

	assert.Equal(t, 2, marks.TeacherLoad("t1"))
	assert.Equal(t, 1, marks.TeacherLoad("t2"))
	assert.Equal(t, 2, marks.CountOn("2024-01-01"))
	assert.True(t, marks.HasAdjacentLoad("t1", "2024-01-03"))
	assert.False(t, marks.HasAdjacentLoad("t2", "2024-01-03"))
}

func TestBuild_SingleDayStudent(t *testing.T) {
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("李老师", "5", model.GroupNone),
		newTeacher("张老师", "6", model.GroupNone),
	}
	students := []*model.Student{newStudent("小刘", "3", 1)}

	b := New(students, teachers, weekDates(), nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	require.Len(t, result.Assignments, 1)

	a := result.Assignments[0]
	assert.True(t, a.IsComplete())
	assert.Equal(t, model.ExamDay1, a.ExamType)
	assert.Equal(t, "3", a.Examiner1.Department)
	assert.NotEqual(t, a.Examiner1.Department, a.Examiner2.Department)
	if a.Backup != nil {
		assert.NotEqual(t, a.Backup.Department, a.Examiner1.Department)
		assert.NotEqual(t, a.Backup.Department, a.Examiner2.Department)
	}
}

func TestBuild_TwoDayStudentGetsConsecutiveDates(t *testing.T) {
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("赵老师", "3", model.GroupNone),
		newTeacher("李老师", "5", model.GroupNone),
		newTeacher("张老师", "6", model.GroupNone),
	}
	students := []*model.Student{newStudent("小陈", "3", 2)}

	b := New(students, teachers, weekDates(), nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	require.Len(t, result.Assignments, 2)

	first, second := result.Assignments[0], result.Assignments[1]
	assert.Equal(t, model.ExamDay1, first.ExamType)
	assert.Equal(t, model.ExamDay2, second.ExamType)
	assert.True(t, model.IsConsecutive(first.Date, second.Date))
	assert.Equal(t, []string{"理论"}, first.Subjects)
	assert.Equal(t, []string{"操作"}, second.Subjects)
}

func TestBuild_RecommendedDeptPreferred(t *testing.T) {
	// 姓名排序会偏向"张老师"，推荐加分必须压过姓名顺序
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("张老师", "5", model.GroupNone),
		newTeacher("钱老师", "6", model.GroupNone),
	}
	student := newStudent("小杨", "3", 1)
	student.RecommendedDepts = []string{"6"}

	b := New([]*model.Student{student}, teachers, weekDates(), nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "6", result.Assignments[0].Examiner2.Department)
}

func TestBuild_RecommendPoolFlatForExaminer2(t *testing.T) {
	// 2024-01-01：四组为白班、休息组状态，推荐池加分不分顺位
	// 次选科室的考官也按全额加分，必须压过下夜班休息考官的状态分
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("张老师", "5", model.GroupNone),
		newTeacher("吴老师", "6", model.GroupFour),
	}
	student := newStudent("小韩", "3", 1)
	student.RecommendedDepts = []string{"9", "5"}

	b := New([]*model.Student{student}, teachers, []string{"2024-01-01"}, nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "5", result.Assignments[0].Examiner2.Department)
}

func TestBuild_BackupPoolBonusBelowRestStatus(t *testing.T) {
	// 备用角色的推荐池加分减半，下夜班休息考官应排在池内考官之前
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("李老师", "5", model.GroupOne),
		newTeacher("陈老师", "8", model.GroupNone),
		newTeacher("郑老师", "9", model.GroupFour),
	}
	student := newStudent("小冯", "3", 1)
	student.RecommendedDepts = []string{"8"}

	b := New([]*model.Student{student}, teachers, []string{"2024-01-01"}, nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	require.Len(t, result.Assignments, 1)

	a := result.Assignments[0]
	assert.Equal(t, "5", a.Examiner2.Department)
	require.NotNil(t, a.Backup)
	assert.Equal(t, "9", a.Backup.Department)
}

func TestBuild_InterchangeableDeptExaminer1(t *testing.T) {
	// 学员科室 3 无考官，互通科室 7 顶上
	teachers := []*model.Teacher{
		newTeacher("孙老师", "7", model.GroupNone),
		newTeacher("李老师", "5", model.GroupNone),
	}
	students := []*model.Student{newStudent("小吴", "3", 1)}

	b := New(students, teachers, weekDates(), nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "7", result.Assignments[0].Examiner1.Department)
}

func TestBuild_NoExaminer1_Unresolved(t *testing.T) {
	teachers := []*model.Teacher{
		newTeacher("李老师", "5", model.GroupNone),
		newTeacher("张老师", "6", model.GroupNone),
	}
	students := []*model.Student{newStudent("小周", "9", 1)}

	b := New(students, teachers, weekDates(), nil)
	result := b.Build()

	assert.Empty(t, result.Assignments)
	require.Len(t, result.Unresolved, 1)

	u := result.Unresolved[0]
	assert.Equal(t, "小周", u.StudentName)
	require.NotNil(t, u.Diagnostic)
	// 排除原因按 考官×日期 累计：2 名科室不符考官 × 5 天
	assert.Equal(t, 10, u.Diagnostic.WrongDepartment)
	assert.Equal(t, 0, u.Diagnostic.Eligible)
}

func TestBuild_RollbackReleasesMarks(t *testing.T) {
	// 仅同科室考官：考官一可排，考官二无候选，学员整体回滚
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("赵老师", "3", model.GroupNone),
	}
	students := []*model.Student{newStudent("小郑", "3", 1)}

	b := New(students, teachers, weekDates(), nil)
	result := b.Build()

	assert.Empty(t, result.Assignments)
	require.Len(t, result.Unresolved, 1)

	// 回滚后不得残留任何占用
	for _, teacher := range teachers {
		assert.Equal(t, 0, b.marks.TeacherLoad(teacher.ID.String()))
	}
}

func TestBuild_TwoDayStudentsScheduledFirst(t *testing.T) {
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("赵老师", "3", model.GroupNone),
		newTeacher("李老师", "5", model.GroupNone),
		newTeacher("孙老师", "5", model.GroupNone),
		newTeacher("张老师", "6", model.GroupNone),
		newTeacher("钱老师", "6", model.GroupNone),
	}
	students := []*model.Student{
		newStudent("单日学员", "3", 1),
		newStudent("两日学员", "3", 2),
	}

	b := New(students, teachers, weekDates(), nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	require.Len(t, result.Assignments, 3)
	// 两日学员优先构造，其安排排在前面
	twoDayID := students[1].ID
	assert.Equal(t, twoDayID, result.Assignments[0].StudentID)
	assert.Equal(t, twoDayID, result.Assignments[1].StudentID)
}

func TestBuild_NoDoubleBookingAcrossStudents(t *testing.T) {
	teachers := []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("赵老师", "3", model.GroupNone),
		newTeacher("李老师", "5", model.GroupNone),
		newTeacher("孙老师", "5", model.GroupNone),
		newTeacher("张老师", "6", model.GroupNone),
		newTeacher("钱老师", "6", model.GroupNone),
	}
	students := []*model.Student{
		newStudent("学员甲", "3", 1),
		newStudent("学员乙", "3", 1),
		newStudent("学员丙", "5", 1),
	}

	b := New(students, teachers, weekDates(), nil)
	result := b.Build()

	require.Empty(t, result.Unresolved)
	seen := make(map[string]bool)
	for _, a := range result.Assignments {
		for _, ref := range []*model.TeacherRef{a.Examiner1, a.Examiner2, a.Backup} {
			if ref == nil {
				continue
			}
			key := a.Date + "/" + ref.ID
			assert.False(t, seen[key], "考官 %s 在 %s 重复占用", ref.Name, a.Date)
			seen[key] = true
		}
	}
}
