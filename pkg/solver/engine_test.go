package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaopai/kaopai/pkg/errors"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/optimizer"
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

func fastOptimizer() *optimizer.Config {
	return &optimizer.Config{
		MaxIterations: 300, MaxTime: 5 * time.Second, InitialTemp: 100,
		CoolingRate: 0.95, TabuSize: 20, NeighborhoodSize: 10,
		StopOnPlateau: true, PlateauThreshold: 100, Seed: 11,
	}
}

func deptPoolTeachers() []*model.Teacher {
	return []*model.Teacher{
		newTeacher("王老师", "3", model.GroupNone),
		newTeacher("赵老师", "3", model.GroupNone),
		newTeacher("李老师", "5", model.GroupNone),
		newTeacher("孙老师", "5", model.GroupNone),
		newTeacher("张老师", "6", model.GroupNone),
		newTeacher("钱老师", "6", model.GroupNone),
	}
}

func TestSolve_CompleteSchedule(t *testing.T) {
	engine := NewEngine()

	req := &Request{
		Students: []*model.Student{
			newStudent("小刘", "3", 1),
			newStudent("小陈", "5", 2),
		},
		Teachers:  deptPoolTeachers(),
		DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-12"},
		Optimizer: fastOptimizer(),
	}

	solution, err := engine.Solve(context.Background(), "task-1", req)
	require.NoError(t, err)
	require.NotNil(t, solution)

	assert.True(t, solution.Success, "期望求解成功: %s", solution.Message)
	assert.Equal(t, 0, solution.Score.Hard)
	assert.Empty(t, solution.Conflicts)
	assert.Empty(t, solution.Unresolved)
	assert.Len(t, solution.Assignments, 3)

	require.NotNil(t, solution.Statistics)
	assert.Equal(t, 2, solution.Statistics.TotalStudents)
	assert.Equal(t, 2, solution.Statistics.ScheduledStudents)
	assert.InDelta(t, 100.0, solution.Statistics.CompletionRate, 1e-9)
}

func TestSolve_UnresolvedStudentReported(t *testing.T) {
	engine := NewEngine()

	req := &Request{
		Students: []*model.Student{
			newStudent("小刘", "3", 1),
			newStudent("小周", "9", 1), // 无同科室考官
		},
		Teachers:  deptPoolTeachers(),
		DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
		Optimizer: fastOptimizer(),
	}

	solution, err := engine.Solve(context.Background(), "task-2", req)
	require.NoError(t, err)

	assert.False(t, solution.Success)
	require.Len(t, solution.Unresolved, 1)
	assert.Equal(t, "小周", solution.Unresolved[0].StudentName)
	assert.NotNil(t, solution.Unresolved[0].Diagnostic)
}

func TestSolve_InputValidation(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	cases := []struct {
		name string
		req  *Request
		code errors.Code
	}{
		{
			name: "空学员列表",
			req: &Request{
				Teachers:  deptPoolTeachers(),
				DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
			},
			code: errors.CodeInvalidInput,
		},
		{
			name: "空考官列表",
			req: &Request{
				Students:  []*model.Student{newStudent("小刘", "3", 1)},
				DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
			},
			code: errors.CodeInvalidInput,
		},
		{
			name: "非法考核天数",
			req: &Request{
				Students:  []*model.Student{newStudent("小刘", "3", 3)},
				Teachers:  deptPoolTeachers(),
				DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
			},
			code: errors.CodeInvalidInput,
		},
		{
			name: "日期格式错误",
			req: &Request{
				Students:  []*model.Student{newStudent("小刘", "3", 1)},
				Teachers:  deptPoolTeachers(),
				DateRange: model.DateRange{StartDate: "2024/01/01", EndDate: "2024-01-05"},
			},
			code: errors.CodeInvalidDateRange,
		},
		{
			name: "起始晚于结束",
			req: &Request{
				Students:  []*model.Student{newStudent("小刘", "3", 1)},
				Teachers:  deptPoolTeachers(),
				DateRange: model.DateRange{StartDate: "2024-01-10", EndDate: "2024-01-05"},
			},
			code: errors.CodeInvalidDateRange,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := engine.Solve(ctx, "task-v", c.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.code), "期望错误码 %s，实际 %v", c.code, err)
		})
	}
}

func TestSolve_PinnedAssignmentsPreserved(t *testing.T) {
	engine := NewEngine()

	students := []*model.Student{
		newStudent("小刘", "3", 1),
		newStudent("小杨", "5", 1),
	}
	teachers := deptPoolTeachers()

	pinned := &model.ExamAssignment{
		BaseModel: model.NewBaseModel(),
		StudentID: students[0].ID,
		ExamType:  model.ExamDay1,
		Subjects:  []string{"理论"},
		Date:      "2024-01-02",
		Examiner1: teachers[0].Ref(),
		Examiner2: teachers[2].Ref(),
	}
	pinned.Pin()

	req := &Request{
		Students:  students,
		Teachers:  teachers,
		DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
		Optimizer: fastOptimizer(),
		Pinned:    []*model.ExamAssignment{pinned},
	}

	solution, err := engine.Solve(context.Background(), "task-3", req)
	require.NoError(t, err)

	var kept *model.ExamAssignment
	for _, a := range solution.Assignments {
		if a.ID == pinned.ID {
			kept = a
		}
	}
	require.NotNil(t, kept, "锁定安排丢失")
	assert.True(t, kept.Pinned)
	assert.True(t, kept.MatchesSnapshot(), "锁定安排的考官被改动")
	assert.Equal(t, teachers[0].ID.String(), kept.Examiner1.ID)
}

func TestProfile_ReturnsOrderedProfiles(t *testing.T) {
	engine := NewEngine()

	req := &Request{
		Students: []*model.Student{
			newStudent("单日学员", "3", 1),
			newStudent("两日学员", "5", 2),
		},
		Teachers:  deptPoolTeachers(),
		DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
	}

	profiles, err := engine.Profile(req)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	// 两天学员排在前面
	assert.Equal(t, "两日学员", profiles[0].StudentName)
}

func TestSolve_CancelledStillReturnsSolution(t *testing.T) {
	engine := NewEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := &Request{
		Students:  []*model.Student{newStudent("小刘", "3", 1)},
		Teachers:  deptPoolTeachers(),
		DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
		Optimizer: fastOptimizer(),
	}

	solution, err := engine.Solve(ctx, "task-4", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeCancelled))
	require.NotNil(t, solution, "取消时仍应返回已构造的解")
	assert.NotEmpty(t, solution.Assignments)
}

func TestSolve_DeadlineExceededReturnsTimeout(t *testing.T) {
	engine := NewEngine()

	// 截止时间已过，优化阶段第一轮即退出
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	req := &Request{
		Students:  []*model.Student{newStudent("小刘", "3", 1)},
		Teachers:  deptPoolTeachers(),
		DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
		Optimizer: fastOptimizer(),
	}

	solution, err := engine.Solve(ctx, "task-5", req)
	require.Error(t, err, "超时不得静默当作正常完成")
	assert.True(t, errors.Is(err, errors.CodeTimeout))
	require.NotNil(t, solution, "超时时仍应返回已构造的解")
	assert.NotEmpty(t, solution.Assignments)
}
