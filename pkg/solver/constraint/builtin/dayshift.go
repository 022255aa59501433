// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/rules"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// StudentDayShiftConstraint HC5: 学员白班当天不排考
type StudentDayShiftConstraint struct {
	Base
}

// NewStudentDayShiftConstraint 创建学员白班约束
func NewStudentDayShiftConstraint(weight int) *StudentDayShiftConstraint {
	return &StudentDayShiftConstraint{Base: NewBase("HC5", "学员白班当天不排考", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *StudentDayShiftConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		student := ctx.GetStudent(a.StudentID)
		if student == nil {
			continue
		}
		sched := ctx.DutySchedule(a.Date)
		if !rules.StudentBlockedOnDate(student, sched, a.ExamType) {
			continue
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message: fmt.Sprintf("学员 %s 在 %s 为白班(%s)仍被排考",
				student.Name, a.Date, student.DutyGroup),
			EntityIDs:  []string{a.ID.String(), student.ID.String()},
			Delta:      -c.Weight(),
			Suggestion: "将考核移至该学员非白班的日期",
		})
	}

	return delta, details
}
