// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// ConsecutiveDaysConstraint HC6: 两天考核的学员必须安排在相邻两天
type ConsecutiveDaysConstraint struct {
	Base
}

// NewConsecutiveDaysConstraint 创建连续日期约束
func NewConsecutiveDaysConstraint(weight int) *ConsecutiveDaysConstraint {
	return &ConsecutiveDaysConstraint{Base: NewBase("HC6", "两天考核必须连续", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *ConsecutiveDaysConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, student := range ctx.Students {
		if !student.NeedsTwoDays() {
			continue
		}
		assignments := ctx.StudentAssignments(student.ID)
		var day1, day2 *model.ExamAssignment
		for _, a := range assignments {
			switch a.ExamType {
			case model.ExamDay1:
				day1 = a
			case model.ExamDay2:
				day2 = a
			}
		}
		// 只有两天都已安排时才能判断连续性
		if day1 == nil || day2 == nil {
			continue
		}
		if model.IsConsecutive(day1.Date, day2.Date) {
			continue
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message: fmt.Sprintf("学员 %s 的两天考核 %s / %s 不连续",
				student.Name, day1.Date, day2.Date),
			EntityIDs:  []string{day1.ID.String(), day2.ID.String()},
			Delta:      -c.Weight(),
			Suggestion: "重建该学员的考核日期对",
		})
	}

	return delta, details
}
