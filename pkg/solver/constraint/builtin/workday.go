// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// WorkdayConstraint HC1: 考核日必须为非节假日的工作日
type WorkdayConstraint struct {
	Base
}

// NewWorkdayConstraint 创建工作日约束
func NewWorkdayConstraint(weight int) *WorkdayConstraint {
	return &WorkdayConstraint{Base: NewBase("HC1", "考核日必须为工作日", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *WorkdayConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if ctx.Workday(a.Date) {
			continue
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message:      fmt.Sprintf("考核日 %s 不是工作日", a.Date),
			EntityIDs:    []string{a.ID.String()},
			Delta:        -c.Weight(),
			Suggestion:   "调整日期范围或更新节假日日历",
		})
	}

	return delta, details
}
