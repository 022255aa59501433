// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// AvoidWeekendConstraint SC16: 避免周末排考
type AvoidWeekendConstraint struct {
	Base
}

// NewAvoidWeekendConstraint 创建周末规避约束
func NewAvoidWeekendConstraint(weight int) *AvoidWeekendConstraint {
	return &AvoidWeekendConstraint{Base: NewBase("SC16", "避免周末排考", constraint.CategorySoft, weight)}
}

// Evaluate 评估整个排考方案
func (c *AvoidWeekendConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if !model.IsWeekend(a.Date) {
			continue
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message:      fmt.Sprintf("考核安排在周末 %s", a.Date),
			EntityIDs:    []string{a.ID.String()},
			Delta:        -c.Weight(),
			Suggestion:   "优先使用工作日日期",
		})
	}

	return delta, details
}

// WeekendNightConstraint SC17: 周末不可避免时优先夜班人员
// 对周末安排中处于夜班的考官给予反向奖励，抵消部分 SC16 罚分
type WeekendNightConstraint struct {
	Base
}

// NewWeekendNightConstraint 创建周末夜班奖励约束
func NewWeekendNightConstraint(weight int) *WeekendNightConstraint {
	return &WeekendNightConstraint{Base: NewBase("SC17", "周末优先夜班人员", constraint.CategorySoft, weight)}
}

// Evaluate 评估整个排考方案
func (c *WeekendNightConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if !model.IsWeekend(a.Date) {
			continue
		}
		sched := ctx.DutySchedule(a.Date)
		for _, ref := range []*model.TeacherRef{a.Examiner1, a.Examiner2, a.Backup} {
			if ref == nil || ref.DutyGroup.IsAdministrative() {
				continue
			}
			if sched.StatusOf(ref.DutyGroup) != duty.StatusNightShift {
				continue
			}
			delta += c.Weight()
			details = append(details, constraint.Detail{
				ConstraintID: c.ID(),
				Message:      fmt.Sprintf("周末 %s 使用夜班考官 %s", a.Date, ref.Name),
				EntityIDs:    []string{a.ID.String(), ref.ID},
				Delta:        c.Weight(),
			})
		}
	}

	return delta, details
}
