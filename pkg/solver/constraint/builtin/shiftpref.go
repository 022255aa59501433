// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// ShiftPreferenceConstraint SC1/SC2/SC3: 考官二与备用考官的班次偏好
// 夜班 > 第一休息日（下夜班）> 第二休息日，按各自权重奖励
type ShiftPreferenceConstraint struct {
	Base
	status duty.GroupStatus
}

// NewNightShiftPrefConstraint 创建夜班偏好约束 (SC1)
func NewNightShiftPrefConstraint(weight int) *ShiftPreferenceConstraint {
	return &ShiftPreferenceConstraint{
		Base:   NewBase("SC1", "优先夜班考官", constraint.CategorySoft, weight),
		status: duty.StatusNightShift,
	}
}

// NewFirstRestPrefConstraint 创建第一休息日偏好约束 (SC2)
func NewFirstRestPrefConstraint(weight int) *ShiftPreferenceConstraint {
	return &ShiftPreferenceConstraint{
		Base:   NewBase("SC2", "优先第一休息日考官", constraint.CategorySoft, weight),
		status: duty.StatusFirstRest,
	}
}

// NewSecondRestPrefConstraint 创建第二休息日偏好约束 (SC3)
func NewSecondRestPrefConstraint(weight int) *ShiftPreferenceConstraint {
	return &ShiftPreferenceConstraint{
		Base:   NewBase("SC3", "第二休息日考官", constraint.CategorySoft, weight),
		status: duty.StatusSecondRest,
	}
}

// Evaluate 评估整个排考方案
func (c *ShiftPreferenceConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		sched := ctx.DutySchedule(a.Date)
		for _, ref := range []*model.TeacherRef{a.Examiner2, a.Backup} {
			if ref == nil || ref.DutyGroup.IsAdministrative() {
				continue
			}
			if sched.StatusOf(ref.DutyGroup) != c.status {
				continue
			}
			delta += c.Weight()
			details = append(details, constraint.Detail{
				ConstraintID: c.ID(),
				Message:      fmt.Sprintf("考官 %s 在 %s 处于偏好班次", ref.Name, a.Date),
				EntityIDs:    []string{a.ID.String(), ref.ID},
				Delta:        c.Weight(),
			})
		}
	}

	return delta, details
}

// AdminDeprioritizeConstraint SC4: 行政班考官降权
// 行政班人员担任主考官记罚分；担任备用考官反而是小幅奖励，
// 因为可以把值班人员留给主考角色
type AdminDeprioritizeConstraint struct {
	Base
}

// NewAdminDeprioritizeConstraint 创建行政班降权约束
func NewAdminDeprioritizeConstraint(weight int) *AdminDeprioritizeConstraint {
	return &AdminDeprioritizeConstraint{Base: NewBase("SC4", "行政班考官降权", constraint.CategorySoft, weight)}
}

// Evaluate 评估整个排考方案
func (c *AdminDeprioritizeConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		for _, ref := range []*model.TeacherRef{a.Examiner1, a.Examiner2} {
			if ref == nil || !ref.DutyGroup.IsAdministrative() {
				continue
			}
			delta -= c.Weight()
			details = append(details, constraint.Detail{
				ConstraintID: c.ID(),
				Message:      fmt.Sprintf("行政班考官 %s 担任主考 (%s)", ref.Name, a.Date),
				EntityIDs:    []string{a.ID.String(), ref.ID},
				Delta:        -c.Weight(),
			})
		}
		if a.Backup != nil && a.Backup.DutyGroup.IsAdministrative() {
			reward := c.Weight() / 2
			delta += reward
			details = append(details, constraint.Detail{
				ConstraintID: c.ID(),
				Message:      fmt.Sprintf("行政班考官 %s 担任备用 (%s)", a.Backup.Name, a.Date),
				EntityIDs:    []string{a.ID.String(), a.Backup.ID},
				Delta:        reward,
			})
		}
	}

	return delta, details
}
