// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// NewManager 按约束配置构建并装配约束管理器
// 固定硬约束 (HC1–HC4) 始终注册；其余约束按配置开关，
// 关闭某约束只移除其得分贡献，不影响其他约束
func NewManager(cfg *model.ConstraintConfiguration) *constraint.Manager {
	if cfg == nil {
		cfg = model.DefaultConstraintConfiguration()
	}

	m := constraint.NewManager()
	for _, c := range Build(cfg) {
		m.Register(c)
	}
	return m
}

// Build 按约束配置实例化全部生效的约束
func Build(cfg *model.ConstraintConfiguration) []constraint.Constraint {
	builders := []struct {
		id   string
		make func(weight int) constraint.Constraint
	}{
		{model.HC1WorkdayOnly, func(w int) constraint.Constraint { return NewWorkdayConstraint(w) }},
		{model.HC2SameDepartment, func(w int) constraint.Constraint { return NewExaminer1DeptConstraint(w) }},
		{model.HC3TwoMainExaminers, func(w int) constraint.Constraint { return NewTwoMainExaminersConstraint(w) }},
		{model.HC4OneRolePerDay, func(w int) constraint.Constraint { return NewOneRolePerDayConstraint(w) }},
		{model.HC5NoOwnDayShift, func(w int) constraint.Constraint { return NewStudentDayShiftConstraint(w) }},
		{model.HC6ConsecutiveDays, func(w int) constraint.Constraint { return NewConsecutiveDaysConstraint(w) }},
		{model.HC7DistinctDepts, func(w int) constraint.Constraint { return NewDistinctDeptsConstraint(w) }},
		{model.HC8BackupDistinct, func(w int) constraint.Constraint { return NewBackupDistinctConstraint(w) }},
		{model.SC1NightShiftPref, func(w int) constraint.Constraint { return NewNightShiftPrefConstraint(w) }},
		{model.SC2FirstRestPref, func(w int) constraint.Constraint { return NewFirstRestPrefConstraint(w) }},
		{model.SC3SecondRestPref, func(w int) constraint.Constraint { return NewSecondRestPrefConstraint(w) }},
		{model.SC4AdminDeprioritze, func(w int) constraint.Constraint { return NewAdminDeprioritizeConstraint(w) }},
		{model.SC5RecommendedDept, func(w int) constraint.Constraint { return NewRecommendedDeptConstraint(w) }},
		{model.SC9DeptInterchange, func(w int) constraint.Constraint { return NewDeptInterchangeConstraint(w) }},
		{model.SC10WorkloadBalance, func(w int) constraint.Constraint { return NewWorkloadBalanceConstraint(w) }},
		{model.SC11DateSpread, func(w int) constraint.Constraint { return NewDateSpreadConstraint(w) }},
		{model.SC16AvoidWeekend, func(w int) constraint.Constraint { return NewAvoidWeekendConstraint(w) }},
		{model.SC17WeekendNight, func(w int) constraint.Constraint { return NewWeekendNightConstraint(w) }},
	}

	constraints := make([]constraint.Constraint, 0, len(builders))
	for _, b := range builders {
		if !cfg.Enabled(b.id) {
			continue
		}
		constraints = append(constraints, b.make(cfg.Weight(b.id)))
	}
	return constraints
}
