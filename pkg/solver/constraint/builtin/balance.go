// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// WorkloadBalanceConstraint SC10: 考官工作量均衡
// 以担任角色次数的极差衡量，超过 1 的部分按权重罚分
type WorkloadBalanceConstraint struct {
	Base
}

// NewWorkloadBalanceConstraint 创建工作量均衡约束
func NewWorkloadBalanceConstraint(weight int) *WorkloadBalanceConstraint {
	return &WorkloadBalanceConstraint{Base: NewBase("SC10", "工作量均衡", constraint.CategorySoft, weight)}
}

// Evaluate 评估整个排考方案
func (c *WorkloadBalanceConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	loads := ctx.TeacherWorkloads()
	if len(loads) == 0 {
		return 0, nil
	}

	min, max := -1, 0
	for _, n := range loads {
		if min < 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}

	spread := max - min
	if spread <= 1 {
		return 0, nil
	}

	delta := -c.Weight() * (spread - 1)
	detail := constraint.Detail{
		ConstraintID: c.ID(),
		Message:      fmt.Sprintf("考官工作量极差 %d (最少 %d, 最多 %d)", spread, min, max),
		Delta:        delta,
		Suggestion:   "将高负载考官的部分角色改派低负载考官",
	}
	return delta, []constraint.Detail{detail}
}

// DateSpreadConstraint SC11: 日期分布均衡
// 考核场次向少数日期过度集中时罚分，鼓励利用整个考核窗口
type DateSpreadConstraint struct {
	Base
}

// NewDateSpreadConstraint 创建日期分布约束
func NewDateSpreadConstraint(weight int) *DateSpreadConstraint {
	return &DateSpreadConstraint{Base: NewBase("SC11", "日期分布均衡", constraint.CategorySoft, weight)}
}

// Evaluate 评估整个排考方案
func (c *DateSpreadConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	usage := ctx.DateUsage()
	if len(usage) == 0 || len(ctx.Assignments) == 0 {
		return 0, nil
	}

	// 以平均每日场次为基准，超出 2 场以上的日期按超出量罚分
	avg := float64(len(ctx.Assignments)) / float64(len(usage))
	delta := 0
	var details []constraint.Detail

	for _, date := range ctx.Dates {
		n := usage[date]
		excess := float64(n) - avg - 2
		if excess <= 0 {
			continue
		}
		penalty := -c.Weight() * int(excess)
		delta += penalty
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message:      fmt.Sprintf("日期 %s 安排 %d 场，超过均值 %.1f", date, n, avg),
			Delta:        penalty,
			Suggestion:   "把部分考核分散到空闲日期",
		})
	}

	return delta, details
}
