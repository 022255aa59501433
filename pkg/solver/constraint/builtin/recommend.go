// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// RecommendedDeptConstraint SC5: 考官二/备用考官优先推荐科室
// 三级递减：首选科室得满权重，推荐池内得半权重，池外不得分
type RecommendedDeptConstraint struct {
	Base
}

// NewRecommendedDeptConstraint 创建推荐科室约束
func NewRecommendedDeptConstraint(weight int) *RecommendedDeptConstraint {
	return &RecommendedDeptConstraint{Base: NewBase("SC5", "优先推荐科室", constraint.CategorySoft, weight)}
}

// Evaluate 评估整个排考方案
func (c *RecommendedDeptConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		student := ctx.GetStudent(a.StudentID)
		if student == nil || len(student.RecommendedDepts) == 0 {
			continue
		}
		for _, ref := range []*model.TeacherRef{a.Examiner2, a.Backup} {
			if ref == nil {
				continue
			}
			reward := 0
			switch student.RecommendRank(ref.Department) {
			case 0:
				reward = c.Weight() // 首选科室
			case -1:
				reward = 0
			default:
				reward = c.Weight() / 2 // 推荐池内
			}
			if reward == 0 {
				continue
			}
			delta += reward
			details = append(details, constraint.Detail{
				ConstraintID: c.ID(),
				Message: fmt.Sprintf("学员 %s 的考官 %s 属推荐科室 %s",
					student.Name, ref.Name, ref.Department),
				EntityIDs: []string{a.ID.String(), ref.ID},
				Delta:     reward,
			})
		}
	}

	return delta, details
}
