// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/rules"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// Examiner1DeptConstraint HC2: 考官一与学员同科室（允许唯一互通科室对）
type Examiner1DeptConstraint struct {
	Base
}

// NewExaminer1DeptConstraint 创建考官一科室约束
func NewExaminer1DeptConstraint(weight int) *Examiner1DeptConstraint {
	return &Examiner1DeptConstraint{Base: NewBase("HC2", "考官一与学员同科室", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *Examiner1DeptConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if a.Examiner1 == nil {
			continue // 缺主考官由 HC3 处理
		}
		student := ctx.GetStudent(a.StudentID)
		if student == nil {
			continue
		}
		if rules.ValidExaminer1(student.Department, a.Examiner1.Department) {
			continue
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message: fmt.Sprintf("学员 %s(科室%s) 的考官一 %s 属科室 %s",
				student.Name, student.Department, a.Examiner1.Name, a.Examiner1.Department),
			EntityIDs:  []string{a.ID.String(), a.Examiner1.ID},
			Delta:      -c.Weight(),
			Suggestion: fmt.Sprintf("为科室 %s 补充考官或启用互通科室", student.Department),
		})
	}

	return delta, details
}

// DistinctDeptsConstraint HC7: 两名主考官科室不同
type DistinctDeptsConstraint struct {
	Base
}

// NewDistinctDeptsConstraint 创建主考官异科室约束
func NewDistinctDeptsConstraint(weight int) *DistinctDeptsConstraint {
	return &DistinctDeptsConstraint{Base: NewBase("HC7", "两名主考官科室不同", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *DistinctDeptsConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if a.Examiner1 == nil || a.Examiner2 == nil {
			continue
		}
		if a.Examiner1.Department != a.Examiner2.Department {
			continue
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message: fmt.Sprintf("安排 %s 的两名主考官同属科室 %s",
				a.Date, a.Examiner1.Department),
			EntityIDs:  []string{a.ID.String(), a.Examiner1.ID, a.Examiner2.ID},
			Delta:      -c.Weight(),
			Suggestion: "更换考官二为其他科室人员",
		})
	}

	return delta, details
}

// DeptInterchangeConstraint SC9: 互通科室（3/7）互用奖励
// 跨科室主考在授权互通对内使用时给予小幅奖励
type DeptInterchangeConstraint struct {
	Base
}

// NewDeptInterchangeConstraint 创建互通科室约束
func NewDeptInterchangeConstraint(weight int) *DeptInterchangeConstraint {
	return &DeptInterchangeConstraint{Base: NewBase("SC9", "互通科室互用", constraint.CategorySoft, weight)}
}

// Evaluate 评估整个排考方案
func (c *DeptInterchangeConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if a.Examiner1 == nil {
			continue
		}
		student := ctx.GetStudent(a.StudentID)
		if student == nil {
			continue
		}
		if !model.IsInterchangeablePair(student.Department, a.Examiner1.Department) {
			continue
		}
		delta += c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message: fmt.Sprintf("学员 %s 使用互通科室考官 %s",
				student.Name, a.Examiner1.Name),
			EntityIDs: []string{a.ID.String(), a.Examiner1.ID},
			Delta:     c.Weight(),
		})
	}

	return delta, details
}
