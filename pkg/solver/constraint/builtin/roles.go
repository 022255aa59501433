// Package builtin 提供排考引擎内置的硬/软约束实现
package builtin

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// TwoMainExaminersConstraint HC3: 每场考核必须有两名主考官
type TwoMainExaminersConstraint struct {
	Base
}

// NewTwoMainExaminersConstraint 创建双主考约束
func NewTwoMainExaminersConstraint(weight int) *TwoMainExaminersConstraint {
	return &TwoMainExaminersConstraint{Base: NewBase("HC3", "必须有两名主考官", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *TwoMainExaminersConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if a.IsComplete() {
			continue
		}
		missing := "考官一"
		if a.Examiner1 != nil {
			missing = "考官二"
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message:      fmt.Sprintf("安排 %s (%s) 缺少%s", a.Date, a.ExamType, missing),
			EntityIDs:    []string{a.ID.String()},
			Delta:        -c.Weight(),
			Suggestion:   "补充相应科室的可用考官",
		})
	}

	return delta, details
}

// OneRolePerDayConstraint HC4: 每名考官每天只能担任一个角色
// 跨全天所有安排统计，一人多角色按超出数累计
type OneRolePerDayConstraint struct {
	Base
}

// NewOneRolePerDayConstraint 创建一人一角约束
func NewOneRolePerDayConstraint(weight int) *OneRolePerDayConstraint {
	return &OneRolePerDayConstraint{Base: NewBase("HC4", "每名考官每天一个角色", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *OneRolePerDayConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, date := range ctx.Dates {
		assignments := ctx.DateAssignments(date)
		if len(assignments) == 0 {
			continue
		}

		// teacherID -> 担任角色的安排数
		counts := make(map[string]int)
		names := make(map[string]string)
		for _, a := range assignments {
			for _, ref := range []*model.TeacherRef{a.Examiner1, a.Examiner2, a.Backup} {
				if ref != nil {
					counts[ref.ID]++
					names[ref.ID] = ref.Name
				}
			}
		}

		for id, n := range counts {
			if n <= 1 {
				continue
			}
			extra := n - 1
			delta -= c.Weight() * extra
			details = append(details, constraint.Detail{
				ConstraintID: c.ID(),
				Message:      fmt.Sprintf("考官 %s 在 %s 担任 %d 个角色", names[id], date, n),
				EntityIDs:    []string{id},
				Delta:        -c.Weight() * extra,
				Suggestion:   "将多余角色改派其他可用考官",
			})
		}
	}

	return delta, details
}

// BackupDistinctConstraint HC8: 备用考官与两名主考官不同人
type BackupDistinctConstraint struct {
	Base
}

// NewBackupDistinctConstraint 创建备用考官独立约束
func NewBackupDistinctConstraint(weight int) *BackupDistinctConstraint {
	return &BackupDistinctConstraint{Base: NewBase("HC8", "备用考官与主考官不同人", constraint.CategoryHard, weight)}
}

// Evaluate 评估整个排考方案
func (c *BackupDistinctConstraint) Evaluate(ctx *constraint.Context) (int, []constraint.Detail) {
	delta := 0
	var details []constraint.Detail

	for _, a := range ctx.Assignments {
		if a.Backup == nil {
			continue
		}
		dup := (a.Examiner1 != nil && a.Examiner1.ID == a.Backup.ID) ||
			(a.Examiner2 != nil && a.Examiner2.ID == a.Backup.ID)
		if !dup {
			continue
		}
		delta -= c.Weight()
		details = append(details, constraint.Detail{
			ConstraintID: c.ID(),
			Message:      fmt.Sprintf("安排 %s 的备用考官 %s 兼任主考官", a.Date, a.Backup.Name),
			EntityIDs:    []string{a.ID.String(), a.Backup.ID},
			Delta:        -c.Weight(),
			Suggestion:   "更换备用考官或置空",
		})
	}

	return delta, details
}
