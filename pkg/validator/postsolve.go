// Package validator 提供求解结果的终检与自动修复
package validator

import (
	"fmt"
	"sort"

	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/model"
)

// RepairKind 自动修复的类别
type RepairKind string

const (
	RepairDuplicate RepairKind = "duplicate"  // 学员同日同类型的重复安排
	RepairMultiRole RepairKind = "multi_role" // 考官同日多角色
)

// Repair 一次自动修复记录
type Repair struct {
	Kind    RepairKind `json:"kind"`
	Message string     `json:"message"`
}

// Report 终检报告
// Conflicts 为残余冲突的权威清单：成功判定以此为准，
// 报告非空时结果不得标记为成功
type Report struct {
	Assignments []*model.ExamAssignment `json:"assignments"`
	Conflicts   []model.Conflict        `json:"conflicts,omitempty"`
	Repairs     []Repair                `json:"repairs,omitempty"`
}

// Clean 检查终检后是否无残余冲突
func (r *Report) Clean() bool {
	return len(r.Conflicts) == 0
}

// PostSolveValidator 求解结果终检器
// 对最终安排做两类自动修复（去重、同日多角色拆除），
// 修复不掉的问题以冲突形式报告；对已终检的结果重复
// 执行不产生新的修复或冲突
type PostSolveValidator struct {
	logger *logger.SolverLogger
}

// New 创建终检器
func New() *PostSolveValidator {
	return &PostSolveValidator{logger: logger.NewSolverLogger()}
}

// Validate 执行终检
// 输入不被改动，返回修复后的安排副本
func (v *PostSolveValidator) Validate(assignments []*model.ExamAssignment) *Report {
	report := &Report{}

	cleaned := make([]*model.ExamAssignment, len(assignments))
	for i, a := range assignments {
		cleaned[i] = a.Clone()
	}

	cleaned = v.removeDuplicates(cleaned, report)
	v.repairMultiRoles(cleaned, report)
	v.collectResidualConflicts(cleaned, report)

	report.Assignments = cleaned
	return report
}

// removeDuplicates 去除学员同日同类型的重复安排，保留先出现的
func (v *PostSolveValidator) removeDuplicates(assignments []*model.ExamAssignment, report *Report) []*model.ExamAssignment {
	type dupKey struct {
		student  string
		date     string
		examType model.ExamType
	}

	seen := make(map[dupKey]bool)
	kept := make([]*model.ExamAssignment, 0, len(assignments))
	for _, a := range assignments {
		key := dupKey{student: a.StudentID.String(), date: a.Date, examType: a.ExamType}
		if seen[key] {
			msg := fmt.Sprintf("学员 %s 在 %s 的 %s 考核存在重复安排，已移除后出现的一条", a.StudentID, a.Date, a.ExamType)
			v.logger.RepairedViolation(string(RepairDuplicate), msg)
			report.Repairs = append(report.Repairs, Repair{Kind: RepairDuplicate, Message: msg})
			continue
		}
		seen[key] = true
		kept = append(kept, a)
	}
	return kept
}

// repairMultiRoles 拆除考官同日多角色
// 同一考官同日出现多个角色时，保留优先级最高的一个
// （考官一 > 考官二 > 备用），其余角色清空
func (v *PostSolveValidator) repairMultiRoles(assignments []*model.ExamAssignment, report *Report) {
	type occurrence struct {
		assignment *model.ExamAssignment
		role       model.Role
	}

	byDate := make(map[string][]*model.ExamAssignment)
	for _, a := range assignments {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, date := range dates {
		occurrences := make(map[string][]occurrence)
		for _, a := range byDate[date] {
			for _, role := range []model.Role{model.RoleExaminer1, model.RoleExaminer2, model.RoleBackup} {
				if ref := a.RoleRef(role); ref != nil {
					occurrences[ref.ID] = append(occurrences[ref.ID], occurrence{assignment: a, role: role})
				}
			}
		}

		for teacherID, occs := range occurrences {
			if len(occs) < 2 {
				continue
			}

			sort.SliceStable(occs, func(i, j int) bool {
				return model.RolePriority(occs[i].role) < model.RolePriority(occs[j].role)
			})

			for _, o := range occs[1:] {
				msg := fmt.Sprintf("考官 %s 在 %s 身兼多角色，已清除 %s", teacherID, date, o.role)
				v.logger.RepairedViolation(string(RepairMultiRole), msg)
				report.Repairs = append(report.Repairs, Repair{Kind: RepairMultiRole, Message: msg})
				o.assignment.SetRole(o.role, nil)
			}
		}
	}
}

// collectResidualConflicts 收集修复不掉的残余冲突
// 多角色拆除可能清空主考官，缺主考官的安排必须暴露
func (v *PostSolveValidator) collectResidualConflicts(assignments []*model.ExamAssignment, report *Report) {
	for _, a := range assignments {
		if a.IsComplete() {
			continue
		}
		missing := "考官一"
		if a.Examiner1 != nil {
			missing = "考官二"
		}
		report.Conflicts = append(report.Conflicts, model.Conflict{
			ConstraintID: model.HC3TwoMainExaminers,
			Severity:     model.SeverityError,
			Message:      fmt.Sprintf("学员 %s 在 %s 的安排缺少%s", a.StudentID, a.Date, missing),
			EntityIDs:    []string{a.ID.String()},
			Suggestion:   "增加该科室可用考官或调整考核日期",
		})
	}
}
