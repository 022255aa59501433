package builder

import (
	"sort"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/rules"
)

// 考官优先级参数
const (
	nightShiftBonus     = 100 // 当天夜班（白天在家休息，晚上上班）
	firstRestBonus      = 80  // 下夜班休息日
	secondRestBonus     = 60  // 第二休息日
	slackBonusPerUnit   = 10  // 工作量低于最繁忙考官的差值加分
	adjacentLoadPenalty = 50  // 相邻日期已有安排
	examiner2PoolBonus  = 100 // 考官二命中学员推荐池
	backupPoolBonus     = 50  // 备用考官命中学员推荐池
)

// candidate 带优先级得分的考官候选
type candidate struct {
	teacher *model.Teacher
	score   int
}

// statusBonus 按值班状态给分，夜班与休息日的考官白天有空
func statusBonus(status duty.GroupStatus) int {
	switch status {
	case duty.StatusNightShift:
		return nightShiftBonus
	case duty.StatusFirstRest:
		return firstRestBonus
	case duty.StatusSecondRest:
		return secondRestBonus
	default:
		return 0
	}
}

// rankCandidates 按优先级排列一组可用考官
// 得分相同按姓名排序，保证构造结果可重现
func (b *Builder) rankCandidates(teachers []*model.Teacher, date string, sched duty.Schedule, extra func(*model.Teacher) int) []*model.Teacher {
	maxLoad := 0
	for _, t := range teachers {
		if load := b.marks.TeacherLoad(t.ID.String()); load > maxLoad {
			maxLoad = load
		}
	}

	ranked := make([]candidate, 0, len(teachers))
	for _, t := range teachers {
		id := t.ID.String()
		score := statusBonus(sched.StatusOf(t.DutyGroup))
		score += (maxLoad - b.marks.TeacherLoad(id)) * slackBonusPerUnit
		if b.marks.HasAdjacentLoad(id, date) {
			score -= adjacentLoadPenalty
		}
		if extra != nil {
			score += extra(t)
		}
		ranked = append(ranked, candidate{teacher: t, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].teacher.Name < ranked[j].teacher.Name
	})

	out := make([]*model.Teacher, len(ranked))
	for i, c := range ranked {
		out[i] = c.teacher
	}
	return out
}

// examiner1Candidates 某学员某日期的考官一候选（已过滤，未排序）
func (b *Builder) examiner1Candidates(student *model.Student, date string, sched duty.Schedule) []*model.Teacher {
	var out []*model.Teacher
	for _, t := range b.teachers {
		if !rules.ValidExaminer1(student.Department, t.Department) {
			continue
		}
		if !rules.TeacherAvailable(t, date, sched) {
			continue
		}
		if b.marks.Consumed(t.ID.String(), date) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// examiner2Candidates 考官二候选：排除学员与考官一的科室
func (b *Builder) examiner2Candidates(student *model.Student, examiner1Dept, date string, sched duty.Schedule) []*model.Teacher {
	var out []*model.Teacher
	for _, t := range b.teachers {
		if !rules.ValidExaminer2(student.Department, examiner1Dept, t.Department) {
			continue
		}
		if !rules.TeacherAvailable(t, date, sched) {
			continue
		}
		if b.marks.Consumed(t.ID.String(), date) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// backupCandidates 备用考官候选：与两名主考官不同人不同科室
func (b *Builder) backupCandidates(assignment *model.ExamAssignment, date string, sched duty.Schedule) []*model.Teacher {
	var out []*model.Teacher
	for _, t := range b.teachers {
		if !rules.ValidBackup(assignment.Examiner1, assignment.Examiner2, t) {
			continue
		}
		if !rules.TeacherAvailable(t, date, sched) {
			continue
		}
		if b.marks.Consumed(t.ID.String(), date) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// recommendBonus 推荐科室加分函数：命中推荐池按角色权重一次性加分
// 池内不再分档，推荐顺位的梯度衰减由软约束在优化阶段处理
func recommendBonus(student *model.Student, bonus int) func(*model.Teacher) int {
	return func(t *model.Teacher) int {
		if student.RecommendRank(t.Department) >= 0 {
			return bonus
		}
		return 0
	}
}
