package builder

import (
	"sort"

	"github.com/kaopai/kaopai/pkg/duty"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/rules"
)

// 日期打分参数
const (
	resourceBonusPerCandidate = 10 // 每名可用考官一候选
	reuseBonus                = 30 // 日期已被其他学员使用
	adjacentGapBonus          = 40 // 单日学员紧邻已用日期
	overuseCostPerAssignment  = 15 // 日期上已有的安排数
	overuseThreshold          = 3  // 超过该安排数才开始计惩罚
)

// dateChoice 一个候选考核日期（或相邻日期对）及其得分
type dateChoice struct {
	dates []string
	score int
}

// pickDatePair 为两天学员挑选相邻日期对
// 优先资源充裕、已被复用且未过载的组合；全部组合的考官一
// 候选均为零时退回首个未被白班阻断的相邻工作日对
func (b *Builder) pickDatePair(student *model.Student) []string {
	pairs := b.candidatePairs(student)
	if len(pairs) == 0 {
		return nil
	}

	choices := make([]dateChoice, 0, len(pairs))
	for _, pair := range pairs {
		c1 := b.examiner1CandidateCount(student, pair[0])
		c2 := b.examiner1CandidateCount(student, pair[1])
		if c1 == 0 || c2 == 0 {
			continue
		}
		score := (c1 + c2) * resourceBonusPerCandidate
		score += b.reuseScore(pair[0]) + b.reuseScore(pair[1])
		score -= b.overuseCost(pair[0]) + b.overuseCost(pair[1])
		choices = append(choices, dateChoice{dates: pair[:], score: score})
	}

	if len(choices) == 0 {
		// 宽松回退：忽略候选数，保住日期占位
		first := pairs[0]
		return first[:]
	}

	sort.SliceStable(choices, func(i, j int) bool {
		return choices[i].score > choices[j].score
	})
	return choices[0].dates
}

// pickSingleDate 为单日学员挑选考核日期
func (b *Builder) pickSingleDate(student *model.Student) []string {
	feasible := b.candidateSingles(student)
	if len(feasible) == 0 {
		return nil
	}

	choices := make([]dateChoice, 0, len(feasible))
	for _, date := range feasible {
		c := b.examiner1CandidateCount(student, date)
		if c == 0 {
			continue
		}
		score := c * resourceBonusPerCandidate
		score += b.reuseScore(date)
		if b.adjacentToUsed(date) {
			score += adjacentGapBonus
		}
		score -= b.overuseCost(date)
		choices = append(choices, dateChoice{dates: []string{date}, score: score})
	}

	if len(choices) == 0 {
		return []string{feasible[0]}
	}

	sort.SliceStable(choices, func(i, j int) bool {
		return choices[i].score > choices[j].score
	})
	return choices[0].dates
}

// candidateSingles 学员可参加考核的全部工作日
func (b *Builder) candidateSingles(student *model.Student) []string {
	var out []string
	for _, date := range b.dates {
		if !b.workday(date) {
			continue
		}
		sched, ok := duty.ShiftsForDate(date)
		if !ok {
			continue
		}
		if rules.StudentBlockedOnDate(student, sched, model.ExamDay1) {
			continue
		}
		out = append(out, date)
	}
	return out
}

// candidatePairs 学员可参加两天考核的全部相邻工作日对
func (b *Builder) candidatePairs(student *model.Student) [][2]string {
	singles := make(map[string]bool)
	for _, date := range b.candidateSingles(student) {
		singles[date] = true
	}

	var out [][2]string
	for _, date := range b.dates {
		next := model.NextDate(date)
		if singles[date] && singles[next] {
			out = append(out, [2]string{date, next})
		}
	}
	return out
}

// examiner1CandidateCount 某日期可担任考官一且未被占用的考官数
func (b *Builder) examiner1CandidateCount(student *model.Student, date string) int {
	sched, ok := duty.ShiftsForDate(date)
	if !ok {
		return 0
	}
	count := 0
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
		count++
	}
	return count
}

// reuseScore 日期已有安排时给予复用加分，便于考核日集中
func (b *Builder) reuseScore(date string) int {
	if len(b.byDate[date]) > 0 {
		return reuseBonus
	}
	return 0
}

// overuseCost 日期过载惩罚
func (b *Builder) overuseCost(date string) int {
	n := len(b.byDate[date])
	if n <= overuseThreshold {
		return 0
	}
	return (n - overuseThreshold) * overuseCostPerAssignment
}

// adjacentToUsed 日期是否紧邻某个已有安排的日期
func (b *Builder) adjacentToUsed(date string) bool {
	return len(b.byDate[model.PreviousDate(date)]) > 0 ||
		len(b.byDate[model.NextDate(date)]) > 0
}
