// Package builder 提供贪心初始解构造器
package builder

import (
	"fmt"

	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/model"
)

// markKey 日标记键：(日期, 考官ID)
type markKey struct {
	date      string
	teacherID string
}

// DayMarks 构造期间的按日考官占用表
// 归属单次构造调用，随任务结束丢弃，绝不跨并发求解共享。
// 同一考官同一天被标记两次属于构造器缺陷，必须记录为
// 严重的内部一致性错误，绝不静默覆盖
type DayMarks struct {
	marks  map[markKey]model.Role
	logger *logger.SolverLogger
}

// NewDayMarks 创建日标记表
func NewDayMarks() *DayMarks {
	return &DayMarks{
		marks:  make(map[markKey]model.Role),
		logger: logger.NewSolverLogger(),
	}
}

// Mark 标记考官在某日期担任某角色
// 冲突时返回错误并记录严重日志，不覆盖已有标记
func (m *DayMarks) Mark(date, teacherID string, role model.Role) error {
	key := markKey{date: date, teacherID: teacherID}
	if existing, ok := m.marks[key]; ok {
		details := fmt.Sprintf("考官 %s 在 %s 已担任 %s，重复标记为 %s", teacherID, date, existing, role)
		m.logger.InternalInconsistency(details)
		return fmt.Errorf("日标记冲突: %s", details)
	}
	m.marks[key] = role
	return nil
}

// Release 释放某考官某日期的标记（回滚用）
func (m *DayMarks) Release(date, teacherID string) {
	delete(m.marks, markKey{date: date, teacherID: teacherID})
}

// Consumed 检查考官在某日期是否已被占用
func (m *DayMarks) Consumed(teacherID, date string) bool {
	_, ok := m.marks[markKey{date: date, teacherID: teacherID}]
	return ok
}

// CountOn 统计某日期已占用的考官数
func (m *DayMarks) CountOn(date string) int {
	count := 0
	for key := range m.marks {
		if key.date == date {
			count++
		}
	}
	return count
}

// TeacherLoad 统计某考官在全部日期中被占用的次数
func (m *DayMarks) TeacherLoad(teacherID string) int {
	count := 0
	for key := range m.marks {
		if key.teacherID == teacherID {
			count++
		}
	}
	return count
}

// HasAdjacentLoad 检查考官在相邻日期是否已有占用
func (m *DayMarks) HasAdjacentLoad(teacherID, date string) bool {
	return m.Consumed(teacherID, model.PreviousDate(date)) ||
		m.Consumed(teacherID, model.NextDate(date))
}
