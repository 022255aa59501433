// Package duty 实现四组四天轮转的值班日历
//
// 值班按固定基准日锚定的 4 天周期轮转：每天恰有一个白班组、
// 一个夜班组，其余两组休息。对任意日期该映射都是纯函数，无错误路径。
package duty

import (
	"time"

	"github.com/kaopai/kaopai/pkg/model"
)

// ReferenceDate 轮转基准日（周期位置 0）
const ReferenceDate = "2024-01-01"

// Schedule 某日的值班安排
// 白班组、夜班组与两个休息组恰好划分四个值班组
type Schedule struct {
	Date          string            `json:"date"`
	DayShift      model.DutyGroup   `json:"day_shift"`
	NightShift    model.DutyGroup   `json:"night_shift"`
	RestingGroups [2]model.DutyGroup `json:"resting_groups"`
}

// 轮转表：周期位置 -> (白班, 夜班)
// 休息组为其余两组，次序固定：夜班的前一班在前（下夜班者先休）
var rotation = [4]struct {
	day   model.DutyGroup
	night model.DutyGroup
}{
	{day: model.GroupTwo, night: model.GroupOne},
	{day: model.GroupThree, night: model.GroupTwo},
	{day: model.GroupFour, night: model.GroupThree},
	{day: model.GroupOne, night: model.GroupFour},
}

var referenceTime = mustParse(ReferenceDate)

func mustParse(date string) time.Time {
	t, err := model.ParseDate(date)
	if err != nil {
		panic("duty: 基准日解析失败: " + date)
	}
	return t
}

// CyclePosition 计算日期在 4 天周期中的位置
// 对基准日之前的日期同样成立（先取模再归正）
func CyclePosition(date time.Time) int {
	days := int(date.Truncate(24*time.Hour).Sub(referenceTime).Hours() / 24)
	return ((days % 4) + 4) % 4
}

// ShiftsFor 返回某日期的值班安排
// 对任意日期总有定义；日期解析失败时按基准日处理不会发生，
// 因为入参为 time.Time
func ShiftsFor(date time.Time) Schedule {
	pos := CyclePosition(date)
	entry := rotation[pos]

	var resting [2]model.DutyGroup
	i := 0
	for _, g := range model.AllGroups() {
		if g != entry.day && g != entry.night {
			resting[i] = g
			i++
		}
	}
	// 第一休息组为昨天的夜班组（下夜班），第二休息组为另一组
	prev := rotation[((pos-1)%4+4)%4]
	if resting[1] == prev.night {
		resting[0], resting[1] = resting[1], resting[0]
	}

	return Schedule{
		Date:          date.Format(model.DateLayout),
		DayShift:      entry.day,
		NightShift:    entry.night,
		RestingGroups: resting,
	}
}

// ShiftsForDate 按日期字符串返回值班安排
// 解析失败返回 false
func ShiftsForDate(date string) (Schedule, bool) {
	t, err := model.ParseDate(date)
	if err != nil {
		return Schedule{}, false
	}
	return ShiftsFor(t), true
}

// DayShiftGroup 返回某日期的白班组
func DayShiftGroup(date string) model.DutyGroup {
	s, ok := ShiftsForDate(date)
	if !ok {
		return model.GroupNone
	}
	return s.DayShift
}

// GroupStatus 某值班组在某日期的状态
type GroupStatus string

const (
	StatusDayShift   GroupStatus = "day_shift"   // 白班
	StatusNightShift GroupStatus = "night_shift" // 夜班
	StatusFirstRest  GroupStatus = "first_rest"  // 第一休息日（下夜班）
	StatusSecondRest GroupStatus = "second_rest" // 第二休息日
	StatusNone       GroupStatus = "none"        // 行政班/无值班组
)

// StatusOf 返回某值班组在某日期的状态
func (s Schedule) StatusOf(group model.DutyGroup) GroupStatus {
	switch group {
	case s.DayShift:
		return StatusDayShift
	case s.NightShift:
		return StatusNightShift
	case s.RestingGroups[0]:
		return StatusFirstRest
	case s.RestingGroups[1]:
		return StatusSecondRest
	default:
		return StatusNone
	}
}
