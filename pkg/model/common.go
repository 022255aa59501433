// Package model 定义考官排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// DutyGroup 值班组（四组轮转）
type DutyGroup string

const (
	GroupOne   DutyGroup = "group1" // 一组
	GroupTwo   DutyGroup = "group2" // 二组
	GroupThree DutyGroup = "group3" // 三组
	GroupFour  DutyGroup = "group4" // 四组
	GroupNone  DutyGroup = ""       // 无值班组（行政班）
)

// AllGroups 返回四个值班组
func AllGroups() []DutyGroup {
	return []DutyGroup{GroupOne, GroupTwo, GroupThree, GroupFour}
}

// IsAdministrative 检查是否为行政班（无值班组）
func (g DutyGroup) IsAdministrative() bool {
	return g == GroupNone
}

// ExamType 考核类型标签
type ExamType string

const (
	ExamDay1 ExamType = "day1" // 第一天：理论考核
	ExamDay2 ExamType = "day2" // 第二天：操作考核
)

// RequiresOnSite 检查考核类型是否要求学员到场
// 理论与操作考核均为现场考核；保留按类型区分的入口以便扩展
func (t ExamType) RequiresOnSite() bool {
	return true
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DateRange 日期范围（闭区间）
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Dates 展开为日期列表
func (r DateRange) Dates() ([]string, error) {
	start, err := ParseDate(r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(r.EndDate)
	if err != nil {
		return nil, err
	}
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates, nil
}

// DateLayout 日期字符串格式
const DateLayout = "2006-01-02"

// ParseDate 解析日期字符串
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// NextDate 获取后一天日期
func NextDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(DateLayout)
}

// PreviousDate 获取前一天日期
func PreviousDate(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// IsConsecutive 检查两个日期是否相邻（date2 = date1 + 1天）
func IsConsecutive(date1, date2 string) bool {
	return date1 != "" && NextDate(date1) == date2
}

// IsWeekend 检查日期是否为周末
func IsWeekend(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkdayFn 工作日判定函数（由外部日历服务提供）
// 返回 true 表示该日期为可排考的工作日
type WorkdayFn func(date string) bool

// DefaultWorkdayFn 默认工作日判定：周一至周五
func DefaultWorkdayFn() WorkdayFn {
	return func(date string) bool {
		return !IsWeekend(date)
	}
}
