// Package model 定义考官排班引擎的核心数据模型
package model

// Teacher 可担任考官的带教老师
// 除派生的工作量计数外均为只读输入；工作量由引擎每次求解时重新计算
type Teacher struct {
	BaseModel
	Name       string    `json:"name" db:"name"`
	Department string    `json:"department" db:"department"`
	DutyGroup  DutyGroup `json:"duty_group" db:"duty_group"`

	// 不可用时间段（请假、外出等）
	UnavailablePeriods []UnavailablePeriod `json:"unavailable_periods,omitempty" db:"-"`
}

// UnavailablePeriod 不可用时间段（闭区间）
type UnavailablePeriod struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason,omitempty"`
}

// Covers 检查时间段是否覆盖某日期
func (p UnavailablePeriod) Covers(date string) bool {
	return date >= p.StartDate && date <= p.EndDate
}

// IsUnavailableOn 检查老师在某日期是否标记为不可用
func (t *Teacher) IsUnavailableOn(date string) (bool, string) {
	for _, p := range t.UnavailablePeriods {
		if p.Covers(date) {
			return true, p.Reason
		}
	}
	return false, ""
}

// IsAdministrative 检查老师是否为行政班（不参与值班轮转）
func (t *Teacher) IsAdministrative() bool {
	return t.DutyGroup.IsAdministrative()
}

// TeacherRef 考官的最小序列化表示
// 序列化时只保留标量字段，避免对象图循环
type TeacherRef struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	DutyGroup  DutyGroup `json:"duty_group"`
}

// Ref 生成最小序列化表示
func (t *Teacher) Ref() *TeacherRef {
	if t == nil {
		return nil
	}
	return &TeacherRef{
		ID:         t.ID.String(),
		Name:       t.Name,
		Department: t.Department,
		DutyGroup:  t.DutyGroup,
	}
}
