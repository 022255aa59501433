// Package model 定义考官排班引擎的核心数据模型
package model

// 约束标识
// HC1–HC4 为固定硬约束，始终生效；HC5–HC8 为可开关硬约束；
// SC 系列为可调权重的软约束
const (
	HC1WorkdayOnly      = "HC1" // 考核日必须为工作日
	HC2SameDepartment   = "HC2" // 考官一与学员同科室（允许一对互通科室）
	HC3TwoMainExaminers = "HC3" // 必须有两名主考官
	HC4OneRolePerDay    = "HC4" // 每名考官每天只能担任一个角色
	HC5NoOwnDayShift    = "HC5" // 学员白班当天不排考
	HC6ConsecutiveDays  = "HC6" // 两天考核必须连续
	HC7DistinctDepts    = "HC7" // 两名主考官科室不同
	HC8BackupDistinct   = "HC8" // 备用考官与两名主考官不同人

	SC1NightShiftPref   = "SC1"  // 优先夜班考官
	SC2FirstRestPref    = "SC2"  // 优先下夜班（第一休息日）考官
	SC3SecondRestPref   = "SC3"  // 其次第二休息日考官
	SC4AdminDeprioritze = "SC4"  // 行政班考官降权
	SC5RecommendedDept  = "SC5"  // 优先推荐科室
	SC9DeptInterchange  = "SC9"  // 互通科室（3/7）互用
	SC10WorkloadBalance = "SC10" // 工作量均衡
	SC11DateSpread      = "SC11" // 日期分布均衡
	SC16AvoidWeekend    = "SC16" // 避免周末排考
	SC17WeekendNight    = "SC17" // 周末不可避免时优先夜班人员
)

// FixedHardWeight 固定硬约束的权重
const FixedHardWeight = 100000

// ConstraintSetting 单个约束的配置
type ConstraintSetting struct {
	ID      string `json:"id"`
	Weight  int    `json:"weight"`
	Enabled bool   `json:"enabled"`
}

// ConstraintConfiguration 约束配置
// 固定硬约束不可关闭；其余约束可独立开关与调权，
// 关闭某约束只移除其得分贡献，不影响其他约束
type ConstraintConfiguration struct {
	Settings map[string]ConstraintSetting `json:"settings"`
}

// DefaultConstraintConfiguration 返回默认约束配置
func DefaultConstraintConfiguration() *ConstraintConfiguration {
	defaults := []ConstraintSetting{
		{ID: HC1WorkdayOnly, Weight: FixedHardWeight, Enabled: true},
		{ID: HC2SameDepartment, Weight: FixedHardWeight, Enabled: true},
		{ID: HC3TwoMainExaminers, Weight: FixedHardWeight, Enabled: true},
		{ID: HC4OneRolePerDay, Weight: FixedHardWeight, Enabled: true},
		{ID: HC5NoOwnDayShift, Weight: 6000, Enabled: true},
		{ID: HC6ConsecutiveDays, Weight: 4000, Enabled: true},
		{ID: HC7DistinctDepts, Weight: 10000, Enabled: true},
		{ID: HC8BackupDistinct, Weight: 3000, Enabled: true},
		{ID: SC1NightShiftPref, Weight: 100, Enabled: true},
		{ID: SC2FirstRestPref, Weight: 80, Enabled: true},
		{ID: SC3SecondRestPref, Weight: 60, Enabled: true},
		{ID: SC4AdminDeprioritze, Weight: 40, Enabled: true},
		{ID: SC5RecommendedDept, Weight: 600, Enabled: true},
		{ID: SC9DeptInterchange, Weight: 20, Enabled: true},
		{ID: SC10WorkloadBalance, Weight: 10, Enabled: true},
		{ID: SC11DateSpread, Weight: 50, Enabled: true},
		{ID: SC16AvoidWeekend, Weight: 500, Enabled: true},
		{ID: SC17WeekendNight, Weight: 300, Enabled: true},
	}
	cfg := &ConstraintConfiguration{Settings: make(map[string]ConstraintSetting, len(defaults))}
	for _, s := range defaults {
		cfg.Settings[s.ID] = s
	}
	return cfg
}

// fixedHard 始终生效的硬约束
var fixedHard = map[string]bool{
	HC1WorkdayOnly:      true,
	HC2SameDepartment:   true,
	HC3TwoMainExaminers: true,
	HC4OneRolePerDay:    true,
}

// IsFixed 检查约束是否为不可关闭的固定硬约束
func IsFixedConstraint(id string) bool {
	return fixedHard[id]
}

// Enabled 检查约束是否生效
// 固定硬约束始终生效；未配置的约束按默认配置处理
func (c *ConstraintConfiguration) Enabled(id string) bool {
	if IsFixedConstraint(id) {
		return true
	}
	if c == nil || c.Settings == nil {
		return true
	}
	s, ok := c.Settings[id]
	if !ok {
		return true
	}
	return s.Enabled
}

// Weight 返回约束权重
// 固定硬约束权重不可调；未配置时取默认权重
func (c *ConstraintConfiguration) Weight(id string) int {
	if IsFixedConstraint(id) {
		return FixedHardWeight
	}
	if c != nil && c.Settings != nil {
		if s, ok := c.Settings[id]; ok {
			return s.Weight
		}
	}
	if s, ok := DefaultConstraintConfiguration().Settings[id]; ok {
		return s.Weight
	}
	return 0
}

// Set 调整约束配置；固定硬约束的调整被忽略
func (c *ConstraintConfiguration) Set(id string, weight int, enabled bool) {
	if IsFixedConstraint(id) {
		return
	}
	if c.Settings == nil {
		c.Settings = make(map[string]ConstraintSetting)
	}
	c.Settings[id] = ConstraintSetting{ID: id, Weight: weight, Enabled: enabled}
}

// InterchangeableDepts 授权互通的一对科室
// 考官一科室匹配允许的唯一跨科室例外
var InterchangeableDepts = [2]string{"3", "7"}

// IsInterchangeablePair 检查两个科室是否为授权互通对（无序）
func IsInterchangeablePair(dept1, dept2 string) bool {
	a, b := InterchangeableDepts[0], InterchangeableDepts[1]
	return (dept1 == a && dept2 == b) || (dept1 == b && dept2 == a)
}
