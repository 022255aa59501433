package model

import (
	"testing"
)

func TestDefaultConstraintConfiguration(t *testing.T) {
	cfg := DefaultConstraintConfiguration()

	if len(cfg.Settings) != 18 {
		t.Errorf("默认配置应含 18 条约束，实际 %d", len(cfg.Settings))
	}
	if w := cfg.Weight(HC7DistinctDepts); w != 10000 {
		t.Errorf("HC7 默认权重 = %d", w)
	}
	if w := cfg.Weight(SC5RecommendedDept); w != 600 {
		t.Errorf("SC5 默认权重 = %d", w)
	}
}

func TestConstraintConfiguration_Toggle(t *testing.T) {
	cfg := DefaultConstraintConfiguration()

	cfg.Set(HC7DistinctDepts, 8000, false)
	if cfg.Enabled(HC7DistinctDepts) {
		t.Error("关闭后的约束不应再生效")
	}
	if w := cfg.Weight(HC7DistinctDepts); w != 8000 {
		t.Errorf("调整后权重 = %d", w)
	}

	// 关闭一个约束不影响其他约束
	if !cfg.Enabled(HC8BackupDistinct) {
		t.Error("未动过的约束应保持生效")
	}
}

func TestConstraintConfiguration_FixedImmune(t *testing.T) {
	cfg := DefaultConstraintConfiguration()

	for _, id := range []string{HC1WorkdayOnly, HC2SameDepartment, HC3TwoMainExaminers, HC4OneRolePerDay} {
		cfg.Set(id, 1, false)
		if !cfg.Enabled(id) {
			t.Errorf("固定硬约束 %s 不可被关闭", id)
		}
		if w := cfg.Weight(id); w != FixedHardWeight {
			t.Errorf("固定硬约束 %s 权重不可调，实际 %d", id, w)
		}
	}
}

func TestConstraintConfiguration_NilSafe(t *testing.T) {
	var cfg *ConstraintConfiguration

	if !cfg.Enabled(SC1NightShiftPref) {
		t.Error("空配置下约束应按默认生效")
	}
	if w := cfg.Weight(SC1NightShiftPref); w != 100 {
		t.Errorf("空配置下应取默认权重，实际 %d", w)
	}
}

func TestIsInterchangeablePair(t *testing.T) {
	tests := []struct {
		name   string
		d1, d2 string
		expect bool
	}{
		{name: "正向互通", d1: "3", d2: "7", expect: true},
		{name: "反向互通", d1: "7", d2: "3", expect: true},
		{name: "同科室不算互通", d1: "3", d2: "3", expect: false},
		{name: "无关科室", d1: "3", d2: "5", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInterchangeablePair(tt.d1, tt.d2); got != tt.expect {
				t.Errorf("IsInterchangeablePair(%s, %s) = %v", tt.d1, tt.d2, got)
			}
		})
	}
}
