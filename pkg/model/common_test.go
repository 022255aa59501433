package model

import (
	"testing"
)

func TestDateRange_Dates(t *testing.T) {
	tests := []struct {
		name   string
		r      DateRange
		count  int
		hasErr bool
	}{
		{name: "五天窗口", r: DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"}, count: 5},
		{name: "单日窗口", r: DateRange{StartDate: "2024-01-01", EndDate: "2024-01-01"}, count: 1},
		{name: "跨月窗口", r: DateRange{StartDate: "2024-01-30", EndDate: "2024-02-02"}, count: 4},
		{name: "闰日窗口", r: DateRange{StartDate: "2024-02-28", EndDate: "2024-03-01"}, count: 3},
		{name: "非法日期", r: DateRange{StartDate: "2024-13-01", EndDate: "2024-01-05"}, hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := tt.r.Dates()
			if tt.hasErr {
				if err == nil {
					t.Error("期望解析错误")
				}
				return
			}
			if err != nil {
				t.Fatalf("展开日期失败: %v", err)
			}
			if len(dates) != tt.count {
				t.Errorf("日期数 = %d，期望 %d", len(dates), tt.count)
			}
		})
	}
}

func TestIsConsecutive(t *testing.T) {
	if !IsConsecutive("2024-01-01", "2024-01-02") {
		t.Error("相邻日期应判定为连续")
	}
	if !IsConsecutive("2024-02-29", "2024-03-01") {
		t.Error("闰日跨月也应判定为连续")
	}
	if IsConsecutive("2024-01-01", "2024-01-03") {
		t.Error("隔天不应判定为连续")
	}
	if IsConsecutive("", "2024-01-01") {
		t.Error("空日期不应判定为连续")
	}
}

func TestIsWeekend(t *testing.T) {
	if IsWeekend("2024-01-01") {
		t.Error("2024-01-01 是周一")
	}
	if !IsWeekend("2024-01-06") {
		t.Error("2024-01-06 是周六")
	}
	if !IsWeekend("2024-01-07") {
		t.Error("2024-01-07 是周日")
	}
}

func TestDutyGroup_IsAdministrative(t *testing.T) {
	if !GroupNone.IsAdministrative() {
		t.Error("无值班组应为行政班")
	}
	if GroupOne.IsAdministrative() {
		t.Error("一组不是行政班")
	}
}

func TestDefaultWorkdayFn(t *testing.T) {
	workday := DefaultWorkdayFn()
	if !workday("2024-01-02") {
		t.Error("周二应为工作日")
	}
	if workday("2024-01-06") {
		t.Error("周六不应为工作日")
	}
}
