// Package model 定义考官排班引擎的核心数据模型
package model

// Student 参加考核的学员
// 引擎加载后不再修改学员数据
type Student struct {
	BaseModel
	Name       string    `json:"name" db:"name"`
	Department string    `json:"department" db:"department"`
	DutyGroup  DutyGroup `json:"duty_group" db:"duty_group"`

	// 考核天数：1 或 2
	ExamDays int `json:"exam_days" db:"exam_days"`

	// 每天考核的科目列表
	Day1Subjects []string `json:"day1_subjects,omitempty" db:"-"`
	Day2Subjects []string `json:"day2_subjects,omitempty" db:"-"`

	// 考官二/备用考官的推荐科室（有序，最多两个）
	RecommendedDepts []string `json:"recommended_depts,omitempty" db:"-"`
}

// NeedsTwoDays 检查学员是否需要两天连续考核
func (s *Student) NeedsTwoDays() bool {
	return s.ExamDays >= 2
}

// SubjectsFor 返回某考核类型的科目列表
func (s *Student) SubjectsFor(examType ExamType) []string {
	if examType == ExamDay2 {
		return s.Day2Subjects
	}
	return s.Day1Subjects
}

// RecommendRank 返回某科室在推荐科室中的名次
// 0 表示首选，1 表示次选，-1 表示不在推荐池中
func (s *Student) RecommendRank(dept string) int {
	for i, d := range s.RecommendedDepts {
		if d == dept {
			return i
		}
	}
	return -1
}
