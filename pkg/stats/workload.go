// Package stats 提供排考结果的统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/kaopai/kaopai/pkg/model"
)

// WorkloadMetrics 考官工作量统计
type WorkloadMetrics struct {
	// 工作量均衡性
	WorkloadGini     float64 `json:"workload_gini"`      // 工作量基尼系数 (0=完全均衡)
	WorkloadVariance float64 `json:"workload_variance"`  // 工作量方差
	WorkloadStdDev   float64 `json:"workload_std_dev"`   // 工作量标准差
	AvgPerTeacher    float64 `json:"avg_per_teacher"`    // 人均场次
	MaxLoad          int     `json:"max_load"`           // 最大场次
	MinLoad          int     `json:"min_load"`           // 最小场次
	LoadSpread       int     `json:"load_spread"`        // 场次极差

	// 角色分布
	RoleDistribution map[model.Role]int `json:"role_distribution"` // 各角色场次

	// 考官级别统计
	TeacherStats []TeacherStat `json:"teacher_stats"`

	// 日期分布
	DateUsage map[string]int `json:"date_usage"` // 每个日期的考核场次
}

// TeacherStat 单名考官的统计
type TeacherStat struct {
	TeacherID   string  `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	Department  string  `json:"department"`
	TotalRoles  int     `json:"total_roles"`
	AsExaminer1 int     `json:"as_examiner1"`
	AsExaminer2 int     `json:"as_examiner2"`
	AsBackup    int     `json:"as_backup"`
	Deviation   float64 `json:"deviation"` // 与平均值的偏差百分比
}

// Analyzer 排考统计分析器
type Analyzer struct{}

// NewAnalyzer 创建统计分析器
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze 分析排考结果的工作量分布
// 未参与任何安排的考官也计入，工作量为 0
func (a *Analyzer) Analyze(assignments []*model.ExamAssignment, teachers []*model.Teacher) *WorkloadMetrics {
	metrics := &WorkloadMetrics{
		RoleDistribution: make(map[model.Role]int),
		DateUsage:        make(map[string]int),
	}
	if len(teachers) == 0 {
		return metrics
	}

	statMap := make(map[string]*TeacherStat, len(teachers))
	for _, t := range teachers {
		statMap[t.ID.String()] = &TeacherStat{
			TeacherID:   t.ID.String(),
			TeacherName: t.Name,
			Department:  t.Department,
		}
	}

	for _, assignment := range assignments {
		metrics.DateUsage[assignment.Date]++
		for _, role := range []model.Role{model.RoleExaminer1, model.RoleExaminer2, model.RoleBackup} {
			ref := assignment.RoleRef(role)
			if ref == nil {
				continue
			}
			metrics.RoleDistribution[role]++
			stat, ok := statMap[ref.ID]
			if !ok {
				continue
			}
			stat.TotalRoles++
			switch role {
			case model.RoleExaminer1:
				stat.AsExaminer1++
			case model.RoleExaminer2:
				stat.AsExaminer2++
			default:
				stat.AsBackup++
			}
		}
	}

	loads := make([]float64, 0, len(statMap))
	stats := make([]TeacherStat, 0, len(statMap))
	for _, stat := range statMap {
		loads = append(loads, float64(stat.TotalRoles))
		stats = append(stats, *stat)
	}

	avg := mean(loads)
	variance := varianceOf(loads, avg)

	for i := range stats {
		if avg > 0 {
			stats[i].Deviation = (float64(stats[i].TotalRoles) - avg) / avg * 100
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalRoles != stats[j].TotalRoles {
			return stats[i].TotalRoles > stats[j].TotalRoles
		}
		return stats[i].TeacherName < stats[j].TeacherName
	})

	maxLoad, minLoad := loadRange(stats)

	metrics.WorkloadGini = gini(loads)
	metrics.WorkloadVariance = variance
	metrics.WorkloadStdDev = math.Sqrt(variance)
	metrics.AvgPerTeacher = avg
	metrics.MaxLoad = maxLoad
	metrics.MinLoad = minLoad
	metrics.LoadSpread = maxLoad - minLoad
	metrics.TeacherStats = stats
	return metrics
}

// Summarize 汇总求解完成度统计
func Summarize(students []*model.Student, assignments []*model.ExamAssignment, unresolved int) *model.Statistics {
	complete := 0
	for _, a := range assignments {
		if a.IsComplete() {
			complete++
		}
	}

	scheduled := make(map[string]bool)
	for _, a := range assignments {
		scheduled[a.StudentID.String()] = true
	}

	s := &model.Statistics{
		TotalStudents:      len(students),
		ScheduledStudents:  len(scheduled),
		UnresolvedStudents: unresolved,
		TotalAssignments:   len(assignments),
		CompleteCount:      complete,
		IncompleteCount:    len(assignments) - complete,
	}
	if s.TotalStudents > 0 {
		s.CompletionRate = float64(s.ScheduledStudents) / float64(s.TotalStudents) * 100
	}
	return s
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// varianceOf 计算方差
func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// loadRange 计算场次极值
func loadRange(stats []TeacherStat) (max, min int) {
	if len(stats) == 0 {
		return 0, 0
	}
	max, min = stats[0].TotalRoles, stats[0].TotalRoles
	for _, s := range stats[1:] {
		if s.TotalRoles > max {
			max = s.TotalRoles
		}
		if s.TotalRoles < min {
			min = s.TotalRoles
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}

	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
