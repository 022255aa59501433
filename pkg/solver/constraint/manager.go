// Package constraint 定义约束接口、排考上下文与约束管理器
package constraint

import (
	"sort"
	"sync"

	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/model"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
	logger      *logger.SolverLogger
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		logger:      logger.NewSolverLogger(),
	}
}

// Register 注册约束；同 ID 约束被替换
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.constraints {
		if existing.ID() == c.ID() {
			m.constraints[i] = c
			return
		}
	}

	m.constraints = append(m.constraints, c)

	// 硬约束在前，权重高的在前
	sort.Slice(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Weight() > cj.Weight()
	})
}

// Get 按 ID 获取约束
func (m *Manager) Get(id string) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

// GetByCategory 按类别获取约束
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Result 约束评估结果
type Result struct {
	Score       model.Score `json:"score"`
	HardDetails []Detail    `json:"hard_details,omitempty"`
	SoftDetails []Detail    `json:"soft_details,omitempty"`
}

// Feasible 检查硬约束是否全部满足
func (r *Result) Feasible() bool {
	return r.Score.Feasible()
}

// Conflicts 将硬约束明细转换为结构化冲突列表
// 硬分非 0 时必须以冲突列表形式暴露，不得静默隐藏
func (r *Result) Conflicts() []model.Conflict {
	conflicts := make([]model.Conflict, 0, len(r.HardDetails))
	for _, d := range r.HardDetails {
		conflicts = append(conflicts, model.Conflict{
			ConstraintID: d.ConstraintID,
			Severity:     model.SeverityError,
			Message:      d.Message,
			EntityIDs:    d.EntityIDs,
			Suggestion:   d.Suggestion,
		})
	}
	return conflicts
}

// Evaluate 评估所有约束，返回两级评分
func (m *Manager) Evaluate(ctx *Context) *Result {
	m.mu.RLock()
	constraints := make([]Constraint, len(m.constraints))
	copy(constraints, m.constraints)
	m.mu.RUnlock()

	result := &Result{}

	for _, c := range constraints {
		delta, details := c.Evaluate(ctx)
		if c.Category() == CategoryHard {
			result.Score.Hard += delta
			result.HardDetails = append(result.HardDetails, details...)
		} else {
			result.Score.Soft += delta
			result.SoftDetails = append(result.SoftDetails, details...)
		}
	}

	return result
}

// Score 只计算两级评分，不收集明细
// 优化器内层循环使用
func (m *Manager) Score(ctx *Context) model.Score {
	m.mu.RLock()
	constraints := make([]Constraint, len(m.constraints))
	copy(constraints, m.constraints)
	m.mu.RUnlock()

	var score model.Score
	for _, c := range constraints {
		delta, _ := c.Evaluate(ctx)
		if c.Category() == CategoryHard {
			score.Hard += delta
		} else {
			score.Soft += delta
		}
	}
	return score
}

// LogHardViolations 将硬约束违反写入日志
func (m *Manager) LogHardViolations(result *Result) {
	for _, d := range result.HardDetails {
		m.logger.ConstraintViolation(d.ConstraintID, d.Message)
	}
}
