package optimizer

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
)

// Config 优化配置
type Config struct {
	MaxIterations    int           `json:"max_iterations"`    // 最大迭代次数
	MaxTime          time.Duration `json:"max_time"`          // 最大运行时间
	InitialTemp      float64       `json:"initial_temp"`      // 模拟退火初始温度
	CoolingRate      float64       `json:"cooling_rate"`      // 冷却速率
	TabuSize         int           `json:"tabu_size"`         // 禁忌表大小
	NeighborhoodSize int           `json:"neighborhood_size"` // 每轮生成的邻域解数
	StopOnPlateau    bool          `json:"stop_on_plateau"`   // 平台期停止
	PlateauThreshold int           `json:"plateau_threshold"` // 平台期阈值（无改进迭代次数）
	Seed             int64         `json:"seed,omitempty"`    // 随机种子，0 取当前时间
}

// DefaultConfig 默认优化配置
func DefaultConfig() *Config {
	return &Config{
		MaxIterations:    2000,
		MaxTime:          60 * time.Second,
		InitialTemp:      100.0,
		CoolingRate:      0.99,
		TabuSize:         50,
		NeighborhoodSize: 20,
		StopOnPlateau:    true,
		PlateauThreshold: 200,
	}
}

// hardEnergyFactor 退火能量中硬分相对软分的放大倍数
// 只影响接受更差解的概率，接受更优解始终走字典序比较
const hardEnergyFactor = 1e6

// Optimizer 局部搜索优化器
// 模拟退火与禁忌表结合；日期固定，仅改写未锁定安排的考官字段
type Optimizer struct {
	config    *Config
	manager   *constraint.Manager
	neighbors *NeighborhoodGenerator
	tabuList  *TabuList
	rng       *rand.Rand
	logger    *logger.SolverLogger
	mu        sync.Mutex
}

// New 创建局部搜索优化器
func New(config *Config, manager *constraint.Manager) *Optimizer {
	if config == nil {
		config = DefaultConfig()
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Optimizer{
		config:    config,
		manager:   manager,
		neighbors: NewNeighborhoodGenerator(rng),
		tabuList:  NewTabuList(config.TabuSize),
		rng:       rng,
		logger:    logger.NewSolverLogger(),
	}
}

// Result 优化结果
type Result struct {
	Assignments []*model.ExamAssignment
	Score       model.Score
	Iterations  int
	Elapsed     time.Duration
}

// Optimize 优化排考方案
// 取消或超时不丢弃进度，总是返回迄今最优解；
// 一旦见过硬分为 0 的解，返回值的硬分不会再回退
func (o *Optimizer) Optimize(ctx context.Context, evalCtx *constraint.Context) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()

	scratch := constraint.NewContext(evalCtx.Students, evalCtx.Teachers, evalCtx.Dates, evalCtx.Workday, evalCtx.Config)

	current := cloneAssignments(evalCtx.Assignments)
	scratch.SetAssignments(current)
	currentScore := o.manager.Score(scratch)

	best := cloneAssignments(current)
	bestScore := currentScore

	temperature := o.config.InitialTemp
	noImprovement := 0
	iterations := 0

	for i := 0; i < o.config.MaxIterations; i++ {
		iterations = i + 1

		select {
		case <-ctx.Done():
			return &Result{Assignments: best, Score: bestScore, Iterations: iterations, Elapsed: time.Since(start)}, ctx.Err()
		default:
		}

		if time.Since(start) > o.config.MaxTime {
			break
		}

		scratch.SetAssignments(current)
		neighbor, neighborScore := o.bestNeighbor(scratch)
		if neighbor == nil {
			continue
		}

		moveKey := hashAssignments(neighbor)
		inTabu := o.tabuList.Contains(moveKey)

		accept := false
		if neighborScore.Better(currentScore) {
			accept = true
		} else if !inTabu {
			delta := energy(neighborScore) - energy(currentScore)
			if o.rng.Float64() < boltzmannProbability(delta, temperature) {
				accept = true
			}
		}

		if accept {
			current = neighbor
			currentScore = neighborScore
			o.tabuList.Add(moveKey)

			if currentScore.Better(bestScore) {
				best = cloneAssignments(current)
				bestScore = currentScore
				noImprovement = 0
			} else {
				noImprovement++
			}
		} else {
			noImprovement++
		}

		if o.config.StopOnPlateau && noImprovement >= o.config.PlateauThreshold {
			break
		}

		temperature *= o.config.CoolingRate
	}

	return &Result{Assignments: best, Score: bestScore, Iterations: iterations, Elapsed: time.Since(start)}, nil
}

// bestNeighbor 生成一批邻域解并返回其中最优者
func (o *Optimizer) bestNeighbor(scratch *constraint.Context) ([]*model.ExamAssignment, model.Score) {
	base := scratch.Assignments

	var best []*model.ExamAssignment
	var bestScore model.Score

	for i := 0; i < o.config.NeighborhoodSize; i++ {
		scratch.SetAssignments(base)
		neighbor := o.neighbors.GenerateNeighbor(scratch)
		if neighbor == nil {
			continue
		}

		scratch.SetAssignments(neighbor)
		score := o.manager.Score(scratch)
		if best == nil || score.Better(bestScore) {
			best = neighbor
			bestScore = score
		}
	}

	scratch.SetAssignments(base)
	return best, bestScore
}

// energy 解的退火能量，越低越好
// 硬分主导，软分其次，顺序与字典序比较一致
func energy(s model.Score) float64 {
	return float64(-s.Hard)*hardEnergyFactor - float64(s.Soft)
}

// boltzmannProbability 模拟退火的接受概率
// delta 为能量差（新 - 旧），温度归零后不再接受更差解
func boltzmannProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-delta / temperature)
}

// hashAssignments 计算安排列表的 FNV-1a 哈希
// 用作禁忌表的移动键
func hashAssignments(assignments []*model.ExamAssignment) uint64 {
	if len(assignments) == 0 {
		return 0
	}
	h := fnv.New64a()
	for _, a := range assignments {
		h.Write(a.StudentID[:])
		h.Write([]byte(a.Date))
		for _, ref := range []*model.TeacherRef{a.Examiner1, a.Examiner2, a.Backup} {
			if ref != nil {
				h.Write([]byte(ref.ID))
			}
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// TabuList 禁忌表（uint64 哈希为键）
type TabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
	mu      sync.RWMutex
}

// NewTabuList 创建禁忌表
func NewTabuList(size int) *TabuList {
	return &TabuList{
		items:   make(map[uint64]struct{}),
		order:   make([]uint64, 0, size),
		maxSize: size,
	}
}

// Add 添加到禁忌表，超出容量时移除最旧的
func (t *TabuList) Add(key uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.items[key]; exists {
		return
	}

	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}

	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// Contains 检查是否在禁忌表中
func (t *TabuList) Contains(key uint64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, exists := t.items[key]
	return exists
}

// Clear 清空禁忌表
func (t *TabuList) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = make(map[uint64]struct{})
	t.order = t.order[:0]
}
