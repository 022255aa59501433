package taskmgr

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kaopai/kaopai/pkg/errors"
	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/solver"
)

// Config 任务管理器配置
type Config struct {
	CoreWorkers    int           `json:"core_workers"`    // 常驻工作协程数
	MaxWorkers     int           `json:"max_workers"`     // 工作协程上限
	QueueDepth     int           `json:"queue_depth"`     // 排队任务上限，满时同步拒绝
	MaxConcurrency int           `json:"max_concurrency"` // 同时求解上限（信号量）
	AcquireWait    time.Duration `json:"acquire_wait"`    // 求解许可的有界等待时长
	SolveTimeout   time.Duration `json:"solve_timeout"`   // 固定求解时限，0 表示按模式与规模计算
	Retention      time.Duration `json:"retention"`       // 终态任务保留时长
	RetentionSweep time.Duration `json:"retention_sweep"` // 清理扫描间隔
}

// DefaultConfig 默认任务管理器配置
func DefaultConfig() *Config {
	return &Config{
		CoreWorkers:    2,
		MaxWorkers:     5,
		QueueDepth:     10,
		MaxConcurrency: 2,
		AcquireWait:    30 * time.Second,
		Retention:      24 * time.Hour,
		RetentionSweep: 10 * time.Minute,
	}
}

// Manager 排考任务管理器
// 有界队列 + 工作协程池 + 求解许可信号量三层限流：
// 队列满时提交被同步拒绝；协程池按积压在核心数与上限
// 之间伸缩；信号量保证同时运行的求解不超过上限
type Manager struct {
	config *Config
	engine *solver.Engine
	logger *logger.SolverLogger

	mu    sync.RWMutex
	tasks map[string]*Task

	queue     chan *Task
	semaphore chan struct{}
	workers   int32 // 当前工作协程数

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewManager 创建任务管理器并启动核心工作协程
func NewManager(config *Config, engine *solver.Engine) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if engine == nil {
		engine = solver.NewEngine()
	}
	m := &Manager{
		config:    config,
		engine:    engine,
		logger:    logger.NewSolverLogger(),
		tasks:     make(map[string]*Task),
		queue:     make(chan *Task, config.QueueDepth),
		semaphore: make(chan struct{}, config.MaxConcurrency),
		closed:    make(chan struct{}),
	}

	for i := 0; i < config.CoreWorkers; i++ {
		m.spawnWorker(true)
	}
	if config.Retention > 0 {
		m.wg.Add(1)
		go m.retentionLoop()
	}
	return m
}

// Submit 提交求解任务
// 队列已满时立即返回可重试的拒绝错误，绝不阻塞调用方
func (m *Manager) Submit(mode SolveMode, req *solver.Request) (*Task, error) {
	task := newTask(mode, req)

	// 入队与 Close 互斥：持读锁期间队列不会被关闭
	m.mu.RLock()
	select {
	case <-m.closed:
		m.mu.RUnlock()
		return nil, errors.New(errors.CodeInternal, "任务管理器已关闭")
	default:
	}
	select {
	case m.queue <- task:
	default:
		m.mu.RUnlock()
		return nil, errors.ErrQueueFull
	}
	m.mu.RUnlock()

	m.mu.Lock()
	m.tasks[task.ID] = task
	m.mu.Unlock()

	// 有积压且未达上限时临时扩容
	if len(m.queue) > 0 && atomic.LoadInt32(&m.workers) < int32(m.config.MaxWorkers) {
		m.spawnWorker(false)
	}
	return task, nil
}

// Get 查询任务
func (m *Manager) Get(id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, errors.ErrTaskNotFound
	}
	return task, nil
}

// Wait 阻塞等待任务进入终态
func (m *Manager) Wait(ctx context.Context, id string) (TaskSnapshot, error) {
	task, err := m.Get(id)
	if err != nil {
		return TaskSnapshot{}, err
	}
	select {
	case <-task.done:
		return task.Snapshot(), nil
	case <-ctx.Done():
		return task.Snapshot(), ctx.Err()
	}
}

// Cancel 取消任务
func (m *Manager) Cancel(id string) error {
	task, err := m.Get(id)
	if err != nil {
		return err
	}
	if !task.requestCancel() {
		return errors.New(errors.CodeInvalidInput, "任务已结束，无法取消")
	}
	return nil
}

// List 列出全部任务的状态副本
func (m *Manager) List() []TaskSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TaskSnapshot, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Snapshot())
	}
	return out
}

// Purge 清除保留期之前结束的任务，返回清除数量
func (m *Manager) Purge(before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, t := range m.tasks {
		snap := t.Snapshot()
		if snap.State.Terminal() && snap.DoneAt.Before(before) {
			delete(m.tasks, id)
			removed++
		}
	}
	return removed
}

// Close 停止接收新任务并等待工作协程退出
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		close(m.closed)
		close(m.queue)
		m.mu.Unlock()
	})
	m.wg.Wait()
}

// spawnWorker 启动一个工作协程
// 临时协程在队列清空后退出，核心协程常驻
func (m *Manager) spawnWorker(core bool) {
	atomic.AddInt32(&m.workers, 1)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer atomic.AddInt32(&m.workers, -1)

		for {
			if core {
				task, ok := <-m.queue
				if !ok {
					return
				}
				m.run(task)
				continue
			}

			select {
			case task, ok := <-m.queue:
				if !ok {
					return
				}
				m.run(task)
			default:
				// 队列已空，临时协程退出
				return
			}
		}
	}()
}

// run 执行单个任务
func (m *Manager) run(task *Task) {
	// 求解许可：先尝试即时获取，失败后有界等待
	select {
	case m.semaphore <- struct{}{}:
	default:
		select {
		case m.semaphore <- struct{}{}:
		case <-time.After(m.config.AcquireWait):
			task.finish(StateFailed, nil, errors.ConcurrencyExceeded(m.config.MaxConcurrency))
			return
		case <-task.done:
			// 排队等待期间被取消
			return
		}
	}
	defer func() { <-m.semaphore }()

	timeout := task.Mode.Timeout(len(task.request.Students))
	if m.config.SolveTimeout > 0 {
		timeout = m.config.SolveTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if !task.markRunning(cancel) {
		return
	}

	solution, err := m.engine.Solve(ctx, task.ID, task.request)
	switch {
	case err == nil:
		task.finish(StateCompleted, solution, nil)
	case errors.Is(err, errors.CodeCancelled):
		// 取消仍保留已找到的部分解
		task.finish(StateCancelled, solution, err)
	case errors.Is(err, errors.CodeTimeout):
		// 超时按失败记终态，部分解同样保留
		task.finish(StateFailed, solution, err)
	default:
		task.finish(StateFailed, solution, err)
	}
}

// retentionLoop 周期清理过期的终态任务
func (m *Manager) retentionLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.config.RetentionSweep)
	defer ticker.Stop()

	for {
		select {
		case <-m.closed:
			return
		case <-ticker.C:
			m.Purge(time.Now().Add(-m.config.Retention))
		}
	}
}
