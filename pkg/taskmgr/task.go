// Package taskmgr 提供排考任务的并发调度与生命周期管理
package taskmgr

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver"
)

// TaskState 任务状态
// 状态只沿 Pending → Running → 终态 单向推进
type TaskState string

const (
	StatePending   TaskState = "pending"
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
	StateFailed    TaskState = "failed"
	StateCancelled TaskState = "cancelled"
)

// Terminal 检查是否为终态
func (s TaskState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// SolveMode 求解模式，决定时间预算
type SolveMode string

const (
	ModeFast       SolveMode = "fast"       // 快速出结果
	ModeBalanced   SolveMode = "balanced"   // 质量与速度均衡
	ModeOptimal    SolveMode = "optimal"    // 追求更优软分
	ModeEnterprise SolveMode = "enterprise" // 大规模长时间求解
)

// Timeout 按模式与学员规模计算求解时间预算
func (m SolveMode) Timeout(studentCount int) time.Duration {
	n := time.Duration(studentCount)
	switch m {
	case ModeFast:
		return 30*time.Second + n*500*time.Millisecond
	case ModeOptimal:
		return 120*time.Second + n*2*time.Second
	case ModeEnterprise:
		return 300*time.Second + n*3*time.Second
	default:
		return 60*time.Second + n*time.Second
	}
}

// Task 一次排考求解任务
type Task struct {
	ID        string    `json:"id"`
	Mode      SolveMode `json:"mode"`
	State     TaskState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitempty"`
	DoneAt    time.Time `json:"done_at,omitempty"`

	Solution *model.Solution `json:"solution,omitempty"`
	Err      error           `json:"-"`

	request *solver.Request
	cancel  context.CancelFunc

	mu   sync.Mutex
	done chan struct{}
}

// newTask 创建排队中的任务
func newTask(mode SolveMode, req *solver.Request) *Task {
	if mode == "" {
		mode = ModeBalanced
	}
	return &Task{
		ID:        uuid.NewString(),
		Mode:      mode,
		State:     StatePending,
		CreatedAt: time.Now(),
		request:   req,
		done:      make(chan struct{}),
	}
}

// TaskSnapshot 任务状态的无锁副本，可安全复制与传递
type TaskSnapshot struct {
	ID        string    `json:"id"`
	Mode      SolveMode `json:"mode"`
	State     TaskState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitempty"`
	DoneAt    time.Time `json:"done_at,omitempty"`

	Solution *model.Solution `json:"solution,omitempty"`
	Err      error           `json:"-"`
}

// Snapshot 返回任务状态的一致性副本
func (t *Task) Snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TaskSnapshot{
		ID:        t.ID,
		Mode:      t.Mode,
		State:     t.State,
		CreatedAt: t.CreatedAt,
		StartedAt: t.StartedAt,
		DoneAt:    t.DoneAt,
		Solution:  t.Solution,
		Err:       t.Err,
	}
}

// markRunning 将任务置为运行中
// 已进入终态（如排队期间被取消）时返回 false
func (t *Task) markRunning(cancel context.CancelFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State != StatePending {
		return false
	}
	t.State = StateRunning
	t.StartedAt = time.Now()
	t.cancel = cancel
	return true
}

// finish 将任务推进到终态并唤醒所有等待者
func (t *Task) finish(state TaskState, solution *model.Solution, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State.Terminal() {
		return
	}
	t.State = state
	t.Solution = solution
	t.Err = err
	t.DoneAt = time.Now()
	close(t.done)
}

// requestCancel 请求取消任务
// 排队中的任务直接进入取消终态，运行中的任务通过 context 终止
func (t *Task) requestCancel() bool {
	t.mu.Lock()
	if t.State == StatePending {
		t.State = StateCancelled
		t.DoneAt = time.Now()
		close(t.done)
		t.mu.Unlock()
		return true
	}
	cancel := t.cancel
	running := t.State == StateRunning
	t.mu.Unlock()

	if running && cancel != nil {
		cancel()
		return true
	}
	return false
}
