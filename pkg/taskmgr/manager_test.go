package taskmgr

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaopai/kaopai/pkg/errors"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver"
	"github.com/kaopai/kaopai/pkg/solver/optimizer"
)

func newTeacher(name, dept string) *model.Teacher {
	return &model.Teacher{
		BaseModel:  model.NewBaseModel(),
		Name:       name,
		Department: dept,
		DutyGroup:  model.GroupNone,
	}
}

func newStudent(name, dept string) *model.Student {
	return &model.Student{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Department:   dept,
		DutyGroup:    model.GroupNone,
		ExamDays:     1,
		Day1Subjects: []string{"理论"},
	}
}

func quickRequest() *solver.Request {
	return &solver.Request{
		Students: []*model.Student{newStudent("小刘", "3")},
		Teachers: []*model.Teacher{
			newTeacher("王老师", "3"),
			newTeacher("李老师", "5"),
			newTeacher("张老师", "6"),
		},
		DateRange: model.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-05"},
		Optimizer: &optimizer.Config{
			MaxIterations: 50, MaxTime: 2 * time.Second, InitialTemp: 100,
			CoolingRate: 0.9, TabuSize: 10, NeighborhoodSize: 5,
			StopOnPlateau: true, PlateauThreshold: 20, Seed: 3,
		},
	}
}

// 无工作协程的管理器，任务停留在队列中
func idleManager(queueDepth int) *Manager {
	return NewManager(&Config{
		CoreWorkers:    0,
		MaxWorkers:     0,
		QueueDepth:     queueDepth,
		MaxConcurrency: 2,
		AcquireWait:    time.Second,
	}, nil)
}

func TestModeTimeout(t *testing.T) {
	cases := []struct {
		mode     SolveMode
		students int
		expected time.Duration
	}{
		{ModeFast, 10, 35 * time.Second},
		{ModeBalanced, 10, 70 * time.Second},
		{ModeOptimal, 10, 140 * time.Second},
		{ModeEnterprise, 100, 600 * time.Second},
		{SolveMode(""), 0, 60 * time.Second}, // 未知模式按均衡处理
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, c.mode.Timeout(c.students), "mode=%s", c.mode)
	}
}

func TestSubmitAndComplete(t *testing.T) {
	m := NewManager(nil, nil)
	defer m.Close()

	task, err := m.Submit(ModeFast, quickRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := m.Wait(ctx, task.ID)
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, snap.State)
	require.NotNil(t, snap.Solution)
	assert.True(t, snap.Solution.Success)
	assert.False(t, snap.DoneAt.IsZero())
	assert.False(t, snap.StartedAt.IsZero())
}

func TestSubmit_QueueFullRejectedSynchronously(t *testing.T) {
	m := idleManager(2)
	defer m.Close()

	_, err := m.Submit(ModeFast, quickRequest())
	require.NoError(t, err)
	_, err = m.Submit(ModeFast, quickRequest())
	require.NoError(t, err)

	// 队列已满，第三个提交立即被拒绝
	start := time.Now()
	_, err = m.Submit(ModeFast, quickRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeQueueFull))
	assert.True(t, errors.IsRetryable(err))
	assert.Less(t, time.Since(start), time.Second, "拒绝必须同步返回")
}

func TestCancelPendingTask(t *testing.T) {
	m := idleManager(5)
	defer m.Close()

	task, err := m.Submit(ModeFast, quickRequest())
	require.NoError(t, err)

	require.NoError(t, m.Cancel(task.ID))

	snap, err := m.Wait(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, snap.State)

	// 终态任务不可再次取消
	err = m.Cancel(task.ID)
	require.Error(t, err)
}

func TestCancelRunningTask(t *testing.T) {
	m := NewManager(nil, nil)
	defer m.Close()

	req := quickRequest()
	// 不设平台期停止，保证任务在被取消前一直运行
	req.Optimizer = &optimizer.Config{
		MaxIterations: 100000000, MaxTime: 60 * time.Second, InitialTemp: 100,
		CoolingRate: 0.9999, TabuSize: 50, NeighborhoodSize: 20,
		StopOnPlateau: false, Seed: 5,
	}

	task, err := m.Submit(ModeEnterprise, req)
	require.NoError(t, err)

	deadline := time.Now().Add(10 * time.Second)
	for task.Snapshot().State == StatePending {
		if time.Now().After(deadline) {
			t.Fatal("任务未进入运行状态")
		}
		time.Sleep(5 * time.Millisecond)
	}

	require.NoError(t, m.Cancel(task.ID))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, err := m.Wait(ctx, task.ID)
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, snap.State)
	// 取消不丢弃已找到的解
	assert.NotNil(t, snap.Solution)
}

func TestSolveTimeout_TaskFailsWithPartialSolution(t *testing.T) {
	m := NewManager(&Config{
		CoreWorkers:    1,
		MaxWorkers:     1,
		QueueDepth:     2,
		MaxConcurrency: 1,
		AcquireWait:    time.Second,
		SolveTimeout:   50 * time.Millisecond,
	}, nil)
	defer m.Close()

	req := quickRequest()
	// 不设平台期停止，保证优化阶段跑到时限
	req.Optimizer = &optimizer.Config{
		MaxIterations: 100000000, MaxTime: 60 * time.Second, InitialTemp: 100,
		CoolingRate: 0.9999, TabuSize: 50, NeighborhoodSize: 20,
		StopOnPlateau: false, Seed: 5,
	}

	task, err := m.Submit(ModeFast, req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	snap, err := m.Wait(ctx, task.ID)
	require.NoError(t, err)

	// 超时必须落入带错误标记的终态，不得伪装成正常完成
	assert.Equal(t, StateFailed, snap.State)
	require.Error(t, snap.Err)
	assert.True(t, errors.Is(snap.Err, errors.CodeTimeout))
	// 部分解仍保留
	assert.NotNil(t, snap.Solution)
}

func TestSubmitDuringClose_NoPanic(t *testing.T) {
	m := idleManager(64)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, _ = m.Submit(ModeFast, quickRequest())
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	m.Close()
	close(stop)
	wg.Wait()

	// 关闭后的提交同步报错
	_, err := m.Submit(ModeFast, quickRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeInternal))
}

func TestWait_ContextExpires(t *testing.T) {
	m := idleManager(5)
	defer m.Close()

	task, err := m.Submit(ModeFast, quickRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	snap, err := m.Wait(ctx, task.ID)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StatePending, snap.State)
}

func TestGet_UnknownTask(t *testing.T) {
	m := idleManager(5)
	defer m.Close()

	_, err := m.Get("no-such-task")
	assert.True(t, errors.Is(err, errors.CodeTaskNotFound))
}

func TestManyTasksAllComplete(t *testing.T) {
	m := NewManager(nil, nil)
	defer m.Close()

	var ids []string
	for i := 0; i < 5; i++ {
		task, err := m.Submit(ModeFast, quickRequest())
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, id := range ids {
		snap, err := m.Wait(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StateCompleted, snap.State, "task %s", id)
	}
}

func TestPurge(t *testing.T) {
	m := idleManager(5)
	defer m.Close()

	task, err := m.Submit(ModeFast, quickRequest())
	require.NoError(t, err)
	require.NoError(t, m.Cancel(task.ID))

	// 运行中/排队中的任务不被清理
	pending, err := m.Submit(ModeFast, quickRequest())
	require.NoError(t, err)

	removed := m.Purge(time.Now().Add(time.Second))
	assert.Equal(t, 1, removed)

	_, err = m.Get(task.ID)
	assert.True(t, errors.Is(err, errors.CodeTaskNotFound))
	_, err = m.Get(pending.ID)
	assert.NoError(t, err)
}
