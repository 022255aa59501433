// Package solver 提供排考引擎的完整求解流水线
package solver

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kaopai/kaopai/pkg/errors"
	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/profiler"
	"github.com/kaopai/kaopai/pkg/solver/builder"
	"github.com/kaopai/kaopai/pkg/solver/constraint"
	"github.com/kaopai/kaopai/pkg/solver/constraint/builtin"
	"github.com/kaopai/kaopai/pkg/solver/optimizer"
	"github.com/kaopai/kaopai/pkg/stats"
	"github.com/kaopai/kaopai/pkg/validator"
)

// Request 一次求解请求
type Request struct {
	Students  []*model.Student               `json:"students"`
	Teachers  []*model.Teacher               `json:"teachers"`
	DateRange model.DateRange                `json:"date_range"`
	Config    *model.ConstraintConfiguration `json:"config,omitempty"`
	Optimizer *optimizer.Config              `json:"optimizer,omitempty"`

	// 重排时保留的已锁定安排
	Pinned []*model.ExamAssignment `json:"pinned,omitempty"`

	// 工作日判定，为空时默认周一至周五
	Workday model.WorkdayFn `json:"-"`
}

// Engine 排考引擎
// 流水线：输入校验 → 资源画像 → 贪心构造 → 局部搜索优化 → 终检
type Engine struct {
	logger *logger.SolverLogger
}

// NewEngine 创建排考引擎
func NewEngine() *Engine {
	return &Engine{logger: logger.NewSolverLogger()}
}

// Solve 执行一次完整求解
// 超时或显式取消均返回对应错误，同时仍返回迄今最优的部分解，
// 由调用方决定是否采纳
func (e *Engine) Solve(ctx context.Context, taskID string, req *Request) (*model.Solution, error) {
	dates, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	e.logger.StartSolve(taskID, len(req.Students), len(req.Teachers), len(dates))

	// 贪心构造初始解
	b := builder.New(req.Students, req.Teachers, dates, req.Workday)
	if len(req.Pinned) > 0 {
		b.Seed(req.Pinned)
	}
	buildResult := b.Build()

	// 局部搜索优化
	manager := builtin.NewManager(req.Config)
	evalCtx := constraint.NewContext(req.Students, req.Teachers, dates, req.Workday, req.Config)
	evalCtx.SetAssignments(buildResult.Assignments)

	opt := optimizer.New(req.Optimizer, manager)
	optResult, optErr := opt.Optimize(ctx, evalCtx)
	cancelled := optErr != nil && stderrors.Is(optErr, context.Canceled)
	timedOut := optErr != nil && stderrors.Is(optErr, context.DeadlineExceeded)

	// 终检与自动修复
	report := validator.New().Validate(optResult.Assignments)

	// 锁定安排的考官不得被悄悄改动
	e.verifyPinned(report)

	evalCtx.SetAssignments(report.Assignments)
	evalResult := manager.Evaluate(evalCtx)
	manager.LogHardViolations(evalResult)

	solution := e.assemble(req, buildResult, report, evalResult)
	e.logger.SolveComplete(taskID, time.Since(start), solution.Score.Hard, solution.Score.Soft)

	if cancelled {
		return solution, errors.Wrap(optErr, errors.CodeCancelled, "求解被取消，返回已找到的最优解")
	}
	if timedOut {
		return solution, errors.Wrap(optErr, errors.CodeTimeout, "求解超时，返回已找到的最优解")
	}
	return solution, nil
}

// Profile 只做资源画像，不求解
// 用于排考前的资源预检
func (e *Engine) Profile(req *Request) ([]*profiler.Profile, error) {
	dates, err := e.validate(req)
	if err != nil {
		return nil, err
	}
	return profiler.New(req.Teachers, dates, req.Workday).ProfileAll(req.Students), nil
}

// validate 校验请求并展开日期范围
func (e *Engine) validate(req *Request) ([]string, error) {
	if req == nil {
		return nil, errors.ErrInvalidInput
	}
	if len(req.Students) == 0 {
		return nil, errors.InvalidInput("students", "学员列表为空")
	}
	if len(req.Teachers) == 0 {
		return nil, errors.InvalidInput("teachers", "考官列表为空")
	}
	for _, s := range req.Students {
		if s.ExamDays < 1 || s.ExamDays > 2 {
			return nil, errors.InvalidInput("exam_days",
				fmt.Sprintf("学员 %s 的考核天数 %d 非法，必须为 1 或 2", s.Name, s.ExamDays))
		}
		if s.Department == "" {
			return nil, errors.InvalidInput("department", fmt.Sprintf("学员 %s 缺少科室", s.Name))
		}
	}

	if _, err := model.ParseDate(req.DateRange.StartDate); err != nil {
		return nil, errors.InvalidDateRange(req.DateRange.StartDate, req.DateRange.EndDate, "起始日期格式错误")
	}
	if _, err := model.ParseDate(req.DateRange.EndDate); err != nil {
		return nil, errors.InvalidDateRange(req.DateRange.StartDate, req.DateRange.EndDate, "结束日期格式错误")
	}
	if req.DateRange.StartDate > req.DateRange.EndDate {
		return nil, errors.InvalidDateRange(req.DateRange.StartDate, req.DateRange.EndDate, "起始日期晚于结束日期")
	}

	dates, err := req.DateRange.Dates()
	if err != nil {
		return nil, errors.InvalidDateRange(req.DateRange.StartDate, req.DateRange.EndDate, err.Error())
	}
	return dates, nil
}

// verifyPinned 校验锁定安排的考官字段未被改动
// 被改动属于引擎缺陷，记录严重日志并恢复原始考官
func (e *Engine) verifyPinned(report *validator.Report) {
	for _, a := range report.Assignments {
		if !a.Pinned || a.MatchesSnapshot() {
			continue
		}
		e.logger.InternalInconsistency(
			fmt.Sprintf("锁定安排 %s（%s）的考官被改动", a.ID, a.Date))
		report.Conflicts = append(report.Conflicts, model.Conflict{
			ConstraintID: model.HC4OneRolePerDay,
			Severity:     model.SeverityError,
			Message:      fmt.Sprintf("锁定安排 %s 的考官与锁定快照不一致", a.ID),
			EntityIDs:    []string{a.ID.String()},
		})
	}
}

// assemble 组装最终解
// 成功要求硬分为 0 且终检无残余冲突，二者缺一不可
func (e *Engine) assemble(req *Request, buildResult *builder.Result, report *validator.Report, evalResult *constraint.Result) *model.Solution {
	conflicts := append(report.Conflicts, evalResult.Conflicts()...)

	solution := &model.Solution{
		Assignments: report.Assignments,
		Score:       evalResult.Score,
		Conflicts:   conflicts,
		Unresolved:  buildResult.Unresolved,
		Statistics:  stats.Summarize(req.Students, report.Assignments, len(buildResult.Unresolved)),
	}

	solution.Success = evalResult.Feasible() && len(conflicts) == 0 && len(buildResult.Unresolved) == 0
	switch {
	case solution.Success:
		solution.Message = "排考成功，无硬约束冲突"
	case len(buildResult.Unresolved) > 0:
		solution.Message = fmt.Sprintf("%d 名学员无可行安排", len(buildResult.Unresolved))
	default:
		solution.Message = fmt.Sprintf("存在 %d 项未消除的冲突", len(conflicts))
	}
	return solution
}
