// KaoPai 考官排班引擎
// 命令行入口：读取 JSON 题面文件，提交求解任务并输出排考报告

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kaopai/kaopai/internal/config"
	"github.com/kaopai/kaopai/internal/database"
	"github.com/kaopai/kaopai/internal/repository"
	"github.com/kaopai/kaopai/pkg/logger"
	"github.com/kaopai/kaopai/pkg/model"
	"github.com/kaopai/kaopai/pkg/solver"
	"github.com/kaopai/kaopai/pkg/solver/optimizer"
	"github.com/kaopai/kaopai/pkg/taskmgr"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Problem 题面文件格式
type Problem struct {
	Students  []*model.Student               `json:"students"`
	Teachers  []*model.Teacher               `json:"teachers"`
	DateRange model.DateRange                `json:"date_range"`
	Config    *model.ConstraintConfiguration `json:"config,omitempty"`
	Optimizer *optimizer.Config              `json:"optimizer,omitempty"`
	Pinned    []*model.ExamAssignment        `json:"pinned,omitempty"`

	// 窗口内的节假日列表，工作日判定为非周末且非节假日
	Holidays []string `json:"holidays,omitempty"`
}

func main() {
	input := flag.String("input", "", "题面 JSON 文件路径")
	mode := flag.String("mode", "balanced", "求解模式: fast/balanced/optimal/enterprise")
	output := flag.String("output", "", "解 JSON 输出路径，为空时只打印摘要")
	profileOnly := flag.Bool("profile", false, "只做资源画像，不求解")
	persist := flag.Bool("persist", false, "把任务与安排写入数据库")
	flag.Parse()

	// .env 不存在不算错误
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	fmt.Printf("KaoPai 考官排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n\n", BuildTime, GitCommit)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "用法: solver -input problem.json [-mode balanced] [-output solution.json]")
		os.Exit(2)
	}

	problem, err := loadProblem(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取题面失败: %v\n", err)
		os.Exit(1)
	}

	req := &solver.Request{
		Students:  problem.Students,
		Teachers:  problem.Teachers,
		DateRange: problem.DateRange,
		Config:    problem.Config,
		Optimizer: problem.Optimizer,
		Pinned:    problem.Pinned,
		Workday:   workdayFn(problem.Holidays),
	}
	if req.Optimizer == nil {
		req.Optimizer = optimizerConfig(&cfg.Solver)
	}

	engine := solver.NewEngine()

	if *profileOnly {
		if err := printProfiles(engine, req); err != nil {
			fmt.Fprintf(os.Stderr, "资源画像失败: %v\n", err)
			os.Exit(1)
		}
		return
	}

	manager := taskmgr.NewManager(taskConfig(&cfg.Tasks), engine)
	defer manager.Close()

	task, err := manager.Submit(taskmgr.SolveMode(*mode), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "提交求解任务失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("任务 %s 已提交（模式 %s，学员 %d，考官 %d）\n",
		task.ID, *mode, len(problem.Students), len(problem.Teachers))

	// 等待上限放宽到模式预算的两倍，覆盖排队时间
	waitCtx, cancel := context.WithTimeout(context.Background(),
		2*taskmgr.SolveMode(*mode).Timeout(len(problem.Students)))
	defer cancel()

	done, err := manager.Wait(waitCtx, task.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "等待求解结果失败: %v\n", err)
		os.Exit(1)
	}

	printReport(&done)

	if *output != "" && done.Solution != nil {
		if err := writeSolution(*output, done.Solution); err != nil {
			fmt.Fprintf(os.Stderr, "写出解文件失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("解已写出: %s\n", *output)
	}

	if *persist && done.Solution != nil {
		if err := persistResult(cfg, &done, problem); err != nil {
			fmt.Fprintf(os.Stderr, "落库失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("任务与安排已落库")
	}

	if done.State != taskmgr.StateCompleted || done.Solution == nil || !done.Solution.Success {
		os.Exit(1)
	}
}

// loadProblem 读取并解析题面文件
func loadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	problem := &Problem{}
	if err := json.Unmarshal(data, problem); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	return problem, nil
}

// workdayFn 由节假日列表构造工作日判定
func workdayFn(holidays []string) model.WorkdayFn {
	if len(holidays) == 0 {
		return model.DefaultWorkdayFn()
	}
	holidaySet := make(map[string]bool, len(holidays))
	for _, d := range holidays {
		holidaySet[d] = true
	}
	return func(date string) bool {
		return !model.IsWeekend(date) && !holidaySet[date]
	}
}

// optimizerConfig 从环境配置构造优化器配置
func optimizerConfig(sc *config.SolverConfig) *optimizer.Config {
	oc := optimizer.DefaultConfig()
	oc.MaxIterations = sc.MaxIterations
	oc.MaxTime = sc.MaxTime
	oc.InitialTemp = sc.InitialTemp
	oc.CoolingRate = sc.CoolingRate
	oc.NeighborhoodSize = sc.NeighborhoodSize
	oc.PlateauThreshold = sc.PlateauThreshold
	return oc
}

// taskConfig 从环境配置构造任务管理器配置
func taskConfig(tc *config.TaskConfig) *taskmgr.Config {
	mc := taskmgr.DefaultConfig()
	mc.CoreWorkers = tc.CoreWorkers
	mc.MaxWorkers = tc.MaxWorkers
	mc.QueueDepth = tc.QueueDepth
	mc.MaxConcurrency = tc.MaxConcurrency
	mc.AcquireWait = tc.AcquireWait
	mc.Retention = tc.Retention
	return mc
}

// printProfiles 打印资源画像
func printProfiles(engine *solver.Engine, req *solver.Request) error {
	profiles, err := engine.Profile(req)
	if err != nil {
		return err
	}

	fmt.Printf("资源画像（%d 名学员，按排考难度降序）\n", len(profiles))
	fmt.Println("----------------------------------------")
	for _, p := range profiles {
		fmt.Printf("%-8s 科室 %-4s 考核 %d 天  可用窗口 %d  最小候选 %d  风险 %s\n",
			p.StudentName, p.Student.Department, p.Student.ExamDays,
			p.WindowCount, p.MinCandidates, p.Risk)
	}
	return nil
}

// printReport 打印求解报告
func printReport(task *taskmgr.TaskSnapshot) {
	fmt.Println()
	fmt.Println("========================================")
	fmt.Printf("任务 %s 结束，状态 %s\n", task.ID, task.State)
	if task.Err != nil {
		fmt.Printf("错误: %v\n", task.Err)
	}
	sol := task.Solution
	if sol == nil {
		return
	}

	fmt.Printf("评分: %s  成功: %v\n", sol.Score, sol.Success)
	if sol.Message != "" {
		fmt.Printf("说明: %s\n", sol.Message)
	}
	if sol.Statistics != nil {
		st := sol.Statistics
		fmt.Printf("学员 %d 已排 %d 未排 %d，安排 %d（完整 %d），完成率 %.1f%%\n",
			st.TotalStudents, st.ScheduledStudents, st.UnresolvedStudents,
			st.TotalAssignments, st.CompleteCount, st.CompletionRate)
	}

	if len(sol.Assignments) > 0 {
		fmt.Println("----------------------------------------")
		byDate := sol.AssignmentsByDate()
		dates := make([]string, 0, len(byDate))
		for d := range byDate {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		for _, d := range dates {
			fmt.Printf("%s:\n", d)
			for _, a := range byDate[d] {
				line := fmt.Sprintf("  学员 %s [%s] 考官一 %s", shortID(a.StudentID.String()), a.ExamType, refName(a.Examiner1))
				line += fmt.Sprintf("  考官二 %s", refName(a.Examiner2))
				if a.Backup != nil {
					line += fmt.Sprintf("  备用 %s", refName(a.Backup))
				}
				if a.Pinned {
					line += "  [锁定]"
				}
				fmt.Println(line)
			}
		}
	}

	for _, u := range sol.Unresolved {
		fmt.Printf("未排学员 %s: %s\n", u.StudentName, u.Reason)
	}
	for _, c := range sol.Conflicts {
		fmt.Printf("冲突 [%s/%s] %s\n", c.ConstraintID, c.Severity, c.Message)
		if c.Suggestion != "" {
			fmt.Printf("  建议: %s\n", c.Suggestion)
		}
	}
}

func refName(ref *model.TeacherRef) string {
	if ref == nil {
		return "（空缺）"
	}
	return fmt.Sprintf("%s(科室%s)", ref.Name, ref.Department)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeSolution 把解写出为 JSON 文件
func writeSolution(path string, sol *model.Solution) error {
	data, err := json.MarshalIndent(sol, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// persistResult 把任务与安排写入数据库
func persistResult(cfg *config.Config, task *taskmgr.TaskSnapshot, problem *Problem) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	taskID, err := uuid.Parse(task.ID)
	if err != nil {
		return fmt.Errorf("任务ID无效: %w", err)
	}

	sol := task.Solution
	record := &repository.SolveTask{
		ID:           taskID,
		Mode:         string(task.Mode),
		State:        string(task.State),
		StudentCount: len(problem.Students),
		TeacherCount: len(problem.Teachers),
		StartDate:    problem.DateRange.StartDate,
		EndDate:      problem.DateRange.EndDate,
		HardScore:    sol.Score.Hard,
		SoftScore:    sol.Score.Soft,
		Success:      sol.Success,
		Message:      sol.Message,
	}
	if task.Err != nil {
		record.ErrMessage = task.Err.Error()
	}
	if !task.StartedAt.IsZero() {
		startedAt := task.StartedAt
		record.StartedAt = &startedAt
	}
	if !task.DoneAt.IsZero() {
		doneAt := task.DoneAt
		record.DoneAt = &doneAt
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.NewTaskRepository(db).Create(ctx, record); err != nil {
		return err
	}
	records := repository.RecordsOf(sol, problem.Students)
	return repository.NewSolutionRepository(db).SaveAssignments(ctx, taskID, records)
}
