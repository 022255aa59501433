// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// SolverLogger 排考引擎专用日志器
type SolverLogger struct {
	base *zerolog.Logger
}

// NewSolverLogger 创建排考引擎日志器
func NewSolverLogger() *SolverLogger {
	l := Get().With().Str("component", "solver").Logger()
	return &SolverLogger{base: &l}
}

// StartSolve 记录求解开始
func (l *SolverLogger) StartSolve(taskID string, students, teachers, days int) {
	l.base.Info().
		Str("task_id", taskID).
		Int("students", students).
		Int("teachers", teachers).
		Int("days", days).
		Msg("开始生成排考方案")
}

// SolveComplete 记录求解完成
func (l *SolverLogger) SolveComplete(taskID string, duration time.Duration, hard, soft int) {
	l.base.Info().
		Str("task_id", taskID).
		Dur("duration", duration).
		Int("hard_score", hard).
		Int("soft_score", soft).
		Msg("排考方案生成完成")
}

// ConstraintViolation 记录约束违反
func (l *SolverLogger) ConstraintViolation(constraintID, details string) {
	l.base.Warn().
		Str("constraint", constraintID).
		Str("details", details).
		Msg("约束违反")
}

// InfeasibleStudent 记录无法安排的学员
func (l *SolverLogger) InfeasibleStudent(studentName, reason string) {
	l.base.Error().
		Str("student", studentName).
		Str("reason", reason).
		Msg("学员无可行安排，已跳过")
}

// InternalInconsistency 记录内部一致性错误（引擎缺陷）
func (l *SolverLogger) InternalInconsistency(details string) {
	l.base.Error().
		Str("details", details).
		Bool("internal_bug", true).
		Msg("内部一致性错误")
}

// RepairedViolation 记录校验器自动修复
func (l *SolverLogger) RepairedViolation(kind, details string) {
	l.base.Warn().
		Str("kind", kind).
		Str("details", details).
		Msg("校验器已自动修复冲突")
}
