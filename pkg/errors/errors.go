// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"
	CodeCancelled    Code = "CANCELLED"

	// 排考引擎相关
	CodeNoFeasibleSolution Code = "NO_FEASIBLE_SOLUTION"
	CodeInfeasibleStudent  Code = "INFEASIBLE_STUDENT"
	CodeInvalidDateRange   Code = "INVALID_DATE_RANGE"
	CodeInternalConflict   Code = "INTERNAL_CONFLICT" // 引擎内部一致性错误

	// 任务管理相关
	CodeQueueFull           Code = "QUEUE_FULL"            // 可重试
	CodeConcurrencyExceeded Code = "CONCURRENCY_EXCEEDED"  // 可重试
	CodeTaskNotFound        Code = "TASK_NOT_FOUND"

	// 数据相关
	CodeDatabaseError Code = "DATABASE_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code      Code                   `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Cause     error                  `json:"-"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: isRetryable(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: isRetryable(code),
		Cause:     err,
	}
}

// isRetryable 资源耗尽类错误可在稍后重试
func isRetryable(code Code) bool {
	return code == CodeQueueFull || code == CodeConcurrencyExceeded
}

// Is 检查错误是否为特定错误码
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsRetryable 检查错误是否可重试
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// 预定义错误
var (
	ErrInvalidInput       = New(CodeInvalidInput, "输入参数无效")
	ErrTimeout            = New(CodeTimeout, "求解超时")
	ErrCancelled          = New(CodeCancelled, "任务已取消")
	ErrNoFeasibleSolution = New(CodeNoFeasibleSolution, "无可行解")
	ErrQueueFull          = New(CodeQueueFull, "求解队列已满，请稍后重试")
	ErrTaskNotFound       = New(CodeTaskNotFound, "任务不存在")
)

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// InvalidDateRange 创建日期范围无效错误
func InvalidDateRange(start, end, reason string) *AppError {
	return New(CodeInvalidDateRange, fmt.Sprintf("日期范围 %s ~ %s 无效: %s", start, end, reason))
}

// InfeasibleStudent 创建学员无可行安排错误
func InfeasibleStudent(name, reason string) *AppError {
	return New(CodeInfeasibleStudent, fmt.Sprintf("学员 %s 无可行安排: %s", name, reason))
}

// InternalConflict 创建内部一致性错误
// 属于引擎缺陷，必须记录为严重错误且不得静默通过
func InternalConflict(details string) *AppError {
	return New(CodeInternalConflict, fmt.Sprintf("内部一致性错误: %s", details))
}

// ConcurrencyExceeded 创建并发上限错误
func ConcurrencyExceeded(limit int) *AppError {
	return New(CodeConcurrencyExceeded, fmt.Sprintf("并发求解数已达上限 %d，请稍后重试", limit))
}
