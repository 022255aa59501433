// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Solver   SolverConfig   `yaml:"solver"`
	Tasks    TaskConfig     `yaml:"tasks"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SolverConfig 排考引擎配置
type SolverConfig struct {
	MaxIterations    int           `yaml:"max_iterations"`
	MaxTime          time.Duration `yaml:"max_time"`
	InitialTemp      float64       `yaml:"initial_temp"`
	CoolingRate      float64       `yaml:"cooling_rate"`
	NeighborhoodSize int           `yaml:"neighborhood_size"`
	PlateauThreshold int           `yaml:"plateau_threshold"`
}

// TaskConfig 任务管理器配置
type TaskConfig struct {
	CoreWorkers    int           `yaml:"core_workers"`
	MaxWorkers     int           `yaml:"max_workers"`
	QueueDepth     int           `yaml:"queue_depth"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	AcquireWait    time.Duration `yaml:"acquire_wait"`
	Retention      time.Duration `yaml:"retention"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "kaopai"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "kaopai"),
			User:            getEnv("DB_USER", "kaopai"),
			Password:        getEnv("DB_PASSWORD", "kaopai123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Solver: SolverConfig{
			MaxIterations:    getEnvInt("SOLVER_MAX_ITERATIONS", 2000),
			MaxTime:          getEnvDuration("SOLVER_MAX_TIME", 60*time.Second),
			InitialTemp:      getEnvFloat("SOLVER_INITIAL_TEMP", 100.0),
			CoolingRate:      getEnvFloat("SOLVER_COOLING_RATE", 0.99),
			NeighborhoodSize: getEnvInt("SOLVER_NEIGHBORHOOD_SIZE", 20),
			PlateauThreshold: getEnvInt("SOLVER_PLATEAU_THRESHOLD", 200),
		},
		Tasks: TaskConfig{
			CoreWorkers:    getEnvInt("TASK_CORE_WORKERS", 2),
			MaxWorkers:     getEnvInt("TASK_MAX_WORKERS", 5),
			QueueDepth:     getEnvInt("TASK_QUEUE_DEPTH", 10),
			MaxConcurrency: getEnvInt("TASK_MAX_CONCURRENCY", 2),
			AcquireWait:    getEnvDuration("TASK_ACQUIRE_WAIT", 30*time.Second),
			Retention:      getEnvDuration("TASK_RETENTION", 24*time.Hour),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
