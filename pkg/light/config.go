package light

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMinInterval 默认最短相位时长
	DefaultMinInterval = 4 * time.Second
	// DefaultMaxInterval 默认最长相位时长（不含）
	DefaultMaxInterval = 6 * time.Second
	// DefaultTick 切换循环的轮询间隔
	DefaultTick = time.Millisecond
)

// RandSource 随机数源
// Float64 返回 [0.0, 1.0) 内的均匀分布值；*rand.Rand 满足此接口。
// 只在工作 goroutine 中调用，多个信号灯不应共享同一个非并发安全的源。
type RandSource interface {
	Float64() float64
}

// Config 信号灯配置
type Config struct {
	// ID 唯一标识，为空时生成 UUID
	ID string
	// Name 可读名称，为空时使用 ID
	Name string
	// InitialPhase 初始相位
	InitialPhase Phase
	// MinInterval 相位时长下限（含）
	MinInterval time.Duration
	// MaxInterval 相位时长上限（不含）
	MaxInterval time.Duration
	// Tick 轮询间隔，每个 tick 检查一次取消信号与已过时间
	Tick time.Duration
	// Rand 随机数源，为空时为每个信号灯创建独立的 PCG 源
	Rand RandSource
	// Logger 自定义日志器
	Logger *slog.Logger
	// Metrics 指标钩子，为空时不记录
	Metrics Metrics
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		InitialPhase: Stopped,
		MinInterval:  DefaultMinInterval,
		MaxInterval:  DefaultMaxInterval,
		Tick:         DefaultTick,
		Rand:         nil, // 每个信号灯独立创建
		Logger:       nil, // 使用默认 logger
		Metrics:      nil,
	}
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.MinInterval <= 0 {
		return fmt.Errorf("%w: min interval must be positive, got %v", ErrInvalidConfig, c.MinInterval)
	}
	if c.MaxInterval <= c.MinInterval {
		return fmt.Errorf("%w: max interval %v must exceed min interval %v", ErrInvalidConfig, c.MaxInterval, c.MinInterval)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive, got %v", ErrInvalidConfig, c.Tick)
	}
	if !c.InitialPhase.Valid() {
		return fmt.Errorf("%w: initial phase %d", ErrInvalidConfig, int32(c.InitialPhase))
	}
	return nil
}

// Option 配置选项
type Option func(*Config)

// WithID 设置信号灯 ID
func WithID(id string) Option {
	return func(c *Config) { c.ID = id }
}

// WithName 设置信号灯名称
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithInitialPhase 设置初始相位
func WithInitialPhase(p Phase) Option {
	return func(c *Config) { c.InitialPhase = p }
}

// WithIntervals 设置相位时长范围 [min, max)
func WithIntervals(minInterval, maxInterval time.Duration) Option {
	return func(c *Config) {
		c.MinInterval = minInterval
		c.MaxInterval = maxInterval
	}
}

// WithTick 设置轮询间隔
func WithTick(tick time.Duration) Option {
	return func(c *Config) { c.Tick = tick }
}

// WithRand 注入随机数源
func WithRand(r RandSource) Option {
	return func(c *Config) { c.Rand = r }
}

// WithSeed 使用固定种子的 PCG 随机源，便于复现
func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithMetrics 设置指标钩子
func WithMetrics(m Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// newDefaultRand 为单个信号灯创建随机源
func newDefaultRand() RandSource {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}
