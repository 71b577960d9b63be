package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251215-go-pkg-trafficlight/pkg/light"
)

var (
	// ErrDuplicate 同名信号灯已存在
	ErrDuplicate = errors.New("traffic light already exists")
	// ErrNotFound 信号灯不存在
	ErrNotFound = errors.New("traffic light not found")
	// ErrNotRunning 系统已关闭
	ErrNotRunning = errors.New("light system is not running")
)

// System 信号灯注册表
type System struct {
	// 基本信息
	name string

	// 信号灯注册表
	lights   map[string]*light.Light
	lightsMu sync.RWMutex

	// 生命周期控制
	isRunning atomic.Bool
	startTime time.Time

	// 配置
	config *Config

	// 日志
	logger *slog.Logger
}

// Config 系统配置
type Config struct {
	// Logger 自定义日志器，同时传给每个信号灯
	Logger *slog.Logger
	// Metrics 所有信号灯共享的指标钩子
	Metrics light.Metrics
	// LightOptions 每个信号灯的默认选项，Spawn 传入的选项优先
	LightOptions []light.Option
	// ShutdownTimeout Shutdown 等待全部信号灯退出的时长
	ShutdownTimeout time.Duration
}

// DefaultConfig 默认系统配置
func DefaultConfig() *Config {
	return &Config{
		Logger:          nil, // 使用默认 logger
		Metrics:         nil,
		LightOptions:    nil,
		ShutdownTimeout: 30 * time.Second,
	}
}

// SystemStats 系统统计
type SystemStats struct {
	Lights     int
	TotalFlips int64
	Waiting    int
	StartTime  time.Time
}

// New 创建信号灯系统
func New(name string) *System {
	return NewWithConfig(name, DefaultConfig())
}

// NewWithConfig 使用配置创建信号灯系统
func NewWithConfig(name string, config *Config) *System {
	if config == nil {
		config = DefaultConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &System{
		name:      name,
		lights:    make(map[string]*light.Light),
		startTime: time.Now(),
		config:    config,
		logger:    logger,
	}
	s.isRunning.Store(true)

	s.logger.Info("light system started", "name", name)
	return s
}

// Name 返回系统名称
func (s *System) Name() string {
	return s.name
}

// Spawn 创建并启动信号灯
// name 为空时生成 UUID
func (s *System) Spawn(name string, opts ...light.Option) (*light.Light, error) {
	if name == "" {
		name = uuid.NewString()
	}

	s.lightsMu.Lock()
	defer s.lightsMu.Unlock()

	// 在锁内检查，保证 Shutdown 的快照不会漏掉新建的信号灯
	if !s.isRunning.Load() {
		return nil, ErrNotRunning
	}

	if _, exists := s.lights[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	all := make([]light.Option, 0, len(s.config.LightOptions)+len(opts)+3)
	all = append(all, light.WithID(name), light.WithName(name), light.WithLogger(s.logger))
	if s.config.Metrics != nil {
		all = append(all, light.WithMetrics(s.config.Metrics))
	}
	all = append(all, s.config.LightOptions...)
	all = append(all, opts...)

	l, err := light.New(all...)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}
	if err := l.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	s.lights[name] = l
	s.logger.Debug("spawned light", "name", name)
	return l, nil
}

// Get 获取信号灯
func (s *System) Get(name string) (*light.Light, bool) {
	s.lightsMu.RLock()
	defer s.lightsMu.RUnlock()

	l, ok := s.lights[name]
	return l, ok
}

// List 返回所有信号灯名称（已排序）
func (s *System) List() []string {
	s.lightsMu.RLock()
	names := make([]string, 0, len(s.lights))
	for name := range s.lights {
		names = append(names, name)
	}
	s.lightsMu.RUnlock()

	slices.Sort(names)
	return names
}

// Count 返回信号灯数量
func (s *System) Count() int {
	s.lightsMu.RLock()
	defer s.lightsMu.RUnlock()
	return len(s.lights)
}

// WaitUntil 等待指定信号灯下一次切换到 target
func (s *System) WaitUntil(ctx context.Context, name string, target light.Phase) error {
	l, ok := s.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return l.WaitUntilContext(ctx, target)
}

// Stop 停止并移除信号灯
func (s *System) Stop(name string) error {
	s.lightsMu.Lock()
	l, exists := s.lights[name]
	delete(s.lights, name)
	s.lightsMu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return l.StopWithTimeout(s.config.ShutdownTimeout)
}

// Shutdown 关闭整个系统
func (s *System) Shutdown() error {
	return s.ShutdownWithTimeout(s.config.ShutdownTimeout)
}

// ShutdownWithTimeout 带超时的关闭，并发停止所有信号灯
func (s *System) ShutdownWithTimeout(timeout time.Duration) error {
	if !s.isRunning.CompareAndSwap(true, false) {
		return nil
	}
	s.logger.Info("light system shutting down", "name", s.name)

	s.lightsMu.Lock()
	lights := make([]*light.Light, 0, len(s.lights))
	for _, l := range s.lights {
		lights = append(lights, l)
	}
	s.lights = make(map[string]*light.Light)
	s.lightsMu.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, l := range lights {
		wg.Add(1)
		go func(l *light.Light) {
			defer wg.Done()
			if err := l.StopWithTimeout(timeout); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("stop %s: %w", l.Name(), err))
				mu.Unlock()
			}
		}(l)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("light system shutdown incomplete", "name", s.name, "error", err)
		return err
	}

	s.logger.Info("light system shutdown complete", "name", s.name, "lights", len(lights))
	return nil
}

// IsRunning 检查系统是否运行中
func (s *System) IsRunning() bool {
	return s.isRunning.Load()
}

// Stats 获取统计信息
func (s *System) Stats() *SystemStats {
	s.lightsMu.RLock()
	defer s.lightsMu.RUnlock()

	stats := &SystemStats{
		Lights:    len(s.lights),
		StartTime: s.startTime,
	}
	for _, l := range s.lights {
		ls := l.Stats()
		stats.TotalFlips += ls.Flips
		stats.Waiting += ls.Subscribers
	}
	return stats
}
