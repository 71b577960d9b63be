package light

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Light 交通信号灯 Actor
//
// 当前相位只由工作 goroutine 写入，任意 goroutine 都可以通过 CurrentPhase 读取。
// 每次切换都会发送到所有订阅者的队列中。
type Light struct {
	// 基本信息
	id   string
	name string

	// 状态（原子读写）
	phase atomic.Int32
	state atomic.Int32

	// 配置
	minInterval time.Duration
	maxInterval time.Duration
	tick        time.Duration
	rand        RandSource

	// 订阅者（每个等待者一个队列）
	subs       map[string]*Subscription
	subsMu     sync.RWMutex
	subsClosed bool

	// 生命周期控制
	lifeMu sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// 统计与日志
	stats   *StatsCollector
	metrics Metrics
	logger  *slog.Logger
}

// New 使用选项创建信号灯
func New(opts ...Option) (*Light, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig 使用配置创建信号灯
func NewWithConfig(cfg *Config) (*Light, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	name := cfg.Name
	if name == "" {
		name = id
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NopMetrics()
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = newDefaultRand()
	}

	ctx, cancel := context.WithCancel(context.Background())

	l := &Light{
		id:          id,
		name:        name,
		minInterval: cfg.MinInterval,
		maxInterval: cfg.MaxInterval,
		tick:        cfg.Tick,
		rand:        rnd,
		subs:        make(map[string]*Subscription),
		ctx:         ctx,
		cancel:      cancel,
		stats:       NewStatsCollector(),
		metrics:     metrics,
		logger:      logger.With("light", name),
	}
	l.phase.Store(int32(cfg.InitialPhase))
	l.state.Store(int32(LifecycleNotStarted))

	return l, nil
}

// ID 返回信号灯 ID
func (l *Light) ID() string {
	return l.id
}

// Name 返回信号灯名称
func (l *Light) Name() string {
	return l.name
}

// CurrentPhase 返回当前相位快照
func (l *Light) CurrentPhase() Phase {
	return Phase(l.phase.Load())
}

// State 返回生命周期状态
func (l *Light) State() Lifecycle {
	return Lifecycle(l.state.Load())
}

// IsRunning 检查切换循环是否运行中
func (l *Light) IsRunning() bool {
	return l.State() == LifecycleRunning
}

// Stats 获取统计信息
func (l *Light) Stats() *Stats {
	return l.stats.Stats()
}

// Start 在独立 goroutine 中启动切换循环
func (l *Light) Start() error {
	l.lifeMu.Lock()
	defer l.lifeMu.Unlock()

	switch l.State() {
	case LifecycleRunning:
		return ErrAlreadyStarted
	case LifecycleStopped:
		return ErrStopped
	}

	l.stats.RecordStarted(time.Now())
	l.state.Store(int32(LifecycleRunning))

	l.wg.Add(1)
	go l.cycleThroughPhases()

	l.logger.Info("traffic light started",
		"id", l.id,
		"phase", l.CurrentPhase(),
		"min_interval", l.minInterval,
		"max_interval", l.maxInterval)
	return nil
}

// Stop 停止信号灯，等待工作 goroutine 退出
func (l *Light) Stop() error {
	return l.StopWithTimeout(30 * time.Second)
}

// StopWithTimeout 带超时的停止
//
// 先取消切换循环并等待其退出，再关闭所有订阅者队列，
// 阻塞中的等待者随后返回 ErrStopped。重复调用返回 nil。
func (l *Light) StopWithTimeout(timeout time.Duration) error {
	l.lifeMu.Lock()
	if l.State() == LifecycleStopped {
		l.lifeMu.Unlock()
		return nil
	}
	l.state.Store(int32(LifecycleStopped))
	l.cancel()
	l.lifeMu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-time.After(timeout):
		l.logger.Warn("traffic light stop timeout", "id", l.id, "timeout", timeout)
		err = fmt.Errorf("%w after %v", ErrStopTimeout, timeout)
	}

	l.closeSubscribers()
	l.logger.Info("traffic light stopped", "id", l.id, "flips", l.stats.Stats().Flips)
	return err
}

// cycleThroughPhases 切换循环
//
// 每个 tick 检查一次取消信号；已过时间超过本轮随机时长后切换相位，
// 重新计时并抽取下一轮时长，然后广播新相位。
func (l *Light) cycleThroughPhases() {
	defer l.wg.Done()
	defer l.recoverWorker()

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	start := time.Now()
	interval := l.drawInterval()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			if elapsed <= interval {
				continue
			}

			next := l.CurrentPhase().Next()
			l.phase.Store(int32(next))

			start = time.Now()
			interval = l.drawInterval()

			l.publish(next, elapsed)
		}
	}
}

// recoverWorker 切换循环 panic 时停止信号灯，释放所有等待者
func (l *Light) recoverWorker() {
	r := recover()
	if r == nil {
		return
	}
	l.logger.Error("panic in traffic light",
		"id", l.id,
		"error", r,
		"stack", string(debug.Stack()))

	l.lifeMu.Lock()
	l.state.Store(int32(LifecycleStopped))
	l.cancel()
	l.lifeMu.Unlock()

	l.closeSubscribers()
}

// drawInterval 在 [minInterval, maxInterval) 内均匀抽取相位时长
func (l *Light) drawInterval() time.Duration {
	span := float64(l.maxInterval - l.minInterval)
	return l.minInterval + time.Duration(l.rand.Float64()*span)
}

// publish 广播新相位给所有订阅者
func (l *Light) publish(phase Phase, elapsed time.Duration) {
	l.stats.RecordFlip(phase, elapsed)
	l.metrics.PhaseChanged(l.id, phase, elapsed)

	l.subsMu.RLock()
	for _, sub := range l.subs {
		// 队列无界，Send 不会阻塞；已关闭的订阅直接跳过
		_ = sub.queue.Send(phase)
	}
	n := len(l.subs)
	l.subsMu.RUnlock()

	l.logger.Debug("phase changed",
		"phase", phase,
		"after", elapsed,
		"subscribers", n)
}

// closeSubscribers 注销并关闭全部订阅者队列，之后不再接受新订阅
func (l *Light) closeSubscribers() {
	l.subsMu.Lock()
	l.subsClosed = true
	subs := make([]*Subscription, 0, len(l.subs))
	for _, sub := range l.subs {
		subs = append(subs, sub)
	}
	clear(l.subs)
	l.stats.RecordSubscribers(0)
	l.subsMu.Unlock()

	for _, sub := range subs {
		sub.queue.Close()
		l.metrics.SubscriberRemoved(l.id)
	}
	if len(subs) > 0 {
		l.logger.Debug("subscribers released", "count", len(subs))
	}
}
