package light

import (
	"sync"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 信号灯统计信息
// ═══════════════════════════════════════════════════════════════════════════

// Stats 信号灯运行时统计
type Stats struct {
	// 相位切换
	Flips     int64 // 切换总次数
	LastPhase Phase // 最近一次切换后的相位

	// 相位时长统计
	TotalInterval   time.Duration // 总时长（用于计算平均值）
	AverageInterval time.Duration // 平均时长
	LastInterval    time.Duration // 最近一次相位时长
	MinInterval     time.Duration // 最短相位时长
	MaxInterval     time.Duration // 最长相位时长

	// 等待者
	WaitsStarted   int64 // 开始的 WaitUntil 次数
	WaitsCompleted int64 // 等到目标相位的次数
	WaitsFailed    int64 // 因停止、取消或超时结束的次数
	Subscribers    int   // 当前订阅者数量

	// 时间戳
	StartedAt  time.Time // 启动时间
	LastFlipAt time.Time // 最近一次切换时间
}

// Clone 克隆统计信息
func (s *Stats) Clone() *Stats {
	c := *s
	return &c
}

// ═══════════════════════════════════════════════════════════════════════════
// StatsCollector 统计收集器
// ═══════════════════════════════════════════════════════════════════════════

// StatsCollector 线程安全的统计收集器
type StatsCollector struct {
	mu    sync.RWMutex
	stats Stats
}

// NewStatsCollector 创建统计收集器
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

// RecordStarted 记录启动时间
func (c *StatsCollector) RecordStarted(at time.Time) {
	c.mu.Lock()
	c.stats.StartedAt = at
	c.mu.Unlock()
}

// RecordFlip 记录一次相位切换
func (c *StatsCollector) RecordFlip(phase Phase, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Flips++
	c.stats.LastPhase = phase
	c.stats.LastFlipAt = time.Now()
	c.stats.LastInterval = interval
	c.stats.TotalInterval += interval
	c.stats.AverageInterval = c.stats.TotalInterval / time.Duration(c.stats.Flips)

	if c.stats.Flips == 1 || interval < c.stats.MinInterval {
		c.stats.MinInterval = interval
	}
	if interval > c.stats.MaxInterval {
		c.stats.MaxInterval = interval
	}
}

// RecordWaitStarted 记录一次等待开始
func (c *StatsCollector) RecordWaitStarted() {
	c.mu.Lock()
	c.stats.WaitsStarted++
	c.mu.Unlock()
}

// RecordWaitDone 记录一次等待结束
func (c *StatsCollector) RecordWaitDone(err error) {
	c.mu.Lock()
	if err == nil {
		c.stats.WaitsCompleted++
	} else {
		c.stats.WaitsFailed++
	}
	c.mu.Unlock()
}

// RecordSubscribers 记录当前订阅者数量
func (c *StatsCollector) RecordSubscribers(n int) {
	c.mu.Lock()
	c.stats.Subscribers = n
	c.mu.Unlock()
}

// Stats 获取统计快照
func (c *StatsCollector) Stats() *Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.Clone()
}

// Reset 重置计数，保留启动时间与当前订阅者数量
func (c *StatsCollector) Reset() {
	c.mu.Lock()
	c.stats = Stats{
		StartedAt:   c.stats.StartedAt,
		Subscribers: c.stats.Subscribers,
	}
	c.mu.Unlock()
}
