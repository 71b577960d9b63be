package light

import "time"

// Metrics 信号灯指标钩子
// 由工作 goroutine 与等待者 goroutine 并发调用，实现必须并发安全。
type Metrics interface {
	// PhaseChanged 相位切换，interval 为上一相位持续时间
	PhaseChanged(lightID string, phase Phase, interval time.Duration)
	// SubscriberAdded 新增等待者
	SubscriberAdded(lightID string)
	// SubscriberRemoved 等待者离开
	SubscriberRemoved(lightID string)
	// WaitCompleted 一次 WaitUntil 结束，err 为 nil 表示等到了目标相位
	WaitCompleted(lightID string, target Phase, waited time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) PhaseChanged(string, Phase, time.Duration)         {}
func (nopMetrics) SubscriberAdded(string)                            {}
func (nopMetrics) SubscriberRemoved(string)                          {}
func (nopMetrics) WaitCompleted(string, Phase, time.Duration, error) {}

// NopMetrics 返回不记录任何内容的 Metrics
func NopMetrics() Metrics { return nopMetrics{} }
