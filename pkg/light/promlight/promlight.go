// Package promlight 提供基于 Prometheus 的 light.Metrics 实现
package promlight

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lwmacct/251215-go-pkg-trafficlight/pkg/light"
)

// 相位时长分桶（秒），在默认 4–6 秒区间内更密
var intervalBuckets = []float64{
	.01, .05, .1, .5, 1, 2, 3, 4, 4.25, 4.5, 4.75, 5, 5.25, 5.5, 5.75, 6, 8, 10,
}

// 等待时长分桶（秒）
var waitBuckets = []float64{
	.001, .01, .1, .5, 1, 2, 4, 6, 8, 12, 20, 30,
}

type lightMetrics struct {
	phaseChanges  *prometheus.CounterVec
	phaseInterval prometheus.Histogram
	currentPhase  *prometheus.GaugeVec
	subscribers   *prometheus.GaugeVec
	waitDuration  *prometheus.HistogramVec
}

// NewMetrics 创建指标钩子，所有采集器注册到 reg
func NewMetrics(reg prometheus.Registerer) light.Metrics {
	m := &lightMetrics{
		phaseChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trafficlight_phase_changes_total",
			Help: "Total number of phase changes",
		}, []string{"light", "phase"}),

		phaseInterval: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trafficlight_phase_interval_seconds",
			Help:    "Time spent in a phase before it changed",
			Buckets: intervalBuckets,
		}),

		currentPhase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trafficlight_current_phase",
			Help: "Current phase of the light (0 stopped, 1 go)",
		}, []string{"light"}),

		subscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trafficlight_subscribers",
			Help: "Number of goroutines waiting on the light",
		}, []string{"light"}),

		waitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trafficlight_wait_duration_seconds",
			Help:    "Time spent in WaitUntil",
			Buckets: waitBuckets,
		}, []string{"target", "result"}),
	}

	reg.MustRegister(
		m.phaseChanges,
		m.phaseInterval,
		m.currentPhase,
		m.subscribers,
		m.waitDuration,
	)

	return m
}

func (m *lightMetrics) PhaseChanged(lightID string, phase light.Phase, interval time.Duration) {
	m.phaseChanges.WithLabelValues(lightID, phase.String()).Inc()
	m.phaseInterval.Observe(interval.Seconds())
	m.currentPhase.WithLabelValues(lightID).Set(float64(phase))
}

func (m *lightMetrics) SubscriberAdded(lightID string) {
	m.subscribers.WithLabelValues(lightID).Inc()
}

func (m *lightMetrics) SubscriberRemoved(lightID string) {
	m.subscribers.WithLabelValues(lightID).Dec()
}

func (m *lightMetrics) WaitCompleted(_ string, target light.Phase, waited time.Duration, err error) {
	m.waitDuration.WithLabelValues(target.String(), resultLabel(err)).Observe(waited.Seconds())
}

// resultLabel 将等待结果归类为有限的标签值
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, light.ErrStopped):
		return "stopped"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, light.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

var _ light.Metrics = (*lightMetrics)(nil)
