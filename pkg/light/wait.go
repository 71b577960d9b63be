package light

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lwmacct/251215-go-pkg-trafficlight/pkg/mailbox"
)

// ═══════════════════════════════════════════════════════════════════════════
// 订阅
// ═══════════════════════════════════════════════════════════════════════════

// Subscription 相位切换订阅
//
// 每个订阅拥有独立的队列，订阅之后的每一次切换都会按顺序投递，
// 不会被其他订阅者取走。使用完毕后必须调用 Close。
type Subscription struct {
	id    string
	light *Light
	queue *mailbox.Queue[Phase]
	once  sync.Once
}

// Subscribe 注册订阅者
// 信号灯停止后返回 ErrStopped；允许在 Start 之前订阅。
func (l *Light) Subscribe() (*Subscription, error) {
	if l.State() == LifecycleStopped {
		return nil, ErrStopped
	}

	sub := &Subscription{
		id:    uuid.NewString(),
		light: l,
		queue: mailbox.New[Phase](),
	}

	l.subsMu.Lock()
	if l.subsClosed {
		l.subsMu.Unlock()
		return nil, ErrStopped
	}
	l.subs[sub.id] = sub
	n := len(l.subs)
	l.stats.RecordSubscribers(n)
	l.subsMu.Unlock()

	l.metrics.SubscriberAdded(l.id)
	l.logger.Debug("subscriber added", "subscriber_id", sub.id, "subscribers", n)
	return sub, nil
}

// SubscriberCount 返回当前订阅者数量
func (l *Light) SubscriberCount() int {
	l.subsMu.RLock()
	defer l.subsMu.RUnlock()
	return len(l.subs)
}

// ID 返回订阅 ID
func (s *Subscription) ID() string {
	return s.id
}

// Next 阻塞直到收到下一次切换后的相位
//
// 信号灯停止时返回 ErrStopped，订阅被关闭时返回 ErrSubscriptionClosed，
// ctx 结束时返回 ctx.Err()。
func (s *Subscription) Next(ctx context.Context) (Phase, error) {
	p, err := s.queue.ReceiveContext(ctx)
	if errors.Is(err, mailbox.ErrClosed) {
		if s.light.State() == LifecycleStopped {
			return p, ErrStopped
		}
		return p, ErrSubscriptionClosed
	}
	return p, err
}

// Pending 返回已投递但尚未读取的切换数量
func (s *Subscription) Pending() int {
	return s.queue.Len()
}

// Close 注销订阅，可重复调用
func (s *Subscription) Close() {
	s.once.Do(func() {
		l := s.light

		l.subsMu.Lock()
		_, registered := l.subs[s.id]
		delete(l.subs, s.id)
		n := len(l.subs)
		l.stats.RecordSubscribers(n)
		l.subsMu.Unlock()

		s.queue.Close()

		// 信号灯停止时已统一注销，不再重复计数
		if !registered {
			return
		}
		l.metrics.SubscriberRemoved(l.id)
		l.logger.Debug("subscriber removed", "subscriber_id", s.id, "subscribers", n)
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// 等待相位
// ═══════════════════════════════════════════════════════════════════════════

// WaitForGreen 阻塞直到下一次变为绿灯
func (l *Light) WaitForGreen() error {
	return l.WaitUntil(Go)
}

// WaitUntil 阻塞直到下一次切换到 target
//
// 不检查当前相位：即使当前已是 target，也会等待下一次切换到 target。
// 中途收到的其他相位被丢弃。
func (l *Light) WaitUntil(target Phase) error {
	return l.WaitUntilContext(context.Background(), target)
}

// WaitUntilTimeout 带超时的等待，超时返回 *WaitTimeout
func (l *Light) WaitUntilTimeout(target Phase, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := l.WaitUntilContext(ctx, target)
	if errors.Is(err, context.DeadlineExceeded) {
		l.logger.Warn("wait timed out", "target", target, "timeout", timeout)
		return &WaitTimeout{Light: l.id, Target: target, Timeout: timeout}
	}
	return err
}

// WaitUntilContext 带 context 的等待
// target 非法时返回 ErrInvalidPhase
func (l *Light) WaitUntilContext(ctx context.Context, target Phase) (err error) {
	// 非法相位永远不会出现，直接拒绝
	if !target.Valid() {
		return fmt.Errorf("%w: target %d", ErrInvalidPhase, int32(target))
	}

	sub, err := l.Subscribe()
	if err != nil {
		return err
	}
	defer sub.Close()

	startTime := time.Now()
	l.stats.RecordWaitStarted()
	defer func() {
		l.stats.RecordWaitDone(err)
		l.metrics.WaitCompleted(l.id, target, time.Since(startTime), err)
	}()

	for {
		p, nextErr := sub.Next(ctx)
		if nextErr != nil {
			return nextErr
		}
		if p == target {
			return nil
		}
	}
}
