package mailbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

var (
	// ErrClosed 队列已关闭（接收时表示已关闭且已取空）
	ErrClosed = errors.New("mailbox closed")
	// ErrTimeout 接收超时
	ErrTimeout = fmt.Errorf("mailbox receive timeout: %w", context.DeadlineExceeded)
)

// Queue 无界阻塞队列
//
// 元素按入队顺序（FIFO）取出。零值不可用，请使用 [New] 创建。
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    *linkedlistqueue.Queue
	closed bool
}

// New 创建空队列
func New[T any]() *Queue[T] {
	q := &Queue[T]{buf: linkedlistqueue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send 入队并唤醒一个等待中的接收方
// 永不阻塞；队列关闭后返回 ErrClosed
func (q *Queue[T]) Send(value T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.buf.Enqueue(value)
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// Receive 阻塞直到取出一个元素
// 只有在队列关闭且已取空时才返回 ErrClosed
func (q *Queue[T]) Receive() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.Empty() && !q.closed {
		q.cond.Wait()
	}
	return q.pop()
}

// ReceiveContext 阻塞直到取出一个元素或 ctx 结束
// ctx 结束时返回 ctx.Err()，队列中的元素不受影响
func (q *Queue[T]) ReceiveContext(ctx context.Context) (T, error) {
	// ctx 结束时唤醒所有等待者，由各自重新检查条件
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.Empty() && !q.closed {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		q.cond.Wait()
	}
	return q.pop()
}

// ReceiveTimeout 带超时的接收
func (q *Queue[T]) ReceiveTimeout(timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	v, err := q.ReceiveContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return v, ErrTimeout
	}
	return v, err
}

// TryReceive 非阻塞接收，队列为空时返回 false
func (q *Queue[T]) TryReceive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.buf.Empty() {
		var zero T
		return zero, false
	}
	v, _ := q.pop()
	return v, true
}

// pop 取出队首元素，调用方必须持有锁
func (q *Queue[T]) pop() (T, error) {
	var zero T
	raw, ok := q.buf.Dequeue()
	if !ok {
		return zero, ErrClosed
	}
	// nil 接口值无法断言，按零值返回
	v, _ := raw.(T)
	return v, nil
}

// Len 返回当前队列长度（快照）
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Size()
}

// Close 关闭队列并唤醒所有接收方，可重复调用
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.cond.Broadcast()
}

// Closed 报告队列是否已关闭
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
