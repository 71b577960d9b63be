// Package mailbox 提供无界阻塞队列，用作 goroutine 之间的通知通道
//
// [Queue] 是一个泛型 FIFO 队列，由互斥锁和条件变量保护：
//   - [Queue.Send] 永不阻塞发送方，入队后唤醒一个等待中的接收方
//   - [Queue.Receive] 在队列为空时挂起调用方，直到有元素可取
//   - [Queue.ReceiveContext] / [Queue.ReceiveTimeout] 支持取消与超时
//
// 每个入队的元素恰好被一次接收调用取走，不会丢失也不会重复。
// 允许多个接收方并发接收，但不保证跨接收方的投递顺序。
//
// # 关闭语义
//
// [Queue.Close] 之后 Send 返回 [ErrClosed]；已入队的元素仍可被取走，
// 队列取空后接收方返回 [ErrClosed]。
//
//	q := mailbox.New[int]()
//	go func() { _ = q.Send(42) }()
//	v, err := q.Receive()
package mailbox
