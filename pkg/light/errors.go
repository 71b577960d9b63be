package light

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyStarted 重复调用 Start
	ErrAlreadyStarted = errors.New("traffic light already started")
	// ErrStopped 信号灯已停止
	ErrStopped = errors.New("traffic light stopped")
	// ErrInvalidConfig 配置非法
	ErrInvalidConfig = errors.New("invalid traffic light config")
	// ErrTimeout 等待超时，可用 errors.Is 匹配 *WaitTimeout
	ErrTimeout = errors.New("traffic light wait timeout")
	// ErrStopTimeout 工作 goroutine 未在期限内退出
	ErrStopTimeout = errors.New("traffic light stop timeout")
	// ErrInvalidPhase 目标相位不是 Stopped 或 Go
	ErrInvalidPhase = errors.New("invalid traffic light phase")
	// ErrSubscriptionClosed 订阅已被调用方关闭
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// WaitTimeout 等待相位超时错误
type WaitTimeout struct {
	Light   string
	Target  Phase
	Timeout time.Duration
}

// Error 实现 error 接口
func (e *WaitTimeout) Error() string {
	return fmt.Sprintf("wait for %s on light %s timed out after %v", e.Target, e.Light, e.Timeout)
}

// Is 使 errors.Is(err, ErrTimeout) 成立
func (e *WaitTimeout) Is(target error) bool {
	return target == ErrTimeout
}
