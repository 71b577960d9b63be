package light

import (
	"fmt"
	"strings"
)

// Phase 信号灯相位
type Phase int32

const (
	// Stopped 红灯
	Stopped Phase = iota
	// Go 绿灯
	Go
)

// String 返回相位名称
func (p Phase) String() string {
	switch p {
	case Stopped:
		return "stopped"
	case Go:
		return "go"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Next 返回切换后的相位
func (p Phase) Next() Phase {
	if p == Go {
		return Stopped
	}
	return Go
}

// Valid 检查是否为已定义的两个相位之一
func (p Phase) Valid() bool {
	return p == Stopped || p == Go
}

// ParsePhase 解析相位名称，接受 stopped/red 与 go/green（不区分大小写）
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stopped", "red":
		return Stopped, nil
	case "go", "green":
		return Go, nil
	default:
		return Stopped, fmt.Errorf("unknown phase %q", s)
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int32(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Lifecycle 信号灯生命周期状态
type Lifecycle int32

const (
	// LifecycleNotStarted 已创建，尚未启动
	LifecycleNotStarted Lifecycle = iota
	// LifecycleRunning 切换循环运行中
	LifecycleRunning
	// LifecycleStopped 已停止，不可重新启动
	LifecycleStopped
)

// String 返回生命周期状态名称
func (s Lifecycle) String() string {
	switch s {
	case LifecycleNotStarted:
		return "NotStarted"
	case LifecycleRunning:
		return "Running"
	case LifecycleStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
