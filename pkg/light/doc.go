// Package light 提供交通信号灯 Actor 实现
//
// 信号灯是一个自治的并发单元：
//   - 拥有私有状态（当前相位），只由自己的工作 goroutine 修改
//   - 以 4–6 秒的随机间隔在 [Stopped] 与 [Go] 之间切换
//   - 每次切换都通过 [mailbox.Queue] 通知所有等待者
//
// # 核心组件
//
// [Light] 是信号灯 Actor，[Light.Start] 启动切换循环，[Light.Stop] 取消并等待其退出：
//
//	l, err := light.New(light.WithName("main-st"))
//	if err != nil {
//	    return err
//	}
//	_ = l.Start()
//	defer l.Stop()
//
// [Light.WaitUntil] 阻塞直到下一次切换到目标相位。注意它不会检查当前相位：
// 即使信号灯已经是 [Go]，[Light.WaitForGreen] 也会等待下一次变绿。
//
// # 多个等待者
//
// 每个等待者拥有独立的队列（见 [Light.Subscribe]），切换以广播方式投递。
// 两个并发调用 WaitUntil(Go) 的 goroutine 会在同一次切换时同时返回。
//
// # 生命周期
//
// NotStarted → Running → Stopped。重复 Start 返回 [ErrAlreadyStarted]，
// Stop 之后的操作返回 [ErrStopped]。
//
// # 可测试性
//
// 切换间隔由注入的 [RandSource] 决定，测试可以传入确定性的随机源，
// 并通过 [WithIntervals] 缩短间隔。
package light
