// Package system 管理一组相互独立的信号灯
//
// [System] 负责信号灯的创建、查找与统一关闭，不做任何灯与灯之间的协调：
//
//	sys := system.New("downtown")
//	defer sys.Shutdown()
//
//	l, err := sys.Spawn("5th-and-main")
//	if err != nil {
//	    return err
//	}
//	err = l.WaitForGreen()
//
// 每个信号灯仍然只由自己的工作 goroutine 驱动；System 只持有引用。
package system
