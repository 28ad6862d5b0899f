package monitor

import "time"

// Status 运行状态快照, 可在任意线程读取, 不阻塞监控循环
type Status struct {
	ActiveSymbols []string
	Interval      time.Duration
	Recipients    int
	LastCycleAt   time.Time
}
