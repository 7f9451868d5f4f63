package monitor

import (
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Stats holds a single snapshot of resource usage: system-wide CPU and
// memory plus the resident set of this process.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	RSSBytes   uint64  // resident set size of the current process
}

// self resolves the current process once; sampling reuses the handle.
var self, _ = process.NewProcess(int32(os.Getpid()))

// Snapshot collects a single resource usage snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Snapshot() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	if self != nil {
		if info, err := self.MemoryInfo(); err == nil && info != nil {
			s.RSSBytes = info.RSS
		}
	}
	return s
}
