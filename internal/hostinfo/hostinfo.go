package hostinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Summary содержит сведения об узле оператора для баннера.
type Summary struct {
	Hostname    string
	Platform    string
	PlatformVer string
	Kernel      string
	MemTotal    uint64
}

// String форматирует Summary одной строкой.
func (s Summary) String() string {
	line := s.Hostname
	if s.Platform != "" {
		line += fmt.Sprintf(" %s %s", s.Platform, s.PlatformVer)
	}
	if s.Kernel != "" {
		line += " / " + s.Kernel
	}
	if s.MemTotal > 0 {
		line += fmt.Sprintf(" / %d MiB", s.MemTotal/(1<<20))
	}
	return line
}

// Collect читает сведения об узле.
func Collect(ctx context.Context) (Summary, error) {
	hInfo, err := host.InfoWithContext(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("host info: %w", err)
	}
	sum := Summary{
		Hostname:    hInfo.Hostname,
		Platform:    hInfo.Platform,
		PlatformVer: hInfo.PlatformVersion,
		Kernel:      hInfo.KernelVersion,
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return sum, fmt.Errorf("memory info: %w", err)
	}
	sum.MemTotal = vm.Total
	return sum, nil
}
