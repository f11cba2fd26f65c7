package utility

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// bootTime anchors boot-relative nanosecond timestamps (the bpf_ktime
// convention the kernel taps use) to wall-clock time. Computed once at
// startup; if /proc/uptime is unreadable, process start stands in and the
// rendered times are merely offset, not wrong relative to each other.
var bootTime = func() time.Time {
	now := time.Now()
	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return now
	}
	parts := strings.Fields(string(data))
	if len(parts) < 1 {
		return now
	}
	uptimeSeconds, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return now
	}
	return now.Add(-time.Duration(uptimeSeconds * float64(time.Second)))
}()

// BootNanos returns nanoseconds since boot. The detection engine uses this
// as its clock so event timestamps share a base with kernel-captured ones.
func BootNanos() uint64 {
	return uint64(time.Since(bootTime))
}

// ConvertBpfNanotime converts a boot-relative nanosecond timestamp to a
// formatted absolute time string with nanosecond precision.
func ConvertBpfNanotime(bpfNs uint64) string {
	absoluteTime := bootTime.Add(time.Duration(bpfNs))
	return absoluteTime.Format("2006-01-02T15:04:05.000000000Z07:00")
}
