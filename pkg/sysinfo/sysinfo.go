// Package sysinfo liefert die Statuswerte der Startseite und die
// terminalen Aktionen Reboot und Factory-Reset.
package sysinfo

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const procMeminfo = "/proc/meminfo"

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// FormatUptime renders d as "1 day 2 hours 0 minutes 1 second"
func FormatUptime(d time.Duration) string {
	t := int(d / time.Second)
	days := t / 86400
	hours := (t % 86400) / 3600
	minutes := (t % 3600) / 60
	seconds := t % 60
	return fmt.Sprintf("%d day%s %d hour%s %d minute%s %d second%s",
		days, plural(days), hours, plural(hours), minutes, plural(minutes), seconds, plural(seconds))
}

// Clock reports the time since start
type Clock struct {
	start time.Time
	now   func() time.Time
}

// NewClock starts a clock at now
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{start: now(), now: now}
}

// Uptime returns the elapsed time
func (c *Clock) Uptime() time.Duration {
	return c.now().Sub(c.start)
}

// Memory reports free memory in percent
type Memory struct {
	fs afero.Fs
}

// NewMemory reads /proc/meminfo from fs, nil means runtime statistics only
func NewMemory(fs afero.Fs) *Memory {
	return &Memory{fs: fs}
}

// FreePercent returns available memory in percent of the total
func (m *Memory) FreePercent() int {
	if m.fs != nil {
		if f, err := m.fs.Open(procMeminfo); err == nil {
			defer func() { _ = f.Close() }()
			if p, ok := ParseMeminfo(f); ok {
				return p
			}
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapSys == 0 {
		return 0
	}
	return int(100 * (ms.HeapSys - ms.HeapInuse) / ms.HeapSys)
}

// ParseMeminfo berechnet MemAvailable in Prozent von MemTotal
func ParseMeminfo(r io.Reader) (int, bool) {
	var total, avail uint64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		switch key {
		case "MemTotal":
			total = v
		case "MemAvailable":
			avail = v
		}
	}
	if total == 0 {
		return 0, false
	}
	return int(100 * avail / total), true
}
