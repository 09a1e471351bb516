package wifi

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"heatmon/pkg/crash"
)

var (
	bssRegex    = regexp.MustCompile(`^BSS\s+([0-9a-fA-F:]{17})`)
	signalRegex = regexp.MustCompile(`^signal:\s+(-?\d+(?:\.\d+)?)\s+dBm`)
)

// IwScanner scans with the `iw` tool. The command runs in its own goroutine,
// completion is reported through the done callback.
type IwScanner struct {
	Iface   string
	Timeout time.Duration

	// Run führt das Kommando aus, in Tests ersetzbar
	Run func(ctx context.Context, name string, args ...string) ([]byte, error)

	mu  sync.Mutex
	err error
}

// NewIwScanner creates a scanner for iface
func NewIwScanner(iface string, timeout time.Duration) *IwScanner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IwScanner{
		Iface:   iface,
		Timeout: timeout,
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Start runs one scan in the background
func (s *IwScanner) Start(done func(result Scan)) {
	crash.SafeGo("wifi-scan", func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		defer cancel()

		var entries []Entry
		out, err := s.Run(ctx, "iw", "dev", s.Iface, "scan")
		if err == nil {
			entries = ParseIwScan(bytes.NewReader(out))
		}
		// Fehlgeschlagener Scan liefert 0 Netze, wie das Radio auch

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		done(Entries(entries))
	})
}

// LastErr returns the error of the last scan, nil when it succeeded
func (s *IwScanner) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ParseIwScan extracts SSID and signal of every BSS block of `iw dev X scan`.
// Hidden networks (empty SSID) are skipped.
func ParseIwScan(r io.Reader) []Entry {
	var (
		entries []Entry
		cur     *Entry
	)
	flush := func() {
		if cur != nil && cur.SSID != "" {
			entries = append(entries, *cur)
		}
		cur = nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if bssRegex.MatchString(line) {
			flush()
			cur = &Entry{RSSI: NoSignal}
			continue
		}
		if cur == nil {
			continue
		}
		if m := signalRegex.FindStringSubmatch(line); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				cur.RSSI = int(math.Round(f))
			}
			continue
		}
		if ssid, ok := strings.CutPrefix(line, "SSID:"); ok {
			cur.SSID = strings.TrimSpace(ssid)
		}
	}
	flush()
	return entries
}
