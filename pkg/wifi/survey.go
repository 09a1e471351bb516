package wifi

// Scan is the result of one completed scan. Entries are queried one by one
// when a page renders them.
type Scan interface {
	Len() int
	Entry(i int) Entry
}

// Entries is a Scan backed by a slice
type Entries []Entry

// Len returns the number of networks
func (e Entries) Len() int { return len(e) }

// Entry returns network i, out of range yields an empty no-signal entry
func (e Entries) Entry(i int) Entry {
	if i < 0 || i >= len(e) {
		return Entry{RSSI: NoSignal}
	}
	return e[i]
}

// Scanner is the radio side of a network scan. Start returns immediately;
// the radio reports completion with the scan result.
type Scanner interface {
	Start(done func(result Scan))
}

// Survey tracks the last completed scan. Completion callbacks are routed
// through dispatch so they run on the same control flow as the page
// renderers; count and entries of a scan are swapped in together there.
type Survey struct {
	scanner  Scanner
	dispatch func(func())
	last     Scan
	scanning bool
	scans    int
}

// NewSurvey wraps scanner. A nil dispatch runs completions inline.
func NewSurvey(scanner Scanner, dispatch func(func())) *Survey {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &Survey{scanner: scanner, dispatch: dispatch, last: Entries(nil)}
}

// Request starts the next scan unless one is still running.
func (s *Survey) Request() {
	if s.scanning {
		return
	}
	s.scanning = true
	s.scans++
	s.scanner.Start(func(result Scan) {
		s.dispatch(func() {
			if result == nil {
				result = Entries(nil)
			}
			s.last = result
			s.scanning = false
		})
	})
}

// Count returns the number of networks of the last completed scan
func (s *Survey) Count() int {
	return s.last.Len()
}

// Scans returns how many scans were requested so far
func (s *Survey) Scans() int {
	return s.scans
}

// Scanning reports whether a scan is in flight
func (s *Survey) Scanning() bool {
	return s.scanning
}

// Results queries the entries of the last completed scan
func (s *Survey) Results() []Entry {
	n := s.last.Len()
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.last.Entry(i))
	}
	return out
}

// StaticScanner replays a fixed list; used for demos and tests.
type StaticScanner struct {
	Entries []Entry
}

// Start completes immediately
func (s *StaticScanner) Start(done func(result Scan)) {
	done(Entries(append([]Entry(nil), s.Entries...)))
}
