// Package topics beschreibt die Telemetrie-Werte der Wärmepumpe und ihre
// Klartext-Beschreibungen.
package topics

import "strconv"

// RawValue marks a table whose value is shown as-is; the single label is the unit.
const RawValue = -1

// Unknown is the description of an enum value outside the table
const Unknown = "unknown"

// Table maps a topic value to its description
type Table struct {
	Max    int // höchster gültiger Wert, oder RawValue
	Labels []string
}

// Enum builds a table whose labels are indexed by value
func Enum(labels ...string) Table {
	return Table{Max: len(labels) - 1, Labels: labels}
}

// Unit builds a raw-value table
func Unit(unit string) Table {
	return Table{Max: RawValue, Labels: []string{unit}}
}

// IsRaw reports whether values pass through unchanged
func (t Table) IsRaw() bool {
	return t.Max == RawValue
}

// Describe returns the description for a raw telemetry value.
// Out-of-range values degrade to Unknown instead of failing.
func (t Table) Describe(raw string) string {
	if t.IsRaw() {
		if len(t.Labels) == 0 {
			return ""
		}
		return t.Labels[0]
	}
	v := ParseInt(raw)
	if v < 0 || v > t.Max || v >= len(t.Labels) {
		return Unknown
	}
	return t.Labels[v]
}

// ParseInt liest eine führende Ganzzahl, ohne Ziffern ergibt das 0
func ParseInt(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	v, err := strconv.Atoi(s[start:i])
	if err != nil {
		return 0
	}
	return v
}

// Topic is one named telemetry value
type Topic struct {
	Name  string
	Table Table
}

// ID returns the wire id, e.g. "TOP4"
func ID(i int) string {
	return "TOP" + strconv.Itoa(i)
}

// Snapshot holds the latest decoded value of every topic plus the raw frame
// it was decoded from. It is only touched from the device loop.
type Snapshot struct {
	topics []Topic
	values []string
	frame  []byte
}

// NewSnapshot creates an empty snapshot for the given topic list
func NewSnapshot(list []Topic) *Snapshot {
	return &Snapshot{
		topics: list,
		values: make([]string, len(list)),
	}
}

// Len returns the number of topics
func (s *Snapshot) Len() int {
	return len(s.topics)
}

// Topic returns topic i
func (s *Snapshot) Topic(i int) Topic {
	return s.topics[i]
}

// Value returns the current raw value of topic i
func (s *Snapshot) Value(i int) string {
	return s.values[i]
}

// Set updates topic i; out-of-range indices are ignored
func (s *Snapshot) Set(i int, v string) {
	if i < 0 || i >= len(s.values) {
		return
	}
	s.values[i] = v
}

// SetFrame stores a copy of the last raw frame for the diagnostics page
func (s *Snapshot) SetFrame(p []byte) {
	s.frame = append(s.frame[:0], p...)
}

// Frame returns the last raw frame
func (s *Snapshot) Frame() []byte {
	return s.frame
}
