// Package wifi enthält Scan-Auswertung und Station-Verwaltung des WLAN-Moduls.
package wifi

import "slices"

// NoSignal is the RSSI the radio reports when it has no reading
const NoSignal = 31

// Entry is one raw scan result
type Entry struct {
	SSID string `json:"ssid"`
	RSSI int    `json:"rssi"` // dBm
}

// Quality maps a dBm reading to 0..100, or -1 for NoSignal.
func Quality(dBm int) int {
	switch {
	case dBm == NoSignal:
		return -1
	case dBm <= -100:
		return 0
	case dBm >= -50:
		return 100
	}
	return 2 * (dBm + 100)
}

// Rank sorts entries by descending strength and drops later duplicates of an
// SSID, so every network appears once with its strongest reading. Ties keep
// their original order. The input slice is not modified.
func Rank(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return b.RSSI - a.RSSI
	})

	seen := make(map[string]struct{}, len(sorted))
	ranked := sorted[:0]
	for _, e := range sorted {
		if _, dup := seen[e.SSID]; dup {
			continue
		}
		seen[e.SSID] = struct{}{}
		ranked = append(ranked, e)
	}
	return ranked
}
