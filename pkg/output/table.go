package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"heatmon/pkg/wifi"
)

// Network is one ranked scan result as printed
type Network struct {
	SSID    string `json:"ssid"`
	RSSI    int    `json:"rssi"`
	Quality int    `json:"quality"`
}

// Networks converts ranked entries; hidden networks are left out
func Networks(ranked []wifi.Entry) []Network {
	out := make([]Network, 0, len(ranked))
	for _, e := range ranked {
		if e.SSID == "" {
			continue
		}
		out = append(out, Network{SSID: e.SSID, RSSI: e.RSSI, Quality: wifi.Quality(e.RSSI)})
	}
	return out
}

// PrintNetworks outputs networks in the specified format
func PrintNetworks(w io.Writer, networks []Network, format string, size TerminalSize) error {
	switch strings.ToLower(format) {
	case "json":
		return printJSON(w, networks)
	case "csv":
		return printCSV(w, networks)
	case "table":
		fallthrough
	default:
		return printTable(w, networks, size)
	}
}

func signal(n Network) string {
	if n.Quality < 0 {
		return "-"
	}
	return strconv.Itoa(n.RSSI) + " dBm"
}

func quality(n Network) string {
	if n.Quality < 0 {
		return "-"
	}
	return strconv.Itoa(n.Quality) + "%"
}

// bar zeichnet die Qualität als Balken aus 10 Zeichen
func bar(q int) string {
	if q < 0 {
		q = 0
	}
	full := (q + 5) / 10
	return strings.Repeat("█", full) + strings.Repeat("░", 10-full)
}

func printTable(w io.Writer, networks []Network, size TerminalSize) error {
	if len(networks) == 0 {
		color.New(color.FgRed).Fprintf(w, "❌ No networks found\n")
		return nil
	}

	header := color.New(color.FgCyan)
	rule := color.New(color.FgWhite)

	// Schmale Terminals: ohne Balken, SSID kürzer
	if size.IsNarrow() {
		header.Fprintf(w, "%-20s %-9s %-7s\n", "SSID", "Signal", "Quality")
		rule.Fprintf(w, "%s\n", strings.Repeat("-", min(size.GetDisplayWidth(), 38)))
		for _, n := range networks {
			fmt.Fprintf(w, "%-20s %-9s %-7s\n", Truncate(n.SSID, 20), signal(n), quality(n))
		}
		fmt.Fprintln(w)
		return nil
	}

	header.Fprintf(w, "%-32s %-9s %-7s %s\n", "SSID", "Signal", "Quality", "")
	rule.Fprintf(w, "%s\n", strings.Repeat("-", min(size.GetDisplayWidth(), 60)))
	for _, n := range networks {
		fmt.Fprintf(w, "%-32s %-9s %-7s %s\n", Truncate(n.SSID, 32), signal(n), quality(n), bar(n.Quality))
	}
	fmt.Fprintln(w)
	return nil
}

func printJSON(w io.Writer, networks []Network) error {
	data, err := json.MarshalIndent(networks, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printCSV(w io.Writer, networks []Network) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"SSID", "RSSI", "Quality"}); err != nil {
		return err
	}
	for _, n := range networks {
		if err := cw.Write([]string{n.SSID, strconv.Itoa(n.RSSI), strconv.Itoa(n.Quality)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
