package output

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// TruncateConfig steuert das Truncation-Verhalten für Ausgaben
var TruncateConfig = struct {
	// Enabled aktiviert die Kürzung (Default: true), --full-output schaltet ab
	Enabled bool
	// ShowInfo zeigt "[+N]" bei Kürzung
	ShowInfo bool
}{
	Enabled:  true,
	ShowInfo: true,
}

// SetFullOutput setzt den FullOutput-Modus (deaktiviert Truncation)
func SetFullOutput(full bool) {
	TruncateConfig.Enabled = !full
}

// Truncate kürzt s auf maxLen Zeichen wenn TruncateConfig.Enabled. Gezählt
// werden Runes, SSIDs dürfen UTF-8 enthalten.
func Truncate(s string, maxLen int) string {
	n := utf8.RuneCountInString(s)
	if !TruncateConfig.Enabled || maxLen <= 0 || n <= maxLen {
		return s
	}

	runes := []rune(s)
	if maxLen < 4 {
		return string(runes[:maxLen])
	}

	if TruncateConfig.ShowInfo && maxLen >= 10 {
		// "text…[+15]", die Zahl zählt die tatsächlich fehlenden Zeichen
		for digits := 1; digits < 10; digits++ {
			keep := maxLen - 4 - digits
			if keep < 1 {
				break
			}
			hidden := n - keep
			if len(strconv.Itoa(hidden)) == digits {
				return string(runes[:keep]) + fmt.Sprintf("…[+%d]", hidden)
			}
		}
	}

	return string(runes[:maxLen-1]) + "…"
}
