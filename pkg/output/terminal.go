package output

import (
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// TerminalSize repräsentiert die Größe des Terminals
type TerminalSize struct {
	Width  int
	Height int
}

// DefaultSize gilt für Pipes und Dateien
var DefaultSize = TerminalSize{Width: 120, Height: 30}

// SizeOf ermittelt die Terminal-Größe hinter w. Ist w kein Terminal, wird
// DefaultSize verwendet.
func SizeOf(w io.Writer) TerminalSize {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultSize
	}
	if width, height, err := term.GetSize(int(f.Fd())); err == nil {
		return TerminalSize{Width: width, Height: height}
	}

	// Fallback: tput verwenden
	if size := tputSize(); size.Width > 0 {
		return size
	}
	return DefaultSize
}

// tputSize versucht Terminal-Größe via tput zu ermitteln
func tputSize() TerminalSize {
	var size TerminalSize
	if out, err := exec.Command("tput", "cols").Output(); err == nil {
		if width, err := strconv.Atoi(strings.TrimSpace(string(out))); err == nil {
			size.Width = width
		}
	}
	if out, err := exec.Command("tput", "lines").Output(); err == nil {
		if height, err := strconv.Atoi(strings.TrimSpace(string(out))); err == nil {
			size.Height = height
		}
	}
	return size
}

// GetDisplayWidth berechnet verfügbare Breite für Tabelle (mit etwas Puffer)
func (ts TerminalSize) GetDisplayWidth() int {
	return ts.Width - 2
}

// IsNarrow prüft ob Terminal schmal ist (< 80 Spalten)
func (ts TerminalSize) IsNarrow() bool {
	return ts.Width < 80
}
