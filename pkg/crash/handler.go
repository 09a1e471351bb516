// Package crash bietet globales Panic-Recovery, Crash-Logging und die
// Neustart-Policy für heatmon.
package crash

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// ExitRestart ist der Exit-Code, mit dem der Supervisor (systemd, Docker)
// einen Neustart auslösen soll
const ExitRestart = 3

// CrashInfo enthält Informationen über einen Crash
type CrashInfo struct {
	Time         time.Time
	Error        interface{}
	StackTrace   string
	GoVersion    string
	OS           string
	Arch         string
	NumGoroutine int
	MemStats     runtime.MemStats
}

var (
	mu sync.Mutex

	// crashLogFile ist der Pfad zur Crash-Log-Datei
	crashLogFile = "heatmon_crash.log"

	// sentinelFile zeigt einen laufenden Prozess an
	sentinelFile = ".heatmon.running"

	// restartFunc beendet den Prozess, damit der Supervisor neu startet
	restartFunc = func(code int) { os.Exit(code) }
)

// SetCrashLogFile setzt den Pfad zur Crash-Log-Datei
func SetCrashLogFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	crashLogFile = path
}

// SetSentinelFile setzt den Pfad zur Sentinel-Datei
func SetSentinelFile(path string) {
	mu.Lock()
	defer mu.Unlock()
	sentinelFile = path
}

// SetRestartFunc ersetzt den Prozess-Exit, z.B. in Tests.
// Gibt die vorherige Funktion zurück.
func SetRestartFunc(f func(code int)) func(code int) {
	mu.Lock()
	defer mu.Unlock()
	prev := restartFunc
	restartFunc = f
	return prev
}

// Handler ist der globale Crash-Handler, der als defer in main() verwendet wird
func Handler() {
	if r := recover(); r != nil {
		handleCrash(r, 1)
	}
}

// Restart beendet den Prozess geordnet mit ExitRestart. Wird von Reboot und
// Factory-Reset verwendet.
func Restart(reason string) {
	StopSentinel()
	fmt.Fprintf(os.Stderr, "[heatmon] restart: %s\n", reason)
	exit(ExitRestart)
}

// Fatal ist die explizite Fast-Fail-Policy: der Zustand gilt als nicht mehr
// vertrauenswürdig, es wird ein Report geschrieben und neu gestartet.
func Fatal(reason string, err error) {
	info := collect(fmt.Sprintf("fatal: %s: %v", reason, err))
	logCrash(info)
	fmt.Fprintf(os.Stderr, "[heatmon] fatal: %s: %v\n", reason, err)
	StopSentinel()
	exit(ExitRestart)
}

func exit(code int) {
	mu.Lock()
	f := restartFunc
	mu.Unlock()
	f(code)
}

func collect(r interface{}) CrashInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	return CrashInfo{
		Time:         time.Now(),
		Error:        r,
		StackTrace:   string(debug.Stack()),
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		NumGoroutine: runtime.NumGoroutine(),
		MemStats:     memStats,
	}
}

// handleCrash verarbeitet einen abgefangenen Panic
func handleCrash(r interface{}, code int) {
	info := collect(r)
	logCrash(info)
	printCrashMessage(info)
	exit(code)
}

// logCrash schreibt Crash-Informationen in die Log-Datei
func logCrash(info CrashInfo) {
	mu.Lock()
	path := crashLogFile
	mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Kann nicht loggen, ignorieren
		return
	}
	defer func() { _ = f.Close() }()

	_, _ = f.WriteString(FormatReport(info))
}

// FormatReport formatiert einen Crash-Eintrag für die Log-Datei
func FormatReport(info CrashInfo) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("================================================================================\n")
	sb.WriteString(fmt.Sprintf("CRASH REPORT - %s\n", info.Time.Format("2006-01-02 15:04:05")))
	sb.WriteString("================================================================================\n")
	sb.WriteString(fmt.Sprintf("Error: %v\n", info.Error))
	sb.WriteString(fmt.Sprintf("Go Version: %s\n", info.GoVersion))
	sb.WriteString(fmt.Sprintf("OS/Arch: %s/%s\n", info.OS, info.Arch))
	sb.WriteString(fmt.Sprintf("Goroutines: %d\n", info.NumGoroutine))
	sb.WriteString("\n--- Memory Stats ---\n")
	sb.WriteString(fmt.Sprintf("HeapAlloc: %s\n", FormatBytes(info.MemStats.HeapAlloc)))
	sb.WriteString(fmt.Sprintf("Sys: %s\n", FormatBytes(info.MemStats.Sys)))
	sb.WriteString(fmt.Sprintf("NumGC: %d\n", info.MemStats.NumGC))
	sb.WriteString("\n--- Stack Trace ---\n")
	sb.WriteString(info.StackTrace)
	sb.WriteString("================================================================================\n")

	return sb.String()
}

// FormatBytes formatiert Bytes in lesbare Form
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// printCrashMessage gibt eine kurze Crash-Meldung auf stderr aus
func printCrashMessage(info CrashInfo) {
	mu.Lock()
	path := crashLogFile
	mu.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  heatmon ist unerwartet beendet: %v\n", info.Error)
	fmt.Fprintf(os.Stderr, "  Crash-Report: %s\n", absPath)
	fmt.Fprintln(os.Stderr)
}

// WrapGoroutine wickelt eine Goroutine-Funktion mit Panic-Recovery ein
// Verwendung: go crash.WrapGoroutine("taskName", func() { ... })()
func WrapGoroutine(name string, f func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				handleCrash(fmt.Sprintf("goroutine '%s': %v", name, r), 1)
			}
		}()
		f()
	}
}

// SafeGo startet eine Goroutine mit automatischem Panic-Recovery
// Verwendung: crash.SafeGo("taskName", func() { ... })
func SafeGo(name string, f func()) {
	go WrapGoroutine(name, f)()
}

// RecoverAndLog fängt Panics ab und loggt sie, ohne das Programm zu beenden.
// Verwendung: defer crash.RecoverAndLog("taskName")
func RecoverAndLog(name string) {
	if r := recover(); r != nil {
		logCrash(collect(fmt.Sprintf("recovered in '%s': %v", name, r)))
		fmt.Fprintf(os.Stderr, "\n[WARNUNG] Fehler in %s wurde abgefangen: %v\n", name, r)
	}
}

// ============================================================================
// Sentinel-File Mechanismus - Erkennt unsaubere Beendigungen
// ============================================================================

// StartSentinel prüft auf vorherige unsaubere Beendigung und startet neuen Sentinel.
// Gibt den Inhalt des alten Sentinels zurück wenn der letzte Lauf unsauber endete.
func StartSentinel() (previous string, unclean bool) {
	mu.Lock()
	path := sentinelFile
	mu.Unlock()

	if content, err := os.ReadFile(path); err == nil {
		previous, unclean = string(content), true
	}

	content := fmt.Sprintf("%s (PID: %d)", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	_ = os.WriteFile(path, []byte(content), 0644)

	return previous, unclean
}

// StopSentinel entfernt die Sentinel-Datei bei sauberem Exit
func StopSentinel() {
	mu.Lock()
	path := sentinelFile
	mu.Unlock()
	_ = os.Remove(path)
}
