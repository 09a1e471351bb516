package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"heatmon/pkg/console"
	"heatmon/pkg/crash"
	"heatmon/pkg/form"
	"heatmon/pkg/httpd"
	"heatmon/pkg/logging"
	"heatmon/pkg/metrics"
	"heatmon/pkg/pages"
	"heatmon/pkg/render"
	"heatmon/pkg/settings"
	"heatmon/pkg/sysinfo"
	"heatmon/pkg/topics"
	"heatmon/pkg/wifi"
)

// Scan-Quellen für --scan-source
const (
	scanSourceIw     = "iw"
	scanSourceStatic = "static"
)

// iwScanTimeout begrenzt einen iw-Scan im Dienst
const iwScanTimeout = 15 * time.Second

// demoNetworks is what the static scan source reports
var demoNetworks = []wifi.Entry{
	{SSID: "HeishaMon-Demo", RSSI: -48},
	{SSID: "Garage", RSSI: -71},
	{SSID: "Nachbar", RSSI: -86},
	{SSID: "Garage", RSSI: -77},
}

// serveCmd startet die Weboberfläche
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin web interface",
	Long: `Run the admin web interface of the heat pump monitor.

All page rendering, scan completions and settings changes run on a single
device loop. The configuration record lives in <data-dir>/config.json.

Examples:
  heatmon serve --listen :8080 --data-dir /var/lib/heatmon
  heatmon serve --scan-source static          # demo without a radio
  HEATMON_LOG_LEVEL=debug heatmon serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.String("listen", ":8080", "listen address")
	f.String("data-dir", ".", "directory for config.json and crash reports")
	f.String("iface", "wlan0", "wireless interface")
	f.String("scan-source", scanSourceIw, "WiFi scan source (iw, static)")
	f.String("log-file", "", "rotating JSON log file")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.Bool("fatal-on-exhaustion", false, "restart instead of answering 413 when a form exceeds its budget")
	f.Int("form-max-fields", form.DefaultLimits.MaxFields, "maximum distinct fields per form submission")
	f.Int("form-max-bytes", form.DefaultLimits.MaxBytes, "maximum bytes per form submission")

	for _, name := range []string{
		"listen", "data-dir", "iface", "scan-source", "log-file", "log-level",
		"fatal-on-exhaustion", "form-max-fields", "form-max-bytes",
	} {
		_ = viper.BindPFlag(name, f.Lookup(name))
	}
}

// newLogger baut den Logger für Unterbefehle; --verbose schaltet auf debug
func newLogger(hub *console.Hub) (zerolog.Logger, func(), error) {
	level := viper.GetString("log-level")
	if viper.GetBool("verbose") {
		level = "debug"
	}
	opts := logging.Options{
		Level:   level,
		File:    viper.GetString("log-file"),
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}
	if hub != nil {
		opts.Console = hub
	}
	log, closer, err := logging.New(opts)
	if err != nil {
		return log, func() {}, err
	}
	return log, func() { _ = closer.Close() }, nil
}

// openSettings lädt den Datensatz aus dem Datenverzeichnis
func openSettings(dataDir string, log zerolog.Logger) (*settings.Manager, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	fs := afero.NewBasePathFs(afero.NewOsFs(), dataDir)
	return settings.NewManager(settings.NewStore(fs, settings.DefaultFile), log), nil
}

func newScanner(source, iface string, timeout time.Duration) (wifi.Scanner, error) {
	switch source {
	case scanSourceIw:
		return wifi.NewIwScanner(iface, timeout), nil
	case scanSourceStatic:
		return &wifi.StaticScanner{Entries: demoNetworks}, nil
	}
	return nil, fmt.Errorf("unknown scan source %q", source)
}

func runServe(cmd *cobra.Command, args []string) error {
	dataDir := viper.GetString("data-dir")
	iface := viper.GetString("iface")

	hub := console.NewHub()
	defer hub.Stop()
	log, closeLog, err := newLogger(hub)
	if err != nil {
		return err
	}
	defer closeLog()

	manager, err := openSettings(dataDir, log)
	if err != nil {
		return err
	}

	crash.SetCrashLogFile(filepath.Join(dataDir, "heatmon_crash.log"))
	crash.SetSentinelFile(filepath.Join(dataDir, ".heatmon.running"))
	if previous, unclean := crash.StartSentinel(); unclean {
		log.Warn().Str("previous", previous).Msg("Previous run did not shut down cleanly")
	}
	defer crash.StopSentinel()

	scanner, err := newScanner(viper.GetString("scan-source"), iface, iwScanTimeout)
	if err != nil {
		return err
	}

	loop := httpd.NewLoop()
	loop.Start()
	defer loop.Stop()

	station := wifi.NewStation(iface, afero.NewOsFs(), log)
	manager.OnCredentialReset(station.ResetCredentials)
	if err := manager.Load(); err != nil {
		log.Warn().Err(err).Str("path", manager.Store().Path()).Msg("Using default settings")
	}
	rec := manager.Current()
	station.Configure(rec.SSID, rec.WifiPassword, rec.Hostname)

	survey := wifi.NewSurvey(scanner, loop.Post)
	loop.Post(survey.Request)

	collector, err := metrics.New(nil)
	if err != nil {
		return err
	}

	system := &sysinfo.System{
		Wipe:       manager.FactoryReset,
		Disconnect: station.ResetCredentials,
		Restart:    crash.Restart,
		OnError: func(err error) {
			log.Error().Err(err).Msg("Factory reset could not remove the configuration")
		},
	}

	renderer := render.New()
	pages.New(pages.Deps{
		Version:  Version,
		Settings: manager,
		Station:  station,
		Survey:   survey,
		Topics:   topics.NewSnapshot(topics.Heatpump),
		Clock:    sysinfo.NewClock(nil),
		Memory:   sysinfo.NewMemory(afero.NewOsFs()),
		Actions:  system,
		Recorder: collector,
		Log:      log,
	}).Register(renderer)

	server := httpd.New(httpd.Config{
		Renderer: renderer,
		Loop:     loop,
		Metrics:  collector,
		Console:  console.NewHandler(hub, log),
		Limits: form.Limits{
			MaxFields: viper.GetInt("form-max-fields"),
			MaxBytes:  viper.GetInt("form-max-bytes"),
		},
		FatalOnExhaustion: viper.GetBool("fatal-on-exhaustion"),
		Log:               log,
	})

	listen := viper.GetString("listen")
	if !isQuiet() {
		color.Cyan("🌡️  heatmon v%s on %s (data: %s, scan: %s)\n", Version, listen, dataDir, viper.GetString("scan-source"))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.ListenAndServe(ctx, listen); err != nil {
		return err
	}
	log.Info().Msg("Admin interface stopped")
	return nil
}
