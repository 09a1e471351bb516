package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/pretty"

	"heatmon/pkg/form"
	"heatmon/pkg/pages"
	"heatmon/pkg/render"
	"heatmon/pkg/settings"
)

// cliLimits reicht für das komplette Formular plus Passwörter
var cliLimits = form.Limits{MaxFields: 128, MaxBytes: 16384}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the stored device settings",
	Long: `Show or change the configuration record in <data-dir>/config.json.

Changes go through the same merge as the web form: the stored values are
submitted together with the given keys, so only those keys change.

Examples:
  heatmon settings show --pretty
  heatmon settings set mqtt_server=broker.local use_s0=enabled
  heatmon settings set new_ota_password=geheim current_ota_password=heisha
  heatmon settings set listenonly=disabled`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings as the web interface serves them",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Apply settings through the form merge",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)

	settingsCmd.PersistentFlags().String("data-dir", ".", "directory containing config.json")
	settingsShowCmd.Flags().Bool("pretty", false, "indent the JSON output")
}

// writerSink leitet den Renderer auf einen io.Writer um
type writerSink struct {
	io.Writer
}

func (writerSink) Header(int, string) {}

func loadSettings(cmd *cobra.Command) (*settings.Manager, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if !cmd.Flags().Changed("data-dir") && viper.IsSet("data-dir") {
		dataDir = viper.GetString("data-dir")
	}

	log, closeLog, err := newLogger(nil)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	manager, err := openSettings(dataDir, log)
	if err != nil {
		return nil, err
	}
	if err := manager.Load(); err != nil && !isQuiet() {
		color.Yellow("⚠️  %v, using defaults\n", err)
	}
	return manager, nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	manager, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	r := render.New()
	pages.New(pages.Deps{Settings: manager}).Register(r)

	var buf bytes.Buffer
	if err := r.Run(render.NewExchange(pages.RouteGetSettings, writerSink{&buf}, form.Limits{})); err != nil {
		return err
	}

	out := buf.Bytes()
	if p, _ := cmd.Flags().GetBool("pretty"); p {
		out = pretty.Pretty(out)
	} else {
		out = append(out, '\n')
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// parseAssignments zerlegt key=value Argumente
func parseAssignments(args []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs, nil
}

// assignmentForm baut das Formular: gespeicherte Werte, überschrieben durch
// die Argumente. "disabled" entfernt ein Flag wie eine leere Checkbox.
func assignmentForm(rec settings.Record, pairs [][2]string) (*form.Fragments, error) {
	override := make(map[string]string, len(pairs))
	for _, p := range pairs {
		override[p[0]] = p[1]
	}

	seeded := form.New(cliLimits)
	if err := settings.Seed(rec, seeded); err != nil {
		return nil, err
	}

	frags := form.New(cliLimits)
	var err error
	seeded.Each(func(name, value string) {
		if _, ok := override[name]; ok || err != nil {
			return
		}
		err = frags.Accept(name, []byte(value))
	})
	for _, p := range pairs {
		if err != nil {
			break
		}
		if f, ok := settings.Lookup(p[0]); ok && f.Kind == settings.KindFlag && p[1] != settings.Enabled {
			continue
		}
		err = frags.Accept(p[0], []byte(p[1]))
	}
	if err != nil {
		return nil, fmt.Errorf("settings form: %w", err)
	}
	return frags, nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	pairs, err := parseAssignments(args)
	if err != nil {
		return err
	}
	manager, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	frags, err := assignmentForm(manager.Current(), pairs)
	if err != nil {
		return err
	}
	outcome, err := manager.Apply(frags)
	if err != nil {
		return err
	}

	switch outcome {
	case settings.PasswordMismatch:
		return fmt.Errorf("%s: current_ota_password does not match, nothing saved", outcome)
	case settings.ReconnectRequired:
		if !isQuiet() {
			color.Yellow("📶 %s: new WiFi credentials take effect on the next start\n", outcome)
		}
	default:
		if !isQuiet() {
			color.Green("✅ %s\n", outcome)
		}
	}
	return nil
}
