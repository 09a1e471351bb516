package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"heatmon/pkg/output"
	"heatmon/pkg/wifi"
)

var (
	scanIface   string
	scanSource  string
	scanTimeout time.Duration
	format      string
	fullOutput  bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Survey the WiFi networks in range",
	Long: `Run one WiFi scan and print the networks ranked by signal strength.
Every SSID appears once with its strongest reading, exactly as the settings
page of the web interface lists them.

Examples:
  heatmon scan                         # iw scan on wlan0
  heatmon scan --iface wlp2s0 -f json  # JSON output
  heatmon scan --source static         # demo networks, no radio needed`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanIface, "iface", "wlan0", "wireless interface")
	scanCmd.Flags().StringVar(&scanSource, "source", scanSourceIw, "scan source (iw, static)")
	scanCmd.Flags().DurationVarP(&scanTimeout, "timeout", "t", 20*time.Second, "maximum scan duration")
	scanCmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, csv)")
	scanCmd.Flags().BoolVar(&fullOutput, "full-output", false, "never shorten SSIDs")
}

func runScan(cmd *cobra.Command, args []string) error {
	scanner, err := newScanner(scanSource, scanIface, scanTimeout)
	if err != nil {
		return err
	}
	output.SetFullOutput(fullOutput)

	if !isQuiet() && format == "table" {
		color.Cyan("🔍 Scanning for WiFi networks on %s (%s)\n\n", scanIface, scanSource)
	}

	// Abschluss kommt ggf. aus dem Scan-Goroutine
	completed := make(chan struct{})
	survey := wifi.NewSurvey(scanner, func(f func()) {
		f()
		close(completed)
	})
	start := time.Now()
	survey.Request()

	select {
	case <-completed:
	case <-time.After(scanTimeout):
		return fmt.Errorf("scan did not complete within %v", scanTimeout)
	}

	if iw, ok := scanner.(*wifi.IwScanner); ok {
		if err := iw.LastErr(); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
	}

	networks := output.Networks(wifi.Rank(survey.Results()))
	if err := output.PrintNetworks(cmd.OutOrStdout(), networks, format, output.SizeOf(os.Stdout)); err != nil {
		return err
	}
	if !isQuiet() && format == "table" {
		color.Green("✅ %d networks in %v\n", len(networks), time.Since(start).Round(time.Millisecond))
	}
	return nil
}
