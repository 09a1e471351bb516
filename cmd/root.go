package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd repräsentiert den Basis-Befehl wenn ohne Unterbefehle aufgerufen
var rootCmd = &cobra.Command{
	Use:   "heatmon",
	Short: "Admin interface for a heat pump monitor",
	Long: `heatmon serves the web administration interface of a heat pump
monitoring device.

Features:
- Live dashboard with heat pump, 1-wire and S0 values
- Settings form with persistent configuration
- WiFi survey and station management
- Factory reset and reboot
- Prometheus metrics and a live log console`,
	SilenceUsage: true,
}

// Execute fügt alle Unterbefehle zum Root-Befehl hinzu und setzt Flags entsprechend
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Globale Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.heatmon.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")
	rootCmd.PersistentFlags().Bool("quiet", false, "quiet output")

	// Flags an Viper binden
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// initConfig liest Konfig-Datei und ENV-Variablen ein falls gesetzt
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".heatmon")
	}

	// HEATMON_DATA_DIR usw.
	viper.SetEnvPrefix("heatmon")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !isQuiet() {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// isQuiet checks if quiet mode is enabled
func isQuiet() bool {
	return viper.GetBool("quiet")
}
