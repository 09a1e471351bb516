package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version enthält die aktuelle Version von heatmon, sie erscheint auch im
// Dashboard. Wird beim Kompilieren via ldflags gesetzt
var Version = "3.2.1"

// BuildDate wird beim Kompilieren gesetzt (optional, via ldflags)
var BuildDate string = "unbekannt"

// GitCommit wird beim Kompilieren gesetzt (optional, via ldflags)
var GitCommit string = "unbekannt"

// versionCmd repräsentiert den version-Befehl
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Version von heatmon an",
	Long:  `Gibt Versionsinformationen über heatmon aus, einschließlich Version, Build-Datum und Git-Commit.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "heatmon v%s\n", Version)
		if BuildDate != "unbekannt" {
			fmt.Fprintf(out, "Build-Datum: %s\n", BuildDate)
		}
		if GitCommit != "unbekannt" {
			fmt.Fprintf(out, "Git-Commit: %s\n", GitCommit)
		}
		fmt.Fprintf(out, "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
