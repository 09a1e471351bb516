package cmd

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Shell-Completion generieren",
	Long: `Generiert Shell-Completion-Scripts für heatmon.

Bash:
  $ source <(heatmon completion bash)
  # Oder permanent in ~/.bashrc:
  $ heatmon completion bash >> ~/.bashrc

Zsh:
  $ source <(heatmon completion zsh)
  # Oder permanent:
  $ heatmon completion zsh > "${fpath[1]}/_heatmon"

Fish:
  $ heatmon completion fish | source
  # Oder permanent:
  $ heatmon completion fish > ~/.config/fish/completions/heatmon.fish

PowerShell:
  PS> heatmon completion powershell | Out-String | Invoke-Expression
  # Oder permanent in $PROFILE:
  PS> heatmon completion powershell >> $PROFILE
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
