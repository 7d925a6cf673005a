package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mapcustomizer.

Bash:
  $ source <(mapcustomizer completion bash)

  # To load completions for each session, execute once:
  $ mapcustomizer completion bash > /etc/bash_completion.d/mapcustomizer

Zsh:
  $ mapcustomizer completion zsh > "${fpath[1]}/_mapcustomizer"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ mapcustomizer completion fish > ~/.config/fish/completions/mapcustomizer.fish

PowerShell:
  PS> mapcustomizer completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
