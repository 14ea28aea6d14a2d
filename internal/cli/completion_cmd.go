package cli

import (
	"github.com/spf13/cobra"
)

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for multiping.

To load completions:

Bash:
  $ source <(multiping completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ multiping completion bash > /etc/bash_completion.d/multiping
  # macOS:
  $ multiping completion bash > $(brew --prefix)/etc/bash_completion.d/multiping

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ multiping completion zsh > "${fpath[1]}/_multiping"
  # You will need to start a new shell for this setup to take effect.

Fish:
  $ multiping completion fish | source
  # To load completions for each session, execute once:
  $ multiping completion fish > ~/.config/fish/completions/multiping.fish

PowerShell:
  PS> multiping completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> multiping completion powershell > multiping.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  usageArgs(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
