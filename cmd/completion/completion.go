// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCommand returns the completion command.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completions",
		Long: `Generate shell completion scripts for tsconv.

Install instructions:
  Bash:       tsconv completion bash > /etc/bash_completion.d/tsconv
              echo 'source <(tsconv completion bash)' >> ~/.bashrc
  Zsh:        tsconv completion zsh > ~/.zsh/completions/_tsconv
  Fish:       tsconv completion fish > ~/.config/fish/completions/tsconv.fish
  PowerShell: tsconv completion powershell >> $PROFILE`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				fmt.Fprintln(out, "# tsconv bash completion")
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				fmt.Fprintln(out, "# tsconv zsh completion")
				return rootCmd.GenZshCompletion(out)
			case "fish":
				fmt.Fprintln(out, "# tsconv fish completion")
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				fmt.Fprintln(out, "# tsconv PowerShell completion")
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", args[0])
			}
		},
	}
	return cmd
}
