package cli

import (
	"strings"

	"github.com/spf13/cobra"

	chartio "github.com/matzehuels/heightchart/pkg/io"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell and load it, for example:

  $ source <(heightchart completion bash)
  $ heightchart completion zsh > "${fpath[1]}/_heightchart"
  $ heightchart completion fish | source
  PS> heightchart completion powershell | Out-String | Invoke-Expression

Completions include the avatars of a chart file, so
"heightchart remove team.json <TAB>" offers their names.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeChartAvatars completes a chart file as the first argument and the
// names of its avatars as the second.
func completeChartAvatars(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	chart, err := chartio.ImportJSON(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, a := range chart.Avatars {
		if a.Name != "" && strings.HasPrefix(strings.ToLower(a.Name), strings.ToLower(toComplete)) {
			out = append(out, a.Name+"\t"+avatarSummary(a))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
