package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchpaper/pkg/backend"
)

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for glitchpaper.

  $ source <(glitchpaper completion bash)
  $ glitchpaper completion zsh > "${fpath[1]}/_glitchpaper"
  $ glitchpaper completion fish > ~/.config/fish/completions/glitchpaper.fish

The scripts complete the image directory, --backend names in fallback
order, and --placement values including GNOME's picture-options names.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish"},
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
			}
			return nil
		},
	}
}

// registerCompletions wires value completion for the daemon flags on cmd.
func registerCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("placement", completePlacements)
	_ = cmd.RegisterFlagCompletionFunc("backend", completeBackends)
	_ = cmd.RegisterFlagCompletionFunc("output", cobra.NoFileCompletions)
	cmd.ValidArgsFunction = completeImageDir
}

var placementHelp = map[backend.Placement]string{
	backend.PlacementFill:    "cover the screen, cropping",
	backend.PlacementFit:     "fit inside, letterboxing",
	backend.PlacementCenter:  "original size, centered",
	backend.PlacementTile:    "repeat",
	backend.PlacementStretch: "distort to the screen size",
	backend.PlacementSpan:    "one image across all outputs",
}

func completePlacements(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, p := range backend.Placements {
		if strings.HasPrefix(string(p), toComplete) {
			out = append(out, fmt.Sprintf("%s\t%s", p, placementHelp[p]))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeBackends offers the backends not yet named on the command line.
func completeBackends(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	chosen, _ := cmd.Flags().GetStringSlice("backend")
	var out []string
	for _, name := range backend.DefaultOrder {
		if !slices.Contains(chosen, name) && strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeImageDir completes the single DIR argument with directories.
func completeImageDir(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveFilterDirs
}
