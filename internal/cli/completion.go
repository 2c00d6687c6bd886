package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/layout"
	"github.com/matzehuels/pageviz/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for pageviz.

To load completions:

Bash:
  $ source <(pageviz completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pageviz completion bash > /etc/bash_completion.d/pageviz
  # macOS:
  $ pageviz completion bash > $(brew --prefix)/etc/bash_completion.d/pageviz

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pageviz completion zsh > "${fpath[1]}/_pageviz"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ pageviz completion fish | source

  # To load completions for each session, execute once:
  $ pageviz completion fish > ~/.config/fish/completions/pageviz.fish

PowerShell:
  PS> pageviz completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> pageviz completion powershell > pageviz.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(c.stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(c.stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeOutlines completes the document argument with *.json files. Later
// arguments (the search query) get no completion.
func completeOutlines(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// registerRenderCompletions adds value completion for render's --format and
// --engine flags.
func registerRenderCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions(
		[]string{layout.EngineTidy, layout.EngineGraphviz}, cobra.ShellCompDirectiveNoFileComp))
}

// completeFormats completes one entry of a comma-separated format list,
// leaving out formats already listed.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var prefix string
	listed := make(map[string]bool)
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		for _, f := range parseList(prefix) {
			listed[f] = true
		}
	}

	var out []string
	for _, f := range pipeline.FormatNames() {
		if !listed[f] {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
