package cmd

import (
	"github.com/abdul-hamid-achik/hookshot/packages/core/config"
	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for hookshot. Completion knows the
integration names and the fixtures of each integration.

To load completions:

Bash:
  $ source <(hookshot completion bash)

Zsh:
  $ hookshot completion zsh > "${fpath[1]}/_hookshot"

Fish:
  $ hookshot completion fish | source

PowerShell:
  PS> hookshot completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  usageArgs(cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)),
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

func init() {
	rootCmd.AddCommand(completionCmd)
	rootCmd.ValidArgsFunction = completeFixtureArgs
	validateCmd.ValidArgsFunction = completeFixtureArgs
}

// completeFixtureArgs completes <integration> <fixture>
func completeFixtureArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return integrations.Names(), cobra.ShellCompDirectiveNoFileComp
	case 1:
		cfg, err := loadConfig(cmd)
		if err != nil {
			cfg = config.DefaultConfig()
		}
		names, err := fixture.List(cfg.FixturesDirFor(args[0]))
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}
