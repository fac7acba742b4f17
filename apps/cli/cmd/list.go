package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hookshot/packages/core/fixture"
	"github.com/abdul-hamid-achik/hookshot/packages/integrations"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [integration...]",
	Short: "List integrations and their fixtures",
	Long: `List the integrations hookshot knows about, their webhook paths and the
fixtures found for them.

Examples:
  hookshot list
  hookshot list github gitlab`,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = integrations.Names()
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		integration, err := integrations.Lookup(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%s (%s):\n", integration.Name, integration.DisplayName)
		fmt.Fprintf(out, "  url: /%s\n", integration.URL)
		fmt.Fprintf(out, "  channel: %s\n", integration.Stream)

		dir := cfg.FixturesDirFor(integration.Name)
		fixtures, err := fixture.List(dir)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error listing %s: %v\n", dir, err)
			continue
		}
		if len(fixtures) == 0 {
			fmt.Fprintf(out, "  fixtures: none in %s\n", dir)
			continue
		}
		fmt.Fprintf(out, "  fixtures:\n")
		for _, f := range fixtures {
			fmt.Fprintf(out, "    - %s\n", f)
		}
	}

	return nil
}
