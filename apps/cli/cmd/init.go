package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hookshot/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter hookshot config file",
	Long: `Write a config file with the default settings to the current directory.

This creates:
  - ` + config.ConfigFilenames[0] + ` - server, database, fixture and image locations

Examples:
  hookshot init
  hookshot init --force`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("%w: file already exists: %s (use --force to overwrite)", errUsage, configFile)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Notify = &config.NotifyConfig{}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhookshot initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hookshot serve' in one terminal and 'hookshot github push' in another.\n")
	return nil
}
