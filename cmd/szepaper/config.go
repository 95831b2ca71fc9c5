package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"szepaper/pkg/config"
	errs "szepaper/pkg/errors"
	"szepaper/pkg/ui"
)

const exampleConfig = `# szepaper configuration file
#
# Values here are overridden by a .env file, SZEPAPER_* environment
# variables and command line flags, in that order.
# The password is never read from this file: use --password,
# SZEPAPER_PASSWORD or the system keychain (use_keyring).

portal:
  username: ""
  use_keyring: false

output:
  # Directory issues are saved into
  directory: "."
  # Link pointing at the newest current issue
  alias_name: "current.pdf"

download:
  # One of: bayern_base, bayern_full, deutschland_base,
  # deutschland_full, stadt_base, stadt_full
  edition: "deutschland_full"
  # today or YYYY-MM-DD
  issue: "today"
  chunk_size: 65536
  timeout: "60s"

logging:
  # debug, info, warn, error, disabled
  level: "warn"
  file: ""
`

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an example configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, opts)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after applying the config file, .env files and
SZEPAPER_* environment variables. The password is never shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

func runConfigInit(cmd *cobra.Command, opts *options) error {
	configPath := opts.configFile
	if configPath == "" {
		configPath = ".szepaper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return errs.New(errs.ErrorTypeUsage, "configuration file %s already exists", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create configuration file")
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configFile, nil)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUsage, err, "failed to load configuration")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(data))
	if cfg.Portal.Password != "" {
		fmt.Fprintln(out, "# password: set")
	}
	return nil
}
