package cmd

import (
	"fmt"

	"github.com/connorhough/codegen/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage codegen configuration",
		Long:  `Create, get and set codegen configuration values.`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a config file template",
			Long:  `Write a commented config file template unless a config file already exists.`,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := defaultConfigPath()
				if err != nil {
					return err
				}
				created, err := config.EnsureConfigExists(path)
				if err != nil {
					return err
				}
				if !created {
					fmt.Fprintf(cmd.ErrOrStderr(), "config already exists: ")
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Get a configuration value",
			Long:  `Get a configuration value by key, e.g. model.engine.`,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := config.GetValue(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Long: `Set a configuration value by key. List keys (model.args,
model.additional_stop_words) take a comma separated value.`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.SetValue(args[0], args[1])
			},
		},
	)

	return configCmd
}
