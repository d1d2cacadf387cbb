package main

import (
	"github.com/jgivc/cfgpanel/internal/app"
	"github.com/spf13/cobra"
)

var copyTo string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List config files and their copy paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.New(cfgFileName).List(cmd.OutOrStdout())
	},
}

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Print the links of a config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.New(cfgFileName).Show(cmd.OutOrStdout(), args[0])
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy FILE",
	Short: "Copy a config file to its saved copy path",
	Long:  `Copy a config file to the path given with --to, or to the copy path saved for it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.New(cfgFileName).Copy(cmd.OutOrStdout(), args[0], copyTo)
	},
}

var setCopyPathCmd = &cobra.Command{
	Use:   "set-copy-path FILE PATH",
	Short: "Save the copy path of a config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.New(cfgFileName).SetCopyPath(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	copyCmd.Flags().StringVar(&copyTo, "to", "", "Target path, overrides the saved copy path")

	rootCmd.AddCommand(listCmd, showCmd, copyCmd, setCopyPathCmd)
}
