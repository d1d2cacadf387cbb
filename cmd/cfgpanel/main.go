package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/cfgpanel/internal/app"
	"github.com/spf13/cobra"
)

var cfgFileName string

var rootCmd = &cobra.Command{
	Use:           "cfgpanel",
	Short:         "Web panel for downloader config files",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin panel",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFileName, "config", "c", "cfgpanel.yml", "Path to config file")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	app := app.New(cfgFileName)
	app.Start()

	c := make(chan os.Signal, 1)
	defer close(c)
	done := make(chan struct{})

	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer close(done)

		for sig := range c {
			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				fmt.Fprintln(cmd.OutOrStdout(), "Received termination signal. Shutting down...")

				return
			}
		}
	}()

	<-done
	signal.Stop(c)
	app.Stop()
	fmt.Fprintln(cmd.OutOrStdout(), "done")

	return nil
}
