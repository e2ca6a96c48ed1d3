// Package cli wires the voyage binary: one subcommand per operation, one
// service per process.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	intconfig "voyage/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "voyage",
	Short:         "Travel-planning services",
	Long:          "voyage runs one of the user, trip, travel, sleep, eat, drink or enjoy HTTP services.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, routesCmd, adminCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// serviceArg validates the single <service> positional argument.
func serviceArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	if !intconfig.IsService(args[0]) {
		return fmt.Errorf("unknown service %q (want one of %s)", args[0], strings.Join(intconfig.Services(), ", "))
	}
	return nil
}
