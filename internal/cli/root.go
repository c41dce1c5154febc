package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides config and POPSTAND_DB
	ConfigPath string
	LogJSON    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the popstand CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "popstand",
		Short: "popstand - point of sale for a pop-up stand",
		Long: `A point-of-sale and inventory tracker for a single pop-up stand.

Keeps a product catalog, records cash and wallet-transfer sales, and
produces the closing cash reconciliation. All data lives in one local
SQLite file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Subcommands inherit this, so flag errors get the same envelope as
	// command failures.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return newFormatter(opts, c).Fail(WrapExitError(ExitCommandError, "invalid arguments", err))
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to popstand.yaml")
	cmd.PersistentFlags().BoolVar(&opts.LogJSON, "log-json", false, "write logs as JSON")

	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewSellCommand(opts))
	cmd.AddCommand(NewSalesCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
