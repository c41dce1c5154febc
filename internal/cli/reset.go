package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all products, sales and configuration",
		Long: `Delete every product and sale and restore the default configuration.

This cannot be undone. Pass --yes to confirm.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(opts.RootOptions, cmd)
			if !opts.Yes {
				return out.Fail(NewExitError(ExitCommandError, "refusing to reset without --yes"))
			}

			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.pos.Reset(commandContext(cmd)); err != nil {
				return s.out.Fail(err)
			}
			if s.out.IsJSON() {
				return s.out.Success(map[string]bool{"reset": true})
			}
			fmt.Fprintln(s.out.Writer, "All data deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm deletion")

	return cmd
}
