package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/popstand/internal/report"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the closing cash reconciliation",
		Long: `Print revenue by payment method, cash on hand, the total to hand
over, units sold per product and remaining stock.

Example:
  popstand report
  popstand report --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			r := s.pos.Report()
			if s.out.IsJSON() {
				return s.out.Success(r)
			}
			return report.Render(s.out.Writer, r, s.cfg.CurrencySymbol)
		},
	}
}
