package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
)

// SalesOptions holds flags for sales subcommands.
type SalesOptions struct {
	*RootOptions
	Account  string
	Evidence string
	Out      string
	Oldest   bool
}

// NewSalesCommand creates the sales command group.
func NewSalesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Inspect and correct recorded sales",
	}

	cmd.AddCommand(newSalesListCommand(rootOpts))
	cmd.AddCommand(newSalesShowCommand(rootOpts))
	cmd.AddCommand(newSalesAmendCommand(rootOpts))
	cmd.AddCommand(newSalesEvidenceCommand(rootOpts))

	return cmd
}

func newSalesListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SalesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List sales, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			sales := s.pos.RecentSales()
			if opts.Oldest {
				sales = s.pos.Sales()
			}
			if s.out.IsJSON() {
				return s.out.Success(sales)
			}
			writeSales(s.out.Writer, s.cfg.CurrencySymbol, sales)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Oldest, "oldest-first", false, "list in recording order")

	return cmd
}

// lookupSale resolves a sale id or reports UNKNOWN_ENTITY.
func (s *session) lookupSale(id string) (ledger.Sale, error) {
	sale, ok := s.pos.Sale(id)
	if !ok {
		return ledger.Sale{}, poserr.UnknownSale(id)
	}
	return sale, nil
}

func newSalesShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SalesOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one sale",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			sale, err := s.lookupSale(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			if s.out.IsJSON() {
				return s.out.Success(sale)
			}
			writeSale(s.out.Writer, s.cfg.CurrencySymbol, sale)
			return nil
		},
	}
}

func newSalesAmendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SalesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "amend <id>",
		Short: "Correct a sale's wallet account or evidence",
		Long: `Overwrite the receiving account or the payment evidence of a sale.

Totals, change and stock are not touched.

Example:
  popstand sales amend 0192... --account 987654321 --evidence transfer.jpg`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSalesAmend(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Account, "account", "", "receiving wallet account")
	cmd.Flags().StringVar(&opts.Evidence, "evidence", "", "file to attach as payment evidence")

	return cmd
}

func runSalesAmend(opts *SalesOptions, id string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var patch ledger.SalePatch
	if cmd.Flags().Changed("account") {
		patch.WalletAccountID = &opts.Account
	}
	if opts.Evidence != "" {
		ref, err := readDataURL(opts.Evidence)
		if err != nil {
			return s.out.Fail(err)
		}
		patch.Evidence = &ref
	}
	if patch.IsEmpty() {
		return s.out.Fail(NewExitError(ExitCommandError, "nothing to amend: pass --account or --evidence"))
	}

	sale, err := s.pos.AmendSale(commandContext(cmd), id, patch)
	if err != nil {
		return s.out.Fail(err)
	}
	if s.out.IsJSON() {
		return s.out.Success(sale)
	}
	writeSale(s.out.Writer, s.cfg.CurrencySymbol, sale)
	return nil
}

func newSalesEvidenceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SalesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "evidence <id>",
		Short: "Save a sale's payment evidence to a file",
		Long: `Write the attachment of a sale to --out.

Evidence recorded as a base64 data URL is decoded back to its original
bytes. Any other reference is written as-is.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSalesEvidence(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runSalesEvidence(opts *SalesOptions, id string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	sale, err := s.lookupSale(id)
	if err != nil {
		return s.out.Fail(err)
	}
	if !sale.HasEvidence() {
		return s.out.Fail(NewExitError(ExitFailure, fmt.Sprintf("sale %s has no evidence attached", id)))
	}

	mimeType, data, err := decodeDataURL(sale.Evidence)
	if err != nil {
		s.out.VerboseLog("evidence is not a data URL (%v), writing verbatim", err)
		mimeType, data = "", []byte(sale.Evidence)
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return s.out.Fail(WrapExitError(ExitCommandError, "failed to write evidence", err))
	}

	if s.out.IsJSON() {
		return s.out.Success(map[string]any{"path": opts.Out, "bytes": len(data), "mime": mimeType})
	}
	fmt.Fprintf(s.out.Writer, "Wrote %d bytes to %s\n", len(data), opts.Out)
	return nil
}
