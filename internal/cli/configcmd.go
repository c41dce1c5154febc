package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/popstand/internal/config"
	"github.com/roach88/popstand/internal/poserr"
)

// ConfigView is the JSON payload of config show.
type ConfigView struct {
	OpeningCash     decimal.Decimal `json:"openingCash"`
	WalletAccountID string          `json:"walletAccountId"`
	HasWalletQR     bool            `json:"hasWalletQr"`
	CashTotal       decimal.Decimal `json:"cashTotal"`
	Settings        config.Config   `json:"settings"`

	// LastSaved is when the store was last written; nil if never.
	LastSaved *time.Time `json:"lastSaved,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change stand configuration",
	}

	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigSetCashCommand(rootOpts))
	cmd.AddCommand(newConfigSetWalletCommand(rootOpts))
	cmd.AddCommand(newConfigSetQRCommand(rootOpts))

	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show configuration and running cash total",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			cfg := s.pos.Config()
			view := ConfigView{
				OpeningCash:     cfg.OpeningCash,
				WalletAccountID: cfg.WalletAccountID,
				HasWalletQR:     cfg.WalletQRImage != "",
				CashTotal:       s.pos.CashTotal(),
				Settings:        s.cfg,
			}
			saved, found, err := s.db.UpdatedAt(commandContext(cmd), s.cfg.StorageKey)
			if err != nil {
				return s.out.Fail(WrapExitError(ExitCommandError, "failed to read save time", err))
			}
			if found {
				view.LastSaved = &saved
			}
			if s.out.IsJSON() {
				return s.out.Success(view)
			}

			w := s.out.Writer
			cur := s.cfg.CurrencySymbol
			fmt.Fprintf(w, "%-20s %s\n", "Opening cash", money(cur, view.OpeningCash))
			fmt.Fprintf(w, "%-20s %s\n", "Wallet account", view.WalletAccountID)
			fmt.Fprintf(w, "%-20s %t\n", "Wallet QR set", view.HasWalletQR)
			fmt.Fprintf(w, "%-20s %s\n", "Cash total", money(cur, view.CashTotal))
			fmt.Fprintf(w, "%-20s %s\n", "Database", s.cfg.Database)
			fmt.Fprintf(w, "%-20s %d\n", "Low stock at", s.cfg.LowStockThreshold)
			lastSaved := "never"
			if view.LastSaved != nil {
				lastSaved = view.LastSaved.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%-20s %s\n", "Last saved", lastSaved)
			return nil
		},
	}
}

func newConfigSetCashCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-cash <amount>",
		Short: "Set the opening cash float",
		Long: `Set the opening cash float. The amount must not be negative.

A leading "-" is read as a flag; put "--" before an amount that starts
with one.

Example:
  popstand config set-cash 100`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			amount, err := parseMoney("opening cash", args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			if err := s.pos.SetOpeningCash(commandContext(cmd), amount); err != nil {
				return s.out.Fail(err)
			}
			if s.out.IsJSON() {
				return s.out.Success(s.pos.Config())
			}
			fmt.Fprintf(s.out.Writer, "Opening cash set to %s\n", money(s.cfg.CurrencySymbol, amount))
			return nil
		},
	}
	return cmd
}

func newConfigSetWalletCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "set-wallet <account>",
		Short:         "Set the default receiving wallet account",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if args[0] == "" {
				return s.out.Fail(poserr.Validation("wallet account must not be empty"))
			}
			if err := s.pos.SetWalletAccount(commandContext(cmd), args[0]); err != nil {
				return s.out.Fail(err)
			}
			if s.out.IsJSON() {
				return s.out.Success(s.pos.Config())
			}
			fmt.Fprintf(s.out.Writer, "Wallet account set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigSetQRCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "set-qr <file>",
		Short:         "Store the wallet QR image shown to customers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			ref, err := readDataURL(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			if err := s.pos.SetWalletQR(commandContext(cmd), ref); err != nil {
				return s.out.Fail(err)
			}
			if s.out.IsJSON() {
				return s.out.Success(map[string]int{"bytes": len(ref)})
			}
			fmt.Fprintf(s.out.Writer, "Wallet QR stored (%d bytes)\n", len(ref))
			return nil
		},
	}
}
