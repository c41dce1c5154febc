package cli

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
)

// SellOptions holds flags for the sell command.
type SellOptions struct {
	*RootOptions
	Items    []string
	Method   string
	Tendered string
	Account  string
	Evidence string
}

// cartRequest is one --item flag.
type cartRequest struct {
	ProductID string
	Quantity  int
}

// SellResult is the JSON payload of a sale.
type SellResult struct {
	Sale ledger.Sale `json:"sale"`

	// Refused maps product ids to units that did not fit in stock.
	Refused map[string]int `json:"refused,omitempty"`
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Record a sale",
		Long: `Build a cart and finalize it as one sale.

Each --item adds units of a product one at a time. Units beyond the
stock on hand are refused and reported; the rest of the cart is sold.

Cash sales without --tendered are taken as paid exactly. Wallet
transfers go to --account, or the configured account if omitted.

Exit codes:
  0 - Sale recorded
  1 - Sale refused (empty cart, short payment, unknown product)
  2 - Command or persistence error

Examples:
  popstand sell --item 0192...:3 --method cash --tendered 50
  popstand sell --item 0192... --item 0193...:2 --method wallet --evidence receipt.png`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSell(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "product id with optional :quantity (repeatable)")
	cmd.Flags().StringVar(&opts.Method, "method", string(ledger.MethodCash), "payment method (cash|wallet)")
	cmd.Flags().StringVar(&opts.Tendered, "tendered", "", "cash handed over")
	cmd.Flags().StringVar(&opts.Account, "account", "", "receiving wallet account")
	cmd.Flags().StringVar(&opts.Evidence, "evidence", "", "file to attach as payment evidence")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

// parseItem parses "<id>" or "<id>:<quantity>".
func parseItem(s string) (cartRequest, error) {
	id, qty, hasQty := strings.Cut(strings.TrimSpace(s), ":")
	if id == "" {
		return cartRequest{}, poserr.Validation("item %q has no product id", s)
	}
	if !hasQty {
		return cartRequest{ProductID: id, Quantity: 1}, nil
	}
	n, err := catalog.ParseUnits(qty)
	if err != nil {
		return cartRequest{}, err
	}
	return cartRequest{ProductID: id, Quantity: n}, nil
}

func (opts *SellOptions) payment() (ledger.Payment, error) {
	method, err := ledger.ParseMethod(opts.Method)
	if err != nil {
		return ledger.Payment{}, err
	}
	p := ledger.Payment{Method: method, WalletAccountID: opts.Account}

	if opts.Tendered != "" {
		tendered, err := parseMoney("tendered", opts.Tendered)
		if err != nil {
			return ledger.Payment{}, err
		}
		p.Tendered = decimal.NewNullDecimal(tendered)
	}
	if opts.Evidence != "" {
		ref, err := readDataURL(opts.Evidence)
		if err != nil {
			return ledger.Payment{}, err
		}
		p.Evidence = ref
	}
	return p, nil
}

func runSell(opts *SellOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var requests []cartRequest
	for _, item := range opts.Items {
		req, err := parseItem(item)
		if err != nil {
			return s.out.Fail(err)
		}
		requests = append(requests, req)
	}
	payment, err := opts.payment()
	if err != nil {
		return s.out.Fail(err)
	}

	c := s.pos.NewCart()
	refused := make(map[string]int)
	for _, req := range requests {
		for added := 0; added < req.Quantity; added++ {
			ok, err := c.Add(req.ProductID)
			if err != nil {
				return s.out.Fail(err)
			}
			if !ok {
				refused[req.ProductID] += req.Quantity - added
				s.out.Warn("%s: only %d of %d units in stock, rest refused", req.ProductID, added, req.Quantity)
				break
			}
		}
	}

	if !s.out.IsJSON() && !c.IsEmpty() {
		change := c.ChangeDue(payment.Method, payment.Tendered)
		s.out.VerboseLog("cart: %d units, total %s, change due %s",
			c.Units(), money(s.cfg.CurrencySymbol, c.Total()), money(s.cfg.CurrencySymbol, change))
	}

	sale, err := s.pos.Finalize(commandContext(cmd), c, payment)
	if err != nil && sale.ID == "" {
		return s.out.Fail(err)
	}

	// A persistence failure still recorded the sale in memory; show it
	// before reporting the failure.
	if s.out.IsJSON() {
		if err != nil {
			return s.out.Fail(err)
		}
		result := SellResult{Sale: sale}
		if len(refused) > 0 {
			result.Refused = refused
		}
		return s.out.Success(result)
	}
	writeSale(s.out.Writer, s.cfg.CurrencySymbol, sale)
	return s.out.Fail(err)
}
