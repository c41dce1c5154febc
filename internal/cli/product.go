package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/poserr"
)

// ProductOptions holds flags for product subcommands.
type ProductOptions struct {
	*RootOptions
	Name      string
	Price     string
	Stock     string
	Available bool
}

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalog",
	}

	cmd.AddCommand(newProductAddCommand(rootOpts))
	cmd.AddCommand(newProductListCommand(rootOpts))
	cmd.AddCommand(newProductUpdateCommand(rootOpts))
	cmd.AddCommand(newProductDeleteCommand(rootOpts))
	cmd.AddCommand(newProductRestockCommand(rootOpts))

	return cmd
}

func newProductAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Long: `Add a product to the catalog.

Example:
  popstand product add --name "Chicha morada" --price 3.50 --stock 24`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "product name (required)")
	cmd.Flags().StringVar(&opts.Price, "price", "", "unit price (required)")
	cmd.Flags().StringVar(&opts.Stock, "stock", "0", "units in stock")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func runProductAdd(opts *ProductOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	name := catalog.NormalizeName(opts.Name)
	if name == "" {
		return s.out.Fail(poserr.Validation("name must not be empty"))
	}
	price, err := parseMoney("price", opts.Price)
	if err != nil {
		return s.out.Fail(err)
	}
	stock, err := parseCount("stock", opts.Stock)
	if err != nil {
		return s.out.Fail(err)
	}

	p, err := s.pos.AddProduct(commandContext(cmd), name, price, stock)
	if err != nil {
		return s.out.Fail(err)
	}

	if s.out.IsJSON() {
		return s.out.Success(p)
	}
	fmt.Fprint(s.out.Writer, "Added ")
	writeProduct(s.out.Writer, s.cfg.CurrencySymbol, p)
	return nil
}

func newProductListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List products",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductList(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Available, "available", false, "only products with stock left")

	return cmd
}

func runProductList(opts *ProductOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	products := s.pos.Products()
	if opts.Available {
		products = s.pos.AvailableProducts()
	}

	if s.out.IsJSON() {
		return s.out.Success(products)
	}
	writeProducts(s.out.Writer, s.cfg.CurrencySymbol, products)
	return nil
}

func newProductUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a product's name, price or stock",
		Long: `Change fields of a product. Unset flags are left unchanged.

Sales already recorded keep the name and price they were sold at.

Example:
  popstand product update 0192... --price 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.Price, "price", "", "new unit price")
	cmd.Flags().StringVar(&opts.Stock, "stock", "", "new stock count")

	return cmd
}

func runProductUpdate(opts *ProductOptions, id string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var patch catalog.Patch
	if cmd.Flags().Changed("name") {
		name := catalog.NormalizeName(opts.Name)
		if name == "" {
			return s.out.Fail(poserr.Validation("name must not be empty"))
		}
		patch.Name = &name
	}
	if cmd.Flags().Changed("price") {
		price, err := parseMoney("price", opts.Price)
		if err != nil {
			return s.out.Fail(err)
		}
		patch.Price = &price
	}
	if cmd.Flags().Changed("stock") {
		stock, err := parseCount("stock", opts.Stock)
		if err != nil {
			return s.out.Fail(err)
		}
		patch.Stock = &stock
	}
	if patch.IsEmpty() {
		return s.out.Fail(NewExitError(ExitCommandError, "nothing to update: pass --name, --price or --stock"))
	}

	p, ok, err := s.pos.UpdateProduct(commandContext(cmd), id, patch)
	if err != nil {
		return s.out.Fail(err)
	}
	if !ok {
		return s.out.Fail(poserr.UnknownProduct(id))
	}

	if s.out.IsJSON() {
		return s.out.Success(p)
	}
	fmt.Fprint(s.out.Writer, "Updated ")
	writeProduct(s.out.Writer, s.cfg.CurrencySymbol, p)
	return nil
}

func newProductDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Remove a product from the catalog",
		Long:          "Remove a product. Recorded sales of it are kept.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.pos.DeleteProduct(commandContext(cmd), args[0]); err != nil {
				return s.out.Fail(err)
			}
			if s.out.IsJSON() {
				return s.out.Success(map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(s.out.Writer, "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newProductRestockCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "restock <id> <units>",
		Short: "Add units to a product's stock",
		Long: `Add units to a product's stock. Units must be a positive integer.

Example:
  popstand product restock 0192... 12`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			units, err := catalog.ParseUnits(args[1])
			if err != nil {
				return s.out.Fail(err)
			}
			p, err := s.pos.Restock(commandContext(cmd), args[0], units)
			if err != nil {
				return s.out.Fail(err)
			}
			if s.out.IsJSON() {
				return s.out.Success(p)
			}
			fmt.Fprint(s.out.Writer, "Restocked ")
			writeProduct(s.out.Writer, s.cfg.CurrencySymbol, p)
			return nil
		},
	}

	// Flags end at the first positional, so "-5" reaches ParseUnits as units.
	cmd.Flags().SetInterspersed(false)

	return cmd
}
