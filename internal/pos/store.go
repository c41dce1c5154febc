package pos

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/cart"
	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
	"github.com/roach88/popstand/internal/report"
	"github.com/roach88/popstand/internal/state"
)

// Persister is the persistence collaborator.
type Persister interface {
	// Load returns the saved root; found is false when nothing is saved.
	Load(ctx context.Context) (root state.Root, found bool, err error)

	// Save replaces the saved root.
	Save(ctx context.Context, root state.Root) error

	// Clear deletes the saved root.
	Clear(ctx context.Context) error
}

// Options configures Open.
type Options struct {
	// Persister is required.
	Persister Persister

	// IDs defaults to UUIDv7Generator.
	IDs IDGenerator

	// Now defaults to time.Now.
	Now Clock

	// DefaultWalletAccount seeds fresh and reset stores.
	// Empty selects state.DefaultWalletAccount.
	DefaultWalletAccount string

	// Policy defaults to report.DefaultPolicy.
	Policy *report.Policy

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Configuration is the operator-set part of the store.
type Configuration struct {
	OpeningCash     decimal.Decimal `json:"openingCash"`
	WalletAccountID string          `json:"walletAccountId"`
	WalletQRImage   string          `json:"walletQrImage,omitempty"`
}

// Store is the facade over catalog, ledger and configuration.
type Store struct {
	mu sync.Mutex

	persister      Persister
	ids            IDGenerator
	now            Clock
	defaultAccount string
	policy         report.Policy
	logger         *slog.Logger

	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	config  Configuration
}

// Open loads the saved root once and returns a ready store.
//
// A missing or undecodable root is replaced with the default root; the
// latter is logged at warn. Any other load failure is returned as a
// PERSISTENCE error.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Persister == nil {
		return nil, errors.New("pos: Options.Persister is required")
	}

	s := &Store{
		persister:      opts.Persister,
		ids:            opts.IDs,
		now:            opts.Now,
		defaultAccount: opts.DefaultWalletAccount,
		policy:         report.DefaultPolicy(),
		logger:         opts.Logger,
	}
	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}
	if s.now == nil {
		s.now = systemClock
	}
	if s.defaultAccount == "" {
		s.defaultAccount = state.DefaultWalletAccount
	}
	if opts.Policy != nil {
		s.policy = *opts.Policy
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	root, found, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, state.ErrCorrupt):
		s.logger.Warn("saved data is unreadable, starting from an empty store", "error", err)
		root = state.Default(s.defaultAccount)
	case err != nil:
		return nil, asPersistence("load root", err)
	case !found:
		root = state.Default(s.defaultAccount)
	}
	s.install(root)

	s.logger.Debug("store opened",
		"products", s.catalog.Len(),
		"sales", s.ledger.Len(),
		"restored", found,
	)
	return s, nil
}

func (s *Store) install(root state.Root) {
	s.catalog = catalog.New(root.Products)
	s.ledger = ledger.New(root.Sales)
	s.config = Configuration{
		OpeningCash:     root.OpeningCash,
		WalletAccountID: root.WalletAccountID,
		WalletQRImage:   root.WalletQRImage,
	}
}

func (s *Store) rootLocked() state.Root {
	return state.Root{
		Products:        s.catalog.List(),
		Sales:           s.ledger.List(),
		OpeningCash:     s.config.OpeningCash,
		WalletAccountID: s.config.WalletAccountID,
		WalletQRImage:   s.config.WalletQRImage,
	}
}

// commitLocked persists the current root. Callers hold s.mu.
func (s *Store) commitLocked(ctx context.Context, op string) error {
	if err := s.persister.Save(ctx, s.rootLocked()); err != nil {
		s.logger.Error("save failed; change kept in memory only", "op", op, "error", err)
		return asPersistence("save root", err)
	}
	return nil
}

func asPersistence(op string, err error) error {
	if poserr.IsKind(err, poserr.KindPersistence) {
		return err
	}
	return poserr.Persistence(op, err)
}

// AddProduct creates a product with a fresh id.
func (s *Store) AddProduct(ctx context.Context, name string, price decimal.Decimal, stock int) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.catalog.Add(s.ids.Generate(), name, price, stock)
	s.logger.Debug("product added", "product_id", p.ID, "name", p.Name, "stock", p.Stock)
	return p, s.commitLocked(ctx, "add product")
}

// UpdateProduct merges patch into a product. An unknown id is a logged
// no-op returning ok=false and nothing is saved.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch catalog.Patch) (p catalog.Product, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok = s.catalog.Update(id, patch)
	if !ok {
		s.logger.Warn("update for unknown product ignored", "product_id", id)
		return catalog.Product{}, false, nil
	}
	return p, true, s.commitLocked(ctx, "update product")
}

// DeleteProduct removes a product. Sales that sold it are unaffected.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.Delete(id) {
		return poserr.UnknownProduct(id)
	}
	return s.commitLocked(ctx, "delete product")
}

// Restock adds units to a product's stock and initial stock.
func (s *Store) Restock(ctx context.Context, id string, units int) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.catalog.Restock(id, units)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, s.commitLocked(ctx, "restock")
}

// NewCart starts an empty cart checked against this store's stock.
func (s *Store) NewCart() *cart.Cart {
	return cart.New(s)
}

// AmendSale overwrites fields of a recorded sale. Totals and stock are
// not recomputed; see ledger.Ledger.Amend.
func (s *Store) AmendSale(ctx context.Context, id string, patch ledger.SalePatch) (ledger.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, err := s.ledger.Amend(id, patch)
	if err != nil {
		return ledger.Sale{}, err
	}
	if patch.TouchesTotals() {
		s.logger.Warn("amend overwrites recorded totals without recomputing stock or totals", "sale_id", id)
	}
	return sale, s.commitLocked(ctx, "amend sale")
}

// SetOpeningCash records the cash float the event started with.
func (s *Store) SetOpeningCash(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.OpeningCash = amount
	return s.commitLocked(ctx, "set opening cash")
}

// SetWalletAccount sets the default receiving wallet account.
func (s *Store) SetWalletAccount(ctx context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.WalletAccountID = account
	return s.commitLocked(ctx, "set wallet account")
}

// SetWalletQR stores the wallet QR image reference verbatim.
func (s *Store) SetWalletQR(ctx context.Context, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.WalletQRImage = image
	return s.commitLocked(ctx, "set wallet qr")
}

// Reset restores the default root and clears the saved blob.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(state.Default(s.defaultAccount))
	if err := s.persister.Clear(ctx); err != nil {
		s.logger.Error("clear failed", "error", err)
		return asPersistence("clear root", err)
	}
	s.logger.Info("store reset")
	return nil
}

// Product implements cart.StockLookup.
func (s *Store) Product(id string) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Get(id)
}

// Products returns every product in creation order.
func (s *Store) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.List()
}

// AvailableProducts returns products with stock left to sell.
func (s *Store) AvailableProducts() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Available()
}

// Sale returns a recorded sale.
func (s *Store) Sale(id string) (ledger.Sale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(id)
}

// Sales returns every sale in recording order.
func (s *Store) Sales() []ledger.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.List()
}

// RecentSales returns every sale newest first.
func (s *Store) RecentSales() []ledger.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Recent()
}

// Config returns the operator-set configuration.
func (s *Store) Config() Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Root returns a copy of everything the store persists.
func (s *Store) Root() state.Root {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootLocked()
}

// Report computes the closing reconciliation from a consistent snapshot.
func (s *Store) Report() report.Report {
	s.mu.Lock()
	products := s.catalog.List()
	sales := s.ledger.List()
	opening := s.config.OpeningCash
	policy := s.policy
	s.mu.Unlock()

	return report.Compute(products, sales, opening, policy)
}

// CashTotal returns opening cash plus the total of every sale,
// regardless of payment method.
func (s *Store) CashTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.config.OpeningCash
	for _, sale := range s.ledger.List() {
		total = total.Add(sale.Total)
	}
	return total
}
