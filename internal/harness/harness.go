package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/cart"
	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/poserr"
	"github.com/roach88/popstand/internal/pos"
	"github.com/roach88/popstand/internal/store"
	"github.com/roach88/popstand/internal/testutil"
)

// Harness executes one scenario against one store.
type Harness struct {
	store  *pos.Store
	cart   *cart.Cart
	refs   map[string]string
	logger *slog.Logger
}

// Run executes a scenario with default options.
func Run(scenario *Scenario) (*Result, error) {
	return RunWith(context.Background(), scenario, nil)
}

// RunWith executes a scenario on a fresh in-memory store.
//
// Each scenario runs in isolation with deterministic ids and clock.
// Execution flow:
// 1. Open a store over MemoryBlobs
// 2. Seed configuration and products
// 3. Execute steps, comparing each outcome with expect_error
// 4. Check expectations and invariants
//
// A non-nil error means the scenario could not be set up; step and
// expectation failures are reported in the Result.
func RunWith(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	blobs := store.NewMemoryBlobs()
	st, err := pos.Open(ctx, pos.Options{
		Persister: store.NewSnapshotter(blobs, store.DefaultKey),
		IDs:       testutil.NewSequentialIDs("id"),
		Now:       testutil.NewDeterministicClock(testutil.DefaultEpoch, 0).Now,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	h := &Harness{
		store:  st,
		cart:   st.NewCart(),
		refs:   make(map[string]string, len(scenario.Products)),
		logger: logger,
	}
	if err := h.seed(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to seed scenario: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.execute(ctx, i, step, result)
	}

	result.Products = st.Products()
	result.Sales = st.Sales()
	result.Report = st.Report()

	if scenario.Expect != nil {
		for _, msg := range h.checkExpectations(scenario.Expect, result) {
			result.AddError(msg)
		}
	}
	for _, msg := range checkInvariants(scenario, h.refs, result) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) seed(ctx context.Context, s *Scenario) error {
	if s.OpeningCash != "" {
		amount, err := decimal.NewFromString(s.OpeningCash)
		if err != nil {
			return fmt.Errorf("opening_cash: %w", err)
		}
		if err := h.store.SetOpeningCash(ctx, amount); err != nil {
			return err
		}
	}
	if s.WalletAccount != "" {
		if err := h.store.SetWalletAccount(ctx, s.WalletAccount); err != nil {
			return err
		}
	}
	for _, seed := range s.Products {
		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			return fmt.Errorf("product %s: price: %w", seed.Ref, err)
		}
		p, err := h.store.AddProduct(ctx, seed.Name, price, seed.Stock)
		if err != nil {
			return fmt.Errorf("product %s: %w", seed.Ref, err)
		}
		h.refs[seed.Ref] = p.ID
	}
	return nil
}

// execute runs one step and records its outcome.
func (h *Harness) execute(ctx context.Context, index int, step Step, result *Result) {
	outcome, detail := h.apply(ctx, step)
	result.AddTrace(step.Action, step.Product, outcome, detail)

	want := step.ExpectError
	if want == "" {
		want = OutcomeOK
	}
	if outcome != want {
		msg := fmt.Sprintf("steps[%d] %s: expected %s, got %s", index, step.Action, want, outcome)
		if detail != "" {
			msg += " (" + detail + ")"
		}
		result.AddError(msg)
	}
}

func (h *Harness) apply(ctx context.Context, step Step) (outcome, detail string) {
	id := h.refs[step.Product]

	switch step.Action {
	case ActionCartAdd:
		times := max(step.Times, 1)
		for n := range times {
			added, err := h.cart.Add(id)
			if err != nil {
				return errOutcome(err)
			}
			if !added {
				return OutcomeRefused, fmt.Sprintf("added %d of %d", n, times)
			}
		}
		return OutcomeOK, ""

	case ActionCartAdjust:
		return boolOutcome(h.cart.AdjustQuantity(id, step.Delta))

	case ActionCartRemove:
		return boolOutcome(h.cart.Remove(id), nil)

	case ActionFinalize:
		payment, err := paymentFor(step)
		if err != nil {
			return errOutcome(err)
		}
		sale, err := h.store.Finalize(ctx, h.cart, payment)
		if err != nil {
			return errOutcome(err)
		}
		return OutcomeOK, fmt.Sprintf("%s total=%s change=%s", sale.ID, sale.Total, sale.Change)

	case ActionRestock:
		_, err := h.store.Restock(ctx, id, step.Units)
		if err != nil {
			return errOutcome(err)
		}
		return OutcomeOK, ""

	case ActionUpdateProduct:
		patch, err := productPatch(step.Fields)
		if err != nil {
			return errOutcome(err)
		}
		_, ok, err := h.store.UpdateProduct(ctx, id, patch)
		return boolOutcome(ok, err)

	case ActionDeleteProduct:
		if err := h.store.DeleteProduct(ctx, id); err != nil {
			return errOutcome(err)
		}
		return OutcomeOK, ""

	case ActionSetOpeningCash:
		amount, err := decimal.NewFromString(step.Amount)
		if err != nil {
			return errOutcome(poserr.Validation("amount %q is not a number", step.Amount))
		}
		if err := h.store.SetOpeningCash(ctx, amount); err != nil {
			return errOutcome(err)
		}
		return OutcomeOK, ""

	case ActionAmendLast:
		sales := h.store.Sales()
		if len(sales) == 0 {
			return errOutcome(poserr.UnknownSale(""))
		}
		patch, err := salePatch(step.Fields)
		if err != nil {
			return errOutcome(err)
		}
		if _, err := h.store.AmendSale(ctx, sales[len(sales)-1].ID, patch); err != nil {
			return errOutcome(err)
		}
		return OutcomeOK, ""
	}
	return OutcomeError, "unknown action " + step.Action
}

func errOutcome(err error) (string, string) {
	if kind := poserr.KindOf(err); kind != "" {
		return string(kind), err.Error()
	}
	return OutcomeError, err.Error()
}

func boolOutcome(ok bool, err error) (string, string) {
	if err != nil {
		return errOutcome(err)
	}
	if !ok {
		return OutcomeRefused, ""
	}
	return OutcomeOK, ""
}

func paymentFor(step Step) (ledger.Payment, error) {
	method := ledger.MethodCash
	if step.Method != "" {
		m, err := ledger.ParseMethod(step.Method)
		if err != nil {
			return ledger.Payment{}, err
		}
		method = m
	}

	p := ledger.Payment{
		Method:          method,
		WalletAccountID: step.Account,
		Evidence:        step.Evidence,
	}
	if step.Tendered != "" {
		tendered, err := decimal.NewFromString(step.Tendered)
		if err != nil {
			return ledger.Payment{}, poserr.Validation("tendered %q is not a number", step.Tendered)
		}
		p.Tendered = decimal.NewNullDecimal(tendered)
	}
	return p, nil
}

func productPatch(fields map[string]string) (catalog.Patch, error) {
	var patch catalog.Patch
	for key, value := range fields {
		switch key {
		case "name":
			patch.Name = &value
		case "price":
			price, err := decimal.NewFromString(value)
			if err != nil {
				return catalog.Patch{}, poserr.Validation("price %q is not a number", value)
			}
			patch.Price = &price
		case "stock":
			stock, err := strconv.Atoi(value)
			if err != nil {
				return catalog.Patch{}, poserr.Validation("stock %q is not an integer", value)
			}
			patch.Stock = &stock
		default:
			return catalog.Patch{}, poserr.Validation("unknown product field %q", key)
		}
	}
	return patch, nil
}

func salePatch(fields map[string]string) (ledger.SalePatch, error) {
	var patch ledger.SalePatch
	for key, value := range fields {
		switch key {
		case "evidence":
			patch.Evidence = &value
		case "account":
			patch.WalletAccountID = &value
		case "method":
			m, err := ledger.ParseMethod(value)
			if err != nil {
				return ledger.SalePatch{}, err
			}
			patch.PaymentMethod = &m
		case "total", "amount_paid", "change":
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return ledger.SalePatch{}, poserr.Validation("%s %q is not a number", key, value)
			}
			switch key {
			case "total":
				patch.Total = &amount
			case "amount_paid":
				patch.AmountPaid = &amount
			default:
				patch.Change = &amount
			}
		default:
			return ledger.SalePatch{}, poserr.Validation("unknown sale field %q", key)
		}
	}
	return patch, nil
}
