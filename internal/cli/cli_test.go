package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
	"github.com/roach88/popstand/internal/report"
)

// stand runs commands against one database file.
type stand struct {
	t      *testing.T
	db     string
	config string
}

func newStand(t *testing.T) *stand {
	t.Helper()
	dir := t.TempDir()
	return &stand{
		t:      t,
		db:     filepath.Join(dir, "popstand.db"),
		config: filepath.Join(dir, "popstand.yaml"),
	}
}

// run executes the root command with args and returns stdout, stderr and
// the command error.
func (s *stand) run(args ...string) (string, string, error) {
	s.t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--db", s.db, "--config", s.config}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

// runJSON executes with --format json and decodes the response.
func (s *stand) runJSON(args ...string) (jsonResponse, error) {
	s.t.Helper()
	stdout, _, err := s.run(append([]string{"--format", "json"}, args...)...)
	var resp jsonResponse
	require.NoError(s.t, json.Unmarshal([]byte(stdout), &resp), "stdout: %s", stdout)
	return resp, err
}

func (s *stand) addProduct(name, price, stock string) catalog.Product {
	s.t.Helper()
	resp, err := s.runJSON("product", "add", "--name", name, "--price", price, "--stock", stock)
	require.NoError(s.t, err)
	var p catalog.Product
	require.NoError(s.t, json.Unmarshal(resp.Data, &p))
	return p
}

func (s *stand) product(id string) catalog.Product {
	s.t.Helper()
	resp, err := s.runJSON("product", "list")
	require.NoError(s.t, err)
	var products []catalog.Product
	require.NoError(s.t, json.Unmarshal(resp.Data, &products))
	for _, p := range products {
		if p.ID == id {
			return p
		}
	}
	s.t.Fatalf("product %s not listed", id)
	return catalog.Product{}
}

func (s *stand) sell(args ...string) (SellResult, jsonResponse, error) {
	s.t.Helper()
	resp, err := s.runJSON(append([]string{"sell"}, args...)...)
	var result SellResult
	if err == nil {
		require.NoError(s.t, json.Unmarshal(resp.Data, &result))
	}
	return result, resp, err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "popstand", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"product", "add"}, {"product", "list"}, {"product", "update"}, {"product", "delete"}, {"product", "restock"},
		{"sell"},
		{"sales", "list"}, {"sales", "show"}, {"sales", "amend"}, {"sales", "evidence"},
		{"config", "show"}, {"config", "set-cash"}, {"config", "set-wallet"}, {"config", "set-qr"},
		{"report"}, {"reset"}, {"simulate"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"db", "config", "log-json"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	s := newStand(t)
	_, _, err := s.run("--format", "xml", "report")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestProductAddAndList(t *testing.T) {
	s := newStand(t)

	stdout, _, err := s.run("product", "add", "--name", "  Chicha morada ", "--price", "3.50", "--stock", "24")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Added ")
	assert.Contains(t, stdout, "Chicha morada  S/ 3.50  stock 24")

	stdout, _, err = s.run("product", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "Chicha morada")
}

func TestProductAddValidation(t *testing.T) {
	s := newStand(t)

	tests := []struct {
		name string
		args []string
	}{
		{"empty name", []string{"--name", "  ", "--price", "1"}},
		{"bad price", []string{"--name", "x", "--price", "cheap"}},
		{"negative price", []string{"--name", "x", "--price", "-1"}},
		{"negative stock", []string{"--name", "x", "--price", "1", "--stock", "-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.runJSON(append([]string{"product", "add"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION", resp.Error.Code)
		})
	}
}

func TestProductListAvailable(t *testing.T) {
	s := newStand(t)
	s.addProduct("Soda", "1", "0")
	chips := s.addProduct("Chips", "2", "3")

	resp, err := s.runJSON("product", "list", "--available")
	require.NoError(t, err)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(resp.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, chips.ID, products[0].ID)
}

func TestProductUpdateAndDelete(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "1", "5")

	_, _, err := s.run("product", "update", p.ID, "--price", "1.20", "--stock", "9")
	require.NoError(t, err)
	got := s.product(p.ID)
	assert.Equal(t, "1.2", got.Price.String())
	assert.Equal(t, 9, got.Stock)
	assert.Equal(t, 9, got.InitialStock)

	_, _, err = s.run("product", "update", p.ID)
	assert.Equal(t, ExitCommandError, GetExitCode(err), "no fields is a command error")

	resp, err := s.runJSON("product", "update", "missing", "--name", "x")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "UNKNOWN_ENTITY", resp.Error.Code)

	_, _, err = s.run("product", "delete", p.ID)
	require.NoError(t, err)
	resp, err = s.runJSON("product", "delete", p.ID)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "UNKNOWN_ENTITY", resp.Error.Code)
}

func TestProductRestock(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "1", "5")

	_, _, err := s.run("product", "restock", p.ID, "4")
	require.NoError(t, err)
	assert.Equal(t, 9, s.product(p.ID).Stock)

	for _, units := range []string{"-5", "0", "abc"} {
		resp, err := s.runJSON("product", "restock", p.ID, units)
		require.Error(t, err, units)
		require.NotNil(t, resp.Error, units)
		assert.Equal(t, "VALIDATION", resp.Error.Code, units)
		assert.Equal(t, ExitFailure, GetExitCode(err), units)
	}
	assert.Equal(t, 9, s.product(p.ID).Stock)
}

func TestSellCashWithChange(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "10", "5")

	stdout, _, err := s.run("sell", "--item", p.ID+":3", "--method", "cash", "--tendered", "50")
	require.NoError(t, err)
	assert.Contains(t, stdout, "S/ 30.00")
	assert.Contains(t, stdout, "Change         S/ 20.00")
	assert.Equal(t, 2, s.product(p.ID).Stock)
}

func TestSellWallet(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "10", "5")

	result, _, err := s.sell("--item", p.ID+":3", "--method", "yape")
	require.NoError(t, err)
	assert.Equal(t, ledger.MethodWallet, result.Sale.PaymentMethod)
	assert.Equal(t, "30", result.Sale.AmountPaid.String())
	assert.True(t, result.Sale.Change.IsZero())
	assert.Equal(t, "943177720", result.Sale.WalletAccountID)
}

func TestSellInsufficientCash(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "10", "5")

	_, resp, err := s.sell("--item", p.ID+":3", "--tendered", "20")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "INSUFFICIENT_PAYMENT", resp.Error.Code)
	assert.Equal(t, 5, s.product(p.ID).Stock)
}

func TestSellRefusesUnitsBeyondStock(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "2", "2")

	stdout, stderr, err := s.run("sell", "--item", p.ID+":5")
	require.NoError(t, err)
	assert.Contains(t, stderr, "only 2 of 5 units in stock")
	assert.Contains(t, stdout, "S/ 4.00")

	result, _, err := s.sell("--item", p.ID+":1")
	require.Error(t, err, "nothing left, so the cart is empty")
	assert.Empty(t, result.Sale.ID)
}

func TestSellRefusedJSON(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "2", "2")

	result, _, err := s.sell("--item", p.ID+":3")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{p.ID: 1}, result.Refused)
	assert.Equal(t, 2, result.Sale.Quantity())
}

func TestSellErrors(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "2", "2")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown product", []string{"--item", "missing"}, "UNKNOWN_ENTITY"},
		{"bad quantity", []string{"--item", p.ID + ":zero"}, "VALIDATION"},
		{"bad method", []string{"--item", p.ID, "--method", "barter"}, "VALIDATION"},
		{"bad tender", []string{"--item", p.ID, "--tendered", "lots"}, "VALIDATION"},
		{"out of stock", []string{"--item", s.addProduct("Gum", "1", "0").ID}, "EMPTY_CART"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := s.sell(tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
	assert.Equal(t, 2, s.product(p.ID).Stock)
}

func TestSalesListShowAndAmend(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "2", "9")
	first, _, err := s.sell("--item", p.ID)
	require.NoError(t, err)
	second, _, err := s.sell("--item", p.ID+":2", "--method", "wallet", "--account", "111")
	require.NoError(t, err)

	resp, err := s.runJSON("sales", "list")
	require.NoError(t, err)
	var sales []ledger.Sale
	require.NoError(t, json.Unmarshal(resp.Data, &sales))
	require.Len(t, sales, 2)
	assert.Equal(t, second.Sale.ID, sales[0].ID, "newest first")
	assert.Equal(t, first.Sale.ID, sales[1].ID)

	stdout, _, err := s.run("sales", "show", second.Sale.ID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Account        111")

	_, _, err = s.run("sales", "amend", second.Sale.ID, "--account", "222")
	require.NoError(t, err)
	resp, err = s.runJSON("sales", "show", second.Sale.ID)
	require.NoError(t, err)
	var amended ledger.Sale
	require.NoError(t, json.Unmarshal(resp.Data, &amended))
	assert.Equal(t, "222", amended.WalletAccountID)
	assert.Equal(t, "4", amended.Total.String())

	resp, err = s.runJSON("sales", "show", "missing")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "UNKNOWN_ENTITY", resp.Error.Code)

	_, _, err = s.run("sales", "amend", second.Sale.ID)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSalesEvidenceRoundTrip(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "2", "9")

	dir := t.TempDir()
	photo := filepath.Join(dir, "transfer.png")
	content := []byte("\x89PNG\r\n\x1a\nnot really an image")
	require.NoError(t, os.WriteFile(photo, content, 0o644))

	result, _, err := s.sell("--item", p.ID, "--method", "wallet", "--evidence", photo)
	require.NoError(t, err)
	assert.Contains(t, result.Sale.Evidence, "data:image/png;base64,")

	out := filepath.Join(dir, "out.png")
	_, _, err = s.run("sales", "evidence", result.Sale.ID, "--out", out)
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	plain, _, err := s.sell("--item", p.ID)
	require.NoError(t, err)
	_, _, err = s.run("sales", "evidence", plain.Sale.ID, "--out", out)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestConfigAndReport(t *testing.T) {
	s := newStand(t)
	chips := s.addProduct("Chips", "10", "10")
	water := s.addProduct("Water", "5", "10")

	_, _, err := s.run("config", "set-cash", "100")
	require.NoError(t, err)
	_, _, err = s.sell("--item", chips.ID+":3", "--tendered", "35")
	require.NoError(t, err)
	_, _, err = s.sell("--item", water.ID+":4", "--method", "wallet")
	require.NoError(t, err)

	stdout, _, err := s.run("report")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CLOSING REPORT")
	assert.Contains(t, stdout, "  Cash on hand         S/ 130.00\n")
	assert.Contains(t, stdout, "  Total to hand over   S/ 150.00\n")
	assert.Contains(t, stdout, "  Change given         S/ 5.00\n")

	resp, err := s.runJSON("report")
	require.NoError(t, err)
	var r report.Report
	require.NoError(t, json.Unmarshal(resp.Data, &r))
	assert.Equal(t, 2, r.Transactions)
	assert.Equal(t, 7, r.TotalUnitsSold)

	resp, err = s.runJSON("config", "show")
	require.NoError(t, err)
	var view ConfigView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "100", view.OpeningCash.String())
	assert.Equal(t, "150", view.CashTotal.String())
	assert.Equal(t, "943177720", view.WalletAccountID)

	resp, err = s.runJSON("config", "set-cash", "--", "-5")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION", resp.Error.Code)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestFlagErrorsUseEnvelope(t *testing.T) {
	s := newStand(t)

	resp, err := s.runJSON("config", "set-cash", "-5")
	require.Error(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeCommand, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unknown shorthand flag")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))

	_, stderr, err := s.run("product", "list", "--bogus")
	require.Error(t, err)
	assert.Contains(t, stderr, "Error [COMMAND]: invalid arguments")
}

func TestConfigShowLastSaved(t *testing.T) {
	s := newStand(t)

	stdout, _, err := s.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Last saved           never\n")

	resp, err := s.runJSON("config", "show")
	require.NoError(t, err)
	var view ConfigView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Nil(t, view.LastSaved)

	before := time.Now().Add(-time.Second)
	_, _, err = s.run("config", "set-cash", "20")
	require.NoError(t, err)

	resp, err = s.runJSON("config", "show")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.NotNil(t, view.LastSaved)
	assert.True(t, view.LastSaved.After(before))
}

func TestConfigWalletAndQR(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "2", "9")

	_, _, err := s.run("config", "set-wallet", "555666777")
	require.NoError(t, err)
	result, _, err := s.sell("--item", p.ID, "--method", "wallet")
	require.NoError(t, err)
	assert.Equal(t, "555666777", result.Sale.WalletAccountID)

	qr := filepath.Join(t.TempDir(), "qr.png")
	require.NoError(t, os.WriteFile(qr, []byte("\x89PNG\r\n\x1a\n"), 0o644))
	_, _, err = s.run("config", "set-qr", qr)
	require.NoError(t, err)

	stdout, _, err := s.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wallet QR set        true")
	assert.Contains(t, stdout, "Wallet account       555666777")
}

func TestConfigFileApplies(t *testing.T) {
	s := newStand(t)
	require.NoError(t, os.WriteFile(s.config, []byte("currency_symbol: \"$\"\ndefault_wallet_account: \"123\"\n"), 0o644))

	stdout, _, err := s.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Opening cash         $ 0.00")
	assert.Contains(t, stdout, "Wallet account       123")
}

func TestBadConfigIsCommandError(t *testing.T) {
	s := newStand(t)
	require.NoError(t, os.WriteFile(s.config, []byte("low_stock_threshold: -1\n"), 0o644))

	_, _, err := s.run("report")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReset(t *testing.T) {
	s := newStand(t)
	s.addProduct("Soda", "2", "9")
	_, _, err := s.run("config", "set-wallet", "1")
	require.NoError(t, err)

	_, _, err = s.run("reset")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = s.run("reset", "--yes")
	require.NoError(t, err)

	stdout, _, err := s.run("product", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No products.")

	resp, err := s.runJSON("config", "show")
	require.NoError(t, err)
	var view ConfigView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "943177720", view.WalletAccountID)
}

func TestSimulate(t *testing.T) {
	s := newStand(t)

	stdout, _, err := s.run("simulate", "../harness/testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ cash_and_wallet_day")
	assert.Contains(t, stdout, "CLOSING REPORT")
	assert.Contains(t, stdout, "3 passed, 0 failed, 3 total")

	stdout, _, err = s.run("simulate", "../harness/testdata/scenarios", "--filter", "short_*", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, stdout, "CLOSING REPORT")

	_, err = os.Stat(s.db)
	assert.True(t, os.IsNotExist(err), "simulate never opens the database")
}

func TestSimulateFailure(t *testing.T) {
	s := newStand(t)
	path := filepath.Join(t.TempDir(), "wrong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: wrong
description: expects a sale that cannot happen
products:
  - {ref: gum, name: Gum, price: "1", stock: 0}
steps:
  - {action: cart_add, product: gum}
`), 0o644))

	resp, err := s.runJSON("simulate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result SimulateResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Scenarios, 1)
	assert.Contains(t, result.Scenarios[0].Errors[0], "expected ok, got refused")
}

func TestSimulateMissingPath(t *testing.T) {
	s := newStand(t)
	_, _, err := s.run("simulate", "/nonexistent/scenarios")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestStatePersistsAcrossInvocations(t *testing.T) {
	s := newStand(t)
	p := s.addProduct("Soda", "2", "9")
	_, _, err := s.sell("--item", p.ID+":4")
	require.NoError(t, err)

	other := &stand{t: t, db: s.db, config: s.config}
	assert.Equal(t, 5, other.product(p.ID).Stock)
}
