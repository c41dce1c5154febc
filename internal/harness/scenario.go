package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of stand operations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// OpeningCash is the cash float, as a decimal string.
	OpeningCash string `yaml:"opening_cash,omitempty"`

	// WalletAccount overrides the default receiving account.
	WalletAccount string `yaml:"wallet_account,omitempty"`

	// Products seed the catalog before the first step.
	Products []ProductSeed `yaml:"products"`

	// Steps run in order against one shared cart.
	Steps []Step `yaml:"steps"`

	// Expect is checked after the last step.
	Expect *Expectations `yaml:"expect,omitempty"`
}

// ProductSeed is a catalog entry created before the steps run.
type ProductSeed struct {
	// Ref is the name steps use for this product.
	Ref   string `yaml:"ref"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
	Stock int    `yaml:"stock"`
}

// Step is one operation.
type Step struct {
	Action string `yaml:"action"`

	// Product is a ProductSeed ref.
	Product string `yaml:"product,omitempty"`

	// Times repeats cart_add; zero means once.
	Times int `yaml:"times,omitempty"`

	// Delta is the cart_adjust quantity change.
	Delta int `yaml:"delta,omitempty"`

	// Units is the restock amount.
	Units int `yaml:"units,omitempty"`

	// Amount is the set_opening_cash value.
	Amount string `yaml:"amount,omitempty"`

	// Payment fields for finalize.
	Method   string `yaml:"method,omitempty"`
	Tendered string `yaml:"tendered,omitempty"`
	Account  string `yaml:"account,omitempty"`
	Evidence string `yaml:"evidence,omitempty"`

	// Fields are the update_product and amend_last overwrites.
	Fields map[string]string `yaml:"fields,omitempty"`

	// ExpectError is the outcome the step must produce: an error kind
	// such as INSUFFICIENT_PAYMENT, or "refused". Empty expects success.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Expectations are checked against the final store state.
type Expectations struct {
	// Stock maps product refs to expected remaining stock.
	Stock map[string]int `yaml:"stock,omitempty"`

	// Sales is the expected number of recorded sales.
	Sales *int `yaml:"sales,omitempty"`

	// Report maps report figures to expected decimal strings.
	// See reportFigures for the accepted keys.
	Report map[string]string `yaml:"report,omitempty"`
}

// Step actions.
const (
	ActionCartAdd        = "cart_add"
	ActionCartAdjust     = "cart_adjust"
	ActionCartRemove     = "cart_remove"
	ActionFinalize       = "finalize"
	ActionRestock        = "restock"
	ActionUpdateProduct  = "update_product"
	ActionDeleteProduct  = "delete_product"
	ActionSetOpeningCash = "set_opening_cash"
	ActionAmendLast      = "amend_last"
)

// productActions need a product ref.
var productActions = []string{
	ActionCartAdd,
	ActionCartAdjust,
	ActionCartRemove,
	ActionRestock,
	ActionUpdateProduct,
	ActionDeleteProduct,
}

var knownActions = append(slices.Clone(productActions),
	ActionFinalize,
	ActionSetOpeningCash,
	ActionAmendLast,
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	refs := make(map[string]bool, len(s.Products))
	for i, p := range s.Products {
		if p.Ref == "" {
			return fmt.Errorf("products[%d]: ref is required", i)
		}
		if refs[p.Ref] {
			return fmt.Errorf("products[%d]: duplicate ref %q", i, p.Ref)
		}
		if p.Price == "" {
			return fmt.Errorf("products[%d]: price is required", i)
		}
		refs[p.Ref] = true
	}

	for i, step := range s.Steps {
		if !slices.Contains(knownActions, step.Action) {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if slices.Contains(productActions, step.Action) && !refs[step.Product] {
			return fmt.Errorf("steps[%d]: %s needs a known product ref, got %q", i, step.Action, step.Product)
		}
		if step.Times < 0 {
			return fmt.Errorf("steps[%d]: times must be non-negative", i)
		}
	}

	if s.Expect != nil {
		for ref := range s.Expect.Stock {
			if !refs[ref] {
				return fmt.Errorf("expect.stock: unknown product ref %q", ref)
			}
		}
		for key := range s.Expect.Report {
			if _, ok := reportFigures[key]; !ok {
				return fmt.Errorf("expect.report: unknown figure %q", key)
			}
		}
	}
	return nil
}
