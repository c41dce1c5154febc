// Package state defines the persisted root of a popstand store and its
// JSON encoding.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/popstand/internal/catalog"
	"github.com/roach88/popstand/internal/ledger"
)

// DefaultWalletAccount is the receiving wallet account of a fresh store.
const DefaultWalletAccount = "943177720"

// ErrCorrupt marks persisted bytes that do not decode as a Root.
var ErrCorrupt = errors.New("corrupt root")

// Root is everything a store persists.
type Root struct {
	Products        []catalog.Product `json:"products"`
	Sales           []ledger.Sale     `json:"sales"`
	OpeningCash     decimal.Decimal   `json:"openingCash"`
	WalletAccountID string            `json:"walletAccountId"`
	WalletQRImage   string            `json:"walletQrImage,omitempty"`
}

// Default returns the root of a fresh store. An empty walletAccount
// selects DefaultWalletAccount.
func Default(walletAccount string) Root {
	if walletAccount == "" {
		walletAccount = DefaultWalletAccount
	}
	return Root{
		Products:        []catalog.Product{},
		Sales:           []ledger.Sale{},
		OpeningCash:     decimal.Zero,
		WalletAccountID: walletAccount,
	}
}

// Clone returns a deep copy of r.
func (r Root) Clone() Root {
	out := r
	out.Products = slices.Clone(r.Products)
	out.Sales = make([]ledger.Sale, len(r.Sales))
	for i, s := range r.Sales {
		s.Items = slices.Clone(s.Items)
		out.Sales[i] = s
	}
	return out
}

// Encode serializes r as JSON.
func Encode(r Root) ([]byte, error) {
	if r.Products == nil {
		r.Products = []catalog.Product{}
	}
	if r.Sales == nil {
		r.Sales = []ledger.Sale{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode root: %w", err)
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

// Decode parses a root produced by Encode. Missing collections decode as
// empty and a missing wallet account falls back to DefaultWalletAccount.
func Decode(data []byte) (Root, error) {
	var r Root
	if err := json.Unmarshal(data, &r); err != nil {
		return Root{}, fmt.Errorf("decode root: %w: %v", ErrCorrupt, err)
	}
	if r.Products == nil {
		r.Products = []catalog.Product{}
	}
	if r.Sales == nil {
		r.Sales = []ledger.Sale{}
	}
	if r.WalletAccountID == "" {
		r.WalletAccountID = DefaultWalletAccount
	}
	for i, s := range r.Sales {
		r.Sales[i].Timestamp = s.Timestamp.UTC()
	}
	return r, nil
}
