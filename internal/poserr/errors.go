package poserr

import (
	"errors"
	"fmt"
)

// Kind categorizes core errors.
type Kind string

const (
	// KindValidation indicates malformed input (e.g. a non-positive restock quantity).
	KindValidation Kind = "VALIDATION"

	// KindEmptyCart indicates finalize was called on a cart with no lines.
	KindEmptyCart Kind = "EMPTY_CART"

	// KindInsufficientPayment indicates cash tendered below the sale total.
	KindInsufficientPayment Kind = "INSUFFICIENT_PAYMENT"

	// KindUnknownEntity indicates a product or sale id that does not exist.
	KindUnknownEntity Kind = "UNKNOWN_ENTITY"

	// KindStockInconsistency indicates a cart line no longer fits current stock.
	KindStockInconsistency Kind = "STOCK_INCONSISTENCY"

	// KindPersistence indicates the backing store could not be read or written.
	KindPersistence Kind = "PERSISTENCE"
)

// Error is the single error type returned by the core.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description.
	Message string

	// EntityID is the product or sale id involved, if any.
	EntityID string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.EntityID != "" {
		msg = fmt.Sprintf("%s (id=%s)", msg, e.EntityID)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: KindEmptyCart}) works as a kind match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.EntityID == ""
}

// KindOf returns the kind of err, or "" if err is not a core error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind returns true if err is a core error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Validation creates a VALIDATION error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// EmptyCart creates an EMPTY_CART error.
func EmptyCart() *Error {
	return &Error{Kind: KindEmptyCart, Message: "cart has no lines"}
}

// InsufficientPayment creates an INSUFFICIENT_PAYMENT error.
func InsufficientPayment(paid, total string) *Error {
	return &Error{
		Kind:    KindInsufficientPayment,
		Message: fmt.Sprintf("amount paid %s is below total %s", paid, total),
	}
}

// UnknownProduct creates an UNKNOWN_ENTITY error for a product id.
func UnknownProduct(id string) *Error {
	return &Error{Kind: KindUnknownEntity, Message: "product not found", EntityID: id}
}

// UnknownSale creates an UNKNOWN_ENTITY error for a sale id.
func UnknownSale(id string) *Error {
	return &Error{Kind: KindUnknownEntity, Message: "sale not found", EntityID: id}
}

// StockInconsistency creates a STOCK_INCONSISTENCY error for a product.
func StockInconsistency(id string, want, have int) *Error {
	return &Error{
		Kind:     KindStockInconsistency,
		Message:  fmt.Sprintf("cart needs %d units but only %d in stock", want, have),
		EntityID: id,
	}
}

// Persistence wraps a storage failure as a PERSISTENCE error.
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}
