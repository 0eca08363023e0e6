package amounts

import (
	"errors"
	"fmt"

	"github.com/formagest/ledger_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ErrInconsistent indicates that the final amount does not equal total minus discount.
var ErrInconsistent = errors.New("final amount is inconsistent with total and discount")

// ErrLineItemsInconsistent indicates line item subtotals do not reconcile with the transaction total.
var ErrLineItemsInconsistent = errors.New("line item amounts are inconsistent")

// Tolerance is the maximum absolute difference accepted between a stored
// amount and its recomputed value. Amounts originate from user entry with
// two decimal places, so anything beyond a cent is a real discrepancy.
var Tolerance = decimal.NewFromFloat(0.01)

// ExpectedFinal returns the final amount implied by a total and a discount.
func ExpectedFinal(total, discount decimal.Decimal) decimal.Decimal {
	return total.Sub(discount)
}

// ValidateAmounts checks that all three amounts are non-negative, that the
// discount does not exceed the total, and that finalAmount equals total minus
// discount within Tolerance.
func ValidateAmounts(total, discount, finalAmount decimal.Decimal) error {
	if total.IsNegative() {
		return fmt.Errorf("%w: total %s is negative", ErrInconsistent, total.String())
	}
	if discount.IsNegative() {
		return fmt.Errorf("%w: discount %s is negative", ErrInconsistent, discount.String())
	}
	if discount.GreaterThan(total) {
		return fmt.Errorf("%w: discount %s exceeds total %s", ErrInconsistent, discount.String(), total.String())
	}
	if finalAmount.IsNegative() {
		return fmt.Errorf("%w: final amount %s is negative", ErrInconsistent, finalAmount.String())
	}
	expected := ExpectedFinal(total, discount)
	if finalAmount.Sub(expected).Abs().GreaterThan(Tolerance) {
		return fmt.Errorf("%w: expected %s, got %s", ErrInconsistent, expected.String(), finalAmount.String())
	}
	return nil
}

// LineItemsTotal sums the subtotals of the given line items.
func LineItemsTotal(items []domain.TransactionLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

// ValidateLineItems checks each line item's subtotal against quantity times
// unit price and the sum of subtotals against the transaction total, all
// within Tolerance per comparison.
func ValidateLineItems(items []domain.TransactionLineItem, total decimal.Decimal) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", ErrLineItemsInconsistent)
	}
	for i, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: line %d has non-positive quantity %d", ErrLineItemsInconsistent, i+1, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: line %d has negative unit price %s", ErrLineItemsInconsistent, i+1, item.UnitPrice.String())
		}
		expected := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		if item.Subtotal.Sub(expected).Abs().GreaterThan(Tolerance) {
			return fmt.Errorf("%w: line %d subtotal expected %s, got %s", ErrLineItemsInconsistent, i+1, expected.String(), item.Subtotal.String())
		}
	}
	sum := LineItemsTotal(items)
	if sum.Sub(total).Abs().GreaterThan(Tolerance) {
		return fmt.Errorf("%w: line items sum to %s but total is %s", ErrLineItemsInconsistent, sum.String(), total.String())
	}
	return nil
}
