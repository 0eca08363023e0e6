package voucher

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// IncomePrefix marks vouchers for incoming funds.
	IncomePrefix = "ING"
	// ExpensePrefix marks vouchers for outgoing funds.
	ExpensePrefix = "EGR"

	dateLayout = "20060102"
)

// Format builds a voucher number from its parts: a direction marker, the
// voucher date and a per-day sequence, e.g. "ING-20260115-0042".
func Format(isIncome bool, date time.Time, seq int) string {
	prefix := ExpensePrefix
	if isIncome {
		prefix = IncomePrefix
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format(dateLayout), seq)
}

// Parse splits a voucher number back into its parts. It accepts sequences
// wider than four digits since the sequence is zero-padded, not capped.
func Parse(voucherNumber string) (isIncome bool, date time.Time, seq int, err error) {
	parts := strings.Split(voucherNumber, "-")
	if len(parts) != 3 {
		return false, time.Time{}, 0, fmt.Errorf("malformed voucher number %q", voucherNumber)
	}
	switch parts[0] {
	case IncomePrefix:
		isIncome = true
	case ExpensePrefix:
		isIncome = false
	default:
		return false, time.Time{}, 0, fmt.Errorf("unknown voucher prefix %q", parts[0])
	}
	date, err = time.Parse(dateLayout, parts[1])
	if err != nil {
		return false, time.Time{}, 0, fmt.Errorf("malformed voucher date %q: %w", parts[1], err)
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return false, time.Time{}, 0, fmt.Errorf("malformed voucher sequence %q", parts[2])
	}
	return isIncome, date, seq, nil
}
