package voucher_test

import (
	"testing"
	"time"

	"github.com/formagest/ledger_backend/internal/utils/voucher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	date := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "ING-20260115-0001", voucher.Format(true, date, 1))
	assert.Equal(t, "EGR-20260115-0042", voucher.Format(false, date, 42))

	// The sequence is zero-padded to four digits but not capped.
	assert.Equal(t, "ING-20260115-12345", voucher.Format(true, date, 12345))
}

func TestParse_RoundTrip(t *testing.T) {
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	formatted := voucher.Format(false, date, 7)

	isIncome, parsedDate, seq, err := voucher.Parse(formatted)
	require.NoError(t, err)
	assert.False(t, isIncome)
	assert.True(t, parsedDate.Equal(date))
	assert.Equal(t, 7, seq)
}

func TestParse_Invalid(t *testing.T) {
	cases := []string{
		"",
		"ING-20260115",
		"XYZ-20260115-0001",
		"ING-2026015-0001",
		"ING-20260115-abcd",
		"ING-20260115-0000",
		"ING-20260115-0001-extra",
	}
	for _, c := range cases {
		_, _, _, err := voucher.Parse(c)
		assert.Error(t, err, "input %q", c)
	}
}
