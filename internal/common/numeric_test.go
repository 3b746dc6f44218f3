package common

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "189", "555.00", "0.01", "-42.5", "12345678.99"} {
		d := decimal.RequireFromString(raw)
		back := DecimalFromNumeric(NumericFromDecimal(d))
		require.True(t, back.Equal(d), "round trip %s got %s", raw, back)
	}
}

func TestDecimalFromInvalidNumeric(t *testing.T) {
	require.True(t, DecimalFromNumeric(pgtype.Numeric{}).IsZero())
	require.True(t, DecimalFromNumeric(pgtype.Numeric{Valid: true, NaN: true}).IsZero())
}
