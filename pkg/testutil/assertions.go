package testutil

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertDecimal checks that got equals the decimal literal want, ignoring
// trailing zeros so "12.50" and "12.5" compare equal.
func AssertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) bool {
	t.Helper()
	w, err := decimal.NewFromString(want)
	require.NoError(t, err, "bad decimal literal %q", want)
	if w.Equal(got) {
		return true
	}
	return assert.Fail(t, fmt.Sprintf("decimal mismatch: want %s, got %s", want, got), msgAndArgs...)
}
