package helpers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConvertNPRToUSD(t *testing.T) {
	rate := decimal.RequireFromString("0.0075")

	usd := ConvertNPRToUSD(decimal.RequireFromString("1300"), rate)
	assert.True(t, usd.Equal(decimal.RequireFromString("9.75")))

	// Rounds to two decimal places.
	usd = ConvertNPRToUSD(decimal.RequireFromString("1001"), rate)
	assert.True(t, usd.Equal(decimal.RequireFromString("7.51")))
}

func TestConvertUSDToNPR(t *testing.T) {
	rate := decimal.RequireFromString("0.0075")

	npr := ConvertUSDToNPR(decimal.RequireFromString("9.75"), rate)
	assert.True(t, npr.Equal(decimal.RequireFromString("1300")))

	assert.True(t, ConvertUSDToNPR(decimal.RequireFromString("10"), decimal.Zero).IsZero())
}

func TestPrimeExchangeRateShortCircuitsFetch(t *testing.T) {
	rate := decimal.RequireFromString("0.0080")
	PrimeExchangeRate(rate)
	assert.True(t, GetExchangeRate().Equal(rate))
}
