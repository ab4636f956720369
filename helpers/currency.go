package helpers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const exchangeRateURL = "https://api.exchangerate-api.com/v4/latest/NPR"

// fallbackRate is used when the rate API is unreachable.
var fallbackRate = decimal.RequireFromString("0.0075")

var rateCache struct {
	sync.Mutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

// GetExchangeRate returns the NPR→USD rate, cached for one hour.
func GetExchangeRate() decimal.Decimal {
	rateCache.Lock()
	defer rateCache.Unlock()

	if !rateCache.rate.IsZero() && time.Since(rateCache.fetchedAt) < time.Hour {
		return rateCache.rate
	}

	rate, err := fetchExchangeRate()
	if err != nil {
		log.Printf("⚠️  failed to fetch exchange rate: %v", err)
		if !rateCache.rate.IsZero() {
			return rateCache.rate
		}
		return fallbackRate
	}

	rateCache.rate = rate
	rateCache.fetchedAt = time.Now()
	return rate
}

// PrimeExchangeRate seeds the cache so the first conversion does not block
// on the rate API.
func PrimeExchangeRate(rate decimal.Decimal) {
	rateCache.Lock()
	defer rateCache.Unlock()
	rateCache.rate = rate
	rateCache.fetchedAt = time.Now()
}

func fetchExchangeRate() (decimal.Decimal, error) {
	client := http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(exchangeRateURL)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate api status %s", resp.Status)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}

	usd, ok := body.Rates["USD"]
	if !ok || usd <= 0 {
		return decimal.Zero, fmt.Errorf("rate api returned no USD rate")
	}
	return decimal.NewFromFloat(usd), nil
}

func ConvertNPRToUSD(amountNPR, rate decimal.Decimal) decimal.Decimal {
	return amountNPR.Mul(rate).Round(2)
}

func ConvertUSDToNPR(amountUSD, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return amountUSD.Div(rate).Round(2)
}
