package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackPriceTable(t *testing.T) {
	assert.Equal(t, 800.0, FallbackPrice("laptop_screen"))
	assert.Equal(t, 350.0, FallbackPrice("laptop_battery"))
	assert.Equal(t, 500.0, FallbackPrice("phone_screen"))
	assert.Equal(t, 200.0, FallbackPrice("generic_part"))
	assert.Equal(t, 200.0, FallbackPrice("desktop_psu"), "unlisted parts use the generic default")
}

func TestStaticOracle(t *testing.T) {
	s := NewStatic()
	price, err := s.PriceFor(context.Background(), "laptop", "ASUS ROG", "laptop_screen")
	require.NoError(t, err)
	assert.Equal(t, 800.0, price)
}

type erroringOracle struct{}

func (erroringOracle) PriceFor(context.Context, string, string, string) (float64, error) {
	return 0, errors.New("rate limited")
}

func TestResilientFallsBackToTable(t *testing.T) {
	r := NewResilient(erroringOracle{})
	price, err := r.PriceFor(context.Background(), "phone", "iPhone 13", "phone_battery")
	require.NoError(t, err)
	assert.Equal(t, 200.0, price)
}

func TestParsePrice(t *testing.T) {
	v, ok := parsePrice(json.RawMessage(`{"value": 129.99}`))
	assert.True(t, ok)
	assert.Equal(t, 129.99, v)

	v, ok = parsePrice(json.RawMessage(`"$1,299.00"`))
	assert.True(t, ok)
	assert.Equal(t, 1299.0, v)

	_, ok = parsePrice(json.RawMessage(`"unavailable"`))
	assert.False(t, ok)

	_, ok = parsePrice(nil)
	assert.False(t, ok)
}

func TestPriceRangeMidpoint(t *testing.T) {
	var result serpResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"organic_results": [
			{"price": {"value": 50}},
			{"price": "$150.00"},
			{"price": "n/a"},
			{}
		]
	}`), &result))

	min, max, found := priceRange(result)
	assert.True(t, found)
	assert.Equal(t, 50.0, min)
	assert.Equal(t, 150.0, max)
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "ASUS ROG G614J screen replacement",
		searchQuery("laptop", "ASUS ROG G614J", "laptop_screen"))
	assert.Equal(t, "iPhone 13 battery replacement",
		searchQuery("phone", "iPhone 13", "phone_battery"))
}
