// Package pricing estimates replacement-part costs, live via SerpAPI's
// Amazon engine with a static table as the offline fallback.
package pricing

import (
	"context"
	"strings"

	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/metrics"
)

// Oracle answers part price questions in the configured currency.
type Oracle interface {
	// PriceFor returns the estimated price of one part. part uses the
	// "<devicetype>_<part>" naming, e.g. "laptop_screen".
	PriceFor(ctx context.Context, deviceType, brandModel, part string) (float64, error)
}

// fallbackPrices are the hard-coded HKD estimates used when no live lookup
// is possible.
var fallbackPrices = map[string]float64{
	"laptop_screen":   800,
	"laptop_battery":  350,
	"laptop_keyboard": 200,
	"phone_screen":    500,
	"phone_battery":   200,
	"tablet_screen":   600,
	"generic_part":    200,
}

const defaultPartPrice = 200

// Static is the offline oracle backed by the fallback table.
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (s *Static) PriceFor(_ context.Context, _, _, part string) (float64, error) {
	metrics.PriceLookups.WithLabelValues("fallback").Inc()
	return FallbackPrice(part), nil
}

// FallbackPrice returns the table price for part, or the generic default.
func FallbackPrice(part string) float64 {
	if p, ok := fallbackPrices[strings.ToLower(part)]; ok {
		return p
	}
	return defaultPartPrice
}

// Resilient wraps a live oracle so lookup failures fall back to the table
// instead of blocking the cost estimate.
type Resilient struct {
	live   Oracle
	logger *logx.Logger
}

func NewResilient(live Oracle) *Resilient {
	return &Resilient{live: live, logger: logx.NewLogger("pricing")}
}

func (r *Resilient) PriceFor(ctx context.Context, deviceType, brandModel, part string) (float64, error) {
	if r.live != nil {
		price, err := r.live.PriceFor(ctx, deviceType, brandModel, part)
		if err == nil {
			return price, nil
		}
		r.logger.Warn("live price lookup for %s failed, using table: %v", part, err)
	}
	metrics.PriceLookups.WithLabelValues("fallback").Inc()
	return FallbackPrice(part), nil
}
