package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/metrics"
)

const serpEndpoint = "https://serpapi.com/search"

// SerpClient looks up live part prices through SerpAPI's Amazon engine. The
// estimate is the midpoint of the cheapest and most expensive listing on the
// first page, converted from USD.
type SerpClient struct {
	apiKey   string
	usdToHKD float64
	http     *http.Client
	logger   *logx.Logger
}

func NewSerpClient(apiKey string, usdToHKD float64, timeout time.Duration) *SerpClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SerpClient{
		apiKey:   apiKey,
		usdToHKD: usdToHKD,
		http:     &http.Client{Timeout: timeout},
		logger:   logx.NewLogger("serpapi"),
	}
}

type serpResult struct {
	OrganicResults []struct {
		Price json.RawMessage `json:"price"`
	} `json:"organic_results"`
}

// PriceFor implements Oracle.
func (s *SerpClient) PriceFor(ctx context.Context, deviceType, brandModel, part string) (float64, error) {
	query := searchQuery(deviceType, brandModel, part)

	params := url.Values{}
	params.Set("engine", "amazon")
	params.Set("k", query)
	params.Set("s", "price-desc-rank")
	params.Set("api_key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build SerpAPI request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("SerpAPI request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("SerpAPI returned status %d", resp.StatusCode)
	}

	var result serpResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode SerpAPI response: %w", err)
	}

	min, max, found := priceRange(result)
	if !found {
		return 0, fmt.Errorf("no priced listings for %q", query)
	}
	price := (min + max) / 2 * s.usdToHKD
	s.logger.Debug("%s: USD %.2f-%.2f, estimate %.2f HKD", query, min, max, price)
	metrics.PriceLookups.WithLabelValues("live").Inc()
	return price, nil
}

func searchQuery(deviceType, brandModel, part string) string {
	component := strings.TrimPrefix(part, strings.ToLower(deviceType)+"_")
	component = strings.ReplaceAll(component, "_", " ")
	return strings.TrimSpace(fmt.Sprintf("%s %s replacement", brandModel, component))
}

// priceRange scans the listings for the lowest and highest price. Listings
// carry prices either as {"value": 12.3} objects or "$12.30" strings.
func priceRange(result serpResult) (min, max float64, found bool) {
	for _, r := range result.OrganicResults {
		value, ok := parsePrice(r.Price)
		if !ok {
			continue
		}
		if !found || value < min {
			min = value
		}
		if !found || value > max {
			max = value
		}
		found = true
	}
	return min, max, found
}

func parsePrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var obj struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value > 0 {
		return obj.Value, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
		s = strings.ReplaceAll(s, ",", "")
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}
