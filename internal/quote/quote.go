// Package quote computes per-provider aggregate quotes for the current cart
// and orders eligible providers for display.
package quote

import (
	"math"
	"sort"

	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// Aggregate builds one quote per eligible provider. Every cart item yields a
// breakdown line; a line without a matching priced offering keeps a nil price
// ("pricing not set") and contributes nothing to the total.
func Aggregate(items []models.CartItem, cat *catalog.Snapshot, providers []models.ServiceProvider) []models.ProviderQuote {
	quotes := make([]models.ProviderQuote, 0, len(providers))
	for _, provider := range providers {
		quotes = append(quotes, ForProvider(items, cat, provider))
	}
	return quotes
}

// ForProvider computes a single provider's quote from its own offerings.
func ForProvider(items []models.CartItem, cat *catalog.Snapshot, provider models.ServiceProvider) models.ProviderQuote {
	offerings := make(map[string]models.ProviderOffering, len(provider.Offerings))
	for _, off := range provider.Offerings {
		if !off.IsActive() {
			continue
		}
		id := catalog.ServiceID(off.ServiceType)
		if existing, ok := offerings[id]; !ok || betterOffering(off, existing) {
			offerings[id] = off
		}
	}

	q := models.ProviderQuote{Provider: provider}
	for _, item := range items {
		line := models.QuoteLine{
			ServiceID: item.ServiceID,
			Quantity:  item.Quantity,
		}
		if pkg, ok := cat.Package(item.ServiceID); ok {
			line.Name = pkg.Name
		}
		if off, ok := offerings[item.ServiceID]; ok && off.Price != nil {
			lineTotal := *off.Price * float64(item.Quantity)
			line.Price = &lineTotal
			q.Total += lineTotal
			q.PricedLines++
		}
		q.Lines = append(q.Lines, line)
	}
	return q
}

// betterOffering prefers a priced offering over an unpriced one, then the
// cheaper of two priced offerings.
func betterOffering(candidate, current models.ProviderOffering) bool {
	if candidate.Price == nil {
		return false
	}
	if current.Price == nil {
		return true
	}
	return *candidate.Price < *current.Price
}

// Rank orders quotes ascending by total, then by provider distance. A quote
// with no priced lines at all sorts as +Inf so fully-unpriced providers sink
// to the bottom instead of appearing falsely cheapest at zero. Missing
// distance likewise sorts last among equal totals. The sort is stable.
func Rank(quotes []models.ProviderQuote) []models.ProviderQuote {
	ranked := append([]models.ProviderQuote(nil), quotes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := sortTotal(ranked[i]), sortTotal(ranked[j])
		if ti != tj {
			return ti < tj
		}
		return sortDistance(ranked[i]) < sortDistance(ranked[j])
	})
	return ranked
}

func sortTotal(q models.ProviderQuote) float64 {
	if q.PricedLines == 0 {
		return math.Inf(1)
	}
	return q.Total
}

func sortDistance(q models.ProviderQuote) float64 {
	if q.Provider.DistanceKm == nil {
		return math.Inf(1)
	}
	return *q.Provider.DistanceKm
}
