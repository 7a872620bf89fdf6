// Package match decides which providers are eligible to fulfil the entire
// selected service set.
package match

import (
	"github.com/motohub/motohub-cart-service/internal/catalog"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// EligibleProviders filters the roster down to providers able to fulfil every
// selected service. Matching has a defined precedence:
//
//  1. category match — the provider's service categories overlap the
//     categories the selected services map to;
//  2. strict offering match — only when no category matches, the provider
//     must carry an active offering for every single selected service.
//
// With nothing selected every provider is eligible (the browse-everything
// default). The result is a pure function of its inputs; callers must not
// cache it across cart or roster changes.
func EligibleProviders(selected []models.ServicePackage, roster []models.ServiceProvider) []models.ServiceProvider {
	if len(selected) == 0 {
		return append([]models.ServiceProvider(nil), roster...)
	}

	wantCategories := make(map[string]struct{}, len(selected))
	wantServices := make(map[string]struct{}, len(selected))
	for _, pkg := range selected {
		wantCategories[catalog.ServiceID(pkg.Name)] = struct{}{}
		wantServices[pkg.ID] = struct{}{}
	}

	var eligible []models.ServiceProvider
	for _, provider := range roster {
		if matchesByCategory(provider, wantCategories) || matchesEveryService(provider, wantServices) {
			eligible = append(eligible, provider)
		}
	}
	return eligible
}

func matchesByCategory(provider models.ServiceProvider, want map[string]struct{}) bool {
	for _, category := range provider.ServiceCategories {
		if _, ok := want[catalog.ServiceID(category)]; ok {
			return true
		}
	}
	return false
}

// matchesEveryService is the strict fallback: an active offering must exist
// for each selected service, not just one of them.
func matchesEveryService(provider models.ServiceProvider, want map[string]struct{}) bool {
	offered := make(map[string]struct{}, len(provider.Offerings))
	for _, off := range provider.Offerings {
		if off.IsActive() {
			offered[catalog.ServiceID(off.ServiceType)] = struct{}{}
		}
	}
	for id := range want {
		if _, ok := offered[id]; !ok {
			return false
		}
	}
	return true
}
