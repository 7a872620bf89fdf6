package match

import (
	"testing"

	"github.com/motohub/motohub-cart-service/internal/models"
)

func price(v float64) *float64 { return &v }
func inactive() *bool          { f := false; return &f }

var (
	acService = models.ServicePackage{ID: "ac-service", Name: "AC Service"}
	carWash   = models.ServicePackage{ID: "car-wash", Name: "Car Wash"}
)

func provider(id string, categories []string, offerings ...models.ProviderOffering) models.ServiceProvider {
	return models.ServiceProvider{
		ID:                id,
		Name:              id,
		ServiceCategories: categories,
		Offerings:         offerings,
	}
}

func TestEligibleProviders_CategoryMatch(t *testing.T) {
	roster := []models.ServiceProvider{
		provider("cat-match", []string{"AC Service"}),
		provider("no-match", []string{"Detailing"}),
	}

	eligible := EligibleProviders([]models.ServicePackage{acService, carWash}, roster)

	if len(eligible) != 1 || eligible[0].ID != "cat-match" {
		t.Fatalf("Expected only cat-match eligible, got %v", ids(eligible))
	}
}

func TestEligibleProviders_StrictOfferingFallback(t *testing.T) {
	// No category overlap: eligibility requires an active offering for
	// every selected service, not just one.
	all := provider("offers-all", nil,
		models.ProviderOffering{ProviderID: "offers-all", ServiceType: "AC Service", Price: price(2500)},
		models.ProviderOffering{ProviderID: "offers-all", ServiceType: "Car Wash", Price: price(500)},
	)
	partial := provider("offers-one", nil,
		models.ProviderOffering{ProviderID: "offers-one", ServiceType: "AC Service", Price: price(2400)},
	)
	inactiveOne := provider("inactive-offer", nil,
		models.ProviderOffering{ProviderID: "inactive-offer", ServiceType: "AC Service", Price: price(2300)},
		models.ProviderOffering{ProviderID: "inactive-offer", ServiceType: "Car Wash", Price: price(450), Active: inactive()},
	)

	eligible := EligibleProviders(
		[]models.ServicePackage{acService, carWash},
		[]models.ServiceProvider{all, partial, inactiveOne},
	)

	if len(eligible) != 1 || eligible[0].ID != "offers-all" {
		t.Fatalf("Expected only offers-all eligible, got %v", ids(eligible))
	}
}

func TestEligibleProviders_CategoryBeatsStrict(t *testing.T) {
	// A category match makes the provider eligible even without offerings
	// covering every service.
	p := provider("by-category", []string{"Car Wash"},
		models.ProviderOffering{ProviderID: "by-category", ServiceType: "Car Wash", Price: price(500)},
	)

	eligible := EligibleProviders([]models.ServicePackage{acService, carWash}, []models.ServiceProvider{p})

	if len(eligible) != 1 {
		t.Fatalf("Expected category match to qualify, got %v", ids(eligible))
	}
}

func TestEligibleProviders_EmptySelection(t *testing.T) {
	roster := []models.ServiceProvider{
		provider("a", nil),
		provider("b", []string{"Anything"}),
	}

	eligible := EligibleProviders(nil, roster)

	if len(eligible) != len(roster) {
		t.Errorf("With nothing selected every provider is eligible, got %v", ids(eligible))
	}
}

func TestEligibleProviders_NoneEligible(t *testing.T) {
	roster := []models.ServiceProvider{
		provider("p1", []string{"Detailing"}),
		provider("p2", nil,
			models.ProviderOffering{ProviderID: "p2", ServiceType: "Car Wash", Price: price(500)},
		),
	}

	eligible := EligibleProviders([]models.ServicePackage{acService, carWash}, roster)

	if len(eligible) != 0 {
		t.Errorf("Expected empty eligible set, got %v", ids(eligible))
	}
}

func ids(providers []models.ServiceProvider) []string {
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = p.ID
	}
	return out
}
