package catalog

import "github.com/motohub/motohub-cart-service/internal/models"

// DefaultPackages is the static catalog used whenever the live offering feed
// yields no packages at all.
func DefaultPackages() []models.ServicePackage {
	return []models.ServicePackage{
		{
			ID:             "comprehensive-package",
			Name:           "Comprehensive Package",
			Price:          6099,
			WarrantyMonths: 6,
			Description:    "Full inspection, engine oil and all filters, top-ups and underbody coating",
		},
		{
			ID:             "standard-package",
			Name:           "Standard Package",
			Price:          4299,
			WarrantyMonths: 3,
			Description:    "Engine oil, oil filter, air filter and 25-point inspection",
		},
		{
			ID:             "ac-service",
			Name:           "AC Service",
			Price:          2499,
			WarrantyMonths: 3,
			Description:    "AC gas top-up, condenser cleaning and cooling check",
		},
		{
			ID:             "car-wash",
			Name:           "Car Wash",
			Price:          499,
			Description:    "Exterior foam wash, interior vacuuming and tyre dressing",
		},
		{
			ID:          "custom-repair",
			Name:        "Custom Repair",
			IsCustom:    true,
			Description: "Describe the problem and get quotes from nearby garages",
		},
	}
}
