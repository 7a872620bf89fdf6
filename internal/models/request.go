package models

// ServiceRequest is the payload handed to the external submission
// collaborator once all preconditions hold.
type ServiceRequest struct {
	Items                []CartItem `json:"items"`
	AddressID            string     `json:"address_id"`
	Address              *Address   `json:"address,omitempty"`
	SlotID               string     `json:"slot_id"`
	CouponCode           string     `json:"coupon_code,omitempty"`
	CandidateProviderIDs []string   `json:"candidate_provider_ids"`
	Total                float64    `json:"total"`
	Note                 string     `json:"note"`
	CarDetails           CarDetails `json:"car_details"`
}

// QuoteLine is one breakdown entry of a provider quote. Price is nil when the
// provider has no active offering for the service ("pricing not set"); nil and
// zero are distinct on purpose.
type QuoteLine struct {
	ServiceID string   `json:"service_id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
}

// ProviderQuote is one provider's aggregate price for the current cart.
type ProviderQuote struct {
	Provider ServiceProvider `json:"provider"`
	Lines    []QuoteLine     `json:"lines"`
	// Total sums priced lines only. A provider with no priced lines has
	// Total 0 and PricedLines 0; ranking treats that as "no quote", not as
	// the cheapest option.
	Total       float64 `json:"total"`
	PricedLines int     `json:"priced_lines"`
}

// PriceSummary is the cart-level pricing breakdown, independent of which
// provider is eventually chosen.
type PriceSummary struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}
